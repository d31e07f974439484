package ui

import (
	"fmt"
	"os"
)

// Success prints a success message with a checkmark icon
func Success(msg string) {
	fmt.Fprintln(os.Stdout, SuccessStyle.Render("✓ "+msg))
}

// Successf prints a formatted success message with a checkmark icon
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Error prints an error message with an X icon
func Error(msg string) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+msg))
}

// Errorf prints a formatted error message with an X icon
func Errorf(format string, args ...any) {
	Error(fmt.Sprintf(format, args...))
}

// Warning prints a warning message with a warning icon
func Warning(msg string) {
	fmt.Fprintln(os.Stderr, WarningStyle.Render("⚠ "+msg))
}

// Warningf prints a formatted warning message with a warning icon
func Warningf(format string, args ...any) {
	Warning(fmt.Sprintf(format, args...))
}

// Info prints an info message with an info icon
func Info(msg string) {
	fmt.Fprintln(os.Stdout, InfoStyle.Render("ℹ "+msg))
}

// Infof prints a formatted info message with an info icon
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Println prints a plain message with a newline (no styling)
func Println(msg string) {
	fmt.Fprintln(os.Stdout, msg)
}

// Header prints a bold colored header
func Header(header string) {
	fmt.Fprintln(os.Stdout, HeaderStyle.Render(header))
}

func Dim(text string) string {
	return DimStyle.Render(text)
}

func Bold(text string) string {
	return BoldStyle.Render(text)
}

func Highlight(text string) string {
	return HighlightStyle.Render(text)
}

// Reporter prints engine progress. Steps are indented info lines;
// warnings go to stderr.
type Reporter struct {
	Quiet bool
}

func (r Reporter) Step(msg string) {
	if r.Quiet {
		return
	}
	fmt.Fprintln(os.Stdout, Dim("  → ")+msg)
}

func (r Reporter) Warn(msg string) {
	Warning(msg)
}
