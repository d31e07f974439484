package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bjulian5/promote/internal/model"
)

// Truncate truncates text to maxLen with an ellipsis if needed.
// Uses lipgloss for ANSI-aware width handling.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	width := lipgloss.Width(text)
	if width <= maxLen {
		return text
	}

	if maxLen <= 3 {
		return lipgloss.NewStyle().MaxWidth(maxLen).Render(text)
	}
	return lipgloss.NewStyle().MaxWidth(maxLen-3).Render(text) + "..."
}

func Pad(text string, width int, align lipgloss.Position) string {
	return lipgloss.PlaceHorizontal(width, align, text)
}

// RenderBulletList renders a list with bullets
func RenderBulletList(items []string) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, DimStyle.Render("  • ")+item)
	}
	return strings.Join(lines, "\n")
}

func RenderKeyValue(key string, value string) string {
	return fmt.Sprintf("%s %s", DimStyle.Render(key+":"), value)
}

// RenderKeyValueList renders aligned key/value lines in the order of keys
func RenderKeyValueList(pairs map[string]string, keys []string) string {
	maxKeyLen := 0
	for _, key := range keys {
		if w := lipgloss.Width(key); w > maxKeyLen {
			maxKeyLen = w
		}
	}

	var lines []string
	for _, key := range keys {
		padded := Pad(key, maxKeyLen, lipgloss.Left)
		lines = append(lines, fmt.Sprintf("%s %s", DimStyle.Render(padded+":"), pairs[key]))
	}
	return strings.Join(lines, "\n")
}

// FormatCommitLine renders "abc1234 subject" with styling
func FormatCommitLine(c model.Commit) string {
	return HashStyle.Render(c.ShortHash) + " " + Truncate(c.Subject, Display.MaxSubjectLength)
}

// FormatCommitFinderLine formats a commit for the fuzzy finder.
// The finder does not support ANSI codes, so this is plain text.
func FormatCommitFinderLine(number int, c model.Commit) string {
	return fmt.Sprintf("%3d  %s  %s  %s",
		number,
		c.ShortHash,
		c.AuthorDate.Local().Format(Display.DateLayout),
		c.Subject)
}

// FormatCommitPreview formats a commit for the finder preview window
func FormatCommitPreview(c model.Commit) string {
	return RenderKeyValueList(map[string]string{
		"Commit":  HashStyle.Render(c.Hash),
		"Date":    c.AuthorDate.Local().Format(Display.DateLayout),
		"Subject": Bold(c.Subject),
	}, []string{"Commit", "Date", "Subject"})
}

// FormatRemoteFinderLine formats a remote for the fuzzy finder
func FormatRemoteFinderLine(r model.RemoteTarget) string {
	return fmt.Sprintf("%-16s %s", r.Name, r.URL())
}

func pluralize(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}
