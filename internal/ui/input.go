package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/bjulian5/promote/internal/selection"
)

// stdin is shared by the line-based prompts so buffered input is not lost
// between consecutive questions.
var stdin = bufio.NewReader(os.Stdin)

// Confirm asks a yes/no question. Interactive terminals get a huh confirm
// form; otherwise a y/N line is read from stdin. An aborted form or EOF
// counts as no.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	if IsInteractive() {
		answer := defaultYes
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(prompt).
					Affirmative("Yes").
					Negative("No").
					Value(&answer),
			),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return false, nil
			}
			return false, fmt.Errorf("failed to run confirmation: %w", err)
		}
		return answer, nil
	}

	return confirmLine(stdin, os.Stdout, prompt, defaultYes)
}

func confirmLine(r *bufio.Reader, w io.Writer, prompt string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprintf(w, "%s %s ", prompt, hint)

	input, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	case "":
		// EOF without any input never confirms
		return defaultYes && err == nil, nil
	default:
		return false, nil
	}
}

// PromptSelection asks for a range expression such as "1-3, 5" or "all"
// over itemCount numbered items. Returns the 1-based numbers in ascending
// order, or nil when nothing valid was entered.
func PromptSelection(prompt string, itemCount int) ([]int, error) {
	return promptSelection(stdin, os.Stdout, prompt, itemCount)
}

func promptSelection(r *bufio.Reader, w io.Writer, prompt string, itemCount int) ([]int, error) {
	fmt.Fprint(w, prompt)
	input, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	picked := selection.Parse(input, itemCount)
	if len(picked) == 0 {
		return nil, nil
	}
	return picked, nil
}
