package ui

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/bjulian5/promote/internal/model"
)

func init() {
	// Force lipgloss to detect the terminal before the fuzzy finder starts
	// so ANSI queries do not leak into the finder input
	_ = lipgloss.NewStyle().Render("")
	_ = lipgloss.HasDarkBackground()
}

// SelectCommits presents a fuzzy multi-select over commits (newest first).
// Returns the chosen 1-based numbers in ascending order, or nil if the user
// cancelled.
func SelectCommits(commits []model.Commit) ([]int, error) {
	if len(commits) == 0 {
		return nil, nil
	}
	os.Stdout.Sync()
	os.Stderr.Sync()

	indices, err := fuzzyfinder.FindMulti(
		commits,
		func(i int) string {
			return FormatCommitFinderLine(i+1, commits[i])
		},
		fuzzyfinder.WithHeader("Tab to select commits, Enter to confirm"),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return FormatCommitPreview(commits[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("commit picker failed: %w", err)
	}
	numbers := sortedUnique(indices)
	for i := range numbers {
		numbers[i]++
	}
	return numbers, nil
}

// SelectRemote presents a fuzzy finder over remotes and returns the chosen
// one, or false if the user cancelled.
func SelectRemote(prompt string, remotes []model.RemoteTarget) (model.RemoteTarget, bool, error) {
	if len(remotes) == 0 {
		return model.RemoteTarget{}, false, nil
	}
	os.Stdout.Sync()
	os.Stderr.Sync()

	idx, err := fuzzyfinder.Find(
		remotes,
		func(i int) string {
			return FormatRemoteFinderLine(remotes[i])
		},
		fuzzyfinder.WithHeader(prompt),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return model.RemoteTarget{}, false, nil
		}
		return model.RemoteTarget{}, false, fmt.Errorf("remote picker failed: %w", err)
	}
	return remotes[idx], true, nil
}

// SelectRemotes presents a fuzzy multi-select over remotes, preserving the
// configured order in the result.
func SelectRemotes(remotes []model.RemoteTarget) ([]model.RemoteTarget, error) {
	if len(remotes) == 0 {
		return nil, nil
	}
	os.Stdout.Sync()
	os.Stderr.Sync()

	indices, err := fuzzyfinder.FindMulti(
		remotes,
		func(i int) string {
			return FormatRemoteFinderLine(remotes[i])
		},
		fuzzyfinder.WithHeader("Tab to select push targets, Enter to confirm"),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("remote picker failed: %w", err)
	}

	var picked []model.RemoteTarget
	for _, i := range sortedUnique(indices) {
		picked = append(picked, remotes[i])
	}
	return picked, nil
}

func sortedUnique(indices []int) []int {
	seen := make(map[int]bool, len(indices))
	var out []int
	for _, i := range indices {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return out
}
