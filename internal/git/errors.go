package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRefNotFound indicates a ref or commit does not resolve
	ErrRefNotFound = errors.New("ref not found")

	// ErrNotGitRepo indicates the directory is not inside a git repository
	ErrNotGitRepo = errors.New("not a git repository")
)

// CommandError is returned when a git invocation exits unsuccessfully
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\nOutput: " + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
