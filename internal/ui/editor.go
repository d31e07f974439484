package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bjulian5/promote/internal/logging"
)

// Editor opens files for manual conflict resolution and waits for the
// editor to exit.
type Editor struct {
	// Command overrides $VISUAL and $EDITOR, e.g. "code --wait"
	Command string
}

// Open opens path in the editor.
// Priority: configured command → $VISUAL → $EDITOR → vi
func (e Editor) Open(path string) error {
	if path == "" {
		return fmt.Errorf("no path provided")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	name, args := e.resolve()
	args = append(args, path)
	logging.Logger.Info("Opening editor", "editor", name, "path", path)

	// #nosec G204 -- editor command is from config or trusted env vars
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s exited with error: %w", name, err)
	}
	return nil
}

func (e Editor) resolve() (string, []string) {
	command := e.Command
	if command == "" {
		command = os.Getenv("VISUAL")
	}
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "vi", nil
	}
	return fields[0], fields[1:]
}
