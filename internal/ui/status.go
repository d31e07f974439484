package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Status icons
const (
	IconDone    = "●"
	IconFailed  = "✗"
	IconSkipped = "○"
	IconPlanned = "◌"
	IconWarn    = "⚠"
)

// Status is a renderable outcome label for runs and pushes
type Status struct {
	Icon  string
	Label string
	Style lipgloss.Style
}

// GetStatus returns the Status for an outcome label such as "pushed",
// "faulted" or "up-to-date"
func GetStatus(label string) Status {
	style := OutcomeStyle(label)
	switch label {
	case "done", "pushed", "synced", "up-to-date", "verified":
		return Status{Icon: IconDone, Label: label, Style: style}
	case "faulted", "failed":
		return Status{Icon: IconFailed, Label: label, Style: style}
	case "cancelled", "skipped":
		return Status{Icon: IconSkipped, Label: label, Style: style}
	case "planned", "dry-run":
		return Status{Icon: IconPlanned, Label: label, Style: style}
	default:
		return Status{Icon: IconWarn, Label: label, Style: style}
	}
}

// Render renders the status with icon and label
func (s Status) Render() string {
	return s.Style.Render(s.Icon + " " + s.Label)
}

