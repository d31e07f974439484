package ui

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/bjulian5/promote/internal/release"
)

const (
	choiceContinue = "continue"
	choiceAbort    = "abort"
	choiceLeave    = "leave"
	choiceEdit     = "edit:"
)

// ConflictMenu asks the operator how to handle a stopped cherry-pick.
// Conflicted files can be opened in the editor any number of times before
// continuing. Without a terminal the conflict is left for manual work.
type ConflictMenu struct {
	Editor Editor
	// Root is the repository root that conflicted paths are relative to
	Root string
}

func (m ConflictMenu) HandleConflict(fault *release.Fault) (release.ConflictResolution, error) {
	if !IsInteractive() {
		return release.ConflictDeferred, nil
	}

	Error(fault.Error())
	if len(fault.ConflictedFiles) > 0 {
		Println(RenderBulletList(fault.ConflictedFiles))
	}

	for {
		var choice string
		options := make([]huh.Option[string], 0, len(fault.ConflictedFiles)+3)
		for _, f := range fault.ConflictedFiles {
			options = append(options, huh.NewOption("Edit "+f, choiceEdit+f))
		}
		options = append(options,
			huh.NewOption("Continue (conflicts resolved and staged)", choiceContinue),
			huh.NewOption("Abort the release and restore my branch", choiceAbort),
			huh.NewOption("Leave it for me to resolve manually", choiceLeave),
		)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title(fmt.Sprintf("Cherry-pick of %s stopped", fault.Commit.ShortHash)).
					Options(options...).
					Value(&choice),
			),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return release.ConflictDeferred, nil
			}
			return release.ConflictDeferred, fmt.Errorf("failed to run conflict menu: %w", err)
		}

		switch choice {
		case choiceContinue:
			return release.ConflictResumed, nil
		case choiceAbort:
			return release.ConflictAborted, nil
		case choiceLeave:
			return release.ConflictDeferred, nil
		default:
			path := choice[len(choiceEdit):]
			if err := m.Editor.Open(filepath.Join(m.Root, path)); err != nil {
				Warning(err.Error())
			}
		}
	}
}
