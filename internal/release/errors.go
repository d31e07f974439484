package release

import "errors"

var (
	// ErrDirtyWorkingTree is returned when tracked files have uncommitted changes
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes to tracked files")

	// ErrTargetNotFound is returned when the plan's target ref does not resolve
	ErrTargetNotFound = errors.New("target ref not found")

	// ErrRemoteNotFound is returned when a plan names a remote that is not configured
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrCommitNotFound is returned when a selected commit does not resolve
	ErrCommitNotFound = errors.New("commit not found")

	// ErrCherryPickInProgress is returned when recovery starts before the
	// operator has finished the pending cherry-pick
	ErrCherryPickInProgress = errors.New("cherry-pick still in progress")

	// ErrNoJournal is returned when there is no interrupted release to recover
	ErrNoJournal = errors.New("no interrupted release found")

	// ErrNothingToResume is returned when the journal has no stopped
	// cherry-pick, e.g. the process was killed mid-run
	ErrNothingToResume = errors.New("release did not stop on a cherry-pick")

	// ErrPickNotCompleted is returned when HEAD is not exactly one commit past
	// where the failed cherry-pick started
	ErrPickNotCompleted = errors.New("stopped cherry-pick was not committed")
)
