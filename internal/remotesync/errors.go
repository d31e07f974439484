package remotesync

import "errors"

var (
	// ErrNotEnoughRemotes is returned when fewer than two remotes are configured
	ErrNotEnoughRemotes = errors.New("sync requires at least two configured remotes")

	// ErrSameRemote is returned when source and target name the same remote
	ErrSameRemote = errors.New("source and target remote must differ")

	// ErrRemoteNotFound is returned when a requested remote is not configured
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrNoBranch is returned when no branch was given
	ErrNoBranch = errors.New("no branch specified")

	// ErrSourceBranchNotFound is returned when the branch is missing on the source remote
	ErrSourceBranchNotFound = errors.New("branch not found on source remote")
)
