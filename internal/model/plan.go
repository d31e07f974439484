package model

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySelection is returned when a plan has no commits
	ErrEmptySelection = errors.New("no commits selected")

	// ErrNoRemotes is returned when a plan has no push targets
	ErrNoRemotes = errors.New("no target remotes selected")

	// ErrNoTarget is returned when a plan has no target ref or branch
	ErrNoTarget = errors.New("no target branch specified")
)

// ExecutionOptions controls how interactive a workflow run is
type ExecutionOptions struct {
	// SkipConfirm answers yes to every review gate
	SkipConfirm bool
	// DryRun replaces every mutating backend call with a log line
	DryRun bool
	// AllowForce pre-approves a force-with-lease push when confirmations are skipped
	AllowForce bool
}

// ReleasePlan is what a release run will do. It is immutable once a run starts.
type ReleasePlan struct {
	// Commits in selection order (newest first for list-based selections)
	Commits []Commit
	// TargetRef is checked out as the cherry-pick base (e.g. origin/release)
	TargetRef string
	// TargetBranch is the branch name pushed on each remote (e.g. release)
	TargetBranch string
	Remotes      []RemoteTarget
	// SaveBranch optionally names a local branch created at the promoted tip
	SaveBranch string
}

// NewReleasePlan validates and builds a release plan
func NewReleasePlan(selection *CommitSelection, targetRef string, targetBranch string, remotes []RemoteTarget) (ReleasePlan, error) {
	plan := ReleasePlan{
		TargetRef:    targetRef,
		TargetBranch: targetBranch,
		Remotes:      append([]RemoteTarget(nil), remotes...),
	}
	if selection != nil {
		plan.Commits = selection.Commits()
	}
	if err := plan.Validate(); err != nil {
		return ReleasePlan{}, err
	}
	return plan, nil
}

// Validate checks the invariants every plan must hold before execution
func (p ReleasePlan) Validate() error {
	if len(p.Commits) == 0 {
		return ErrEmptySelection
	}
	if len(p.Remotes) == 0 {
		return ErrNoRemotes
	}
	if p.TargetRef == "" || p.TargetBranch == "" {
		return ErrNoTarget
	}
	seen := make(map[string]bool, len(p.Commits))
	for _, c := range p.Commits {
		if seen[c.Hash] {
			return fmt.Errorf("commit %s selected twice", c.ShortHash)
		}
		seen[c.Hash] = true
	}
	return nil
}

// RemoteNames returns the plan's remote names in push order
func (p ReleasePlan) RemoteNames() []string {
	names := make([]string, 0, len(p.Remotes))
	for _, r := range p.Remotes {
		names = append(names, r.Name)
	}
	return names
}

// SyncPlan describes mirroring one remote's branch tip onto another remote
type SyncPlan struct {
	SourceRemote string
	TargetRemote string
	Branch       string

	SourceRef  string
	TargetRef  string
	SourceHash string
	// TargetHash is empty when the branch does not exist on the target
	TargetHash string

	// Commits on the source missing from the target, oldest first
	Commits []Commit
	// Ahead and Behind are the full divergence counts; Commits may be clipped
	Ahead          int
	Behind         int
	CanFastForward bool
	ForceRequired  bool
}

// TargetExists reports whether the branch already exists on the target remote
func (p SyncPlan) TargetExists() bool {
	return p.TargetHash != ""
}
