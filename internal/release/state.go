package release

// State is a step of a release run
type State int

const (
	StateIdle State = iota
	StatePreflightChecked
	StateBranchSwitched
	StateCherryPicking
	StatePushing
	StateRestoring
	StateDone
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreflightChecked:
		return "preflight-checked"
	case StateBranchSwitched:
		return "branch-switched"
	case StateCherryPicking:
		return "cherry-picking"
	case StatePushing:
		return "pushing"
	case StateRestoring:
		return "restoring"
	case StateDone:
		return "done"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// PushStatus is the outcome of pushing to one remote
type PushStatus string

const (
	PushPushed  PushStatus = "pushed"
	PushFailed  PushStatus = "failed"
	PushSkipped PushStatus = "skipped"
	// PushPlanned is reported for every remote in a dry run
	PushPlanned PushStatus = "planned"
)

// ConflictResolution is the operator's answer to a cherry-pick conflict
type ConflictResolution int

const (
	// ConflictDeferred leaves the workspace mid cherry-pick for manual work
	ConflictDeferred ConflictResolution = iota
	// ConflictResumed means the conflict was resolved and the pick should continue
	ConflictResumed
	// ConflictAborted abandons the run
	ConflictAborted
)

func (r ConflictResolution) String() string {
	switch r {
	case ConflictResumed:
		return "resumed"
	case ConflictAborted:
		return "aborted"
	default:
		return "deferred"
	}
}
