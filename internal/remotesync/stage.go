package remotesync

// Stage is a step of the sync workflow
type Stage int

const (
	StageSelecting Stage = iota
	StageSafetyChecked
	StageReviewSummary
	StageReviewCommits
	StageReviewDiffStat
	StagePushDecision
	StagePushed
	StageVerified
)

func (s Stage) String() string {
	switch s {
	case StageSelecting:
		return "selecting"
	case StageSafetyChecked:
		return "safety-checked"
	case StageReviewSummary:
		return "review-summary"
	case StageReviewCommits:
		return "review-commits"
	case StageReviewDiffStat:
		return "review-diffstat"
	case StagePushDecision:
		return "push-decision"
	case StagePushed:
		return "pushed"
	case StageVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// Outcome is how a sync run ended
type Outcome string

const (
	OutcomeSynced    Outcome = "synced"
	OutcomeUpToDate  Outcome = "up-to-date"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeDryRun    Outcome = "dry-run"
)
