package model

// Naming rules reported by the safety analyzer
const (
	RuleConsecutiveWhitespace = "consecutive-whitespace"
	RuleEdgeWhitespace        = "leading-trailing-whitespace"
	RuleInvalidCharacter      = "invalid-character"
	RuleTrailingPeriod        = "trailing-period"
	RuleReservedName          = "reserved-name"
	RuleSegmentTooLong        = "segment-too-long"
	RulePathTooLong           = "path-too-long"
	RuleNonNFC                = "non-nfc-unicode"
)

// Safety check names, used in SafetyReport.Skipped
const (
	CheckConflicts = "conflicts"
	CheckNaming    = "naming"
	CheckLarge     = "large-files"
	CheckBinary    = "binary-files"
)

// NamingIssue is a path that will not check out cleanly on every platform
type NamingIssue struct {
	Path    string
	Segment string
	Rule    string
}

// LargeFile is a file with more added lines than the configured threshold
type LargeFile struct {
	Path       string
	Commit     string
	AddedLines int
}

// SafetyReport is the advisory risk report for a set of candidate commits.
// It is recomputed on every check and never persisted.
type SafetyReport struct {
	ConflictFiles []string
	NamingIssues  []NamingIssue
	LargeFiles    []LargeFile
	BinaryFiles   []string

	// Warnings describes checks that could not run
	Warnings []string
	// Skipped lists the names of checks that were degraded to unknown
	Skipped []string

	HasIssues bool
}

// WasSkipped reports whether the named check could not run
func (r *SafetyReport) WasSkipped(check string) bool {
	for _, s := range r.Skipped {
		if s == check {
			return true
		}
	}
	return false
}

// DivergenceInfo describes how two refs relate
type DivergenceInfo struct {
	// Ahead is the number of commits on the source missing from the target
	Ahead int
	// Behind is the number of commits on the target missing from the source
	Behind         int
	CanFastForward bool
	// TargetExists is false when the target ref will be created by a push
	TargetExists bool
}

// InSync reports whether both refs point at the same history
func (d DivergenceInfo) InSync() bool {
	return d.TargetExists && d.Ahead == 0 && d.Behind == 0
}

// ForceRequired reports whether updating the target needs a forced push
func (d DivergenceInfo) ForceRequired() bool {
	return !d.CanFastForward && !d.InSync()
}
