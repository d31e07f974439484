// Package safety computes the advisory risk report shown before commits are
// promoted or synced.
package safety

import (
	"fmt"

	"github.com/bjulian5/promote/internal/logging"
	"github.com/bjulian5/promote/internal/model"
)

// DefaultLargeFileLines is the added-line count above which a file is flagged
const DefaultLargeFileLines = 10000

// GitClient defines the git operations needed by the Analyzer
type GitClient interface {
	FilesChanged(commitHash string) ([]string, error)
	FilesChangedWithStats(commitHash string) ([]model.FileStat, error)
	DiffFiles(refA string, refB string) ([]string, error)
}

// Analyzer runs the pre-flight safety checks
type Analyzer struct {
	git            GitClient
	headRef        string
	largeFileLines int
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithHeadRef sets the ref whose merge base with the comparison ref bounds
// the conflict check. Defaults to HEAD.
func WithHeadRef(ref string) Option {
	return func(a *Analyzer) {
		a.headRef = ref
	}
}

// WithLargeFileLines overrides the large file threshold
func WithLargeFileLines(lines int) Option {
	return func(a *Analyzer) {
		if lines > 0 {
			a.largeFileLines = lines
		}
	}
}

// NewAnalyzer creates a new safety analyzer
func NewAnalyzer(gitClient GitClient, opts ...Option) *Analyzer {
	a := &Analyzer{
		git:            gitClient,
		headRef:        "HEAD",
		largeFileLines: DefaultLargeFileLines,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the conflict, naming, large file and binary file checks for
// commits against comparisonRef. A check whose backend query fails is marked
// skipped with a warning; the remaining checks still run.
func (a *Analyzer) Analyze(commits []model.Commit, comparisonRef string) *model.SafetyReport {
	report := &model.SafetyReport{}

	touched, err := a.touchedFiles(commits)
	if err != nil {
		a.skip(report, model.CheckConflicts, fmt.Sprintf("conflict check skipped: %v", err))
		a.skip(report, model.CheckNaming, fmt.Sprintf("naming check skipped: %v", err))
	} else {
		a.checkConflicts(report, touched, comparisonRef)
		a.checkNaming(report, touched)
	}

	a.checkStats(report, commits)

	report.HasIssues = len(report.ConflictFiles) > 0 ||
		len(report.NamingIssues) > 0 ||
		len(report.LargeFiles) > 0

	logging.Logger.Info("Safety analysis complete",
		"commits", len(commits),
		"comparison_ref", comparisonRef,
		"conflicts", len(report.ConflictFiles),
		"naming_issues", len(report.NamingIssues),
		"large_files", len(report.LargeFiles),
		"binary_files", len(report.BinaryFiles),
		"skipped", report.Skipped,
	)

	return report
}

func (a *Analyzer) skip(report *model.SafetyReport, check string, warning string) {
	report.Skipped = append(report.Skipped, check)
	report.Warnings = append(report.Warnings, warning)
	logging.Logger.Warn("Safety check skipped", "check", check, "reason", warning)
}

// touchedFiles returns the union of files touched by commits in first-seen order
func (a *Analyzer) touchedFiles(commits []model.Commit) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, c := range commits {
		paths, err := a.git.FilesChanged(c.Hash)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
		}
	}
	return files, nil
}

func (a *Analyzer) checkConflicts(report *model.SafetyReport, touched []string, comparisonRef string) {
	changed, err := a.git.DiffFiles(a.headRef, comparisonRef)
	if err != nil {
		a.skip(report, model.CheckConflicts,
			fmt.Sprintf("conflict check skipped: could not diff %s against %s (histories may share no common ancestor)", a.headRef, comparisonRef))
		return
	}

	changedSet := make(map[string]bool, len(changed))
	for _, p := range changed {
		changedSet[p] = true
	}
	for _, p := range touched {
		if changedSet[p] {
			report.ConflictFiles = append(report.ConflictFiles, p)
		}
	}
}

func (a *Analyzer) checkNaming(report *model.SafetyReport, touched []string) {
	for _, p := range touched {
		report.NamingIssues = append(report.NamingIssues, CheckPath(p)...)
	}
}

// checkStats runs the large and binary file checks, which share one query per commit
func (a *Analyzer) checkStats(report *model.SafetyReport, commits []model.Commit) {
	largeSeen := make(map[string]bool)
	binarySeen := make(map[string]bool)

	for _, c := range commits {
		stats, err := a.git.FilesChangedWithStats(c.Hash)
		if err != nil {
			warning := fmt.Sprintf("could not read line counts for %s: %v", c.ShortHash, err)
			a.skip(report, model.CheckLarge, "large file check skipped: "+warning)
			a.skip(report, model.CheckBinary, "binary file check skipped: "+warning)
			report.LargeFiles = nil
			report.BinaryFiles = nil
			return
		}

		for _, s := range stats {
			if s.Binary {
				if !binarySeen[s.Path] {
					binarySeen[s.Path] = true
					report.BinaryFiles = append(report.BinaryFiles, s.Path)
				}
				continue
			}
			if s.Added > a.largeFileLines && !largeSeen[s.Path] {
				largeSeen[s.Path] = true
				report.LargeFiles = append(report.LargeFiles, model.LargeFile{
					Path:       s.Path,
					Commit:     c.ShortHash,
					AddedLines: s.Added,
				})
			}
		}
	}
}
