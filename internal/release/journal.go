package release

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bjulian5/promote/internal/model"
)

const journalFile = "release-state.json"

// Journal records an in-flight release so an interrupted run can be resumed
// or abandoned from a later invocation
type Journal struct {
	RunID          string   `json:"run_id"`
	OriginalBranch string   `json:"original_branch"` // branch (or hash when detached) before the run
	TargetRef      string   `json:"target_ref"`
	TargetBranch   string   `json:"target_branch"`
	Remotes        []string `json:"remotes"`
	SaveBranch     string   `json:"save_branch,omitempty"`
	// Commits in apply order
	Commits     []JournalCommit `json:"commits"`
	FailedIndex int             `json:"failed_index"` // -1 until a pick fails
	// BaseHead is HEAD when the failed pick stopped; the completed pick sits
	// directly on top of it
	BaseHead  string `json:"base_head,omitempty"`
	Timestamp string `json:"timestamp"`
}

// JournalCommit is a commit as stored in the journal
type JournalCommit struct {
	Hash       string    `json:"hash"`
	Subject    string    `json:"subject"`
	AuthorDate time.Time `json:"author_date"`
}

// Remaining returns the commits after the failed one
func (j *Journal) Remaining() []model.Commit {
	if j.FailedIndex < 0 || j.FailedIndex+1 >= len(j.Commits) {
		return []model.Commit{}
	}
	return toCommits(j.Commits[j.FailedIndex+1:])
}

// Applied returns the commits up to and including the failed one
func (j *Journal) Applied() []model.Commit {
	if j.FailedIndex < 0 {
		return []model.Commit{}
	}
	end := min(j.FailedIndex+1, len(j.Commits))
	return toCommits(j.Commits[:end])
}

func toCommits(entries []JournalCommit) []model.Commit {
	commits := make([]model.Commit, 0, len(entries))
	for _, e := range entries {
		commits = append(commits, model.NewCommit(e.Hash, e.Subject, e.AuthorDate))
	}
	return commits
}

func newJournal(runID string, plan model.ReleasePlan, originalBranch string, order []model.Commit) *Journal {
	j := &Journal{
		RunID:          runID,
		OriginalBranch: originalBranch,
		TargetRef:      plan.TargetRef,
		TargetBranch:   plan.TargetBranch,
		Remotes:        plan.RemoteNames(),
		SaveBranch:     plan.SaveBranch,
		FailedIndex:    -1,
	}
	for _, c := range order {
		j.Commits = append(j.Commits, JournalCommit{Hash: c.Hash, Subject: c.Subject, AuthorDate: c.AuthorDate})
	}
	return j
}

// JournalStore reads and writes the journal under the repository's git dir
type JournalStore struct {
	dir string
}

// NewJournalStore creates a store rooted at gitDir
func NewJournalStore(gitDir string) *JournalStore {
	return &JournalStore{dir: filepath.Join(gitDir, "promote")}
}

// Path returns the journal file location
func (s *JournalStore) Path() string {
	return filepath.Join(s.dir, journalFile)
}

// Save writes the journal
func (s *JournalStore) Save(j *Journal) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if j.Timestamp == "" {
		j.Timestamp = time.Now().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal release journal: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write release journal: %w", err)
	}
	return nil
}

// Load reads the journal, returning ErrNoJournal when none exists
func (s *JournalStore) Load() (*Journal, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoJournal
		}
		return nil, fmt.Errorf("failed to read release journal: %w", err)
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse release journal: %w", err)
	}
	return &j, nil
}

// Clear removes the journal
func (s *JournalStore) Clear() error {
	if err := os.Remove(s.Path()); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove release journal: %w", err)
	}
	return nil
}

// Exists reports whether an interrupted release is recorded
func (s *JournalStore) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}
