package model

// CommitSelection is an ordered set of commits. Insertion order is the
// selection order, which may differ from chronological order.
type CommitSelection struct {
	commits []Commit
	seen    map[string]struct{}
}

// NewSelection creates a selection from commits, dropping duplicates
func NewSelection(commits ...Commit) *CommitSelection {
	s := &CommitSelection{seen: make(map[string]struct{})}
	for _, c := range commits {
		s.Add(c)
	}
	return s
}

// LastK selects the first k commits of a newest-first list
func LastK(commits []Commit, k int) *CommitSelection {
	if k > len(commits) {
		k = len(commits)
	}
	if k < 0 {
		k = 0
	}
	return NewSelection(commits[:k]...)
}

// FromIndices selects commits by 1-based index, in the order given.
// Indices outside the list are ignored.
func FromIndices(commits []Commit, indices []int) *CommitSelection {
	s := NewSelection()
	for _, idx := range indices {
		if idx < 1 || idx > len(commits) {
			continue
		}
		s.Add(commits[idx-1])
	}
	return s
}

// Add appends c unless a commit with the same hash is already selected.
// Returns true if the commit was added.
func (s *CommitSelection) Add(c Commit) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[c.Hash]; ok {
		return false
	}
	s.seen[c.Hash] = struct{}{}
	s.commits = append(s.commits, c)
	return true
}

// Reset empties the selection
func (s *CommitSelection) Reset() {
	s.commits = nil
	s.seen = make(map[string]struct{})
}

// Contains reports whether a commit with hash is selected
func (s *CommitSelection) Contains(hash string) bool {
	_, ok := s.seen[hash]
	return ok
}

// Len returns the number of selected commits
func (s *CommitSelection) Len() int {
	return len(s.commits)
}

// IsEmpty reports whether nothing is selected
func (s *CommitSelection) IsEmpty() bool {
	return len(s.commits) == 0
}

// Commits returns a copy of the selected commits in selection order
func (s *CommitSelection) Commits() []Commit {
	out := make([]Commit, len(s.commits))
	copy(out, s.commits)
	return out
}
