package model

import "time"

// ShortHashLength is the number of hash characters shown to operators
const ShortHashLength = 7

// Commit represents a single commit as reported by the backend.
// Commits are immutable once constructed; identity is Hash.
type Commit struct {
	Hash       string
	ShortHash  string
	Subject    string
	AuthorDate time.Time
}

// NewCommit builds a Commit, deriving the short hash from the full hash
func NewCommit(hash string, subject string, authorDate time.Time) Commit {
	return Commit{
		Hash:       hash,
		ShortHash:  ShortHash(hash),
		Subject:    subject,
		AuthorDate: authorDate,
	}
}

// ShortHash returns the first ShortHashLength characters of hash
func ShortHash(hash string) string {
	if len(hash) > ShortHashLength {
		return hash[:ShortHashLength]
	}
	return hash
}

// FileStat is a single numstat record for a file touched by a commit.
// Binary is set when the backend reports both counts as unmeasurable.
type FileStat struct {
	Path    string
	Added   int
	Removed int
	Binary  bool
}

// RemoteTarget is a configured remote. The engine treats Name as opaque.
type RemoteTarget struct {
	Name     string
	FetchURL string
	PushURL  string
}

// URL returns the push URL, falling back to the fetch URL
func (r RemoteTarget) URL() string {
	if r.PushURL != "" {
		return r.PushURL
	}
	return r.FetchURL
}

// FindRemote returns the remote with the given name
func FindRemote(remotes []RemoteTarget, name string) (RemoteTarget, bool) {
	for _, r := range remotes {
		if r.Name == name {
			return r, true
		}
	}
	return RemoteTarget{}, false
}
