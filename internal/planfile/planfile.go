// Package planfile reads and writes release plans as YAML so a selection can
// be reviewed, committed or handed to another operator before it is run.
package planfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bjulian5/promote/internal/model"
)

var (
	// ErrUnknownCommit is returned when a plan names a commit the repository lacks
	ErrUnknownCommit = errors.New("commit in plan not found")

	// ErrUnknownRemote is returned when a plan names a remote that is not configured
	ErrUnknownRemote = errors.New("remote in plan not configured")
)

// File is the YAML document
type File struct {
	Repo       string   `yaml:"repo,omitempty"`
	TargetRef  string   `yaml:"targetRef"`
	Branch     string   `yaml:"branch"`
	Remotes    []string `yaml:"remotes"`
	SaveBranch string   `yaml:"saveBranch,omitempty"`
	// Commits in selection order
	Commits []Commit `yaml:"commits"`
}

// Commit is the serializable form of a selected commit
type Commit struct {
	SHA     string    `yaml:"sha"`
	Date    time.Time `yaml:"date"`
	Subject string    `yaml:"subject"`
}

// Resolver defines the git operations needed to turn a File back into a plan
type Resolver interface {
	ResolveRef(ref string) (string, bool)
	RemoteList() ([]model.RemoteTarget, error)
}

// FromPlan converts a release plan into its file form
func FromPlan(plan model.ReleasePlan, repo string) *File {
	f := &File{
		Repo:       repo,
		TargetRef:  plan.TargetRef,
		Branch:     plan.TargetBranch,
		Remotes:    plan.RemoteNames(),
		SaveBranch: plan.SaveBranch,
		Commits:    make([]Commit, 0, len(plan.Commits)),
	}
	for _, c := range plan.Commits {
		f.Commits = append(f.Commits, Commit{SHA: c.Hash, Date: c.AuthorDate, Subject: c.Subject})
	}
	return f
}

// Encode writes f as YAML
func Encode(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML plan
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return &f, nil
}

// Write saves f to path
func Write(path string, f *File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plan file: %w", err)
	}
	defer out.Close()
	return Encode(out, f)
}

// Read loads a plan from path
func Read(path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan file: %w", err)
	}
	defer in.Close()
	return Decode(in)
}

// ToPlan resolves every commit and remote against the repository and
// builds a validated release plan. Abbreviated hashes are expanded.
func (f *File) ToPlan(r Resolver) (model.ReleasePlan, error) {
	configured, err := r.RemoteList()
	if err != nil {
		return model.ReleasePlan{}, fmt.Errorf("failed to list remotes: %w", err)
	}

	remotes := make([]model.RemoteTarget, 0, len(f.Remotes))
	for _, name := range f.Remotes {
		remote, ok := model.FindRemote(configured, name)
		if !ok {
			return model.ReleasePlan{}, fmt.Errorf("%w: %s", ErrUnknownRemote, name)
		}
		remotes = append(remotes, remote)
	}

	selection := model.NewSelection()
	for _, c := range f.Commits {
		hash, ok := r.ResolveRef(c.SHA)
		if !ok {
			return model.ReleasePlan{}, fmt.Errorf("%w: %s", ErrUnknownCommit, c.SHA)
		}
		selection.Add(model.NewCommit(hash, c.Subject, c.Date))
	}

	plan, err := model.NewReleasePlan(selection, f.TargetRef, f.Branch, remotes)
	if err != nil {
		return model.ReleasePlan{}, err
	}
	plan.SaveBranch = f.SaveBranch
	return plan, nil
}
