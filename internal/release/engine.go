// Package release promotes a selection of commits onto a release branch and
// pushes the result to one or more remotes.
package release

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/bjulian5/promote/internal/logging"
	"github.com/bjulian5/promote/internal/model"
)

// GitClient defines the git operations needed by the Engine
type GitClient interface {
	ResolveRef(ref string) (string, bool)
	CurrentBranch() (string, error)
	HasUncommittedTrackedChanges() (bool, error)
	ConflictedFiles() ([]string, error)
	IsCherryPickInProgress() bool
	RemoteList() ([]model.RemoteTarget, error)
	Checkout(ref string) error
	CherryPick(commitHash string) error
	CherryPickContinue() error
	CherryPickAbort() error
	Push(remote string, localRef string, remoteBranch string) error
	BranchCreate(name string, start string) error
}

// Reporter receives operator-facing progress lines
type Reporter interface {
	Step(msg string)
	Warn(msg string)
}

// ConflictHandler is asked what to do when a cherry-pick stops. It may open
// files in an editor; the engine performs the continue or abort it chooses.
type ConflictHandler interface {
	HandleConflict(fault *Fault) (ConflictResolution, error)
}

// Fault describes where a run stopped
type Fault struct {
	Stage State
	// Index is the failing commit's position in apply order, -1 outside cherry-picking
	Index           int
	Commit          model.Commit
	Remote          string
	ConflictedFiles []string
	Err             error
}

func (f *Fault) Error() string {
	switch f.Stage {
	case StateCherryPicking:
		return fmt.Sprintf("cherry-pick of %s failed: %v", f.Commit.ShortHash, f.Err)
	case StatePushing:
		return fmt.Sprintf("push to %s failed: %v", f.Remote, f.Err)
	default:
		return fmt.Sprintf("%s failed: %v", f.Stage, f.Err)
	}
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// PushResult is the outcome for one remote
type PushResult struct {
	Remote string
	Status PushStatus
	Err    error
}

// Result is the terminal report of a run
type Result struct {
	RunID          string
	State          State
	DryRun         bool
	OriginalBranch string
	TargetRef      string
	TargetBranch   string
	// Order is the full apply order; Applied the prefix that landed
	Order       []model.Commit
	Applied     []model.Commit
	Fault       *Fault
	Pushes      []PushResult
	SavedBranch string
	Restored    bool
	RestoreErr  error
	Transitions []State
}

// PushedRemotes returns the remotes that accepted the push
func (r *Result) PushedRemotes() []string {
	var names []string
	for _, p := range r.Pushes {
		if p.Status == PushPushed {
			names = append(names, p.Remote)
		}
	}
	return names
}

// Engine executes release plans
type Engine struct {
	git       GitClient
	opts      model.ExecutionOptions
	reporter  Reporter
	conflicts ConflictHandler
	journals  *JournalStore
}

// Option configures an Engine
type Option func(*Engine)

// WithReporter sets where progress lines go
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithConflictHandler hands cherry-pick conflicts to an interactive collaborator
func WithConflictHandler(h ConflictHandler) Option {
	return func(e *Engine) {
		e.conflicts = h
	}
}

// WithJournalStore records in-flight runs so they can be recovered
func WithJournalStore(s *JournalStore) Option {
	return func(e *Engine) {
		e.journals = s
	}
}

// NewEngine creates a release engine
func NewEngine(gitClient GitClient, opts model.ExecutionOptions, options ...Option) *Engine {
	e := &Engine{
		git:      gitClient,
		opts:     opts,
		reporter: nopReporter{},
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// ApplyOrder returns commits in the order they are cherry-picked: the
// selection reversed, then stably sorted by author date so the oldest
// change lands first regardless of pick order.
func ApplyOrder(commits []model.Commit) []model.Commit {
	order := slices.Clone(commits)
	slices.Reverse(order)
	slices.SortStableFunc(order, func(a, b model.Commit) int {
		return a.AuthorDate.Compare(b.AuthorDate)
	})
	return order
}

// Run validates plan and executes it. Precondition failures are returned as
// errors before any mutating call; execution failures are reported through
// the Result's Faulted state.
func (e *Engine) Run(plan model.ReleasePlan) (*Result, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := e.checkClean(); err != nil {
		return nil, err
	}
	if _, ok := e.git.ResolveRef(plan.TargetRef); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, plan.TargetRef)
	}
	if _, err := e.resolveRemotes(plan.RemoteNames()); err != nil {
		return nil, err
	}
	for _, c := range plan.Commits {
		if _, ok := e.git.ResolveRef(c.Hash); !ok {
			return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, c.ShortHash)
		}
	}

	original, err := e.git.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}

	r := e.newRun(uuid.New().String(), plan, original, ApplyOrder(plan.Commits))
	r.transition(StatePreflightChecked)
	r.saveJournal()

	if !r.switchBranch() {
		return r.result, nil
	}
	if !r.cherryPick(r.result.Order, 0) {
		return r.result, nil
	}
	return r.finish(), nil
}

// Resume continues a run that was left mid cherry-pick once the operator
// has completed the pick with git cherry-pick --continue
func (e *Engine) Resume(j *Journal) (*Result, error) {
	if j.FailedIndex < 0 || j.FailedIndex >= len(j.Commits) {
		return nil, ErrNothingToResume
	}
	if e.git.IsCherryPickInProgress() {
		return nil, ErrCherryPickInProgress
	}
	if err := e.checkClean(); err != nil {
		return nil, err
	}
	if err := e.checkPickCompleted(j); err != nil {
		return nil, err
	}
	remotes, err := e.resolveRemotes(j.Remotes)
	if err != nil {
		return nil, err
	}

	order := toCommits(j.Commits)
	plan := model.ReleasePlan{
		Commits:      order,
		TargetRef:    j.TargetRef,
		TargetBranch: j.TargetBranch,
		Remotes:      remotes,
		SaveBranch:   j.SaveBranch,
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	r := e.newRun(j.RunID, plan, j.OriginalBranch, order)
	r.journal = j
	r.result.Applied = j.Applied()
	r.transition(StatePreflightChecked)

	if !r.cherryPick(j.Remaining(), j.FailedIndex+1) {
		return r.result, nil
	}
	return r.finish(), nil
}

// Abandon aborts a pending cherry-pick if there is one and returns the
// workspace to the branch the run started from
func (e *Engine) Abandon(j *Journal) (*Result, error) {
	if e.git.IsCherryPickInProgress() {
		if e.opts.DryRun {
			e.reporter.Step("Would abort the pending cherry-pick")
		} else if err := e.git.CherryPickAbort(); err != nil {
			return nil, fmt.Errorf("failed to abort cherry-pick: %w", err)
		}
	}

	r := e.newRun(j.RunID, model.ReleasePlan{TargetRef: j.TargetRef, TargetBranch: j.TargetBranch}, j.OriginalBranch, toCommits(j.Commits))
	r.journal = j
	r.result.Applied = j.Applied()
	r.fault(&Fault{Stage: StateCherryPicking, Index: j.FailedIndex, Err: fmt.Errorf("release abandoned")})
	r.restore()
	r.clearJournal()
	return r.result, nil
}

// checkPickCompleted verifies the stopped pick was committed: HEAD must sit
// exactly one commit past the journal's base
func (e *Engine) checkPickCompleted(j *Journal) error {
	failed := j.Commits[j.FailedIndex]
	if j.BaseHead == "" {
		return fmt.Errorf("%w: no base recorded for %s", ErrPickNotCompleted, model.ShortHash(failed.Hash))
	}
	head, ok := e.git.ResolveRef("HEAD")
	if !ok || head == j.BaseHead {
		return fmt.Errorf("%w: HEAD is still at %s", ErrPickNotCompleted, model.ShortHash(j.BaseHead))
	}
	parent, ok := e.git.ResolveRef("HEAD^")
	if !ok || parent != j.BaseHead {
		return fmt.Errorf("%w: HEAD %s does not follow %s", ErrPickNotCompleted, model.ShortHash(head), model.ShortHash(j.BaseHead))
	}
	return nil
}

func (e *Engine) checkClean() error {
	dirty, err := e.git.HasUncommittedTrackedChanges()
	if err != nil {
		return fmt.Errorf("failed to check working tree: %w", err)
	}
	if dirty {
		return ErrDirtyWorkingTree
	}
	return nil
}

func (e *Engine) resolveRemotes(names []string) ([]model.RemoteTarget, error) {
	configured, err := e.git.RemoteList()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	remotes := make([]model.RemoteTarget, 0, len(names))
	for _, name := range names {
		remote, ok := model.FindRemote(configured, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
		}
		remotes = append(remotes, remote)
	}
	return remotes, nil
}

// run holds the mutable state of one execution
type run struct {
	e       *Engine
	plan    model.ReleasePlan
	journal *Journal
	result  *Result
}

func (e *Engine) newRun(runID string, plan model.ReleasePlan, original string, order []model.Commit) *run {
	return &run{
		e:       e,
		plan:    plan,
		journal: newJournal(runID, plan, original, order),
		result: &Result{
			RunID:          runID,
			State:          StateIdle,
			DryRun:         e.opts.DryRun,
			OriginalBranch: original,
			TargetRef:      plan.TargetRef,
			TargetBranch:   plan.TargetBranch,
			Order:          order,
			Applied:        []model.Commit{},
			Transitions:    []State{StateIdle},
		},
	}
}

func (r *run) transition(s State) {
	logging.Logger.Debug("Release state transition", "run_id", r.result.RunID, "from", r.result.State.String(), "to", s.String())
	r.result.State = s
	r.result.Transitions = append(r.result.Transitions, s)
}

func (r *run) fault(f *Fault) {
	r.result.Fault = f
	r.transition(StateFaulted)
	logging.Logger.Error("Release faulted", "run_id", r.result.RunID, "stage", f.Stage.String(), "error", f.Err)
}

func (r *run) dryRun() bool {
	return r.e.opts.DryRun
}

func (r *run) step(format string, args ...any) {
	r.e.reporter.Step(fmt.Sprintf(format, args...))
}

func (r *run) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logging.Logger.Warn(msg, "run_id", r.result.RunID)
	r.e.reporter.Warn(msg)
}

func (r *run) switchBranch() bool {
	if r.dryRun() {
		r.step("Would check out %s", r.plan.TargetRef)
		r.transition(StateBranchSwitched)
		return true
	}

	r.step("Checking out %s", r.plan.TargetRef)
	if err := r.e.git.Checkout(r.plan.TargetRef); err != nil {
		r.fault(&Fault{Stage: StateBranchSwitched, Index: -1, Err: err})
		r.clearJournal()
		return false
	}
	r.transition(StateBranchSwitched)
	return true
}

// cherryPick applies commits; offset is the position of commits[0] in apply order
func (r *run) cherryPick(commits []model.Commit, offset int) bool {
	r.transition(StateCherryPicking)
	for i, c := range commits {
		if r.dryRun() {
			r.step("Would cherry-pick %s %s", c.ShortHash, c.Subject)
			r.result.Applied = append(r.result.Applied, c)
			continue
		}

		r.step("Cherry-picking %s %s", c.ShortHash, c.Subject)
		if err := r.e.git.CherryPick(c.Hash); err != nil {
			if !r.resolveConflict(offset+i, c, err) {
				return false
			}
		}
		r.result.Applied = append(r.result.Applied, c)
	}
	return true
}

// resolveConflict faults the run and hands the conflict to the handler.
// It reports whether the pick was completed and the run may go on.
func (r *run) resolveConflict(index int, c model.Commit, pickErr error) bool {
	files, err := r.e.git.ConflictedFiles()
	if err != nil {
		r.warn("Could not list conflicted files: %v", err)
	}

	f := &Fault{Stage: StateCherryPicking, Index: index, Commit: c, ConflictedFiles: files, Err: pickErr}
	r.fault(f)
	r.journal.FailedIndex = index
	r.journal.BaseHead, _ = r.e.git.ResolveRef("HEAD")
	r.saveJournal()

	if r.e.conflicts == nil {
		r.guidance(f)
		return false
	}

	for {
		choice, err := r.e.conflicts.HandleConflict(f)
		if err != nil {
			r.warn("Conflict handler failed: %v", err)
			r.guidance(f)
			return false
		}
		logging.Logger.Info("Conflict resolution chosen", "run_id", r.result.RunID, "commit", c.ShortHash, "choice", choice.String())

		switch choice {
		case ConflictResumed:
			if err := r.e.git.CherryPickContinue(); err != nil {
				r.warn("Cherry-pick could not continue: %v", err)
				f.Err = err
				if files, ferr := r.e.git.ConflictedFiles(); ferr == nil {
					f.ConflictedFiles = files
				}
				continue
			}
			r.result.Fault = nil
			r.journal.FailedIndex = -1
			r.journal.BaseHead = ""
			r.saveJournal()
			r.transition(StateCherryPicking)
			return true
		case ConflictAborted:
			if err := r.e.git.CherryPickAbort(); err != nil {
				r.warn("Could not abort cherry-pick: %v", err)
			}
			r.restore()
			r.clearJournal()
			return false
		default:
			r.guidance(f)
			return false
		}
	}
}

func (r *run) guidance(f *Fault) {
	var b strings.Builder
	fmt.Fprintf(&b, "Cherry-pick of %s %s stopped", f.Commit.ShortHash, f.Commit.Subject)
	if len(f.ConflictedFiles) > 0 {
		b.WriteString(" with conflicts in:\n")
		for _, path := range f.ConflictedFiles {
			fmt.Fprintf(&b, "  %s\n", path)
		}
	} else {
		b.WriteString(".\n")
	}
	b.WriteString("\nTo finish the release:\n" +
		"  1. Resolve the conflicts and stage the files\n" +
		"  2. git cherry-pick --continue\n" +
		"  3. promote release --recover\n" +
		"\nTo abandon it:\n" +
		"  promote release --recover --abort")
	r.e.reporter.Warn(b.String())
}

func (r *run) finish() *Result {
	r.saveBranch()
	if r.push() {
		r.restore()
		r.transition(StateDone)
	} else {
		r.restore()
	}
	r.clearJournal()

	logging.Logger.Info("Release finished",
		"run_id", r.result.RunID,
		"state", r.result.State.String(),
		"applied", len(r.result.Applied),
		"pushed", r.result.PushedRemotes(),
	)
	return r.result
}

func (r *run) saveBranch() {
	name := r.plan.SaveBranch
	if name == "" {
		return
	}
	if r.dryRun() {
		r.step("Would create branch %s at the promoted tip", name)
		return
	}
	if err := r.e.git.BranchCreate(name, "HEAD"); err != nil {
		r.warn("Could not create branch %s: %v", name, err)
		return
	}
	r.result.SavedBranch = name
}

func (r *run) push() bool {
	r.transition(StatePushing)
	for i, remote := range r.plan.Remotes {
		if r.dryRun() {
			r.step("Would push HEAD to %s/%s", remote.Name, r.plan.TargetBranch)
			r.result.Pushes = append(r.result.Pushes, PushResult{Remote: remote.Name, Status: PushPlanned})
			continue
		}

		r.step("Pushing to %s/%s", remote.Name, r.plan.TargetBranch)
		if err := r.e.git.Push(remote.Name, "HEAD", r.plan.TargetBranch); err != nil {
			r.result.Pushes = append(r.result.Pushes, PushResult{Remote: remote.Name, Status: PushFailed, Err: err})
			for _, rest := range r.plan.Remotes[i+1:] {
				r.result.Pushes = append(r.result.Pushes, PushResult{Remote: rest.Name, Status: PushSkipped})
			}
			r.fault(&Fault{Stage: StatePushing, Index: -1, Remote: remote.Name, Err: err})
			return false
		}
		r.result.Pushes = append(r.result.Pushes, PushResult{Remote: remote.Name, Status: PushPushed})
	}
	return true
}

// restore returns to the original branch. A faulted run stays faulted.
func (r *run) restore() {
	if r.result.State != StateFaulted {
		r.transition(StateRestoring)
	}

	original := r.result.OriginalBranch
	if r.dryRun() {
		r.step("Would check out %s", original)
		r.result.Restored = true
		return
	}

	r.step("Returning to %s", original)
	if err := r.e.git.Checkout(original); err != nil {
		r.result.RestoreErr = err
		r.warn("Could not return to %s: %v", original, err)
		return
	}
	r.result.Restored = true
}

func (r *run) saveJournal() {
	if r.e.journals == nil || r.dryRun() {
		return
	}
	if err := r.e.journals.Save(r.journal); err != nil {
		r.warn("Could not record release state: %v", err)
	}
}

func (r *run) clearJournal() {
	if r.e.journals == nil || r.dryRun() {
		return
	}
	if err := r.e.journals.Clear(); err != nil {
		r.warn("Could not clear release state: %v", err)
	}
}

type nopReporter struct{}

func (nopReporter) Step(string) {}
func (nopReporter) Warn(string) {}
