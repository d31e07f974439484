// Package remotesync mirrors a branch tip from one remote onto another after
// staged operator review.
package remotesync

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/bjulian5/promote/internal/divergence"
	"github.com/bjulian5/promote/internal/logging"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/safety"
)

// DefaultCommitLimit caps the commit listing shown for review
const DefaultCommitLimit = 200

// GitClient defines the git operations needed by the Workflow
type GitClient interface {
	divergence.GitClient
	safety.GitClient
	RemoteList() ([]model.RemoteTarget, error)
	Fetch(remote string) error
	RemoteHead(remote string, branch string) (string, bool, error)
	ListRange(base string, head string, limit int) ([]model.Commit, error)
	DiffStat(refA string, refB string) (string, error)
	Push(remote string, localRef string, remoteBranch string) error
	PushWithLease(remote string, localRef string, remoteBranch string, expect string) error
}

// Gates are the operator confirmations. Returning false cancels the sync.
type Gates interface {
	ReviewSummary(plan model.SyncPlan, report *model.SafetyReport) (bool, error)
	ReviewCommits(plan model.SyncPlan) (bool, error)
	ReviewDiffStat(plan model.SyncPlan, stat string) (bool, error)
	ConfirmForce(plan model.SyncPlan) (bool, error)
}

// Reporter receives operator-facing progress lines
type Reporter interface {
	Step(msg string)
	Warn(msg string)
}

// Request names what to sync
type Request struct {
	SourceRemote string
	TargetRemote string
	Branch       string
}

// Result is the terminal report of a sync run
type Result struct {
	RunID   string
	Stage   Stage
	Outcome Outcome
	// CancelledAt is the gate that was declined when Outcome is cancelled
	CancelledAt Stage
	Plan        model.SyncPlan
	Divergence  model.DivergenceInfo
	Report      *model.SafetyReport
	Forced      bool
	Verified    bool
	SourceHead  string
	TargetHead  string
	Warnings    []string
}

// Workflow runs sync requests
type Workflow struct {
	git            GitClient
	gates          Gates
	opts           model.ExecutionOptions
	reporter       Reporter
	commitLimit    int
	largeFileLines int
}

// Option configures a Workflow
type Option func(*Workflow)

// WithReporter sets where progress lines go
func WithReporter(r Reporter) Option {
	return func(w *Workflow) {
		w.reporter = r
	}
}

// WithCommitLimit caps how many commits are listed for review
func WithCommitLimit(limit int) Option {
	return func(w *Workflow) {
		if limit > 0 {
			w.commitLimit = limit
		}
	}
}

// WithLargeFileLines passes a large file threshold to the safety check
func WithLargeFileLines(lines int) Option {
	return func(w *Workflow) {
		w.largeFileLines = lines
	}
}

// NewWorkflow creates a sync workflow
func NewWorkflow(gitClient GitClient, gates Gates, opts model.ExecutionOptions, options ...Option) *Workflow {
	w := &Workflow{
		git:         gitClient,
		gates:       gates,
		opts:        opts,
		reporter:    nopReporter{},
		commitLimit: DefaultCommitLimit,
	}
	for _, o := range options {
		o(w)
	}
	return w
}

// Run executes a sync. Precondition failures and a rejected push are
// returned as errors; a declined gate is a cancelled Result.
func (w *Workflow) Run(req Request) (*Result, error) {
	result := &Result{RunID: uuid.New().String(), Stage: StageSelecting}

	if err := w.validate(req); err != nil {
		return nil, err
	}

	w.fetch(result, req.SourceRemote)
	w.fetch(result, req.TargetRemote)

	plan, err := w.resolveTips(result, req)
	if err != nil {
		return nil, err
	}

	info, err := w.compare(result, plan)
	if err != nil {
		return nil, err
	}
	result.Divergence = info
	plan.Ahead = info.Ahead
	plan.Behind = info.Behind
	plan.CanFastForward = info.CanFastForward
	plan.ForceRequired = info.ForceRequired()

	if info.InSync() {
		result.Plan = plan
		result.Outcome = OutcomeUpToDate
		w.reporter.Step(fmt.Sprintf("%s/%s and %s/%s are already in sync", req.SourceRemote, req.Branch, req.TargetRemote, req.Branch))
		return result, nil
	}

	plan.Commits = w.listCommits(result, plan)
	result.Plan = plan

	comparison := plan.TargetRef
	if !plan.TargetExists() {
		comparison = plan.SourceRef
	}
	analyzer := safety.NewAnalyzer(w.git, safety.WithHeadRef(plan.SourceRef), safety.WithLargeFileLines(w.largeFileLines))
	result.Report = analyzer.Analyze(plan.Commits, comparison)
	w.advance(result, StageSafetyChecked)

	if !w.opts.SkipConfirm {
		ok, err := w.gates.ReviewSummary(plan, result.Report)
		if done, err := w.gate(result, StageReviewSummary, ok, err); done {
			return result, err
		}

		ok, err = w.gates.ReviewCommits(plan)
		if done, err := w.gate(result, StageReviewCommits, ok, err); done {
			return result, err
		}

		stat := w.diffStat(result, plan)
		ok, err = w.gates.ReviewDiffStat(plan, stat)
		if done, err := w.gate(result, StageReviewDiffStat, ok, err); done {
			return result, err
		}
	}

	if plan.ForceRequired && !(w.opts.SkipConfirm && w.opts.AllowForce) {
		ok, err := w.gates.ConfirmForce(plan)
		if done, err := w.gate(result, StagePushDecision, ok, err); done {
			return result, err
		}
	} else {
		w.advance(result, StagePushDecision)
	}
	result.Forced = plan.ForceRequired

	if w.opts.DryRun {
		mode := "push"
		if result.Forced {
			mode = "force-with-lease push"
		}
		w.reporter.Step(fmt.Sprintf("Would %s %s to %s/%s", mode, model.ShortHash(plan.SourceHash), req.TargetRemote, req.Branch))
		result.Outcome = OutcomeDryRun
		return result, nil
	}

	w.reporter.Step(fmt.Sprintf("Pushing %s to %s/%s", model.ShortHash(plan.SourceHash), req.TargetRemote, req.Branch))
	if err := w.push(req, plan, result.Forced); err != nil {
		return result, fmt.Errorf("failed to push to %s: %w", req.TargetRemote, err)
	}
	w.advance(result, StagePushed)
	result.Outcome = OutcomeSynced

	w.verify(result, req)

	logging.Logger.Info("Sync finished",
		"run_id", result.RunID,
		"source", req.SourceRemote,
		"target", req.TargetRemote,
		"branch", req.Branch,
		"forced", result.Forced,
		"verified", result.Verified,
	)
	return result, nil
}

func (w *Workflow) validate(req Request) error {
	remotes, err := w.git.RemoteList()
	if err != nil {
		return fmt.Errorf("failed to list remotes: %w", err)
	}
	if len(remotes) < 2 {
		return ErrNotEnoughRemotes
	}
	if req.Branch == "" {
		return ErrNoBranch
	}
	if req.SourceRemote == req.TargetRemote {
		return ErrSameRemote
	}
	for _, name := range []string{req.SourceRemote, req.TargetRemote} {
		if _, ok := model.FindRemote(remotes, name); !ok {
			return fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
		}
	}
	return nil
}

func (w *Workflow) fetch(result *Result, remote string) {
	w.reporter.Step(fmt.Sprintf("Fetching %s", remote))
	if err := w.git.Fetch(remote); err != nil {
		w.warn(result, fmt.Sprintf("Could not fetch %s, using cached refs: %v", remote, err))
	}
}

// resolveTips finds both branch tips, preferring remote-tracking refs and
// falling back to asking the remote directly
func (w *Workflow) resolveTips(result *Result, req Request) (model.SyncPlan, error) {
	plan := model.SyncPlan{
		SourceRemote: req.SourceRemote,
		TargetRemote: req.TargetRemote,
		Branch:       req.Branch,
	}

	plan.SourceRef = req.SourceRemote + "/" + req.Branch
	if hash, ok := w.git.ResolveRef(plan.SourceRef); ok {
		plan.SourceHash = hash
	} else {
		hash, exists, err := w.git.RemoteHead(req.SourceRemote, req.Branch)
		if err != nil {
			return plan, fmt.Errorf("failed to query %s: %w", req.SourceRemote, err)
		}
		if !exists {
			return plan, fmt.Errorf("%w: %s/%s", ErrSourceBranchNotFound, req.SourceRemote, req.Branch)
		}
		w.warn(result, fmt.Sprintf("%s is not available locally, using the tip reported by %s", plan.SourceRef, req.SourceRemote))
		plan.SourceRef = hash
		plan.SourceHash = hash
	}

	plan.TargetRef = req.TargetRemote + "/" + req.Branch
	if hash, ok := w.git.ResolveRef(plan.TargetRef); ok {
		plan.TargetHash = hash
		return plan, nil
	}

	hash, exists, err := w.git.RemoteHead(req.TargetRemote, req.Branch)
	if err != nil {
		w.warn(result, fmt.Sprintf("Could not query %s: %v", req.TargetRemote, err))
		return plan, nil
	}
	if exists {
		w.warn(result, fmt.Sprintf("%s is not available locally, using the tip reported by %s", plan.TargetRef, req.TargetRemote))
		plan.TargetRef = hash
		plan.TargetHash = hash
	}
	return plan, nil
}

func (w *Workflow) compare(result *Result, plan model.SyncPlan) (model.DivergenceInfo, error) {
	if plan.TargetExists() && plan.TargetHash == plan.SourceHash {
		return model.DivergenceInfo{TargetExists: true}, nil
	}

	if plan.TargetExists() {
		if _, ok := w.git.ResolveRef(plan.TargetRef); !ok {
			// The target tip is known but its history is not local, so
			// ancestry cannot be proven.
			w.warn(result, fmt.Sprintf("History of %s/%s is not available locally; treating it as diverged", plan.TargetRemote, plan.Branch))
			return model.DivergenceInfo{TargetExists: true, Ahead: len(w.listCommits(result, plan))}, nil
		}
	}

	info, err := divergence.NewAnalyzer(w.git).Compare(plan.TargetRef, plan.SourceRef)
	if err != nil {
		return model.DivergenceInfo{}, fmt.Errorf("failed to compare %s with %s: %w", plan.TargetRef, plan.SourceRef, err)
	}
	return info, nil
}

// listCommits returns source commits missing from the target, oldest first
func (w *Workflow) listCommits(result *Result, plan model.SyncPlan) []model.Commit {
	base := ""
	if plan.TargetExists() {
		if _, ok := w.git.ResolveRef(plan.TargetRef); ok {
			base = plan.TargetRef
		}
	}

	commits, err := w.git.ListRange(base, plan.SourceRef, w.commitLimit)
	if err != nil {
		w.warn(result, fmt.Sprintf("Could not list commits: %v", err))
		return []model.Commit{}
	}
	slices.Reverse(commits)
	return commits
}

func (w *Workflow) diffStat(result *Result, plan model.SyncPlan) string {
	if !plan.TargetExists() {
		return fmt.Sprintf("%s does not exist on %s and will be created", plan.Branch, plan.TargetRemote)
	}
	stat, err := w.git.DiffStat(plan.TargetRef, plan.SourceRef)
	if err != nil {
		w.warn(result, fmt.Sprintf("Could not compute diff stat: %v", err))
		return "(diff stat unavailable)"
	}
	return stat
}

// gate records a confirmation answer and reports whether the run ends here
func (w *Workflow) gate(result *Result, stage Stage, ok bool, err error) (bool, error) {
	if err != nil {
		return true, fmt.Errorf("confirmation failed at %s: %w", stage, err)
	}
	if !ok {
		result.Outcome = OutcomeCancelled
		result.CancelledAt = stage
		w.reporter.Step("Sync cancelled")
		logging.Logger.Info("Sync cancelled", "run_id", result.RunID, "stage", stage.String())
		return true, nil
	}
	w.advance(result, stage)
	return false, nil
}

// push updates the target branch. A forced push leases against the target
// tip observed while planning, whichever way it was resolved.
func (w *Workflow) push(req Request, plan model.SyncPlan, force bool) error {
	if force {
		return w.git.PushWithLease(req.TargetRemote, plan.SourceHash, req.Branch, plan.TargetHash)
	}
	return w.git.Push(req.TargetRemote, plan.SourceHash, req.Branch)
}

func (w *Workflow) verify(result *Result, req Request) {
	sourceHead, sourceOK, err := w.git.RemoteHead(req.SourceRemote, req.Branch)
	if err != nil {
		w.warn(result, fmt.Sprintf("Could not verify %s: %v", req.SourceRemote, err))
		return
	}
	targetHead, targetOK, err := w.git.RemoteHead(req.TargetRemote, req.Branch)
	if err != nil {
		w.warn(result, fmt.Sprintf("Could not verify %s: %v", req.TargetRemote, err))
		return
	}

	result.SourceHead = sourceHead
	result.TargetHead = targetHead
	if !sourceOK || !targetOK || sourceHead != targetHead {
		w.warn(result, fmt.Sprintf("%s/%s is at %s but %s/%s is at %s; another push may have raced this sync",
			req.SourceRemote, req.Branch, model.ShortHash(sourceHead),
			req.TargetRemote, req.Branch, model.ShortHash(targetHead)))
		return
	}

	result.Verified = true
	w.advance(result, StageVerified)
}

func (w *Workflow) advance(result *Result, stage Stage) {
	logging.Logger.Debug("Sync stage", "run_id", result.RunID, "stage", stage.String())
	result.Stage = stage
}

func (w *Workflow) warn(result *Result, msg string) {
	logging.Logger.Warn(msg, "run_id", result.RunID)
	result.Warnings = append(result.Warnings, msg)
	w.reporter.Warn(msg)
}

type nopReporter struct{}

func (nopReporter) Step(string) {}
func (nopReporter) Warn(string) {}
