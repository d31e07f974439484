package releasecmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/history"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/release"
	"github.com/bjulian5/promote/internal/safety"
	"github.com/bjulian5/promote/internal/ui"
)

// ErrReleaseInProgress is returned when a journal from an earlier run exists
var ErrReleaseInProgress = errors.New("a release is already in progress")

// GitClient defines the git operations the release command needs
type GitClient interface {
	release.GitClient
	safety.GitClient
	GitDir() (string, error)
	GitRoot() string
	ListCommits(ref string, count int) ([]model.Commit, error)
}

// Command cherry-picks selected commits onto a release branch and pushes it
type Command struct {
	// Flags
	Plan    common.PlanOptions
	Recover bool
	Abort   bool

	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Cherry-pick commits onto a release branch and push it",
		Long: `Cherry-pick selected commits onto the release target and push the result
to one or more remotes.

Commits are listed newest first from --from and numbered from 1. Pick them
with a range expression ("1-3, 5"), the last N with --last, or interactively.
Selected commits are applied oldest first, whatever order they were picked in.

If a cherry-pick stops on a conflict you can resolve it in place, abort the
release, or leave it and finish later with --recover.

Example:
  promote release --last 3
  promote release --pick "1-4, 7" --remote origin --remote mirror
  promote release --plan release.yaml
  promote release --recover
  promote release --recover --abort`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	c.Plan.AddFlags(cmd.Flags())
	cmd.Flags().BoolVar(&c.Recover, "recover", false, "Resume a release stopped on a conflict")
	cmd.Flags().BoolVar(&c.Abort, "abort", false, "With --recover, abandon the stopped release instead")

	cmd.MarkFlagsMutuallyExclusive("last", "pick", "select", "plan")

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	if c.Abort && !c.Recover {
		return fmt.Errorf("--abort can only be used with --recover")
	}

	gitClient, err := c.Globals.Git()
	if err != nil {
		return err
	}
	gitDir, err := gitClient.GitDir()
	if err != nil {
		return err
	}
	store := release.NewJournalStore(gitDir)

	if c.Recover {
		return c.recover(ctx, gitClient, store)
	}
	if store.Exists() {
		return fmt.Errorf("%w (%s). Finish it with 'promote release --recover' or drop it with 'promote release --recover --abort'",
			ErrReleaseInProgress, store.Path())
	}

	c.Plan.Interactive = ui.IsInteractive() && !c.Globals.Yes
	plan, err := c.Plan.Build(gitClient, c.Globals.Config.Release)
	if err != nil {
		return err
	}
	if plan == nil {
		ui.Info("No commits selected. Nothing to release.")
		return nil
	}

	analyzer := safety.NewAnalyzer(gitClient, safety.WithLargeFileLines(c.Globals.Config.Safety.LargeFileLines))
	report := analyzer.Analyze(plan.Commits, plan.TargetRef)

	ui.Println(ui.RenderPlanTree(*plan, release.ApplyOrder(plan.Commits)))
	ui.Println("")
	ui.Println(ui.RenderSafetyReport(report))
	ui.Println("")

	if !c.Globals.Yes && !c.Globals.DryRun {
		prompt := fmt.Sprintf("Release %d commits to %s?", len(plan.Commits), plan.TargetBranch)
		if report.HasIssues {
			prompt = "Issues found. Release anyway?"
		}
		ok, err := ui.Confirm(prompt, !report.HasIssues)
		if err != nil {
			return err
		}
		if !ok {
			ui.Info("Release cancelled")
			return nil
		}
	}

	started := time.Now()
	result, err := c.newEngine(gitClient, store).Run(*plan)
	if err != nil {
		return err
	}
	return c.finish(ctx, gitClient, result, started)
}

func (c *Command) recover(ctx context.Context, g GitClient, store *release.JournalStore) error {
	journal, err := store.Load()
	if err != nil {
		if errors.Is(err, release.ErrNoJournal) {
			return fmt.Errorf("no stopped release to recover")
		}
		return err
	}

	engine := c.newEngine(g, store)
	started := time.Now()

	var result *release.Result
	if c.Abort {
		ui.Infof("Abandoning release %s", journal.RunID)
		result, err = engine.Abandon(journal)
	} else {
		ui.Infof("Resuming release %s at commit %d of %d", journal.RunID, journal.FailedIndex+2, len(journal.Commits))
		result, err = engine.Resume(journal)
	}
	if err != nil {
		switch {
		case errors.Is(err, release.ErrCherryPickInProgress):
			return fmt.Errorf("%w. Resolve the conflict and run 'git cherry-pick --continue' first", err)
		case errors.Is(err, release.ErrPickNotCompleted), errors.Is(err, release.ErrNothingToResume):
			return fmt.Errorf("%w. Drop the release with 'promote release --recover --abort'", err)
		}
		return err
	}
	return c.finish(ctx, g, result, started)
}

func (c *Command) newEngine(g GitClient, store *release.JournalStore) *release.Engine {
	options := []release.Option{
		release.WithReporter(ui.Reporter{}),
		release.WithJournalStore(store),
	}
	if ui.IsInteractive() && !c.Globals.Yes {
		options = append(options, release.WithConflictHandler(ui.ConflictMenu{
			Editor: ui.Editor{Command: c.Globals.Config.Editor},
			Root:   g.GitRoot(),
		}))
	}
	return release.NewEngine(g, c.Globals.Options(false), options...)
}

func (c *Command) finish(ctx context.Context, g GitClient, result *release.Result, started time.Time) error {
	ui.Println("")
	ui.Println(ui.RenderReleaseResult(result))

	c.Globals.RecordRun(ctx, historyRun(g.GitRoot(), result, started))

	switch {
	case result.RestoreErr != nil:
		return fmt.Errorf("could not return to %s: %w", result.OriginalBranch, result.RestoreErr)
	case result.State == release.StateFaulted && !c.Abort:
		return fmt.Errorf("release did not complete")
	}
	return nil
}

func historyRun(repo string, result *release.Result, started time.Time) history.Run {
	run := history.Run{
		ID:         result.RunID,
		Kind:       history.KindRelease,
		Repo:       repo,
		Source:     result.OriginalBranch,
		Target:     result.TargetRef,
		Branch:     result.TargetBranch,
		Outcome:    result.State.String(),
		DryRun:     result.DryRun,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	for _, p := range result.Pushes {
		run.Remotes = append(run.Remotes, p.Remote)
	}
	for _, commit := range result.Applied {
		run.Commits = append(run.Commits, commit.ShortHash)
	}
	if result.Fault != nil {
		run.Detail = result.Fault.Error()
	}
	return run
}
