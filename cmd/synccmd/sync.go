package synccmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/history"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/remotesync"
	"github.com/bjulian5/promote/internal/ui"
)

// RemoteLister lists configured remotes for the interactive pickers
type RemoteLister interface {
	RemoteList() ([]model.RemoteTarget, error)
}

// Command mirrors a branch from one remote to another
type Command struct {
	// Flags
	Source string
	Target string
	Branch string
	Force  bool
	Limit  int

	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "sync [branch]",
		Short: "Push a branch from one remote to another",
		Long: `Make a branch on the target remote match the same branch on the source remote.

Both remotes are fetched, the commits missing from the target are checked
and shown for review, and the source tip is pushed to the target. A
diverged target needs an explicit force-with-lease confirmation; with --yes
it also needs --force.

Example:
  promote sync main --source origin --target mirror
  promote sync --yes --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.Branch = args[0]
			}
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&c.Source, "source", "", "Remote to copy from (default from config: sync.source)")
	cmd.Flags().StringVar(&c.Target, "target", "", "Remote to push to (default from config: sync.target)")
	cmd.Flags().StringVar(&c.Branch, "branch", "", "Branch to sync (default from config: sync.branch)")
	cmd.Flags().BoolVar(&c.Force, "force", false, "Allow a force-with-lease push when the target has diverged and --yes is set")
	cmd.Flags().IntVar(&c.Limit, "limit", 0, "Maximum number of commits to review")

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	gitClient, err := c.Globals.Git()
	if err != nil {
		return err
	}

	req, err := c.request(gitClient)
	if err != nil {
		return err
	}

	limit := c.Limit
	if limit <= 0 {
		limit = c.Globals.Config.Sync.CommitLimit
	}
	workflow := remotesync.NewWorkflow(gitClient, ui.SyncGates{}, c.Globals.Options(c.Force),
		remotesync.WithReporter(ui.Reporter{}),
		remotesync.WithCommitLimit(limit),
		remotesync.WithLargeFileLines(c.Globals.Config.Safety.LargeFileLines),
	)

	started := time.Now()
	result, runErr := workflow.Run(req)
	if result != nil {
		if runErr == nil {
			ui.Println("")
			ui.Println(ui.RenderSyncResult(result))
		}
		c.Globals.RecordRun(ctx, historyRun(gitClient.GitRoot(), req, result, runErr, started))
	}
	return runErr
}

// request fills in the remotes from flags, then config, then an
// interactive picker
func (c *Command) request(g RemoteLister) (remotesync.Request, error) {
	cfg := c.Globals.Config.Sync
	req := remotesync.Request{
		SourceRemote: firstNonEmpty(c.Source, cfg.Source),
		TargetRemote: firstNonEmpty(c.Target, cfg.Target),
		Branch:       firstNonEmpty(c.Branch, cfg.Branch),
	}
	if req.SourceRemote != "" && req.TargetRemote != "" {
		return req, nil
	}
	if !ui.IsInteractive() || c.Globals.Yes {
		return req, nil
	}

	remotes, err := g.RemoteList()
	if err != nil {
		return req, err
	}
	if len(remotes) < 2 {
		// Let the workflow report the precondition
		return req, nil
	}

	if req.SourceRemote == "" {
		remote, ok, err := ui.SelectRemote("Sync from", remotes)
		if err != nil || !ok {
			return req, cancelledOr(err)
		}
		req.SourceRemote = remote.Name
	}
	if req.TargetRemote == "" {
		var rest []model.RemoteTarget
		for _, r := range remotes {
			if r.Name != req.SourceRemote {
				rest = append(rest, r)
			}
		}
		remote, ok, err := ui.SelectRemote("Sync to", rest)
		if err != nil || !ok {
			return req, cancelledOr(err)
		}
		req.TargetRemote = remote.Name
	}
	return req, nil
}

func cancelledOr(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("no remote selected")
}

func historyRun(repo string, req remotesync.Request, result *remotesync.Result, runErr error, started time.Time) history.Run {
	run := history.Run{
		ID:         result.RunID,
		Kind:       history.KindSync,
		Repo:       repo,
		Source:     req.SourceRemote,
		Target:     req.TargetRemote,
		Branch:     req.Branch,
		Remotes:    []string{req.TargetRemote},
		Outcome:    string(result.Outcome),
		DryRun:     result.Outcome == remotesync.OutcomeDryRun,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	for _, commit := range result.Plan.Commits {
		run.Commits = append(run.Commits, commit.ShortHash)
	}
	switch {
	case runErr != nil:
		run.Outcome = "failed"
		run.Detail = runErr.Error()
	case result.Outcome == remotesync.OutcomeCancelled:
		run.Detail = fmt.Sprintf("declined at %s", result.CancelledAt)
	case len(result.Warnings) > 0:
		run.Detail = result.Warnings[len(result.Warnings)-1]
	}
	return run
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
