package check

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/release"
	"github.com/bjulian5/promote/internal/safety"
	"github.com/bjulian5/promote/internal/ui"
)

// Command runs the safety checks for a selection without releasing it
type Command struct {
	// Flags
	Plan common.PlanOptions

	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check selected commits for release risks",
		Long: `Run the pre-release safety checks for a selection without changing anything.

Reports files also changed on the target, paths that will not check out on
every platform, large files and binary files. Checks that cannot run are
reported as not checked.

Example:
  promote check --last 5
  promote check --pick "2-4" --target origin/release
  promote check --plan release.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	c.Plan.AddFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("last", "pick", "select", "plan")

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	gitClient, err := c.Globals.Git()
	if err != nil {
		return err
	}

	c.Plan.Interactive = ui.IsInteractive()
	plan, err := c.Plan.Build(gitClient, c.Globals.Config.Release)
	if err != nil {
		return err
	}
	if plan == nil {
		ui.Info("No commits selected.")
		return nil
	}

	analyzer := safety.NewAnalyzer(gitClient, safety.WithLargeFileLines(c.Globals.Config.Safety.LargeFileLines))
	report := analyzer.Analyze(plan.Commits, plan.TargetRef)

	ui.Println(ui.RenderPlanTree(*plan, release.ApplyOrder(plan.Commits)))
	ui.Println("")
	ui.Println(ui.RenderSafetyReport(report))

	if report.HasIssues {
		ui.Warning("Review the issues above before releasing")
	} else if len(report.Skipped) == 0 {
		ui.Success("No issues found")
	}
	return nil
}
