package export

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/planfile"
	"github.com/bjulian5/promote/internal/ui"
)

// Command writes a selection to a plan file
type Command struct {
	// Flags
	Plan   common.PlanOptions
	Output string

	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a release plan to a YAML file",
		Long: `Select commits the same way 'promote release' does and write the plan as YAML
instead of running it. Without --output the plan is printed.

Example:
  promote plan export --pick "1-3" -o release.yaml
  promote release --plan release.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	c.Plan.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&c.Output, "output", "o", "", "File to write (default: stdout)")
	cmd.MarkFlagsMutuallyExclusive("last", "pick", "select", "plan")

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	gitClient, err := c.Globals.Git()
	if err != nil {
		return err
	}

	c.Plan.Interactive = ui.IsInteractive() && c.Output != ""
	plan, err := c.Plan.Build(gitClient, c.Globals.Config.Release)
	if err != nil {
		return err
	}
	if plan == nil {
		ui.Info("No commits selected. Nothing to export.")
		return nil
	}

	f := planfile.FromPlan(*plan, gitClient.GitRoot())
	if c.Output == "" {
		return planfile.Encode(os.Stdout, f)
	}
	if err := planfile.Write(c.Output, f); err != nil {
		return err
	}
	ui.Successf("Wrote plan with %d commits to %s", len(plan.Commits), c.Output)
	return nil
}
