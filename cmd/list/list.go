package list

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/ui"
)

// Command lists candidate commits with the numbers used by --pick
type Command struct {
	// Flags
	Plan common.PlanOptions

	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidate commits, newest first",
		Long: `List recent commits numbered from 1, newest first.

The numbers are the ones 'promote release --pick' and 'promote check --pick'
accept, e.g. "1-3, 5".

Example:
  promote list
  promote list --from main -n 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&c.Plan.From, "from", "", "Ref to list commits from")
	cmd.Flags().IntVarP(&c.Plan.Count, "count", "n", 0, "Number of commits to list")

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	gitClient, err := c.Globals.Git()
	if err != nil {
		return err
	}

	commits, err := c.Plan.Candidates(gitClient, c.Globals.Config.Release)
	if err != nil {
		return err
	}
	ui.Println(ui.RenderCommitTable(commits))
	return nil
}
