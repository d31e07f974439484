package historycmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/history"
	"github.com/bjulian5/promote/internal/ui"
)

// Command shows recorded release and sync runs
type Command struct {
	// Flags
	Kind  string
	All   bool
	Limit int

	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent release and sync runs",
		Long: `Show runs recorded in the local history database, newest first.

By default only runs for the current repository are shown.

Example:
  promote history
  promote history --kind sync --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&c.Kind, "kind", "", "Only show runs of this kind (release or sync)")
	cmd.Flags().BoolVar(&c.All, "all", false, "Show runs from every repository")
	cmd.Flags().IntVarP(&c.Limit, "limit", "n", 20, "Maximum number of runs to show")

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	kind := history.Kind(c.Kind)
	if kind != "" && kind != history.KindRelease && kind != history.KindSync {
		return fmt.Errorf("unknown run kind %q, expected release or sync", c.Kind)
	}

	store, err := c.Globals.OpenHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := history.ListOptions{Kind: kind, Limit: c.Limit}
	if !c.All {
		if gitClient, err := c.Globals.Git(); err == nil {
			opts.Repo = gitClient.GitRoot()
		}
	}

	runs, err := store.List(ctx, opts)
	if err != nil {
		return err
	}
	ui.Println(ui.RenderHistory(runs))
	return nil
}
