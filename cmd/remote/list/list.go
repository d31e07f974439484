package list

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/ui"
)

// Command lists configured remotes
type Command struct {
	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured remotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	gitClient, err := c.Globals.Git()
	if err != nil {
		return err
	}

	remotes, err := gitClient.RemoteList()
	if err != nil {
		return err
	}
	ui.Println(ui.RenderRemoteTree(remotes))
	return nil
}
