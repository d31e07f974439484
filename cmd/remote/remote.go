package remote

import (
	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/cmd/remote/add"
	"github.com/bjulian5/promote/cmd/remote/list"
	"github.com/bjulian5/promote/internal/common"
)

// Command is the parent command for all remote subcommands
type Command struct {
	Globals *common.Globals
}

// Register registers the remote command and all subcommands
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Remote operations",
		Long:  `Commands for inspecting and adding the remotes releases and syncs push to.`,
	}

	listCmd := &list.Command{Globals: c.Globals}
	listCmd.Register(cmd)
	addCmd := &add.Command{Globals: c.Globals}
	addCmd.Register(cmd)

	parent.AddCommand(cmd)
}
