package plan

import (
	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/cmd/plan/export"
	"github.com/bjulian5/promote/internal/common"
)

// Command is the parent command for all plan subcommands
type Command struct {
	Globals *common.Globals
}

// Register registers the plan command and all subcommands
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Release plan files",
		Long: `Commands for release plan files.

A plan file records the commits, target and remotes of a release so it can
be reviewed or committed before it is run with 'promote release --plan'.`,
	}

	exportCmd := &export.Command{Globals: c.Globals}
	exportCmd.Register(cmd)

	parent.AddCommand(cmd)
}
