package compare

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/divergence"
	"github.com/bjulian5/promote/internal/ui"
)

// Command shows how two refs have diverged
type Command struct {
	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "compare <target> [source]",
		Short: "Show how far a target ref is ahead of or behind a source",
		Long: `Count the commits each side is missing and report whether the target can be
fast-forwarded to the source. Source defaults to HEAD.

Example:
  promote compare mirror/main origin/main
  promote compare origin/release`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "HEAD"
			if len(args) == 2 {
				source = args[1]
			}
			return c.Run(cmd.Context(), args[0], source)
		},
	}

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context, target string, source string) error {
	gitClient, err := c.Globals.Git()
	if err != nil {
		return err
	}

	info, err := divergence.NewAnalyzer(gitClient).Compare(target, source)
	if err != nil {
		return err
	}
	if !info.TargetExists {
		ui.Infof("%s does not exist", target)
	}

	ui.Println(ui.RenderDivergence(source, target, info))
	return nil
}
