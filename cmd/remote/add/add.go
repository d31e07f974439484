package add

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/ui"
)

// ErrRemoteExists is returned when adding a remote name that is taken
var ErrRemoteExists = errors.New("remote already exists")

// GitClient defines the git operations needed to add a remote
type GitClient interface {
	RemoteList() ([]model.RemoteTarget, error)
	RemoteAdd(name string, url string) error
}

// Command adds a remote
type Command struct {
	Globals *common.Globals
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a remote to push releases or syncs to",
		Long: `Add a git remote.

Example:
  promote remote add mirror git@mirror.example.com:team/app.git`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gitClient, err := c.Globals.Git()
			if err != nil {
				return err
			}
			return c.Run(cmd.Context(), gitClient, args[0], args[1])
		},
	}

	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context, g GitClient, name string, url string) error {
	remotes, err := g.RemoteList()
	if err != nil {
		return err
	}
	if existing, ok := model.FindRemote(remotes, name); ok {
		return fmt.Errorf("%w: %s (%s)", ErrRemoteExists, name, existing.URL())
	}

	if c.Globals.DryRun {
		ui.Infof("Would add remote %s → %s", name, url)
		return nil
	}
	if err := g.RemoteAdd(name, url); err != nil {
		return err
	}
	ui.Successf("Added remote %s", name)
	return nil
}
