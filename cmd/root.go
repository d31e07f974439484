package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/bjulian5/promote/cmd/check"
	"github.com/bjulian5/promote/cmd/compare"
	"github.com/bjulian5/promote/cmd/historycmd"
	"github.com/bjulian5/promote/cmd/list"
	"github.com/bjulian5/promote/cmd/plan"
	"github.com/bjulian5/promote/cmd/releasecmd"
	"github.com/bjulian5/promote/cmd/remote"
	"github.com/bjulian5/promote/cmd/synccmd"
	"github.com/bjulian5/promote/internal/common"
	"github.com/bjulian5/promote/internal/logging"
	"github.com/bjulian5/promote/internal/ui"
)

var globals common.Globals

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "promote",
	Short: "Cherry-pick releases and mirror branches across remotes",
	Long: `Promote moves selected commits onto a release branch and pushes them to
one or more remotes, and keeps a branch in sync between two remotes.

Every run is checked before anything is changed: conflicting files,
paths that will not check out on every platform, and unusually large
or binary files are reported up front.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return globals.Init()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := logging.Close(); cerr != nil {
		ui.Warning(cerr.Error())
	}
	if err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.ConfigPath, "config", "", "Config file (default: promote.yaml in the repo or user config dir)")
	flags.BoolVarP(&globals.Yes, "yes", "y", false, "Answer yes to every review prompt")
	flags.BoolVar(&globals.DryRun, "dry-run", false, "Show what would happen without changing anything")
	flags.BoolVar(&globals.Debug, "debug", false, "Write a debug log")

	commands := []Command{
		&releasecmd.Command{Globals: &globals},
		&synccmd.Command{Globals: &globals},
		&check.Command{Globals: &globals},
		&compare.Command{Globals: &globals},
		&list.Command{Globals: &globals},
		&remote.Command{Globals: &globals},
		&plan.Command{Globals: &globals},
		&historycmd.Command{Globals: &globals},
	}

	for _, cmd := range commands {
		cmd.Register(rootCmd)
	}
}
