package common

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bjulian5/promote/internal/config"
	"github.com/bjulian5/promote/internal/git"
	"github.com/bjulian5/promote/internal/history"
	"github.com/bjulian5/promote/internal/logging"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/ui"
)

// Globals carries the persistent flags and the clients shared by every
// command. Root populates it in PersistentPreRunE.
type Globals struct {
	// Persistent flags
	ConfigPath string
	Debug      bool
	Yes        bool
	DryRun     bool

	Config config.Config

	git *git.Client
}

// Init sets up logging and loads configuration. promote.yaml is looked up in
// the repository root when run inside one.
func (g *Globals) Init() error {
	logFile, err := logging.Initialize(g.Debug, "")
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if logFile != "" && g.Debug {
		ui.Infof("Debug log: %s", logFile)
	}

	var searchDirs []string
	if client, err := git.NewClient(); err == nil {
		g.git = client
		searchDirs = append(searchDirs, client.GitRoot())
	}
	if wd, err := os.Getwd(); err == nil {
		searchDirs = append(searchDirs, wd)
	}

	cfg, err := config.Load(g.ConfigPath, searchDirs...)
	if err != nil {
		return err
	}
	g.Config = cfg
	return nil
}

// Git returns the client for the current repository
func (g *Globals) Git() (*git.Client, error) {
	if g.git != nil {
		return g.git, nil
	}
	client, err := git.NewClient()
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}
	g.git = client
	return client, nil
}

// Options returns the execution options selected by the persistent flags
func (g *Globals) Options(allowForce bool) model.ExecutionOptions {
	return model.ExecutionOptions{
		SkipConfirm: g.Yes,
		DryRun:      g.DryRun,
		AllowForce:  allowForce,
	}
}

// OpenHistory opens the run history database
func (g *Globals) OpenHistory() (*history.Store, error) {
	path, err := g.Config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

// RecordRun appends a run to the history. Failures are reported as warnings
// and never fail the command.
func (g *Globals) RecordRun(ctx context.Context, run history.Run) {
	if !g.Config.History.Enabled {
		return
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	store, err := g.OpenHistory()
	if err != nil {
		logging.Logger.Warn("History unavailable", "error", err)
		ui.Warningf("Could not record run history: %v", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, run); err != nil {
		logging.Logger.Warn("Failed to record run", "run_id", run.ID, "error", err)
		ui.Warningf("Could not record run history: %v", err)
	}
}
