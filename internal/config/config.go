// Package config provides configuration types, defaults and loading for promote.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file name looked up without extension
const FileName = "promote"

// EnvPrefix prefixes environment overrides, e.g. PROMOTE_RELEASE_BRANCH
const EnvPrefix = "PROMOTE"

// Config holds all configuration options for promote.
type Config struct {
	Release ReleaseConfig `mapstructure:"release"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Safety  SafetyConfig  `mapstructure:"safety"`
	History HistoryConfig `mapstructure:"history"`
	// Editor overrides $VISUAL/$EDITOR when opening conflicted files
	Editor string `mapstructure:"editor"`
}

// ReleaseConfig holds defaults for promote release.
type ReleaseConfig struct {
	TargetRef string   `mapstructure:"target_ref"` // cherry-pick base, e.g. origin/release
	Branch    string   `mapstructure:"branch"`     // branch pushed on each remote
	Remotes   []string `mapstructure:"remotes"`
	Count     int      `mapstructure:"count"` // commits listed for selection
	From      string   `mapstructure:"from"`  // ref commits are listed from
}

// SyncConfig holds defaults for promote sync.
type SyncConfig struct {
	Branch      string `mapstructure:"branch"`
	Source      string `mapstructure:"source"`
	Target      string `mapstructure:"target"`
	CommitLimit int    `mapstructure:"commit_limit"`
}

// SafetyConfig tunes the pre-flight checks.
type SafetyConfig struct {
	LargeFileLines int `mapstructure:"large_file_lines"`
}

// HistoryConfig controls the local run log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // empty means the default state dir
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Release: ReleaseConfig{
			TargetRef: "origin/release",
			Branch:    "release",
			Remotes:   []string{"origin"},
			Count:     20,
			From:      "HEAD",
		},
		Sync: SyncConfig{
			Branch:      "main",
			CommitLimit: 200,
		},
		Safety: SafetyConfig{
			LargeFileLines: 10000,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error
	if c.Release.Count < 1 {
		errs = append(errs, fmt.Errorf("release.count must be at least 1, got %d", c.Release.Count))
	}
	if c.Release.TargetRef != "" && c.Release.Branch == "" {
		errs = append(errs, errors.New("release.branch is required when release.target_ref is set"))
	}
	for _, r := range c.Release.Remotes {
		if strings.TrimSpace(r) == "" {
			errs = append(errs, errors.New("release.remotes contains an empty name"))
			break
		}
	}
	if c.Sync.CommitLimit < 1 {
		errs = append(errs, fmt.Errorf("sync.commit_limit must be at least 1, got %d", c.Sync.CommitLimit))
	}
	if c.Sync.Source != "" && c.Sync.Source == c.Sync.Target {
		errs = append(errs, fmt.Errorf("sync.source and sync.target are both %q", c.Sync.Source))
	}
	if c.Safety.LargeFileLines < 1 {
		errs = append(errs, fmt.Errorf("safety.large_file_lines must be at least 1, got %d", c.Safety.LargeFileLines))
	}
	return errors.Join(errs...)
}

// Load reads configuration. An explicit path must exist; otherwise
// promote.yaml is looked up in searchDirs and the user config dir, and a
// missing file leaves the defaults in place. PROMOTE_* environment
// variables override file values.
func Load(path string, searchDirs ...string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, dir := range searchDirs {
			v.AddConfigPath(dir)
		}
		if dir, err := UserConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", v.ConfigFileUsed(), err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("release.target_ref", d.Release.TargetRef)
	v.SetDefault("release.branch", d.Release.Branch)
	v.SetDefault("release.remotes", d.Release.Remotes)
	v.SetDefault("release.count", d.Release.Count)
	v.SetDefault("release.from", d.Release.From)
	v.SetDefault("sync.branch", d.Sync.Branch)
	v.SetDefault("sync.source", d.Sync.Source)
	v.SetDefault("sync.target", d.Sync.Target)
	v.SetDefault("sync.commit_limit", d.Sync.CommitLimit)
	v.SetDefault("safety.large_file_lines", d.Safety.LargeFileLines)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("editor", d.Editor)
}

// UserConfigDir returns $XDG_CONFIG_HOME/promote or the OS equivalent
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "promote"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "promote"), nil
}

// StateDir returns the directory for promote's local state such as the run history
func StateDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "promote"), nil
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "promote"), nil
	default:
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			stateHome = filepath.Join(homeDir, ".local", "state")
		}
		return filepath.Join(stateHome, "promote"), nil
	}
}

// HistoryPath returns the configured history database path or the default one
func (c Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", fmt.Errorf("failed to get state directory: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}
