// Package history keeps a local log of release and sync runs.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bjulian5/promote/internal/logging"
)

// Kind is the workflow a run belongs to
type Kind string

const (
	KindRelease Kind = "release"
	KindSync    Kind = "sync"
)

// Run is one recorded release or sync
type Run struct {
	ID         string
	Kind       Kind
	Repo       string
	Source     string // source ref for releases, source remote for syncs
	Target     string // target ref or target remote
	Branch     string
	Remotes    []string
	Commits    []string // short hashes in apply order
	Outcome    string
	Detail     string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunModel is the GORM model for the runs table
type RunModel struct {
	ID         string    `gorm:"primaryKey"`
	Kind       string    `gorm:"not null;index:idx_kind;check:kind IN ('release','sync')"`
	Repo       string    `gorm:"not null;default:'';index:idx_repo"`
	Source     string    `gorm:"not null;default:''"`
	Target     string    `gorm:"not null;default:''"`
	Branch     string    `gorm:"not null;default:''"`
	Remotes    string    `gorm:"not null;default:''"`
	Commits    string    `gorm:"not null;default:''"`
	Outcome    string    `gorm:"not null;default:''"`
	Detail     string    `gorm:"not null;default:''"`
	DryRun     bool      `gorm:"not null;default:false"`
	StartedAt  time.Time `gorm:"not null;index:idx_started_at"`
	FinishedAt time.Time
	CreatedAt  time.Time
}

// TableName specifies the table name for GORM
func (RunModel) TableName() string { return "runs" }

// Store persists runs in SQLite
type Store struct {
	db *gorm.DB
}

// gormLogger routes GORM's logging into the promote logger
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	sql, rows := fc()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error", "error", err, "duration", time.Since(begin), "sql", sql, "rows", rows)
		return
	}
	logging.Logger.Debug("gorm query", "duration", time.Since(begin), "sql", sql, "rows", rows)
}

func newGormLogger() logger.Interface {
	if os.Getenv("PROMOTE_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// Open opens (creating if needed) the history database at dbPath
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	if err := db.AutoMigrate(&RunModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate runs schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// Record saves a run, replacing any earlier record with the same ID
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run has no ID")
	}
	m := toModel(run)
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	logging.Logger.Debug("Recorded run", "id", run.ID, "kind", run.Kind, "outcome", run.Outcome)
	return nil
}

// ListOptions filters List
type ListOptions struct {
	Kind  Kind
	Repo  string
	Limit int
}

// List returns runs newest first
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	q := s.db.WithContext(ctx).Order("started_at DESC")
	if opts.Kind != "" {
		q = q.Where("kind = ?", string(opts.Kind))
	}
	if opts.Repo != "" {
		q = q.Where("repo = ?", opts.Repo)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var models []RunModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]Run, 0, len(models))
	for _, m := range models {
		runs = append(runs, fromModel(m))
	}
	return runs, nil
}

// Get returns the run with id
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	var m RunModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Run{}, fmt.Errorf("run %s not found", id)
		}
		return Run{}, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return fromModel(m), nil
}

func toModel(r Run) RunModel {
	return RunModel{
		ID:         r.ID,
		Kind:       string(r.Kind),
		Repo:       r.Repo,
		Source:     r.Source,
		Target:     r.Target,
		Branch:     r.Branch,
		Remotes:    strings.Join(r.Remotes, ","),
		Commits:    strings.Join(r.Commits, ","),
		Outcome:    r.Outcome,
		Detail:     r.Detail,
		DryRun:     r.DryRun,
		StartedAt:  r.StartedAt.UTC(),
		FinishedAt: r.FinishedAt.UTC(),
	}
}

func fromModel(m RunModel) Run {
	return Run{
		ID:         m.ID,
		Kind:       Kind(m.Kind),
		Repo:       m.Repo,
		Source:     m.Source,
		Target:     m.Target,
		Branch:     m.Branch,
		Remotes:    splitList(m.Remotes),
		Commits:    splitList(m.Commits),
		Outcome:    m.Outcome,
		Detail:     m.Detail,
		DryRun:     m.DryRun,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
