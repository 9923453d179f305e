// Package gormstorage implements the storage.Backend interface on any GORM dialect.
package gormstorage

import (
	"errors"
	"fmt"

	"github.com/drivese/drivese/internal/database"
	"github.com/drivese/drivese/internal/logging"
	"github.com/drivese/drivese/internal/model"
	"github.com/drivese/drivese/internal/model/convert"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/pkg/core"

	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// Backend writes runs synchronously, one transaction per run.
type Backend struct {
	deps Dependencies
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend: no database")
	}
	if err := database.Migrate(b.deps.DB); err != nil {
		b.log("setupDB", fmt.Sprintf("Failed to migrate: %v", err), "ERROR")
		return err
	}
	b.log("setupDB", "Database setup complete", "INFO")
	return nil
}

// Close is a no-op; the connection belongs to the caller.
func (b *Backend) Close() error {
	return nil
}

// SaveRun inserts the run and its component rows.
func (b *Backend) SaveRun(run *core.Run) error {
	m := convert.RunToModel(*run)
	return CreateRuns(b.deps.DB, []model.SizingRun{m})
}

// CreateRuns inserts runs with their components in a single transaction.
func CreateRuns(db *gorm.DB, runs []model.SizingRun) error {
	if len(runs) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&runs).Error; err != nil {
			return fmt.Errorf("creating sizing runs: %w", err)
		}
		return nil
	})
}

func preloadComponents(db *gorm.DB) *gorm.DB {
	return db.Preload("Components", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

// GetRun loads a run by ID.
func (b *Backend) GetRun(id string) (*core.Run, error) {
	var m model.SizingRun
	err := preloadComponents(b.deps.DB).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	r := convert.RunToCore(m)
	return &r, nil
}

// ListRuns returns matching runs, newest first.
func (b *Backend) ListRuns(f storage.Filter) ([]core.Run, error) {
	q := preloadComponents(b.deps.DB).Order("started_at desc").Order("id")
	if f.Assembly != "" {
		q = q.Where("assembly = ?", string(f.Assembly))
	}
	if f.Preset != "" {
		q = q.Where("preset = ?", f.Preset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []model.SizingRun
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	out := make([]core.Run, len(rows))
	for i, m := range rows {
		out[i] = convert.RunToCore(m)
	}
	return out, nil
}

func (b *Backend) log(fn, msg, level string) {
	if b.deps.LogManager != nil {
		b.deps.LogManager.WriteLog(fn, msg, level)
	}
}
