// Package postgres implements the storage.Backend interface using GORM/PostgreSQL
// with an internal queue and a background DB writer goroutine.
package postgres

import (
	"fmt"
	"sync"
	"time"

	"github.com/drivese/drivese/internal/config"
	"github.com/drivese/drivese/internal/database"
	"github.com/drivese/drivese/internal/logging"
	"github.com/drivese/drivese/internal/model"
	"github.com/drivese/drivese/internal/model/convert"
	"github.com/drivese/drivese/internal/queue"
	gormstorage "github.com/drivese/drivese/internal/storage/gorm"
	"github.com/drivese/drivese/pkg/core"

	"gorm.io/gorm"
)

const (
	defaultFlushInterval = 2 * time.Second
	defaultBatchSize     = 200
	defaultQueueLimit    = 100000
)

// Config tunes the writer. Zero values pick the defaults.
type Config struct {
	DB            config.DatabaseConfig
	FlushInterval time.Duration
	BatchSize     int
	QueueLimit    int
}

// Dependencies holds all dependencies for the postgres storage backend.
// If DB is nil, Init connects using Config.DB.
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
}

// Backend implements storage.Backend with queue-based batch writes. Reads go straight
// to the database, so a run is visible only after the writer has flushed it.
type Backend struct {
	*gormstorage.Backend
	cfg      Config
	deps     Dependencies
	pending  *queue.Queue[model.SizingRun]
	stopChan chan struct{}
	done     chan struct{}
	flushMu  sync.Mutex
}

// New creates a new postgres storage backend.
func New(cfg Config, deps Dependencies) *Backend {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = defaultQueueLimit
	}
	return &Backend{
		cfg:     cfg,
		deps:    deps,
		pending: queue.NewBounded[model.SizingRun](cfg.QueueLimit),
	}
}

// Init connects if needed, runs schema migration, and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.OpenPostgres(b.cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(10)
		b.deps.DB = db
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: b.deps.DB, LogManager: b.deps.LogManager})
	if err := b.Backend.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()
	return nil
}

// Close stops the writer and flushes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	if b.Backend == nil {
		return nil
	}
	return b.Flush()
}

// SaveRun queues the run for the next write cycle.
func (b *Backend) SaveRun(run *core.Run) error {
	b.pending.Push(convert.RunToModel(*run))
	return nil
}

// Pending is the number of runs waiting to be written.
func (b *Backend) Pending() int {
	return b.pending.Len()
}

// Flush writes queued runs in batches. A failed batch is put back at the front of the
// queue and the error returned.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	for !b.pending.Empty() {
		batch := b.pending.PopN(b.cfg.BatchSize)
		if err := gormstorage.CreateRuns(b.deps.DB, batch); err != nil {
			b.pending.Requeue(batch...)
			b.log(":DB:WRITER:", fmt.Sprintf("Error creating sizing runs: %v", err), "ERROR")
			return err
		}
		b.log(":DB:WRITER:", fmt.Sprintf("Wrote %d sizing runs", len(batch)), "DEBUG")
	}
	if n := b.pending.Dropped(); n > 0 {
		b.log(":DB:WRITER:", fmt.Sprintf("%d sizing runs dropped on full queue", n), "WARN")
	}
	return nil
}

func (b *Backend) writeLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			// errors are logged and the batch retried next tick
			_ = b.Flush()
		}
	}
}

func (b *Backend) log(fn, msg, level string) {
	if b.deps.LogManager != nil {
		b.deps.LogManager.WriteLog(fn, msg, level)
	}
}
