// internal/storage/memory/memory.go
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/drivese/drivese/internal/config"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/pkg/core"
)

// Backend keeps runs in memory and exports them to JSON on Close.
type Backend struct {
	cfg   config.MemoryConfig
	runs  map[string]*core.Run
	order []string // insertion order

	lastExportPath string
	now            func() time.Time
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:  cfg,
		runs: make(map[string]*core.Run),
		now:  time.Now,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports the collected runs when an output directory is configured.
func (b *Backend) Close() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	b.mu.RLock()
	empty := len(b.order) == 0
	b.mu.RUnlock()
	if empty {
		return nil
	}
	_, err := b.Export()
	return err
}

// SaveRun stores a copy of the run. Saving an existing ID replaces it.
func (b *Backend) SaveRun(run *core.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := cloneRun(run)
	if _, ok := b.runs[run.ID]; !ok {
		b.order = append(b.order, run.ID)
	}
	b.runs[run.ID] = cp
	return nil
}

// GetRun returns a copy of the stored run.
func (b *Backend) GetRun(id string) (*core.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.runs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRun(r), nil
}

// ListRuns returns matching runs, newest first. Runs started at the same instant keep
// reverse insertion order.
func (b *Backend) ListRuns(f storage.Filter) ([]core.Run, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Run, 0, len(b.order))
	for i := len(b.order) - 1; i >= 0; i-- {
		r := b.runs[b.order[i]]
		if f.Match(r) {
			out = append(out, *cloneRun(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Len returns the number of stored runs.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}

func cloneRun(r *core.Run) *core.Run {
	cp := *r
	if r.Inputs != nil {
		cp.Inputs = append([]byte(nil), r.Inputs...)
	}
	if r.Outputs != nil {
		cp.Outputs = append([]byte(nil), r.Outputs...)
	}
	if r.Components != nil {
		cp.Components = append([]core.ComponentResult(nil), r.Components...)
	}
	return &cp
}
