// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/drivese/drivese/pkg/core"
)

// ErrNotFound is returned by GetRun for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveRun persists a finished run. The run's ID must be set.
	SaveRun(run *core.Run) error
	GetRun(id string) (*core.Run, error)
	// ListRuns returns runs newest first.
	ListRuns(filter Filter) ([]core.Run, error)
}

// Exporter is an optional interface for backends that can write their runs to a file.
type Exporter interface {
	Export() (string, error)
	GetExportedFilePath() string
}

// Filter narrows ListRuns. Zero fields match everything.
type Filter struct {
	Assembly core.Assembly
	Preset   string
	Limit    int
}

// Match reports whether r passes the filter's field constraints. Limit is not considered.
func (f Filter) Match(r *core.Run) bool {
	if f.Assembly != "" && r.Assembly != f.Assembly {
		return false
	}
	if f.Preset != "" && r.Preset != f.Preset {
		return false
	}
	return true
}
