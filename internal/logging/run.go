package logging

import (
	"context"
	"log/slog"

	"github.com/drivese/drivese/pkg/core"
)

// Run identifies the sizing run a log record belongs to. ID is empty until the run
// has been evaluated.
type Run struct {
	ID       string
	Assembly core.Assembly
	Preset   string
}

type runKey struct{}

// WithRun returns a context whose records are tagged with run.
func WithRun(ctx context.Context, run Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

// RunFromContext returns the run stored by WithRun.
func RunFromContext(ctx context.Context) (Run, bool) {
	if ctx == nil {
		return Run{}, false
	}
	run, ok := ctx.Value(runKey{}).(Run)
	return run, ok
}

func (r Run) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	if r.ID != "" {
		attrs = append(attrs, slog.String("runId", r.ID))
	}
	if r.Assembly != "" {
		attrs = append(attrs, slog.String("assembly", string(r.Assembly)))
	}
	if r.Preset != "" {
		attrs = append(attrs, slog.String("preset", r.Preset))
	}
	return attrs
}
