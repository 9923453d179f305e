package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ContextProvider returns process-wide attributes added to every record.
type ContextProvider func() []slog.Attr

// Sink is one named destination for log records.
type Sink struct {
	Name    string
	Handler slog.Handler
}

// RunHandler fans records out to its sinks. Every record is tagged with the sizing run
// carried by its context and with the provider's attributes. A failing sink does not
// stop delivery to the others; their errors are joined.
type RunHandler struct {
	sinks    []Sink
	provider ContextProvider
}

// NewRunHandler creates a RunHandler. Sinks without a handler are dropped and provider
// may be nil.
func NewRunHandler(provider ContextProvider, sinks ...Sink) *RunHandler {
	valid := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s.Handler != nil {
			valid = append(valid, s)
		}
	}
	return &RunHandler{sinks: valid, provider: provider}
}

// SinkNames lists the sinks in delivery order.
func (h *RunHandler) SinkNames() []string {
	names := make([]string, len(h.sinks))
	for i, s := range h.sinks {
		names[i] = s.Name
	}
	return names
}

// Enabled reports whether any sink takes records at level.
func (h *RunHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range h.sinks {
		if s.Handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle tags r and hands a copy to each enabled sink.
func (h *RunHandler) Handle(ctx context.Context, r slog.Record) error {
	if run, ok := RunFromContext(ctx); ok {
		r.AddAttrs(run.attrs()...)
	}
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}

	var errs []error
	for _, s := range h.sinks {
		if !s.Handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// WithAttrs adds attrs on every sink.
func (h *RunHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

// WithGroup opens group name on every sink.
func (h *RunHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.each(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (h *RunHandler) each(f func(slog.Handler) slog.Handler) *RunHandler {
	sinks := make([]Sink, len(h.sinks))
	for i, s := range h.sinks {
		sinks[i] = Sink{Name: s.Name, Handler: f(s.Handler)}
	}
	return &RunHandler{sinks: sinks, provider: h.provider}
}
