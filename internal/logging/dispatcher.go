package logging

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/drivese/drivese/pkg/core"
)

// DispatcherLogger adapts zerolog.Logger to the dispatcher.Logger interface. Records
// that name a sizing command also carry the assembly it sizes.
type DispatcherLogger struct {
	logger zerolog.Logger
}

// NewDispatcherLogger creates a new DispatcherLogger wrapping a zerolog.Logger.
func NewDispatcherLogger(logger zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{logger: logger}
}

// Debug logs a debug message with optional key-value pairs.
func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	write(l.logger.Debug(), msg, keysAndValues)
}

// Info logs an info message with optional key-value pairs.
func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	write(l.logger.Info(), msg, keysAndValues)
}

// Error logs an error message with optional key-value pairs.
func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	write(l.logger.Error(), msg, keysAndValues)
}

// write adds key-value pairs to ev with typed fields for errors and durations. Pairs
// with a non-string key are skipped.
func write(ev *zerolog.Event, msg string, keysAndValues []any) {
	if ev == nil {
		return
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		switch v := keysAndValues[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case string:
			ev = ev.Str(key, v)
			if key == "command" {
				if asm := commandAssembly(v); asm != "" {
					ev = ev.Str("assembly", string(asm))
				}
			}
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

// commandAssembly maps size:4pt, batch:3pt, hub, batch:hub and the like to the
// assembly they size.
func commandAssembly(command string) core.Assembly {
	target := command
	if _, after, found := strings.Cut(command, ":"); found {
		target = after
	}
	switch target {
	case "4pt":
		return core.AssemblyDrive4pt
	case "3pt":
		return core.AssemblyDrive3pt
	case "hub":
		return core.AssemblyHub
	}
	return ""
}
