package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivese/drivese/pkg/core"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestDispatcherLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		log   func(*DispatcherLogger)
	}{
		{"debug", func(l *DispatcherLogger) { l.Debug("queued", "command", "size:4pt", "depth", 3) }},
		{"info", func(l *DispatcherLogger) { l.Info("queued", "command", "size:4pt", "depth", 3) }},
		{"error", func(l *DispatcherLogger) { l.Error("queued", "command", "size:4pt", "depth", 3) }},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

			entry := decodeEntry(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "queued", entry["message"])
			assert.Equal(t, "size:4pt", entry["command"])
			assert.Equal(t, "drive4pt", entry["assembly"])
			assert.Equal(t, float64(3), entry["depth"])
		})
	}
}

func TestDispatcherLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	dl.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestDispatcherLogger_TypedFields(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Error("event failed", "command", "batch:hub", "duration", 1500*time.Millisecond, "error", errors.New("no preset"), 7, "skipped")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "batch:hub", entry["command"])
	assert.Equal(t, "hub", entry["assembly"])
	assert.Equal(t, float64(1500), entry["duration"])
	assert.Equal(t, "no preset", entry["error"])
	assert.Len(t, entry, 6)
}

func TestCommandAssembly(t *testing.T) {
	tests := map[string]core.Assembly{
		"size:4pt":  core.AssemblyDrive4pt,
		"batch:4pt": core.AssemblyDrive4pt,
		"size:3pt":  core.AssemblyDrive3pt,
		"batch:3pt": core.AssemblyDrive3pt,
		"hub":       core.AssemblyHub,
		"batch:hub": core.AssemblyHub,
		"runs":      "",
		"":          "",
	}
	for command, want := range tests {
		assert.Equal(t, want, commandAssembly(command), command)
	}
}

func TestDispatcherLogger_NonSizingCommand(t *testing.T) {
	var buf bytes.Buffer
	NewDispatcherLogger(zerolog.New(&buf)).Info("queued", "command", "export")

	entry := decodeEntry(t, &buf)
	assert.NotContains(t, entry, "assembly")
}
