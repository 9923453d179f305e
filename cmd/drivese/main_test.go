package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/drivese/drivese/internal/config"
	"github.com/drivese/drivese/internal/logging"
	"github.com/drivese/drivese/internal/storage/memory"
	sqlitestorage "github.com/drivese/drivese/internal/storage/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"version"}, &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), AppName+" "+Version)
}

func TestRun_Presets(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"presets"}, &out, &errOut)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "drivetrain: 1.5mw, 5mw, 750kw")
}

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer

	assert.Equal(t, 2, run(nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "usage: drivese")

	errOut.Reset()
	assert.Equal(t, 2, run([]string{"--no-such-flag"}, &out, &errOut))
}

func TestCreateStorageBackend(t *testing.T) {
	logs := logging.NewSlogManager()
	zlog := zerolog.Nop()

	t.Run("memory", func(t *testing.T) {
		b, err := createStorageBackend(config.StorageConfig{Type: "memory"}, logs, zlog)
		require.NoError(t, err)
		assert.IsType(t, &memory.Backend{}, b)
	})

	t.Run("empty type", func(t *testing.T) {
		b, err := createStorageBackend(config.StorageConfig{}, logs, zlog)
		require.NoError(t, err)
		assert.IsType(t, &memory.Backend{}, b)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.StorageConfig{Type: "sqlite", SQLite: config.SQLiteConfig{
			Path: filepath.Join(t.TempDir(), "runs.db"),
		}}
		b, err := createStorageBackend(cfg, logs, zlog)
		require.NoError(t, err)
		assert.IsType(t, &sqlitestorage.Backend{}, b)
	})

	t.Run("postgres unreachable falls back to sqlite", func(t *testing.T) {
		cfg := config.StorageConfig{
			Type:   "postgres",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "runs.db")},
			DB:     config.DatabaseConfig{Host: "127.0.0.1", Port: "1", Database: "drivese"},
		}
		b, err := createStorageBackend(cfg, logs, zlog)
		require.NoError(t, err)
		assert.IsType(t, &sqlitestorage.Backend{}, b)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := createStorageBackend(config.StorageConfig{Type: "mongo"}, logs, zlog)
		assert.ErrorContains(t, err, "unknown storage type")
	})
}
