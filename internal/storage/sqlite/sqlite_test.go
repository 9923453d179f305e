package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drivese/drivese/internal/database"
	"github.com/drivese/drivese/internal/logging"
	"github.com/drivese/drivese/internal/model"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestSaveRun_SnapshotOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "drivese.db")
	b, err := New(Config{DumpPath: path}, logging.NewSlogManager())
	require.NoError(t, err)
	require.NoError(t, b.Init())

	run := &core.Run{ID: "r1", Assembly: core.AssemblyHub, Preset: "750kw", StartedAt: time.Now(),
		Components: []core.ComponentResult{{Name: "hub", Mass: 3000}}}
	require.NoError(t, b.SaveRun(run))

	got, err := b.GetRun("r1")
	require.NoError(t, err)
	assert.Equal(t, "750kw", got.Preset)

	require.NoError(t, b.Close())
	require.FileExists(t, path)

	disk, err := database.OpenSqlite(path)
	require.NoError(t, err)
	var count int64
	require.NoError(t, disk.Model(&model.ComponentRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.db")
	b, err := New(Config{DumpPath: path, DumpInterval: 10 * time.Millisecond}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	defer func() { require.NoError(t, b.Close()) }()

	assert.Eventually(t, func() bool {
		return fileExists(path)
	}, time.Second, 10*time.Millisecond)
}

func TestClose_NoDumpPath(t *testing.T) {
	b, err := New(Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	assert.NoError(t, b.Close())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestNewWithDB(t *testing.T) {
	db, err := database.OpenSqlite("")
	require.NoError(t, err)

	b := NewWithDB(db, Config{}, nil)
	require.NoError(t, b.Init())
	defer func() { require.NoError(t, b.Close()) }()

	require.NoError(t, b.SaveRun(&core.Run{ID: "x", Assembly: core.AssemblyDrive4pt}))
	var count int64
	require.NoError(t, db.Model(&model.SizingRun{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
