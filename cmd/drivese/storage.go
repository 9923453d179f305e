package main

import (
	"fmt"

	"github.com/drivese/drivese/internal/config"
	"github.com/drivese/drivese/internal/database"
	"github.com/drivese/drivese/internal/logging"
	"github.com/drivese/drivese/internal/storage"
	"github.com/drivese/drivese/internal/storage/memory"
	pgstorage "github.com/drivese/drivese/internal/storage/postgres"
	sqlitestorage "github.com/drivese/drivese/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

func createStorageBackend(storageCfg config.StorageConfig, logs *logging.SlogManager, zlog zerolog.Logger) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		// The manager falls back to in-memory SQLite when Postgres is unreachable.
		mgr := database.NewManager(zlog, storageCfg.SQLite.Path)
		if err := mgr.Connect(storageCfg.DB); err != nil {
			return nil, err
		}
		if mgr.ShouldSaveLocal {
			logs.Logger().Warn("Postgres unavailable, using SQLite storage backend", "dumpPath", storageCfg.SQLite.Path)
			return sqlitestorage.NewWithDB(mgr.DB, sqliteConfig(storageCfg), logs), nil
		}
		logs.Logger().Info("Postgres storage backend initialized", "host", storageCfg.DB.Host)
		return pgstorage.New(pgstorage.Config{DB: storageCfg.DB}, pgstorage.Dependencies{
			DB:         mgr.DB,
			LogManager: logs,
		}), nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqliteConfig(storageCfg), logs)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logs.Logger().Info("SQLite storage backend initialized", "dumpPath", storageCfg.SQLite.Path)
		return backend, nil

	case "memory", "":
		logs.Logger().Info("Memory storage backend initialized", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageCfg.Type)
	}
}

func sqliteConfig(storageCfg config.StorageConfig) sqlitestorage.Config {
	return sqlitestorage.Config{
		DumpInterval: storageCfg.SQLite.DumpInterval,
		DumpPath:     storageCfg.SQLite.Path,
	}
}
