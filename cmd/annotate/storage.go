package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OCAP2/annotations/internal/config"
	"github.com/OCAP2/annotations/internal/storage"
	"github.com/OCAP2/annotations/internal/storage/memory"
	pgstorage "github.com/OCAP2/annotations/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/annotations/internal/storage/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func (a *app) createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		backend, err := pgstorage.New(config.GetDBConfig(), a.log, a.dbLogger())
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		a.log.Info("Postgres storage backend initialized")
		return backend, nil

	case "sqlite":
		backend, err := sqlitestorage.New(sqlitestorage.FromConfig(storageCfg.SQLite), a.log, a.dbLogger())
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		a.log.Info("SQLite storage backend initialized", "path", storageCfg.SQLite.Path)
		return backend, nil

	case "memory", "":
		a.log.Warn("Memory storage backend does not outlive this command")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// dbLogger returns the zerolog logger used by the database layer, writing
// to the same log file as slog.
func (a *app) dbLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("logLevel")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(a.logFile).With().Timestamp().Str("component", "database").Logger().Level(level)
}

// withStorage opens the configured backend, runs fn and closes it.
func (a *app) withStorage(fn func(storage.Backend) error) (err error) {
	backend, err := a.createStorageBackend(config.GetStorageConfig())
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		a.log.Error("Failed to initialize storage backend", "error", err)
		return errors.Join(err, backend.Close())
	}
	defer func() {
		err = errors.Join(err, backend.Close())
	}()
	return fn(backend)
}
