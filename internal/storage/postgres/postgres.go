// Package postgres implements the storage.Backend interface on PostgreSQL
// through the GORM backend.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/annotations/internal/config"
	"github.com/OCAP2/annotations/internal/database"
	gormstorage "github.com/OCAP2/annotations/internal/storage/gorm"

	"github.com/rs/zerolog"
)

// Backend implements storage.Backend using GORM/PostgreSQL.
type Backend struct {
	*gormstorage.Backend
	db *database.Manager
}

// New connects to the database described by cfg.
func New(cfg config.DBConfig, log *slog.Logger, dbLog zerolog.Logger) (*Backend, error) {
	m := database.NewManager(dbLog)
	db, err := m.OpenPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log, Migrate: m.Migrate}),
		db:      m,
	}, nil
}

// Close closes the connection.
func (b *Backend) Close() error {
	if err := b.Backend.Close(); err != nil {
		return err
	}
	return b.db.Close()
}
