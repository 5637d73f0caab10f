// Package gormstorage implements storage.Backend on a gorm database. The
// SQLite and Postgres backends embed it and only differ in how they open
// the connection.
package gormstorage

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/OCAP2/annotations/internal/model"
	"github.com/OCAP2/annotations/internal/project"
	"github.com/OCAP2/annotations/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
	// Migrate replaces DB.AutoMigrate in Init when set.
	Migrate func(models ...any) error
}

// Backend implements storage.Backend on one table of project records.
type Backend struct {
	deps    Dependencies
	dbReady bool
}

// New creates a new GORM storage backend. The connection stays owned by
// the caller.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm storage: no database")
	}
	migrate := b.deps.Migrate
	if migrate == nil {
		migrate = b.deps.DB.AutoMigrate
	}
	if err := migrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.dbReady = true
	return nil
}

// Close is a no-op; the connection belongs to whoever opened it.
func (b *Backend) Close() error {
	b.dbReady = false
	return nil
}

func (b *Backend) ready() error {
	if !b.dbReady {
		return errors.New("gorm storage: not initialized")
	}
	return nil
}

// SaveProject inserts p under name, replacing any project stored there.
func (b *Backend) SaveProject(name string, p *project.Project) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if err := b.ready(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		return fmt.Errorf("encode project %q: %w", name, err)
	}
	extent, err := p.MapExtent()
	if err != nil {
		return fmt.Errorf("project %q extent: %w", name, err)
	}
	meta, err := model.EncodeMetadata(model.ProjectMetadata{
		Annotations: p.Len(),
		Types:       p.TypeCounts(),
		Extent:      model.ExtentToSlice(extent),
	})
	if err != nil {
		return fmt.Errorf("project %q metadata: %w", name, err)
	}

	rec := model.ProjectRecord{
		Name:      name,
		Title:     p.Title,
		CRS:       p.CRS,
		Document:  buf.String(),
		ExtentWKT: model.ExtentWKT(extent),
		Metadata:  meta,
	}
	err = b.deps.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "crs", "document", "extent_wkt", "metadata", "updated_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save project %q: %w", name, err)
	}
	b.deps.Logger.Debug("Saved project", "name", name, "annotations", p.Len())
	return nil
}

// LoadProject reads the project stored under name.
func (b *Backend) LoadProject(name string, l *project.Loader) (*project.Project, project.Report, error) {
	if err := b.ready(); err != nil {
		return nil, project.Report{}, err
	}
	var rec model.ProjectRecord
	err := b.deps.DB.Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, project.Report{}, fmt.Errorf("%w: %q", storage.ErrNotFound, name)
	}
	if err != nil {
		return nil, project.Report{}, fmt.Errorf("load project %q: %w", name, err)
	}
	return l.Load(strings.NewReader(rec.Document))
}

// ListProjects returns the summaries of all stored projects by name.
func (b *Backend) ListProjects() ([]storage.Summary, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	var recs []model.ProjectRecord
	err := b.deps.DB.Omit("document").Order("name").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]storage.Summary, 0, len(recs))
	for _, rec := range recs {
		meta, err := model.DecodeMetadata(rec.Metadata)
		if err != nil {
			b.deps.Logger.Warn("Unreadable project metadata", "name", rec.Name, "error", err)
		}
		out = append(out, storage.Summary{
			Name:        rec.Name,
			Title:       rec.Title,
			CRS:         rec.CRS,
			Annotations: meta.Annotations,
			Types:       meta.Types,
			Extent:      model.ExtentFromSlice(meta.Extent),
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	return out, nil
}

// DeleteProject removes the project stored under name.
func (b *Backend) DeleteProject(name string) error {
	if err := b.ready(); err != nil {
		return err
	}
	res := b.deps.DB.Where("name = ?", name).Delete(&model.ProjectRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete project %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %q", storage.ErrNotFound, name)
	}
	return nil
}
