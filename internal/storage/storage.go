// internal/storage/storage.go
package storage

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/OCAP2/annotations/internal/project"
	geom "github.com/peterstace/simplefeatures/geom"
)

var (
	ErrNotFound    = errors.New("project not found")
	ErrInvalidName = errors.New("invalid project name")
)

// Backend is the interface all storage implementations must satisfy.
// Projects are stored as complete documents under a unique name; saving
// under an existing name replaces the stored project.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	SaveProject(name string, p *project.Project) error
	// LoadProject returns ErrNotFound for unknown names.
	LoadProject(name string, l *project.Loader) (*project.Project, project.Report, error)
	// ListProjects returns the stored projects ordered by name.
	ListProjects() ([]Summary, error)
	// DeleteProject returns ErrNotFound for unknown names.
	DeleteProject(name string) error
}

// Summary describes a stored project without loading it.
type Summary struct {
	Name        string
	Title       string
	CRS         int
	Annotations int
	Types       map[string]int
	// Extent covers the map anchors, in CRS. Empty when there are none.
	Extent    geom.Envelope
	UpdatedAt time.Time
}

// Summarize builds the summary stored alongside p.
func Summarize(name string, p *project.Project, updated time.Time) (Summary, error) {
	extent, err := p.MapExtent()
	if err != nil {
		return Summary{}, fmt.Errorf("project extent: %w", err)
	}
	return Summary{
		Name:        name,
		Title:       p.Title,
		CRS:         p.CRS,
		Annotations: p.Len(),
		Types:       p.TypeCounts(),
		Extent:      extent,
		UpdatedAt:   updated,
	}, nil
}

// Clone returns a copy of s that shares no maps with it.
func (s Summary) Clone() Summary {
	s.Types = maps.Clone(s.Types)
	return s
}

// ValidateName rejects names that cannot identify a project.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: longer than 255 bytes", ErrInvalidName)
	}
	return nil
}
