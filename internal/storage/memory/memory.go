// internal/storage/memory/memory.go
package memory

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/OCAP2/annotations/internal/project"
	"github.com/OCAP2/annotations/internal/storage"
)

// record is one saved project: its document and the summary taken when it
// was saved.
type record struct {
	document []byte
	summary  storage.Summary
}

// Backend keeps project documents in memory. It is safe for concurrent use.
type Backend struct {
	projects map[string]record
	now      func() time.Time
	mu       sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		projects: make(map[string]record),
		now:      time.Now,
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close drops all stored projects.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.projects)
	return nil
}

// SaveProject stores the document of p under name.
func (b *Backend) SaveProject(name string, p *project.Project) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.Save(&buf); err != nil {
		return fmt.Errorf("encode project %q: %w", name, err)
	}
	summary, err := storage.Summarize(name, p, b.now())
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.projects[name] = record{document: buf.Bytes(), summary: summary}
	return nil
}

// LoadProject decodes the stored document with l.
func (b *Backend) LoadProject(name string, l *project.Loader) (*project.Project, project.Report, error) {
	b.mu.RLock()
	rec, ok := b.projects[name]
	b.mu.RUnlock()
	if !ok {
		return nil, project.Report{}, fmt.Errorf("%w: %q", storage.ErrNotFound, name)
	}
	return l.Load(bytes.NewReader(rec.document))
}

// ListProjects returns the summaries of all stored projects.
func (b *Backend) ListProjects() ([]storage.Summary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]storage.Summary, 0, len(b.projects))
	for _, rec := range b.projects {
		out = append(out, rec.summary.Clone())
	}
	slices.SortFunc(out, func(x, y storage.Summary) int {
		return strings.Compare(x.Name, y.Name)
	})
	return out, nil
}

// DeleteProject removes a stored project.
func (b *Backend) DeleteProject(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.projects[name]; !ok {
		return fmt.Errorf("%w: %q", storage.ErrNotFound, name)
	}
	delete(b.projects, name)
	return nil
}
