package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/OCAP2/annotations/internal/annotation"
	"github.com/OCAP2/annotations/internal/geo"
	"github.com/OCAP2/annotations/internal/xmlnode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	ErrNotProject         = errors.New("not an annotation project")
	ErrUnsupportedVersion = errors.New("unsupported project version")
)

// Skipped describes an annotation element that could not be loaded.
type Skipped struct {
	// Index is the position of the element among the project's
	// annotations.
	Index int
	Type  string
	Err   error
}

// Report summarizes a load.
type Report struct {
	Loaded  int
	Skipped []Skipped
	// Recovered counts loaded annotations that had malformed values
	// replaced by defaults.
	Recovered int
}

// Loader reads project documents.
type Loader struct {
	registry *annotation.Registry
	log      *slog.Logger

	loaded    metric.Int64Counter
	skipped   metric.Int64Counter
	recovered metric.Int64Counter
}

// NewLoader returns a Loader creating annotations from reg. A nil logger
// discards log output and a nil meter records nothing.
func NewLoader(reg *annotation.Registry, logger *slog.Logger, meter metric.Meter) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if meter == nil {
		meter = noop.Meter{}
	}
	l := &Loader{registry: reg, log: logger}
	l.loaded = counter(meter, "annotations.loaded", "Annotations loaded from project documents")
	l.skipped = counter(meter, "annotations.skipped", "Annotation elements skipped while loading")
	l.recovered = counter(meter, "annotations.recovered", "Loaded annotations with malformed values replaced by defaults")
	return l
}

func counter(m metric.Meter, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		c, _ = noop.Meter{}.Int64Counter(name)
	}
	return c
}

// Load parses a project document. An error is returned only if the
// document itself cannot be read; problems with single annotations are
// logged and listed in the report.
func (l *Loader) Load(r io.Reader) (*Project, Report, error) {
	root, err := xmlnode.Parse(r)
	if err != nil {
		return nil, Report{}, fmt.Errorf("parse project: %w", err)
	}
	return l.Decode(root)
}

// Decode builds a project from its XML tree.
func (l *Loader) Decode(root *xmlnode.Element) (*Project, Report, error) {
	var report Report
	if root == nil || root.Name != RootElement {
		return nil, report, ErrNotProject
	}
	if v := root.AttrOr("version", Version); v != Version {
		return nil, report, fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}

	p := New(root.AttrOr("title", ""))
	r := xmlnode.NewReader(root)
	crs := r.Int("crs", geo.WGS84)
	if crs <= 0 {
		r.Malformed("crs", root.AttrOr("crs", ""))
		crs = geo.WGS84
	}
	if err := r.Err(); err != nil {
		l.log.Warn("Invalid project CRS, using default", "error", err, "crs", crs)
	}
	p.CRS = crs

	ctx := context.Background()
	list := root.Child(AnnotationsElement)
	if list == nil {
		return p, report, nil
	}
	for i, node := range list.ChildrenNamed(annotation.Element) {
		typ := node.AttrOr("annotationType", "")
		a, err := annotation.Decode(l.registry, node)
		if a == nil {
			report.Skipped = append(report.Skipped, Skipped{Index: i, Type: typ, Err: err})
			l.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typ)))
			l.log.Warn("Skipping annotation", "index", i, "type", typ, "error", err)
			continue
		}
		if err != nil {
			report.Recovered++
			l.recovered.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typ)))
			l.log.Warn("Annotation loaded with defaults for malformed values",
				"index", i, "type", typ, "id", a.Common().ID(), "error", err)
		}
		p.Add(a)
		report.Loaded++
		l.loaded.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typ)))
	}
	l.log.Debug("Loaded project", "title", p.Title, "annotations", report.Loaded, "skipped", len(report.Skipped))
	return p, report, nil
}
