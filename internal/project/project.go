// Package project groups annotations into an ordered collection that can be
// saved to and loaded from a single XML document.
package project

import (
	"fmt"
	"io"
	"slices"

	"github.com/OCAP2/annotations/internal/annotation"
	"github.com/OCAP2/annotations/internal/geo"
	"github.com/OCAP2/annotations/internal/render"
	"github.com/OCAP2/annotations/internal/xmlnode"
	"github.com/OCAP2/annotations/pkg/core"
	"github.com/google/uuid"
	geom "github.com/peterstace/simplefeatures/geom"
)

const (
	RootElement        = "annotationProject"
	AnnotationsElement = "annotations"
	// Version of the document layout written by Save.
	Version = "1"
)

// Project is an ordered list of annotations. Later annotations are drawn on
// top of earlier ones.
type Project struct {
	Title string
	// CRS is the EPSG code the project's map is shown in.
	CRS int

	annotations []annotation.Annotation
}

// New returns an empty project.
func New(title string) *Project {
	return &Project{Title: title, CRS: geo.WGS84}
}

// Add appends a to the project.
func (p *Project) Add(a annotation.Annotation) {
	p.annotations = append(p.annotations, a)
}

// Remove deletes the annotation with the given id and reports whether it
// was present.
func (p *Project) Remove(id uuid.UUID) bool {
	i := p.index(id)
	if i < 0 {
		return false
	}
	p.annotations = slices.Delete(p.annotations, i, i+1)
	return true
}

// Find returns the annotation with the given id.
func (p *Project) Find(id uuid.UUID) (annotation.Annotation, bool) {
	i := p.index(id)
	if i < 0 {
		return nil, false
	}
	return p.annotations[i], true
}

func (p *Project) index(id uuid.UUID) int {
	return slices.IndexFunc(p.annotations, func(a annotation.Annotation) bool {
		return a.Common().ID() == id
	})
}

// Annotations returns the annotations in drawing order. The slice is a copy.
func (p *Project) Annotations() []annotation.Annotation {
	return slices.Clone(p.annotations)
}

func (p *Project) Len() int { return len(p.annotations) }

// TypeCounts returns the number of annotations per discriminator.
func (p *Project) TypeCounts() map[string]int {
	out := make(map[string]int)
	for _, a := range p.annotations {
		out[a.Type()]++
	}
	return out
}

// MapExtent returns the envelope of the anchors of all map anchored
// annotations, converted to the project CRS. It is empty if there are none.
func (p *Project) MapExtent() (geom.Envelope, error) {
	var xys []geom.XY
	for _, a := range p.annotations {
		b := a.Common()
		pos, ok := b.MapPosition()
		if !ok {
			continue
		}
		q, err := geo.Transform(pos, b.MapPositionCRS(), p.CRS)
		if err != nil {
			return geom.Envelope{}, fmt.Errorf("annotation %s: %w", b.ID(), err)
		}
		xys = append(xys, geom.XY{X: q.X, Y: q.Y})
	}
	return geo.EnvelopeOf(xys...)
}

// Render draws every annotation in order.
func (p *Project) Render(ctx render.Context, size core.Size) {
	for _, a := range p.annotations {
		a.Render(ctx, size)
	}
}

// Encode returns the project as an XML tree.
func (p *Project) Encode() (*xmlnode.Element, error) {
	root := xmlnode.New(RootElement)
	root.SetAttr("version", Version)
	root.SetAttr("title", p.Title)
	root.SetInt("crs", p.CRS)

	list := root.AppendChild(xmlnode.New(AnnotationsElement))
	for i, a := range p.annotations {
		node, err := annotation.Encode(a)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", i, err)
		}
		list.AppendChild(node)
	}
	return root, nil
}

// Save writes the project document to w.
func (p *Project) Save(w io.Writer) error {
	root, err := p.Encode()
	if err != nil {
		return err
	}
	return xmlnode.Write(w, root)
}
