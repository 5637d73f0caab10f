// Package annotation implements map annotations: callout frames anchored to
// a map position or to a fixed place on screen, drawn through a
// render.Context and persisted as XML elements.
//
// Every annotation kind embeds Base, which owns anchoring, frame geometry,
// frame style and the shared part of the persisted state. A kind supplies
// its content through the Content interface and is created by name through
// a Registry.
package annotation

import (
	"github.com/OCAP2/annotations/internal/render"
	"github.com/OCAP2/annotations/internal/xmlnode"
	"github.com/OCAP2/annotations/pkg/core"
)

// Annotation is an overlay item.
type Annotation interface {
	// Type is the discriminator written to and read from persisted state.
	Type() string
	// Common gives access to the shared anchoring and frame properties.
	Common() *Base
	// Render draws the annotation onto a target of the given size.
	Render(ctx render.Context, size core.Size)
	// WriteState stores the full state of the annotation in node.
	WriteState(node *xmlnode.Element) error
	// ReadState restores the state from node. The annotation is usable
	// whatever the error: malformed values are replaced with defaults and
	// reported in the returned error, which wraps
	// xmlnode.ErrMalformedAttribute.
	ReadState(node *xmlnode.Element) error
}

// Content is implemented by every annotation kind and called by Base.
type Content interface {
	// RenderContent draws inside interior, which is the frame minus its
	// margins.
	RenderContent(ctx render.Context, interior core.Rect)
	// WriteContent fills the <content> child element.
	WriteContent(node *xmlnode.Element) error
	// ReadContent restores the content. node is nil when the persisted
	// state has no <content> element.
	ReadContent(node *xmlnode.Element) error
}

// ContentSizer is implemented by content that can report its natural size.
// It is used for frames sized to their content.
type ContentSizer interface {
	ContentSize() core.Size
}
