package annotation

import (
	"fmt"
	"image/color"
	"math"

	"github.com/OCAP2/annotations/internal/render"
	"github.com/OCAP2/annotations/internal/richtext"
	"github.com/OCAP2/annotations/internal/xmlnode"
	"github.com/OCAP2/annotations/pkg/core"
)

// TextType is the discriminator of text annotations.
const TextType = "text"

// Content formats understood by Text.ReadContent.
const (
	FormatRichText = "richtext"
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

// Text is an annotation showing a formatted-text document. The annotation
// exclusively owns its document.
type Text struct {
	Base
	doc   *richtext.Document
	faces richtext.FaceSource
}

// NewText returns a text annotation with default properties and an empty
// document.
func NewText() *Text {
	return &Text{
		Base:  NewBase(),
		doc:   richtext.New(),
		faces: richtext.DefaultFaces(),
	}
}

// RegisterText makes text annotations available from r.
func RegisterText(r *Registry) error {
	return r.Register(TextType, func() Annotation { return NewText() })
}

func (t *Text) Type() string { return TextType }

func (t *Text) Common() *Base { return &t.Base }

// Document returns the owned document, which may be nil. It must not be
// modified or kept by the caller; use SetDocument to change the content.
func (t *Text) Document() *richtext.Document { return t.doc }

// SetDocument replaces the content with a copy of doc. Later changes to doc
// do not affect the annotation. A nil doc leaves an empty frame.
func (t *Text) SetDocument(doc *richtext.Document) {
	t.doc = doc.Clone()
}

// SetFaces changes the fonts used for layout and drawing.
func (t *Text) SetFaces(fs richtext.FaceSource) {
	t.faces = fs
}

func (t *Text) Render(ctx render.Context, size core.Size) {
	t.RenderFrame(ctx, size, t)
}

func (t *Text) WriteState(node *xmlnode.Element) error {
	return t.WriteBase(node, TextType, t)
}

func (t *Text) ReadState(node *xmlnode.Element) error {
	return t.ReadBase(node, t)
}

// ContentSize returns the unwrapped size of the document, rounded up to
// whole pixels.
func (t *Text) ContentSize() core.Size {
	if t.doc == nil {
		return core.Size{}
	}
	l := t.doc.Layout(0, t.faces)
	return core.Size{Width: math.Ceil(l.Width), Height: math.Ceil(l.Height)}
}

// RenderContent lays out the document at the width of interior and draws
// it clipped to interior. Text that does not fit is cut off.
func (t *Text) RenderContent(ctx render.Context, interior core.Rect) {
	if t.doc.IsEmpty() {
		return
	}
	l := t.doc.Layout(interior.Width(), t.faces)
	for _, line := range l.Lines {
		if line.Top >= interior.Height() {
			break
		}
		for _, fr := range line.Fragments {
			origin := core.Point{
				X: interior.Min.X + fr.X,
				Y: interior.Min.Y + line.Baseline,
			}
			col := fr.Format.TextColor()
			ctx.DrawText(interior, origin, fr.Text, fr.Face, col)

			thickness := math.Max(1, math.Round(fr.Format.PointSize()/14))
			if fr.Format.Underline {
				drawRule(ctx, interior, origin, fr.Width, origin.Y+1, thickness, col)
			}
			if fr.Format.StrikeOut {
				drawRule(ctx, interior, origin, fr.Width, origin.Y-math.Round(line.Ascent*0.3), thickness, col)
			}
		}
	}
}

func drawRule(ctx render.Context, clip core.Rect, origin core.Point, width, y, thickness float64, col color.NRGBA) {
	r := core.Rect{
		Min: core.Point{X: origin.X, Y: y},
		Max: core.Point{X: origin.X + width, Y: y + thickness},
	}.Intersect(clip)
	if r.Empty() {
		return
	}
	ctx.DrawRect(r, render.FrameStyle{Fill: col})
}

// WriteContent stores the document as rich-text markup. A nil document
// leaves the content element without a document. Text that XML cannot
// carry fails with xmlnode.ErrInvalidText instead of being replaced.
func (t *Text) WriteContent(node *xmlnode.Element) error {
	if err := t.doc.Validate(); err != nil {
		return err
	}
	node.SetAttr("format", FormatRichText)
	if t.doc != nil {
		node.AppendChild(t.doc.Element())
	}
	return nil
}

// ReadContent replaces the document with the one stored in node. Besides
// rich-text markup it accepts Markdown and plain text sources held as the
// element's character data.
func (t *Text) ReadContent(node *xmlnode.Element) error {
	if node == nil {
		t.doc = richtext.New()
		return nil
	}
	switch format := node.AttrOr("format", FormatRichText); format {
	case FormatRichText:
		el := node.Child(richtext.DocumentElement)
		if el == nil {
			t.doc = nil
			return nil
		}
		doc, err := richtext.FromElement(el)
		t.doc = doc
		return err
	case FormatMarkdown:
		t.doc = richtext.FromMarkdown([]byte(node.Text))
	case FormatPlain:
		t.doc = richtext.FromPlainText(node.Text)
	default:
		t.doc = richtext.New()
		return fmt.Errorf("%w: content format %q", xmlnode.ErrMalformedAttribute, format)
	}
	return nil
}
