// Package richtext implements the formatted-text document shown by text
// annotations: paragraphs of runs with character and paragraph formatting,
// its XML markup, Markdown import and line layout.
package richtext

import (
	"image/color"
	"slices"
	"strings"

	"github.com/OCAP2/annotations/internal/colors"
)

// DefaultSize is the point size used when a CharFormat leaves Size at zero.
const DefaultSize = 12.0

// MaxSize is the largest point size drawn. Larger sizes are clamped.
const MaxSize = 1000.0

// MaxSpacing bounds paragraph indentation and spacing read from markup.
const MaxSpacing = 10000.0

// Font families understood by Faces.
const (
	FamilySans = "sans"
	FamilyMono = "mono"
)

// Align is the horizontal alignment of a paragraph.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

func parseAlign(s string) (Align, bool) {
	switch s {
	case "left":
		return AlignLeft, true
	case "center":
		return AlignCenter, true
	case "right":
		return AlignRight, true
	}
	return AlignLeft, false
}

// CharFormat is the formatting of a run. The zero value is 12pt sans-serif
// black text.
type CharFormat struct {
	Family    string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	StrikeOut bool
	// Color of the glyphs. The zero value means black.
	Color color.NRGBA
}

// PointSize returns Size clamped to MaxSize, or DefaultSize if Size is not
// a positive number.
func (f CharFormat) PointSize() float64 {
	if !(f.Size > 0) {
		return DefaultSize
	}
	return min(f.Size, MaxSize)
}

// FamilyName returns Family, or FamilySans if it is empty.
func (f CharFormat) FamilyName() string {
	if f.Family == "" {
		return FamilySans
	}
	return f.Family
}

// TextColor returns the colour glyphs are drawn with.
func (f CharFormat) TextColor() color.NRGBA {
	if f.Color == (color.NRGBA{}) {
		return colors.Black
	}
	return f.Color
}

// ParagraphFormat is the formatting of a paragraph.
type ParagraphFormat struct {
	Align Align
	// Indent is the left indentation in pixels.
	Indent float64
	// SpacingAfter is the vertical gap after the paragraph in pixels.
	SpacingAfter float64
}

// Run is a span of text sharing one CharFormat.
type Run struct {
	Text   string
	Format CharFormat
}

// Paragraph is a block of runs. A newline inside a run forces a line break
// without starting a new paragraph.
type Paragraph struct {
	Format ParagraphFormat
	Runs   []Run
}

// Text returns the concatenated text of all runs.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Document is a formatted-text document.
type Document struct {
	Paragraphs []Paragraph
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// FromPlainText builds a document with one unformatted paragraph per line
// of s.
func FromPlainText(s string) *Document {
	d := New()
	if s == "" {
		return d
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, line := range strings.Split(s, "\n") {
		p := Paragraph{}
		if line != "" {
			p.Runs = []Run{{Text: line}}
		}
		d.Paragraphs = append(d.Paragraphs, p)
	}
	return d
}

// AddParagraph appends a paragraph and returns a pointer to it, valid until
// the next modification of d.Paragraphs.
func (d *Document) AddParagraph(f ParagraphFormat, runs ...Run) *Paragraph {
	d.Paragraphs = append(d.Paragraphs, Paragraph{Format: f, Runs: runs})
	return &d.Paragraphs[len(d.Paragraphs)-1]
}

// PlainText returns the document text with paragraphs separated by "\n".
func (d *Document) PlainText() string {
	if d == nil {
		return ""
	}
	parts := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		parts[i] = p.Text()
	}
	return strings.Join(parts, "\n")
}

// IsEmpty reports whether the document contains no text at all.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, p := range d.Paragraphs {
		for _, r := range p.Runs {
			if r.Text != "" {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of d. Cloning nil returns nil.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Paragraphs: make([]Paragraph, len(d.Paragraphs))}
	for i, p := range d.Paragraphs {
		out.Paragraphs[i] = Paragraph{Format: p.Format, Runs: slices.Clone(p.Runs)}
	}
	if d.Paragraphs == nil {
		out.Paragraphs = nil
	}
	return out
}
