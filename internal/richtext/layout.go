package richtext

import (
	"math"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Fragment is a piece of a line drawn with a single face. X is relative to
// the left edge of the layout box.
type Fragment struct {
	X      float64
	Width  float64
	Text   string
	Format CharFormat
	Face   font.Face
}

// Line is one laid out line. Top and Baseline are relative to the top of
// the layout box.
type Line struct {
	Top       float64
	Baseline  float64
	Height    float64
	Ascent    float64
	Width     float64
	Fragments []Fragment
}

// Layout is the result of laying out a document.
type Layout struct {
	Lines []Line
	// Width and Height are the natural size of the text: the widest line
	// including its indentation, and the total height.
	Width  float64
	Height float64
}

// Layout breaks the document into lines no wider than maxWidth, wrapping
// at spaces. Words wider than maxWidth are not split; they overflow and it
// is up to the caller to clip. maxWidth <= 0 disables wrapping.
//
// The layout is computed from the current content on every call.
func (d *Document) Layout(maxWidth float64, faces FaceSource) Layout {
	var out Layout
	if d == nil {
		return out
	}
	var aligns []lineAlign
	y := 0.0
	for i, p := range d.Paragraphs {
		lb := lineBreaker{
			faces:    faces,
			avail:    maxWidth - p.Format.Indent,
			wrap:     maxWidth > 0,
			fallback: paragraphFormat(p),
		}
		for _, r := range p.Runs {
			lb.addRun(r)
		}
		lb.flush(true)
		for _, l := range lb.lines {
			l.Top = y
			l.Baseline = y + l.Ascent
			y += l.Height
			out.Lines = append(out.Lines, l)
			aligns = append(aligns, lineAlign{align: p.Format.Align, indent: p.Format.Indent})
			out.Width = math.Max(out.Width, l.Width+p.Format.Indent)
		}
		if i < len(d.Paragraphs)-1 {
			y += p.Format.SpacingAfter
		}
	}
	out.Height = y

	ref := maxWidth
	if ref <= 0 {
		ref = out.Width
	}
	for i := range out.Lines {
		l := &out.Lines[i]
		shift := aligns[i].indent
		free := ref - aligns[i].indent - l.Width
		switch aligns[i].align {
		case AlignCenter:
			shift += math.Max(free/2, 0)
		case AlignRight:
			shift += math.Max(free, 0)
		}
		for j := range l.Fragments {
			l.Fragments[j].X += shift
		}
	}
	return out
}

type lineAlign struct {
	align  Align
	indent float64
}

// paragraphFormat is the format that sizes an empty line of p.
func paragraphFormat(p Paragraph) CharFormat {
	if len(p.Runs) > 0 {
		return p.Runs[0].Format
	}
	return CharFormat{}
}

type lineBreaker struct {
	faces    FaceSource
	avail    float64
	wrap     bool
	fallback CharFormat

	lines []Line
	cur   []Fragment
	x     float64
	// content is the width up to the end of the last non-space token.
	content float64
}

func (lb *lineBreaker) addRun(r Run) {
	face := lb.faces.Face(r.Format)
	for _, tok := range tokenize(r.Text) {
		switch {
		case tok == "\n":
			lb.flush(false)
		case isSpace(tok):
			if len(lb.cur) == 0 {
				continue
			}
			lb.place(tok, r.Format, face)
		default:
			w := measure(face, tok)
			if lb.wrap && len(lb.cur) > 0 && lb.x+w > lb.avail {
				lb.flush(false)
			}
			lb.place(tok, r.Format, face)
			lb.content = lb.x
		}
	}
}

func (lb *lineBreaker) place(tok string, f CharFormat, face font.Face) {
	w := measure(face, tok)
	if n := len(lb.cur); n > 0 && lb.cur[n-1].Format == f {
		lb.cur[n-1].Text += tok
		lb.cur[n-1].Width += w
	} else {
		lb.cur = append(lb.cur, Fragment{X: lb.x, Width: w, Text: tok, Format: f, Face: face})
	}
	lb.x += w
}

// flush ends the current line. With final set, an empty trailing line is
// only emitted when the paragraph produced no line at all.
func (lb *lineBreaker) flush(final bool) {
	if final && len(lb.cur) == 0 && len(lb.lines) > 0 {
		return
	}
	var ascent, descent float64
	if len(lb.cur) == 0 {
		m := lb.faces.Face(lb.fallback).Metrics()
		ascent, descent = toFloat(m.Ascent), toFloat(m.Descent)
	}
	for _, fr := range lb.cur {
		m := fr.Face.Metrics()
		ascent = math.Max(ascent, toFloat(m.Ascent))
		descent = math.Max(descent, toFloat(m.Descent))
	}
	lb.lines = append(lb.lines, Line{
		Ascent:    ascent,
		Height:    ascent + descent,
		Width:     lb.content,
		Fragments: lb.cur,
	})
	lb.cur = nil
	lb.x = 0
	lb.content = 0
}

// tokenize splits s into words, runs of spaces and single newlines.
func tokenize(s string) []string {
	var toks []string
	start := 0
	kind := -1
	for i, r := range s {
		k := tokenKind(r)
		if r == '\n' {
			if start < i {
				toks = append(toks, s[start:i])
			}
			toks = append(toks, "\n")
			start = i + utf8.RuneLen(r)
			kind = -1
			continue
		}
		if kind != -1 && k != kind {
			toks = append(toks, s[start:i])
			start = i
		}
		kind = k
	}
	if start < len(s) {
		toks = append(toks, s[start:])
	}
	return toks
}

func tokenKind(r rune) int {
	if unicode.IsSpace(r) {
		return 1
	}
	return 0
}

func isSpace(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsSpace(r)
}

func measure(face font.Face, s string) float64 {
	return toFloat(font.MeasureString(face, s))
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
