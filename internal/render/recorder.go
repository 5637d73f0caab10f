package render

import (
	"image/color"

	"github.com/OCAP2/annotations/internal/geo"
	"github.com/OCAP2/annotations/pkg/core"
	"golang.org/x/image/font"
)

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpRect OpKind = iota
	OpText
)

// Op is one recorded call. Rect is the rectangle of DrawRect or the clip of
// DrawText.
type Op struct {
	Kind   OpKind
	Rect   core.Rect
	Style  FrameStyle
	Origin core.Point
	Text   string
	Face   font.Face
	Color  color.Color
}

// Recorder is a Context that keeps every call instead of drawing. Without a
// Transform, map positions are used as screen points unchanged.
type Recorder struct {
	Transform *geo.MapTransform
	// MapErr, when set, is returned by every MapToScreen call.
	MapErr error
	Ops    []Op
}

// MapToScreen implements Context.
func (r *Recorder) MapToScreen(pos core.Position2D, crs int) (core.Point, error) {
	if r.MapErr != nil {
		return core.Point{}, r.MapErr
	}
	if r.Transform != nil {
		return r.Transform.Project(pos, crs)
	}
	return core.Point{X: pos.X, Y: pos.Y}, nil
}

// DrawRect implements Context.
func (r *Recorder) DrawRect(rect core.Rect, style FrameStyle) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, Rect: rect, Style: style})
}

// DrawText implements Context.
func (r *Recorder) DrawText(clip core.Rect, origin core.Point, text string, face font.Face, col color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Rect: clip, Origin: origin, Text: text, Face: face, Color: col})
}

// Rects returns the rectangles of all DrawRect calls in order.
func (r *Recorder) Rects() []core.Rect {
	var out []core.Rect
	for _, op := range r.Ops {
		if op.Kind == OpRect {
			out = append(out, op.Rect)
		}
	}
	return out
}

// Texts returns all DrawText calls in order.
func (r *Recorder) Texts() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op)
		}
	}
	return out
}
