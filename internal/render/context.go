// Package render is the drawing boundary between annotations and whatever
// surface hosts them. Annotations only ever see a Context.
package render

import (
	"errors"
	"image/color"

	"github.com/OCAP2/annotations/pkg/core"
	"golang.org/x/image/font"
)

// ErrNoMapTransform is returned by MapToScreen on surfaces that only know
// screen coordinates.
var ErrNoMapTransform = errors.New("no map transform")

// FrameStyle describes how a rectangle is painted. The stroke is drawn
// inside the rectangle.
type FrameStyle struct {
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

// Context is a drawing surface together with its map-to-screen mapping.
type Context interface {
	// MapToScreen converts a map position in EPSG code crs to a screen
	// point. An error means the position cannot be shown.
	MapToScreen(pos core.Position2D, crs int) (core.Point, error)
	// DrawRect fills and strokes r.
	DrawRect(r core.Rect, style FrameStyle)
	// DrawText draws text with its baseline starting at origin. Nothing is
	// drawn outside clip.
	DrawText(clip core.Rect, origin core.Point, text string, face font.Face, col color.Color)
}
