package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/OCAP2/annotations/internal/geo"
	"github.com/OCAP2/annotations/pkg/core"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas is a Context drawing into an RGBA image.
type Canvas struct {
	img       *image.RGBA
	transform *geo.MapTransform
}

// NewCanvas returns a transparent canvas covering the screen of t.
func NewCanvas(t *geo.MapTransform) *Canvas {
	c := NewScreenCanvas(t.Size())
	c.transform = t
	return c
}

// NewScreenCanvas returns a canvas without a map transform. MapToScreen
// always fails on it, so only screen anchored items are drawn.
func NewScreenCanvas(size core.Size) *Canvas {
	w := int(math.Ceil(size.Width))
	h := int(math.Ceil(size.Height))
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Size returns the canvas size in pixels.
func (c *Canvas) Size() core.Size {
	b := c.img.Bounds()
	return core.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Fill paints the whole canvas with col.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// MapToScreen implements Context.
func (c *Canvas) MapToScreen(pos core.Position2D, crs int) (core.Point, error) {
	if c.transform == nil {
		return core.Point{}, ErrNoMapTransform
	}
	return c.transform.Project(pos, crs)
}

// DrawRect implements Context.
func (c *Canvas) DrawRect(r core.Rect, style FrameStyle) {
	pr := c.pixels(r)
	if pr.Empty() {
		return
	}
	if style.Fill.A > 0 {
		draw.Draw(c.img, pr, image.NewUniform(style.Fill), image.Point{}, draw.Over)
	}
	if style.StrokeWidth <= 0 || style.Stroke.A == 0 {
		return
	}
	w := max(int(math.Round(style.StrokeWidth)), 1)
	src := image.NewUniform(style.Stroke)
	bands := []image.Rectangle{
		image.Rect(pr.Min.X, pr.Min.Y, pr.Max.X, pr.Min.Y+w),
		image.Rect(pr.Min.X, pr.Max.Y-w, pr.Max.X, pr.Max.Y),
		image.Rect(pr.Min.X, pr.Min.Y+w, pr.Min.X+w, pr.Max.Y-w),
		image.Rect(pr.Max.X-w, pr.Min.Y+w, pr.Max.X, pr.Max.Y-w),
	}
	for _, b := range bands {
		b = b.Intersect(pr)
		if !b.Empty() {
			draw.Draw(c.img, b, src, image.Point{}, draw.Over)
		}
	}
}

// DrawText implements Context.
func (c *Canvas) DrawText(clip core.Rect, origin core.Point, text string, face font.Face, col color.Color) {
	pr := c.pixels(clip)
	if pr.Empty() || text == "" {
		return
	}
	d := font.Drawer{
		Dst:  c.img.SubImage(pr).(*image.RGBA),
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(origin.X), Y: toFixed(origin.Y)},
	}
	d.DrawString(text)
}

// WritePNG encodes the canvas as PNG.
func (c *Canvas) WritePNG(w io.Writer) error {
	if err := png.Encode(w, c.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// pixels returns the whole pixels lying inside r, limited to the image.
func (c *Canvas) pixels(r core.Rect) image.Rectangle {
	pr := image.Rect(
		int(math.Ceil(r.Min.X)), int(math.Ceil(r.Min.Y)),
		int(math.Floor(r.Max.X)), int(math.Floor(r.Max.Y)),
	)
	if pr.Min.X >= pr.Max.X || pr.Min.Y >= pr.Max.Y {
		return image.Rectangle{}
	}
	return pr.Intersect(c.img.Bounds())
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
