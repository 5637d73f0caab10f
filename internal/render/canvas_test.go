package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/OCAP2/annotations/internal/geo"
	"github.com/OCAP2/annotations/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// paintedOutside returns the number of non-transparent pixels outside r.
func paintedOutside(img *image.RGBA, r image.Rectangle) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if image.Pt(x, y).In(r) {
				continue
			}
			if img.RGBAAt(x, y).A != 0 {
				n++
			}
		}
	}
	return n
}

func painted(img *image.RGBA) int {
	return paintedOutside(img, image.Rectangle{})
}

func TestCanvas_Size(t *testing.T) {
	c := NewScreenCanvas(core.Size{Width: 10.5, Height: 4})
	assert.Equal(t, core.Size{Width: 11, Height: 4}, c.Size())
	assert.Equal(t, 0, painted(c.Image()))
}

func TestCanvas_Fill(t *testing.T) {
	c := NewScreenCanvas(core.Size{Width: 4, Height: 4})
	c.Fill(red)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, c.Image().RGBAAt(3, 3))
}

func TestCanvas_DrawRect(t *testing.T) {
	c := NewScreenCanvas(core.Size{Width: 40, Height: 40})
	r := core.Rect{Min: core.Point{X: 10, Y: 10}, Max: core.Point{X: 30, Y: 20}}

	c.DrawRect(r, FrameStyle{Fill: red, Stroke: blue, StrokeWidth: 1})

	img := c.Image()
	assert.Equal(t, 0, paintedOutside(img, image.Rect(10, 10, 30, 20)))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(10, 10), "border")
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(29, 19), "border")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(15, 15), "fill")
}

func TestCanvas_DrawRectFractionalStaysInside(t *testing.T) {
	c := NewScreenCanvas(core.Size{Width: 20, Height: 20})
	r := core.Rect{Min: core.Point{X: 2.5, Y: 2.5}, Max: core.Point{X: 7.5, Y: 7.5}}

	c.DrawRect(r, FrameStyle{Fill: red})

	assert.Equal(t, 0, paintedOutside(c.Image(), image.Rect(3, 3, 7, 7)))
	assert.Equal(t, 16, painted(c.Image()))
}

func TestCanvas_DrawRectOffCanvas(t *testing.T) {
	c := NewScreenCanvas(core.Size{Width: 10, Height: 10})
	c.DrawRect(core.Rect{Min: core.Point{X: -50, Y: -50}, Max: core.Point{X: -10, Y: -10}}, FrameStyle{Fill: red})
	c.DrawRect(core.Rect{Min: core.Point{X: 5, Y: 5}, Max: core.Point{X: 50, Y: 50}}, FrameStyle{Fill: red})

	assert.Equal(t, 25, painted(c.Image()))
}

func TestCanvas_DrawTextClipped(t *testing.T) {
	c := NewScreenCanvas(core.Size{Width: 100, Height: 40})
	clip := core.Rect{Min: core.Point{X: 10, Y: 10}, Max: core.Point{X: 30, Y: 30}}

	c.DrawText(clip, core.Point{X: 5, Y: 25}, "clipped text running long", basicfont.Face7x13, color.Black)

	img := c.Image()
	assert.Greater(t, painted(img), 0)
	assert.Equal(t, 0, paintedOutside(img, image.Rect(10, 10, 30, 30)))
}

func TestCanvas_DrawTextEmptyClip(t *testing.T) {
	c := NewScreenCanvas(core.Size{Width: 100, Height: 40})
	c.DrawText(core.Rect{}, core.Point{X: 5, Y: 25}, "x", basicfont.Face7x13, color.Black)
	assert.Equal(t, 0, painted(c.Image()))
}

func TestCanvas_MapToScreen(t *testing.T) {
	extent, err := geo.EnvelopeOf(geom.XY{X: 0, Y: 0}, geom.XY{X: 10, Y: 10})
	require.NoError(t, err)
	tr, err := geo.NewMapTransform(
		extent,
		geo.WGS84,
		core.Size{Width: 100, Height: 100},
	)
	require.NoError(t, err)

	p, err := NewCanvas(tr).MapToScreen(core.Position2D{X: 5, Y: 2.5}, geo.WGS84)
	require.NoError(t, err)
	assert.InDelta(t, 50, p.X, 1e-9)
	assert.InDelta(t, 75, p.Y, 1e-9)

	_, err = NewScreenCanvas(core.Size{Width: 1, Height: 1}).MapToScreen(core.Position2D{}, geo.WGS84)
	assert.ErrorIs(t, err, ErrNoMapTransform)
}

func TestCanvas_WritePNG(t *testing.T) {
	c := NewScreenCanvas(core.Size{Width: 8, Height: 6})
	c.Fill(red)

	var buf bytes.Buffer
	require.NoError(t, c.WritePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}
