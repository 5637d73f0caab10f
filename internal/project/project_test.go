package project

import (
	"bytes"
	"testing"

	"github.com/OCAP2/annotations/internal/annotation"
	"github.com/OCAP2/annotations/internal/render"
	"github.com/OCAP2/annotations/internal/richtext"
	"github.com/OCAP2/annotations/internal/xmlnode"
	"github.com/OCAP2/annotations/pkg/core"
	"github.com/google/uuid"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textAt(x, y float64, body string) *annotation.Text {
	a := annotation.NewText()
	a.SetMapPosition(core.Position2D{X: x, Y: y})
	a.SetDocument(richtext.FromPlainText(body))
	return a
}

func TestProject_AddRemoveFind(t *testing.T) {
	p := New("demo")
	first := textAt(1, 1, "first")
	second := textAt(2, 2, "second")
	p.Add(first)
	p.Add(second)
	require.Equal(t, 2, p.Len())

	got, ok := p.Find(second.ID())
	require.True(t, ok)
	assert.Same(t, second, got)

	assert.True(t, p.Remove(first.ID()))
	assert.False(t, p.Remove(first.ID()))
	assert.False(t, p.Remove(uuid.New()))
	require.Equal(t, 1, p.Len())
	assert.Same(t, second, p.Annotations()[0])

	_, ok = p.Find(first.ID())
	assert.False(t, ok)
}

func TestProject_AnnotationsIsACopy(t *testing.T) {
	p := New("demo")
	p.Add(textAt(0, 0, "a"))

	list := p.Annotations()
	list[0] = nil
	assert.NotNil(t, p.Annotations()[0])
}

func TestProject_TypeCounts(t *testing.T) {
	p := New("demo")
	p.Add(textAt(0, 0, "a"))
	p.Add(textAt(0, 0, "b"))
	assert.Equal(t, map[string]int{annotation.TextType: 2}, p.TypeCounts())
	assert.Empty(t, New("empty").TypeCounts())
}

func TestProject_RenderInOrder(t *testing.T) {
	p := New("demo")
	p.Add(textAt(0, 0, "a"))
	hidden := textAt(5, 5, "b")
	hidden.SetVisible(false)
	p.Add(hidden)
	p.Add(textAt(10, 10, "c"))

	var rec render.Recorder
	p.Render(&rec, core.Size{Width: 500, Height: 500})

	rects := rec.Rects()
	require.Len(t, rects, 2)
	assert.Equal(t, core.Point{X: 50, Y: -50}, rects[0].Min)
	assert.Equal(t, core.Point{X: 60, Y: -40}, rects[1].Min)
}

func TestProject_SaveLoad(t *testing.T) {
	p := New("Berlin walk")
	p.CRS = 3857
	a := textAt(13.4, 52.5, "Start here")
	b := annotation.NewText()
	b.SetAnchorMode(core.FixedScreenOffset)
	b.SetRelativePosition(core.Point{X: 1, Y: 0})
	b.SetDocument(richtext.FromMarkdown([]byte("# Legend")))
	p.Add(a)
	p.Add(b)

	var buf bytes.Buffer
	require.NoError(t, p.Save(&buf))
	assert.Contains(t, buf.String(), `<annotationProject version="1" title="Berlin walk" crs="3857">`)

	got, report, err := NewLoader(annotation.NewRegistry(), nil, nil).Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, Report{Loaded: 2}, report)
	assert.Equal(t, "Berlin walk", got.Title)
	assert.Equal(t, 3857, got.CRS)
	require.Equal(t, 2, got.Len())

	list := got.Annotations()
	assert.Equal(t, a.ID(), list[0].Common().ID())
	assert.Equal(t, "Start here", list[0].(*annotation.Text).Document().PlainText())
	assert.Equal(t, core.FixedScreenOffset, list[1].Common().AnchorMode())
	assert.Equal(t, "Legend", list[1].(*annotation.Text).Document().PlainText())
}

func TestProject_SaveEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New("").Save(&buf))

	got, report, err := NewLoader(annotation.NewRegistry(), nil, nil).Load(&buf)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
	assert.Equal(t, Report{}, report)
}

func TestProject_SaveInvalidText(t *testing.T) {
	tests := []struct {
		name string
		p    func() *Project
	}{
		{name: "annotation text", p: func() *Project {
			p := New("ok")
			p.Add(textAt(1, 2, "form\ffeed"))
			return p
		}},
		{name: "title", p: func() *Project { return New("bad\x00title") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.ErrorIs(t, tt.p().Save(&buf), xmlnode.ErrInvalidText)
		})
	}
}

func TestProject_MapExtent(t *testing.T) {
	p := New("demo")
	env, err := p.MapExtent()
	require.NoError(t, err)
	assert.True(t, env.IsEmpty())

	p.Add(textAt(10, 20, "a"))
	p.Add(textAt(-5, 40, "b"))
	screen := annotation.NewText()
	screen.SetAnchorMode(core.FixedScreenOffset)
	p.Add(screen)

	env, err = p.MapExtent()
	require.NoError(t, err)
	lo, hi, ok := env.MinMaxXYs()
	require.True(t, ok)
	assert.Equal(t, geom.XY{X: -5, Y: 20}, lo)
	assert.Equal(t, geom.XY{X: 10, Y: 40}, hi)
}

func TestProject_MapExtentTransforms(t *testing.T) {
	p := New("mercator")
	p.CRS = 3857
	p.Add(textAt(0, 0, "origin"))

	env, err := p.MapExtent()
	require.NoError(t, err)
	lo, _, ok := env.MinMaxXYs()
	require.True(t, ok)
	assert.InDelta(t, 0, lo.X, 1e-6)
	assert.InDelta(t, 0, lo.Y, 1e-6)
}
