package render

import (
	"errors"
	"image/color"
	"testing"

	"github.com/OCAP2/annotations/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

func TestRecorder_MapToScreen(t *testing.T) {
	var r Recorder
	p, err := r.MapToScreen(core.Position2D{X: 10, Y: 20}, 4326)
	require.NoError(t, err)
	assert.Equal(t, core.Point{X: 10, Y: 20}, p)

	r.MapErr = errors.New("outside")
	_, err = r.MapToScreen(core.Position2D{}, 4326)
	assert.EqualError(t, err, "outside")
}

func TestRecorder_RecordsInOrder(t *testing.T) {
	var r Recorder
	rect := core.Rect{Max: core.Point{X: 5, Y: 5}}
	r.DrawRect(rect, FrameStyle{Fill: red})
	r.DrawText(rect, core.Point{X: 1, Y: 4}, "a", basicfont.Face7x13, color.Black)
	r.DrawRect(rect, FrameStyle{Fill: blue})

	require.Len(t, r.Ops, 3)
	assert.Equal(t, []OpKind{OpRect, OpText, OpRect}, []OpKind{r.Ops[0].Kind, r.Ops[1].Kind, r.Ops[2].Kind})
	assert.Len(t, r.Rects(), 2)
	require.Len(t, r.Texts(), 1)
	assert.Equal(t, "a", r.Texts()[0].Text)
}
