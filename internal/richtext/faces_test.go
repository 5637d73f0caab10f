package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font"

	"github.com/OCAP2/annotations/internal/cache"
)

func TestFaces_CachesPerFormat(t *testing.T) {
	c := cache.NewFaceCache()
	fs := NewFaces(c)

	a := fs.Face(CharFormat{})
	b := fs.Face(CharFormat{Size: DefaultSize, Family: FamilySans})
	assert.Equal(t, a, b, "zero format resolves to the defaults")
	_, ok := c.Get(cache.FaceKey{Family: FamilySans, Size: DefaultSize})
	assert.True(t, ok)

	_, ok = c.Get(cache.FaceKey{Family: FamilySans, Size: DefaultSize, Bold: true})
	assert.False(t, ok)
	fs.Face(CharFormat{Bold: true})
	_, ok = c.Get(cache.FaceKey{Family: FamilySans, Size: DefaultSize, Bold: true})
	assert.True(t, ok)
}

func TestFaces_OversizedSharesLargestFace(t *testing.T) {
	c := cache.NewFaceCache()
	fs := NewFaces(c)

	huge := fs.Face(CharFormat{Size: 1e6})
	_, ok := c.Get(cache.FaceKey{Family: FamilySans, Size: 1e6})
	assert.False(t, ok, "size is clamped before the lookup")
	largest, ok := c.Get(cache.FaceKey{Family: FamilySans, Size: MaxSize})
	assert.True(t, ok)
	assert.Equal(t, largest, huge)
}

func TestFaces_MonoIsMonospaced(t *testing.T) {
	face := NewFaces(cache.NewFaceCache()).Face(CharFormat{Family: FamilyMono})

	assert.Equal(t, font.MeasureString(face, "iii"), font.MeasureString(face, "mmm"))
}

func TestFaces_SizeScalesWidth(t *testing.T) {
	fs := NewFaces(cache.NewFaceCache())
	small := font.MeasureString(fs.Face(CharFormat{Size: 10}), "Hello")
	large := font.MeasureString(fs.Face(CharFormat{Size: 20}), "Hello")

	assert.Greater(t, large, small)
}

func TestFaces_UnknownFamilyFallsBackToSans(t *testing.T) {
	fs := NewFaces(cache.NewFaceCache())
	sans := fs.Face(CharFormat{})
	other := fs.Face(CharFormat{Family: "fantasy"})

	assert.Equal(t, font.MeasureString(sans, "Hello"), font.MeasureString(other, "Hello"))
}

func TestDefaultFaces_Shared(t *testing.T) {
	assert.Same(t, DefaultFaces(), DefaultFaces())
}
