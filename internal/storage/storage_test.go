// internal/storage/storage_test.go
package storage_test

import (
	"strings"
	"testing"
	"time"

	"github.com/OCAP2/annotations/internal/annotation"
	"github.com/OCAP2/annotations/internal/project"
	"github.com/OCAP2/annotations/internal/storage"
	"github.com/OCAP2/annotations/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	p := project.New("Route")
	a := annotation.NewText()
	a.SetMapPosition(core.Position2D{X: 1, Y: 2})
	p.Add(a)
	p.Add(annotation.NewText())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := storage.Summarize("route", p, now)
	require.NoError(t, err)

	assert.Equal(t, "route", s.Name)
	assert.Equal(t, "Route", s.Title)
	assert.Equal(t, 4326, s.CRS)
	assert.Equal(t, 2, s.Annotations)
	assert.Equal(t, map[string]int{"text": 2}, s.Types)
	assert.Equal(t, now, s.UpdatedAt)
	assert.False(t, s.Extent.IsEmpty())
}

func TestSummary_Clone(t *testing.T) {
	s := storage.Summary{Types: map[string]int{"text": 1}}
	c := s.Clone()
	c.Types["text"] = 5
	assert.Equal(t, 1, s.Types["text"])
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, storage.ValidateName("berlin-walk"))
	assert.ErrorIs(t, storage.ValidateName(""), storage.ErrInvalidName)
	assert.ErrorIs(t, storage.ValidateName("   "), storage.ErrInvalidName)
	assert.ErrorIs(t, storage.ValidateName(strings.Repeat("x", 256)), storage.ErrInvalidName)
}
