// Package storagetest holds the behaviour every storage.Backend must show,
// as a test suite the backend packages run against their implementation.
package storagetest

import (
	"testing"

	"github.com/OCAP2/annotations/internal/annotation"
	"github.com/OCAP2/annotations/internal/project"
	"github.com/OCAP2/annotations/internal/richtext"
	"github.com/OCAP2/annotations/internal/storage"
	"github.com/OCAP2/annotations/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleProject returns a project with two text annotations.
func SampleProject(title string) *project.Project {
	p := project.New(title)
	a := annotation.NewText()
	a.SetMapPosition(core.Position2D{X: 13.4, Y: 52.5})
	a.SetDocument(richtext.FromPlainText("Alexanderplatz"))
	p.Add(a)

	b := annotation.NewText()
	b.SetMapPosition(core.Position2D{X: 13.3, Y: 52.6})
	b.SetDocument(richtext.FromMarkdown([]byte("**Tegel**")))
	p.Add(b)
	return p
}

// Run exercises newBackend. Every call must return a fresh, initialized,
// empty backend; Run closes it.
func Run(t *testing.T, newBackend func(t *testing.T) storage.Backend) {
	loader := project.NewLoader(annotation.NewRegistry(), nil, nil)

	open := func(t *testing.T) storage.Backend {
		b := newBackend(t)
		t.Cleanup(func() { _ = b.Close() })
		return b
	}

	t.Run("SaveLoad", func(t *testing.T) {
		b := open(t)
		p := SampleProject("Berlin")
		require.NoError(t, b.SaveProject("berlin", p))

		got, report, err := b.LoadProject("berlin", loader)
		require.NoError(t, err)
		assert.Equal(t, project.Report{Loaded: 2}, report)
		assert.Equal(t, "Berlin", got.Title)
		require.Equal(t, 2, got.Len())
		for i, a := range got.Annotations() {
			want := p.Annotations()[i]
			assert.Equal(t, want.Common().ID(), a.Common().ID())
			assert.Equal(t,
				want.(*annotation.Text).Document().PlainText(),
				a.(*annotation.Text).Document().PlainText())
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.SaveProject("p", SampleProject("first")))
		require.NoError(t, b.SaveProject("p", project.New("second")))

		got, _, err := b.LoadProject("p", loader)
		require.NoError(t, err)
		assert.Equal(t, "second", got.Title)
		assert.Zero(t, got.Len())

		list, err := b.ListProjects()
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("List", func(t *testing.T) {
		b := open(t)
		list, err := b.ListProjects()
		require.NoError(t, err)
		assert.Empty(t, list)

		require.NoError(t, b.SaveProject("zulu", project.New("Z")))
		require.NoError(t, b.SaveProject("alpha", SampleProject("A")))

		list, err = b.ListProjects()
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "alpha", list[0].Name)
		assert.Equal(t, "A", list[0].Title)
		assert.Equal(t, 2, list[0].Annotations)
		assert.Equal(t, map[string]int{annotation.TextType: 2}, list[0].Types)
		assert.False(t, list[0].Extent.IsEmpty())
		assert.False(t, list[0].UpdatedAt.IsZero())
		assert.Equal(t, "zulu", list[1].Name)
		assert.True(t, list[1].Extent.IsEmpty())
	})

	t.Run("Delete", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.SaveProject("gone", project.New("")))
		require.NoError(t, b.DeleteProject("gone"))

		_, _, err := b.LoadProject("gone", loader)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, b.DeleteProject("gone"), storage.ErrNotFound)
	})

	t.Run("NotFound", func(t *testing.T) {
		b := open(t)
		_, _, err := b.LoadProject("missing", loader)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("InvalidName", func(t *testing.T) {
		b := open(t)
		assert.ErrorIs(t, b.SaveProject("", project.New("")), storage.ErrInvalidName)
	})
}
