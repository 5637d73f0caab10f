package annotation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/OCAP2/annotations/internal/richtext"
	"github.com/OCAP2/annotations/internal/xmlnode"
	"github.com/OCAP2/annotations/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	var r Registry
	require.NoError(t, RegisterText(&r))

	err := RegisterText(&r)
	assert.ErrorIs(t, err, ErrDuplicateType)
	assert.ErrorIs(t, r.Register("", func() Annotation { return NewText() }), ErrMissingType)
	assert.Equal(t, []string{TextType}, r.Types())
}

func TestRegistry_Create(t *testing.T) {
	r := NewRegistry()

	a, err := r.Create(TextType)
	require.NoError(t, err)
	assert.IsType(t, &Text{}, a)

	b, err := r.Create(TextType)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.Common().ID(), b.Common().ID())

	_, err = r.Create("shape")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistry_TypesSorted(t *testing.T) {
	var r Registry
	for _, typ := range []string{"svg", "html", "text"} {
		require.NoError(t, r.Register(typ, func() Annotation { return NewText() }))
	}
	assert.Equal(t, []string{"html", "svg", "text"}, r.Types())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	var r Registry
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register(fmt.Sprintf("kind-%d", i), func() Annotation { return NewText() })
		}()
		go func() {
			defer wg.Done()
			_, _ = r.Create("kind-0")
			_ = r.Types()
		}()
	}
	wg.Wait()
	assert.Len(t, r.Types(), 20)
}

func TestDecode_Scenario(t *testing.T) {
	a := NewText()
	a.SetMapPosition(core.Position2D{X: 10.0, Y: 20.0})
	a.SetFrameOffset(core.Vector{X: 5, Y: 5})
	a.SetFrameSize(core.Size{Width: 100, Height: 40})
	a.SetDocument(richtext.FromPlainText("Hello"))

	node, err := Encode(a)
	require.NoError(t, err)
	assert.Equal(t, "text", node.AttrOr("annotationType", ""))

	got, err := Decode(NewRegistry(), node)
	require.NoError(t, err)
	text, ok := got.(*Text)
	require.True(t, ok)

	pos, ok := text.MapPosition()
	require.True(t, ok)
	assert.Equal(t, core.Position2D{X: 10.0, Y: 20.0}, pos)
	assert.Equal(t, core.Vector{X: 5, Y: 5}, text.FrameOffset())
	assert.Equal(t, core.Size{Width: 100, Height: 40}, text.FrameSize())
	assert.Equal(t, "Hello", text.Document().PlainText())
}

func TestDecode_MissingFrameWidth(t *testing.T) {
	node := xmlnode.New(Element)
	node.SetAttr("annotationType", "text")
	node.SetAttr("frameHeight", "40")

	got, err := Decode(NewRegistry(), node)
	require.NoError(t, err)
	assert.Equal(t, DefaultFrameSize.Width, got.Common().FrameSize().Width)
	assert.Equal(t, 40.0, got.Common().FrameSize().Height)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		wantErr error
	}{
		{name: "missing", typ: "", wantErr: ErrMissingType},
		{name: "unknown", typ: "picture", wantErr: ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := xmlnode.New(Element)
			if tt.typ != "" {
				node.SetAttr("annotationType", tt.typ)
			}
			got, err := Decode(NewRegistry(), node)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_RecoveredStateIsReturned(t *testing.T) {
	node := xmlnode.New(Element)
	node.SetAttr("annotationType", "text")
	node.SetAttr("frameWidth", "-5")

	got, err := Decode(NewRegistry(), node)
	require.NotNil(t, got)
	assert.ErrorIs(t, err, xmlnode.ErrMalformedAttribute)
	assert.Equal(t, DefaultFrameSize, got.Common().FrameSize())
}
