package xmlnode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElement_Attributes(t *testing.T) {
	el := New("annotation")
	el.SetAttr("annotationType", "text")
	el.SetFloat("frameWidth", 100.5)
	el.SetInt("crs", 4326)
	el.SetBool("visible", true)
	el.SetAttr("annotationType", "other")

	v, ok := el.Attr("annotationType")
	require.True(t, ok)
	assert.Equal(t, "other", v, "SetAttr replaces existing values")
	assert.Len(t, el.Attrs, 4)

	f, err := el.Float("frameWidth", 0)
	require.NoError(t, err)
	assert.Equal(t, 100.5, f)

	i, err := el.Int("crs", 0)
	require.NoError(t, err)
	assert.Equal(t, 4326, i)

	b, err := el.Bool("visible", false)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestElement_MissingAttributeUsesDefault(t *testing.T) {
	el := New("annotation")

	f, err := el.Float("frameWidth", 200)
	assert.NoError(t, err)
	assert.Equal(t, 200.0, f)

	b, err := el.Bool("visible", true)
	assert.NoError(t, err)
	assert.True(t, b)

	assert.Equal(t, "fallback", el.AttrOr("missing", "fallback"))
}

func TestElement_MalformedAttribute(t *testing.T) {
	el := New("annotation")
	el.SetAttr("frameWidth", "wide")
	el.SetAttr("visible", "maybe")
	el.SetAttr("crs", "1.5")

	f, err := el.Float("frameWidth", 200)
	assert.Equal(t, 200.0, f)
	assert.True(t, errors.Is(err, ErrMalformedAttribute))
	assert.Contains(t, err.Error(), "frameWidth")

	b, err := el.Bool("visible", true)
	assert.True(t, b)
	assert.ErrorIs(t, err, ErrMalformedAttribute)

	i, err := el.Int("crs", 4326)
	assert.Equal(t, 4326, i)
	assert.ErrorIs(t, err, ErrMalformedAttribute)
}

func TestReader_CollectsErrors(t *testing.T) {
	el := New("annotation")
	el.SetAttr("x", "1")
	el.SetAttr("y", "nope")
	el.SetAttr("z", "also nope")

	r := NewReader(el)
	assert.Equal(t, 1.0, r.Float("x", 0))
	assert.Equal(t, 7.0, r.Float("y", 7))
	assert.Equal(t, 3, r.Int("z", 3))
	assert.Equal(t, "d", r.String("w", "d"))

	err := r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedAttribute)
	assert.Contains(t, err.Error(), `y="nope"`)
	assert.Contains(t, err.Error(), `z="also nope"`)
}

func TestReader_NoErrors(t *testing.T) {
	r := NewReader(New("empty"))
	r.Float("a", 1)
	r.Wrap(nil, "nothing")
	assert.NoError(t, r.Err())
}

func TestChildren(t *testing.T) {
	root := New("root")
	a := root.AppendChild(New("item"))
	root.AppendChild(New("other"))
	b := root.AppendChild(New("item"))

	assert.Same(t, a, root.Child("item"))
	assert.Nil(t, root.Child("missing"))
	items := root.ChildrenNamed("item")
	require.Len(t, items, 2)
	assert.Same(t, b, items[1])
}

func TestWriteParse_RoundTrip(t *testing.T) {
	root := New("document")
	root.SetAttr("version", "1")
	p := root.AppendChild(New("paragraph"))
	r1 := p.AppendChild(New("run"))
	r1.Text = "Hello "
	r2 := p.AppendChild(New("run"))
	r2.SetBool("bold", true)
	r2.Text = "<world> & co"
	root.AppendChild(New("paragraph"))
	space := root.AppendChild(New("run"))
	space.Text = "   "

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root))
	assert.True(t, strings.HasPrefix(buf.String(), "<?xml"))

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestParse_DropsWhitespaceBetweenChildren(t *testing.T) {
	src := "<root>\n  <a x=\"1\">text</a>\n  <b/>\n</root>"
	root, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "", root.Text)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "text", root.Children[0].Text)
	assert.Equal(t, "1", root.Children[0].AttrOr("x", ""))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("<root><unclosed></root>"))
	assert.Error(t, err)
}

func TestReader_FloatRange(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    float64
		wantErr bool
	}{
		{name: "in range", value: "12.5", want: 12.5},
		{name: "upper bound", value: "100", want: 100},
		{name: "missing", value: "", want: 4},
		{name: "nan", value: "NaN", want: 4, wantErr: true},
		{name: "inf", value: "+Inf", want: 4, wantErr: true},
		{name: "too large", value: "1e6", want: 4, wantErr: true},
		{name: "negative", value: "-1", want: 4, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := New("run")
			if tt.value != "" {
				el.SetAttr("size", tt.value)
			}
			r := NewReader(el)
			assert.Equal(t, tt.want, r.FloatRange("size", 4, 0, 100))
			if tt.wantErr {
				assert.ErrorIs(t, r.Err(), ErrMalformedAttribute)
			} else {
				assert.NoError(t, r.Err())
			}
		})
	}
}

func TestCheckText(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "plain", in: "Hello world"},
		{name: "whitespace", in: "tab\tnew\nline\r"},
		{name: "non ascii", in: "Straße 東京 🗺"},
		{name: "replacement char", in: "\uFFFD"},
		{name: "nul", in: "a\x00b", wantErr: true},
		{name: "control", in: "bell\x07", wantErr: true},
		{name: "invalid utf8", in: "bad\xffbyte", wantErr: true},
		{name: "noncharacter", in: "\uFFFE", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckText(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidText)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrite_RejectsInvalidText(t *testing.T) {
	root := New("document")
	root.AppendChild(New("run")).Text = "a\x01b"
	var buf bytes.Buffer
	err := Write(&buf, root)
	require.ErrorIs(t, err, ErrInvalidText)
	assert.Contains(t, err.Error(), "run")

	attr := New("run")
	attr.SetAttr("family", "mono\x02")
	assert.ErrorIs(t, Write(&buf, attr), ErrInvalidText)
}
