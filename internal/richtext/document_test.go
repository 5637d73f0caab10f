package richtext

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPlainText(t *testing.T) {
	d := FromPlainText("Hello\n\nWorld")

	require.Len(t, d.Paragraphs, 3)
	assert.Equal(t, "Hello", d.Paragraphs[0].Text())
	assert.Empty(t, d.Paragraphs[1].Runs)
	assert.Equal(t, "Hello\n\nWorld", d.PlainText())
	assert.False(t, d.IsEmpty())
}

func TestFromPlainText_CRLF(t *testing.T) {
	d := FromPlainText("a\r\nb")
	assert.Equal(t, "a\nb", d.PlainText())
}

func TestIsEmpty(t *testing.T) {
	var nilDoc *Document
	assert.True(t, nilDoc.IsEmpty())
	assert.True(t, New().IsEmpty())
	assert.True(t, FromPlainText("").IsEmpty())

	d := New()
	d.AddParagraph(ParagraphFormat{}, Run{Text: ""})
	assert.True(t, d.IsEmpty(), "runs without text do not count")

	d.AddParagraph(ParagraphFormat{}, Run{Text: "x"})
	assert.False(t, d.IsEmpty())
}

func TestClone_IsIndependent(t *testing.T) {
	orig := New()
	orig.AddParagraph(ParagraphFormat{Align: AlignRight}, Run{Text: "one", Format: CharFormat{Bold: true}})

	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Paragraphs[0].Runs[0].Text = "changed"
	cp.Paragraphs[0].Format.Align = AlignLeft
	cp.AddParagraph(ParagraphFormat{}, Run{Text: "two"})

	assert.Equal(t, "one", orig.PlainText())
	assert.Equal(t, AlignRight, orig.Paragraphs[0].Format.Align)
	assert.Len(t, orig.Paragraphs, 1)
}

func TestClone_Nil(t *testing.T) {
	var d *Document
	assert.Nil(t, d.Clone())
	assert.Equal(t, "", d.PlainText())
}

func TestCharFormat_Defaults(t *testing.T) {
	var f CharFormat
	assert.Equal(t, DefaultSize, f.PointSize())
	assert.Equal(t, FamilySans, f.FamilyName())
	assert.Equal(t, uint8(255), f.TextColor().A)

	f.Size = 20
	f.Family = FamilyMono
	assert.Equal(t, 20.0, f.PointSize())
	assert.Equal(t, FamilyMono, f.FamilyName())
}

func TestCharFormat_PointSizeBounds(t *testing.T) {
	tests := []struct {
		size float64
		want float64
	}{
		{size: 0, want: DefaultSize},
		{size: -4, want: DefaultSize},
		{size: math.NaN(), want: DefaultSize},
		{size: 9, want: 9},
		{size: 1e6, want: MaxSize},
		{size: math.Inf(1), want: MaxSize},
	}
	for _, tt := range tests {
		f := CharFormat{Size: tt.size}
		assert.Equal(t, tt.want, f.PointSize(), "size %v", tt.size)
	}
}
