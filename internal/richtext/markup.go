package richtext

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/OCAP2/annotations/internal/colors"
	"github.com/OCAP2/annotations/internal/xmlnode"
)

// Element names of the document markup.
const (
	DocumentElement  = "document"
	ParagraphElement = "paragraph"
	RunElement       = "run"
)

// Validate reports the first run whose text cannot be stored as markup.
// The error wraps xmlnode.ErrInvalidText.
func (d *Document) Validate() error {
	if d == nil {
		return nil
	}
	for i, p := range d.Paragraphs {
		for j, r := range p.Runs {
			if err := xmlnode.CheckText(r.Text); err != nil {
				return fmt.Errorf("paragraph %d run %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// Element encodes d as
//
//	<document>
//	  <paragraph align="center">
//	    <run bold="1" size="14">Hello</run>
//	  </paragraph>
//	</document>
//
// Formatting attributes are only written when they differ from the zero
// value, so FromElement(d.Element()) reproduces d exactly.
func (d *Document) Element() *xmlnode.Element {
	el := xmlnode.New(DocumentElement)
	for _, p := range d.Paragraphs {
		pe := el.AppendChild(xmlnode.New(ParagraphElement))
		if p.Format.Align != AlignLeft {
			pe.SetAttr("align", p.Format.Align.String())
		}
		if p.Format.Indent != 0 {
			pe.SetFloat("indent", p.Format.Indent)
		}
		if p.Format.SpacingAfter != 0 {
			pe.SetFloat("spacingAfter", p.Format.SpacingAfter)
		}
		for _, r := range p.Runs {
			re := pe.AppendChild(xmlnode.New(RunElement))
			writeCharFormat(re, r.Format)
			re.Text = r.Text
		}
	}
	return el
}

func writeCharFormat(el *xmlnode.Element, f CharFormat) {
	if f.Family != "" {
		el.SetAttr("family", f.Family)
	}
	if f.Size != 0 {
		el.SetFloat("size", f.Size)
	}
	if f.Bold {
		el.SetBool("bold", true)
	}
	if f.Italic {
		el.SetBool("italic", true)
	}
	if f.Underline {
		el.SetBool("underline", true)
	}
	if f.StrikeOut {
		el.SetBool("strikeout", true)
	}
	if f.Color != (color.NRGBA{}) {
		el.SetAttr("color", colors.Hex(f.Color))
		if f.Color.A != 255 {
			el.SetInt("colorAlpha", int(f.Color.A))
		}
	}
}

// FromElement decodes document markup. Unknown child elements are ignored
// and malformed formatting attributes fall back to their zero value; the
// returned error then lists what was replaced, while the document is still
// complete.
func FromElement(el *xmlnode.Element) (*Document, error) {
	if el == nil || el.Name != DocumentElement {
		return nil, fmt.Errorf("richtext: expected <%s> element", DocumentElement)
	}
	d := New()
	var problems []*xmlnode.Reader
	for _, pe := range el.ChildrenNamed(ParagraphElement) {
		pr := xmlnode.NewReader(pe)
		problems = append(problems, pr)
		p := Paragraph{}
		if a := pr.String("align", ""); a != "" {
			if align, ok := parseAlign(a); ok {
				p.Format.Align = align
			} else {
				pr.Malformed("align", a)
			}
		}
		p.Format.Indent = pr.FloatRange("indent", 0, 0, MaxSpacing)
		p.Format.SpacingAfter = pr.FloatRange("spacingAfter", 0, 0, MaxSpacing)
		for _, re := range pe.ChildrenNamed(RunElement) {
			rr := xmlnode.NewReader(re)
			problems = append(problems, rr)
			p.Runs = append(p.Runs, Run{Text: re.Text, Format: readCharFormat(rr, re)})
		}
		d.Paragraphs = append(d.Paragraphs, p)
	}
	return d, joinReaders(problems)
}

func readCharFormat(r *xmlnode.Reader, el *xmlnode.Element) CharFormat {
	f := CharFormat{
		Family:    r.String("family", ""),
		Size:      r.FloatRange("size", 0, 0, MaxSize),
		Bold:      r.Bool("bold", false),
		Italic:    r.Bool("italic", false),
		Underline: r.Bool("underline", false),
		StrikeOut: r.Bool("strikeout", false),
	}
	if hex, ok := el.Attr("color"); ok {
		alpha := r.Int("colorAlpha", 255)
		if alpha < 0 || alpha > 255 {
			r.Malformed("colorAlpha", fmt.Sprint(alpha))
			alpha = 255
		}
		c, err := colors.Parse(hex, uint8(alpha))
		if err != nil {
			r.Malformed("color", hex)
		} else {
			f.Color = c
		}
	}
	return f
}

func joinReaders(rs []*xmlnode.Reader) error {
	var errs []error
	for _, r := range rs {
		if err := r.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("richtext: %w", errors.Join(errs...))
}
