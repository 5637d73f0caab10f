// Package xmlnode is a small mutable XML tree used for persisted state.
// Elements carry an ordered attribute list, child elements and, for leaf
// elements, character data.
package xmlnode

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformedAttribute is wrapped by every attribute accessor error. The
// accessor still returns the supplied default alongside it.
var ErrMalformedAttribute = errors.New("malformed attribute")

// ErrInvalidText is returned for character data or attribute values that
// XML cannot carry. encoding/xml would silently replace them.
var ErrInvalidText = errors.New("invalid XML text")

// Element is a node of the tree.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Children []*Element
	Text     string
}

// New returns an empty element with the given tag name.
func New(name string) *Element {
	return &Element{Name: name}
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name.Local == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// SetFloat stores v in its shortest exact decimal form.
func (e *Element) SetFloat(name string, v float64) {
	e.SetAttr(name, strconv.FormatFloat(v, 'g', -1, 64))
}

// SetInt stores an integer attribute.
func (e *Element) SetInt(name string, v int) {
	e.SetAttr(name, strconv.Itoa(v))
}

// SetBool stores a boolean as "1" or "0".
func (e *Element) SetBool(name string, v bool) {
	if v {
		e.SetAttr(name, "1")
	} else {
		e.SetAttr(name, "0")
	}
}

// Attr returns the raw value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or def when it is absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Float parses a numeric attribute. A missing attribute yields def and no
// error; a non-numeric one yields def and an error wrapping
// ErrMalformedAttribute.
func (e *Element) Float(name string, def float64) (float64, error) {
	s, ok := e.Attr(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def, e.malformed(name, s)
	}
	return v, nil
}

// Int parses an integer attribute with the same fallback rules as Float.
func (e *Element) Int(name string, def int) (int, error) {
	s, ok := e.Attr(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def, e.malformed(name, s)
	}
	return v, nil
}

// Bool parses a boolean attribute. "1"/"0" and anything strconv.ParseBool
// accepts are valid.
func (e *Element) Bool(name string, def bool) (bool, error) {
	s, ok := e.Attr(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def, e.malformed(name, s)
	}
	return v, nil
}

func (e *Element) malformed(name, value string) error {
	return fmt.Errorf("%w: <%s %s=%q>", ErrMalformedAttribute, e.Name, name, value)
}

// AppendChild adds c as the last child of e and returns c.
func (e *Element) AppendChild(c *Element) *Element {
	e.Children = append(e.Children, c)
	return c
}

// Child returns the first child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all children with the given name, in order.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// CheckText returns an error wrapping ErrInvalidText if s is not valid
// UTF-8 or holds a character outside the XML 1.0 Char production.
func CheckText(s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrInvalidText, i)
			}
		}
		if !isXMLChar(r) {
			return fmt.Errorf("%w: character %U at byte %d", ErrInvalidText, r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= utf8.MaxRune
}

// MarshalXML implements xml.Marshaler. Text that XML cannot carry fails
// with ErrInvalidText.
func (e *Element) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	for _, a := range e.Attrs {
		if err := CheckText(a.Value); err != nil {
			return fmt.Errorf("%s@%s: %w", e.Name, a.Name.Local, err)
		}
	}
	if err := CheckText(e.Text); err != nil {
		return fmt.Errorf("%s: %w", e.Name, err)
	}
	start := xml.StartElement{Name: xml.Name{Local: e.Name}, Attr: e.Attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := c.MarshalXML(enc, xml.StartElement{}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// UnmarshalXML implements xml.Unmarshaler. Whitespace between child
// elements is dropped; the character data of leaf elements is kept as is.
func (e *Element) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	e.Name = start.Name.Local
	e.Attrs = e.Attrs[:0]
	for _, a := range start.Attr {
		e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value})
	}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			c := &Element{}
			if err := c.UnmarshalXML(dec, t); err != nil {
				return err
			}
			e.Children = append(e.Children, c)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			e.Text = text.String()
			if len(e.Children) > 0 && strings.TrimSpace(e.Text) == "" {
				e.Text = ""
			}
			return nil
		}
	}
}

// Parse reads a document and returns its root element.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, errors.New("xmlnode: no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("xmlnode: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			root := &Element{}
			if err := root.UnmarshalXML(dec, start); err != nil {
				return nil, fmt.Errorf("xmlnode: %w", err)
			}
			return root, nil
		}
	}
}

// Write serializes root with an XML header and two-space indentation.
func Write(w io.Writer, root *Element) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
