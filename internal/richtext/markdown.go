package richtext

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// Indentation per list nesting level, in pixels.
const listIndent = 12.0

var linkColor = color.NRGBA{R: 0x1a, G: 0x4f, B: 0xd6, A: 255}

var headingSizes = map[int]float64{1: 20, 2: 16, 3: 14}

// FromMarkdown converts Markdown source into a document. Headings become
// bold paragraphs with a larger size, emphasis maps to italic, strong to
// bold, strikethrough to strike-out, code to the mono family, links to
// underlined blue text and list items to indented paragraphs with a bullet
// or number prefix. Everything else contributes its text only.
func FromMarkdown(src []byte) *Document {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	root := markdown.Parse(src, p)
	b := &mdBuilder{doc: New()}
	ast.WalkFunc(root, b.visit)
	return b.doc
}

type mdList struct {
	ordered bool
	next    int
}

type mdBuilder struct {
	doc *Document
	cur *Paragraph

	lists []mdList
	// itemOpen is set between a list item's start and its first block.
	itemOpen bool

	heading   int
	bold      int
	italic    int
	strike    int
	underline int
	mono      int
	link      int
}

func (b *mdBuilder) visit(node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Heading:
		if entering {
			b.startParagraph()
			b.heading = n.Level
		} else {
			b.heading = 0
			b.cur = nil
		}
	case *ast.Paragraph:
		if entering {
			if b.itemOpen && b.cur != nil {
				b.itemOpen = false
			} else {
				b.startParagraph()
			}
		} else {
			b.cur = nil
		}
	case *ast.List:
		if entering {
			start := n.Start
			if start == 0 {
				start = 1
			}
			b.lists = append(b.lists, mdList{ordered: n.ListFlags&ast.ListTypeOrdered != 0, next: start})
		} else if len(b.lists) > 0 {
			b.lists = b.lists[:len(b.lists)-1]
		}
	case *ast.ListItem:
		if entering {
			b.startParagraph()
			b.appendText(b.bullet())
			b.itemOpen = true
		} else {
			b.itemOpen = false
			b.cur = nil
		}
	case *ast.CodeBlock:
		if entering {
			b.mono++
			text := strings.TrimRight(string(n.Literal), "\n")
			for _, line := range strings.Split(text, "\n") {
				b.startParagraph()
				b.appendText(line)
			}
			b.mono--
			b.cur = nil
		}
	case *ast.Text:
		if entering {
			b.appendText(strings.ReplaceAll(string(n.Literal), "\n", " "))
		}
	case *ast.Code:
		if entering {
			b.mono++
			b.appendText(string(n.Literal))
			b.mono--
		}
	case *ast.Softbreak:
		if entering {
			b.appendText(" ")
		}
	case *ast.Hardbreak:
		if entering {
			b.appendText("\n")
		}
	case *ast.Emph:
		b.count(&b.italic, entering)
	case *ast.Strong:
		b.count(&b.bold, entering)
	case *ast.Del:
		b.count(&b.strike, entering)
	case *ast.Link:
		b.count(&b.link, entering)
	}
	return ast.GoToNext
}

func (b *mdBuilder) count(c *int, entering bool) {
	if entering {
		*c++
	} else if *c > 0 {
		*c--
	}
}

func (b *mdBuilder) bullet() string {
	if len(b.lists) == 0 {
		return "• "
	}
	l := &b.lists[len(b.lists)-1]
	if !l.ordered {
		return "• "
	}
	s := fmt.Sprintf("%d. ", l.next)
	l.next++
	return s
}

func (b *mdBuilder) startParagraph() {
	f := ParagraphFormat{Indent: listIndent * float64(len(b.lists))}
	b.doc.Paragraphs = append(b.doc.Paragraphs, Paragraph{Format: f})
	b.cur = &b.doc.Paragraphs[len(b.doc.Paragraphs)-1]
	b.itemOpen = false
}

func (b *mdBuilder) format() CharFormat {
	var f CharFormat
	if b.heading > 0 {
		f.Bold = true
		f.Size = headingSizes[b.heading]
	}
	if b.bold > 0 {
		f.Bold = true
	}
	if b.italic > 0 {
		f.Italic = true
	}
	if b.strike > 0 {
		f.StrikeOut = true
	}
	if b.mono > 0 {
		f.Family = FamilyMono
	}
	if b.link > 0 {
		f.Underline = true
		f.Color = linkColor
	}
	return f
}

// appendText adds text with the current format, merging it into the last
// run when the formats match.
func (b *mdBuilder) appendText(text string) {
	if text == "" {
		return
	}
	if b.cur == nil {
		b.startParagraph()
	}
	f := b.format()
	if n := len(b.cur.Runs); n > 0 && b.cur.Runs[n-1].Format == f {
		b.cur.Runs[n-1].Text += text
		return
	}
	b.cur.Runs = append(b.cur.Runs, Run{Text: text, Format: f})
}
