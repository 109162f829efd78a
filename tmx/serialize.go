package tmx

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// Prolog starts every serialized document.
const Prolog = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

const indent = "  "

var (
	errNilDocument = errors.New("no document")
	errNoBody      = errors.New("document has no body")

	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;")
)

// inCharRange reports whether r may appear in an XML 1.0 document.
func inCharRange(r rune) bool {
	return r == 0x09 ||
		r == 0x0A ||
		r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// xmlSafe replaces every rune XML cannot carry, and any invalid UTF-8, with U+FFFD, as
// xml.EscapeText does.
func xmlSafe(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, func(r rune) bool { return !inCharRange(r) }) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if !inCharRange(r) {
			return utf8.RuneError
		}
		return r
	}, s)
}

func escapeText(s string) string {
	return textEscaper.Replace(xmlSafe(s))
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(xmlSafe(s))
}

// printer writes markup to a buffered writer and remembers the first write error.
type printer struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (p *printer) str(s string) {
	if p.err != nil {
		return
	}
	n, err := p.w.WriteString(s)
	p.n += int64(n)
	p.err = err
}

func (p *printer) line(depth int) {
	p.str("\n")
	p.str(strings.Repeat(indent, depth))
}

func (p *printer) open(name string, attr Attrs, empty bool) {
	p.str("<")
	p.str(name)
	for _, a := range attr {
		p.str(" ")
		p.str(qualifiedName(a.Name))
		p.str(`="`)
		p.str(escapeAttr(a.Value))
		p.str(`"`)
	}
	if empty {
		p.str("/>")
		return
	}
	p.str(">")
}

func (p *printer) close(name string) {
	p.str("</")
	p.str(name)
	p.str(">")
}

// block writes an element whose children go on their own indented lines.
func (p *printer) block(name string, attr Attrs, depth int, children func()) {
	p.open(name, attr, children == nil)
	if children == nil {
		return
	}
	children()
	p.line(depth)
	p.close(name)
}

func (p *printer) element(e *Element, depth int) {
	if len(e.Elements) == 0 || e.mixed() {
		p.inline(e)
		return
	}
	name := qualifiedName(e.Name)
	p.open(name, e.Attr, false)
	for _, c := range e.Elements {
		p.line(depth + 1)
		p.element(c, depth+1)
	}
	p.line(depth)
	p.close(name)
}

// inline writes e and its subtree exactly as held, without layout whitespace.
func (p *printer) inline(e *Element) {
	name := qualifiedName(e.Name)
	if e.Text == "" && len(e.Elements) == 0 {
		p.open(name, e.Attr, true)
		return
	}
	p.open(name, e.Attr, false)
	p.str(escapeText(e.Text))
	for _, c := range e.Elements {
		p.inline(c)
		p.str(escapeText(c.Tail))
	}
	p.close(name)
}

func (p *printer) extras(els []*Element, depth int) {
	for _, e := range els {
		p.line(depth)
		p.element(e, depth)
	}
}

func (p *printer) segment(s *Segment) {
	p.open("seg", s.Attr, false)
	p.str(escapeText(s.Text))
	p.close("seg")
}

func (p *printer) variant(v *TUV, depth int) {
	if len(v.Extra) == 0 && v.Seg == nil {
		p.open("tuv", v.Attr, true)
		return
	}
	p.block("tuv", v.Attr, depth, func() {
		p.extras(v.Extra, depth+1)
		if v.Seg != nil {
			p.line(depth + 1)
			p.segment(v.Seg)
		}
	})
}

func (p *printer) unit(tu *TU, depth int) {
	if len(tu.Extra) == 0 && len(tu.Variants) == 0 {
		p.open("tu", tu.Attr, true)
		return
	}
	p.block("tu", tu.Attr, depth, func() {
		p.extras(tu.Extra, depth+1)
		for _, v := range tu.Variants {
			p.line(depth + 1)
			p.variant(v, depth+1)
		}
	})
}

func (p *printer) body(b *Body, depth int) {
	if len(b.Units) == 0 {
		p.open("body", b.Attr, true)
		return
	}
	p.block("body", b.Attr, depth, func() {
		for _, tu := range b.Units {
			p.line(depth + 1)
			p.unit(tu, depth+1)
		}
	})
}

// WriteTo writes the document as TMX text, starting with Prolog.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if d == nil {
		return 0, errNilDocument
	}
	if d.Body == nil {
		return 0, errNoBody
	}

	p := &printer{w: bufio.NewWriter(w)}
	p.str(Prolog)
	if d.Doctype != "" {
		p.str("<!")
		p.str(d.Doctype)
		p.str(">\n")
	}
	p.block("tmx", d.Attr, 0, func() {
		if d.Header != nil {
			p.line(1)
			p.element(d.Header, 1)
		}
		p.line(1)
		p.body(d.Body, 1)
	})
	if p.err == nil {
		p.err = p.w.Flush()
	}

	return p.n, p.err
}

// Serialize returns the document as TMX text.
func Serialize(doc *Document) (string, error) {
	var sb strings.Builder
	if _, err := doc.WriteTo(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
