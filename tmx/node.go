/*
Package tmx implements the in-memory model of a Translation Memory eXchange document,
together with the operations needed to load, edit and re-export one.

A document is normally obtained with Load, which normalizes raw file content, parses it and
assigns ids to any translation units lacking one. Export writes it back out, optionally with
every attribute removed.
*/
package tmx

import (
	"encoding/xml"
	"strings"
)

// Node is implemented by every element of the document tree.
type Node interface {
	Attributes() *Attrs
	Children() []Node
}

// Attrs is an ordered list of element attributes. Names keep the prefix they had in the
// source document (e.g. xml:lang has Space "xml").
type Attrs []xml.Attr

func attrName(name string) xml.Name {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return xml.Name{Space: name[:i], Local: name[i+1:]}
		}
	}
	return xml.Name{Local: name}
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func (a Attrs) index(name string) int {
	n := attrName(name)
	for i, at := range a {
		if at.Name == n {
			return i
		}
	}
	return -1
}

// Get returns the value of the named attribute and whether it is present.
func (a Attrs) Get(name string) (string, bool) {
	if i := a.index(name); i >= 0 {
		return a[i].Value, true
	}
	return "", false
}

func (a Attrs) Has(name string) bool {
	return a.index(name) >= 0
}

// Set replaces the value of the named attribute, appending it when absent.
func (a *Attrs) Set(name, value string) {
	if i := a.index(name); i >= 0 {
		(*a)[i].Value = value
		return
	}
	*a = append(*a, xml.Attr{Name: attrName(name), Value: value})
}

func (a *Attrs) Clear() {
	*a = nil
}

func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	c := make(Attrs, len(a))
	copy(c, a)
	return c
}

// Document is the root <tmx> element of a TMX file.
type Document struct {
	Attr Attrs
	// Doctype holds the content of a <!DOCTYPE ...> directive, if the source had one.
	Doctype string
	Header  *Element
	Body    *Body
}

func (d *Document) Attributes() *Attrs { return &d.Attr }

func (d *Document) Children() []Node {
	var nodes []Node
	if d.Header != nil {
		nodes = append(nodes, d.Header)
	}
	if d.Body != nil {
		nodes = append(nodes, d.Body)
	}
	return nodes
}

// Clone returns a deep copy of the document. Nothing is shared with the original.
func (d *Document) Clone() *Document {
	c := &Document{Attr: d.Attr.Clone(), Doctype: d.Doctype}
	if d.Header != nil {
		c.Header = d.Header.Clone()
	}
	if d.Body != nil {
		c.Body = d.Body.Clone()
	}
	return c
}

// Body holds the translation units of a document in document order.
type Body struct {
	Attr  Attrs
	Units []*TU
}

func (b *Body) Attributes() *Attrs { return &b.Attr }

func (b *Body) Children() []Node {
	nodes := make([]Node, len(b.Units))
	for i, tu := range b.Units {
		nodes[i] = tu
	}
	return nodes
}

func (b *Body) Clone() *Body {
	c := &Body{Attr: b.Attr.Clone(), Units: make([]*TU, len(b.Units))}
	for i, tu := range b.Units {
		c.Units[i] = tu.Clone()
	}
	return c
}

// TU is a translation unit. The first variant is treated as the source text and the
// second as the target text.
type TU struct {
	Attr Attrs
	// Extra keeps prop and note children so they survive a round trip.
	Extra    []*Element
	Variants []*TUV
}

func (t *TU) Attributes() *Attrs { return &t.Attr }

func (t *TU) Children() []Node {
	nodes := make([]Node, 0, len(t.Extra)+len(t.Variants))
	for _, e := range t.Extra {
		nodes = append(nodes, e)
	}
	for _, v := range t.Variants {
		nodes = append(nodes, v)
	}
	return nodes
}

// ID returns the unit's id attribute and whether it is present.
func (t *TU) ID() (string, bool) {
	return t.Attr.Get("id")
}

func (t *TU) SetID(id string) {
	t.Attr.Set("id", id)
}

func (t *TU) Clone() *TU {
	c := &TU{Attr: t.Attr.Clone(), Extra: cloneElements(t.Extra), Variants: make([]*TUV, len(t.Variants))}
	for i, v := range t.Variants {
		c.Variants[i] = v.Clone()
	}
	return c
}

// TUV is one language variant of a translation unit.
type TUV struct {
	Attr  Attrs
	Extra []*Element
	Seg   *Segment
}

func (v *TUV) Attributes() *Attrs { return &v.Attr }

func (v *TUV) Children() []Node {
	nodes := make([]Node, 0, len(v.Extra)+1)
	for _, e := range v.Extra {
		nodes = append(nodes, e)
	}
	if v.Seg != nil {
		nodes = append(nodes, v.Seg)
	}
	return nodes
}

// Text returns the segment text, or "" when the variant has no segment.
func (v *TUV) Text() string {
	if v == nil || v.Seg == nil {
		return ""
	}
	return v.Seg.Text
}

// SetText sets the segment text, creating the segment if needed.
func (v *TUV) SetText(text string) {
	if v.Seg == nil {
		v.Seg = &Segment{}
	}
	v.Seg.Text = text
}

func (v *TUV) Clone() *TUV {
	c := &TUV{Attr: v.Attr.Clone(), Extra: cloneElements(v.Extra)}
	if v.Seg != nil {
		c.Seg = v.Seg.Clone()
	}
	return c
}

// Segment is the leaf text container of a variant.
type Segment struct {
	Attr Attrs
	Text string
}

func (s *Segment) Attributes() *Attrs { return &s.Attr }

func (s *Segment) Children() []Node { return nil }

func (s *Segment) Clone() *Segment {
	return &Segment{Attr: s.Attr.Clone(), Text: s.Text}
}

// Element is any other element (header, prop, note, ...), kept as-is. Text is the character
// data before the first child; in mixed content each child's Tail holds the text after it.
type Element struct {
	Name     xml.Name
	Attr     Attrs
	Text     string
	Elements []*Element
	Tail     string
}

func (e *Element) Attributes() *Attrs { return &e.Attr }

func (e *Element) Children() []Node {
	nodes := make([]Node, len(e.Elements))
	for i, c := range e.Elements {
		nodes[i] = c
	}
	return nodes
}

func (e *Element) Clone() *Element {
	return &Element{Name: e.Name, Attr: e.Attr.Clone(), Text: e.Text, Elements: cloneElements(e.Elements), Tail: e.Tail}
}

// mixed reports whether e has text around its child elements.
func (e *Element) mixed() bool {
	if len(e.Elements) == 0 {
		return false
	}
	if strings.TrimSpace(e.Text) != "" {
		return true
	}
	for _, c := range e.Elements {
		if strings.TrimSpace(c.Tail) != "" {
			return true
		}
	}
	return false
}

func cloneElements(els []*Element) []*Element {
	if els == nil {
		return nil
	}
	c := make([]*Element, len(els))
	for i, e := range els {
		c[i] = e.Clone()
	}
	return c
}

// Walk calls fn for n and every node below it, parents before children.
func Walk(n Node, fn func(Node)) {
	fn(n)
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// StripAttributes removes every attribute from n and all of its descendants.
func StripAttributes(n Node) {
	Walk(n, func(n Node) {
		n.Attributes().Clear()
	})
}
