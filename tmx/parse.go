package tmx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// rawNode is an element as read from the token stream, before it is typed.
type rawNode struct {
	name     xml.Name
	attr     Attrs
	text     strings.Builder // character data before the first child
	tail     strings.Builder // character data after the element, up to the next sibling
	content  strings.Builder // character data of the whole subtree, in document order
	children []*rawNode
}

func (n *rawNode) is(local string) bool {
	return n.name.Space == "" && n.name.Local == local
}

// element converts n to an Element. Whitespace between children is kept only in mixed
// content; elsewhere it is layout, and the serializer writes its own.
func (n *rawNode) element() *Element {
	e := &Element{Name: n.name, Attr: n.attr}
	for _, c := range n.children {
		e.Elements = append(e.Elements, c.element())
	}
	e.Text = n.text.String()
	for i, c := range n.children {
		e.Elements[i].Tail = c.tail.String()
	}
	if len(e.Elements) > 0 && !e.mixed() {
		e.Text = ""
		for _, c := range e.Elements {
			c.Tail = ""
		}
	}
	return e
}

// The content handed to the decoder is already text, so any declared encoding is ignored.
func passthroughCharset(label string, input io.Reader) (io.Reader, error) {
	return input, nil
}

// decodeTree reads text into a tree of raw elements. Element prefixes are kept as written.
func decodeTree(text string) (root *rawNode, doctype string, err error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true
	dec.CharsetReader = passthroughCharset

	var stack []*rawNode
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				line, _ := dec.InputPos()
				return nil, "", fmt.Errorf("line %d: unexpected element <%v> after the root element", line, qualifiedName(t.Name))
			}
			t = t.Copy()
			n := &rawNode{name: t.Name, attr: Attrs(t.Attr)}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, "", fmt.Errorf("unexpected end element </%v>", qualifiedName(t.Name))
			}
			top := stack[len(stack)-1]
			if top.name != t.Name {
				return nil, "", fmt.Errorf("element <%v> closed by </%v>", qualifiedName(top.name), qualifiedName(t.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, "", errors.New("text outside of the root element")
				}
				continue
			}
			if top := stack[len(stack)-1]; len(top.children) > 0 {
				top.children[len(top.children)-1].tail.Write(t)
			} else {
				top.text.Write(t)
			}
			for _, n := range stack {
				n.content.Write(t)
			}

		case xml.Directive:
			if doctype == "" && bytes.HasPrefix(t, []byte("DOCTYPE")) {
				doctype = string(t)
			}
		}
	}

	if len(stack) > 0 {
		return nil, "", fmt.Errorf("unexpected end of input: element <%v> is not closed", qualifiedName(stack[len(stack)-1].name))
	}

	return root, doctype, nil
}

// Parse builds a Document from normalized text. It fails with a *ParseError when the text is
// not well-formed XML, or when it has no <tmx> root element or no <body> inside it. Parse does
// not assign missing unit ids; call AssignMissingIDs before editing the result.
func Parse(text string) (*Document, error) {
	root, doctype, err := decodeTree(text)
	if err != nil {
		return nil, &ParseError{Msg: "invalid XML", Err: err}
	}
	if root == nil || !root.is("tmx") {
		return nil, &ParseError{Msg: "invalid TMX file: <tmx> not found"}
	}

	doc := &Document{Attr: root.attr, Doctype: doctype}
	for _, c := range root.children {
		switch {
		case c.is("header") && doc.Header == nil:
			doc.Header = c.element()
		case c.is("body") && doc.Body == nil:
			doc.Body = newBody(c)
		}
	}
	if doc.Body == nil {
		return nil, &ParseError{Msg: "invalid TMX file: <body> not found"}
	}

	return doc, nil
}

func newBody(n *rawNode) *Body {
	b := &Body{Attr: n.attr}
	for _, c := range n.children {
		if c.is("tu") {
			b.Units = append(b.Units, newTU(c))
		}
	}
	return b
}

func newTU(n *rawNode) *TU {
	tu := &TU{Attr: n.attr}
	for _, c := range n.children {
		if c.is("tuv") {
			tu.Variants = append(tu.Variants, newTUV(c))
		} else {
			tu.Extra = append(tu.Extra, c.element())
		}
	}
	return tu
}

func newTUV(n *rawNode) *TUV {
	v := &TUV{Attr: n.attr}
	for _, c := range n.children {
		if c.is("seg") && v.Seg == nil {
			v.Seg = &Segment{Attr: c.attr, Text: c.content.String()}
		} else {
			v.Extra = append(v.Extra, c.element())
		}
	}
	return v
}

// Load turns raw file content into a Document ready for editing: the content is normalized,
// parsed, and every unit without an id is given one.
func Load(raw []byte) (*Document, error) {
	doc, err := Parse(NormalizeBytes(raw))
	if err != nil {
		return nil, err
	}
	AssignMissingIDs(doc)
	return doc, nil
}
