package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse reads a complete document from data.
//
// Tokens are read raw: namespace prefixes are kept as part of the tag and
// attribute names, and no namespace resolution takes place.
func Parse(data []byte) (*Document, error) {
	doc := NewDocument()
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var stack []*Node
	sawRoot := false

	attach := func(n *Node) error {
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			n.parent = top
			top.children = append(top.children, n)
			return nil
		}
		if n.kind == TextNode {
			if strings.TrimSpace(n.data) != "" {
				return malformed("text outside of the root element", nil)
			}
		}
		if n.kind == ElementNode {
			if sawRoot {
				return malformed("more than one root element", nil)
			}
			sawRoot = true
		}
		doc.nodes = append(doc.nodes, n)
		return nil
	}

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("parse document", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Node{doc: doc, kind: ElementNode, name: qualified(t.Name)}
			for _, a := range t.Attr {
				name := qualified(a.Name)
				if el.attrs.Has(name) {
					return nil, malformed(fmt.Sprintf("duplicate attribute %q on <%s>", name, el.name), nil)
				}
				el.attrs = append(el.attrs, Attr{Name: name, Value: a.Value})
			}
			if err := attach(el); err != nil {
				return nil, err
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, malformed(fmt.Sprintf("unexpected end element </%s>", qualified(t.Name)), nil)
			}
			top := stack[len(stack)-1]
			if top.name != qualified(t.Name) {
				return nil, malformed(fmt.Sprintf("element <%s> closed by </%s>", top.name, qualified(t.Name)), nil)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if err := attach(&Node{doc: doc, kind: TextNode, data: string(t)}); err != nil {
				return nil, err
			}
		case xml.Comment:
			if err := attach(&Node{doc: doc, kind: CommentNode, data: string(t)}); err != nil {
				return nil, err
			}
		case xml.ProcInst:
			if err := attach(&Node{doc: doc, kind: ProcInstNode, name: t.Target, data: string(t.Inst)}); err != nil {
				return nil, err
			}
		case xml.Directive:
			if err := attach(&Node{doc: doc, kind: DirectiveNode, data: string(t)}); err != nil {
				return nil, err
			}
		}
	}

	if len(stack) > 0 {
		return nil, malformed(fmt.Sprintf("element <%s> is not closed", stack[len(stack)-1].name), nil)
	}
	if !sawRoot {
		return nil, malformed("document has no root element", nil)
	}
	return doc, nil
}

// ParseString is Parse for string input.
func ParseString(s string) (*Document, error) {
	return Parse([]byte(s))
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
