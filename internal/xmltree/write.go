package xmltree

import (
	"bufio"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// WriteTo serializes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, n := range d.nodes {
		writeNode(cw, n)
	}
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

// String serializes the document.
func (d *Document) String() string {
	var sb strings.Builder
	_, _ = d.WriteTo(&sb)
	return sb.String()
}

// String serializes the subtree rooted at n.
func (n *Node) String() string {
	var sb strings.Builder
	cw := &countingWriter{w: bufio.NewWriter(&sb)}
	writeNode(cw, n)
	_ = cw.w.Flush()
	return sb.String()
}

func writeNode(w *countingWriter, n *Node) {
	switch n.kind {
	case ElementNode:
		w.str("<")
		w.str(n.name)
		for _, a := range n.attrs {
			w.str(" ")
			w.str(a.Name)
			w.str(`="`)
			w.str(attrEscaper.Replace(a.Value))
			w.str(`"`)
		}
		if len(n.children) == 0 {
			w.str(" />")
			return
		}
		w.str(">")
		for _, c := range n.children {
			writeNode(w, c)
		}
		w.str("</")
		w.str(n.name)
		w.str(">")
	case TextNode:
		w.str(textEscaper.Replace(n.data))
	case CommentNode:
		w.str("<!--")
		w.str(n.data)
		w.str("-->")
	case ProcInstNode:
		w.str("<?")
		w.str(n.name)
		if n.data != "" {
			w.str(" ")
			w.str(n.data)
		}
		w.str("?>")
	case DirectiveNode:
		w.str("<!")
		w.str(n.data)
		w.str(">")
	}
}

// countingWriter keeps the byte count and the first write error.
type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) str(s string) {
	if c.err != nil {
		return
	}
	m, err := c.w.WriteString(s)
	c.n += int64(m)
	c.err = err
}
