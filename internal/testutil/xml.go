package testutil

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/formscript/internal/xmltree"
)

// Tree is a comparable snapshot of an element subtree. Attribute order and
// whitespace-only text are ignored, matching how XML diff tools compare
// documents.
type Tree struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []Tree
}

// Snapshot converts an element into a Tree.
func Snapshot(n *xmltree.Node) Tree {
	t := Tree{Name: n.Name(), Attrs: n.Attrs().Map()}
	var text strings.Builder
	for _, c := range n.Children() {
		switch c.Kind() {
		case xmltree.ElementNode:
			t.Children = append(t.Children, Snapshot(c))
		case xmltree.TextNode:
			text.WriteString(strings.TrimSpace(c.Data()))
		}
	}
	t.Text = text.String()
	return t
}

// ParseTree parses xml and snapshots its root element.
func ParseTree(t testing.TB, xml string) Tree {
	t.Helper()
	doc, err := xmltree.ParseString(xml)
	if err != nil {
		t.Fatalf("parse %q: %v", xml, err)
	}
	return Snapshot(doc.Root())
}

// AssertXMLEqual fails the test if the two documents differ structurally.
func AssertXMLEqual(t testing.TB, want, got string) {
	t.Helper()
	if diff := cmp.Diff(ParseTree(t, want), ParseTree(t, got)); diff != "" {
		t.Errorf("documents differ (-want +got):\n%s", diff)
	}
}
