package xmltree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formscript/internal/testutil"
	"github.com/roach88/formscript/internal/xmltree"
)

const sourceXML = `<?xml version="1.0" encoding="UTF-8"?>
<root>
	<children>
		<child name="name1" role="role1" />
		<child name="name1" role="role2" attr1="test1" attr2="test2" />
		<child name="name2" />
	</children>
</root>
`

func childrenNode(t *testing.T) (*xmltree.Document, *xmltree.Node) {
	t.Helper()
	doc, err := xmltree.ParseString(sourceXML)
	require.NoError(t, err)
	children := xmltree.Find(doc.Root(), xmltree.Named("children"))
	require.NotNil(t, children)
	return doc, children
}

func TestEnsureChild_DoesNotCreateWhenExists(t *testing.T) {
	doc, children := childrenNode(t)

	node, changed, err := xmltree.EnsureChild(children, xmltree.Element("child", "name", "name1", "role", "role2"), "child",
		xmltree.A("name", "name1", "role", "role2", "attr1", "test1", "attr2", "test2"))
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.False(t, changed)

	testutil.AssertXMLEqual(t, sourceXML, doc.String())
	assert.Len(t, children.Elements(), 3)
}

func TestEnsureChild_CreatesWhenMissing(t *testing.T) {
	doc, children := childrenNode(t)

	node, changed, err := xmltree.EnsureChild(children, xmltree.Element("child2", "name", "name1", "role", "role3"), "child",
		xmltree.A("name", "name1", "role", "role3"))
	require.NoError(t, err)
	assert.True(t, changed)

	expected := `<root>
	<children>
		<child name="name1" role="role1" />
		<child name="name1" role="role2" attr1="test1" attr2="test2" />
		<child name="name2" />
		<child name="name1" role="role3" />
	</children>
</root>`
	testutil.AssertXMLEqual(t, expected, doc.String())

	elements := children.Elements()
	assert.Same(t, node, elements[len(elements)-1], "created node must be appended last")
	assert.Same(t, children, node.Parent())
	assert.Same(t, doc, node.Document())
}

func TestEnsureChild_PredicateNameIsDefaultName(t *testing.T) {
	doc, children := childrenNode(t)

	node, _, err := xmltree.EnsureChild(children, xmltree.Named("new_node"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "new_node", node.Name())
	assert.Empty(t, node.Attrs())

	expected := `<root>
	<children>
		<child name="name1" role="role1" />
		<child name="name1" role="role2" attr1="test1" attr2="test2" />
		<child name="name2" />
		<new_node />
	</children>
</root>`
	testutil.AssertXMLEqual(t, expected, doc.String())
}

func TestEnsureChild_UpdatesAttributes(t *testing.T) {
	doc, children := childrenNode(t)

	_, changed, err := xmltree.EnsureChild(children, xmltree.Element("child", "name", "name1", "role", "role2"), "child",
		xmltree.A("name", "name1", "role", "role2", "attr1", "test1_new", "attr2", "test2_new"))
	require.NoError(t, err)
	assert.True(t, changed)

	expected := `<root>
	<children>
		<child name="name1" role="role1" />
		<child name="name1" role="role2" attr1="test1_new" attr2="test2_new" />
		<child name="name2" />
	</children>
</root>`
	testutil.AssertXMLEqual(t, expected, doc.String())
}

func TestEnsureChild_ReplacesAttributeSetWholesale(t *testing.T) {
	doc, err := xmltree.ParseString(`<root><node a="1" b="2"><keep /></node></root>`)
	require.NoError(t, err)
	root := doc.Root()
	before := xmltree.Find(root, xmltree.Named("node"))

	node, _, err := xmltree.EnsureChild(root, xmltree.Named("node"), "", xmltree.A("a", "9", "c", "3"))
	require.NoError(t, err)

	assert.Same(t, before, node, "identity is preserved")
	assert.Equal(t, xmltree.A("a", "9", "c", "3"), node.Attrs())
	assert.Len(t, node.Elements(), 1, "children are preserved")
	assert.Equal(t, `<root><node a="9" c="3"><keep /></node></root>`, doc.String())
}

func TestEnsureChild_FirstMatchWins(t *testing.T) {
	doc, children := childrenNode(t)

	node, _, err := xmltree.EnsureChild(children, xmltree.Element("child", "name", "name1"), "child",
		xmltree.A("name", "name1", "role", "updated"))
	require.NoError(t, err)

	elements := children.Elements()
	assert.Same(t, elements[0], node)
	v, _ := elements[1].Attr("role")
	assert.Equal(t, "role2", v, "second match is untouched")
	assert.Contains(t, doc.String(), `<child name="name1" role="updated" />`)
}

func TestEnsureChild_Idempotent(t *testing.T) {
	doc, children := childrenNode(t)
	pred := xmltree.Element("child", "name", "name3")
	attrs := xmltree.A("name", "name3", "role", "r")

	_, _, err := xmltree.EnsureChild(children, pred, "child", attrs)
	require.NoError(t, err)
	once := doc.String()

	_, changed, err := xmltree.EnsureChild(children, pred, "child", attrs)
	require.NoError(t, err)
	assert.False(t, changed, "second pass changes nothing")
	assert.Equal(t, once, doc.String())
	assert.Len(t, xmltree.FindAll(children, pred), 1)
}

func TestEnsureChild_ReorderedAttributesCountAsChange(t *testing.T) {
	doc, err := xmltree.ParseString(`<root><node b="2" a="1" /></root>`)
	require.NoError(t, err)

	_, changed, err := xmltree.EnsureChild(doc.Root(), xmltree.Named("node"), "", xmltree.A("a", "1", "b", "2"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, `<root><node a="1" b="2" /></root>`, doc.String())
}

func TestEnsureChild_PredicateFunc(t *testing.T) {
	_, children := childrenNode(t)
	pred := xmltree.PredicateFunc(func(n *xmltree.Node) bool {
		v, _ := n.Attr("name")
		return v == "name2"
	})

	node, _, err := xmltree.EnsureChild(children, pred, "", xmltree.A("name", "name2", "seen", "yes"))
	require.NoError(t, err)
	v, ok := node.Attr("seen")
	assert.True(t, ok)
	assert.Equal(t, "yes", v)
}

func TestEnsureChild_InvalidArguments(t *testing.T) {
	_, children := childrenNode(t)

	tests := []struct {
		name   string
		parent *xmltree.Node
		pred   xmltree.Predicate
		node   string
		attrs  xmltree.Attrs
	}{
		{"nil parent", nil, xmltree.Named("x"), "", nil},
		{"nil predicate", children, nil, "x", nil},
		{"empty attribute key", children, xmltree.Named("x"), "", xmltree.Attrs{{Name: "", Value: "v"}}},
		{"duplicate attribute key", children, xmltree.Named("x"), "", xmltree.A("k", "1", "k", "2")},
		{"no derivable name", children, xmltree.PredicateFunc(func(*xmltree.Node) bool { return false }), "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, _, err := xmltree.EnsureChild(tt.parent, tt.pred, tt.node, tt.attrs)
			require.Error(t, err)
			assert.Nil(t, node)
			assert.True(t, xmltree.IsInvalidArgument(err), "got %v", err)
		})
	}
}

func TestRemoveMatching(t *testing.T) {
	doc, children := childrenNode(t)

	n, err := xmltree.RemoveMatching(children, xmltree.Element("child", "name", "name1"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	expected := `<root><children><child name="name2" /></children></root>`
	testutil.AssertXMLEqual(t, expected, doc.String())
}

func TestRemoveMatching_NoMatchIsNoop(t *testing.T) {
	doc, children := childrenNode(t)
	before := doc.String()

	n, err := xmltree.RemoveMatching(children, xmltree.Named("absent"))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, before, doc.String())
}

func TestRemoveMatching_InvalidArguments(t *testing.T) {
	_, children := childrenNode(t)

	_, err := xmltree.RemoveMatching(nil, xmltree.Named("x"))
	assert.True(t, xmltree.IsInvalidArgument(err))

	_, err = xmltree.RemoveMatching(children, nil)
	assert.True(t, xmltree.IsInvalidArgument(err))
}

func TestMatchString(t *testing.T) {
	assert.Equal(t, "Library", xmltree.Named("Library").String())
	assert.Equal(t, "Library[@name='x']", xmltree.Element("Library", "name", "x").String())
	assert.Equal(t, "Handler[@functionName='f' and @libraryName='l']",
		xmltree.Element("Handler", "functionName", "f", "libraryName", "l").String())
	assert.Equal(t, "*[@a='b']", xmltree.Element("", "a", "b").String())
}
