package xmltree

// Kind identifies the type of a Node.
type Kind int

const (
	ElementNode Kind = iota
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

func (k Kind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case ProcInstNode:
		return "procinst"
	case DirectiveNode:
		return "directive"
	default:
		return "unknown"
	}
}

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Attrs is an ordered attribute set. Names are unique.
type Attrs []Attr

// A builds an Attrs from alternating name/value pairs. A trailing name
// without a value is ignored.
func A(pairs ...string) Attrs {
	attrs := make(Attrs, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		attrs = append(attrs, Attr{Name: pairs[i], Value: pairs[i+1]})
	}
	return attrs
}

// Get returns the value of the named attribute and whether it is present.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether the named attribute is present.
func (a Attrs) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Map returns the attributes as a map. Order is lost.
func (a Attrs) Map() map[string]string {
	m := make(map[string]string, len(a))
	for _, attr := range a {
		m[attr.Name] = attr.Value
	}
	return m
}

// Equal reports whether a and b hold the same attributes in the same order.
func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share storage with a.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	copy(out, a)
	return out
}

// validate checks that every name is non-empty and unique.
func (a Attrs) validate() error {
	seen := make(map[string]bool, len(a))
	for _, attr := range a {
		if attr.Name == "" {
			return InvalidArgument("attributes", "attribute name must not be empty")
		}
		if seen[attr.Name] {
			return InvalidArgument("attributes", "duplicate attribute "+attr.Name)
		}
		seen[attr.Name] = true
	}
	return nil
}

// Node is a node of a Document. Only element nodes have a name, attributes
// and children; other kinds carry their content in Data.
type Node struct {
	doc      *Document
	parent   *Node
	kind     Kind
	name     string
	data     string
	attrs    Attrs
	children []*Node
}

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the element tag. For processing instructions it is the target.
func (n *Node) Name() string { return n.name }

// Data returns the content of a non-element node.
func (n *Node) Data() string { return n.data }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the parent element, or nil for top-level nodes and
// detached nodes.
func (n *Node) Parent() *Node { return n.parent }

// Attrs returns a copy of the attribute set.
func (n *Node) Attrs() Attrs { return n.attrs.Clone() }

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) { return n.attrs.Get(name) }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Elements returns the element children in document order.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// SetAttrs replaces the attribute set with attrs, in order.
func (n *Node) SetAttrs(attrs Attrs) error {
	if n.kind != ElementNode {
		return InvalidArgument("node", "attributes can only be set on elements")
	}
	if err := attrs.validate(); err != nil {
		return err
	}
	n.attrs = nil
	n.attrs = append(n.attrs, attrs...)
	return nil
}

// AppendChild attaches child as the last child of n. The child must belong
// to the same document, must not already be attached and must not be n or
// one of its ancestors.
func (n *Node) AppendChild(child *Node) error {
	if child == nil {
		return InvalidArgument("child", "child must not be nil")
	}
	if n.kind != ElementNode {
		return InvalidArgument("parent", "only elements can have children")
	}
	if child.doc != n.doc {
		return InvalidArgument("child", "node belongs to a different document")
	}
	if child.parent != nil || n.doc.isTopLevel(child) {
		return InvalidArgument("child", "node is already attached")
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return InvalidArgument("child", "node is an ancestor of the parent")
		}
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child from n. Returns false if child is not a child
// of n.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Document is an ordered list of top-level nodes with at most one root
// element. It owns all nodes created through it.
type Document struct {
	nodes []*Node
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// NewElement creates a detached element owned by d.
func (d *Document) NewElement(name string, attrs Attrs) (*Node, error) {
	if name == "" {
		return nil, InvalidArgument("name", "element name must not be empty")
	}
	if err := attrs.validate(); err != nil {
		return nil, err
	}
	return &Node{doc: d, kind: ElementNode, name: name, attrs: attrs.Clone()}, nil
}

// NewText creates a detached text node owned by d.
func (d *Document) NewText(text string) *Node {
	return &Node{doc: d, kind: TextNode, data: text}
}

// Root returns the document element, or nil if there is none.
func (d *Document) Root() *Node {
	for _, n := range d.nodes {
		if n.kind == ElementNode {
			return n
		}
	}
	return nil
}

// SetRoot installs root as the document element, replacing any existing one.
func (d *Document) SetRoot(root *Node) error {
	if root == nil || root.kind != ElementNode {
		return InvalidArgument("root", "root must be an element")
	}
	if root.doc != d {
		return InvalidArgument("root", "node belongs to a different document")
	}
	for i, n := range d.nodes {
		if n.kind == ElementNode {
			d.nodes[i] = root
			return nil
		}
	}
	d.nodes = append(d.nodes, root)
	return nil
}

// Nodes returns a copy of the top-level node list.
func (d *Document) Nodes() []*Node {
	out := make([]*Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

func (d *Document) isTopLevel(n *Node) bool {
	for _, top := range d.nodes {
		if top == n {
			return true
		}
	}
	return false
}
