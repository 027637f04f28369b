package xmltree

// Find returns the first direct element child of parent matching pred, or
// nil.
func Find(parent *Node, pred Predicate) *Node {
	if parent == nil || pred == nil {
		return nil
	}
	for _, c := range parent.children {
		if c.kind == ElementNode && pred.Matches(c) {
			return c
		}
	}
	return nil
}

// FindAll returns every direct element child of parent matching pred.
func FindAll(parent *Node, pred Predicate) []*Node {
	if parent == nil || pred == nil {
		return nil
	}
	var out []*Node
	for _, c := range parent.children {
		if c.kind == ElementNode && pred.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// EnsureChild returns the first direct child of parent matching pred,
// creating it if absent.
//
// An existing child has its attributes replaced by attrs: attributes not in
// attrs are dropped. A created child is named name, or the predicate's
// element name when name is empty, and is appended after the last child.
//
// changed reports whether the tree was modified: true when the child was
// created or its attribute list differs from attrs, in value or order.
func EnsureChild(parent *Node, pred Predicate, name string, attrs Attrs) (node *Node, changed bool, err error) {
	if parent == nil {
		return nil, false, InvalidArgument("parent", "parent must not be nil")
	}
	if parent.kind != ElementNode {
		return nil, false, InvalidArgument("parent", "parent must be an element")
	}
	if pred == nil {
		return nil, false, InvalidArgument("predicate", "predicate must not be nil")
	}
	if err := attrs.validate(); err != nil {
		return nil, false, err
	}

	if child := Find(parent, pred); child != nil {
		if child.attrs.Equal(attrs) {
			return child, false, nil
		}
		child.attrs = nil
		child.attrs = append(child.attrs, attrs...)
		return child, true, nil
	}

	if name == "" {
		if nm, ok := pred.(namer); ok {
			name = nm.ElementName()
		}
	}
	if name == "" {
		return nil, false, InvalidArgument("name", "no element name given for "+describe(pred))
	}

	child, err := parent.doc.NewElement(name, attrs)
	if err != nil {
		return nil, false, err
	}
	if err := parent.AppendChild(child); err != nil {
		return nil, false, err
	}
	return child, true, nil
}

// RemoveMatching removes every direct element child of parent matching
// pred and returns how many were removed.
func RemoveMatching(parent *Node, pred Predicate) (int, error) {
	if parent == nil {
		return 0, InvalidArgument("parent", "parent must not be nil")
	}
	if pred == nil {
		return 0, InvalidArgument("predicate", "predicate must not be nil")
	}

	kept := parent.children[:0]
	removed := 0
	for _, c := range parent.children {
		if c.kind == ElementNode && pred.Matches(c) {
			c.parent = nil
			removed++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(parent.children); i++ {
		parent.children[i] = nil
	}
	parent.children = kept
	return removed, nil
}
