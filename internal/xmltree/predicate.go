package xmltree

import (
	"fmt"
	"strings"
)

// Predicate selects element nodes.
type Predicate interface {
	Matches(n *Node) bool
}

// PredicateFunc adapts a function to a Predicate.
type PredicateFunc func(n *Node) bool

// Matches implements Predicate.
func (f PredicateFunc) Matches(n *Node) bool { return f(n) }

// namer is implemented by predicates that can name the element they would
// create.
type namer interface {
	ElementName() string
}

// Match is a declarative predicate: an element with the given tag whose
// listed attributes all have the given values. An empty Name matches any tag.
type Match struct {
	Name  string
	Attrs Attrs
}

// Named matches elements by tag alone.
func Named(name string) Match {
	return Match{Name: name}
}

// Element matches elements by tag and alternating attribute name/value pairs.
func Element(name string, pairs ...string) Match {
	return Match{Name: name, Attrs: A(pairs...)}
}

// Matches implements Predicate.
func (m Match) Matches(n *Node) bool {
	if n == nil || n.kind != ElementNode {
		return false
	}
	if m.Name != "" && n.name != m.Name {
		return false
	}
	for _, want := range m.Attrs {
		got, ok := n.attrs.Get(want.Name)
		if !ok || got != want.Value {
			return false
		}
	}
	return true
}

// ElementName returns the tag used when EnsureChild creates a node without
// an explicit name.
func (m Match) ElementName() string { return m.Name }

// String renders the predicate in XPath-like notation, e.g.
// Handler[@functionName='f' and @libraryName='l'].
func (m Match) String() string {
	name := m.Name
	if name == "" {
		name = "*"
	}
	if len(m.Attrs) == 0 {
		return name
	}
	conds := make([]string, len(m.Attrs))
	for i, a := range m.Attrs {
		conds[i] = fmt.Sprintf("@%s='%s'", a.Name, a.Value)
	}
	return name + "[" + strings.Join(conds, " and ") + "]"
}

func describe(pred Predicate) string {
	if s, ok := pred.(fmt.Stringer); ok {
		return s.String()
	}
	return "predicate"
}
