// Package xmltree is a small owned-node XML document model with an
// idempotent reconciler on top of it.
//
// A Document owns every Node attached to it. Nodes are created through the
// document and can only be attached to elements of the same document.
// Text, comments, processing instructions and directives are kept so that a
// parse/serialize round trip preserves everything the reconciler does not
// touch.
//
// RECONCILER:
//
// EnsureChild locates the first direct element child of a parent that matches
// a Predicate. When found, its attribute set is replaced wholesale with the
// requested one; identity, position and children are kept. When not found, a
// new element is appended as the last child. Absence is never an error. The
// returned flag tells callers whether anything changed, so an unchanged
// document need not be re-serialized.
//
// RemoveMatching removes every matching direct element child. Removing
// nothing is a no-op.
//
// Predicates are declarative (Match: element name plus attribute equality)
// or arbitrary functions (PredicateFunc). Lookups assume at most one match
// per parent and always operate on the first one.
//
// Namespaces are not resolved: a prefixed name such as "x:node" is treated
// as an opaque tag.
package xmltree
