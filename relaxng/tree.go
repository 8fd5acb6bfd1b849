// Package relaxng compiles RELAX NG schemas (XML syntax) into an in-memory
// pattern graph and drives a streaming, event-by-event validator over it.
//
// The package is organized the way the teacher organizes its XML toolkit:
// one flat package, many files by concern (tree, name classes, resolver,
// loader, the simplification pipeline split across the ordered steps,
// pattern construction, the walker, and the error model), rather than deep
// internal/ nesting.
package relaxng

// Attr is one attribute of an Element, name -> string value. Order is
// preserved because some simplification steps (name-class/param rewrites)
// are order sensitive for deterministic output, even though RELAX NG
// attribute semantics themselves are unordered.
type Attr struct {
	Name  QName
	Value string
}

// QName is a schema-tree-level qualified name: a raw (possibly empty)
// namespace prefix is never stored here — by the time the tree exists,
// Namespace is already the resolved URI (or "" for an unprefixed local
// name awaiting Step 3's resolution against the ns= stack).
type QName struct {
	Namespace string
	Local     string
}

func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// Element is a node in the schema tree (component F). The simplifier
// mutates trees in place; Parent must stay consistent across any
// structural edit — use the helper methods below rather than touching
// Children directly from simplification passes.
type Element struct {
	Name     QName
	Attrs    []Attr
	Children []Node
	Parent   *Element

	// Effective context captured from ancestor ns=/datatypeLibrary=
	// attributes during Step 1, per RELAX NG's inheritance rule: "the
	// innermost ancestor carrying the attribute wins".
	NS              string
	DatatypeLibrary string

	// Location is a caller-supplied source pointer (file + line) used only
	// for error messages; never consulted by any invariant check.
	Location string
}

// Node is either *Element or *Text; the schema tree interleaves the two
// only where RELAX NG children permit mixed content before simplification
// (inside <value>, <param>, <name>, or text in the source XML).
type Node interface {
	isNode()
}

func (e *Element) isNode() {}

// Text is a text node, preserved only inside value/param/name per the data
// model; elsewhere the simplifier strips whitespace-only text.
type Text struct {
	Value  string
	parent *Element
}

func (t *Text) isNode() {}

// AsNode wraps an *Element so it satisfies Node; used when appending an
// Element as a child.
func AsNode(e *Element) Node { return e }

// NewElement constructs a detached element with the given qualified name.
func NewElement(ns, local string) *Element {
	return &Element{Name: QName{Namespace: ns, Local: local}}
}

// Attr looks up the first attribute by local name (RELAX NG schema
// attributes like name=, combine=, ns= are always unprefixed/unqualified).
func (e *Element) Attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces or appends an attribute.
func (e *Element) SetAttr(local, value string) {
	for i, a := range e.Attrs {
		if a.Name.Local == local {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: QName{Local: local}, Value: value})
}

// RemoveAttr deletes an attribute by local name, no-op if absent.
func (e *Element) RemoveAttr(local string) {
	out := e.Attrs[:0]
	for _, a := range e.Attrs {
		if a.Name.Local != local {
			out = append(out, a)
		}
	}
	e.Attrs = out
}

// AppendChild appends a child element, fixing its parent pointer.
func (e *Element) AppendChild(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, AsNode(child))
}

// SetChildren replaces all children with the given elements, fixing parent
// pointers on each — the workhorse of every rewrite step.
func (e *Element) SetChildren(children ...*Element) {
	e.Children = e.Children[:0]
	for _, c := range children {
		c.Parent = e
		e.Children = append(e.Children, AsNode(c))
	}
}

// ReplaceWith swaps e's position in its parent's child list for
// replacement, fixing replacement.Parent. Used by rewrite steps that
// collapse a node to a single other node (e.g. optional -> choice).
func (e *Element) ReplaceWith(replacement *Element) {
	if e.Parent == nil {
		return
	}
	replacement.Parent = e.Parent
	for i, c := range e.Parent.Children {
		if ce, ok := c.(*Element); ok && ce == e {
			e.Parent.Children[i] = AsNode(replacement)
			return
		}
	}
}

// ChildElements returns only the *Element children, skipping text nodes —
// what nearly every simplification step actually wants to iterate.
func (e *Element) ChildElements() []*Element {
	out := make([]*Element, 0, len(e.Children))
	for _, c := range e.Children {
		if ce, ok := c.(*Element); ok {
			out = append(out, ce)
		}
	}
	return out
}

// TextContent concatenates every text child, used inside <value>/<param>/
// <name> where text is semantically meaningful.
func (e *Element) TextContent() string {
	var out []byte
	for _, c := range e.Children {
		if t, ok := c.(*Text); ok {
			out = append(out, t.Value...)
		}
	}
	return string(out)
}

// AppendText appends a text child.
func (e *Element) AppendText(s string) {
	e.Children = append(e.Children, &Text{Value: s, parent: e})
}

// Walk visits e and every descendant element in document order, depth
// first; simplification passes that need a stable full-tree sweep (name
// class normalisation, whitespace stripping) use this instead of
// hand-rolled recursion.
func (e *Element) Walk(visit func(*Element)) {
	visit(e)
	for _, c := range e.ChildElements() {
		c.Walk(visit)
	}
}
