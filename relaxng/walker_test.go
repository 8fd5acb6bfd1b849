package relaxng

import (
	"testing"

	"github.com/mangalam-research/gosalve/datatype"
)

// buildIntegerFacetGrammar builds `element e { data xsd:integer { param
// "maxInclusive" "10" } }` — exercises a Data pattern through element text
// content, the path TestWalkerTextFacetViolationReportsOnlyValueError drives.
func buildIntegerFacetGrammar() *Element {
	e := NewElement(RNGNamespace, elElement)
	name := NewElement(RNGNamespace, elName)
	name.SetAttr("resolvedNS", "")
	name.AppendText("e")
	e.AppendChild(name)

	data := NewElement(RNGNamespace, elData)
	data.DatatypeLibrary = datatype.XSDLibURI
	data.SetAttr(attrType, "integer")
	param := NewElement(RNGNamespace, elParam)
	param.SetAttr(attrName, "maxInclusive")
	param.AppendText("10")
	data.AppendChild(param)
	e.AppendChild(data)
	return e
}

func TestWalkerTextFacetViolationReportsOnlyValueError(t *testing.T) {
	root := buildIntegerFacetGrammar()
	p, err := Construct(root, NewResolver(), nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	w := NewWalker(p, NewResolver())

	if errs := w.FireEvent(NewEnterStartTag("", "e")); len(errs) != 0 {
		t.Fatalf("unexpected errors at <e>: %v", errs)
	}
	if errs := w.FireEvent(NewLeaveStartTag()); len(errs) != 0 {
		t.Fatalf("unexpected errors at leave_start_tag: %v", errs)
	}

	errs := w.FireEvent(NewText("11"))
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error for a maxInclusive violation, got %d: %v", len(errs), errs)
	}
	if _, ok := errs[0].(*ValueError); !ok {
		t.Fatalf("expected a *ValueError naming the offending facet, got %T: %v", errs[0], errs[0])
	}
}

func TestWalkerTextFacetAcceptsBoundaryValue(t *testing.T) {
	root := buildIntegerFacetGrammar()
	p, err := Construct(root, NewResolver(), nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	w := NewWalker(p, NewResolver())

	if errs := w.FireEvent(NewEnterStartTag("", "e")); len(errs) != 0 {
		t.Fatalf("unexpected errors at <e>: %v", errs)
	}
	if errs := w.FireEvent(NewLeaveStartTag()); len(errs) != 0 {
		t.Fatalf("unexpected errors at leave_start_tag: %v", errs)
	}
	if errs := w.FireEvent(NewText("10")); len(errs) != 0 {
		t.Fatalf("expected the boundary value 10 to be accepted, got %v", errs)
	}
	if errs := w.FireEvent(NewEndTag("", "e")); len(errs) != 0 {
		t.Fatalf("unexpected errors at </e>: %v", errs)
	}
	if errs := w.End(); len(errs) != 0 {
		t.Fatalf("expected a clean End(), got %v", errs)
	}
}

// TestWalkerEmptyGrammarAcceptsEmptyStartTag is scenario 1 of spec.md §8:
// grammar { start { element "root" { empty } } }, document <root/>.
func TestWalkerEmptyGrammarAcceptsEmptyStartTag(t *testing.T) {
	root := buildRootElementGrammar()
	resolver := NewResolver()
	p, err := Construct(root, resolver, nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}

	w := NewWalker(p, resolver)

	possible := w.Possible()
	found := false
	for _, np := range possible.ElementNames {
		if np.Match("", "root") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected possible() to list element \"root\" before any event")
	}

	if errs := w.FireEvent(NewEnterStartTag("", "root")); len(errs) != 0 {
		t.Fatalf("unexpected errors entering <root>: %v", errs)
	}
	if errs := w.FireEvent(NewLeaveStartTag()); len(errs) != 0 {
		t.Fatalf("unexpected errors at leave_start_tag: %v", errs)
	}
	if errs := w.FireEvent(NewEndTag("", "root")); len(errs) != 0 {
		t.Fatalf("unexpected errors at end_tag: %v", errs)
	}
	if errs := w.End(); len(errs) != 0 {
		t.Fatalf("expected a clean End(), got %v", errs)
	}
}

// buildChoiceOfElementsGrammar builds, in normal form, `element a { choice
// { element b { empty }, element c { empty } } }` — scenario 2 of §8.
func buildChoiceOfElementsGrammar() *Element {
	b := NewElement(RNGNamespace, elElement)
	bn := NewElement(RNGNamespace, elName)
	bn.SetAttr("resolvedNS", "")
	bn.AppendText("b")
	b.AppendChild(bn)
	b.AppendChild(NewElement(RNGNamespace, elEmpty))

	c := NewElement(RNGNamespace, elElement)
	cn := NewElement(RNGNamespace, elName)
	cn.SetAttr("resolvedNS", "")
	cn.AppendText("c")
	c.AppendChild(cn)
	c.AppendChild(NewElement(RNGNamespace, elEmpty))

	choice := NewElement(RNGNamespace, elChoice)
	choice.AppendChild(b)
	choice.AppendChild(c)

	a := NewElement(RNGNamespace, elElement)
	an := NewElement(RNGNamespace, elName)
	an.SetAttr("resolvedNS", "")
	an.AppendText("a")
	a.AppendChild(an)
	a.AppendChild(choice)
	return a
}

func TestWalkerChoiceMatchingAcceptsOneBranch(t *testing.T) {
	root := buildChoiceOfElementsGrammar()
	resolver := NewResolver()
	p, err := Construct(root, resolver, nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	w := NewWalker(p, resolver)

	mustNoErrors := func(t *testing.T, errs []error, where string) {
		t.Helper()
		if len(errs) != 0 {
			t.Fatalf("unexpected errors at %s: %v", where, errs)
		}
	}

	mustNoErrors(t, w.FireEvent(NewEnterStartTag("", "a")), "<a>")
	mustNoErrors(t, w.FireEvent(NewLeaveStartTag()), "leave_start_tag of <a>")
	mustNoErrors(t, w.FireEvent(NewEnterStartTag("", "b")), "<b>")
	mustNoErrors(t, w.FireEvent(NewLeaveStartTag()), "leave_start_tag of <b>")
	mustNoErrors(t, w.FireEvent(NewEndTag("", "b")), "</b>")
	mustNoErrors(t, w.FireEvent(NewEndTag("", "a")), "</a>")
	mustNoErrors(t, w.End(), "End()")
}

func TestWalkerChoiceMatchingRejectsSecondBranch(t *testing.T) {
	root := buildChoiceOfElementsGrammar()
	resolver := NewResolver()
	p, err := Construct(root, resolver, nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	w := NewWalker(p, resolver)

	if errs := w.FireEvent(NewEnterStartTag("", "a")); len(errs) != 0 {
		t.Fatalf("unexpected errors at <a>: %v", errs)
	}
	if errs := w.FireEvent(NewLeaveStartTag()); len(errs) != 0 {
		t.Fatalf("unexpected errors at leave_start_tag of <a>: %v", errs)
	}
	if errs := w.FireEvent(NewEnterStartTag("", "b")); len(errs) != 0 {
		t.Fatalf("unexpected errors at <b>: %v", errs)
	}
	if errs := w.FireEvent(NewLeaveStartTag()); len(errs) != 0 {
		t.Fatalf("unexpected errors at leave_start_tag of <b>: %v", errs)
	}
	if errs := w.FireEvent(NewEndTag("", "b")); len(errs) != 0 {
		t.Fatalf("unexpected errors at </b>: %v", errs)
	}

	// <c> is not permitted once <b> has already been chosen: the choice was
	// already committed to the "b" branch.
	errs := w.FireEvent(NewEnterStartTag("", "c"))
	if len(errs) == 0 {
		t.Fatalf("expected an unexpected-element error entering <c> after <b> was already chosen")
	}
	if _, ok := errs[0].(*ElementNameError); !ok {
		t.Fatalf("expected an *ElementNameError, got %T: %v", errs[0], errs[0])
	}
}

// TestWalkerAttributeOrderIndependence is scenario 3 of §8: `element e {
// attribute x {text} & attribute y {text} & attribute z {text} }` accepts
// every permutation of its three attributes.
func buildThreeAttributeGrammar() *Element {
	mkAttr := func(local string) *Element {
		attr := NewElement(RNGNamespace, elAttribute)
		n := NewElement(RNGNamespace, elName)
		n.SetAttr("resolvedNS", "")
		n.AppendText(local)
		attr.AppendChild(n)
		attr.AppendChild(NewElement(RNGNamespace, elText))
		return attr
	}
	interleave := NewElement(RNGNamespace, elInterleave)
	interleave.AppendChild(mkAttr("x"))
	interleave.AppendChild(mkAttr("y"))
	interleave.AppendChild(mkAttr("z"))

	e := NewElement(RNGNamespace, elElement)
	en := NewElement(RNGNamespace, elName)
	en.SetAttr("resolvedNS", "")
	en.AppendText("e")
	e.AppendChild(en)
	e.AppendChild(interleave)
	return e
}

func TestWalkerAttributeOrderIndependence(t *testing.T) {
	perms := [][]string{
		{"x", "y", "z"}, {"x", "z", "y"}, {"y", "x", "z"},
		{"y", "z", "x"}, {"z", "x", "y"}, {"z", "y", "x"},
	}
	for _, perm := range perms {
		root := buildThreeAttributeGrammar()
		resolver := NewResolver()
		p, err := Construct(root, resolver, nil)
		if err != nil {
			t.Fatalf("Construct: %v", err)
		}
		w := NewWalker(p, resolver)

		if errs := w.FireEvent(NewEnterStartTag("", "e")); len(errs) != 0 {
			t.Fatalf("perm %v: unexpected errors at <e>: %v", perm, errs)
		}
		for _, local := range perm {
			if errs := w.FireEvent(NewAttributeName("", local)); len(errs) != 0 {
				t.Fatalf("perm %v: unexpected errors naming attribute %q: %v", perm, local, errs)
			}
			if errs := w.FireEvent(NewAttributeValue("1")); len(errs) != 0 {
				t.Fatalf("perm %v: unexpected errors on value of %q: %v", perm, local, errs)
			}
		}
		if errs := w.FireEvent(NewLeaveStartTag()); len(errs) != 0 {
			t.Fatalf("perm %v: unexpected errors at leave_start_tag: %v", perm, errs)
		}
		if errs := w.FireEvent(NewEndTag("", "e")); len(errs) != 0 {
			t.Fatalf("perm %v: unexpected errors at </e>: %v", perm, errs)
		}
		if errs := w.End(); len(errs) != 0 {
			t.Fatalf("perm %v: expected a clean End(), got %v", perm, errs)
		}
	}
}

func TestWalkerCloneIndependence(t *testing.T) {
	root := buildChoiceOfElementsGrammar()
	resolver := NewResolver()
	p, err := Construct(root, resolver, nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	w := NewWalker(p, resolver)
	if errs := w.FireEvent(NewEnterStartTag("", "a")); len(errs) != 0 {
		t.Fatalf("unexpected errors at <a>: %v", errs)
	}
	if errs := w.FireEvent(NewLeaveStartTag()); len(errs) != 0 {
		t.Fatalf("unexpected errors at leave_start_tag: %v", errs)
	}

	clone := w.Clone()

	// Drive the original down the "b" branch and the clone down a "c"-first
	// probe; each must see only its own branch's consequences.
	if errs := w.FireEvent(NewEnterStartTag("", "b")); len(errs) != 0 {
		t.Fatalf("original: unexpected errors at <b>: %v", errs)
	}
	if errs := clone.FireEvent(NewEnterStartTag("", "c")); len(errs) != 0 {
		t.Fatalf("clone: unexpected errors at <c>: %v", errs)
	}
}
