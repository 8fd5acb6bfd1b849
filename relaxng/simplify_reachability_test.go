package relaxng

import "testing"

func TestStep14RejectsDirectSelfRecursion(t *testing.T) {
	root := NewElement(RNGNamespace, elGrammar)

	def := NewElement(RNGNamespace, elDefine)
	def.SetAttr(attrName, "x")
	ref := NewElement(RNGNamespace, elRef)
	ref.SetAttr(attrName, "x")
	def.AppendChild(ref)
	root.AppendChild(def)

	start := NewElement(RNGNamespace, elStart)
	startRef := NewElement(RNGNamespace, elRef)
	startRef.SetAttr(attrName, "x")
	start.AppendChild(startRef)
	root.AppendChild(start)

	if err := step14CheckReachability(root); err == nil {
		t.Fatalf("expected \"define x = ref x\" to be rejected as self-recursive")
	}
}

func TestStep14RejectsMutualSelfRecursion(t *testing.T) {
	root := NewElement(RNGNamespace, elGrammar)

	defX := NewElement(RNGNamespace, elDefine)
	defX.SetAttr(attrName, "x")
	refY := NewElement(RNGNamespace, elRef)
	refY.SetAttr(attrName, "y")
	defX.AppendChild(refY)
	root.AppendChild(defX)

	defY := NewElement(RNGNamespace, elDefine)
	defY.SetAttr(attrName, "y")
	refX := NewElement(RNGNamespace, elRef)
	refX.SetAttr(attrName, "x")
	defY.AppendChild(refX)
	root.AppendChild(defY)

	start := NewElement(RNGNamespace, elStart)
	startRef := NewElement(RNGNamespace, elRef)
	startRef.SetAttr(attrName, "x")
	start.AppendChild(startRef)
	root.AppendChild(start)

	if err := step14CheckReachability(root); err == nil {
		t.Fatalf("expected mutually recursive \"x -> y -> x\" defines to be rejected")
	}
}

// TestStep14AllowsRecursionThroughElement is the companion case spec.md
// §4.G names explicitly: `define x = element e { ref x* }` is legal because
// the element boundary makes the recursion productive.
func TestStep14AllowsRecursionThroughElement(t *testing.T) {
	root := NewElement(RNGNamespace, elGrammar)

	def := NewElement(RNGNamespace, elDefine)
	def.SetAttr(attrName, "x")
	elt := NewElement(RNGNamespace, elElement)
	name := NewElement(RNGNamespace, elName)
	name.SetAttr("resolvedNS", "")
	name.AppendText("e")
	elt.AppendChild(name)
	oneOrMore := NewElement(RNGNamespace, elOneOrMore)
	ref := NewElement(RNGNamespace, elRef)
	ref.SetAttr(attrName, "x")
	oneOrMore.AppendChild(ref)
	elt.AppendChild(oneOrMore)
	def.AppendChild(elt)
	root.AppendChild(def)

	start := NewElement(RNGNamespace, elStart)
	startRef := NewElement(RNGNamespace, elRef)
	startRef.SetAttr(attrName, "x")
	start.AppendChild(startRef)
	root.AppendChild(start)

	if err := step14CheckReachability(root); err != nil {
		t.Fatalf("expected recursion through an element boundary to be legal, got %v", err)
	}
}

func TestStep14RejectsParentRefSelfRecursion(t *testing.T) {
	root := NewElement(RNGNamespace, elGrammar)

	outer := NewElement(RNGNamespace, elDefine)
	outer.SetAttr(attrName, "shared")
	inner := NewElement(RNGNamespace, elGrammar)
	innerStart := NewElement(RNGNamespace, elStart)
	pref := NewElement(RNGNamespace, elParentRef)
	pref.SetAttr(attrName, "shared")
	innerStart.AppendChild(pref)
	inner.AppendChild(innerStart)
	outer.AppendChild(inner)
	root.AppendChild(outer)

	start := NewElement(RNGNamespace, elStart)
	startRef := NewElement(RNGNamespace, elRef)
	startRef.SetAttr(attrName, "shared")
	start.AppendChild(startRef)
	root.AppendChild(start)

	if err := step14CheckReachability(root); err == nil {
		t.Fatalf("expected \"define shared = grammar { start { parentRef shared } }\" to be rejected as self-recursive")
	}
}
