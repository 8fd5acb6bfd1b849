package relaxng

import "testing"

// buildRootElementGrammar constructs the normal-form tree of
// `grammar { start { element "root" { empty } } }` by hand — i.e. already
// past Step 3's name-class materialization — the shape Construct expects.
func buildRootElementGrammar() *Element {
	root := NewElement(RNGNamespace, elGrammar)

	def := NewElement(RNGNamespace, elDefine)
	def.SetAttr(attrName, "root")
	elt := NewElement(RNGNamespace, elElement)
	name := NewElement(RNGNamespace, elName)
	name.SetAttr("resolvedNS", "")
	name.AppendText("root")
	elt.AppendChild(name)
	elt.AppendChild(NewElement(RNGNamespace, elEmpty))
	def.AppendChild(elt)
	root.AppendChild(def)

	start := NewElement(RNGNamespace, elStart)
	ref := NewElement(RNGNamespace, elRef)
	ref.SetAttr(attrName, "root")
	start.AppendChild(ref)
	root.AppendChild(start)

	return root
}

func TestConstructSimpleGrammar(t *testing.T) {
	root := buildRootElementGrammar()
	resolver := NewResolver()
	p, err := Construct(root, resolver, nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if _, ok := p.defines["root"]; !ok {
		t.Fatalf("expected a \"root\" define to be registered")
	}
	if p.arena[p.start].kind != PRef {
		t.Fatalf("expected the start pattern to be the ref to \"root\", got kind %v", p.arena[p.start].kind)
	}
}

func TestConstructDanglingRefFails(t *testing.T) {
	root := NewElement(RNGNamespace, elGrammar)
	start := NewElement(RNGNamespace, elStart)
	ref := NewElement(RNGNamespace, elRef)
	ref.SetAttr(attrName, "missing")
	start.AppendChild(ref)
	root.AppendChild(start)

	_, err := Construct(root, NewResolver(), nil)
	if err == nil {
		t.Fatalf("expected Construct to fail on a reference to an undefined pattern")
	}
}

func TestConstructMissingStartFails(t *testing.T) {
	root := NewElement(RNGNamespace, elGrammar)
	def := NewElement(RNGNamespace, elDefine)
	def.SetAttr(attrName, "root")
	def.AppendChild(NewElement(RNGNamespace, elEmpty))
	root.AppendChild(def)

	_, err := Construct(root, NewResolver(), nil)
	if err == nil {
		t.Fatalf("expected Construct to fail when a grammar has no start pattern")
	}
}

func TestConstructNonGrammarRoot(t *testing.T) {
	// A schema whose root pattern is not wrapped in <grammar> (e.g. a bare
	// <element>) builds directly without any define/start bookkeeping.
	elt := NewElement(RNGNamespace, elElement)
	name := NewElement(RNGNamespace, elName)
	name.SetAttr("resolvedNS", "")
	name.AppendText("root")
	elt.AppendChild(name)
	elt.AppendChild(NewElement(RNGNamespace, elEmpty))

	p, err := Construct(elt, NewResolver(), nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if p.arena[p.start].kind != PElement {
		t.Fatalf("expected the start pattern to be the element itself, got kind %v", p.arena[p.start].kind)
	}
}
