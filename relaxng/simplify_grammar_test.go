package relaxng

import "testing"

// TestStep15MergeGrammarsSuffixesAndRewritesParentRef is scenario 7 of
// spec.md §8: two nested <grammar> elements, each using parentRef to reach
// a definition owned by the enclosing grammar, collapse into one grammar
// whose hoisted starts are suffixed "-gr-1"/"-gr-2" and whose parentRefs
// become ordinary refs into the (unsuffixed, id-0) outer define pool.
func TestStep15MergeGrammarsSuffixesAndRewritesParentRef(t *testing.T) {
	buildNested := func(innerElementName string) *Element {
		g := NewElement(RNGNamespace, elGrammar)
		start := NewElement(RNGNamespace, elStart)
		inner := NewElement(RNGNamespace, elElement)
		name := NewElement(RNGNamespace, elName)
		name.SetAttr("resolvedNS", "")
		name.AppendText(innerElementName)
		inner.AppendChild(name)
		pref := NewElement(RNGNamespace, elParentRef)
		pref.SetAttr(attrName, "shared")
		inner.AppendChild(pref)
		start.AppendChild(inner)
		g.AppendChild(start)
		return g
	}

	root := NewElement(RNGNamespace, elGrammar)

	docA := NewElement(RNGNamespace, elDefine)
	docA.SetAttr(attrName, "docA")
	docA.AppendChild(buildNested("innerA"))
	root.AppendChild(docA)

	docB := NewElement(RNGNamespace, elDefine)
	docB.SetAttr(attrName, "docB")
	docB.AppendChild(buildNested("innerB"))
	root.AppendChild(docB)

	shared := NewElement(RNGNamespace, elDefine)
	shared.SetAttr(attrName, "shared")
	shared.AppendChild(NewElement(RNGNamespace, elText))
	root.AppendChild(shared)

	start := NewElement(RNGNamespace, elStart)
	choice := NewElement(RNGNamespace, elChoice)
	refA := NewElement(RNGNamespace, elRef)
	refA.SetAttr(attrName, "docA")
	refB := NewElement(RNGNamespace, elRef)
	refB.SetAttr(attrName, "docB")
	choice.AppendChild(refA)
	choice.AppendChild(refB)
	start.AppendChild(choice)
	root.AppendChild(start)

	opts := defaultOptions()
	merged, err := step15MergeGrammars(root, opts)
	if err != nil {
		t.Fatalf("step15MergeGrammars: %v", err)
	}

	defines := map[string]*Element{}
	for _, d := range merged.ChildElements() {
		if d.Name.Local == elDefine {
			name, _ := d.Attr(attrName)
			defines[name] = d
		}
	}

	if _, ok := defines["__start-gr-1"]; !ok {
		t.Fatalf("expected a hoisted start suffixed -gr-1, got defines: %v", keysOf(defines))
	}
	if _, ok := defines["__start-gr-2"]; !ok {
		t.Fatalf("expected a hoisted start suffixed -gr-2, got defines: %v", keysOf(defines))
	}
	if _, ok := defines["shared"]; !ok {
		t.Fatalf("expected the outer \"shared\" define to survive unsuffixed")
	}

	// Both hoisted starts must reference "shared" (id 0, unsuffixed) rather
	// than a nonexistent "shared-gr-1"/"shared-gr-2".
	for _, suffix := range []string{"__start-gr-1", "__start-gr-2"} {
		innerElt := defines[suffix].ChildElements()[0]
		var ref *Element
		for _, c := range innerElt.ChildElements() {
			if c.Name.Local == elRef {
				ref = c
			}
		}
		if ref == nil {
			t.Fatalf("%s: expected parentRef to have been rewritten to a ref", suffix)
		}
		if n, _ := ref.Attr(attrName); n != "shared" {
			t.Fatalf("%s: expected the rewritten ref to target \"shared\", got %q", suffix, n)
		}
	}

	if docA, ok := defines["docA"]; !ok {
		t.Fatalf("expected \"docA\" to survive unsuffixed at id 0")
	} else if got := docA.ChildElements()[0]; got.Name.Local != elRef {
		t.Fatalf("expected docA's grammar child to be replaced by a ref, got %q", got.Name.Local)
	}
}

func keysOf(m map[string]*Element) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
