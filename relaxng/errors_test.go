package relaxng

import "testing"

func TestAttributeValueErrorFormatNamesTheAttribute(t *testing.T) {
	err := &AttributeValueError{Msg: "attribute value not permitted here", Name: Name{Local: "id"}}
	got := err.Format(NewResolver())
	want := "invalid value for attribute id: attribute value not permitted here"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestChoiceErrorFormatListsExpectedNames(t *testing.T) {
	err := &ChoiceError{
		Msg:      "no branch of the choice matched",
		Expected: []NamePattern{Name{Local: "b"}, Name{Local: "c"}},
	}
	got := err.Format(NewResolver())
	want := "no branch of the choice matched, expected one of: b, c"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestChoiceErrorFormatWithNoExpectedNames(t *testing.T) {
	err := &ChoiceError{Msg: "no branch of the choice matched"}
	got := err.Format(NewResolver())
	want := "no branch of the choice matched"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

// TestWalkerAttributeValueErrorNamesTheOffendingAttribute drives
// `attribute count { empty }` with a non-blank value, the one textDeriv
// path that reaches NotAllowed with zero facet-level errors (plain
// `empty` content has no datatype to blame), forcing the walker to
// synthesize the generic AttributeValueError — and checks that error
// names the attribute it belongs to (stamped from the attribute_name
// event that preceded attribute_value, not from the content pattern).
func TestWalkerAttributeValueErrorNamesTheOffendingAttribute(t *testing.T) {
	attr := NewElement(RNGNamespace, elAttribute)
	name := NewElement(RNGNamespace, elName)
	name.SetAttr("resolvedNS", "")
	name.AppendText("count")
	attr.AppendChild(name)
	attr.AppendChild(NewElement(RNGNamespace, elEmpty))

	e := NewElement(RNGNamespace, elElement)
	en := NewElement(RNGNamespace, elName)
	en.SetAttr("resolvedNS", "")
	en.AppendText("e")
	e.AppendChild(en)
	e.AppendChild(attr)

	p, err := Construct(e, NewResolver(), nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	w := NewWalker(p, NewResolver())

	if errs := w.FireEvent(NewEnterStartTag("", "e")); len(errs) != 0 {
		t.Fatalf("unexpected errors at <e>: %v", errs)
	}
	if errs := w.FireEvent(NewAttributeName("", "count")); len(errs) != 0 {
		t.Fatalf("unexpected errors naming attribute count: %v", errs)
	}

	errs := w.FireEvent(NewAttributeValue("1"))
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error for a non-blank value against empty content, got %d: %v", len(errs), errs)
	}
	ave, ok := errs[0].(*AttributeValueError)
	if !ok {
		t.Fatalf("expected a *AttributeValueError, got %T: %v", errs[0], errs[0])
	}
	if ave.Name.Local != "count" {
		t.Fatalf("expected the error to name attribute %q, got %q", "count", ave.Name.Local)
	}
}
