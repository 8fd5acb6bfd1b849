package relaxng

import "testing"

func TestNameMatch(t *testing.T) {
	n := Name{NS: "http://x", Local: "foo"}
	if !n.Match("http://x", "foo") {
		t.Fatalf("expected exact match")
	}
	if n.Match("http://x", "bar") {
		t.Fatalf("expected no match on different local name")
	}
	if n.WildcardMatch("http://x", "foo") {
		t.Fatalf("Name is never a wildcard match")
	}
	if !n.Simple() {
		t.Fatalf("Name is always simple")
	}
}

func TestNsNameExcept(t *testing.T) {
	n := NsName{NS: "http://x", Except: Name{NS: "http://x", Local: "bar"}}
	if !n.Match("http://x", "foo") {
		t.Fatalf("expected nsName to match a sibling local name")
	}
	if n.Match("http://x", "bar") {
		t.Fatalf("expected except to exclude bar")
	}
	if n.Match("http://y", "foo") {
		t.Fatalf("expected nsName to reject a different namespace")
	}
	if n.Simple() {
		t.Fatalf("NsName is never simple")
	}
}

func TestAnyNameExcept(t *testing.T) {
	a := AnyName{Except: Name{NS: "", Local: "bad"}}
	if !a.Match("anything", "ok") {
		t.Fatalf("expected anyName to match an arbitrary name")
	}
	if a.Match("", "bad") {
		t.Fatalf("expected except to exclude the excepted name")
	}
}

func TestNameChoiceAndToNames(t *testing.T) {
	c := NameChoice{A: Name{Local: "a"}, B: Name{Local: "b"}}
	if !c.Match("", "a") || !c.Match("", "b") {
		t.Fatalf("expected choice to match either branch")
	}
	if c.Match("", "c") {
		t.Fatalf("expected choice to reject a name in neither branch")
	}
	names, ok := ToNames(c)
	if !ok || len(names) != 2 {
		t.Fatalf("expected ToNames to flatten a simple choice, got %v ok=%v", names, ok)
	}

	withWildcard := NameChoice{A: Name{Local: "a"}, B: AnyName{}}
	if withWildcard.Simple() {
		t.Fatalf("a choice containing AnyName must not be Simple")
	}
	if _, ok := ToNames(withWildcard); ok {
		t.Fatalf("ToNames must fail on a non-simple pattern")
	}
}
