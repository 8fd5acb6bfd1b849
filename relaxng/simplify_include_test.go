package relaxng

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stallingLoader sleeps before returning, so overlapping Load calls reveal
// themselves as a maxActive above 1; it also serves fixed grammar bodies
// keyed by URL.
type stallingLoader struct {
	bodies map[string][]byte

	mu        sync.Mutex
	active    int
	maxActive int
}

func (l *stallingLoader) Load(_ context.Context, rawURL string) (*Resource, error) {
	l.mu.Lock()
	l.active++
	if l.active > l.maxActive {
		l.maxActive = l.active
	}
	l.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	body, ok := l.bodies[rawURL]
	if !ok {
		return nil, &SchemaValidationError{Msg: "no fixture for " + rawURL}
	}
	return &Resource{URL: rawURL, Body: body}, nil
}

func (l *stallingLoader) observedMaxActive() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxActive
}

const emptyGrammarDoc = `<grammar xmlns="http://relaxng.org/ns/structure/1.0">
<start><empty/></start>
</grammar>`

func buildTwoExternalRefGrammar() *Element {
	root := NewElement(RNGNamespace, elGrammar)
	start := NewElement(RNGNamespace, elStart)

	choice := NewElement(RNGNamespace, elChoice)
	for _, href := range []string{"a.rng", "b.rng"} {
		ref := NewElement(RNGNamespace, elExternalRef)
		ref.SetAttr(attrHref, href)
		ref.Location = "file:///schemas/root.rng"
		choice.AppendChild(ref)
	}
	start.AppendChild(choice)
	root.AppendChild(start)
	return root
}

func TestResolveInclusionsFetchesSiblingsConcurrently(t *testing.T) {
	loader := &stallingLoader{bodies: map[string][]byte{
		"file:///schemas/a.rng": []byte(emptyGrammarDoc),
		"file:///schemas/b.rng": []byte(emptyGrammarDoc),
	}}
	root := buildTwoExternalRefGrammar()

	opts := &Options{ResourceLoader: loader}
	_, err := step1ResolveInclusions(context.Background(), root, opts)
	require.NoError(t, err)

	if got := loader.observedMaxActive(); got < 2 {
		t.Fatalf("expected sibling externalRef hrefs to be fetched concurrently, observed max %d simultaneous loads", got)
	}
}

func TestResolveInclusionsSplicesExternalRefContent(t *testing.T) {
	loader := &stallingLoader{bodies: map[string][]byte{
		"file:///schemas/a.rng": []byte(emptyGrammarDoc),
		"file:///schemas/b.rng": []byte(emptyGrammarDoc),
	}}
	root := buildTwoExternalRefGrammar()

	opts := &Options{ResourceLoader: loader}
	resolved, err := step1ResolveInclusions(context.Background(), root, opts)
	require.NoError(t, err)

	var found int
	resolved.Walk(func(e *Element) {
		if e.Name.Local == elExternalRef {
			t.Fatalf("externalRef should have been spliced away")
		}
		if e.Name.Local == elEmpty {
			found++
		}
	})
	require.Equal(t, 2, found)
}

func TestResolveInclusionsRejectsCircularExternalRef(t *testing.T) {
	loader := &stallingLoader{bodies: map[string][]byte{
		"file:///schemas/a.rng": []byte(`<grammar xmlns="http://relaxng.org/ns/structure/1.0">
<start><externalRef href="root.rng"/></start>
</grammar>`),
		"file:///schemas/root.rng": []byte(`<grammar xmlns="http://relaxng.org/ns/structure/1.0">
<start><externalRef href="a.rng"/></start>
</grammar>`),
	}}
	root := NewElement(RNGNamespace, elGrammar)
	start := NewElement(RNGNamespace, elStart)
	ref := NewElement(RNGNamespace, elExternalRef)
	ref.SetAttr(attrHref, "a.rng")
	ref.Location = "file:///schemas/root.rng"
	start.AppendChild(ref)
	root.AppendChild(start)

	opts := &Options{ResourceLoader: loader}
	_, err := step1ResolveInclusions(context.Background(), root, opts)
	if err == nil {
		t.Fatalf("expected a self-including document to be rejected")
	}
}

func TestLoadManyOrderMatchesInputEvenWhenConcurrent(t *testing.T) {
	loader := &stallingLoader{bodies: map[string][]byte{
		"u1": []byte("one"), "u2": []byte("two"), "u3": []byte("three"),
	}}
	urls := []string{"u1", "u2", "u3"}
	results, err := loadMany(context.Background(), loader, urls)
	require.NoError(t, err)
	for i, u := range urls {
		require.Equal(t, u, results[i].URL)
	}
}
