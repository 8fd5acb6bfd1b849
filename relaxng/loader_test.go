package relaxng

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultLoaderReadsFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.rng")
	if err := os.WriteFile(path, []byte("<root/>"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loader := NewDefaultLoader()
	res, err := loader.Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	require.Equal(t, "<root/>", string(res.Body))
}

func TestDefaultLoaderRejectsFileURLWithFragment(t *testing.T) {
	loader := NewDefaultLoader()
	_, err := loader.Load(context.Background(), "file:///tmp/x.rng#frag")
	if err == nil {
		t.Fatalf("expected a file:// URL with a fragment to be rejected")
	}
}

func TestResolveRefRelativeToBase(t *testing.T) {
	got, err := resolveRef("http://example.com/schemas/root.rng", "shared/common.rng")
	require.NoError(t, err)
	require.Equal(t, "http://example.com/schemas/shared/common.rng", got)
}

func TestStripFragment(t *testing.T) {
	if got := stripFragment("http://x/y.rng#chunk"); got != "http://x/y.rng" {
		t.Fatalf("stripFragment = %q", got)
	}
	if got := stripFragment("http://x/y.rng"); got != "http://x/y.rng" {
		t.Fatalf("stripFragment should be a no-op without a fragment, got %q", got)
	}
}

func TestLoadManyFailsFast(t *testing.T) {
	loader := &failingLoader{failOn: "bad"}
	_, err := loadMany(context.Background(), loader, []string{"good1", "bad", "good2"})
	if err == nil {
		t.Fatalf("expected loadMany to surface the failing URL's error")
	}
}

func TestLoadManyPreservesOrder(t *testing.T) {
	loader := &failingLoader{}
	urls := []string{"a", "b", "c"}
	results, err := loadMany(context.Background(), loader, urls)
	require.NoError(t, err)
	require.Len(t, results, len(urls))
	for i, u := range urls {
		require.Equal(t, u, results[i].URL)
	}
}

func TestManifestRecorderAccumulates(t *testing.T) {
	rec := newManifestRecorder(nil)
	rec.record("a.rng", []byte("one"))
	rec.record("b.rng", []byte("two"))
	require.Len(t, rec.entries, 2)
	require.NotEmpty(t, rec.entries[0].Hash)
}

type failingLoader struct {
	failOn string
}

func (f *failingLoader) Load(_ context.Context, rawURL string) (*Resource, error) {
	if rawURL == f.failOn {
		return nil, errFailingLoader
	}
	return &Resource{URL: rawURL, Body: []byte(rawURL)}, nil
}

var errFailingLoader = &SchemaValidationError{Msg: "simulated load failure"}
