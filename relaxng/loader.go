package relaxng

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Resource is the content yielded by a ResourceLoader fetch.
type Resource struct {
	URL  string
	Body []byte
}

// ResourceLoader is the abstract capability of component E: fetch a
// document's textual content by URL. Implementations may suspend (the
// default one does network/file I/O); the pipeline calls Load from
// multiple goroutines concurrently when resolving sibling includes, so
// implementations must be safe for concurrent use.
type ResourceLoader interface {
	Load(ctx context.Context, rawURL string) (*Resource, error)
}

// DefaultLoader reads file:// and scheme-less URLs from local storage and
// everything else through an *http.Client.
type DefaultLoader struct {
	HTTPClient *http.Client
}

// NewDefaultLoader returns a loader using http.DefaultClient.
func NewDefaultLoader() *DefaultLoader {
	return &DefaultLoader{HTTPClient: http.DefaultClient}
}

func (l *DefaultLoader) Load(ctx context.Context, rawURL string) (*Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing resource URL %q: %w", rawURL, err)
	}
	if u.Scheme == "file" || u.Scheme == "" {
		if u.Fragment != "" {
			return nil, fmt.Errorf("file:// URL %q must not contain a fragment", rawURL)
		}
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", rawURL, err)
		}
		return &Resource{URL: rawURL, Body: body}, nil
	}

	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %q: HTTP %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body for %q: %w", rawURL, err)
	}
	return &Resource{URL: rawURL, Body: body}, nil
}

// ManifestEntry records one document consulted by the loader, for the
// optional manifest described in spec.md §6.
type ManifestEntry struct {
	FilePath string
	Hash     string
}

// manifestRecorder accumulates ManifestEntry values as the pipeline
// resolves inclusions; it is safe for concurrent use because Step 1 fans
// out sibling loads with errgroup.
type manifestRecorder struct {
	mu      sync.Mutex
	entries []ManifestEntry
	hashAlg func([]byte) string
}

func newManifestRecorder(hashAlg func([]byte) string) *manifestRecorder {
	if hashAlg == nil {
		hashAlg = sha1Hex
	}
	return &manifestRecorder{hashAlg: hashAlg}
}

func (m *manifestRecorder) record(path string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, ManifestEntry{FilePath: path, Hash: m.hashAlg(body)})
}

func sha1Hex(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

// loadMany fetches every URL in urls concurrently via loader, returning
// results in input order or the first error encountered (cancelling the
// rest), using errgroup the way §5 describes: "callers may schedule many
// loads concurrently".
func loadMany(ctx context.Context, loader ResourceLoader, urls []string) ([]*Resource, error) {
	results := make([]*Resource, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			r, err := loader.Load(gctx, u)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveRef joins a possibly-relative href against a base URL, the way
// externalRef/include/@href attributes are always resolved.
func resolveRef(base, href string) (string, error) {
	if base == "" {
		return href, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	h, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(h).String(), nil
}

// stripFragment removes a URL fragment; Step 1 applies it to each resolved
// include/externalRef href before that document is loaded. xml:base is not
// used when resolving hrefs; Step 3 drops it with the other foreign
// attributes.
func stripFragment(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}
