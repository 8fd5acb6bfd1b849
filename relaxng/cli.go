package relaxng

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// CompiledSchema is the logical, on-disk rendering of a constructed
// Pattern emitted by the convert command: a plain JSON record holding the
// schema URL, the start node's arena index, the define-name -> arena-index
// table, the arena's node count, and the manifest when one was requested.
// The arena nodes themselves (pattern structure, datatype library URIs,
// parsed parameters, name patterns) are not written.
type CompiledSchema struct {
	SchemaURL string          `json:"schema_url"`
	Start     int             `json:"start"`
	Defines   map[string]int  `json:"defines"`
	NodeCount int             `json:"node_count"`
	Manifest  []ManifestEntry `json:"manifest,omitempty"`
}

// Convert is the body of the `convert <schema-url> <out-path>` CLI
// subcommand (§6): load, simplify (unless the input already claims to be
// normal form), construct a Pattern, and write its logical record to
// outPath. Command bodies live here rather than in cmd/gosalve, the same
// split the teacher uses between xml/cli.go and the thin main.go router.
func Convert(ctx context.Context, schemaURL, outPath string, opts *Options) error {
	if opts == nil {
		opts = defaultOptions()
	}
	log := opts.Logger

	log.Infof("loading %s", schemaURL)
	res, err := opts.ResourceLoader.Load(ctx, schemaURL)
	if err != nil {
		return fmt.Errorf("loading %s: %w", schemaURL, err)
	}

	if opts.CreateManifest {
		if opts.manifest == nil {
			opts.manifest = newManifestRecorder(opts.ManifestHashAlgorithm)
		}
		opts.manifest.record(schemaURL, res.Body)
	}

	root, err := ParseSchema(res.Body, schemaURL)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", schemaURL, err)
	}

	if opts.SimplifiedInput {
		computeInheritedContext(root)
	} else {
		log.Infof("simplifying schema")
		root, err = Simplify(ctx, root, opts)
		if err != nil {
			return fmt.Errorf("simplifying %s: %w", schemaURL, err)
		}
	}

	resolver := NewResolver()
	pattern, err := Construct(root, resolver, opts)
	if err != nil {
		return fmt.Errorf("constructing pattern graph: %w", err)
	}
	log.Infof("constructed pattern graph: %d define(s), %d arena node(s)", len(pattern.defines), len(pattern.arena))

	compiled := CompiledSchema{
		SchemaURL: schemaURL,
		Start:     pattern.start,
		Defines:   pattern.defines,
		NodeCount: len(pattern.arena),
	}
	if opts.manifest != nil {
		compiled.Manifest = opts.manifest.entries
		log.Infof("manifest: %d document(s) consulted", len(opts.manifest.entries))
	}

	out, err := json.MarshalIndent(compiled, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding compiled schema: %w", err)
	}
	out = append(out, '\n')
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	log.Infof("wrote compiled schema to %s", outPath)
	return nil
}
