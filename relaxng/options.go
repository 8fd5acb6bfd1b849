package relaxng

// IncompleteTypePolicy controls what happens when a schema references a
// datatype this library does not implement (spec.md §6:
// --allow-incomplete-types).
type IncompleteTypePolicy int

const (
	PolicyError IncompleteTypePolicy = iota
	PolicyWarn
	PolicyQuiet
)

// Options realizes the configuration table of spec.md §6, built with
// functional options the way the teacher's xml.Option/config pair works
// in xml.go.
type Options struct {
	CreateManifest        bool
	ManifestHashAlgorithm  func([]byte) string
	ResourceLoader         ResourceLoader
	WarnOnIncompleteTypes  bool
	IncompleteTypePolicy   IncompleteTypePolicy

	SimplifiedInput  bool // skip simplification; input is already normal form
	NoOptimizeIDs    bool // skip id renumbering (Step 15) for debugging
	IncludePaths     bool // recorded only; nothing reads it and the output carries no source paths

	// Logger receives structured progress messages during compilation.
	// NewOptions installs a no-op logger; Convert, Simplify and Construct
	// call it without a nil check, so it must not be nil. Only cmd/gosalve
	// wires a real logger here.
	Logger Logger

	// manifest accumulates ManifestEntry records across the root document
	// fetch (recorded by the caller, e.g. Convert) and every nested
	// include/externalRef fetch (recorded by step1ResolveInclusions), so a
	// single recorder instance backs the whole manifest regardless of which
	// stage touches the loader first.
	manifest *manifestRecorder
}

// Logger is the narrow structured-logging interface the pipeline and
// loader call into; satisfied by an adapter over charm.land/log/v2 in
// cmd/gosalve, and by a no-op in tests.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}

// Option configures an Options value.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		ResourceLoader: NewDefaultLoader(),
		Logger:         noopLogger{},
	}
}

// WithManifest enables manifest emission using the given hash algorithm
// (sha1Hex is used if alg is nil).
func WithManifest(alg func([]byte) string) Option {
	return func(o *Options) {
		o.CreateManifest = true
		o.ManifestHashAlgorithm = alg
	}
}

// WithResourceLoader overrides the default loader.
func WithResourceLoader(l ResourceLoader) Option {
	return func(o *Options) { o.ResourceLoader = l }
}

// WithIncompleteTypePolicy sets the policy applied when a schema uses a
// datatype this library does not implement.
func WithIncompleteTypePolicy(p IncompleteTypePolicy) Option {
	return func(o *Options) {
		o.IncompleteTypePolicy = p
		o.WarnOnIncompleteTypes = p == PolicyWarn
	}
}

// WithSimplifiedInput skips the simplification pipeline.
func WithSimplifiedInput() Option {
	return func(o *Options) { o.SimplifiedInput = true }
}

// WithNoOptimizeIDs skips Step 15's id renumbering, for debugging.
func WithNoOptimizeIDs() Option {
	return func(o *Options) { o.NoOptimizeIDs = true }
}

// WithIncludePaths sets Options.IncludePaths. Nothing in this package reads
// that field, so the compiled output carries no source paths.
func WithIncludePaths() Option {
	return func(o *Options) { o.IncludePaths = true }
}

// WithLogger installs a structured logger.
func WithLogger(l Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// NewOptions builds an Options from functional options.
func NewOptions(opts ...Option) *Options {
	o := defaultOptions()
	for _, apply := range opts {
		apply(o)
	}
	return o
}
