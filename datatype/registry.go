package datatype

import "sync"

// Built-in library and XML Schema library URIs, as used in a schema's
// `datatypeLibrary` attribute.
const (
	BuiltinURI  = ""
	XSDLibURI   = "http://www.w3.org/2001/XMLSchema-datatypes"
)

// Registry maps a datatype library URI to its name -> Datatype map. It is
// process-wide state, initialized once by the defaultRegistry package
// variable's initializer and never mutated
// afterwards during normal operation; Register exists only for an explicit
// pre-compilation lifecycle step (§9 "Global state").
type Registry struct {
	mu        sync.RWMutex
	libraries map[string]map[string]Datatype
	sealed    bool
}

var defaultRegistry = newRegistry()

func newRegistry() *Registry {
	r := &Registry{libraries: make(map[string]map[string]Datatype)}
	r.registerBuiltin()
	r.registerXSD()
	r.sealed = true
	return r
}

// Default returns the process-wide registry pre-populated with the
// built-in and XML Schema libraries.
func Default() *Registry { return defaultRegistry }

// Register adds (or replaces) a datatype under a library URI. Calling this
// after the registry has been consulted by a running compilation is a
// programming error; callers needing dynamic registration must do so
// before any schema compilation begins, per the documented lifecycle.
func (r *Registry) Register(libraryURI string, dt Datatype) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lib, ok := r.libraries[libraryURI]
	if !ok {
		lib = make(map[string]Datatype)
		r.libraries[libraryURI] = lib
	}
	lib[dt.Name()] = dt
}

// Lookup finds a datatype by library URI and local name.
func (r *Registry) Lookup(libraryURI, name string) (Datatype, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lib, ok := r.libraries[libraryURI]
	if !ok {
		return nil, false
	}
	dt, ok := lib[name]
	return dt, ok
}

// HasLibrary reports whether any datatype is registered under the URI.
func (r *Registry) HasLibrary(libraryURI string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.libraries[libraryURI]
	return ok
}

func (r *Registry) registerBuiltin() {
	r.Register(BuiltinURI, newStringType("string"))
	r.Register(BuiltinURI, newTokenType("token"))
}
