package relaxng

import (
	"fmt"
	"strings"
)

const (
	xmlNS   = "http://www.w3.org/XML/1998/namespace"
	xmlnsNS = "http://www.w3.org/2000/xmlns/"
)

// ResolverError reports a client-use error on the resolver (§7: "resolver
// operations on an unknown prefix in strict mode").
type ResolverError struct {
	Msg string
}

func (e *ResolverError) Error() string { return e.Msg }

// Resolver is the lexically-scoped prefix -> namespace URI mapping of
// component D. It also implements datatype.NameContext so the datatype
// library can resolve QName/NOTATION values through it; datatype does not
// import this package, so there is no import cycle (datatype is a leaf,
// relaxng depends on it).
type Resolver struct {
	scopes []map[string]string // index 0 is the root scope
}

// NewResolver creates a resolver with a single root scope pre-seeded with
// the two fixed bindings every RELAX NG/XML processor carries: xml and
// xmlns.
func NewResolver() *Resolver {
	return &Resolver{scopes: []map[string]string{{
		"xml":   xmlNS,
		"xmlns": xmlnsNS,
	}}}
}

// EnterContext pushes a new lexical scope.
func (r *Resolver) EnterContext() {
	r.scopes = append(r.scopes, map[string]string{})
}

// LeaveContext pops the innermost scope; leaving the root context is an
// error per the data model.
func (r *Resolver) LeaveContext() error {
	if len(r.scopes) <= 1 {
		return &ResolverError{Msg: "cannot leave the root context"}
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
	return nil
}

// DefinePrefix adds a binding to the current (innermost) scope. "xmlns" as
// a prefix is always rejected; "xml" is accepted only bound to the fixed
// XML namespace URI.
func (r *Resolver) DefinePrefix(prefix, uri string) error {
	if prefix == "xmlns" {
		return &ResolverError{Msg: `"xmlns" cannot be used as a prefix`}
	}
	if prefix == "xml" && uri != xmlNS {
		return &ResolverError{Msg: `"xml" prefix must be bound to ` + xmlNS}
	}
	r.scopes[len(r.scopes)-1][prefix] = uri
	return nil
}

func (r *Resolver) lookup(prefix string) (string, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if uri, ok := r.scopes[i][prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// ResolveName resolves "prefix:local" or "local" to an expanded name.
// Unprefixed element names resolve against the default namespace (bound to
// prefix ""); unprefixed attribute names resolve to the empty namespace,
// per RELAX NG/XML Namespaces rules.
func (r *Resolver) ResolveName(qname string, isAttribute bool) (ns, local string, ok bool) {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		prefix, loc := qname[:i], qname[i+1:]
		uri, found := r.lookup(prefix)
		if !found {
			return "", "", false
		}
		return uri, loc, true
	}
	if isAttribute {
		return "", qname, true
	}
	uri, _ := r.lookup("") // unbound default namespace means ""
	return uri, qname, true
}

// UnresolveName finds a qname string for (ns, local), preferring the
// default prefix ("") when multiple prefixes bind the same URI.
func (r *Resolver) UnresolveName(ns, local string) (string, bool) {
	prefix, ok := r.PrefixFromURI(ns)
	if !ok {
		return "", false
	}
	if prefix == "" {
		return local, true
	}
	return prefix + ":" + local, true
}

// PrefixFromURI finds a prefix bound to uri, preferring "" (the default
// namespace) when it also binds uri.
func (r *Resolver) PrefixFromURI(uri string) (string, bool) {
	if def, ok := r.lookup(""); ok && def == uri {
		return "", true
	}
	for i := len(r.scopes) - 1; i >= 0; i-- {
		for p, u := range r.scopes[i] {
			if u == uri && p != "" {
				return p, true
			}
		}
	}
	if uri == "" {
		return "", true
	}
	return "", false
}

// Clone deep-copies the resolver; mutations on the clone never affect the
// original (and vice versa) since each scope map is copied.
func (r *Resolver) Clone() *Resolver {
	c := &Resolver{scopes: make([]map[string]string, len(r.scopes))}
	for i, s := range r.scopes {
		m := make(map[string]string, len(s))
		for k, v := range s {
			m[k] = v
		}
		c.scopes[i] = m
	}
	return c
}

// Format pretty-prints an expanded name using whatever prefix this
// resolver has bound for its namespace, falling back to Clark notation.
func (r *Resolver) Format(ns, local string) string {
	if q, ok := r.UnresolveName(ns, local); ok {
		return q
	}
	if ns == "" {
		return local
	}
	return fmt.Sprintf("{%s}%s", ns, local)
}
