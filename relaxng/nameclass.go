package relaxng

// NamePattern is the sum type of component C: a predicate over qualified
// element/attribute names. Concrete variants are Name, NsName, AnyName,
// and NameChoice; all satisfy this interface.
type NamePattern interface {
	// Match reports whether (ns, local) satisfies the pattern.
	Match(ns, local string) bool

	// WildcardMatch reports whether the pattern matches as a wildcard —
	// i.e. via NsName or AnyName, honouring except — as opposed to an
	// exact Name/NameChoice-of-Names match.
	WildcardMatch(ns, local string) bool

	// Simple reports whether the pattern is equivalent to a finite set of
	// Names (no NsName/AnyName anywhere in it).
	Simple() bool

	// Namespaces returns the set of namespace URIs the pattern ranges
	// over, with "*" standing for "any namespace" and "::except" added
	// when any wildcard carries an exclusion.
	Namespaces() map[string]bool
}

// Name is an exact (namespace, local) match.
type Name struct {
	NS, Local string
}

func (n Name) Match(ns, local string) bool         { return n.NS == ns && n.Local == local }
func (n Name) WildcardMatch(ns, local string) bool { return false }
func (n Name) Simple() bool                        { return true }
func (n Name) Namespaces() map[string]bool         { return map[string]bool{n.NS: true} }

// NsName matches any local name in NS, optionally excluding a sub-pattern.
type NsName struct {
	NS     string
	Except NamePattern // nil if unconstrained
}

func (n NsName) Match(ns, local string) bool {
	if ns != n.NS {
		return false
	}
	if n.Except != nil && n.Except.Match(ns, local) {
		return false
	}
	return true
}
func (n NsName) WildcardMatch(ns, local string) bool { return n.Match(ns, local) }
func (n NsName) Simple() bool                        { return false }
func (n NsName) Namespaces() map[string]bool {
	out := map[string]bool{n.NS: true}
	if n.Except != nil {
		out["::except"] = true
	}
	return out
}

// AnyName matches any (ns, local), optionally excluding a sub-pattern.
type AnyName struct {
	Except NamePattern // nil if unconstrained
}

func (a AnyName) Match(ns, local string) bool {
	if a.Except != nil && a.Except.Match(ns, local) {
		return false
	}
	return true
}
func (a AnyName) WildcardMatch(ns, local string) bool { return a.Match(ns, local) }
func (a AnyName) Simple() bool                        { return false }
func (a AnyName) Namespaces() map[string]bool {
	out := map[string]bool{"*": true}
	if a.Except != nil {
		out["::except"] = true
	}
	return out
}

// NameChoice is the union of two name patterns.
type NameChoice struct {
	A, B NamePattern
}

func (c NameChoice) Match(ns, local string) bool {
	return c.A.Match(ns, local) || c.B.Match(ns, local)
}
func (c NameChoice) WildcardMatch(ns, local string) bool {
	return c.A.WildcardMatch(ns, local) || c.B.WildcardMatch(ns, local)
}
func (c NameChoice) Simple() bool { return c.A.Simple() && c.B.Simple() }
func (c NameChoice) Namespaces() map[string]bool {
	out := map[string]bool{}
	for k := range c.A.Namespaces() {
		out[k] = true
	}
	for k := range c.B.Namespaces() {
		out[k] = true
	}
	return out
}

// ToNames flattens a simple NamePattern into its finite set of Names; ok is
// false if the pattern is not Simple().
func ToNames(p NamePattern) (names []Name, ok bool) {
	if !p.Simple() {
		return nil, false
	}
	switch v := p.(type) {
	case Name:
		return []Name{v}, true
	case NameChoice:
		an, aok := ToNames(v.A)
		bn, bok := ToNames(v.B)
		if !aok || !bok {
			return nil, false
		}
		return append(append([]Name{}, an...), bn...), true
	}
	return nil, false
}
