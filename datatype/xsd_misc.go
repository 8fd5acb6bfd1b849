package datatype

import "regexp"

// anyURILexical is deliberately permissive (XSD anyURI accepts the whole
// RFC 3986 grammar plus relative references); it rejects only values
// containing whitespace, which whitespace-collapsing wouldn't remove from
// the middle of a URI.
var anyURILexical = regexp.MustCompile(`^\S*$`)

func newAnyURIType(name string) Datatype {
	return newXSDString(name, wsCollapse, anyURILexical, false)
}
