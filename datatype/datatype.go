// Package datatype implements the RELAX NG built-in datatype library
// ("") and the XML Schema datatype library
// ("http://www.w3.org/2001/XMLSchema-datatypes"), exposed by URI through a
// process-wide Registry.
//
// Every Datatype is a record of function-pointer-like fields plus a name
// rather than a class hierarchy; concrete types embed baseDatatype and
// override only what differs ("explicit composition over inheritance").
package datatype

import (
	"fmt"

	"github.com/mangalam-research/gosalve/xsdregexp"
)

// NameContext gives a Datatype access to namespace resolution, needed only
// by QName/NOTATION. Implemented by relaxng.Resolver; kept as a narrow
// interface here so this package never imports relaxng (which imports this
// package for Data/Value pattern leaves).
type NameContext interface {
	ResolveName(qname string, isAttribute bool) (ns, local string, ok bool)
}

// ParamError is a single-facet issue raised while parsing a schema `param`
// element (e.g. "maxLength" with a non-numeric value).
type ParamError struct {
	Facet string
	Msg   string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Facet, e.Msg)
}

// ParameterParsingError aggregates every ParamError found at one `param`
// site (a single data/list element may carry several params).
type ParameterParsingError struct {
	Location string
	Errors   []*ParamError
}

func (e *ParameterParsingError) Error() string {
	return fmt.Sprintf("invalid parameters at %s: %d error(s)", e.Location, len(e.Errors))
}

func (e *ParameterParsingError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		out[i] = pe
	}
	return out
}

// ValueError is a single issue found while checking one document value
// against a datatype (e.g. "value must be less than or equal to 10").
type ValueError struct {
	Facet string
	Msg   string
}

func (e *ValueError) Error() string { return e.Msg }

// ValueValidationError aggregates every ValueError found for one value.
type ValueValidationError struct {
	Location string
	Errors   []*ValueError
}

func (e *ValueValidationError) Error() string {
	return fmt.Sprintf("invalid value at %s: %d error(s)", e.Location, len(e.Errors))
}

// Param is one raw (name, value) pair taken from a schema <param> element,
// in source order (order matters for "all patterns must match" on repeated
// "pattern" facets only in that multiple patterns are ANDed, not ordered).
type Param struct {
	Name  string
	Value string
}

// Datatype is the public contract every registered type satisfies.
type Datatype interface {
	// Name is the local type name ("integer", "token", ...).
	Name() string

	// NeedsContext reports whether ParseValue/Equal/Disallows require a
	// non-nil NameContext (true only for QName and NOTATION).
	NeedsContext() bool

	// AllowsParams reports whether this type accepts facet parameters at
	// all (RELAX NG built-in "string"/"token" never do).
	AllowsParams() bool

	// ParseParams validates and compiles a raw parameter list. The empty
	// list must always succeed for types with AllowsParams() == false.
	ParseParams(raw []Param) (ParsedParams, *ParameterParsingError)

	// ParseValue parses a raw lexical value into the type's internal
	// representation, applying whitespace normalization first.
	ParseValue(raw string, ctx NameContext) (Value, *ValueError)

	// Equal reports whether the raw document value, once parsed, equals a
	// parsed schema value taken from a <value> pattern.
	Equal(docRaw string, schemaValue Value, ctx NameContext) bool

	// Disallows checks raw against the parsed facets, returning every
	// violation or nil if raw is acceptable.
	Disallows(raw string, params ParsedParams, ctx NameContext) []*ValueError
}

// ParsedParams is the result of Datatype.ParseParams; its dynamic type is
// private to each datatype implementation.
type ParsedParams interface{}

// Value is a parsed datatype value; its dynamic type is private to each
// datatype implementation. Two Values support comparison only through
// Datatype.Equal, never ==, because e.g. float NaN must equal NaN.
type Value interface{}

// baseDatatype supplies defaults shared by most datatypes: no params, no
// context, and a ParseValue that just whitespace-normalizes and stores the
// string. Concrete types embed this and override what they need.
type baseDatatype struct {
	name      string
	wsAction  whitespaceAction
}

func (b *baseDatatype) Name() string        { return b.name }
func (b *baseDatatype) NeedsContext() bool   { return false }
func (b *baseDatatype) AllowsParams() bool   { return false }

func (b *baseDatatype) ParseParams(raw []Param) (ParsedParams, *ParameterParsingError) {
	if len(raw) == 0 {
		return nil, nil
	}
	errs := make([]*ParamError, 0, len(raw))
	for _, p := range raw {
		errs = append(errs, &ParamError{Facet: p.Name, Msg: fmt.Sprintf("%s does not accept parameters", b.name)})
	}
	return nil, &ParameterParsingError{Location: b.name, Errors: errs}
}

func (b *baseDatatype) normalize(raw string) string {
	return applyWhitespace(b.wsAction, raw)
}

func (b *baseDatatype) ParseValue(raw string, _ NameContext) (Value, *ValueError) {
	return b.normalize(raw), nil
}

func (b *baseDatatype) Equal(docRaw string, schemaValue Value, _ NameContext) bool {
	sv, _ := schemaValue.(string)
	return b.normalize(docRaw) == sv
}

func (b *baseDatatype) Disallows(raw string, _ ParsedParams, _ NameContext) []*ValueError {
	return nil
}

// translateRegexp is the single choke point every facet-pattern check goes
// through, so the whole package relies on xsdregexp rather than hand
// re-implementing XSD regex semantics.
func translateRegexp(src string) (*xsdregexp.Translated, error) {
	return xsdregexp.Translate(src)
}
