package datatype

import (
	"fmt"
	"strings"

	"github.com/mangalam-research/gosalve/xsdregexp"
)

// qnameValue is the canonical "{ns}local" expanded-name form used for
// comparison, matching the EName shape the rest of the system uses.
type qnameValue struct {
	ns, local string
}

// isQNameLexical checks the XSD QName production (prefix? ':' local, each
// an XML NCName) against the full XML NameStartChar/NameChar ranges rather
// than an ASCII-only approximation, so e.g. a Greek or CJK local name is
// accepted the same way a conformant XML parser would accept it as an
// element or attribute name.
func isQNameLexical(s string) bool {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) == 2 {
		if !isNCName(parts[0]) {
			return false
		}
		s = parts[1]
	}
	return isNCName(s)
}

func isNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		// ':' is part of the XML Name production's NameStartChar/NameChar
		// ranges but never of NCName; the caller has already carved it out
		// as the prefix separator, so a stray one here means "a:b:c".
		if r == ':' {
			return false
		}
		if i == 0 {
			if !xsdregexp.ContainsNameStart(r) {
				return false
			}
			continue
		}
		if !xsdregexp.ContainsNameChar(r) {
			return false
		}
	}
	return true
}

// qnameDatatype implements QName and NOTATION, both of which need a
// NameContext to resolve a lexical prefix against the active resolver.
type qnameDatatype struct {
	baseDatatype
}

func newQNameType(name string) Datatype {
	return &qnameDatatype{baseDatatype{name: name, wsAction: wsCollapse}}
}

func (d *qnameDatatype) NeedsContext() bool { return true }
func (d *qnameDatatype) AllowsParams() bool { return true }

func (d *qnameDatatype) ParseParams(raw []Param) (ParsedParams, *ParameterParsingError) {
	f, errs := parseFacets(raw, stringAllowedFacets)
	if len(errs) > 0 {
		return nil, &ParameterParsingError{Location: d.name, Errors: errs}
	}
	return &stringLikeParams{facets: f}, nil
}

func (d *qnameDatatype) parse(raw string, ctx NameContext) (*qnameValue, *ValueError) {
	norm := applyWhitespace(d.wsAction, raw)
	if !isQNameLexical(norm) {
		return nil, &ValueError{Msg: fmt.Sprintf("%q is not a valid %s", raw, d.name)}
	}
	if ctx == nil {
		return nil, &ValueError{Msg: fmt.Sprintf("cannot resolve the name %s without a namespace context", norm)}
	}
	ns, local, ok := ctx.ResolveName(norm, false)
	if !ok {
		return nil, &ValueError{Msg: fmt.Sprintf("cannot resolve the name %s", norm)}
	}
	return &qnameValue{ns: ns, local: local}, nil
}

func (d *qnameDatatype) ParseValue(raw string, ctx NameContext) (Value, *ValueError) {
	return d.parse(raw, ctx)
}

func (d *qnameDatatype) Equal(docRaw string, schemaValue Value, ctx NameContext) bool {
	v, err := d.parse(docRaw, ctx)
	if err != nil {
		return false
	}
	sv, ok := schemaValue.(*qnameValue)
	return ok && v.ns == sv.ns && v.local == sv.local
}

func (d *qnameDatatype) Disallows(raw string, params ParsedParams, ctx NameContext) []*ValueError {
	norm := applyWhitespace(d.wsAction, raw)
	_, verr := d.parse(raw, ctx)
	if verr != nil {
		return []*ValueError{verr}
	}
	sp, _ := params.(*stringLikeParams)
	if sp != nil && sp.facets != nil {
		return checkPatterns(sp.facets, norm)
	}
	return nil
}
