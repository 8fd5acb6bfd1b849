package datatype

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// stringLikeParams is the ParsedParams dynamic type for every string-family
// XSD datatype (string, normalizedString, token, language, Name, NCName,
// NMTOKEN(S), ID, IDREF(S), ENTITY/ENTITIES).
type stringLikeParams struct {
	facets *Facets
}

var stringAllowedFacets = map[string]bool{
	facetLength: true, facetMinLength: true, facetMaxLength: true, facetPattern: true,
}

// stringLikeDatatype validates a lexical regexp (nil means "anything") in
// addition to the generic length/pattern facets.
type stringLikeDatatype struct {
	baseDatatype
	lexical *regexp.Regexp // nil = unconstrained lexical space
	// isList, when true, means the lexical space is a whitespace-separated
	// list of tokens each matching `lexical` (NMTOKENS, IDREFS, ENTITIES).
	isList bool
}

func newXSDString(name string, ws whitespaceAction, lexical *regexp.Regexp, isList bool) Datatype {
	return &stringLikeDatatype{baseDatatype: baseDatatype{name: name, wsAction: ws}, lexical: lexical, isList: isList}
}

func (d *stringLikeDatatype) AllowsParams() bool { return true }

func (d *stringLikeDatatype) ParseParams(raw []Param) (ParsedParams, *ParameterParsingError) {
	f, errs := parseFacets(raw, stringAllowedFacets)
	if len(errs) > 0 {
		return nil, &ParameterParsingError{Location: d.name, Errors: errs}
	}
	return &stringLikeParams{facets: f}, nil
}

func (d *stringLikeDatatype) checkLexical(norm string) *ValueError {
	if d.lexical == nil {
		return nil
	}
	if !d.isList {
		if !d.lexical.MatchString(norm) {
			return &ValueError{Msg: fmt.Sprintf("%q is not a valid %s", norm, d.name)}
		}
		return nil
	}
	for _, tok := range splitTokens(norm) {
		if !d.lexical.MatchString(tok) {
			return &ValueError{Msg: fmt.Sprintf("%q is not a valid %s", tok, d.name)}
		}
	}
	return nil
}

func (d *stringLikeDatatype) ParseValue(raw string, _ NameContext) (Value, *ValueError) {
	norm := applyWhitespace(d.wsAction, raw)
	if err := d.checkLexical(norm); err != nil {
		return nil, err
	}
	return norm, nil
}

func (d *stringLikeDatatype) Equal(docRaw string, schemaValue Value, _ NameContext) bool {
	sv, ok := schemaValue.(string)
	return ok && applyWhitespace(d.wsAction, docRaw) == sv
}

func (d *stringLikeDatatype) Disallows(raw string, params ParsedParams, _ NameContext) []*ValueError {
	norm := applyWhitespace(d.wsAction, raw)
	var errs []*ValueError
	if err := d.checkLexical(norm); err != nil {
		errs = append(errs, err)
	}
	sp, _ := params.(*stringLikeParams)
	if sp != nil && sp.facets != nil {
		errs = append(errs, checkLength(sp.facets, utf8.RuneCountInString(norm))...)
		errs = append(errs, checkPatterns(sp.facets, norm)...)
	}
	return errs
}

func splitTokens(s string) []string {
	var toks []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				toks = append(toks, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, s[start:])
	}
	return toks
}

var (
	ncNameLexical   = regexp.MustCompile(`^[A-Za-z_][\w.-]*$`)
	nameLexical     = regexp.MustCompile(`^[A-Za-z_:][\w.:-]*$`)
	nmtokenLexical  = regexp.MustCompile(`^[\w.:-]+$`)
	languageLexical = regexp.MustCompile(`^[A-Za-z]{1,8}(-[A-Za-z0-9]{1,8})*$`)
)
