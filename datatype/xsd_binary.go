package datatype

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

type binaryValue struct {
	decoded []byte
}

var hexBinaryLexical = regexp.MustCompile(`^([0-9A-Fa-f]{2})*$`)

// base64BinaryLexical is matched against the whitespace-collapsed value
// with its remaining internal spaces removed, so base64Binary is
// permissive about internal whitespace.
var base64BinaryLexical = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

type binaryDatatype struct {
	baseDatatype
	isHex bool
}

func newHexBinaryType(name string) Datatype {
	return &binaryDatatype{baseDatatype: baseDatatype{name: name, wsAction: wsCollapse}, isHex: true}
}

func newBase64BinaryType(name string) Datatype {
	return &binaryDatatype{baseDatatype: baseDatatype{name: name, wsAction: wsCollapse}}
}

var binaryAllowedFacets = map[string]bool{
	facetLength: true, facetMinLength: true, facetMaxLength: true, facetPattern: true,
}

func (d *binaryDatatype) AllowsParams() bool { return true }

func (d *binaryDatatype) ParseParams(raw []Param) (ParsedParams, *ParameterParsingError) {
	f, errs := parseFacets(raw, binaryAllowedFacets)
	if len(errs) > 0 {
		return nil, &ParameterParsingError{Location: d.name, Errors: errs}
	}
	return &stringLikeParams{facets: f}, nil
}

// valueLength returns the byte count per spec.md: base64 uses
// floor(nonpad_len*3/4), hex uses len/2.
func (d *binaryDatatype) valueLength(norm string) int {
	if d.isHex {
		return len(norm) / 2
	}
	nonPad := len(strings.TrimRight(strings.ReplaceAll(norm, " ", ""), "="))
	return (nonPad * 3) / 4
}

func (d *binaryDatatype) parse(raw string) (*binaryValue, *ValueError) {
	norm := applyWhitespace(d.wsAction, raw)
	if d.isHex {
		if !hexBinaryLexical.MatchString(norm) {
			return nil, &ValueError{Msg: fmt.Sprintf("%q is not valid hexBinary", raw)}
		}
		b, err := hex.DecodeString(norm)
		if err != nil {
			return nil, &ValueError{Msg: fmt.Sprintf("%q is not valid hexBinary", raw)}
		}
		return &binaryValue{decoded: b}, nil
	}
	compact := strings.ReplaceAll(norm, " ", "")
	if !base64BinaryLexical.MatchString(compact) {
		return nil, &ValueError{Msg: fmt.Sprintf("%q is not valid base64Binary", raw)}
	}
	b, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, &ValueError{Msg: fmt.Sprintf("%q is not valid base64Binary", raw)}
	}
	return &binaryValue{decoded: b}, nil
}

func (d *binaryDatatype) ParseValue(raw string, _ NameContext) (Value, *ValueError) { return d.parse(raw) }

func (d *binaryDatatype) Equal(docRaw string, schemaValue Value, _ NameContext) bool {
	v, err := d.parse(docRaw)
	if err != nil {
		return false
	}
	sv, ok := schemaValue.(*binaryValue)
	return ok && string(v.decoded) == string(sv.decoded)
}

func (d *binaryDatatype) Disallows(raw string, params ParsedParams, _ NameContext) []*ValueError {
	norm := applyWhitespace(d.wsAction, raw)
	_, verr := d.parse(raw)
	if verr != nil {
		return []*ValueError{verr}
	}
	var errs []*ValueError
	sp, _ := params.(*stringLikeParams)
	if sp != nil && sp.facets != nil {
		errs = append(errs, checkLength(sp.facets, d.valueLength(norm))...)
		errs = append(errs, checkPatterns(sp.facets, norm)...)
	}
	return errs
}
