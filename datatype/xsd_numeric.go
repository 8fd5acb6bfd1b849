package datatype

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// numericValue is the parsed form shared by every numeric XSD datatype.
// rat carries the exact value for the decimal/integer family (nil for
// float/double, where f — IEEE 754 float64 — is already the textually
// correct representation and rat would be meaningless for INF/NaN).
type numericValue struct {
	f     float64
	isNaN bool
	rat   *big.Rat
}

// numericParams is the ParsedParams dynamic type for numeric datatypes.
type numericParams struct {
	facets *Facets
}

// intRange fixes the implicit bounds of an XSD integer subtype, e.g. "int"
// is bound to [-2147483648, 2147483647]. nil means unbounded (decimal,
// integer). Bounds are big.Rat, not float64: unsignedLong's upper bound
// 18446744073709551615 has 20 significant digits, well past float64's
// ~15-17 digits of exactness, so a float64 bound would silently admit or
// reject values near the edge of the range (spec.md §4.B requires exact
// decimal/integer comparison).
type intRange struct {
	min, max *big.Rat
}

func ratOf(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic(fmt.Sprintf("datatype: invalid integer bound literal %q", s))
	}
	return r
}

var integerSubtypeRanges = map[string]intRange{
	"integer":            {},
	"nonPositiveInteger": {max: ratOf("0")},
	"negativeInteger":    {max: ratOf("-1")},
	"nonNegativeInteger": {min: ratOf("0")},
	"positiveInteger":    {min: ratOf("1")},
	"long":               {min: ratOf("-9223372036854775808"), max: ratOf("9223372036854775807")},
	"int":                {min: ratOf("-2147483648"), max: ratOf("2147483647")},
	"short":              {min: ratOf("-32768"), max: ratOf("32767")},
	"byte":               {min: ratOf("-128"), max: ratOf("127")},
	"unsignedLong":       {min: ratOf("0"), max: ratOf("18446744073709551615")},
	"unsignedInt":        {min: ratOf("0"), max: ratOf("4294967295")},
	"unsignedShort":      {min: ratOf("0"), max: ratOf("65535")},
	"unsignedByte":       {min: ratOf("0"), max: ratOf("255")},
}

var decimalLexical = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
var integerLexical = regexp.MustCompile(`^[+-]?\d+$`)

// numericDatatype implements decimal and all its integer subtypes.
type numericDatatype struct {
	baseDatatype
	lexical  *regexp.Regexp
	isInt    bool
	subrange intRange
}

func newDecimalType(name string) Datatype {
	return &numericDatatype{
		baseDatatype: baseDatatype{name: name, wsAction: wsCollapse},
		lexical:      decimalLexical,
	}
}

func newIntegerType(name string) Datatype {
	return &numericDatatype{
		baseDatatype: baseDatatype{name: name, wsAction: wsCollapse},
		lexical:      integerLexical,
		isInt:        true,
		subrange:     integerSubtypeRanges[name],
	}
}

var numericAllowedFacets = map[string]bool{
	facetPattern: true, facetTotalDigits: true, facetFractionDigits: true,
	facetMinInclusive: true, facetMaxInclusive: true,
	facetMinExclusive: true, facetMaxExclusive: true,
}

func (d *numericDatatype) AllowsParams() bool { return true }

func (d *numericDatatype) ParseParams(raw []Param) (ParsedParams, *ParameterParsingError) {
	f, errs := parseFacets(raw, numericAllowedFacets)
	// Integer subtypes implicitly bound min/maxInclusive; a user bound
	// outside the implicit range is rejected (§4.B). Compared exactly via
	// big.Rat since the implicit bounds themselves (e.g. unsignedLong's
	// 18446744073709551615) exceed float64's exact range.
	clamp := func(b *boundValue, implicit *big.Rat, name string, tighter func(cmp int) bool) {
		if b == nil || implicit == nil || b.isNaN || b.rat == nil {
			return
		}
		if tighter(b.rat.Cmp(implicit)) {
			errs = append(errs, &ParamError{Facet: name, Msg: fmt.Sprintf("%s exceeds the implicit range of %s", name, d.name)})
		}
	}
	if d.isInt {
		clamp(f.MinInclusive, d.subrange.min, facetMinInclusive, func(cmp int) bool { return cmp < 0 })
		clamp(f.MaxInclusive, d.subrange.max, facetMaxInclusive, func(cmp int) bool { return cmp > 0 })
		clamp(f.MinExclusive, d.subrange.min, facetMinExclusive, func(cmp int) bool { return cmp < 0 })
		clamp(f.MaxExclusive, d.subrange.max, facetMaxExclusive, func(cmp int) bool { return cmp > 0 })
		if f.MinInclusive == nil && d.subrange.min != nil {
			v, _ := d.subrange.min.Float64()
			f.MinInclusive = &boundValue{raw: d.subrange.min.RatString(), value: v, rat: d.subrange.min}
		}
		if f.MaxInclusive == nil && d.subrange.max != nil {
			v, _ := d.subrange.max.Float64()
			f.MaxInclusive = &boundValue{raw: d.subrange.max.RatString(), value: v, rat: d.subrange.max}
		}
	}
	if len(errs) > 0 {
		return nil, &ParameterParsingError{Location: d.name, Errors: errs}
	}
	return &numericParams{facets: f}, nil
}

func (d *numericDatatype) parse(raw string) (*numericValue, *ValueError) {
	norm := applyWhitespace(d.wsAction, raw)
	if !d.lexical.MatchString(norm) {
		return nil, &ValueError{Msg: fmt.Sprintf("%q is not a valid %s", raw, d.name)}
	}
	rat, ok := new(big.Rat).SetString(norm)
	if !ok {
		return nil, &ValueError{Msg: fmt.Sprintf("%q is not a valid %s", raw, d.name)}
	}
	f, _ := rat.Float64()
	return &numericValue{f: f, rat: rat}, nil
}

func (d *numericDatatype) ParseValue(raw string, _ NameContext) (Value, *ValueError) {
	return d.parse(raw)
}

func (d *numericDatatype) Equal(docRaw string, schemaValue Value, _ NameContext) bool {
	v, err := d.parse(docRaw)
	if err != nil {
		return false
	}
	sv, ok := schemaValue.(*numericValue)
	if !ok {
		return false
	}
	if v.rat != nil && sv.rat != nil {
		return v.rat.Cmp(sv.rat) == 0
	}
	return v.f == sv.f
}

func (d *numericDatatype) Disallows(raw string, params ParsedParams, _ NameContext) []*ValueError {
	norm := applyWhitespace(d.wsAction, raw)
	v, verr := d.parse(raw)
	if verr != nil {
		return []*ValueError{verr}
	}
	var errs []*ValueError
	np, _ := params.(*numericParams)
	if np != nil && np.facets != nil {
		errs = append(errs, checkPatterns(np.facets, norm)...)
		errs = append(errs, checkBoundsExact(np.facets, v.rat)...)
		if np.facets.TotalDigits != nil && digitCount(norm) > *np.facets.TotalDigits {
			errs = append(errs, &ValueError{Facet: facetTotalDigits, Msg: fmt.Sprintf("value must have at most %d total digits", *np.facets.TotalDigits)})
		}
		if np.facets.FractionDigits != nil && fractionDigitCount(norm) > *np.facets.FractionDigits {
			errs = append(errs, &ValueError{Facet: facetFractionDigits, Msg: fmt.Sprintf("value must have at most %d fraction digits", *np.facets.FractionDigits)})
		}
	}
	return errs
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func fractionDigitCount(s string) int {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return digitCount(s[i+1:])
}

// floatDatatype implements float and double: IEEE 754 lexical forms
// including NaN/INF/-INF, with NaN==NaN for schema purposes.
type floatDatatype struct {
	baseDatatype
	bits int // 32 for float, 64 for double
}

func newFloatType(name string, bits int) Datatype {
	return &floatDatatype{baseDatatype: baseDatatype{name: name, wsAction: wsCollapse}, bits: bits}
}

var floatAllowedFacets = map[string]bool{
	facetPattern:      true,
	facetMinInclusive: true, facetMaxInclusive: true,
	facetMinExclusive: true, facetMaxExclusive: true,
}

func (d *floatDatatype) AllowsParams() bool { return true }

func (d *floatDatatype) ParseParams(raw []Param) (ParsedParams, *ParameterParsingError) {
	f, errs := parseFacets(raw, floatAllowedFacets)
	if len(errs) > 0 {
		return nil, &ParameterParsingError{Location: d.name, Errors: errs}
	}
	return &numericParams{facets: f}, nil
}

func (d *floatDatatype) parse(raw string) (*numericValue, *ValueError) {
	norm := applyWhitespace(d.wsAction, raw)
	switch norm {
	case "NaN":
		return &numericValue{isNaN: true}, nil
	case "INF", "+INF":
		return &numericValue{f: math.Inf(1)}, nil
	case "-INF":
		return &numericValue{f: math.Inf(-1)}, nil
	}
	f, err := strconv.ParseFloat(norm, d.bits)
	if err != nil {
		return nil, &ValueError{Msg: fmt.Sprintf("%q is not a valid %s", raw, d.name)}
	}
	return &numericValue{f: f}, nil
}

func (d *floatDatatype) ParseValue(raw string, _ NameContext) (Value, *ValueError) {
	return d.parse(raw)
}

func (d *floatDatatype) Equal(docRaw string, schemaValue Value, _ NameContext) bool {
	v, err := d.parse(docRaw)
	if err != nil {
		return false
	}
	sv, ok := schemaValue.(*numericValue)
	if !ok {
		return false
	}
	if v.isNaN || sv.isNaN {
		return v.isNaN == sv.isNaN
	}
	return v.f == sv.f
}

func (d *floatDatatype) Disallows(raw string, params ParsedParams, _ NameContext) []*ValueError {
	v, verr := d.parse(raw)
	if verr != nil {
		return []*ValueError{verr}
	}
	var errs []*ValueError
	np, _ := params.(*numericParams)
	if np != nil && np.facets != nil {
		errs = append(errs, checkPatterns(np.facets, applyWhitespace(d.wsAction, raw))...)
		errs = append(errs, checkBounds(np.facets, v.f, v.isNaN)...)
	}
	return errs
}

// boolDatatype implements boolean: lexical {true, false, 1, 0}.
type boolDatatype struct{ baseDatatype }

func newBoolType(name string) Datatype {
	return &boolDatatype{baseDatatype{name: name, wsAction: wsCollapse}}
}

func (d *boolDatatype) parse(raw string) (bool, *ValueError) {
	switch applyWhitespace(d.wsAction, raw) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, &ValueError{Msg: fmt.Sprintf("%q is not a valid boolean", raw)}
}

func (d *boolDatatype) ParseValue(raw string, _ NameContext) (Value, *ValueError) {
	b, err := d.parse(raw)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (d *boolDatatype) Equal(docRaw string, schemaValue Value, _ NameContext) bool {
	b, err := d.parse(docRaw)
	if err != nil {
		return false
	}
	sv, ok := schemaValue.(bool)
	return ok && sv == b
}

func (d *boolDatatype) Disallows(raw string, _ ParsedParams, _ NameContext) []*ValueError {
	_, err := d.parse(raw)
	if err != nil {
		return []*ValueError{err}
	}
	return nil
}
