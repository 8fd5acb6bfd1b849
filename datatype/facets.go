package datatype

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/mangalam-research/gosalve/xsdregexp"
)

// facetNames enumerates every facet this package understands; individual
// datatypes pass the subset they accept to parseFacets via `allowed`.
const (
	facetLength         = "length"
	facetMinLength      = "minLength"
	facetMaxLength      = "maxLength"
	facetPattern        = "pattern"
	facetTotalDigits    = "totalDigits"
	facetFractionDigits = "fractionDigits"
	facetMinInclusive   = "minInclusive"
	facetMaxInclusive   = "maxInclusive"
	facetMinExclusive   = "minExclusive"
	facetMaxExclusive   = "maxExclusive"
)

// Facets is the generic, parsed facet set shared by every XSD datatype
// family (string-like, numeric, date/time, binary). Fields not applicable
// to a given type are simply left at their zero value; validity of the
// combination actually present is checked once, in parseFacets.
type Facets struct {
	Length, MinLength, MaxLength *int
	Patterns                     []*xsdregexp.Translated
	TotalDigits, FractionDigits  *int
	MinInclusive, MaxInclusive   *boundValue
	MinExclusive, MaxExclusive   *boundValue
}

// boundValue holds a facet bound as a float64 (used for float/double, where
// IEEE 754 is the textually correct representation and "NaN"/"INF"/"-INF"
// are valid lexical forms) and, when the bound is an ordinary decimal
// literal, also as an exact *big.Rat so decimal/integer facet comparisons
// never lose precision to float64's ~15-17 significant digits (spec.md
// §4.B; unsignedLong's bound 18446744073709551615 is exactly such a case).
type boundValue struct {
	raw   string
	value float64
	isNaN bool
	rat   *big.Rat
}

func parseBound(raw string) (*boundValue, error) {
	if raw == "NaN" {
		return &boundValue{raw: raw, isNaN: true}, nil
	}
	if raw == "INF" {
		return &boundValue{raw: raw, value: posInf}, nil
	}
	if raw == "-INF" {
		return &boundValue{raw: raw, value: negInf}, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	rat, _ := new(big.Rat).SetString(raw)
	return &boundValue{raw: raw, value: f, rat: rat}, nil
}

var (
	floatZero float64 // always 0; keeps go vet from flagging a literal 1/0
	posInf    = float64(1) / floatZero
	negInf    = float64(-1) / floatZero
)

// parseFacets validates and parses every param against `allowed` (the set
// of facet names this datatype accepts) and enforces the cross-facet
// constraints from spec §4.B: minLength<=maxLength, length excludes
// min/maxLength, max{In,Ex}clusive mutual exclusivity (same for min), and
// the four ordering constraints between inclusive/exclusive bounds.
func parseFacets(raw []Param, allowed map[string]bool) (*Facets, []*ParamError) {
	var errs []*ParamError
	f := &Facets{}

	add := func(name, msg string) { errs = append(errs, &ParamError{Facet: name, Msg: msg}) }

	for _, p := range raw {
		if !allowed[p.Name] {
			add(p.Name, fmt.Sprintf("facet %q is not applicable to this type", p.Name))
			continue
		}
		switch p.Name {
		case facetLength:
			setIntFacet(&f.Length, p, add)
		case facetMinLength:
			setIntFacet(&f.MinLength, p, add)
		case facetMaxLength:
			setIntFacet(&f.MaxLength, p, add)
		case facetTotalDigits:
			setIntFacet(&f.TotalDigits, p, add)
		case facetFractionDigits:
			setIntFacet(&f.FractionDigits, p, add)
		case facetPattern:
			tr, err := translateRegexp(p.Value)
			if err != nil {
				add(facetPattern, err.Error())
				continue
			}
			f.Patterns = append(f.Patterns, tr)
		case facetMinInclusive:
			setBoundFacet(&f.MinInclusive, p, add)
		case facetMaxInclusive:
			setBoundFacet(&f.MaxInclusive, p, add)
		case facetMinExclusive:
			setBoundFacet(&f.MinExclusive, p, add)
		case facetMaxExclusive:
			setBoundFacet(&f.MaxExclusive, p, add)
		}
	}

	if f.Length != nil && (f.MinLength != nil || f.MaxLength != nil) {
		add(facetLength, "length cannot coexist with minLength or maxLength")
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		add(facetMinLength, "minLength must be less than or equal to maxLength")
	}
	if f.MaxInclusive != nil && f.MaxExclusive != nil {
		add(facetMaxInclusive, "maxInclusive and maxExclusive are mutually exclusive")
	}
	if f.MinInclusive != nil && f.MinExclusive != nil {
		add(facetMinInclusive, "minInclusive and minExclusive are mutually exclusive")
	}
	cmp := func(a, b *boundValue) (float64, bool) {
		if a == nil || b == nil || a.isNaN || b.isNaN {
			return 0, false
		}
		if a.rat != nil && b.rat != nil {
			return float64(a.rat.Cmp(b.rat)), true
		}
		return a.value - b.value, true
	}
	if d, ok := cmp(f.MinInclusive, f.MaxInclusive); ok && d > 0 {
		add(facetMinInclusive, "minInclusive must be less than or equal to maxInclusive")
	}
	if d, ok := cmp(f.MinExclusive, f.MaxInclusive); ok && d >= 0 {
		add(facetMinExclusive, "minExclusive must be less than maxInclusive")
	}
	if d, ok := cmp(f.MinInclusive, f.MaxExclusive); ok && d >= 0 {
		add(facetMinInclusive, "minInclusive must be less than maxExclusive")
	}
	if d, ok := cmp(f.MinExclusive, f.MaxExclusive); ok && d > 0 {
		add(facetMinExclusive, "minExclusive must be less than or equal to maxExclusive")
	}

	return f, errs
}

func setIntFacet(dst **int, p Param, add func(name, msg string)) {
	n, err := strconv.Atoi(strings.TrimSpace(p.Value))
	if err != nil || n < 0 {
		add(p.Name, fmt.Sprintf("%q is not a non-negative integer", p.Value))
		return
	}
	*dst = &n
}

func setBoundFacet(dst **boundValue, p Param, add func(name, msg string)) {
	b, err := parseBound(strings.TrimSpace(p.Value))
	if err != nil {
		add(p.Name, fmt.Sprintf("%q is not a valid numeric bound", p.Value))
		return
	}
	*dst = b
}

// checkLength validates a value's `length` (in the datatype's own unit,
// e.g. characters for strings, bytes for binary) against Length/MinLength/
// MaxLength. Callers pass the pre-computed length because its definition
// varies by datatype (rune count vs decoded byte count).
func checkLength(f *Facets, length int) []*ValueError {
	var errs []*ValueError
	if f.Length != nil && length != *f.Length {
		errs = append(errs, &ValueError{Facet: facetLength, Msg: fmt.Sprintf("value must have length %d", *f.Length)})
	}
	if f.MinLength != nil && length < *f.MinLength {
		errs = append(errs, &ValueError{Facet: facetMinLength, Msg: fmt.Sprintf("value must have a length of at least %d", *f.MinLength)})
	}
	if f.MaxLength != nil && length > *f.MaxLength {
		errs = append(errs, &ValueError{Facet: facetMaxLength, Msg: fmt.Sprintf("value must have a length of at most %d", *f.MaxLength)})
	}
	return errs
}

// checkPatterns validates value against every facetPattern; RELAX NG/XSD
// require ALL repeated pattern facets to match (conjunction), unlike a
// bare XSD restriction where repeated patterns union.
func checkPatterns(f *Facets, value string) []*ValueError {
	var errs []*ValueError
	for _, tr := range f.Patterns {
		re := tr.Compiled()
		if !re.MatchString(value) {
			errs = append(errs, &ValueError{Facet: facetPattern, Msg: fmt.Sprintf("value does not match the pattern %q", tr.Source)})
		}
	}
	return errs
}

// checkBounds validates a numeric value against the four bound facets.
// NaN values only satisfy a bound whose own bound value is also NaN
// (IEEE 754 "NaN compares unequal to everything, including another NaN",
// but for schema purposes spec.md fixes NaN == NaN for float/double).
func checkBounds(f *Facets, v float64, isNaN bool) []*ValueError {
	var errs []*ValueError
	check := func(b *boundValue, name string, ok func(v, bound float64) bool, msg string) {
		if b == nil {
			return
		}
		if b.isNaN {
			if !isNaN {
				errs = append(errs, &ValueError{Facet: name, Msg: "value must be NaN"})
			}
			return
		}
		if isNaN {
			errs = append(errs, &ValueError{Facet: name, Msg: msg})
			return
		}
		if !ok(v, b.value) {
			errs = append(errs, &ValueError{Facet: name, Msg: msg})
		}
	}
	if f.MinInclusive != nil {
		check(f.MinInclusive, facetMinInclusive, func(v, b float64) bool { return v >= b },
			fmt.Sprintf("value must be greater than or equal to %s", f.MinInclusive.raw))
	}
	if f.MaxInclusive != nil {
		check(f.MaxInclusive, facetMaxInclusive, func(v, b float64) bool { return v <= b },
			fmt.Sprintf("value must be less than or equal to %s", f.MaxInclusive.raw))
	}
	if f.MinExclusive != nil {
		check(f.MinExclusive, facetMinExclusive, func(v, b float64) bool { return v > b },
			fmt.Sprintf("value must be greater than %s", f.MinExclusive.raw))
	}
	if f.MaxExclusive != nil {
		check(f.MaxExclusive, facetMaxExclusive, func(v, b float64) bool { return v < b },
			fmt.Sprintf("value must be less than %s", f.MaxExclusive.raw))
	}
	return errs
}

// checkBoundsExact is checkBounds' exact-arithmetic counterpart for the
// decimal/integer family (spec.md §4.B demands exact comparison there, and
// neither "NaN" nor "INF" is a valid decimal/integer lexical form, so this
// never needs the NaN handling checkBounds carries for float/double). A nil
// bound.rat (only possible if a caller mixed an INF/NaN bound into a
// decimal/integer facet set) falls back to the float64 comparison rather
// than panicking.
func checkBoundsExact(f *Facets, v *big.Rat) []*ValueError {
	var errs []*ValueError
	check := func(b *boundValue, name string, ok func(cmp int) bool, msg string) {
		if b == nil {
			return
		}
		if b.rat == nil {
			vf, _ := v.Float64()
			c := 0
			if vf < b.value {
				c = -1
			} else if vf > b.value {
				c = 1
			}
			if b.isNaN || !ok(c) {
				errs = append(errs, &ValueError{Facet: name, Msg: msg})
			}
			return
		}
		if !ok(v.Cmp(b.rat)) {
			errs = append(errs, &ValueError{Facet: name, Msg: msg})
		}
	}
	if f.MinInclusive != nil {
		check(f.MinInclusive, facetMinInclusive, func(cmp int) bool { return cmp >= 0 },
			fmt.Sprintf("value must be greater than or equal to %s", f.MinInclusive.raw))
	}
	if f.MaxInclusive != nil {
		check(f.MaxInclusive, facetMaxInclusive, func(cmp int) bool { return cmp <= 0 },
			fmt.Sprintf("value must be less than or equal to %s", f.MaxInclusive.raw))
	}
	if f.MinExclusive != nil {
		check(f.MinExclusive, facetMinExclusive, func(cmp int) bool { return cmp > 0 },
			fmt.Sprintf("value must be greater than %s", f.MinExclusive.raw))
	}
	if f.MaxExclusive != nil {
		check(f.MaxExclusive, facetMaxExclusive, func(cmp int) bool { return cmp < 0 },
			fmt.Sprintf("value must be less than %s", f.MaxExclusive.raw))
	}
	return errs
}
