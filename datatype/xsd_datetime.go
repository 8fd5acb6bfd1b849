package datatype

import (
	"fmt"
	"regexp"
	"strconv"
)

// dateTimeValue captures just enough of the parsed lexical form to support
// Equal() and the semantic range checks; it deliberately does not attempt
// full calendar arithmetic (duration addition, timezone normalization),
// which is out of scope for facet/value checking.
type dateTimeValue struct {
	raw string
	tz  string // normalized timezone suffix, "" if absent, "Z" if zulu
}

var dateTimeFieldPatterns = map[string]*regexp.Regexp{
	"duration":   regexp.MustCompile(`^-?P(\d+Y)?(\d+M)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`),
	"dateTime":   regexp.MustCompile(`^-?\d{4,}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`),
	"time":       regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`),
	"date":       regexp.MustCompile(`^-?\d{4,}-\d{2}-\d{2}(Z|[+-]\d{2}:\d{2})?$`),
	"gYearMonth": regexp.MustCompile(`^-?\d{4,}-\d{2}(Z|[+-]\d{2}:\d{2})?$`),
	"gYear":      regexp.MustCompile(`^-?\d{4,}(Z|[+-]\d{2}:\d{2})?$`),
	"gMonthDay":  regexp.MustCompile(`^--\d{2}-\d{2}(Z|[+-]\d{2}:\d{2})?$`),
	"gDay":       regexp.MustCompile(`^---\d{2}(Z|[+-]\d{2}:\d{2})?$`),
	"gMonth":     regexp.MustCompile(`^--\d{2}(Z|[+-]\d{2}:\d{2})?$`),
}

// dateTimeComponents are extracted loosely with a single permissive regexp
// per field, good enough to apply the range checks spec.md demands without
// building a full calendar parser.
var (
	reTZ   = regexp.MustCompile(`(Z|[+-]\d{2}:\d{2})$`)
	reTime = regexp.MustCompile(`(?:^|T)(\d{2}):(\d{2}):(\d{2})`)
)

type dateTimeDatatype struct {
	baseDatatype
	lexical *regexp.Regexp
}

func newDateTimeType(name string) Datatype {
	return &dateTimeDatatype{
		baseDatatype: baseDatatype{name: name, wsAction: wsCollapse},
		lexical:      dateTimeFieldPatterns[name],
	}
}

var dateTimeAllowedFacets = map[string]bool{
	facetPattern: true, facetMinInclusive: true, facetMaxInclusive: true,
	facetMinExclusive: true, facetMaxExclusive: true,
}

func (d *dateTimeDatatype) AllowsParams() bool { return true }

func (d *dateTimeDatatype) ParseParams(raw []Param) (ParsedParams, *ParameterParsingError) {
	f, errs := parseFacets(raw, dateTimeAllowedFacets)
	if len(errs) > 0 {
		return nil, &ParameterParsingError{Location: d.name, Errors: errs}
	}
	return &stringLikeParams{facets: f}, nil
}

func (d *dateTimeDatatype) validateSemantics(norm string) *ValueError {
	if d.name == "duration" {
		return nil
	}
	if tzMatch := reTZ.FindString(norm); tzMatch != "" && tzMatch != "Z" {
		h, _ := strconv.Atoi(tzMatch[1:3])
		m, _ := strconv.Atoi(tzMatch[4:6])
		if h > 14 || (h == 14 && m != 0) {
			return &ValueError{Msg: "timezone offset must not exceed 14:00"}
		}
		if m > 59 {
			return &ValueError{Msg: "timezone minute offset must be between 0 and 59"}
		}
	}
	if m := reTime.FindStringSubmatch(norm); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		ss, _ := strconv.Atoi(m[3])
		if hh == 24 {
			if mm != 0 || ss != 0 {
				return &ValueError{Msg: "hour 24 is only valid with minutes and seconds equal to 0"}
			}
		} else if hh > 23 {
			return &ValueError{Msg: "hour must be between 0 and 24"}
		}
		if mm > 59 {
			return &ValueError{Msg: "minute must be between 0 and 59"}
		}
		if ss > 59 {
			return &ValueError{Msg: "second must be between 0 and 59"}
		}
	}
	switch d.name {
	case "dateTime", "date", "gYearMonth", "gMonthDay", "gMonth":
		if err := d.validateMonthDay(norm); err != nil {
			return err
		}
	}
	return nil
}

func (d *dateTimeDatatype) validateMonthDay(norm string) *ValueError {
	var year, month, day int
	var hasYear, hasDay bool
	switch d.name {
	case "dateTime", "date":
		var y, mo, da int
		n, _ := fmt.Sscanf(trimSign(norm), "%04d-%02d-%02d", &y, &mo, &da)
		if n < 3 {
			return nil
		}
		year, month, day, hasYear, hasDay = y, mo, da, true, true
	case "gYearMonth":
		var y, mo int
		n, _ := fmt.Sscanf(trimSign(norm), "%04d-%02d", &y, &mo)
		if n < 2 {
			return nil
		}
		year, month, hasYear = y, mo, true
	case "gMonthDay":
		var mo, da int
		n, _ := fmt.Sscanf(norm, "--%02d-%02d", &mo, &da)
		if n < 2 {
			return nil
		}
		month, day, hasDay = mo, da, true
		year = 2000 // leap year placeholder; gMonthDay has no year component
	case "gMonth":
		var mo int
		n, _ := fmt.Sscanf(norm, "--%02d", &mo)
		if n < 1 {
			return nil
		}
		month = mo
	}
	if month < 1 || month > 12 {
		return &ValueError{Msg: "month must be between 1 and 12"}
	}
	if hasDay {
		maxDay := daysInMonth(month, year, hasYear)
		if day < 1 || day > maxDay {
			return &ValueError{Msg: fmt.Sprintf("day must be between 1 and %d for the given month", maxDay)}
		}
	}
	return nil
}

func trimSign(s string) string {
	if len(s) > 0 && s[0] == '-' {
		return s[1:]
	}
	return s
}

func daysInMonth(month, year int, hasYear bool) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if hasYear && isLeapYear(year) {
			return 29
		}
		return 28
	}
	return 31
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func (d *dateTimeDatatype) parse(raw string) (*dateTimeValue, *ValueError) {
	norm := applyWhitespace(d.wsAction, raw)
	if d.lexical != nil && !d.lexical.MatchString(norm) {
		return nil, &ValueError{Msg: fmt.Sprintf("%q is not a valid %s", raw, d.name)}
	}
	if err := d.validateSemantics(norm); err != nil {
		return nil, err
	}
	tz := reTZ.FindString(norm)
	return &dateTimeValue{raw: norm, tz: tz}, nil
}

func (d *dateTimeDatatype) ParseValue(raw string, _ NameContext) (Value, *ValueError) {
	return d.parse(raw)
}

func (d *dateTimeDatatype) Equal(docRaw string, schemaValue Value, _ NameContext) bool {
	v, err := d.parse(docRaw)
	if err != nil {
		return false
	}
	sv, ok := schemaValue.(*dateTimeValue)
	return ok && v.raw == sv.raw
}

func (d *dateTimeDatatype) Disallows(raw string, params ParsedParams, _ NameContext) []*ValueError {
	_, err := d.parse(raw)
	if err != nil {
		return []*ValueError{err}
	}
	sp, _ := params.(*stringLikeParams)
	if sp != nil && sp.facets != nil {
		return checkPatterns(sp.facets, applyWhitespace(d.wsAction, raw))
	}
	return nil
}
