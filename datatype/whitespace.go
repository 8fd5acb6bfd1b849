package datatype

import "strings"

// whitespaceAction is one of the three XSD whitespace facets. Only
// "string" preserves; only "normalizedString" replaces; every other XSD
// type (and the RELAX NG built-in "token") collapses.
type whitespaceAction int

const (
	wsPreserve whitespaceAction = iota
	wsReplace
	wsCollapse
)

func applyWhitespace(a whitespaceAction, s string) string {
	switch a {
	case wsPreserve:
		return s
	case wsReplace:
		return replaceWhitespace(s)
	default:
		return collapseWhitespace(s)
	}
}

// replaceWhitespace turns every tab/newline/carriage-return into a single
// space, without collapsing runs.
func replaceWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\t', '\n', '\r':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapseWhitespace trims leading/trailing whitespace and collapses
// internal runs of whitespace to a single space, after first replacing
// tab/cr/lf with space (XSD "collapse" is defined in terms of "replace").
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(replaceWhitespace(s)), " ")
}
