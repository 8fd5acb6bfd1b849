package xsdregexp

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// escapeClass describes one multi-character escape (\s \S \i \I \c \C \d \D
// \w \W). posClass/negClass are full bracket expressions usable as a
// standalone atom; posClassBody/negClassBody are the same without the
// enclosing brackets, for splicing into a surrounding character class.
type escapeClass struct {
	negative      bool // true if this is the "capital letter" (negated) form
	posClass      string
	negClass      string
	posClassBody  string
	negClassBody  string
}

// xmlNameStartRanges / xmlNameRanges approximate the XML 1.0 NameStartChar
// and NameChar productions as Unicode range tables, combined with
// golang.org/x/text/unicode/rangetable the way the rest of the x/text stack
// composes script/category tables, rather than hand-writing rune switches.
var xmlNameStartRanges = rangetable.Merge(
	rangetable.New(':', '_'),
	asciiLetters,
	unicode.Letter,
)

var xmlNameRanges = rangetable.Merge(
	xmlNameStartRanges,
	rangetable.New('-', '.'),
	unicode.Digit,
	unicode.Mark,
)

var asciiLetters = rangetable.New(asciiLetterRunes()...)

func asciiLetterRunes() []rune {
	var rs []rune
	for r := 'A'; r <= 'Z'; r++ {
		rs = append(rs, r)
	}
	for r := 'a'; r <= 'z'; r++ {
		rs = append(rs, r)
	}
	return rs
}

const (
	xmlNameStartBody = `:A-Z_a-z\x{C0}-\x{D6}\x{D8}-\x{F6}\x{F8}-\x{2FF}\x{370}-\x{37D}\x{37F}-\x{1FFF}\x{200C}-\x{200D}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}\x{10000}-\x{EFFFF}`
	xmlNameBody      = xmlNameStartBody + `\-.0-9\x{B7}\x{0300}-\x{036F}\x{203F}-\x{2040}`
)

var multiCharEscapes = map[byte]escapeClass{
	's': {
		posClass: `[ \t\n\r]`, posClassBody: ` \t\n\r`,
		negClass: `[^ \t\n\r]`, negClassBody: ` \t\n\r`,
	},
	'S': {
		negative: true,
		posClass: `[^ \t\n\r]`, posClassBody: `^ \t\n\r`,
		negClass: `[ \t\n\r]`, negClassBody: ` \t\n\r`,
	},
	'i': {
		posClass: "[" + xmlNameStartBody + "]", posClassBody: xmlNameStartBody,
		negClass: "[^" + xmlNameStartBody + "]", negClassBody: xmlNameStartBody,
	},
	'I': {
		negative: true,
		posClass: "[^" + xmlNameStartBody + "]", posClassBody: xmlNameStartBody,
		negClass: "[" + xmlNameStartBody + "]", negClassBody: xmlNameStartBody,
	},
	'c': {
		posClass: "[" + xmlNameBody + "]", posClassBody: xmlNameBody,
		negClass: "[^" + xmlNameBody + "]", negClassBody: xmlNameBody,
	},
	'C': {
		negative: true,
		posClass: "[^" + xmlNameBody + "]", posClassBody: xmlNameBody,
		negClass: "[" + xmlNameBody + "]", negClassBody: xmlNameBody,
	},
	'd': {
		posClass: `[0-9]`, posClassBody: `0-9`,
		negClass: `[^0-9]`, negClassBody: `0-9`,
	},
	'D': {
		negative: true,
		posClass: `[^0-9]`, posClassBody: `0-9`,
		negClass: `[0-9]`, negClassBody: `0-9`,
	},
	'w': {
		posClass: `[^\p{P}\p{Z}\p{C}]`, posClassBody: `^\p{P}\p{Z}\p{C}`,
		negClass: `[\p{P}\p{Z}\p{C}]`, negClassBody: `\p{P}\p{Z}\p{C}`,
	},
	'W': {
		negative: true,
		posClass: `[\p{P}\p{Z}\p{C}]`, posClassBody: `\p{P}\p{Z}\p{C}`,
		negClass: `[^\p{P}\p{Z}\p{C}]`, negClassBody: `^\p{P}\p{Z}\p{C}`,
	},
	'p': {}, // handled specially (Unicode property), see parseUnicodeProperty
	'P': {},
}

// ContainsNameStart reports whether r is a valid XML NameStartChar,
// exposed so the datatype package's QName/NOTATION lexical check can use
// it without duplicating the production.
func ContainsNameStart(r rune) bool { return unicode.Is(xmlNameStartRanges, r) }

// ContainsNameChar reports whether r is a valid XML NameChar.
func ContainsNameChar(r rune) bool { return unicode.Is(xmlNameRanges, r) }
