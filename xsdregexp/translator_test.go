package xsdregexp

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) *regexp.Regexp {
	t.Helper()
	tr, err := Translate(src)
	require.NoError(t, err)
	re, err := regexp.Compile(tr.Go)
	require.NoError(t, err)
	return re
}

func TestSubtraction(t *testing.T) {
	re := compile(t, `[ab-[b]]`)
	require.True(t, re.MatchString("a"))
	require.False(t, re.MatchString("b"))
}

func TestNegativeEscapeInPositiveClass(t *testing.T) {
	re := compile(t, `[x\S]+`)
	require.True(t, re.MatchString("x"))
	require.True(t, re.MatchString("xy!"))
}

func TestQuantifier(t *testing.T) {
	re := compile(t, `a{2,4}`)
	require.True(t, re.MatchString("aa"))
	require.False(t, re.MatchString("a"))
}

func TestUnicodeProperty(t *testing.T) {
	tr, err := Translate(`\p{L}+`)
	require.NoError(t, err)
	require.True(t, tr.NeedsUnicode)
	re, err := regexp.Compile(tr.Go)
	require.NoError(t, err)
	require.True(t, re.MatchString("Hello"))
	require.False(t, re.MatchString("123"))
}

func TestAlternationAndGroup(t *testing.T) {
	re := compile(t, `(foo|bar)+`)
	require.True(t, re.MatchString("foobar"))
	require.False(t, re.MatchString("baz"))
}

func TestUnknownEscapeErrors(t *testing.T) {
	_, err := Translate(`\q`)
	require.Error(t, err)
}

func TestUnterminatedClassErrors(t *testing.T) {
	_, err := Translate(`[abc`)
	require.Error(t, err)
}

func TestCaching(t *testing.T) {
	a, err := Translate(`abc`)
	require.NoError(t, err)
	b, err := Translate(`abc`)
	require.NoError(t, err)
	require.Same(t, a, b)
}
