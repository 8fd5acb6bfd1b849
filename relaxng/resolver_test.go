package relaxng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolverBuiltinBindings(t *testing.T) {
	r := NewResolver()
	ns, local, ok := r.ResolveName("xml:lang", true)
	require.True(t, ok)
	require.Equal(t, xmlNS, ns)
	require.Equal(t, "lang", local)
}

func TestResolverScopingAndUnboundPrefix(t *testing.T) {
	r := NewResolver()
	r.EnterContext()
	require.NoError(t, r.DefinePrefix("a", "http://x"))

	ns, _, ok := r.ResolveName("a:foo", false)
	require.True(t, ok)
	require.Equal(t, "http://x", ns)

	require.NoError(t, r.LeaveContext())

	_, _, ok = r.ResolveName("a:foo", false)
	require.False(t, ok, "expected a: to be unbound after leaving its defining context")

	require.Error(t, r.LeaveContext(), "expected leaving the root context to be an error")
}

func TestResolverUnprefixedNamesDifferByAttributeness(t *testing.T) {
	r := NewResolver()
	r.EnterContext()
	require.NoError(t, r.DefinePrefix("", "http://default"))

	ns, _, _ := r.ResolveName("foo", false)
	require.Equal(t, "http://default", ns, "expected unprefixed element name to use the default namespace")

	ns, _, _ = r.ResolveName("foo", true)
	require.Equal(t, "", ns, "expected unprefixed attribute name to stay in the empty namespace")
}

// TestResolverCloneIndependence is the clone-independence testable
// property from spec.md §8: a child's prefix binding made after Clone must
// not be visible to the parent resolver.
func TestResolverCloneIndependence(t *testing.T) {
	parent := NewResolver()
	parent.EnterContext()
	require.NoError(t, parent.DefinePrefix("p", "http://parent"))

	child := parent.Clone()
	child.EnterContext()
	require.NoError(t, child.DefinePrefix("p", "http://child"))

	ns, _, _ := parent.ResolveName("p:x", false)
	require.Equal(t, "http://parent", ns, "parent's p: binding must be unaffected by the child's redefinition")

	ns, _, _ = child.ResolveName("p:x", false)
	require.Equal(t, "http://child", ns, "child's p: binding must shadow the parent's")
}

func TestResolverRejectsXmlnsPrefixAndWrongXmlBinding(t *testing.T) {
	r := NewResolver()
	require.Error(t, r.DefinePrefix("xmlns", "http://whatever"), `expected "xmlns" to be rejected as a prefix`)
	require.Error(t, r.DefinePrefix("xml", "http://wrong"), "expected rebinding xml: to a different URI to be rejected")
}
