package relaxng

var flattenableOperators = map[string]bool{elGroup: true, elChoice: true, elInterleave: true}

// step68Flatten implements Steps 6-8: group/choice/interleave are
// associative, so a pattern like group{group{a,b},c} simplifies to the
// flat n-ary group{a,b,c}. Bottom-up traversal means every descendant is
// already maximally flattened of its own kind by the time its parent is
// visited, so a single pass suffices.
func step68Flatten(root *Element) {
	var visit func(e *Element)
	visit = func(e *Element) {
		for _, c := range e.ChildElements() {
			visit(c)
		}
		if !flattenableOperators[e.Name.Local] {
			return
		}
		var out []*Element
		changed := false
		for _, c := range e.ChildElements() {
			if c.Name.Local == e.Name.Local {
				out = append(out, c.ChildElements()...)
				changed = true
			} else {
				out = append(out, c)
			}
		}
		if changed {
			e.SetChildren(out...)
		}
	}
	visit(root)
}
