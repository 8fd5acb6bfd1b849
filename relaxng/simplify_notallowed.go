package relaxng

// step17PropagateNotAllowed implements Step 17: a construct that can never
// match anything collapses to <notAllowed/>, and that collapse can ripple
// upward — a group or interleave with one notAllowed branch is itself
// notAllowed, a choice is notAllowed only when every branch is, and an
// element/attribute/list/oneOrMore wrapping notAllowed content is
// notAllowed as a whole, since it can never be satisfied either.
func step17PropagateNotAllowed(root *Element) {
	var visit func(e *Element)
	visit = func(e *Element) {
		for _, c := range e.ChildElements() {
			visit(c)
		}
		switch e.Name.Local {
		case elGroup, elInterleave:
			for _, c := range e.ChildElements() {
				if c.Name.Local == elNotAllowed {
					e.ReplaceWith(NewElement(RNGNamespace, elNotAllowed))
					return
				}
			}
		case elChoice:
			kids := e.ChildElements()
			var kept []*Element
			for _, c := range kids {
				if c.Name.Local != elNotAllowed {
					kept = append(kept, c)
				}
			}
			switch {
			case len(kept) == 0:
				e.ReplaceWith(NewElement(RNGNamespace, elNotAllowed))
			case len(kept) == 1:
				e.ReplaceWith(kept[0])
			case len(kept) != len(kids):
				e.SetChildren(kept...)
			}
		case elOneOrMore:
			kids := e.ChildElements()
			if len(kids) == 1 && kids[0].Name.Local == elNotAllowed {
				e.ReplaceWith(NewElement(RNGNamespace, elNotAllowed))
			}
		case elElement, elAttribute:
			kids := e.ChildElements()
			if len(kids) == 2 && kids[1].Name.Local == elNotAllowed {
				e.ReplaceWith(NewElement(RNGNamespace, elNotAllowed))
			}
		case elList:
			kids := e.ChildElements()
			if len(kids) == 1 && kids[0].Name.Local == elNotAllowed {
				e.ReplaceWith(NewElement(RNGNamespace, elNotAllowed))
			}
		}
	}
	for _, d := range root.ChildElements() {
		visit(d)
	}
}
