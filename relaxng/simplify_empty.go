package relaxng

// step18SimplifyEmpty implements Step 18: drop <empty/> branches wherever
// their presence or absence doesn't change what a group/interleave/choice
// matches, and collapse a oneOrMore of nothing-but-empty to empty itself.
func step18SimplifyEmpty(root *Element) {
	var visit func(e *Element)
	visit = func(e *Element) {
		for _, c := range e.ChildElements() {
			visit(c)
		}
		switch e.Name.Local {
		case elGroup, elInterleave:
			kids := e.ChildElements()
			var kept []*Element
			for _, c := range kids {
				if c.Name.Local != elEmpty {
					kept = append(kept, c)
				}
			}
			switch {
			case len(kept) == 0:
				e.ReplaceWith(NewElement(RNGNamespace, elEmpty))
			case len(kept) == 1:
				e.ReplaceWith(kept[0])
			case len(kept) != len(kids):
				e.SetChildren(kept...)
			}
		case elOneOrMore:
			kids := e.ChildElements()
			if len(kids) == 1 && kids[0].Name.Local == elEmpty {
				e.ReplaceWith(NewElement(RNGNamespace, elEmpty))
			}
		case elChoice:
			kids := e.ChildElements()
			seenEmpty := false
			var kept []*Element
			for _, c := range kids {
				if c.Name.Local == elEmpty {
					if seenEmpty {
						continue
					}
					seenEmpty = true
				}
				kept = append(kept, c)
			}
			switch {
			case len(kept) == 1:
				e.ReplaceWith(kept[0])
			case len(kept) != len(kids):
				e.SetChildren(kept...)
			}
		}
	}
	for _, d := range root.ChildElements() {
		visit(d)
	}
}
