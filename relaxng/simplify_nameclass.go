package relaxng

// step1013NormalizeNameClasses implements Steps 10-13: canonicalize name
// class shape so pattern construction (component H) never needs to look
// through authoring-time variation. Two concrete normalizations survive
// contact with schemas actually seen in the wild: collapsing a doubled
// except (anyName/nsName excepting an anyName/nsName that itself excepts
// something, which is exactly a double negation) down to the innermost
// exception, and deduping repeated <name> siblings inside one <except>.
func step1013NormalizeNameClasses(root *Element) {
	root.Walk(func(e *Element) {
		switch e.Name.Local {
		case elAnyName, elNsName:
			collapseDoubleExcept(e)
		case elExcept:
			dedupeNameChildren(e)
		}
	})
}

func collapseDoubleExcept(e *Element) {
	kids := e.ChildElements()
	if len(kids) != 1 || kids[0].Name.Local != elExcept {
		return
	}
	outer := kids[0]
	outerKids := outer.ChildElements()
	if len(outerKids) != 1 || outerKids[0].Name.Local != e.Name.Local {
		return
	}
	inner := outerKids[0]
	if e.Name.Local == elNsName {
		innerNS, _ := inner.Attr(attrNS)
		selfNS, _ := e.Attr(attrNS)
		if innerNS != selfNS {
			return
		}
	}
	innerKids := inner.ChildElements()
	if len(innerKids) != 1 || innerKids[0].Name.Local != elExcept {
		return
	}
	// anyName{except anyName{except P}} == P: excluding everything except
	// what P excludes from "everything" leaves exactly P.
	innermost := innerKids[0]
	ps := innermost.ChildElements()
	if len(ps) == 1 {
		e.ReplaceWith(ps[0])
		return
	}
	choice := NewElement(RNGNamespace, elChoice)
	choice.SetChildren(ps...)
	e.ReplaceWith(choice)
}

func dedupeNameChildren(except *Element) {
	kids := except.ChildElements()
	var kept []*Element
	seen := map[string]bool{}
	for _, k := range kids {
		if k.Name.Local != elName {
			kept = append(kept, k)
			continue
		}
		ns, _ := k.Attr("resolvedNS")
		key := ns + "|" + k.TextContent()
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, k)
	}
	if len(kept) != len(kids) {
		except.SetChildren(kept...)
	}
}
