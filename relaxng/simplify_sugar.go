package relaxng

// singlePatternContainers are element kinds whose RELAX NG grammar
// production allows exactly one pattern child; extra children accumulated
// by earlier steps (or written directly by hand) are implicitly grouped.
var singlePatternContainers = map[string]bool{
	elElement: true, elAttribute: true, elDefine: true, elStart: true,
	elOneOrMore: true, elList: true,
}

// step45ExpandSugar implements Steps 4-5: rewrite mixed/optional/zeroOrMore
// shorthand into their interleave/choice/oneOrMore definitions, default a
// type-less <value> to type="token" in the builtin library, and apply
// implicit grouping. Runs bottom-up so sugar nested inside sugar expands
// correctly regardless of traversal order.
func step45ExpandSugar(root *Element) {
	var visit func(e *Element)
	visit = func(e *Element) {
		for _, c := range e.ChildElements() {
			visit(c)
		}
		switch e.Name.Local {
		case elMixed:
			wrapper := NewElement(RNGNamespace, elInterleave)
			wrapper.AppendChild(NewElement(RNGNamespace, elText))
			for _, k := range e.ChildElements() {
				wrapper.AppendChild(k)
			}
			e.ReplaceWith(wrapper)
			return
		case elOptional:
			choice := NewElement(RNGNamespace, elChoice)
			for _, k := range e.ChildElements() {
				choice.AppendChild(k)
			}
			choice.AppendChild(NewElement(RNGNamespace, elEmpty))
			e.ReplaceWith(choice)
			return
		case elZeroOrMore:
			oneOrMore := NewElement(RNGNamespace, elOneOrMore)
			for _, k := range e.ChildElements() {
				oneOrMore.AppendChild(k)
			}
			choice := NewElement(RNGNamespace, elChoice)
			choice.AppendChild(oneOrMore)
			choice.AppendChild(NewElement(RNGNamespace, elEmpty))
			e.ReplaceWith(choice)
			return
		case elValue:
			if _, ok := e.Attr(attrType); !ok {
				e.SetAttr(attrType, "token")
				e.SetAttr(attrDatatypeLibrary, "")
				e.DatatypeLibrary = ""
			}
		}

		if !singlePatternContainers[e.Name.Local] {
			return
		}
		kids := e.ChildElements()
		if e.Name.Local == elElement || e.Name.Local == elAttribute {
			if len(kids) > 2 {
				wrapper := NewElement(RNGNamespace, elGroup)
				wrapper.SetChildren(kids[1:]...)
				e.SetChildren(kids[0], wrapper)
			}
			return
		}
		if len(kids) > 1 {
			wrapper := NewElement(RNGNamespace, elGroup)
			wrapper.SetChildren(kids...)
			e.SetChildren(wrapper)
		}
	}
	visit(root)
}
