package relaxng

import "fmt"

// step15MergeGrammars implements Step 15. Every <grammar> other than the
// root is replaced in place by a <ref> to a synthesized define wrapping
// its own start pattern, and every define/start name belonging to grammar
// id N>0 is suffixed "-gr-N" so the whole document ends up with exactly
// one grammar at the root holding a single flat, uniquely-named define
// pool plus one merged start — the outcome SPEC_FULL.md's nested-grammar
// scenario describes as "-gr-1/-gr-2 suffixing with parentRef rewritten
// to ref". Multiple same-name defines (from <include> overrides, or
// duplicate top-level defines) are merged via their shared combine
// attribute, same as multiple <start> elements.
func step15MergeGrammars(root *Element, opts *Options) (*Element, error) {
	if root.Name.Local != elGrammar || root.Name.Namespace != RNGNamespace {
		return root, nil // single-pattern schema: no grammar, nothing to merge
	}

	idCounter := 0
	hoisted := map[string]*Element{}
	var hoistedOrder []string

	renameDefine := func(id int, name string) string {
		if id == 0 || opts.NoOptimizeIDs {
			return name
		}
		return fmt.Sprintf("%s-gr-%d", name, id)
	}

	var process func(children []*Element, id, parentID int) (*Element, error)
	var rewrite func(e *Element, id, parentID int) error

	rewrite = func(e *Element, id, parentID int) error {
		for _, c := range e.ChildElements() {
			switch c.Name.Local {
			case elRef:
				name, _ := c.Attr(attrName)
				c.SetAttr(attrName, renameDefine(id, name))
			case elParentRef:
				name, _ := c.Attr(attrName)
				c.SetAttr(attrName, renameDefine(parentID, name))
				c.Name.Local = elRef
			case elGrammar:
				idCounter++
				newID := idCounter
				startContent, err := process(c.ChildElements(), newID, id)
				if err != nil {
					return err
				}
				startName := renameDefine(newID, "__start")
				defEl := NewElement(RNGNamespace, elDefine)
				defEl.SetAttr(attrName, startName)
				defEl.AppendChild(startContent)
				hoisted[startName] = defEl
				hoistedOrder = append(hoistedOrder, startName)

				refEl := NewElement(RNGNamespace, elRef)
				refEl.SetAttr(attrName, startName)
				c.ReplaceWith(refEl)
			default:
				if err := rewrite(c, id, parentID); err != nil {
					return err
				}
			}
		}
		return nil
	}

	process = func(children []*Element, id, parentID int) (*Element, error) {
		var starts []*Element
		defineGroups := map[string][]*Element{}
		var defineOrder []string
		for _, c := range children {
			switch c.Name.Local {
			case elStart:
				starts = append(starts, c)
			case elDefine:
				name, _ := c.Attr(attrName)
				if _, ok := defineGroups[name]; !ok {
					defineOrder = append(defineOrder, name)
				}
				defineGroups[name] = append(defineGroups[name], c)
			}
		}

		for _, name := range defineOrder {
			for _, d := range defineGroups[name] {
				if err := rewrite(d, id, parentID); err != nil {
					return nil, err
				}
			}
		}
		for _, s := range starts {
			if err := rewrite(s, id, parentID); err != nil {
				return nil, err
			}
		}

		for _, name := range defineOrder {
			merged, err := mergeCombine(defineGroups[name], "define "+name)
			if err != nil {
				return nil, err
			}
			newName := renameDefine(id, name)
			defEl := NewElement(RNGNamespace, elDefine)
			defEl.SetAttr(attrName, newName)
			defEl.AppendChild(merged)
			hoisted[newName] = defEl
			hoistedOrder = append(hoistedOrder, newName)
		}

		return mergeCombine(starts, "start")
	}

	rootStart, err := process(root.ChildElements(), 0, -1)
	if err != nil {
		return nil, err
	}

	newRoot := NewElement(RNGNamespace, elGrammar)
	newRoot.Location = root.Location
	for _, name := range hoistedOrder {
		newRoot.AppendChild(hoisted[name])
	}
	startEl := NewElement(RNGNamespace, elStart)
	startEl.AppendChild(rootStart)
	newRoot.AppendChild(startEl)
	return newRoot, nil
}

// mergeCombine folds a set of same-name define/start occurrences into one
// pattern using their shared combine attribute ("choice" or "interleave");
// a lone occurrence needs no combine and passes through unchanged.
func mergeCombine(group []*Element, what string) (*Element, error) {
	if len(group) == 0 {
		return nil, &SchemaValidationError{Msg: fmt.Sprintf("%s: missing", what)}
	}
	patterns := make([]*Element, 0, len(group))
	for _, g := range group {
		kids := g.ChildElements()
		if len(kids) == 1 {
			patterns = append(patterns, kids[0])
			continue
		}
		wrapper := NewElement(RNGNamespace, elGroup)
		wrapper.SetChildren(kids...)
		patterns = append(patterns, wrapper)
	}
	if len(patterns) == 1 {
		return patterns[0], nil
	}

	combine, _ := group[0].Attr(attrCombine)
	for _, g := range group[1:] {
		c2, _ := g.Attr(attrCombine)
		if c2 != combine {
			return nil, &SchemaValidationError{Msg: fmt.Sprintf("%s: conflicting combine methods", what)}
		}
	}
	if combine == "" {
		return nil, &SchemaValidationError{Msg: fmt.Sprintf("%s: multiple definitions require a combine method", what)}
	}
	wrapLocal := elChoice
	if combine == "interleave" {
		wrapLocal = elInterleave
	}
	wrapper := NewElement(RNGNamespace, wrapLocal)
	wrapper.SetChildren(patterns...)
	return wrapper, nil
}
