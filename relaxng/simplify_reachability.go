package relaxng

import "fmt"

// defineScope tracks the define names and bodies visible at one grammar
// nesting level, chained to the lexically enclosing grammar for parentRef
// lookups and for the self-recursion check below.
type defineScope struct {
	defines map[string]bool
	bodies  map[string][]*Element
	parent  *defineScope
}

// scopeDefine identifies one define unambiguously across nested grammar
// scopes (two different grammars may both declare a define named "x").
type scopeDefine struct {
	sc   *defineScope
	name string
}

// step14CheckReachability implements Step 14: every ref/parentRef must
// name a define reachable from where it appears (ref within the same
// grammar, parentRef one grammar level up), every grammar must declare at
// least one start, and no define may be reachable from its own body
// without crossing an element/attribute/list boundary.
func step14CheckReachability(root *Element) error {
	scopes := map[*Element]*defineScope{}
	var topSc *defineScope
	if root.Name.Local == elGrammar && root.Name.Namespace == RNGNamespace {
		sc, err := checkGrammarScope(root.ChildElements(), nil, scopes)
		if err != nil {
			return err
		}
		topSc = sc
	} else {
		if err := walkReachability(root, nil, scopes); err != nil {
			return err
		}
	}
	if topSc != nil {
		if err := checkScopeSelfRecursion(topSc, scopes); err != nil {
			return err
		}
	}
	for _, sc := range scopes {
		if err := checkScopeSelfRecursion(sc, scopes); err != nil {
			return err
		}
	}
	return nil
}

// checkGrammarScope verifies one grammar's own ref/parentRef/start
// invariants and returns the defineScope it built (recorded in scopes
// under the owning <grammar> element by the elGrammar branch of
// walkReachability, so the self-recursion pass below can re-enter it).
func checkGrammarScope(children []*Element, parent *defineScope, scopes map[*Element]*defineScope) (*defineScope, error) {
	sc := &defineScope{defines: map[string]bool{}, bodies: map[string][]*Element{}, parent: parent}
	var starts, defines []*Element
	for _, c := range children {
		switch c.Name.Local {
		case elDefine:
			name, _ := c.Attr(attrName)
			sc.defines[name] = true
			sc.bodies[name] = append(sc.bodies[name], c.ChildElements()...)
			defines = append(defines, c)
		case elStart:
			starts = append(starts, c)
		}
	}
	if len(starts) == 0 {
		return nil, &SchemaValidationError{Msg: "grammar has no start pattern"}
	}
	for _, d := range defines {
		for _, pc := range d.ChildElements() {
			if err := walkReachability(pc, sc, scopes); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range starts {
		for _, pc := range s.ChildElements() {
			if err := walkReachability(pc, sc, scopes); err != nil {
				return nil, err
			}
		}
	}
	return sc, nil
}

// checkScopeSelfRecursion runs the self-recursion check (see
// checkNodeNoSelfRecursion) for every define owned directly by sc.
func checkScopeSelfRecursion(sc *defineScope, scopes map[*Element]*defineScope) error {
	for name := range sc.defines {
		root := scopeDefine{sc: sc, name: name}
		if err := checkNoSelfRecursion(name, sc.bodies[name], sc, scopes, map[scopeDefine]bool{root: true}); err != nil {
			return err
		}
	}
	return nil
}

// checkNoSelfRecursion implements the other half of Step 14 (spec.md §4.G):
// a define must not be reachable from its own body without crossing an
// element/attribute/list boundary — "define x = ref x" is rejected, while
// "define x = element e { ref x* }" is fine because element consumes an
// event before the recursive ref is ever followed. rootName is only used
// for the error message; visiting tracks the (scope, name) pairs already
// on the current lexical path, keyed by scope pointer so two different
// grammars' same-named defines are never confused with one another.
func checkNoSelfRecursion(rootName string, nodes []*Element, sc *defineScope, scopes map[*Element]*defineScope, visiting map[scopeDefine]bool) error {
	for _, n := range nodes {
		if err := checkNodeNoSelfRecursion(rootName, n, sc, scopes, visiting); err != nil {
			return err
		}
	}
	return nil
}

func checkNodeNoSelfRecursion(rootName string, e *Element, sc *defineScope, scopes map[*Element]*defineScope, visiting map[scopeDefine]bool) error {
	switch e.Name.Local {
	case elElement, elAttribute, elList:
		// these consume an event (a start tag, an attribute, a token list)
		// before any nested ref is ever followed, so recursion through them
		// terminates productively and is never a cycle.
		return nil
	case elGrammar:
		// A nested <grammar> acts as its pattern's own start — continue the
		// walk through that grammar's start content under its own scope, so
		// a parentRef inside it that loops back out is still caught.
		childSc := scopes[e]
		if childSc == nil {
			return nil
		}
		for _, s := range e.ChildElements() {
			if s.Name.Local != elStart {
				continue
			}
			if err := checkNoSelfRecursion(rootName, s.ChildElements(), childSc, scopes, visiting); err != nil {
				return err
			}
		}
		return nil
	case elRef:
		name, _ := e.Attr(attrName)
		if !sc.defines[name] {
			return nil // dangling ref already reported by walkReachability
		}
		key := scopeDefine{sc: sc, name: name}
		if visiting[key] {
			return &SchemaValidationError{
				Msg:      fmt.Sprintf("define %q is self-recursive: reachable from itself without crossing an element, attribute, or list", rootName),
				Location: e.Location,
			}
		}
		visiting[key] = true
		err := checkNoSelfRecursion(rootName, sc.bodies[name], sc, scopes, visiting)
		delete(visiting, key)
		return err
	case elParentRef:
		name, _ := e.Attr(attrName)
		if sc.parent == nil || !sc.parent.defines[name] {
			return nil // dangling parentRef already reported by walkReachability
		}
		key := scopeDefine{sc: sc.parent, name: name}
		if visiting[key] {
			return &SchemaValidationError{
				Msg:      fmt.Sprintf("define %q is self-recursive: reachable from itself without crossing an element, attribute, or list", rootName),
				Location: e.Location,
			}
		}
		visiting[key] = true
		err := checkNoSelfRecursion(rootName, sc.parent.bodies[name], sc.parent, scopes, visiting)
		delete(visiting, key)
		return err
	}
	for _, c := range e.ChildElements() {
		if err := checkNodeNoSelfRecursion(rootName, c, sc, scopes, visiting); err != nil {
			return err
		}
	}
	return nil
}

func walkReachability(e *Element, sc *defineScope, scopes map[*Element]*defineScope) error {
	switch e.Name.Local {
	case elRef:
		name, _ := e.Attr(attrName)
		if sc == nil || !sc.defines[name] {
			return &SchemaValidationError{Msg: fmt.Sprintf("reference to undefined pattern %q", name), Location: e.Location}
		}
		return nil
	case elParentRef:
		name, _ := e.Attr(attrName)
		if sc == nil || sc.parent == nil || !sc.parent.defines[name] {
			return &SchemaValidationError{Msg: fmt.Sprintf("parentRef to undefined pattern %q", name), Location: e.Location}
		}
		return nil
	case elGrammar:
		childSc, err := checkGrammarScope(e.ChildElements(), sc, scopes)
		if err != nil {
			return err
		}
		scopes[e] = childSc
		return nil
	}
	for _, c := range e.ChildElements() {
		if err := walkReachability(c, sc, scopes); err != nil {
			return err
		}
	}
	return nil
}
