package relaxng

import "fmt"

// step3NormalizeAttributes implements Step 3: drop foreign elements and
// attributes, resolve the name="prefix:local" shorthand on <element> and
// <attribute> against the in-scope xmlns bindings, and fold it into an
// explicit <name> child the way the long form already expresses it — so
// every later step sees only one way of spelling a name class.
func step3NormalizeAttributes(root *Element) error {
	resolver := NewResolver()
	var walk func(e *Element) error
	walk = func(e *Element) error {
		resolver.EnterContext()
		defer resolver.LeaveContext()

		for _, a := range e.Attrs {
			switch {
			case a.Name.Local == "xmlns" && a.Name.Namespace == "":
				if err := resolver.DefinePrefix("", a.Value); err != nil {
					return err
				}
			case a.Name.Namespace == "xmlns":
				if err := resolver.DefinePrefix(a.Name.Local, a.Value); err != nil {
					return err
				}
			}
		}

		kept := e.Attrs[:0]
		for _, a := range e.Attrs {
			if a.Name.Local == "xmlns" && a.Name.Namespace == "" {
				continue
			}
			if a.Name.Namespace == "xmlns" {
				continue
			}
			if a.Name.Namespace != "" && a.Name.Namespace != RNGNamespace {
				continue // foreign attribute, dropped per Step 3
			}
			kept = append(kept, a)
		}
		e.Attrs = kept

		if name, ok := e.Attr(attrName); ok && (e.Name.Local == elElement || e.Name.Local == elAttribute) {
			ns, local, ok2 := resolver.ResolveName(name, e.Name.Local == elAttribute)
			if !ok2 {
				return &SchemaValidationError{Msg: fmt.Sprintf("unresolvable prefix in name=%q", name), Location: e.Location}
			}
			nameEl := NewElement(RNGNamespace, elName)
			nameEl.SetAttr("resolvedNS", ns)
			nameEl.AppendText(local)
			e.RemoveAttr(attrName)
			e.SetChildren(append([]*Element{nameEl}, e.ChildElements()...)...)
		}

		// drop children in foreign namespaces outright; RNGNamespace
		// children recurse, everything else is removed from the tree.
		var keptChildren []Node
		for _, c := range e.Children {
			ce, ok := c.(*Element)
			if !ok {
				keptChildren = append(keptChildren, c)
				continue
			}
			if ce.Name.Namespace != RNGNamespace {
				continue
			}
			keptChildren = append(keptChildren, c)
		}
		e.Children = keptChildren

		for _, c := range e.ChildElements() {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}
