package relaxng

// step9RemoveDiv implements Step 9: <div> is purely an authoring-time
// grouping device with no semantic content of its own, so every div is
// replaced by its own children, at every nesting depth.
func step9RemoveDiv(root *Element) {
	var flatten func(e *Element)
	flatten = func(e *Element) {
		var out []Node
		for _, c := range e.Children {
			ce, ok := c.(*Element)
			if !ok {
				out = append(out, c)
				continue
			}
			flatten(ce)
			if ce.Name.Local == elDiv {
				for _, gc := range ce.ChildElements() {
					gc.Parent = e
					out = append(out, AsNode(gc))
				}
				continue
			}
			out = append(out, c)
		}
		e.Children = out
	}
	flatten(root)
}
