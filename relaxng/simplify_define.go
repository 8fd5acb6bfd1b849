package relaxng

// step16OneElementPerDefine implements Step 16: a define or start must
// carry exactly one pattern child. Earlier steps (implicit grouping in
// Step 4-5, combine merging in Step 15) already establish this for the
// common cases; this pass is the defensive final guarantee.
func step16OneElementPerDefine(root *Element) {
	for _, d := range root.ChildElements() {
		if d.Name.Local != elDefine && d.Name.Local != elStart {
			continue
		}
		kids := d.ChildElements()
		if len(kids) > 1 {
			wrapper := NewElement(RNGNamespace, elGroup)
			wrapper.SetChildren(kids...)
			d.SetChildren(wrapper)
		}
	}
}
