package datatype

// newStringType builds the RELAX NG built-in "string": preserves the value
// exactly, accepts no parameters.
func newStringType(name string) Datatype {
	return &baseDatatype{name: name, wsAction: wsPreserve}
}

// newTokenType builds the RELAX NG built-in "token": whitespace-collapses
// before comparison, accepts no parameters.
func newTokenType(name string) Datatype {
	return &baseDatatype{name: name, wsAction: wsCollapse}
}
