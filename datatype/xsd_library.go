package datatype

// registerXSD populates the XML Schema datatype library
// (http://www.w3.org/2001/XMLSchema-datatypes) named in spec.md §4.B.
func (r *Registry) registerXSD() {
	reg := func(dt Datatype) { r.Register(XSDLibURI, dt) }

	reg(newXSDString("string", wsPreserve, nil, false))
	reg(newXSDString("normalizedString", wsReplace, nil, false))
	reg(newXSDString("token", wsCollapse, nil, false))
	reg(newXSDString("language", wsCollapse, languageLexical, false))
	reg(newXSDString("Name", wsCollapse, nameLexical, false))
	reg(newXSDString("NCName", wsCollapse, ncNameLexical, false))
	reg(newXSDString("NMTOKEN", wsCollapse, nmtokenLexical, false))
	reg(newXSDString("NMTOKENS", wsCollapse, nmtokenLexical, true))
	reg(newXSDString("ID", wsCollapse, ncNameLexical, false))
	reg(newXSDString("IDREF", wsCollapse, ncNameLexical, false))
	reg(newXSDString("IDREFS", wsCollapse, ncNameLexical, true))
	reg(newXSDString("ENTITY", wsCollapse, ncNameLexical, false))
	reg(newXSDString("ENTITIES", wsCollapse, ncNameLexical, true))

	reg(newDecimalType("decimal"))
	for _, name := range []string{
		"integer", "nonPositiveInteger", "negativeInteger", "nonNegativeInteger",
		"positiveInteger", "long", "int", "short", "byte",
		"unsignedLong", "unsignedInt", "unsignedShort", "unsignedByte",
	} {
		reg(newIntegerType(name))
	}

	reg(newBoolType("boolean"))
	reg(newFloatType("float", 32))
	reg(newFloatType("double", 64))

	reg(newHexBinaryType("hexBinary"))
	reg(newBase64BinaryType("base64Binary"))

	reg(newQNameType("QName"))
	reg(newQNameType("NOTATION"))

	for name := range dateTimeFieldPatterns {
		reg(newDateTimeType(name))
	}

	reg(newAnyURIType("anyURI"))
}
