package relaxng

import (
	"fmt"

	"github.com/mangalam-research/gosalve/datatype"
)

// PatternKind discriminates the closed set of pattern node variants from
// the data model (component H).
type PatternKind int

const (
	PEmpty PatternKind = iota
	PNotAllowed
	PText
	PChoice
	PGroup
	PInterleave
	POneOrMore
	PElement
	PAttribute
	PList
	PData
	PValue
	PRef
	PDefine
)

// patternNode is one arena slot of a compiled Pattern. Binary combinators
// use a/b as child indices; unary ones use a only. Element/Attribute store
// their name class directly since NamePattern is an immutable value type.
type patternNode struct {
	kind PatternKind
	a, b int

	name NamePattern

	datatype  datatype.Datatype
	params    datatype.ParsedParams
	exceptIdx int // -1 if the Data has no except

	value datatype.Value
	raw   string

	defineIdx  int // for PRef: arena index of the PDefine it targets
	defineName string

	location string
}

// Pattern is the immutable, arena-addressed graph produced once by
// Construct and shared read-only by every Walker derived from it —
// including walkers running concurrently on separate goroutines.
type Pattern struct {
	arena   []patternNode
	start   int
	defines map[string]int
}

type patternBuilder struct {
	arena       []patternNode
	defineIndex map[string]int
	resolver    *Resolver
	opts        *Options
}

// Construct implements component H: walk the simplified tree once,
// linking every ref to its define by arena index so the walker never
// consults a symbol table, and eagerly parsing every param/value so a
// malformed facet or lexical value fails at compile time with a source
// location rather than at validation time.
func Construct(root *Element, resolver *Resolver, opts *Options) (*Pattern, error) {
	if opts == nil {
		opts = defaultOptions()
	}
	b := &patternBuilder{defineIndex: map[string]int{}, resolver: resolver, opts: opts}

	if root.Name.Local != elGrammar || root.Name.Namespace != RNGNamespace {
		idx, err := b.build(root)
		if err != nil {
			return nil, err
		}
		return &Pattern{arena: b.arena, start: idx, defines: b.defineIndex}, nil
	}

	for _, c := range root.ChildElements() {
		if c.Name.Local != elDefine {
			continue
		}
		name, _ := c.Attr(attrName)
		if _, exists := b.defineIndex[name]; exists {
			continue
		}
		idx := b.alloc(patternNode{kind: PDefine, defineName: name, a: -1})
		b.defineIndex[name] = idx
	}
	for _, c := range root.ChildElements() {
		if c.Name.Local != elDefine {
			continue
		}
		name, _ := c.Attr(attrName)
		kids := c.ChildElements()
		if len(kids) != 1 {
			return nil, &SchemaValidationError{Msg: "define must have exactly one pattern child", Location: c.Location}
		}
		contentIdx, err := b.build(kids[0])
		if err != nil {
			return nil, err
		}
		b.arena[b.defineIndex[name]].a = contentIdx
	}

	startIdx := -1
	for _, c := range root.ChildElements() {
		if c.Name.Local != elStart {
			continue
		}
		kids := c.ChildElements()
		if len(kids) != 1 {
			return nil, &SchemaValidationError{Msg: "start must have exactly one pattern child", Location: c.Location}
		}
		idx, err := b.build(kids[0])
		if err != nil {
			return nil, err
		}
		startIdx = idx
	}
	if startIdx < 0 {
		return nil, &SchemaValidationError{Msg: "grammar has no start pattern"}
	}
	return &Pattern{arena: b.arena, start: startIdx, defines: b.defineIndex}, nil
}

func (b *patternBuilder) alloc(n patternNode) int {
	b.arena = append(b.arena, n)
	return len(b.arena) - 1
}

func (b *patternBuilder) build(e *Element) (int, error) {
	switch e.Name.Local {
	case elEmpty:
		return b.alloc(patternNode{kind: PEmpty}), nil
	case elNotAllowed:
		return b.alloc(patternNode{kind: PNotAllowed}), nil
	case elText:
		return b.alloc(patternNode{kind: PText}), nil
	case elChoice, elGroup, elInterleave:
		return b.buildNary(e)
	case elOneOrMore:
		kids := e.ChildElements()
		if len(kids) != 1 {
			return 0, &SchemaValidationError{Msg: "oneOrMore must have exactly one pattern child", Location: e.Location}
		}
		inner, err := b.build(kids[0])
		if err != nil {
			return 0, err
		}
		return b.alloc(patternNode{kind: POneOrMore, a: inner}), nil
	case elList:
		kids := e.ChildElements()
		if len(kids) != 1 {
			return 0, &SchemaValidationError{Msg: "list must have exactly one pattern child", Location: e.Location}
		}
		inner, err := b.build(kids[0])
		if err != nil {
			return 0, err
		}
		return b.alloc(patternNode{kind: PList, a: inner}), nil
	case elElement, elAttribute:
		kids := e.ChildElements()
		if len(kids) != 2 {
			return 0, &SchemaValidationError{Msg: fmt.Sprintf("%s must have a name class and exactly one content pattern", e.Name.Local), Location: e.Location}
		}
		np, err := b.buildNameClass(kids[0], e.NS)
		if err != nil {
			return 0, err
		}
		content, err := b.build(kids[1])
		if err != nil {
			return 0, err
		}
		kind := PElement
		if e.Name.Local == elAttribute {
			kind = PAttribute
		}
		return b.alloc(patternNode{kind: kind, name: np, a: content}), nil
	case elData:
		return b.buildData(e)
	case elValue:
		return b.buildValue(e)
	case elRef:
		name, _ := e.Attr(attrName)
		idx, ok := b.defineIndex[name]
		if !ok {
			return 0, &SchemaValidationError{Msg: fmt.Sprintf("reference to undefined pattern %q", name), Location: e.Location}
		}
		return b.alloc(patternNode{kind: PRef, defineIdx: idx}), nil
	}
	return 0, &SchemaValidationError{Msg: fmt.Sprintf("unexpected schema element %q in pattern position", e.Name.Local), Location: e.Location}
}

func (b *patternBuilder) buildNary(e *Element) (int, error) {
	kids := e.ChildElements()
	if len(kids) == 0 {
		return b.alloc(patternNode{kind: PNotAllowed}), nil
	}
	kind := PChoice
	switch e.Name.Local {
	case elGroup:
		kind = PGroup
	case elInterleave:
		kind = PInterleave
	}
	idx, err := b.build(kids[0])
	if err != nil {
		return 0, err
	}
	for _, k := range kids[1:] {
		rhs, err := b.build(k)
		if err != nil {
			return 0, err
		}
		idx = b.alloc(patternNode{kind: kind, a: idx, b: rhs})
	}
	return idx, nil
}

func (b *patternBuilder) buildData(e *Element) (int, error) {
	typeName, _ := e.Attr(attrType)
	dt, ok := datatype.Default().Lookup(e.DatatypeLibrary, typeName)
	if !ok {
		if err := b.incompleteType(e, typeName); err != nil {
			return 0, err
		}
		dt, _ = datatype.Default().Lookup(datatype.BuiltinURI, "token")
	}
	var params []datatype.Param
	exceptIdx := -1
	for _, k := range e.ChildElements() {
		switch k.Name.Local {
		case elParam:
			name, _ := k.Attr(attrName)
			params = append(params, datatype.Param{Name: name, Value: k.TextContent()})
		case elExcept:
			ekids := k.ChildElements()
			if len(ekids) != 1 {
				return 0, &SchemaValidationError{Msg: "except must have exactly one pattern child", Location: k.Location}
			}
			idx, err := b.build(ekids[0])
			if err != nil {
				return 0, err
			}
			exceptIdx = idx
		}
	}
	parsed, perr := dt.ParseParams(params)
	if perr != nil {
		return 0, &SchemaValidationError{Msg: perr.Error(), Location: e.Location}
	}
	return b.alloc(patternNode{kind: PData, datatype: dt, params: parsed, exceptIdx: exceptIdx}), nil
}

func (b *patternBuilder) buildValue(e *Element) (int, error) {
	typeName, _ := e.Attr(attrType)
	dt, ok := datatype.Default().Lookup(e.DatatypeLibrary, typeName)
	if !ok {
		if err := b.incompleteType(e, typeName); err != nil {
			return 0, err
		}
		dt, _ = datatype.Default().Lookup(datatype.BuiltinURI, "token")
	}
	raw := e.TextContent()
	val, verr := dt.ParseValue(raw, b.resolver)
	if verr != nil {
		return 0, &SchemaValidationError{Msg: verr.Msg, Location: e.Location}
	}
	return b.alloc(patternNode{kind: PValue, datatype: dt, raw: raw, value: val}), nil
}

func (b *patternBuilder) incompleteType(e *Element, typeName string) error {
	msg := fmt.Sprintf("unimplemented datatype %q in library %q", typeName, e.DatatypeLibrary)
	switch b.opts.IncompleteTypePolicy {
	case PolicyError:
		return &SchemaValidationError{Msg: msg, Location: e.Location}
	case PolicyWarn:
		b.opts.Logger.Warnf("%s (%s)", msg, e.Location)
	}
	return nil
}

// buildNameClass lowers a name-class element (name/nsName/anyName/choice
// of these, or an except wrapper) into the component-C sum type. An nsName
// without its own ns= uses the namespace it inherits (Element.NS, computed
// in Step 1); anyName always ranges over every namespace. The second
// parameter is not used.
func (b *patternBuilder) buildNameClass(e *Element, _ string) (NamePattern, error) {
	switch e.Name.Local {
	case elName:
		ns, _ := e.Attr("resolvedNS")
		return Name{NS: ns, Local: e.TextContent()}, nil
	case elNsName:
		ns, ok := e.Attr(attrNS)
		if !ok {
			ns = e.NS
		}
		var except NamePattern
		for _, k := range e.ChildElements() {
			if k.Name.Local == elExcept {
				ek, err := b.buildExceptNameClass(k)
				if err != nil {
					return nil, err
				}
				except = ek
			}
		}
		return NsName{NS: ns, Except: except}, nil
	case elAnyName:
		var except NamePattern
		for _, k := range e.ChildElements() {
			if k.Name.Local == elExcept {
				ek, err := b.buildExceptNameClass(k)
				if err != nil {
					return nil, err
				}
				except = ek
			}
		}
		return AnyName{Except: except}, nil
	case elChoice:
		kids := e.ChildElements()
		if len(kids) == 0 {
			return nil, &SchemaValidationError{Msg: "empty name-class choice", Location: e.Location}
		}
		p, err := b.buildNameClass(kids[0], "")
		if err != nil {
			return nil, err
		}
		for _, k := range kids[1:] {
			rhs, err := b.buildNameClass(k, "")
			if err != nil {
				return nil, err
			}
			p = NameChoice{A: p, B: rhs}
		}
		return p, nil
	}
	return nil, &SchemaValidationError{Msg: fmt.Sprintf("unexpected name-class element %q", e.Name.Local), Location: e.Location}
}

func (b *patternBuilder) buildExceptNameClass(except *Element) (NamePattern, error) {
	kids := except.ChildElements()
	if len(kids) == 0 {
		return nil, &SchemaValidationError{Msg: "empty except", Location: except.Location}
	}
	p, err := b.buildNameClass(kids[0], "")
	if err != nil {
		return nil, err
	}
	for _, k := range kids[1:] {
		rhs, err := b.buildNameClass(k, "")
		if err != nil {
			return nil, err
		}
		p = NameChoice{A: p, B: rhs}
	}
	return p, nil
}
