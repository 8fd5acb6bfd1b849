package relaxng

import (
	"strings"
	"sync"

	"github.com/mangalam-research/gosalve/datatype"
)

// rnode is the walker's runtime view of a pattern: a fresh, heap-allocated
// value tree built from the compiled, immutable Pattern arena. Every
// derivative step allocates new rnodes rather than mutating existing
// ones, so two Walkers that share a chain of rnodes after Clone can each
// advance independently with no data race — the only write to an rnode
// after it is built is a PRef node's resolved cache, filled once under
// resolveOnce.
type rnode struct {
	kind PatternKind
	a, b *rnode

	name NamePattern

	datatype datatype.Datatype
	params   datatype.ParsedParams
	except   *rnode

	value datatype.Value
	raw   string

	defineIdx int
	pattern   *Pattern

	// resolved caches content()'s lazy dereference of a PRef node so that
	// every read of this particular rnode during one derivative step (first
	// firstElements/firstAttributes, then residual) walks the identical
	// sub-tree of pointers. Without this cache, two independent calls to
	// content() would allocate two structurally-equal but pointer-distinct
	// trees, and residual's pointer-identity match against the target
	// firstElements/firstAttributes found would never succeed.
	resolved    *rnode
	resolveOnce sync.Once
}

// wrap builds a fresh rnode for the static arena node at idx. It recurses
// eagerly into every structural child except Ref, whose target is only
// dereferenced lazily (on demand, once more per occurrence) so a
// recursive grammar (an element whose content refs back to its own
// define) doesn't unroll into an infinite tree at wrap time.
func (p *Pattern) wrap(idx int) *rnode {
	n := p.arena[idx]
	switch n.kind {
	case PChoice, PGroup, PInterleave:
		return &rnode{kind: n.kind, a: p.wrap(n.a), b: p.wrap(n.b)}
	case POneOrMore, PList:
		return &rnode{kind: n.kind, a: p.wrap(n.a)}
	case PElement, PAttribute:
		return &rnode{kind: n.kind, name: n.name, a: p.wrap(n.a)}
	case PData:
		var exc *rnode
		if n.exceptIdx >= 0 {
			exc = p.wrap(n.exceptIdx)
		}
		return &rnode{kind: n.kind, datatype: n.datatype, params: n.params, except: exc}
	case PValue:
		return &rnode{kind: n.kind, datatype: n.datatype, value: n.value, raw: n.raw}
	case PRef:
		return &rnode{kind: PRef, defineIdx: n.defineIdx, pattern: p}
	default: // PEmpty, PNotAllowed, PText
		return &rnode{kind: n.kind}
	}
}

// content resolves a Ref into the rnode of its define's content, building
// it on first use and caching the result on n so repeated derivative steps
// over the same rnode see the identical sub-tree — the only way to
// represent a cyclic grammar with finite memory while still letting
// residual() find the exact node firstElements/firstAttributes reported.
func (n *rnode) content() *rnode {
	if n.kind != PRef {
		return n
	}
	n.resolveOnce.Do(func() {
		target := n.pattern.arena[n.defineIdx]
		n.resolved = n.pattern.wrap(target.a)
	})
	return n.resolved
}

func rEmpty() *rnode      { return &rnode{kind: PEmpty} }
func rNotAllowed() *rnode { return &rnode{kind: PNotAllowed} }

func choiceOf(p, q *rnode) *rnode {
	if p.kind == PNotAllowed {
		return q
	}
	if q.kind == PNotAllowed {
		return p
	}
	return &rnode{kind: PChoice, a: p, b: q}
}

func groupOf(p, q *rnode) *rnode {
	if p.kind == PNotAllowed || q.kind == PNotAllowed {
		return rNotAllowed()
	}
	if p.kind == PEmpty {
		return q
	}
	if q.kind == PEmpty {
		return p
	}
	return &rnode{kind: PGroup, a: p, b: q}
}

func interleaveOf(p, q *rnode) *rnode {
	if p.kind == PNotAllowed || q.kind == PNotAllowed {
		return rNotAllowed()
	}
	if p.kind == PEmpty {
		return q
	}
	if q.kind == PEmpty {
		return p
	}
	return &rnode{kind: PInterleave, a: p, b: q}
}

func oneOrMoreOf(p *rnode) *rnode {
	if p.kind == PNotAllowed {
		return rNotAllowed()
	}
	return &rnode{kind: POneOrMore, a: p}
}

// nullable reports whether n can match with no events consumed at all.
func nullable(n *rnode) bool {
	switch n.kind {
	case PEmpty, PText:
		return true
	case PChoice:
		return nullable(n.a) || nullable(n.b)
	case PGroup, PInterleave:
		return nullable(n.a) && nullable(n.b)
	case POneOrMore:
		return nullable(n.a)
	case PList:
		return nullable(n.a)
	case PRef:
		return nullable(n.content())
	default: // NotAllowed, Element, Attribute, Data, Value
		return false
	}
}

// elementMatch is one Element node reachable at the "first" position of a
// content model without consuming any event, paired with the exact rnode
// identity so residual() can splice it out precisely (two structurally
// identical Element occurrences at different schema positions must be
// told apart).
type elementMatch struct {
	name   NamePattern
	target *rnode
	inner  *rnode
}

// firstElements collects every Element reachable without consuming an
// event, mirroring nullable's structural recursion.
func firstElements(n *rnode) []elementMatch {
	switch n.kind {
	case PChoice:
		return append(firstElements(n.a), firstElements(n.b)...)
	case PGroup:
		out := firstElements(n.a)
		if nullable(n.a) {
			out = append(out, firstElements(n.b)...)
		}
		return out
	case PInterleave:
		return append(firstElements(n.a), firstElements(n.b)...)
	case POneOrMore:
		return firstElements(n.a)
	case PElement:
		return []elementMatch{{name: n.name, target: n, inner: n.a}}
	case PRef:
		return firstElements(n.content())
	default:
		return nil
	}
}

type attributeMatch struct {
	name   NamePattern
	target *rnode
	inner  *rnode
}

// firstAttributes collects every Attribute reachable without consuming an
// event; unlike firstElements it also looks past Element boundaries is
// NOT done — attributes belong only to the start tag of the element whose
// content is currently being searched, one level at a time.
func firstAttributes(n *rnode) []attributeMatch {
	switch n.kind {
	case PChoice:
		return append(firstAttributes(n.a), firstAttributes(n.b)...)
	case PGroup:
		out := firstAttributes(n.a)
		if nullable(n.a) {
			out = append(out, firstAttributes(n.b)...)
		}
		return out
	case PInterleave:
		// Unlike Group, either side of an interleave may come first — both
		// operands run concurrently, so both sides' attributes are visible
		// regardless of whether the other side is nullable yet.
		return append(firstAttributes(n.a), firstAttributes(n.b)...)
	case POneOrMore:
		return firstAttributes(n.a)
	case PAttribute:
		return []attributeMatch{{name: n.name, target: n, inner: n.a}}
	case PRef:
		return firstAttributes(n.content())
	default:
		return nil
	}
}

// residual returns n with the single occurrence identified by target
// (found via pointer identity, as produced by firstElements/
// firstAttributes) replaced by Empty, simplifying as it goes.
func residual(n, target *rnode) *rnode {
	if n == target {
		return rEmpty()
	}
	switch n.kind {
	case PChoice:
		// Choosing one branch of a choice discards the other entirely — a
		// choice picks exactly one alternative, unlike group/interleave
		// where the unmatched side must still be satisfied afterward.
		if containsTarget(n.a, target) {
			return residual(n.a, target)
		}
		return residual(n.b, target)
	case PGroup:
		if containsTarget(n.a, target) {
			return groupOf(residual(n.a, target), n.b)
		}
		return groupOf(n.a, residual(n.b, target))
	case PInterleave:
		if containsTarget(n.a, target) {
			return interleaveOf(residual(n.a, target), n.b)
		}
		return interleaveOf(n.a, residual(n.b, target))
	case POneOrMore:
		return groupOf(residual(n.a, target), choiceOf(oneOrMoreOf(n.a), rEmpty()))
	case PRef:
		return residual(n.content(), target)
	}
	return n
}

// containsTarget is a conservative reachability check used only to pick
// which branch of a binary combinator to recurse into during residual;
// since callers only ever call residual with a target that firstElements/
// firstAttributes actually found, exactly one branch will contain it.
func containsTarget(n, target *rnode) bool {
	if n == target {
		return true
	}
	switch n.kind {
	case PChoice, PGroup, PInterleave:
		return containsTarget(n.a, target) || containsTarget(n.b, target)
	case POneOrMore:
		return containsTarget(n.a, target)
	case PRef:
		return containsTarget(n.content(), target)
	}
	return false
}

// textDeriv advances n past one text/attribute-value string, returning
// the residual pattern and any value errors found along the way. Patterns
// without Text/Data/Value reject non-whitespace text but silently ignore
// insignificant whitespace, per the mixed-content rule in §4.I.
func textDeriv(n *rnode, text string, ctx datatype.NameContext) (*rnode, []error) {
	switch n.kind {
	case PText:
		return n, nil
	case PChoice:
		ra, ea := textDeriv(n.a, text, ctx)
		rb, eb := textDeriv(n.b, text, ctx)
		if ra.kind != PNotAllowed {
			return ra, nil
		}
		if rb.kind != PNotAllowed {
			return rb, nil
		}
		return rNotAllowed(), append(ea, eb...)
	case PGroup:
		ra, ea := textDeriv(n.a, text, ctx)
		res := groupOf(ra, n.b)
		if res.kind != PNotAllowed {
			return res, ea
		}
		if nullable(n.a) {
			return textDeriv(n.b, text, ctx)
		}
		return rNotAllowed(), ea
	case PInterleave:
		ra, ea := textDeriv(n.a, text, ctx)
		res := interleaveOf(ra, n.b)
		if res.kind != PNotAllowed {
			return res, ea
		}
		rb, eb := textDeriv(n.b, text, ctx)
		return interleaveOf(n.a, rb), eb
	case POneOrMore:
		ra, ea := textDeriv(n.a, text, ctx)
		return groupOf(ra, choiceOf(oneOrMoreOf(n.a), rEmpty())), ea
	case PList:
		tokens := strings.Fields(text)
		cur := n.a
		var errs []error
		for _, tok := range tokens {
			var terrs []error
			cur, terrs = textDeriv(cur, tok, ctx)
			errs = append(errs, terrs...)
		}
		if !nullable(cur) {
			errs = append(errs, &ValueError{Facet: "list", Msg: "list content does not match its pattern"})
			return rNotAllowed(), errs
		}
		return rEmpty(), errs
	case PData:
		violations := n.datatype.Disallows(text, n.params, ctx)
		if len(violations) > 0 {
			errs := make([]error, len(violations))
			for i, v := range violations {
				errs[i] = v
			}
			return rNotAllowed(), errs
		}
		if n.except != nil {
			if er, _ := textDeriv(n.except, text, ctx); nullable(er) {
				return rNotAllowed(), []error{&ValueError{Facet: "except", Msg: "value matches the excepted pattern"}}
			}
		}
		return rEmpty(), nil
	case PValue:
		if n.datatype.Equal(text, n.value, ctx) {
			return rEmpty(), nil
		}
		return rNotAllowed(), []error{&ValueError{Msg: "value does not equal " + n.raw}}
	case PRef:
		return textDeriv(n.content(), text, ctx)
	default:
		if strings.TrimSpace(text) == "" {
			return n, nil
		}
		return rNotAllowed(), nil
	}
}

// Walker is the mutable validation cursor of component I.
type Walker struct {
	pattern  *Pattern
	resolver *Resolver

	content          *rnode
	inStartTag       bool
	sawLeaveStartTag bool
	pendingAttr      *rnode
	pendingAttrName  Name

	stack []*rnode
}

// NewWalker creates a walker positioned before any event, ready to see
// enter_start_tag for the pattern's start.
func NewWalker(p *Pattern, resolver *Resolver) *Walker {
	return &Walker{pattern: p, resolver: resolver, content: p.wrap(p.start)}
}

// Clone creates an independent walker sharing only the immutable pattern
// graph; mutating the clone never affects the original, and vice versa,
// because derivative steps never mutate rnodes in place (a Ref's cached
// content is written once, under sync.Once).
func (w *Walker) Clone() *Walker {
	c := &Walker{
		pattern:          w.pattern,
		resolver:         w.resolver.Clone(),
		content:          w.content,
		inStartTag:       w.inStartTag,
		sawLeaveStartTag: w.sawLeaveStartTag,
		pendingAttr:      w.pendingAttr,
		pendingAttrName:  w.pendingAttrName,
		stack:            append([]*rnode(nil), w.stack...),
	}
	return c
}

// FireEvent advances the walker by one event. A non-empty result reports
// validation errors but still leaves the walker in the best-effort state
// described by §4.I (error recovery: an unexpected element is treated as
// allowed so later events keep being checked against a sane state).
func (w *Walker) FireEvent(ev Event) []error {
	switch ev.Kind {
	case EnterContext:
		w.resolver.EnterContext()
		return nil
	case LeaveContext:
		if err := w.resolver.LeaveContext(); err != nil {
			return []error{err}
		}
		return nil
	case DefinePrefixEvent:
		if err := w.resolver.DefinePrefix(ev.Prefix, ev.Value); err != nil {
			return []error{err}
		}
		return nil
	case EnterStartTag:
		return w.enterStartTag(ev.NS, ev.Local)
	case AttributeName:
		return w.attributeName(ev.NS, ev.Local)
	case AttributeValue:
		return w.attributeValue(ev.Value)
	case LeaveStartTag:
		return w.leaveStartTag()
	case TextEvent:
		return w.text(ev.Value)
	case EndTag:
		return w.endTag()
	}
	return []error{&SequencingError{Msg: "unknown event kind"}}
}

func (w *Walker) enterStartTag(ns, local string) []error {
	if w.inStartTag {
		return []error{&SequencingError{Msg: "enter_start_tag fired while a start tag is still open"}}
	}
	matches := firstElements(w.content)
	var names []NamePattern
	var chosen *elementMatch
	for i := range matches {
		names = append(names, matches[i].name)
		if chosen == nil && matches[i].name.Match(ns, local) {
			chosen = &matches[i]
		}
	}
	if chosen == nil {
		// error recovery: keep validating using the current content as the
		// new element's content, so one bad element doesn't cascade.
		w.stack = append(w.stack, w.content)
		w.inStartTag = true
		w.sawLeaveStartTag = false
		return []error{&ElementNameError{
			Msg:      "unexpected element " + formatQName(ns, local),
			Expected: names,
			Got:      Name{NS: ns, Local: local},
		}}
	}
	outer := residual(w.content, chosen.target)
	w.stack = append(w.stack, outer)
	w.content = chosen.inner
	w.inStartTag = true
	w.sawLeaveStartTag = false
	return nil
}

func (w *Walker) attributeName(ns, local string) []error {
	if !w.inStartTag {
		return []error{&SequencingError{Msg: "attribute_name fired outside a start tag"}}
	}
	matches := firstAttributes(w.content)
	var names []NamePattern
	for _, m := range matches {
		names = append(names, m.name)
		if m.name.Match(ns, local) {
			w.content = residual(w.content, m.target)
			w.pendingAttr = m.inner
			w.pendingAttrName = Name{NS: ns, Local: local}
			return nil
		}
	}
	return []error{&AttributeNameError{
		Msg:      "unexpected attribute " + formatQName(ns, local),
		Expected: names,
		Got:      Name{NS: ns, Local: local},
	}}
}

func (w *Walker) attributeValue(value string) []error {
	if !w.inStartTag || w.pendingAttr == nil {
		return []error{&SequencingError{Msg: "attribute_value without a preceding attribute_name"}}
	}
	inner := w.pendingAttr
	name := w.pendingAttrName
	w.pendingAttr = nil
	res, errs := textDeriv(inner, value, w.resolver)
	if !nullable(res) && len(errs) == 0 {
		errs = []error{&AttributeValueError{Msg: "attribute value not permitted here", Name: name}}
	}
	return errs
}

func (w *Walker) leaveStartTag() []error {
	if !w.inStartTag {
		return []error{&SequencingError{Msg: "duplicate leave_start_tag"}}
	}
	remaining := firstAttributes(w.content)
	w.inStartTag = false
	w.sawLeaveStartTag = true
	if len(remaining) == 0 {
		return nil
	}
	var names []NamePattern
	for _, m := range remaining {
		names = append(names, m.name)
	}
	return []error{&AttributeNameError{Msg: "missing required attribute", Expected: names}}
}

func (w *Walker) text(value string) []error {
	res, errs := textDeriv(w.content, value, w.resolver)
	if res.kind != PNotAllowed {
		w.content = res
		return errs
	}
	if strings.TrimSpace(value) == "" {
		return errs
	}
	if len(errs) > 0 {
		// textDeriv already named the offending facet/value (e.g. a maxInclusive
		// violation); don't bury that under a generic duplicate.
		return errs
	}
	return append(errs, &SchemaValidationError{Msg: "text not allowed here"})
}

func (w *Walker) endTag() []error {
	if len(w.stack) == 0 {
		return []error{&SequencingError{Msg: "end_tag without a matching start"}}
	}
	outer := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	var errs []error
	if !nullable(w.content) {
		errs = append(errs, &SchemaValidationError{Msg: "element content incomplete at end tag"})
	}
	w.content = outer
	w.inStartTag = false
	return errs
}

// End reports failure if the walker isn't in a fully nullable state —
// typically called after the final leave_context/end_tag of the document.
func (w *Walker) End() []error {
	if len(w.stack) != 0 {
		return []error{&SequencingError{Msg: "document ended with open elements"}}
	}
	if !nullable(w.content) {
		return []error{&SchemaValidationError{Msg: "document incomplete: required content missing"}}
	}
	return nil
}

// Possible returns every event that can occur next without producing a
// validation error, reflecting state *between* events.
func (w *Walker) Possible() *PossibleSet {
	ps := &PossibleSet{
		CanEnterContext: true,
		CanLeaveContext: true,
	}
	seen := map[NamePattern]bool{}
	if w.inStartTag {
		for _, m := range firstAttributes(w.content) {
			if !seen[m.name] {
				seen[m.name] = true
				ps.AttributeNames = append(ps.AttributeNames, m.name)
			}
		}
		ps.CanLeaveStartTag = true
		return ps
	}
	for _, m := range firstElements(w.content) {
		if !seen[m.name] {
			seen[m.name] = true
			ps.ElementNames = append(ps.ElementNames, m.name)
		}
	}
	ps.CanText = true
	ps.CanEndTag = nullable(w.content) && len(w.stack) > 0
	return ps
}

func formatQName(ns, local string) string {
	if ns == "" {
		return local
	}
	return "{" + ns + "}" + local
}
