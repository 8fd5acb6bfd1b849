package relaxng

// EventKind identifies one of the nine event shapes the walker accepts.
type EventKind int

const (
	EnterContext EventKind = iota
	DefinePrefixEvent
	EnterStartTag
	AttributeName
	AttributeValue
	LeaveStartTag
	TextEvent
	EndTag
	LeaveContext
)

// Event is a single step fed to a Walker. It is a plain comparable struct
// deliberately: two events built from equal payloads compare equal with
// Go's native ==, which is what gives "cache events by (kind, payload)"
// for free, with no hand-rolled intern table. Walker.Possible reports name
// patterns rather than Events and drops any name pattern it has already
// listed.
type Event struct {
	Kind   EventKind
	NS     string
	Local  string
	Value  string
	Prefix string
}

func NewEnterContext() Event                { return Event{Kind: EnterContext} }
func NewLeaveContext() Event                { return Event{Kind: LeaveContext} }
func NewDefinePrefix(prefix, uri string) Event { return Event{Kind: DefinePrefixEvent, Prefix: prefix, Value: uri} }
func NewEnterStartTag(ns, local string) Event { return Event{Kind: EnterStartTag, NS: ns, Local: local} }
func NewAttributeName(ns, local string) Event { return Event{Kind: AttributeName, NS: ns, Local: local} }
func NewAttributeValue(value string) Event  { return Event{Kind: AttributeValue, Value: value} }
func NewLeaveStartTag() Event                { return Event{Kind: LeaveStartTag} }
func NewText(value string) Event            { return Event{Kind: TextEvent, Value: value} }
func NewEndTag(ns, local string) Event      { return Event{Kind: EndTag, NS: ns, Local: local} }

// PossibleSet is the result of Walker.Possible(): for name-bearing events
// it reports name patterns, not literal names, per the data model.
type PossibleSet struct {
	CanEnterContext  bool
	CanLeaveContext  bool
	CanLeaveStartTag bool
	CanEndTag        bool
	CanText          bool
	ElementNames     []NamePattern
	AttributeNames   []NamePattern
}
