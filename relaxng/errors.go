package relaxng

import (
	"fmt"
	"strings"

	"github.com/mangalam-research/gosalve/datatype"
)

// Unresolver pretty-prints an expanded (ns, local) name using a
// caller-supplied prefix mapping, satisfied by *Resolver.
type Unresolver interface {
	Format(ns, local string) string
}

// SchemaValidationError is raised by the simplifier/constructor: dangling
// reference, illegal parentRef, illegal content placement, unknown
// datatype library, and so on; those are fatal for compilation. The Walker
// also returns it, as a per-event error after which validation continues,
// for text that is not allowed and for content still incomplete at an end
// tag or at End.
type SchemaValidationError struct {
	Msg      string
	Location string
}

func (e *SchemaValidationError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s: %s", e.Location, e.Msg)
	}
	return e.Msg
}

// ElementNameError, AttributeNameError, AttributeValueError, ChoiceError
// are walker-side errors, each carrying one or more name patterns so the
// caller can pretty-print with a prefix mapping.
type ElementNameError struct {
	Msg      string
	Expected []NamePattern
	Got      Name
}

func (e *ElementNameError) Error() string        { return e.Msg }
func (e *ElementNameError) Names() []NamePattern { return e.Expected }
func (e *ElementNameError) Format(u Unresolver) string {
	return formatNameError("unexpected element", u, e.Got, e.Expected)
}

type AttributeNameError struct {
	Msg      string
	Expected []NamePattern
	Got      Name
}

func (e *AttributeNameError) Error() string        { return e.Msg }
func (e *AttributeNameError) Names() []NamePattern { return e.Expected }
func (e *AttributeNameError) Format(u Unresolver) string {
	return formatNameError("unexpected attribute", u, e.Got, e.Expected)
}

type AttributeValueError struct {
	Msg  string
	Name Name
}

func (e *AttributeValueError) Error() string        { return e.Msg }
func (e *AttributeValueError) Names() []NamePattern { return []NamePattern{e.Name} }
func (e *AttributeValueError) Format(u Unresolver) string {
	return fmt.Sprintf("invalid value for attribute %s: %s", u.Format(e.Name.NS, e.Name.Local), e.Msg)
}

type ChoiceError struct {
	Msg      string
	Expected []NamePattern
}

func (e *ChoiceError) Error() string        { return e.Msg }
func (e *ChoiceError) Names() []NamePattern { return e.Expected }
func (e *ChoiceError) Format(u Unresolver) string {
	var names []string
	for _, p := range e.Expected {
		if n, ok := p.(Name); ok {
			names = append(names, u.Format(n.NS, n.Local))
		}
	}
	if len(names) == 0 {
		return "no branch of the choice matched"
	}
	return fmt.Sprintf("no branch of the choice matched, expected one of: %s", strings.Join(names, ", "))
}

func formatNameError(kind string, u Unresolver, got Name, expected []NamePattern) string {
	var names []string
	for _, p := range expected {
		if n, ok := p.(Name); ok {
			names = append(names, u.Format(n.NS, n.Local))
		}
	}
	gotName := u.Format(got.NS, got.Local)
	if len(names) == 0 {
		return fmt.Sprintf("%s %s", kind, gotName)
	}
	return fmt.Sprintf("%s %s, expected one of: %s", kind, gotName, strings.Join(names, ", "))
}

// SequencingError is a client-use error (§7.3): duplicate leave_start_tag/
// attribute_value, end_tag without matching start, or similar caller
// mis-sequencing — never a document defect.
type SequencingError struct {
	Msg string
}

func (e *SequencingError) Error() string { return e.Msg }

// reexported datatype error aliases so callers of this package never need
// to import datatype directly just to type-switch on value/param errors.
type (
	ParamError            = datatype.ParamError
	ParameterParsingError = datatype.ParameterParsingError
	ValueError            = datatype.ValueError
	ValueValidationError  = datatype.ValueValidationError
)
