package relaxng

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// ParseSchema decodes RELAX NG XML syntax into the tree model of
// component F, the same way the teacher's xml.go builds its OrderedMap
// over encoding/xml.Decoder rather than hand-writing a tokenizer — the
// XML lexer itself is an external collaborator (spec.md §1), this is just
// the glue that adapts encoding/xml's token stream into our Element tree.
//
// The decoder's CharsetReader is wired to golang.org/x/text/encoding via
// htmlindex so a schema whose prolog declares a non-UTF-8 encoding (e.g.
// <?xml version="1.0" encoding="ISO-8859-1"?>) is transcoded instead of
// being fed to the XML tokenizer as raw, misinterpreted bytes.
func ParseSchema(data []byte, location string) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	var stack []*Element
	var root *Element
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, wrapXMLError(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := NewElement(t.Name.Space, t.Name.Local)
			el.Location = location
			for _, a := range t.Attr {
				// xmlns declarations are kept (unlike ordinary foreign
				// attributes) so Step 3 can rebuild the prefix scope needed
				// to resolve name="prefix:local" shorthand.
				el.Attrs = append(el.Attrs, Attr{Name: QName{Namespace: a.Name.Space, Local: a.Name.Local}, Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.AppendChild(el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &SchemaValidationError{Msg: "unbalanced end element", Location: location}
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].AppendText(string(t))
			}
		}
	}
	if root == nil {
		return nil, &SchemaValidationError{Msg: "empty document", Location: location}
	}
	return root, nil
}

func wrapXMLError(err error) error {
	return &SchemaValidationError{Msg: fmt.Sprintf("xml syntax error: %v", err)}
}

// stripWhitespaceOnlyText removes text nodes that are pure whitespace from
// every element except the ones where the data model says text is
// semantically meaningful (value, param, name).
func stripWhitespaceOnlyText(root *Element) {
	root.Walk(func(e *Element) {
		if e.Name.Local == elValue || e.Name.Local == elParam || e.Name.Local == elName {
			return
		}
		var kept []Node
		for _, c := range e.Children {
			if t, ok := c.(*Text); ok {
				if strings.TrimSpace(t.Value) == "" {
					continue
				}
			}
			kept = append(kept, c)
		}
		e.Children = kept
	})
}
