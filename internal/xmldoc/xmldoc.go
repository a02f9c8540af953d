// Package xmldoc provides a small DOM over encoding/xml for the response
// shapes the Sonos protocol uses: find a child by exact tag name, read its
// text, read its attributes. Unknown attributes and extra siblings are
// ignored so new firmware fields never break parsing.
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/w4/soncon/internal/apperrors"
)

// Element is one node of a parsed XML tree.
type Element struct {
	Name       string
	Attributes map[string]string
	Children   []*Element
	text       string
}

// Parse reads a byte stream into an element tree rooted at the document
// element. A stream that is not well-formed XML is reported as a malformed
// document, distinct from lookups failing later on a well-formed tree.
func Parse(data []byte) (*Element, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var root *Element
	var stack []*Element

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParseWrap("malformed xml document", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			element := &Element{
				Name:       t.Name.Local,
				Attributes: make(map[string]string, len(t.Attr)),
			}
			for _, attr := range t.Attr {
				element.Attributes[attr.Name.Local] = attr.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, apperrors.NewParse("multiple document elements")
				}
				root = element
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, element)
			}
			stack = append(stack, element)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil {
		return nil, apperrors.NewParse("empty xml document")
	}
	return root, nil
}

// Child returns the first direct child with exactly the given tag name.
// Namespace prefixes are not considered; matching is on the local name.
func (e *Element) Child(name string) (*Element, error) {
	for _, child := range e.Children {
		if child.Name == name {
			return child, nil
		}
	}
	return nil, apperrors.NewParse("missing element " + name + " under " + e.Name)
}

// HasChild reports whether a direct child with the given tag name exists.
func (e *Element) HasChild(name string) bool {
	_, err := e.Child(name)
	return err == nil
}

// Text returns the trimmed character data of the element. Elements that
// carry no text at all are an error so required fields never default.
func (e *Element) Text() (string, error) {
	text := strings.TrimSpace(e.text)
	if text == "" {
		return "", apperrors.NewParse("element " + e.Name + " has no text content")
	}
	return text, nil
}

// ChildText resolves a child by name and returns its text in one step.
func (e *Element) ChildText(name string) (string, error) {
	child, err := e.Child(name)
	if err != nil {
		return "", err
	}
	return child.Text()
}

// Attr returns the value of the named attribute, or "" when absent.
func (e *Element) Attr(name string) string {
	return e.Attributes[name]
}
