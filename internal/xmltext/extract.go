// Package xmltext flattens XML documents into their readable text.
package xmltext

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"legal-llama/internal/domain"
)

// Element is a node of a parsed document. Text is the character data before
// the first child; Tail is the character data after the element's end tag, up
// to the next sibling or the parent's end tag.
type Element struct {
	Name     xml.Name
	Text     string
	Tail     string
	Children []*Element
}

// Parse builds an element tree from an XML document. Documents without an
// encoding declaration must be UTF-8; declared charsets are decoded to UTF-8.
func Parse(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Element
		stack []*Element
		text  *strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, fmt.Errorf("%w: multiple root elements", domain.ErrParse)
			}
			flush(stack, text)
			el := &Element{Name: t.Name}
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			text = &strings.Builder{}
		case xml.EndElement:
			flush(stack, text)
			stack = stack[:len(stack)-1]
			text = &strings.Builder{}
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("%w: text outside the root element", domain.ErrParse)
				}
				continue
			}
			text.Write(t)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: no root element", domain.ErrParse)
	}
	return root, nil
}

// flush assigns the pending character data to the open element's Text when it
// has no children yet, otherwise to the Tail of its last child.
func flush(stack []*Element, text *strings.Builder) {
	if len(stack) == 0 || text == nil || text.Len() == 0 {
		return
	}
	cur := stack[len(stack)-1]
	if n := len(cur.Children); n > 0 {
		cur.Children[n-1].Tail += text.String()
		return
	}
	cur.Text += text.String()
}

// Extract returns the element's text followed, for each child in document
// order, by the child's extracted text and its tail.
func Extract(el *Element) string {
	if el == nil {
		return ""
	}
	var b strings.Builder
	write(&b, el)
	return b.String()
}

func write(b *strings.Builder, el *Element) {
	b.WriteString(el.Text)
	for _, child := range el.Children {
		write(b, child)
		b.WriteString(child.Tail)
	}
}

// ExtractBytes parses data and returns its flattened text.
func ExtractBytes(data []byte) (string, error) {
	root, err := Parse(data)
	if err != nil {
		return "", err
	}
	return Extract(root), nil
}
