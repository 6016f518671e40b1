// SPDX-License-Identifier: MPL-2.0

package element

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is a generic XML element: its name, attributes, direct character data
// and child elements. Element payloads are small, so the whole tree is kept.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:",any"`
	Text     string     `xml:",chardata"`
}

// ParseXML parses an already decoded document into its root Node.
// The declared encoding is ignored because the input is decoded text.
func ParseXML(text string) (*Node, error) {
	d := xml.NewDecoder(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root Node
	if err := d.Decode(&root); err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	return &root, nil
}

// Attr returns the value of the un-namespaced attribute with the given local name.
func (n *Node) Attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given name, or nil.
// An empty name.Space matches only un-namespaced children.
func (n *Node) Child(name xml.Name) *Node {
	for i := range n.Children {
		if n.Children[i].XMLName == name {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildrenNamed returns the direct children with the given local name in any namespace.
func (n *Node) ChildrenNamed(local string) []*Node {
	var out []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			out = append(out, &n.Children[i])
		}
	}
	return out
}
