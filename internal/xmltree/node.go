// Package xmltree holds a generic XML node tree for CBECC documents.
//
// CBECC schemas are large and revision-dependent, so documents are
// parsed into a generic tree and content is extracted from known paths
// instead of maintaining struct definitions for every schema year.
// Property values appear attribute-encoded in newer files and as child
// element text in older ones; Prop checks both.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Node is one element in the parsed tree.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []*Node    `xml:",any"`
}

// Parse decodes an XML document into a node tree.
func Parse(data []byte) (*Node, error) {
	var root Node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return &root, nil
}

// Local returns the element's local tag name.
func (n *Node) Local() string {
	return n.XMLName.Local
}

// Attr returns the named attribute value, or "".
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// SetAttr sets or replaces an attribute.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name.Local == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// RemoveAttr deletes an attribute if present, reporting whether it was.
func (n *Node) RemoveAttr(name string) bool {
	for i, a := range n.Attrs {
		if a.Name.Local == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Child returns the first direct child with the given local name.
func (n *Node) Child(local string) *Node {
	for _, c := range n.Children {
		if c.XMLName.Local == local {
			return c
		}
	}
	return nil
}

// AllChildren returns every direct child with the given local name.
func (n *Node) AllChildren(local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.XMLName.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the node's trimmed character data.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Content)
}

// Walk visits n and every descendant in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Descendants returns every descendant (excluding n) whose local name
// is in the given set, in document order.
func (n *Node) Descendants(locals ...string) []*Node {
	wanted := make(map[string]bool, len(locals))
	for _, l := range locals {
		wanted[l] = true
	}
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if wanted[c.XMLName.Local] {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Prop reads a property value, trying each name as an attribute first
// and then as a child element's text. The first non-empty hit wins.
func (n *Node) Prop(names ...string) string {
	for _, name := range names {
		if v := n.Attr(name); v != "" {
			return v
		}
	}
	for _, name := range names {
		if c := n.Child(name); c != nil {
			if v := c.Text(); v != "" {
				return v
			}
		}
	}
	return ""
}

// PropFloat reads a numeric property. Thousands separators are
// tolerated because some CBECC exports include them.
func (n *Node) PropFloat(names ...string) (float64, bool) {
	raw := n.Prop(names...)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// PropInt reads an integer property, accepting float-formatted values.
func (n *Node) PropInt(names ...string) (int, bool) {
	v, ok := n.PropFloat(names...)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// Name extracts the element's human name. Newer files use a Name
// attribute; older ones a <Name> or <n> child.
func (n *Node) Name() string {
	if v := n.Attr("Name"); v != "" {
		return strings.TrimSpace(v)
	}
	for _, tag := range []string{"Name", "n"} {
		if c := n.Child(tag); c != nil && c.Text() != "" {
			return c.Text()
		}
	}
	return ""
}

// ── Builder side ──────────────────────────────────────────────────────────────

// New creates an element node.
func New(tag string) *Node {
	return &Node{XMLName: xml.Name{Local: tag}}
}

// Add creates a child element and appends it.
func (n *Node) Add(tag string) *Node {
	c := New(tag)
	n.Children = append(n.Children, c)
	return c
}

// AddText creates a child element holding text content.
func (n *Node) AddText(tag, text string) *Node {
	c := n.Add(tag)
	c.Content = text
	return c
}

// Marshal renders the tree as an indented XML document with a
// declaration header.
func Marshal(root *Node) ([]byte, error) {
	body, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal xml: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
