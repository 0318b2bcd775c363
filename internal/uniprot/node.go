// Package uniprot reads UniProt XML catalogs into a generic element tree.
//
// The tree keeps element names fully qualified (namespace URI + local name)
// so callers compare tags with xml.Name equality instead of gluing prefixes
// onto strings.
package uniprot

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Namespace is the XML namespace of every element in a UniProt catalog.
const Namespace = "http://uniprot.org/uniprot"

// Node is one XML element: its qualified name, attributes, character data
// and child elements in document order.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Node     `xml:",any"`
}

// Document is a fully decoded catalog.
type Document struct {
	Root Node
}

// Parse decodes the whole catalog held by r into memory.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc.Root); err != nil {
		return nil, fmt.Errorf("uniprot: decode: %w", err)
	}
	return &doc, nil
}

// Name returns the qualified name of local inside namespace ns.
func Name(ns, local string) xml.Name {
	return xml.Name{Space: ns, Local: local}
}

// Child returns the first direct child with the given name, or nil.
func (n *Node) Child(name xml.Name) *Node {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		if n.Children[i].XMLName == name {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name in document order.
func (n *Node) ChildrenNamed(name xml.Name) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for i := range n.Children {
		if n.Children[i].XMLName == name {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// Attr returns the value of the first attribute with the given local name.
func (n *Node) Attr(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attrs {
		if attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}
