/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/ortuman/gjab/pool"
)

var bufPool = pool.NewBufferPool()

const (
	// MessageName represents "message" stanza name
	MessageName = "message"

	// PresenceName represents "presence" stanza name
	PresenceName = "presence"

	// IQName represents "iq" stanza name
	IQName = "iq"
)

// node is an element child: either a nested element or a text run.
type node struct {
	elem *Element
	text string
}

// Element represents a mutable XML node element.
// The element owns its children; there is no parent back-reference.
type Element struct {
	name  string
	attrs attributeSet
	nodes []node
}

// NewElementName creates an XML element instance with a given name.
func NewElementName(name string) *Element {
	return &Element{name: name}
}

// NewElementNamespace creates an XML element instance with a given name and namespace.
func NewElementNamespace(name, namespace string) *Element {
	return &Element{
		name:  name,
		attrs: attributeSet([]Attribute{{"xmlns", namespace}}),
	}
}

// Name returns XML node name.
func (e *Element) Name() string {
	return e.name
}

// SetName sets XML node name.
func (e *Element) SetName(name string) *Element {
	e.name = name
	return e
}

// Attributes returns XML node attributes.
func (e *Element) Attributes() AttributeSet {
	return e.attrs
}

// Attribute returns the value of label and whether it is present.
func (e *Element) Attribute(label string) (string, bool) {
	return e.attrs.Lookup(label)
}

// SetAttribute sets an XML node attribute (label=value).
func (e *Element) SetAttribute(label, value string) *Element {
	e.attrs.setAttribute(label, value)
	return e
}

// RemoveAttribute removes an XML node attribute.
func (e *Element) RemoveAttribute(label string) *Element {
	e.attrs.removeAttribute(label)
	return e
}

// Namespace returns 'xmlns' node attribute.
func (e *Element) Namespace() string { return e.attrs.Get("xmlns") }

// ID returns 'id' node attribute.
func (e *Element) ID() string { return e.attrs.Get("id") }

// From returns 'from' node attribute.
func (e *Element) From() string { return e.attrs.Get("from") }

// To returns 'to' node attribute.
func (e *Element) To() string { return e.attrs.Get("to") }

// Type returns 'type' node attribute.
func (e *Element) Type() string { return e.attrs.Get("type") }

// SetNamespace sets 'xmlns' node attribute.
func (e *Element) SetNamespace(namespace string) *Element { return e.SetAttribute("xmlns", namespace) }

// SetID sets 'id' node attribute.
func (e *Element) SetID(identifier string) *Element { return e.SetAttribute("id", identifier) }

// SetFrom sets 'from' node attribute.
func (e *Element) SetFrom(from string) *Element { return e.SetAttribute("from", from) }

// SetTo sets 'to' node attribute.
func (e *Element) SetTo(to string) *Element { return e.SetAttribute("to", to) }

// SetType sets 'type' node attribute.
func (e *Element) SetType(tp string) *Element { return e.SetAttribute("type", tp) }

// AppendElement appends a sub element.
func (e *Element) AppendElement(child *Element) *Element {
	e.nodes = append(e.nodes, node{elem: child})
	return e
}

// AppendNewElement creates a sub element named name, appends it
// and returns the newly created child.
func (e *Element) AppendNewElement(name string) *Element {
	child := NewElementName(name)
	e.AppendElement(child)
	return child
}

// InsertText appends a text run. Adjacent runs are coalesced.
func (e *Element) InsertText(data string) *Element {
	if len(data) == 0 {
		return e
	}
	if n := len(e.nodes); n > 0 && e.nodes[n-1].elem == nil {
		e.nodes[n-1].text += data
		return e
	}
	e.nodes = append(e.nodes, node{text: data})
	return e
}

// SetText replaces every text run by text.
func (e *Element) SetText(text string) *Element {
	filtered := e.nodes[:0]
	for _, n := range e.nodes {
		if n.elem != nil {
			filtered = append(filtered, n)
		}
	}
	e.nodes = filtered
	return e.InsertText(text)
}

// Text returns the concatenation of the element text runs.
// Returns an empty string if none is set.
func (e *Element) Text() string {
	var sb strings.Builder
	for _, n := range e.nodes {
		if n.elem == nil {
			sb.WriteString(n.text)
		}
	}
	return sb.String()
}

// Elements returns all instance's child elements, in document order.
func (e *Element) Elements() ElementSet {
	var es elementSet
	for _, n := range e.nodes {
		if n.elem != nil {
			es = append(es, n.elem)
		}
	}
	return es
}

// RemoveElements removes all child elements with a given name.
func (e *Element) RemoveElements(name string) *Element {
	filtered := e.nodes[:0]
	for _, n := range e.nodes {
		if n.elem == nil || n.elem.name != name {
			filtered = append(filtered, n)
		}
	}
	e.nodes = filtered
	return e
}

// Free recursively releases every owned child, leaving an empty element.
// It's safe on a partially built tree.
func (e *Element) Free() {
	for _, n := range e.nodes {
		if n.elem != nil {
			n.elem.Free()
		}
	}
	e.nodes = nil
	e.attrs = nil
}

// IsStanza returns true if element is an XMPP stanza.
func (e *Element) IsStanza() bool {
	switch e.name {
	case IQName, PresenceName, MessageName:
		return true
	}
	return false
}

// String returns a string representation of the element.
func (e *Element) String() string {
	buf := bufPool.Get()
	defer bufPool.Put(buf)

	e.ToXML(buf, true)
	return buf.String()
}

// ToXML serializes element to a raw XML representation.
// includeClosing determines if closing tag should be attached.
func (e *Element) ToXML(w io.Writer, includeClosing bool) {
	io.WriteString(w, "<")
	io.WriteString(w, e.name)

	for _, attr := range e.attrs {
		io.WriteString(w, " ")
		io.WriteString(w, attr.Label)
		io.WriteString(w, `="`)
		xml.EscapeText(w, []byte(attr.Value))
		io.WriteString(w, `"`)
	}
	if len(e.nodes) == 0 {
		if includeClosing {
			io.WriteString(w, "/>")
		} else {
			io.WriteString(w, ">")
		}
		return
	}
	io.WriteString(w, ">")
	for _, n := range e.nodes {
		if n.elem != nil {
			n.elem.ToXML(w, true)
		} else {
			xml.EscapeText(w, []byte(n.text))
		}
	}
	if includeClosing {
		io.WriteString(w, "</")
		io.WriteString(w, e.name)
		io.WriteString(w, ">")
	}
}
