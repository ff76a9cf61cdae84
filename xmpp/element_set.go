/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

// ElementSet interface represents a read-only set of XML sub elements.
type ElementSet interface {
	// Children returns all elements identified by name.
	// Returns an empty array if no elements are found.
	Children(name string) []*Element

	// Child returns first element identified by name.
	// Returns nil if no element is found.
	Child(name string) *Element

	// ChildNamespace returns first element identified by name and namespace.
	// Returns nil if no element is found.
	ChildNamespace(name, namespace string) *Element

	// All returns a list of all child nodes.
	All() []*Element

	// Count returns child elements count.
	Count() int
}

type elementSet []*Element

func (es elementSet) Children(name string) []*Element {
	var ret []*Element
	for _, e := range es {
		if e.Name() == name {
			ret = append(ret, e)
		}
	}
	return ret
}

func (es elementSet) Child(name string) *Element {
	for _, e := range es {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

func (es elementSet) ChildNamespace(name string, namespace string) *Element {
	for _, e := range es {
		if e.Name() == name && e.Namespace() == namespace {
			return e
		}
	}
	return nil
}

func (es elementSet) All() []*Element {
	return es
}

func (es elementSet) Count() int {
	return len(es)
}
