/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

// Attribute represents an XML node attribute (label=value).
type Attribute struct {
	Label string
	Value string
}

// AttributeSet interface represents a read-only set of XML attributes.
type AttributeSet interface {
	// Get returns the value of label, or an empty string if it is not present.
	Get(label string) string

	// Lookup returns the value of label and whether it is present.
	Lookup(label string) (string, bool)

	// All returns a copy of every attribute.
	All() []Attribute

	// Count returns attributes count.
	Count() int
}

type attributeSet []Attribute

func (as attributeSet) Get(label string) string {
	v, _ := as.Lookup(label)
	return v
}

func (as attributeSet) Lookup(label string) (string, bool) {
	for _, attr := range as {
		if attr.Label == label {
			return attr.Value, true
		}
	}
	return "", false
}

func (as attributeSet) All() []Attribute {
	ret := make([]Attribute, len(as))
	copy(ret, as)
	return ret
}

func (as attributeSet) Count() int {
	return len(as)
}

func (as *attributeSet) setAttribute(label, value string) {
	for i := 0; i < len(*as); i++ {
		if (*as)[i].Label == label {
			(*as)[i].Value = value
			return
		}
	}
	*as = append(*as, Attribute{label, value})
}

func (as *attributeSet) removeAttribute(label string) {
	for i := 0; i < len(*as); i++ {
		if (*as)[i].Label == label {
			*as = append((*as)[:i], (*as)[i+1:]...)
			return
		}
	}
}
