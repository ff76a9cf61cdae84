/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import "strings"

// NewIQ creates an <iq/> element. When namespace is not empty a <query/>
// child bound to it is appended.
func NewIQ(tp IQType, id string, namespace string) *Element {
	iq := NewElementName(IQName)
	iq.SetType(tp.String())
	if len(id) > 0 {
		iq.SetID(id)
	}
	if len(namespace) > 0 {
		iq.AppendElement(NewElementNamespace("query", namespace))
	}
	return iq
}

// Query returns the <query/> child of an info-query, or nil.
func Query(iq *Element) *Element {
	return iq.Elements().Child("query")
}

// ErrorText extracts the error code and human readable text carried by
// the <error/> child of a stanza. Both legacy (text content) and
// condition based errors are understood; ok is false if no <error/> child exists.
func ErrorText(stanza *Element) (code, text string, ok bool) {
	errEl := stanza.Elements().Child("error")
	if errEl == nil {
		return "", "", false
	}
	code = errEl.Attributes().Get("code")
	if text = strings.TrimSpace(errEl.Text()); len(text) > 0 {
		return code, text, true
	}
	if t := errEl.Elements().Child("text"); t != nil && len(strings.TrimSpace(t.Text())) > 0 {
		return code, strings.TrimSpace(t.Text()), true
	}
	if all := errEl.Elements().All(); len(all) > 0 {
		return code, all[0].Name(), true
	}
	return code, "", true
}
