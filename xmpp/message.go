/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import "github.com/ortuman/gjab/xmpp/jid"

// MessageType represents a message 'type' attribute value.
type MessageType int

const (
	// NormalMessage represents a 'normal' (or untyped) message.
	NormalMessage MessageType = iota

	// ChatMessage represents a 'chat' message.
	ChatMessage

	// GroupChatMessage represents a 'groupchat' message.
	GroupChatMessage

	// HeadlineMessage represents a 'headline' message.
	HeadlineMessage

	// ErrorMessage represents an 'error' message.
	ErrorMessage

	// UnknownMessage represents any other 'type' value.
	UnknownMessage
)

// String returns the 'type' attribute value of t.
func (t MessageType) String() string {
	switch t {
	case NormalMessage:
		return "normal"
	case ChatMessage:
		return "chat"
	case GroupChatMessage:
		return "groupchat"
	case HeadlineMessage:
		return "headline"
	case ErrorMessage:
		return "error"
	}
	return "unknown"
}

func messageType(tp string) MessageType {
	switch tp {
	case "", "normal":
		return NormalMessage
	case "chat":
		return ChatMessage
	case "groupchat":
		return GroupChatMessage
	case "headline":
		return HeadlineMessage
	case "error":
		return ErrorMessage
	}
	return UnknownMessage
}

// NewMessage creates a message element addressed to 'to'.
// The <body/> child is omitted when body is empty.
func NewMessage(to *jid.JID, tp MessageType, body string) *Element {
	m := NewElementName(MessageName)
	m.SetTo(to.String())
	m.SetType(tp.String())
	if len(body) > 0 {
		m.AppendNewElement("body").InsertText(body)
	}
	return m
}

// Body returns the text of the <body/> child and whether it is present.
func Body(stanza *Element) (string, bool) {
	b := stanza.Elements().Child("body")
	if b == nil {
		return "", false
	}
	return b.Text(), true
}
