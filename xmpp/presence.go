/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import "github.com/ortuman/gjab/xmpp/jid"

// PresenceType represents a presence 'type' attribute value.
type PresenceType int

const (
	// AvailablePresence represents a presence without 'type' attribute.
	AvailablePresence PresenceType = iota

	// UnavailablePresence represents an 'unavailable' presence.
	UnavailablePresence

	// SubscribePresence represents a 'subscribe' presence.
	SubscribePresence

	// SubscribedPresence represents a 'subscribed' presence.
	SubscribedPresence

	// UnsubscribePresence represents an 'unsubscribe' presence.
	UnsubscribePresence

	// UnsubscribedPresence represents an 'unsubscribed' presence.
	UnsubscribedPresence

	// ProbePresence represents a 'probe' presence.
	ProbePresence

	// ErrorPresence represents an 'error' presence.
	ErrorPresence
)

// String returns the 'type' attribute value of t.
func (t PresenceType) String() string {
	switch t {
	case UnavailablePresence:
		return "unavailable"
	case SubscribePresence:
		return "subscribe"
	case SubscribedPresence:
		return "subscribed"
	case UnsubscribePresence:
		return "unsubscribe"
	case UnsubscribedPresence:
		return "unsubscribed"
	case ProbePresence:
		return "probe"
	case ErrorPresence:
		return "error"
	}
	return ""
}

// IsSubscription returns true for the four subscription management types.
func (t PresenceType) IsSubscription() bool {
	switch t {
	case SubscribePresence, SubscribedPresence, UnsubscribePresence, UnsubscribedPresence:
		return true
	}
	return false
}

func presenceType(tp string) (PresenceType, bool) {
	switch tp {
	case "", "available":
		return AvailablePresence, true
	case "unavailable":
		return UnavailablePresence, true
	case "subscribe":
		return SubscribePresence, true
	case "subscribed":
		return SubscribedPresence, true
	case "unsubscribe":
		return UnsubscribePresence, true
	case "unsubscribed":
		return UnsubscribedPresence, true
	case "probe":
		return ProbePresence, true
	case "error":
		return ErrorPresence, true
	}
	return 0, false
}

// ShowState represents presence show state.
type ShowState int

const (
	// OnlineShowState represents a presence without <show/> element.
	OnlineShowState ShowState = iota

	// AwayShowState represents 'away' presence show state.
	AwayShowState

	// ExtendedAwayShowState represents 'xa' presence show state.
	ExtendedAwayShowState

	// DoNotDisturbShowState represents 'dnd' presence show state.
	DoNotDisturbShowState

	// ChatShowState represents 'chat' presence show state.
	ChatShowState
)

// String returns show state string representation.
func (s ShowState) String() string {
	switch s {
	case AwayShowState:
		return "away"
	case ExtendedAwayShowState:
		return "xa"
	case DoNotDisturbShowState:
		return "dnd"
	case ChatShowState:
		return "chat"
	}
	return "online"
}

// ShowStateOf decodes the <show/> child of a presence element.
// An absent or unknown value maps to OnlineShowState.
func ShowStateOf(presence *Element) ShowState {
	show := presence.Elements().Child("show")
	if show == nil {
		return OnlineShowState
	}
	switch show.Text() {
	case "away":
		return AwayShowState
	case "chat":
		return ChatShowState
	case "xa":
		return ExtendedAwayShowState
	case "dnd":
		return DoNotDisturbShowState
	}
	return OnlineShowState
}

// NewPresence creates a presence element addressed to 'to'.
// A nil address produces a broadcast presence.
func NewPresence(to *jid.JID, tp PresenceType) *Element {
	p := NewElementName(PresenceName)
	if to != nil {
		p.SetTo(to.String())
	}
	if tp != AvailablePresence {
		p.SetType(tp.String())
	}
	return p
}
