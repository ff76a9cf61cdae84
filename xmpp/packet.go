/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"github.com/ortuman/gjab/xmpp/jid"
	"github.com/pkg/errors"
)

// ErrMalformedPacket is the cause of every classification failure.
var ErrMalformedPacket = errors.New("xmpp: malformed packet")

// Kind represents a packet kind.
type Kind int

const (
	// MessageKind represents a <message/> packet.
	MessageKind Kind = iota + 1

	// PresenceKind represents a presence broadcast packet.
	PresenceKind

	// SubscriptionKind represents a presence subscription packet.
	SubscriptionKind

	// InfoQueryKind represents an <iq/> packet.
	InfoQueryKind
)

// String returns Kind string representation.
func (k Kind) String() string {
	switch k {
	case MessageKind:
		return "message"
	case PresenceKind:
		return "presence"
	case SubscriptionKind:
		return "subscription"
	case InfoQueryKind:
		return "iq"
	}
	return ""
}

// IQType represents an info-query sub-kind.
type IQType int

const (
	// GetIQ represents a 'get' IQ type.
	GetIQ IQType = iota + 1

	// SetIQ represents a 'set' IQ type.
	SetIQ

	// ResultIQ represents a 'result' IQ type.
	ResultIQ

	// ErrorIQ represents an 'error' IQ type.
	ErrorIQ
)

// String returns the 'type' attribute value of t.
func (t IQType) String() string {
	switch t {
	case GetIQ:
		return "get"
	case SetIQ:
		return "set"
	case ResultIQ:
		return "result"
	case ErrorIQ:
		return "error"
	}
	return ""
}

// Packet is a classified top level stanza.
type Packet struct {
	// Kind is the packet kind.
	Kind Kind

	// IQType is set for InfoQueryKind packets only.
	IQType IQType

	// PresenceType is set for PresenceKind and SubscriptionKind packets.
	PresenceType PresenceType

	// MessageType is set for MessageKind packets only.
	MessageType MessageType

	// ID is the correlation identifier, if present.
	ID string

	// From is the sender address. It's always set for messages and presences,
	// and may be nil for info-queries originated by the server.
	From *jid.JID

	// Stanza is the originating element.
	Stanza *Element
}

// HasID returns whether the packet carries a correlation identifier.
func (p *Packet) HasID() bool {
	_, ok := p.Stanza.Attribute("id")
	return ok
}

// NewPacket classifies a completed top level element.
func NewPacket(elem *Element) (*Packet, error) {
	p := &Packet{Stanza: elem, ID: elem.ID()}

	switch elem.Name() {
	case MessageName:
		p.Kind = MessageKind
		p.MessageType = messageType(elem.Type())

	case PresenceName:
		pt, ok := presenceType(elem.Type())
		if !ok {
			return nil, errors.Wrapf(ErrMalformedPacket, "invalid presence type: %s", elem.Type())
		}
		p.PresenceType = pt
		if pt.IsSubscription() {
			p.Kind = SubscriptionKind
		} else {
			p.Kind = PresenceKind
		}

	case IQName:
		p.Kind = InfoQueryKind
		p.IQType = iqType(elem.Type())

	default:
		return nil, errors.Wrapf(ErrMalformedPacket, "unrecognized stanza name: %s", elem.Name())
	}

	from, hasFrom := elem.Attribute("from")
	switch {
	case hasFrom:
		j, err := jid.NewWithString(from, false)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedPacket, "%s 'from' address %q: %v", elem.Name(), from, err)
		}
		p.From = j

	case p.Kind != InfoQueryKind:
		return nil, errors.Wrapf(ErrMalformedPacket, "%s without 'from' address", elem.Name())
	}
	return p, nil
}

func iqType(tp string) IQType {
	switch tp {
	case "get":
		return GetIQ
	case "set":
		return SetIQ
	case "result":
		return ResultIQ
	default:
		// unrecognized types degrade to error
		return ErrorIQ
	}
}
