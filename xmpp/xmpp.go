/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import "github.com/pkg/errors"

const (
	// ClientNamespace is the default stanza namespace of a client stream.
	ClientNamespace = "jabber:client"

	// StreamNamespace is the namespace bound to the 'stream' prefix.
	StreamNamespace = "http://etherx.jabber.org/streams"

	// AuthNamespace is the legacy non-SASL authentication namespace.
	AuthNamespace = "jabber:iq:auth"

	// RosterNamespace is the roster query namespace.
	RosterNamespace = "jabber:iq:roster"

	// StreamName is the qualified name of the stream root element.
	StreamName = "stream:stream"

	// StreamErrorName is the qualified name of a stream level error.
	StreamErrorName = "stream:error"
)

// ErrStreamClosedByPeer is reported when the remote entity closes the stream.
var ErrStreamClosedByPeer = errors.New("xmpp: stream closed by peer")
