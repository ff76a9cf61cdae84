/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package session

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAlreadyConnected is returned by Connect when the session is not offline.
var ErrAlreadyConnected = errors.New("session: already connected")

// ErrOffline is the cause given to operations rejected because
// the session is offline.
var ErrOffline = errors.New("session: offline")

// ErrorKind classifies session failures.
type ErrorKind int

const (
	// TransportError represents a connect, read or write failure.
	TransportError ErrorKind = iota + 1

	// ParseError represents malformed XML received from the peer.
	ParseError

	// ProtocolError represents a protocol level failure.
	ProtocolError
)

// String returns ErrorKind string representation.
func (k ErrorKind) String() string {
	switch k {
	case TransportError:
		return "transport error"
	case ParseError:
		return "parse error"
	case ProtocolError:
		return "protocol error"
	}
	return ""
}

// Error represents a session error.
type Error struct {
	// Kind is the error class.
	Kind ErrorKind

	// Err is the underlying session error.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Cause returns the underlying error.
func (e *Error) Cause() error {
	return e.Err
}

// StreamError represents a <stream:error/> element sent by the peer.
type StreamError struct {
	// Condition is the defined error condition element name.
	Condition string

	// Text is the optional descriptive text.
	Text string
}

func (e *StreamError) Error() string {
	switch {
	case len(e.Text) > 0 && len(e.Condition) > 0:
		return fmt.Sprintf("stream error: %s (%s)", e.Condition, e.Text)
	case len(e.Text) > 0:
		return "stream error: " + e.Text
	case len(e.Condition) > 0:
		return "stream error: " + e.Condition
	}
	return "stream error"
}
