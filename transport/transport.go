/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package transport

import (
	"io"
)

// Transport represents a client stream transport mechanism.
type Transport interface {
	io.ReadWriteCloser

	// WriteString writes a raw string to the transport.
	WriteString(s string) error
}
