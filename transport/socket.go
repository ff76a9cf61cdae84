/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package transport

import (
	"bufio"
	"io"
	"net"
)

// ReadBufferSize is the largest chunk a single read can return.
const ReadBufferSize = 4096

type socketTransport struct {
	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
}

// NewSocketTransport creates a socket class stream transport.
func NewSocketTransport(conn net.Conn) Transport {
	s := &socketTransport{
		conn: conn,
		br:   bufio.NewReaderSize(conn, ReadBufferSize),
		bw:   bufio.NewWriterSize(conn, ReadBufferSize),
	}
	return s
}

func (s *socketTransport) Read(p []byte) (n int, err error) {
	if len(p) > ReadBufferSize {
		p = p[:ReadBufferSize]
	}
	return s.br.Read(p)
}

func (s *socketTransport) Write(p []byte) (n int, err error) {
	if n, err = s.bw.Write(p); err != nil {
		return n, err
	}
	return n, s.bw.Flush()
}

func (s *socketTransport) WriteString(str string) error {
	if _, err := io.WriteString(s.bw, str); err != nil {
		return err
	}
	return s.bw.Flush()
}

func (s *socketTransport) Close() error {
	return s.conn.Close()
}
