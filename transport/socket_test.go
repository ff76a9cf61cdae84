/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package transport

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSocketConn struct {
	r      *bytes.Buffer
	w      *bytes.Buffer
	closed bool
}

func newFakeSocketConn() *fakeSocketConn {
	return &fakeSocketConn{
		r: new(bytes.Buffer),
		w: new(bytes.Buffer),
	}
}

func (c *fakeSocketConn) Read(b []byte) (n int, err error)   { return c.r.Read(b) }
func (c *fakeSocketConn) Write(b []byte) (n int, err error)  { return c.w.Write(b) }
func (c *fakeSocketConn) Close() error                       { c.closed = true; return nil }
func (c *fakeSocketConn) LocalAddr() net.Addr                { return localAddr }
func (c *fakeSocketConn) RemoteAddr() net.Addr               { return remoteAddr }
func (c *fakeSocketConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeSocketConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeSocketConn) SetWriteDeadline(t time.Time) error { return nil }

type fakeAddr int

var (
	localAddr  = fakeAddr(1)
	remoteAddr = fakeAddr(2)
)

func (a fakeAddr) Network() string { return "net" }
func (a fakeAddr) String() string  { return "str" }

func TestSocket(t *testing.T) {
	buff := make([]byte, ReadBufferSize)
	conn := newFakeSocketConn()
	st := NewSocketTransport(conn)

	require.Nil(t, st.WriteString("<stream:stream>"))
	require.Equal(t, "<stream:stream>", conn.w.String())

	_, err := st.Write([]byte("<presence/>"))
	require.Nil(t, err)
	require.Equal(t, "<stream:stream><presence/>", conn.w.String())

	conn.r.WriteString("<iq type='result' id='1'/>")
	n, err := st.Read(buff)
	require.Nil(t, err)
	require.Equal(t, "<iq type='result' id='1'/>", string(buff[:n]))

	st.Close()
	require.True(t, conn.closed)
}

func TestSocket_BoundedRead(t *testing.T) {
	conn := newFakeSocketConn()
	st := NewSocketTransport(conn)

	conn.r.Write(bytes.Repeat([]byte("a"), ReadBufferSize*2))
	n, err := st.Read(make([]byte, ReadBufferSize*2))
	require.Nil(t, err)
	require.True(t, n <= ReadBufferSize)
}
