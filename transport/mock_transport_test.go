/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package transport

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockTransport(t *testing.T) {
	mt := NewMockTransport()

	mt.SetReadBytes([]byte("abc"))
	b := make([]byte, 8)
	n, err := mt.Read(b)
	require.Nil(t, err)
	require.Equal(t, "abc", string(b[:n]))
	_, err = mt.Read(b)
	require.Equal(t, io.EOF, err)

	require.Nil(t, mt.WriteString("<a/>"))
	require.Equal(t, "<a/>", string(mt.ReadWrittenBytes()))
	require.Len(t, mt.ReadWrittenBytes(), 0)

	mt.Close()
	require.True(t, mt.IsClosed())
	require.NotNil(t, mt.WriteString("<b/>"))
}
