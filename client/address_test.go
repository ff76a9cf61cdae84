/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompleteJID(t *testing.T) {
	tcs := []struct {
		given    string
		expected string
	}{
		{"alice", "alice@jabber.com/gjab"},
		{"alice@jabber.org", "alice@jabber.org/gjab"},
		{"alice@jabber.org/home", "alice@jabber.org/home"},
		{"alice/home", "alice@jabber.com/home"},
	}
	for _, tc := range tcs {
		j, err := CompleteJID(tc.given, "jabber.com", "gjab")
		require.Nil(t, err)
		require.Equal(t, tc.expected, j.String(), tc.given)
	}
	j, err := CompleteJID("alice", "jabber.com", "")
	require.Nil(t, err)
	require.Equal(t, "alice@jabber.com", j.String())

	_, err = CompleteJID("alice@", "jabber.com", "gjab")
	require.NotNil(t, err)
}

func TestCompleteBare(t *testing.T) {
	j, err := completeBare("bob", "jabber.org")
	require.Nil(t, err)
	require.Equal(t, "bob@jabber.org", j.String())

	j, err = completeBare("bob@example.org/home", "jabber.org")
	require.Nil(t, err)
	require.Equal(t, "bob@example.org", j.String())
}

func TestAuthDigest(t *testing.T) {
	// sha1("abc")
	require.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", AuthDigest("a", "bc"))
}
