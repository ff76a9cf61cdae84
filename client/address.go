/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package client

import (
	"strings"

	"github.com/ortuman/gjab/xmpp/jid"
)

// CompleteJID completes a possibly partial address: a missing server part
// is set to server and a missing resource part to resource.
func CompleteJID(given, server, resource string) (*jid.JID, error) {
	at := strings.Index(given, "@")
	if at < 0 {
		if slash := strings.Index(given, "/"); slash >= 0 {
			given = given[:slash] + "@" + server + given[slash:]
		} else {
			given = given + "@" + server
		}
		at = strings.Index(given, "@")
	}
	if !strings.Contains(given[at:], "/") && len(resource) > 0 {
		given = given + "/" + resource
	}
	return jid.NewWithString(given, false)
}

// completeBare completes a bare address with server when it lacks one.
func completeBare(given, server string) (*jid.JID, error) {
	if !strings.Contains(given, "@") {
		given = given + "@" + server
	}
	j, err := jid.NewWithString(given, false)
	if err != nil {
		return nil, err
	}
	return j.ToBareJID(), nil
}
