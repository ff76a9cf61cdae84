/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package app

import (
	"fmt"
	"io"

	"github.com/ortuman/gjab/roster"
	"github.com/ortuman/gjab/session"
	"github.com/ortuman/gjab/xmpp"
	"github.com/ortuman/gjab/xmpp/jid"
)

// printer renders client notifications as text lines.
type printer struct {
	w io.Writer
}

func (p *printer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) StateChanged(state session.State, err error) {
	switch state {
	case session.Connected:
		p.printf("* connected")
	case session.StreamOpen:
		p.printf("* logging in...")
	case session.Offline:
		p.printf("* disconnected")
	}
}

func (p *printer) LoggedIn() {
	p.printf("* logged in")
}

func (p *printer) MessageReceived(from *jid.JID, body string) {
	p.printf("<%s> %s", from, body)
}

func (p *printer) PresenceChanged(b *roster.Buddy, online bool, state xmpp.ShowState) {
	if !online {
		p.printf("* %s is offline", b.Name)
		return
	}
	p.printf("* %s is %s", b.Name, state)
}

func (p *printer) BuddyUpdated(b *roster.Buddy) {
	p.printf("* roster: %s (%s) in %s", b.Name, b.JID, b.Group)
}

func (p *printer) BuddyRemoved(b *roster.Buddy) {
	p.printf("* roster: %s removed", b.JID)
}

func (p *printer) ChatJoined(roomID int, name string) {
	p.printf("* joined room %s [%d]", name, roomID)
}

func (p *printer) ChatParticipant(roomID int, nick string, joined bool) {
	if joined {
		p.printf("[%d] * %s is here", roomID, nick)
		return
	}
	p.printf("[%d] * %s left", roomID, nick)
}

func (p *printer) ChatLeft(roomID int) {
	p.printf("* left room [%d]", roomID)
}

func (p *printer) ChatMessageReceived(roomID int, nick, body string) {
	p.printf("[%d] <%s> %s", roomID, nick, body)
}

func (p *printer) Error(message string) {
	p.printf("! %s", message)
}
