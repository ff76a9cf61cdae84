/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package client

import (
	"github.com/ortuman/gjab/log"
	"github.com/ortuman/gjab/xmpp"
)

const unknownError = "unknown error"

func (c *Client) handleMessage(p *xmpp.Packet) {
	switch p.MessageType {
	case xmpp.NormalMessage, xmpp.ChatMessage:
		body, ok := xmpp.Body(p.Stanza)
		if !ok {
			return
		}
		c.l.MessageReceived(p.From.ToBareJID(), body)

	case xmpp.ErrorMessage:
		code, text, ok := xmpp.ErrorText(p.Stanza)
		if !ok || len(text) == 0 {
			return
		}
		c.l.Error("Error " + code + ": " + text)

	case xmpp.GroupChatMessage:
		room := c.roster.ConfirmedRoom(p.From)
		if room == nil {
			log.Warnf("client: groupchat message from unknown room %s", p.From)
			return
		}
		body, ok := xmpp.Body(p.Stanza)
		nick := p.From.Resource()
		if !ok || len(nick) == 0 {
			// room topic changes and service notices
			return
		}
		c.l.ChatMessageReceived(room.ID, nick, body)

	default:
		log.Debugf("client: dropping %s message from %s", p.MessageType, p.From)
	}
}

func (c *Client) handleSubscription(p *xmpp.Packet) {
	var reply xmpp.PresenceType
	switch p.PresenceType {
	case xmpp.SubscribePresence:
		reply = xmpp.SubscribedPresence
	case xmpp.UnsubscribePresence:
		reply = xmpp.UnsubscribedPresence
	default:
		return
	}
	c.sess.Send(xmpp.NewPresence(p.From, reply))
}

func (c *Client) handleIQ(p *xmpp.Packet) {
	switch p.IQType {
	case xmpp.ResultIQ:
		c.handleResult(p)
	case xmpp.ErrorIQ:
		c.handleError(p)
	case xmpp.SetIQ:
		c.handleSet(p)
	default:
		log.Debugf("client: ignoring %s iq %s", p.IQType, p.ID)
	}
}

func (c *Client) handleResult(p *xmpp.Packet) {
	query := xmpp.Query(p.Stanza)

	if p.HasID() {
		kind, ok := c.pending[p.ID]
		if !ok {
			log.Debugf("client: unmatched iq result %s", p.ID)
			return
		}
		delete(c.pending, p.ID)
		switch kind {
		case authRequest:
			c.loggedIn()
		case rosterRequest:
			c.rosterReceived(query)
		}
		return
	}
	// some servers omit the id of the authentication result
	if c.isPending(authRequest) && (query == nil || query.Namespace() == "" || query.Namespace() == xmpp.AuthNamespace) {
		c.clearPending(authRequest)
		c.loggedIn()
		return
	}
	if c.isPending(rosterRequest) && query != nil && query.Namespace() == xmpp.RosterNamespace {
		c.clearPending(rosterRequest)
		c.rosterReceived(query)
	}
}

func (c *Client) handleError(p *xmpp.Packet) {
	kind, matched := c.pending[p.ID]
	if matched {
		delete(c.pending, p.ID)
	}
	if kind == authRequest || (!matched && c.isPending(authRequest)) {
		text := unknownError
		if _, t, ok := xmpp.ErrorText(p.Stanza); ok && len(t) > 0 {
			text = t
		}
		log.Warnf("client: authentication failed: %s", text)
		c.l.Error(text)
		c.sess.Disconnect()
		return
	}
	code, text, _ := xmpp.ErrorText(p.Stanza)
	log.Warnf("client: iq %s failed: %s %s", p.ID, code, text)
}

func (c *Client) handleSet(p *xmpp.Packet) {
	query := xmpp.Query(p.Stanza)
	if query == nil || query.Namespace() != xmpp.RosterNamespace {
		log.Debugf("client: ignoring iq set %s", p.ID)
		return
	}
	if p.From != nil && !p.From.BareEqual(c.jid) && p.From.String() != c.jid.Domain() {
		log.Warnf("client: ignoring roster push from %s", p.From)
		return
	}
	c.roster.HandleRosterQuery(query)

	if p.HasID() {
		c.sess.Send(xmpp.NewIQ(xmpp.ResultIQ, p.ID, ""))
	}
}

func (c *Client) loggedIn() {
	c.sess.SetAuthenticated()
	c.l.LoggedIn()

	c.sess.Send(xmpp.NewIQ(xmpp.GetIQ, c.request(rosterRequest), xmpp.RosterNamespace))
}

func (c *Client) rosterReceived(query *xmpp.Element) {
	if query != nil {
		c.roster.HandleRosterQuery(query)
	}
	c.imported = true

	p := xmpp.NewPresence(nil, xmpp.AvailablePresence)
	p.AppendNewElement("status").InsertText("Online")
	c.sess.Send(p)
}
