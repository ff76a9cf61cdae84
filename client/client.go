/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package client

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strconv"

	"github.com/ortuman/gjab/log"
	"github.com/ortuman/gjab/roster"
	"github.com/ortuman/gjab/session"
	"github.com/ortuman/gjab/xmpp"
	"github.com/ortuman/gjab/xmpp/jid"
	"github.com/pkg/errors"
)

const (
	// DefaultServer is the server assigned to usernames without domain.
	DefaultServer = "jabber.com"

	// DefaultResource is the resource assigned when none is configured.
	DefaultResource = "gjab"

	// DefaultConference is the default multi-user chat service.
	DefaultConference = "conference.jabber.org"
)

// ErrNotConnected is returned by operations requiring an online session.
var ErrNotConnected = errors.New("client: not connected")

// ErrUnknownRoom is returned when a chat room identifier is not tracked.
var ErrUnknownRoom = errors.New("client: unknown chat room")

// Listener receives every client notification.
type Listener interface {
	roster.Listener

	// StateChanged is invoked on every session state transition.
	StateChanged(state session.State, err error)

	// LoggedIn is invoked once authentication succeeds.
	LoggedIn()

	// MessageReceived is invoked for every one-to-one message.
	MessageReceived(from *jid.JID, body string)

	// ChatMessageReceived is invoked for every chat room message.
	ChatMessageReceived(roomID int, nick, body string)

	// Error is invoked to report a failure to the user.
	Error(message string)
}

// Config represents a client configuration.
type Config struct {
	// Host overrides the host to connect to. Defaults to the account domain.
	Host string

	// Port is the server port.
	Port int

	// DefaultServer completes usernames given without server part.
	DefaultServer string

	// Conference is the multi-user chat service used to complete room names.
	Conference string

	// MaxStanzaSize bounds the size of a single incoming token.
	MaxStanzaSize int
}

type requestKind int

const (
	authRequest requestKind = iota + 1
	rosterRequest
)

// Client drives a single account session: it authenticates, imports
// the roster and routes incoming packets to the roster and the listener.
// Like the underlying session it must be driven by a single goroutine.
type Client struct {
	cfg    Config
	dialer session.Dialer
	l      Listener
	roster *roster.Roster

	sess     *session.Session
	jid      *jid.JID
	password string
	pending  map[string]requestKind
	nextID   uint32
	imported bool
}

// New returns a new client instance.
func New(cfg *Config, dialer session.Dialer, l Listener) *Client {
	c := &Client{
		cfg:    *cfg,
		dialer: dialer,
		l:      l,
		roster: roster.New(l),
	}
	if c.cfg.DefaultServer == "" {
		c.cfg.DefaultServer = DefaultServer
	}
	if c.cfg.Conference == "" {
		c.cfg.Conference = DefaultConference
	}
	return c
}

// JID returns the account address, or nil before the first connection.
func (c *Client) JID() *jid.JID { return c.jid }

// Roster returns the client roster.
func (c *Client) Roster() *roster.Roster { return c.roster }

// Session returns the current session, or nil before the first connection.
func (c *Client) Session() *session.Session { return c.sess }

// State returns current session state.
func (c *Client) State() session.State {
	if c.sess == nil {
		return session.Offline
	}
	return c.sess.State()
}

// Connect opens a session for username, which may be given as 'user',
// 'user@server' or 'user@server/resource'.
func (c *Client) Connect(ctx context.Context, username, password, resource string) error {
	if c.State() != session.Offline {
		return session.ErrAlreadyConnected
	}
	if resource == "" {
		resource = DefaultResource
	}
	j, err := CompleteJID(username, c.cfg.DefaultServer, resource)
	if err != nil {
		return errors.Wrapf(err, "invalid username %q", username)
	}
	if len(j.Node()) == 0 {
		return errors.Errorf("invalid username %q: missing user part", username)
	}
	c.jid = j
	c.password = password
	c.pending = make(map[string]requestKind)
	c.nextID = 0
	c.imported = false

	c.sess = session.New(&session.Config{
		Domain:        j.Domain(),
		Host:          c.cfg.Host,
		Port:          c.cfg.Port,
		MaxStanzaSize: c.cfg.MaxStanzaSize,
	}, c.dialer, (*sessionDelegate)(c))

	if err := c.sess.Connect(ctx); err != nil {
		log.Error(err)
		c.l.StateChanged(session.Offline, err)
		c.l.Error("Unable to connect: " + errors.Cause(err).Error())
		return err
	}
	return nil
}

// Disconnect closes the current session.
func (c *Client) Disconnect() {
	if c.sess != nil {
		c.sess.Disconnect()
	}
}

// Receive forwards the outcome of a transport read to the session.
func (c *Client) Receive(p []byte, readErr error) {
	if c.sess != nil {
		c.sess.Receive(p, readErr)
	}
}

// SendMessage sends a chat message. 'to' is completed with the account
// server when it has no server part.
func (c *Client) SendMessage(to, body string) error {
	if c.State() == session.Offline {
		return ErrNotConnected
	}
	j, err := completeBare(to, c.jid.Domain())
	if err != nil {
		return err
	}
	if full, err := jid.NewWithString(to, false); err == nil && full.IsFull() {
		j = full
	}
	c.sess.Send(xmpp.NewMessage(j, xmpp.ChatMessage, body))
	return nil
}

// Subscribe requests a presence subscription to 'to'.
func (c *Client) Subscribe(to string) error {
	return c.sendSubscription(to, xmpp.SubscribePresence)
}

// Unsubscribe cancels a presence subscription to 'to'.
func (c *Client) Unsubscribe(to string) error {
	return c.sendSubscription(to, xmpp.UnsubscribePresence)
}

func (c *Client) sendSubscription(to string, tp xmpp.PresenceType) error {
	if c.State() == session.Offline {
		return ErrNotConnected
	}
	j, err := completeBare(to, c.jid.Domain())
	if err != nil {
		return err
	}
	c.sess.Send(xmpp.NewPresence(j, tp))
	return nil
}

// AddBuddy adds name to the server roster and requests a subscription.
// The request is ignored until the roster has been imported, and for
// the account own address.
func (c *Client) AddBuddy(name string) error {
	if c.State() != session.Authenticated {
		return ErrNotConnected
	}
	if !c.imported {
		return nil
	}
	j, err := completeBare(name, c.jid.Domain())
	if err != nil {
		return err
	}
	if len(j.Node()) == 0 || j.BareEqual(c.jid) {
		return nil
	}
	iq := xmpp.NewIQ(xmpp.SetIQ, c.requestID(), xmpp.RosterNamespace)
	xmpp.Query(iq).AppendNewElement("item").SetAttribute("jid", j.String())
	c.sess.Send(iq)
	c.sess.Send(xmpp.NewPresence(j, xmpp.SubscribePresence))
	return nil
}

// RemoveBuddy deletes name from the server roster.
func (c *Client) RemoveBuddy(name string) error {
	if c.State() != session.Authenticated {
		return ErrNotConnected
	}
	j, err := completeBare(name, c.jid.Domain())
	if err != nil {
		return err
	}
	iq := xmpp.NewIQ(xmpp.SetIQ, c.requestID(), xmpp.RosterNamespace)
	item := xmpp.Query(iq).AppendNewElement("item")
	item.SetAttribute("jid", j.String())
	item.SetAttribute("subscription", "remove")
	c.sess.Send(iq)
	return nil
}

// JoinChat requests to join a chat room. A bare room name is completed
// with the configured conference service and the account user as nickname.
// Requesting an already pending or joined room has no effect.
func (c *Client) JoinChat(name string) (*roster.ChatRoom, error) {
	if c.State() != session.Authenticated {
		return nil, ErrNotConnected
	}
	roomJID, err := CompleteJID(name, c.cfg.Conference, c.jid.Node())
	if err != nil {
		return nil, err
	}
	if len(roomJID.Node()) == 0 || len(roomJID.Resource()) == 0 {
		return nil, errors.Errorf("invalid chat room %q", name)
	}
	room, created := c.roster.JoinChat(roomJID)
	if created {
		c.sess.Send(xmpp.NewPresence(roomJID, xmpp.AvailablePresence))
	}
	return room, nil
}

// LeaveChat requests to leave a chat room. A join still waiting for the
// room confirmation is cancelled right away, so it can be requested again.
func (c *Client) LeaveChat(roomID int) error {
	if c.State() == session.Offline {
		return ErrNotConnected
	}
	room := c.roster.Room(roomID)
	if room == nil {
		return ErrUnknownRoom
	}
	if !room.Confirmed {
		c.roster.CancelJoin(roomID)
	}
	c.sess.Send(xmpp.NewPresence(room.JID, xmpp.UnavailablePresence))
	return nil
}

// SendChatMessage sends a message to every participant of a joined room.
func (c *Client) SendChatMessage(roomID int, body string) error {
	if c.State() == session.Offline {
		return ErrNotConnected
	}
	room := c.roster.Room(roomID)
	if room == nil || !room.Confirmed {
		return ErrUnknownRoom
	}
	msg := xmpp.NewMessage(room.JID.ToBareJID(), xmpp.GroupChatMessage, body)
	msg.SetFrom(room.JID.String())
	c.sess.Send(msg)
	return nil
}

func (c *Client) requestID() string {
	c.nextID++
	return strconv.FormatUint(uint64(c.nextID), 10)
}

func (c *Client) request(kind requestKind) string {
	id := c.requestID()
	c.pending[id] = kind
	return id
}

func (c *Client) isPending(kind requestKind) bool {
	for _, k := range c.pending {
		if k == kind {
			return true
		}
	}
	return false
}

func (c *Client) clearPending(kind requestKind) {
	for id, k := range c.pending {
		if k == kind {
			delete(c.pending, id)
		}
	}
}

func (c *Client) authenticate() {
	iq := xmpp.NewIQ(xmpp.SetIQ, c.request(authRequest), xmpp.AuthNamespace)
	q := xmpp.Query(iq)
	if node := c.jid.Node(); len(node) > 0 {
		q.AppendNewElement("username").InsertText(node)
	}
	q.AppendNewElement("resource").InsertText(c.jid.Resource())

	if sid := c.sess.StreamID(); len(sid) > 0 {
		q.AppendNewElement("digest").InsertText(AuthDigest(sid, c.password))
	} else {
		q.AppendNewElement("password").InsertText(c.password)
	}
	c.sess.Send(iq)
}

// AuthDigest returns the legacy authentication digest of a password
// for a given stream identifier.
func AuthDigest(streamID, password string) string {
	h := sha1.Sum([]byte(streamID + password))
	return hex.EncodeToString(h[:])
}

type sessionDelegate Client

func (d *sessionDelegate) StateChanged(state session.State, err error) {
	c := (*Client)(d)
	switch state {
	case session.Offline:
		c.pending = make(map[string]requestKind)
		c.imported = false
		c.roster.Reset()
	}
	c.l.StateChanged(state, err)

	switch {
	case state == session.StreamOpen:
		c.authenticate()
	case state == session.Offline && err != nil:
		c.l.Error(errors.Cause(err).Error())
	}
}

func (d *sessionDelegate) PacketReceived(p *xmpp.Packet) {
	c := (*Client)(d)
	switch p.Kind {
	case xmpp.MessageKind:
		c.handleMessage(p)
	case xmpp.PresenceKind:
		c.roster.HandlePresence(p)
	case xmpp.SubscriptionKind:
		c.handleSubscription(p)
	case xmpp.InfoQueryKind:
		c.handleIQ(p)
	}
}
