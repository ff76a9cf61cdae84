/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package session

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/ortuman/gjab/log"
	"github.com/ortuman/gjab/pool"
	"github.com/ortuman/gjab/transport"
	"github.com/ortuman/gjab/xmpp"
)

const (
	defaultPort          = 5222
	defaultMaxStanzaSize = 64 << 10
)

var bufPool = pool.NewBufferPool()

// State represents a session lifecycle state.
type State int

const (
	// Offline represents a disconnected session.
	Offline State = iota

	// Connected represents a session whose stream header has been sent.
	Connected

	// StreamOpen represents a session whose peer opened its stream.
	StreamOpen

	// Authenticated represents a logged in session.
	Authenticated
)

// String returns State string representation.
func (s State) String() string {
	switch s {
	case Offline:
		return "offline"
	case Connected:
		return "connected"
	case StreamOpen:
		return "stream_open"
	case Authenticated:
		return "authenticated"
	}
	return ""
}

// Delegate receives session events. Every method is invoked synchronously
// from the goroutine driving the session.
type Delegate interface {
	// StateChanged is invoked on every state transition.
	// err is set when the transition to Offline was caused by a failure.
	StateChanged(state State, err error)

	// PacketReceived is invoked for every completed top level stanza.
	PacketReceived(p *xmpp.Packet)
}

// Dialer opens a transport to a remote server.
type Dialer interface {
	Dial(ctx context.Context, host string, port int) (transport.Transport, error)
}

// Config represents a session configuration.
type Config struct {
	// Domain is the server domain the stream is addressed to.
	Domain string

	// Host overrides the host to connect to. Defaults to Domain.
	Host string

	// Port is the server port. Defaults to 5222.
	Port int

	// MaxStanzaSize bounds the bytes buffered for a single incomplete token.
	MaxStanzaSize int
}

// Session represents a client stream to a server.
// A Session is not safe for concurrent use: a single goroutine must
// drive both the receive pump and every other operation.
type Session struct {
	id       string
	cfg      Config
	dialer   Dialer
	delegate Delegate

	state    State
	streamID string
	tr       transport.Transport
	pr       *xmpp.Parser
	stack    []*xmpp.Element
	rbuf     []byte

	pumping  bool
	deferred []func()
}

// New creates a new session instance.
func New(cfg *Config, dialer Dialer, delegate Delegate) *Session {
	s := &Session{
		id:       uuid.New().String(),
		cfg:      *cfg,
		dialer:   dialer,
		delegate: delegate,
	}
	if s.cfg.Host == "" {
		s.cfg.Host = s.cfg.Domain
	}
	if s.cfg.Port == 0 {
		s.cfg.Port = defaultPort
	}
	if s.cfg.MaxStanzaSize == 0 {
		s.cfg.MaxStanzaSize = defaultMaxStanzaSize
	}
	return s
}

// ID returns session log identifier.
func (s *Session) ID() string { return s.id }

// Domain returns the server domain.
func (s *Session) Domain() string { return s.cfg.Domain }

// State returns current session state.
func (s *Session) State() State { return s.state }

// StreamID returns the identifier the peer assigned to the stream,
// or an empty string if none was given.
func (s *Session) StreamID() string { return s.streamID }

// Transport returns the current session transport, or nil if offline.
func (s *Session) Transport() transport.Transport { return s.tr }

// Connect dials the configured server and opens the stream.
// A failed attempt leaves the session offline and is not retried.
func (s *Session) Connect(ctx context.Context) error {
	if s.state != Offline {
		return ErrAlreadyConnected
	}
	tr, err := s.dialer.Dial(ctx, s.cfg.Host, s.cfg.Port)
	if err != nil {
		return &Error{Kind: TransportError, Err: err}
	}
	return s.Open(tr)
}

// Open starts the stream over an already established transport.
func (s *Session) Open(tr transport.Transport) error {
	if s.state != Offline {
		return ErrAlreadyConnected
	}
	s.tr = tr
	s.pr = xmpp.NewParser(&stanzaBuilder{s: s}, s.cfg.MaxStanzaSize)
	s.stack = nil
	s.streamID = ""

	buf := bufPool.Get()
	defer bufPool.Put(buf)

	ops := xmpp.NewElementName(xmpp.StreamName)
	ops.SetTo(s.cfg.Domain)
	ops.SetNamespace(xmpp.ClientNamespace)
	ops.SetAttribute("xmlns:stream", xmpp.StreamNamespace)
	buf.WriteString(`<?xml version="1.0"?>`)
	ops.ToXML(buf, false)

	openStr := buf.String()
	log.Debugf("SEND(%s): %s", s.id, openStr)

	if err := tr.WriteString(openStr); err != nil {
		tr.Close()
		s.tr = nil
		s.pr = nil
		return &Error{Kind: TransportError, Err: err}
	}
	s.setState(Connected, nil)
	return nil
}

// SetAuthenticated marks the stream as authenticated.
func (s *Session) SetAuthenticated() {
	if s.state == StreamOpen {
		s.setState(Authenticated, nil)
	}
}

// Send writes an element to the session transport.
// Elements sent while offline are silently dropped.
func (s *Session) Send(elem *xmpp.Element) {
	if s.state == Offline {
		return
	}
	buf := bufPool.Get()
	defer bufPool.Put(buf)

	elem.ToXML(buf, true)
	log.Debugf("SEND(%s): %s", s.id, buf.String())

	if _, err := s.tr.Write(buf.Bytes()); err != nil {
		s.fail(&Error{Kind: TransportError, Err: err})
	}
}

// Disconnect closes the stream and moves the session offline.
// It may be invoked from within a Delegate callback, in which case the
// transport is released once the current receive pump returns.
func (s *Session) Disconnect() {
	if s.state == Offline {
		return
	}
	log.Debugf("SEND(%s): </stream:stream>", s.id)
	if err := s.tr.WriteString("</stream:stream>"); err != nil {
		log.Debugf("session %s: unable to close stream: %v", s.id, err)
	}
	s.teardown()
	s.setState(Offline, nil)
}

// Pump performs a single bounded read on the session transport and
// processes its content. It blocks until data is available.
func (s *Session) Pump() {
	if s.state == Offline {
		return
	}
	if s.rbuf == nil {
		s.rbuf = make([]byte, transport.ReadBufferSize)
	}
	n, err := s.tr.Read(s.rbuf)
	s.Receive(s.rbuf[:n], err)
}

// Receive processes the outcome of a transport read performed by the host.
// A read returning no data, or io.EOF, means the peer closed the connection.
func (s *Session) Receive(p []byte, readErr error) {
	if s.state == Offline {
		return
	}
	s.pumping = true
	defer s.endPump()

	if len(p) > 0 {
		if err := s.pr.Feed(p); err != nil {
			if s.state != Offline {
				s.fail(&Error{Kind: ParseError, Err: err})
			}
			return
		}
	}
	if s.state == Offline {
		return
	}
	switch {
	case readErr == nil && len(p) > 0:
		return
	case readErr == nil, readErr == io.EOF:
		s.fail(&Error{Kind: TransportError, Err: xmpp.ErrStreamClosedByPeer})
	default:
		s.fail(&Error{Kind: TransportError, Err: readErr})
	}
}

func (s *Session) endPump() {
	s.pumping = false
	fns := s.deferred
	s.deferred = nil
	for _, fn := range fns {
		fn()
	}
}

func (s *Session) fail(err error) {
	log.Warnf("session %s failed: %v", s.id, err)
	s.teardown()
	s.setState(Offline, err)
}

func (s *Session) teardown() {
	tr, pr := s.tr, s.pr
	for _, elem := range s.stack {
		elem.Free()
	}
	s.tr = nil
	s.pr = nil
	s.stack = nil

	if pr != nil {
		pr.Halt()
	}
	if tr == nil {
		return
	}
	if s.pumping {
		s.deferred = append(s.deferred, func() { tr.Close() })
		return
	}
	tr.Close()
}

func (s *Session) setState(state State, err error) {
	s.state = state
	if s.delegate != nil {
		s.delegate.StateChanged(state, err)
	}
}

func (s *Session) streamOpened(id string) {
	if s.state != Connected {
		return
	}
	s.streamID = id
	s.setState(StreamOpen, nil)
}

func (s *Session) process(elem *xmpp.Element) {
	log.Debugf("RECV(%s): %v", s.id, elem)

	if elem.Name() == xmpp.StreamErrorName {
		s.fail(&Error{Kind: ProtocolError, Err: streamError(elem)})
		return
	}
	p, err := xmpp.NewPacket(elem)
	if err != nil {
		log.Warnf("session %s: %v", s.id, err)
		return
	}
	if s.delegate != nil {
		s.delegate.PacketReceived(p)
	}
}

func streamError(elem *xmpp.Element) *StreamError {
	se := &StreamError{}
	for _, child := range elem.Elements().All() {
		switch child.Name() {
		case "text":
			se.Text = strings.TrimSpace(child.Text())
		default:
			if se.Condition == "" {
				se.Condition = child.Name()
			}
		}
	}
	if se.Text == "" {
		se.Text = strings.TrimSpace(elem.Text())
	}
	return se
}

// stanzaBuilder assembles top level elements from parser events.
type stanzaBuilder struct {
	s *Session
}

func (b *stanzaBuilder) StartElement(name string, attrs []xmpp.Attribute) {
	s := b.s
	if len(s.stack) == 0 && name == xmpp.StreamName {
		var id string
		for _, a := range attrs {
			if a.Label == "id" {
				id = a.Value
			}
		}
		s.streamOpened(id)
		return
	}
	elem := xmpp.NewElementName(name)
	for _, a := range attrs {
		elem.SetAttribute(a.Label, a.Value)
	}
	if n := len(s.stack); n > 0 {
		s.stack[n-1].AppendElement(elem)
	}
	s.stack = append(s.stack, elem)
}

func (b *stanzaBuilder) EndElement(name string) {
	s := b.s
	n := len(s.stack)
	if n == 0 {
		if name == xmpp.StreamName {
			s.fail(&Error{Kind: TransportError, Err: xmpp.ErrStreamClosedByPeer})
		}
		return
	}
	elem := s.stack[n-1]
	s.stack = s.stack[:n-1]
	if n == 1 {
		s.process(elem)
	}
}

func (b *stanzaBuilder) CharData(data string) {
	s := b.s
	if n := len(s.stack); n > 0 {
		s.stack[n-1].InsertText(data)
	}
}

var _ xmpp.Handler = (*stanzaBuilder)(nil)
