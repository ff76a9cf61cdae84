/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package transport

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/ortuman/gjab/log"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
)

const (
	defaultConnectTimeout = 15 * time.Second
	defaultOpenTimeout    = 30 * time.Second
	defaultMaxFailures    = 3
)

// ErrCircuitOpen is returned while the dialer refuses connection attempts
// after too many consecutive failures.
var ErrCircuitOpen = errors.New("transport: too many failed connection attempts")

// DialerConfig represents a dialer configuration.
type DialerConfig struct {
	// ConnectTimeout bounds a single connection attempt.
	ConnectTimeout time.Duration

	// KeepAlive is the TCP keep-alive period of established connections.
	KeepAlive time.Duration

	// MaxFailures is the number of consecutive failed attempts
	// that makes the dialer stop trying.
	MaxFailures uint32

	// OpenTimeout is the period during which attempts are refused
	// once MaxFailures is reached.
	OpenTimeout time.Duration
}

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Dialer opens socket transports to a server.
type Dialer struct {
	cfg    DialerConfig
	cb     *gobreaker.CircuitBreaker
	dialFn dialFunc
}

// NewDialer returns a new dialer instance.
func NewDialer(cfg DialerConfig) *Dialer {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	d := &Dialer{cfg: cfg}
	nd := &net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: cfg.KeepAlive}
	d.dialFn = nd.DialContext

	maxFailures := cfg.MaxFailures
	d.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "dialer",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Infof("%s: %s -> %s", name, from, to)
		},
	})
	return d
}

// Dial connects to host:port and wraps the resulting connection
// into a socket transport.
func (d *Dialer) Dial(ctx context.Context, host string, port int) (Transport, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := d.cb.Execute(func() (interface{}, error) {
		return d.dialFn(ctx, "tcp", address)
	})
	switch err {
	case nil:
		return NewSocketTransport(conn.(net.Conn)), nil
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		return nil, ErrCircuitOpen
	default:
		return nil, errors.Wrapf(err, "unable to connect to %s", address)
	}
}
