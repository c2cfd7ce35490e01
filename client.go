// Package zclient is the client-side runtime of the Z routing-daemon
// control protocol: a routing daemon embeds a Client to exchange routing
// information with the central kernel-route manager over a local stream
// socket.
//
// The Client is a pure protocol adapter. It keeps the connection alive
// with bounded-backoff retry, frames and unframes the length-prefixed
// message stream without blocking, and marshals route, redistribution,
// and hello messages; it never interprets the routes themselves.
//
// All Client methods must run on the reactor executor (one thread for
// the whole client, see the reactor package). An embedder that needs to
// issue requests from elsewhere marshals onto the executor itself.
package zclient

import (
	"github.com/uestchp/zclient/options"
	"github.com/uestchp/zclient/reactor"
	"github.com/uestchp/zclient/statemachine"
	"github.com/uestchp/zclient/wire"
	"github.com/uestchp/zclient/zsocket"
)

// Handler is re-exported so embedders registering inbound callbacks only
// import the root package.
type Handler = statemachine.Handler

// Client is one handle onto the route manager. Create with New, register
// handlers, then Start.
type Client struct {
	conn *statemachine.Connection
	rx   reactor.Reactor
	opts *options.Options
}

// New builds a client. redistDefault names the daemon's own route source
// (wire.RouteTypeNone if it has none): it is pinned subscribed locally
// and never requested back from the server. rx selects the event
// back-end; nil means a fresh thread-backed reactor, preserving the
// historical "no reactor configured" default. opts nil means
// options.Default().
//
// The handle, its buffers, and its reactor registrations are all owned
// here and reclaimed together: registrations hold the Client alive, so
// there is no stale-callback window to free it out from under.
func New(redistDefault wire.RouteType, rx reactor.Reactor, opts *options.Options) (*Client, error) {
	if opts == nil {
		opts = options.Default()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rx == nil {
		rx = reactor.NewThreadReactor()
	}
	c := &Client{rx: rx, opts: opts}
	c.conn = statemachine.New(redistDefault, rx, dialer(opts), opts, nil)
	return c, nil
}

// NewLookupClient builds the secondary lookup-mode client: it connects
// the same way but performs no handshake and arms no read event, so a
// synchronous nexthop-lookup caller can drive send/receive on the socket
// itself (via Transport).
func NewLookupClient(rx reactor.Reactor, opts *options.Options) (*Client, error) {
	if opts == nil {
		opts = options.Default()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rx == nil {
		rx = reactor.NewThreadReactor()
	}
	c := &Client{rx: rx, opts: opts}
	c.conn = statemachine.NewLookup(rx, dialer(opts), opts)
	return c, nil
}

func dialer(opts *options.Options) statemachine.Dialer {
	if opts.UseTCP {
		addr := opts.TCPAddr
		return func() (statemachine.Transport, error) {
			return zsocket.ConnectTCP(addr)
		}
	}
	path := opts.ServPath
	return func() (statemachine.Transport, error) {
		return zsocket.ConnectUnix(path)
	}
}

// Handle registers h for inbound command cmd; nil clears the slot.
// Frames for commands with no handler are dropped silently, which is
// what keeps old clients forward-compatible with newer servers.
func (c *Client) Handle(cmd wire.Command, h Handler) {
	c.conn.Handle(cmd, h)
}

// Start schedules the first connect attempt. Idempotent.
func (c *Client) Start() { c.conn.Start() }

// Stop tears the connection down without scheduling a retry. Counters
// are untouched; Start resumes.
func (c *Client) Stop() { c.conn.Stop() }

// Reset restarts a dormant client (one whose consecutive-failure count
// reached the cap): the counter is zeroed and a fresh connect scheduled.
func (c *Client) Reset() { c.conn.Reset() }

// State reports the connection lifecycle state.
func (c *Client) State() statemachine.State { return c.conn.State() }

// Transport exposes the live socket for lookup-mode callers; nil when
// not connected.
func (c *Client) Transport() statemachine.Transport { return c.conn.Transport() }

// SendMessage queues one pre-encoded frame. It returns
// zerrors.ErrConnectionClosed when there is no live connection; the
// caller re-issues after observing reconnection (redistribution
// subscriptions are the one thing replayed automatically).
func (c *Client) SendMessage(frame []byte) error {
	return c.conn.Send(frame)
}
