package statemachine

import (
	"time"

	"github.com/uestchp/zclient/options"
	"github.com/uestchp/zclient/reactor"
	"github.com/uestchp/zclient/streambuf"
	"github.com/uestchp/zclient/wire"
	"github.com/uestchp/zclient/zerrors"
)

// Transport is the socket seam the connection drives. zsocket.Socket
// satisfies it; tests substitute an in-memory fake.
type Transport interface {
	Fd() int
	// Read and Write are non-blocking; both signal "would block" with
	// (0, zerrors.ErrWouldBlock), EOF with zerrors.ErrConnectionClosed,
	// and anything else fatal with zerrors.ErrSocketIO.
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Close() error
}

// ConnectChecker is implemented by transports whose dial may complete
// asynchronously (zsocket's EINPROGRESS path). It is consulted once
// write-readiness fires while Connecting.
type ConnectChecker interface {
	CheckConnectDone() error
}

// Dialer opens one non-blocking stream connection to the route manager.
// It may return a non-nil Transport together with
// zerrors.ErrConnectPending when the connect is still in flight.
type Dialer func() (Transport, error)

// Handler consumes one dispatched inbound frame. body aliases the
// connection's read buffer and is only valid for the duration of the
// call; handlers that retain it must copy.
type Handler func(cmd wire.Command, body []byte)

// Connection owns one client handle's socket, buffers, redistribution
// bookkeeping, and reactor tokens, and drives the
// disabled/scheduled/connecting/connected/failing lifecycle. All methods
// must be called from the reactor's executor.
type Connection struct {
	rx   reactor.Reactor
	dial Dialer
	opts *options.Options

	state     State
	enabled   bool
	conn      Transport
	readBuf   *streambuf.ReadBuffer
	writeBuf  streambuf.WriteBuffer
	failCount int

	redistDefault      wire.RouteType
	redist             [wire.RouteTypeMax]bool
	defaultInformation bool

	handlers map[wire.Command]Handler

	// lookup connections skip the handshake and the read arm: a
	// synchronous nexthop-lookup caller drives its own I/O on the
	// resulting socket.
	lookup bool

	connectTok   reactor.Token
	connectArmed bool
	readTok      reactor.Token
	readArmed    bool
	writeTok     reactor.Token
	writeArmed   bool
}

// New builds a connection in the Disabled state. redistDefault names the
// caller's own route source (wire.RouteTypeNone if it has none); its
// redist slot is pinned true for the connection's lifetime, and it is
// never requested back from the server. handlers may be nil; slots can
// also be filled later with Handle, before Start.
func New(redistDefault wire.RouteType, rx reactor.Reactor, dial Dialer, opts *options.Options, handlers map[wire.Command]Handler) *Connection {
	c := &Connection{
		rx:                 rx,
		dial:               dial,
		opts:               opts,
		readBuf:            streambuf.NewReadBuffer(),
		redistDefault:      redistDefault,
		defaultInformation: opts.DefaultInformation,
		handlers:           handlers,
	}
	if c.handlers == nil {
		c.handlers = make(map[wire.Command]Handler)
	}
	if redistDefault < wire.RouteTypeMax {
		c.redist[redistDefault] = true
	}
	return c
}

// NewLookup builds the secondary lookup-mode connection: same lifecycle,
// no handshake, no read arm.
func NewLookup(rx reactor.Reactor, dial Dialer, opts *options.Options) *Connection {
	c := New(wire.RouteTypeNone, rx, dial, opts, nil)
	c.lookup = true
	return c
}

// Handle registers (or, with nil, clears) the handler for cmd. Inbound
// frames whose command has no handler are dropped silently.
func (c *Connection) Handle(cmd wire.Command, h Handler) {
	if h == nil {
		delete(c.handlers, cmd)
		return
	}
	c.handlers[cmd] = h
}

// State reports the current lifecycle state.
func (c *Connection) State() State { return c.state }

// FailCount reports the consecutive-failure counter.
func (c *Connection) FailCount() int { return c.failCount }

// Transport exposes the live socket, nil when not connected. Lookup-mode
// callers read and write it directly.
func (c *Connection) Transport() Transport { return c.conn }

// RedistDefault reports the pinned own-source route type.
func (c *Connection) RedistDefault() wire.RouteType { return c.redistDefault }

// Redist reports whether route type t is subscribed.
func (c *Connection) Redist(t wire.RouteType) bool {
	return t < wire.RouteTypeMax && c.redist[t]
}

// DefaultInformation reports whether default-route redistribution is
// requested.
func (c *Connection) DefaultInformation() bool { return c.defaultInformation }

// Start enables the connection and schedules the first connect attempt.
// Idempotent: starting an already-started connection does nothing.
func (c *Connection) Start() {
	if c.enabled {
		return
	}
	c.enabled = true
	c.scheduleConnect(0)
}

// Stop disables the connection: disarms every event, closes the socket,
// resets both buffers. The failure counter is untouched; Start brings the
// connection back.
func (c *Connection) Stop() {
	c.enabled = false
	c.teardown()
	c.state = Disabled
	c.opts.Metrics.State(int(Disabled))
}

// Reset is the external restart after dormancy: it zeroes the failure
// counter and schedules a fresh connect.
func (c *Connection) Reset() {
	c.Stop()
	c.failCount = 0
	c.Start()
}

// BackoffDelay computes the retry delay for the given consecutive-failure
// count. ok is false once the count has reached the cap: no further retry
// is scheduled and the connection stays dormant.
func BackoffDelay(o *options.Options, failCount int) (d time.Duration, ok bool) {
	if failCount >= o.MaxFailCount {
		return 0, false
	}
	if failCount < o.ShortBackoffMax {
		return o.ShortBackoff, true
	}
	return o.LongBackoff, true
}

// scheduleConnect arms the connect timer delay from now. Idempotent: if a
// connect is already scheduled, it stays as it is.
func (c *Connection) scheduleConnect(delay time.Duration) {
	if c.connectArmed {
		return
	}
	c.connectArmed = true
	c.connectTok = c.rx.ArmTimerAt(time.Now().Add(delay), c.onConnectTimer)
	c.state = Scheduled
	c.opts.Metrics.State(int(Scheduled))
}

func (c *Connection) onConnectTimer() {
	c.connectArmed = false
	if !c.enabled {
		return
	}
	c.opts.Stats.ConnectAttempt(c.endpoint())
	c.opts.Metrics.ConnectAttempt()
	t, err := c.dial()
	if err == zerrors.ErrConnectPending {
		c.conn = t
		c.state = Connecting
		c.opts.Metrics.State(int(Connecting))
		c.armWrite()
		return
	}
	if err != nil {
		c.fail(err)
		return
	}
	c.conn = t
	c.onConnected()
}

func (c *Connection) endpoint() string {
	if c.opts.UseTCP {
		return c.opts.TCPAddr
	}
	return c.opts.ServPath
}

func (c *Connection) onConnected() {
	c.failCount = 0
	c.state = Connected
	c.opts.Stats.Connected(c.endpoint())
	c.opts.Metrics.Connected()
	c.opts.Metrics.State(int(Connected))
	if c.lookup {
		return
	}
	c.armRead()
	c.handshake()
}

// handshake issues the on-connect sequence in strict order, stopping at
// the first send error (which has already driven the connection to
// Failing by the time Send returns).
func (c *Connection) handshake() {
	if c.redistDefault != wire.RouteTypeNone {
		if c.Send(wire.EncodeHello(c.redistDefault)) != nil {
			return
		}
	}
	if c.Send(wire.EncodeRouterIDAdd()) != nil {
		return
	}
	if c.Send(wire.EncodeInterfaceAdd()) != nil {
		return
	}
	for t := wire.RouteType(0); t < wire.RouteTypeMax; t++ {
		if t == c.redistDefault || !c.redist[t] {
			continue
		}
		if c.Send(wire.EncodeRedistributeAdd(t)) != nil {
			return
		}
	}
	if c.defaultInformation {
		if c.Send(wire.EncodeRedistributeDefaultAdd()) != nil {
			return
		}
	}
}

// Send queues one encoded frame and attempts an immediate drain. It
// returns zerrors.ErrConnectionClosed when there is no live connection
// (the caller re-issues after observing reconnection),
// zerrors.ErrDormant once the failure cap has been reached and only
// Reset can help, and the fatal error when the write path failed, in
// which case the connection is already tearing down.
func (c *Connection) Send(frame []byte) error {
	if c.conn == nil || c.state != Connected {
		if c.state == Failing && c.failCount >= c.opts.MaxFailCount {
			return zerrors.ErrDormant
		}
		return zerrors.ErrConnectionClosed
	}
	cmd := wire.Command(0)
	if len(frame) >= wire.HeaderSize {
		cmd = wire.Command(uint16(frame[4])<<8 | uint16(frame[5]))
	}
	switch c.writeBuf.Write(c.conn, frame) {
	case streambuf.WriteEmpty:
		c.disarmWrite()
	case streambuf.WritePending:
		c.armWrite()
	case streambuf.WriteError:
		c.fail(zerrors.ErrWriteBufferFailed)
		return zerrors.ErrWriteBufferFailed
	}
	c.opts.Stats.FrameSent(cmd, len(frame)-wire.HeaderSize)
	c.opts.Metrics.FrameSent(cmd.String())
	return nil
}

// Flush drains whatever is already queued, for callers that batched
// several frames. No-op when disconnected or empty.
func (c *Connection) Flush() {
	if c.conn == nil || c.writeBuf.Empty() {
		return
	}
	switch c.writeBuf.FlushAvailable(c.conn) {
	case streambuf.WritePending:
		c.armWrite()
	case streambuf.WriteError:
		c.fail(zerrors.ErrWriteBufferFailed)
	case streambuf.WriteEmpty:
		c.disarmWrite()
	}
}

func (c *Connection) armRead() {
	if c.readArmed || c.conn == nil {
		return
	}
	c.readArmed = true
	c.readTok = c.rx.ArmRead(c.conn.Fd(), c.onReadable)
}

// disarmWrite keeps the invariant that a write arm exists only while
// bytes are pending.
func (c *Connection) disarmWrite() {
	if !c.writeArmed {
		return
	}
	c.rx.Disarm(c.writeTok)
	c.writeArmed = false
}

func (c *Connection) armWrite() {
	if c.writeArmed || c.conn == nil {
		return
	}
	c.writeArmed = true
	c.writeTok = c.rx.ArmWrite(c.conn.Fd(), c.onWritable)
}

func (c *Connection) onWritable() {
	c.writeArmed = false
	c.rx.Disarm(c.writeTok)
	if c.conn == nil {
		return
	}
	if c.state == Connecting {
		if checker, ok := c.conn.(ConnectChecker); ok {
			if err := checker.CheckConnectDone(); err != nil {
				c.fail(err)
				return
			}
		}
		c.onConnected()
		if c.conn == nil || c.writeBuf.Empty() {
			return
		}
	}
	switch c.writeBuf.FlushAvailable(c.conn) {
	case streambuf.WritePending:
		c.armWrite()
	case streambuf.WriteError:
		c.fail(zerrors.ErrWriteBufferFailed)
	case streambuf.WriteEmpty:
	}
}

// teardown disarms every token, closes the socket, and resets both
// buffers. Disarming is idempotent, so calling it from any state is safe.
func (c *Connection) teardown() {
	if c.connectArmed {
		c.rx.Disarm(c.connectTok)
		c.connectArmed = false
	}
	if c.readArmed {
		c.rx.Disarm(c.readTok)
		c.readArmed = false
	}
	if c.writeArmed {
		c.rx.Disarm(c.writeTok)
		c.writeArmed = false
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.readBuf.Reset()
	c.writeBuf.Clear()
}

// fail implements the Failing transition: bump the failure counter, tear
// everything down, and schedule the next attempt under backoff, or go
// dormant once the counter reaches the cap.
func (c *Connection) fail(err error) {
	c.failCount++
	c.opts.Stats.ConnectionFailed(c.failCount, err)
	c.opts.Metrics.ConnectFailure(c.failCount)
	c.teardown()
	c.state = Failing
	c.opts.Metrics.State(int(Failing))
	if !c.enabled {
		c.state = Disabled
		c.opts.Metrics.State(int(Disabled))
		return
	}
	delay, ok := BackoffDelay(c.opts, c.failCount)
	if !ok {
		c.opts.Stats.Dormant(c.failCount)
		return
	}
	c.scheduleConnect(delay)
}

// Redistribute updates the subscription for route type t and, when the
// connection is up, sends the matching subscribe/unsubscribe message.
// Set-idempotent: asking for the state the type is already in sends
// nothing. The pinned own-source type is never subscribed over the wire.
func (c *Connection) Redistribute(add bool, t wire.RouteType) error {
	if t >= wire.RouteTypeMax || t == c.redistDefault {
		return nil
	}
	if c.redist[t] == add {
		return nil
	}
	c.redist[t] = add
	if c.conn == nil || c.state != Connected {
		return nil
	}
	if add {
		return c.Send(wire.EncodeRedistributeAdd(t))
	}
	return c.Send(wire.EncodeRedistributeDelete(t))
}

// RedistributeDefault updates the default-route subscription, with the
// same idempotence and send-when-up behavior as Redistribute.
func (c *Connection) RedistributeDefault(add bool) error {
	if c.defaultInformation == add {
		return nil
	}
	c.defaultInformation = add
	if c.conn == nil || c.state != Connected {
		return nil
	}
	if add {
		return c.Send(wire.EncodeRedistributeDefaultAdd())
	}
	return c.Send(wire.EncodeRedistributeDefaultDelete())
}
