package statemachine

import (
	"github.com/uestchp/zclient/wire"
	"github.com/uestchp/zclient/zerrors"
)

// onReadable is the inbound dispatcher. Two-phase read: accumulate the
// 6-byte header, validate it, then accumulate the declared frame length
// (growing the read buffer first if the frame is oversized) and dispatch
// the body to the registered handler. At most one complete frame is
// processed per callback; partial reads keep their progress in the read
// buffer and re-arm.
func (c *Connection) onReadable() {
	c.readArmed = false
	c.rx.Disarm(c.readTok)
	if c.conn == nil {
		return
	}

	// header phase
	for c.readBuf.WriteCursor < wire.HeaderSize {
		if !c.fill(wire.HeaderSize) {
			return
		}
	}

	hdr, err := wire.DecodeHeader(c.readBuf.Bytes())
	if err != nil {
		c.opts.Stats.FrameRejected(err)
		c.fail(err)
		return
	}

	// body phase
	length := int(hdr.Length)
	if length > c.readBuf.Capacity() {
		c.readBuf.Grow(length)
	}
	for c.readBuf.WriteCursor < length {
		if !c.fill(length) {
			return
		}
	}

	body := c.readBuf.Bytes()[wire.HeaderSize:length]
	if h, ok := c.handlers[hdr.Command]; ok && h != nil {
		c.opts.Stats.FrameReceived(hdr.Command, len(body))
		c.opts.Metrics.FrameReceived(hdr.Command.String())
		h(hdr.Command, body)
	} else {
		c.opts.Stats.UnknownCommand(hdr.Command)
		c.opts.Metrics.FrameDropped()
	}

	// the handler may have called Stop or Reset; only touch the buffer
	// and re-arm if the socket survived the dispatch
	if c.conn == nil {
		return
	}
	c.readBuf.Reset()
	c.armRead()
}

// fill reads once toward target bytes accumulated. It returns false when
// the caller must stop: either the socket would block (progress kept,
// read re-armed) or the connection failed.
func (c *Connection) fill(target int) bool {
	need := c.readBuf.RemainingToFill(target)
	if need == 0 {
		return true
	}
	n, err := c.conn.Read(c.readBuf.FreeSpace()[:need])
	if err == zerrors.ErrWouldBlock {
		c.armRead()
		return false
	}
	if err != nil {
		c.fail(err)
		return false
	}
	c.readBuf.Advance(n)
	return true
}
