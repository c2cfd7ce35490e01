// Package zstats is the client's logging seam: a small table of named
// events the core calls out to, with one stdlib-`log`-backed
// implementation and an atomic level so an embedder can silence it
// without touching call sites.
package zstats

import (
	"log"
	"sync/atomic"

	"github.com/uestchp/zclient/wire"
)

// Stats receives the events the connection state machine and dispatcher
// produce. Every method must return quickly and must not block: it may be
// called from the single reactor executor thread.
type Stats interface {
	ConnectAttempt(path string)
	ServPathRejected(path string)
	Connected(path string)
	ConnectionFailed(failCount int, err error)
	FrameSent(cmd wire.Command, bodyLen int)
	FrameReceived(cmd wire.Command, bodyLen int)
	UnknownCommand(cmd wire.Command)
	FrameRejected(err error)
	Dormant(failCount int)
}

// Log is a Stats implementation on stdlib log. Level < 0 silences
// everything.
type Log struct {
	level atomic.Int32
}

// NewLog returns a Stats that logs at normal verbosity.
func NewLog() *Log {
	return &Log{}
}

// SetLevel changes verbosity; level < 0 suppresses all output.
func (l *Log) SetLevel(level int32) { l.level.Store(level) }

func (l *Log) quiet() bool { return l.level.Load() < 0 }

func (l *Log) ConnectAttempt(path string) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: connecting to %s", path)
}

func (l *Log) ServPathRejected(path string) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: serv path %s is not a socket file, keeping default", path)
}

func (l *Log) Connected(path string) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: connected to %s", path)
}

func (l *Log) ConnectionFailed(failCount int, err error) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: connection failed (fail_count=%d): %v", failCount, err)
}

func (l *Log) FrameSent(cmd wire.Command, bodyLen int) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: sent %s body=%dB", cmd, bodyLen)
}

func (l *Log) FrameReceived(cmd wire.Command, bodyLen int) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: received %s body=%dB", cmd, bodyLen)
}

func (l *Log) UnknownCommand(cmd wire.Command) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: dropping unknown command %d", cmd)
}

func (l *Log) FrameRejected(err error) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: rejecting frame: %v", err)
}

func (l *Log) Dormant(failCount int) {
	if l.quiet() {
		return
	}
	log.Printf("zclient: fail_count=%d reached cap, going dormant", failCount)
}

// Noop discards every event, for embedders and tests that don't want
// logging at all.
type Noop struct{}

func (Noop) ConnectAttempt(string)           {}
func (Noop) ServPathRejected(string)         {}
func (Noop) Connected(string)                {}
func (Noop) ConnectionFailed(int, error)     {}
func (Noop) FrameSent(wire.Command, int)     {}
func (Noop) FrameReceived(wire.Command, int) {}
func (Noop) UnknownCommand(wire.Command)     {}
func (Noop) FrameRejected(error)             {}
func (Noop) Dormant(int)                     {}
