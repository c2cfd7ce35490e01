// Package reactor unifies the two event back-ends (a poll-mode reactor
// and a callback-thread scheduler) behind one four-operation interface,
// so the connection state machine and inbound dispatcher (statemachine
// package) never branch on which back-end is in use.
//
// The interface is a small set of verbs over raw file descriptors plus a
// deadline timer, selected by a constructor instead of a runtime
// conditional.
package reactor

import "time"

// Token identifies one armed registration. The zero Token is never
// issued, so a caller can use it as an "unarmed" sentinel.
type Token uint64

// Callback runs when an armed event fires. It always runs on the
// reactor's single executor thread.
type Callback func()

// Reactor is the uniform arming contract: four operations, one
// implementation selected at construction.
type Reactor interface {
	// ArmRead arms read-readiness on fd, level-triggered; the owner
	// re-arms after each successful frame. PollReactor keeps one read
	// registration per fd, so arming an already-armed fd replaces the
	// callback; ThreadReactor does not replace: each ArmRead starts its
	// own one-shot wait, and every live one fires.
	ArmRead(fd int, cb Callback) Token
	// ArmWrite arms write-readiness on fd. An arm exists only while
	// data is pending.
	ArmWrite(fd int, cb Callback) Token
	// ArmTimerAt arms a one-shot callback at deadline.
	ArmTimerAt(deadline time.Time, cb Callback) Token
	// Disarm cancels a previously-armed token. Idempotent: disarming an
	// already-disarmed or unknown token is a no-op, never an error.
	Disarm(tok Token)
	// Close releases the reactor's own resources (ThreadReactor's
	// scheduler goroutine; PollReactor holds none and its Close does
	// nothing). Not required before process exit, but lets tests avoid
	// leaking a goroutine per case.
	Close() error
}
