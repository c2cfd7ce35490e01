// Package statemachine drives one Z-protocol connection through its
// lifecycle (disabled/scheduled/connecting/connected/failing) and runs
// the inbound dispatcher, against whichever reactor.Reactor back-end the
// embedder selected.
//
// A Connection is a single struct owning the socket, the stream buffers,
// and the reactor tokens, with the state transitions expressed as plain
// methods rather than a table of function pointers. It carries no mutex:
// the embedder runs every reactor callback on one executor thread, so a
// lock would have no job to do.
package statemachine

// State is one of the five lifecycle states.
type State int

const (
	// Disabled is the state after construction (before Start) and after
	// an explicit Stop: no socket, no armed events, fail_count untouched.
	Disabled State = iota
	// Scheduled means a connect timer is armed; fires into connect().
	Scheduled
	// Connecting means a non-blocking connect is in progress, waiting on
	// write-readiness to learn the outcome.
	Connecting
	// Connected means the on-connect handshake has been issued and Read is
	// armed; lookup connections reach it with neither.
	Connected
	// Failing is the state entered on any fatal I/O or framing error.
	// fail() resolves it into Scheduled (with backoff), or into Disabled
	// if the connection was stopped; once the failure count reaches the
	// cap it stays Failing with nothing armed until Reset.
	Failing
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Scheduled:
		return "scheduled"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failing:
		return "failing"
	default:
		return "unknown"
	}
}
