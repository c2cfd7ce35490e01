package zclient

import "github.com/uestchp/zclient/wire"

// Op selects the direction of a redistribution mutator.
type Op int

const (
	Add Op = iota
	Delete
)

// Redistribute subscribes to (or unsubscribes from) routes of type t.
// The local bookkeeping is set-idempotent: asking for the state t is
// already in sends nothing. When the connection is up the matching wire
// message goes out immediately; the subscription set is also replayed on
// every reconnect, so callers set it once and forget it.
func (c *Client) Redistribute(op Op, t wire.RouteType) error {
	return c.conn.Redistribute(op == Add, t)
}

// RedistributeDefault subscribes to (or unsubscribes from) default-route
// redistribution, with the same idempotence and replay behavior.
func (c *Client) RedistributeDefault(op Op) error {
	return c.conn.RedistributeDefault(op == Add)
}
