package zclient

import "github.com/uestchp/zclient/wire"

// RouteIPv4 encodes and queues an IPv4 route install or withdraw.
// op Add sends IPV4_ROUTE_ADD, Delete sends IPV4_ROUTE_DELETE.
func (c *Client) RouteIPv4(op Op, prefix wire.Prefix, api wire.RouteAPI) error {
	cmd := wire.CmdIPv4RouteAdd
	if op == Delete {
		cmd = wire.CmdIPv4RouteDelete
	}
	return c.conn.Send(wire.EncodeFrame(cmd, wire.EncodeRoute(prefix, api, 4)))
}

// RouteIPv6 is the 16-byte-address analogue of RouteIPv4.
func (c *Client) RouteIPv6(op Op, prefix wire.Prefix, api wire.RouteAPI) error {
	cmd := wire.CmdIPv6RouteAdd
	if op == Delete {
		cmd = wire.CmdIPv6RouteDelete
	}
	return c.conn.Send(wire.EncodeFrame(cmd, wire.EncodeRoute(prefix, api, 16)))
}
