package zclient

import (
	"github.com/uestchp/zclient/ifreg"
	"github.com/uestchp/zclient/wire"
)

// RegisterInterfaceHandlers fills the client's handler slots for the
// server's interface and address notifications, decoding each body and
// feeding the embedder's interface registry. Decode failures drop the
// frame; a malformed body from the server is logged by the stats sink
// rather than killing the connection, since the framing itself was valid.
func (c *Client) RegisterInterfaceHandlers(reg ifreg.Registry) {
	enc := c.opts.InterfaceAddrEncoding

	ifaceUpdate := func(cmd wire.Command, body []byte) {
		info, err := wire.DecodeInterfaceAdd(body, cmd == wire.CmdInterfaceAdd, enc)
		if err != nil {
			c.opts.Stats.FrameRejected(err)
			return
		}
		switch cmd {
		case wire.CmdInterfaceDelete:
			reg.Delete(info.Ifindex)
		default:
			reg.Update(ifreg.Interface{
				Name:      info.Name,
				Ifindex:   info.Ifindex,
				Status:    info.Status,
				Flags:     info.Flags,
				Metric:    info.Metric,
				MTU:       info.MTU,
				MTU6:      info.MTU6,
				Bandwidth: info.Bandwidth,
				HWAddr:    info.HWAddr,
			})
		}
	}
	c.Handle(wire.CmdInterfaceAdd, ifaceUpdate)
	c.Handle(wire.CmdInterfaceDelete, ifaceUpdate)
	c.Handle(wire.CmdInterfaceUp, ifaceUpdate)
	c.Handle(wire.CmdInterfaceDown, ifaceUpdate)

	addrUpdate := func(cmd wire.Command, body []byte) {
		addr, err := wire.DecodeInterfaceAddress(body)
		if err != nil {
			c.opts.Stats.FrameRejected(err)
			return
		}
		if cmd == wire.CmdInterfaceAddressAdd {
			reg.ConnectedAdd(addr.Ifindex, addr.Family, addr.Addr, addr.PrefixLen, addr.Destination)
		} else {
			reg.ConnectedDelete(addr.Ifindex, addr.Family, addr.Addr, addr.PrefixLen, addr.Destination)
		}
	}
	c.Handle(wire.CmdInterfaceAddressAdd, addrUpdate)
	c.Handle(wire.CmdInterfaceAddressDelete, addrUpdate)
}

// RegisterRouterIDHandler calls fn with each decoded router-id update.
func (c *Client) RegisterRouterIDHandler(fn func(wire.RouterIDUpdate)) {
	c.Handle(wire.CmdRouterIDUpdate, func(_ wire.Command, body []byte) {
		upd, err := wire.DecodeRouterIDUpdate(body)
		if err != nil {
			c.opts.Stats.FrameRejected(err)
			return
		}
		fn(upd)
	})
}
