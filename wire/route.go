package wire

import (
	"net"

	"github.com/uestchp/zclient/zerrors"
)

// Prefix is an (address bytes, prefix length) pair; the family is
// implied by the address width.
type Prefix struct {
	IP  net.IP // 4 bytes for IPv4, 16 for IPv6
	Len uint8
}

// PSIZE returns ceil(n/8), the number of significant prefix bytes for
// an n-bit prefix length.
func PSIZE(n uint8) int {
	return (int(n) + 7) / 8
}

// Nexthop is one entry of a route's nexthop set: either an IP address on
// an interface, a bare interface index, or the blackhole sentinel.
type Nexthop struct {
	Type    byte // NexthopIPv4, NexthopIPv6, NexthopIfindex, or NexthopBlackhole
	Addr    net.IP
	Ifindex uint32
}

// RouteAPI carries everything needed to encode an IPV4_ROUTE_* or
// IPV6_ROUTE_* message body.
type RouteAPI struct {
	Type        RouteType
	Flags       byte // zebra_flags
	Message     byte // message_flags bitset
	SAFI        uint16
	Nexthops    []Nexthop // IP/ifindex nexthops; ignored if Flags has FlagBlackhole and addrLen==4
	Distance    uint8
	Metric      uint32
	HasDistance bool
	HasMetric   bool
}

// EncodeRoute serializes a route body for the given prefix. addrLen is
// 4 for IPv4 routes, 16 for IPv6 routes; it determines both PSIZE bounds
// and whether the blackhole shortcut applies.
func EncodeRoute(prefix Prefix, api RouteAPI, addrLen int) []byte {
	body := make([]byte, 0, 32)
	body = append(body, byte(api.Type), api.Flags, api.Message)
	body = AppendUint16(body, api.SAFI)
	body = append(body, prefix.Len)
	psize := PSIZE(prefix.Len)
	prefixBytes := make([]byte, psize)
	copy(prefixBytes, prefix.IP)
	body = append(body, prefixBytes...)

	if api.Message&MessageNexthop != 0 {
		if addrLen == 4 && api.Flags&FlagBlackhole != 0 {
			body = append(body, 1, NexthopBlackhole)
		} else {
			body = append(body, byte(len(api.Nexthops)))
			for _, nh := range api.Nexthops {
				body = append(body, nh.Type)
				switch nh.Type {
				case NexthopIPv4, NexthopIPv6:
					addr := make([]byte, addrLen)
					copy(addr, nh.Addr)
					body = append(body, addr...)
				case NexthopIfindex:
					body = AppendUint32(body, nh.Ifindex)
				}
			}
		}
	}
	if api.Message&MessageDistance != 0 {
		body = append(body, api.Distance)
	}
	if api.Message&MessageMetric != 0 {
		body = AppendUint32(body, api.Metric)
	}
	return body
}

// DecodeRoute is the inverse of EncodeRoute.
func DecodeRoute(body []byte, addrLen int) (Prefix, RouteAPI, error) {
	var prefix Prefix
	var api RouteAPI
	offset := 0

	offset, t, err := ParserReadByte(body, offset)
	if err != nil {
		return prefix, api, err
	}
	api.Type = RouteType(t)

	offset, api.Flags, err = ParserReadByte(body, offset)
	if err != nil {
		return prefix, api, err
	}
	offset, api.Message, err = ParserReadByte(body, offset)
	if err != nil {
		return prefix, api, err
	}
	offset, api.SAFI, err = ParserReadUint16(body, offset)
	if err != nil {
		return prefix, api, err
	}
	var plen byte
	offset, plen, err = ParserReadByte(body, offset)
	if err != nil {
		return prefix, api, err
	}
	prefix.Len = plen
	psize := PSIZE(plen)
	var prefixBytes []byte
	offset, prefixBytes, err = ParserReadN(body, offset, psize)
	if err != nil {
		return prefix, api, err
	}
	prefix.IP = make(net.IP, addrLen)
	copy(prefix.IP, prefixBytes)

	if api.Message&MessageNexthop != 0 {
		var count byte
		offset, count, err = ParserReadByte(body, offset)
		if err != nil {
			return prefix, api, err
		}
		for i := byte(0); i < count; i++ {
			var nh Nexthop
			offset, nh.Type, err = ParserReadByte(body, offset)
			if err != nil {
				return prefix, api, err
			}
			switch nh.Type {
			case NexthopIPv4, NexthopIPv6:
				var addr []byte
				offset, addr, err = ParserReadN(body, offset, addrLen)
				if err != nil {
					return prefix, api, err
				}
				nh.Addr = make(net.IP, addrLen)
				copy(nh.Addr, addr)
			case NexthopIfindex:
				offset, nh.Ifindex, err = ParserReadUint32(body, offset)
				if err != nil {
					return prefix, api, err
				}
			case NexthopBlackhole:
				// no payload
			default:
				return prefix, api, zerrors.ErrUnknownCommand
			}
			api.Nexthops = append(api.Nexthops, nh)
		}
	}
	if api.Message&MessageDistance != 0 {
		api.HasDistance = true
		offset, api.Distance, err = ParserReadByte(body, offset)
		if err != nil {
			return prefix, api, err
		}
	}
	if api.Message&MessageMetric != 0 {
		api.HasMetric = true
		offset, api.Metric, err = ParserReadUint32(body, offset)
		if err != nil {
			return prefix, api, err
		}
	}
	if err := ParserReadFinish(body, offset); err != nil {
		return prefix, api, err
	}
	return prefix, api, nil
}

// EncodeFrame wraps a body in the fixed header and patches the length.
func EncodeFrame(cmd Command, body []byte) []byte {
	frame := EncodeHeaderPrefix(cmd)
	frame = append(frame, body...)
	PatchLength(frame)
	return frame
}
