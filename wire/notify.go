package wire

import "net"

// HWAddrEncoding selects how an inbound interface-add notification's
// hardware-address tail is laid out on the wire. The wire is not
// self-describing here: the layout depends on how the server was built,
// so this client makes it a runtime choice
// (options.WithInterfaceAddrEncoding) and defaults to the
// length-prefixed form.
type HWAddrEncoding int

const (
	// HWAddrLengthPrefixed decodes hw_addr_len:u32 followed by that many
	// raw bytes; self-describing and platform-portable.
	HWAddrLengthPrefixed HWAddrEncoding = iota
	// SockaddrDL decodes a fixed-size platform sockaddr_dl blob, for
	// servers compiled with that historical BSD layout.
	SockaddrDL
)

// sockaddrDLSize is the fixed size of a BSD sockaddr_dl structure as used
// by the historical interface-add wire format; present only so SockaddrDL
// decoding has a concrete, documented width instead of guessing at runtime.
const sockaddrDLSize = 20

// RouterIDUpdate decodes a ROUTER_ID_UPDATE body.
type RouterIDUpdate struct {
	Family    byte
	Address   net.IP
	PrefixLen byte
}

func prefixByteLen(family byte) int {
	if family == 10 { // AF_INET6
		return 16
	}
	return 4 // AF_INET and anything else defaults to 4
}

// DecodeRouterIDUpdate parses family:u8, address:[prefix_blen(family)],
// prefixlen:u8.
func DecodeRouterIDUpdate(body []byte) (RouterIDUpdate, error) {
	var out RouterIDUpdate
	offset, family, err := ParserReadByte(body, 0)
	if err != nil {
		return out, err
	}
	out.Family = family
	addrLen := prefixByteLen(family)
	var addr []byte
	offset, addr, err = ParserReadN(body, offset, addrLen)
	if err != nil {
		return out, err
	}
	out.Address = append(net.IP(nil), addr...)
	offset, out.PrefixLen, err = ParserReadByte(body, offset)
	if err != nil {
		return out, err
	}
	return out, ParserReadFinish(body, offset)
}

// interfaceNameSize is the fixed, NUL-padded interface-name field width.
const interfaceNameSize = 20

// InterfaceAdd decodes INTERFACE_ADD / INTERFACE_UP / INTERFACE_DOWN
// notification bodies.
type InterfaceAdd struct {
	Name      string
	Ifindex   uint32
	Status    byte
	Flags     uint64
	Metric    uint32
	MTU       uint32
	MTU6      uint32
	Bandwidth uint32
	HWAddr    []byte // only populated for the ADD command
}

// DecodeInterfaceAdd parses the fixed fields common to all interface
// notifications, plus (for the ADD command only, selected by hasHWAddr)
// the hardware-address tail per enc.
func DecodeInterfaceAdd(body []byte, hasHWAddr bool, enc HWAddrEncoding) (InterfaceAdd, error) {
	var out InterfaceAdd
	var nameBytes []byte
	offset, nameBytes, err := ParserReadN(body, 0, interfaceNameSize)
	if err != nil {
		return out, err
	}
	end := 0
	for end < len(nameBytes) && nameBytes[end] != 0 {
		end++
	}
	out.Name = string(nameBytes[:end])

	offset, out.Ifindex, err = ParserReadUint32(body, offset)
	if err != nil {
		return out, err
	}
	offset, out.Status, err = ParserReadByte(body, offset)
	if err != nil {
		return out, err
	}
	offset, out.Flags, err = ParserReadUint64(body, offset)
	if err != nil {
		return out, err
	}
	offset, out.Metric, err = ParserReadUint32(body, offset)
	if err != nil {
		return out, err
	}
	offset, out.MTU, err = ParserReadUint32(body, offset)
	if err != nil {
		return out, err
	}
	offset, out.MTU6, err = ParserReadUint32(body, offset)
	if err != nil {
		return out, err
	}
	offset, out.Bandwidth, err = ParserReadUint32(body, offset)
	if err != nil {
		return out, err
	}
	if !hasHWAddr {
		return out, ParserReadFinish(body, offset)
	}
	if enc == SockaddrDL {
		var blob []byte
		offset, blob, err = ParserReadN(body, offset, sockaddrDLSize)
		if err != nil {
			return out, err
		}
		out.HWAddr = append([]byte(nil), blob...)
		return out, ParserReadFinish(body, offset)
	}
	var hwLen uint32
	offset, hwLen, err = ParserReadUint32(body, offset)
	if err != nil {
		return out, err
	}
	var hwAddr []byte
	offset, hwAddr, err = ParserReadN(body, offset, int(hwLen))
	if err != nil {
		return out, err
	}
	out.HWAddr = append([]byte(nil), hwAddr...)
	return out, ParserReadFinish(body, offset)
}

// InterfaceAddress decodes INTERFACE_ADDRESS_ADD / DELETE bodies.
type InterfaceAddress struct {
	Ifindex     uint32
	Flags       byte
	Family      byte
	Addr        net.IP
	PrefixLen   byte
	Destination net.IP // nil if the wire destination was all-zero bytes
}

// DecodeInterfaceAddress parses ifindex:u32, flags:u8, family:u8,
// addr:[plen], prefixlen:u8, destination:[plen]. A destination of
// all-zero bytes means "no destination" and comes back as nil.
func DecodeInterfaceAddress(body []byte) (InterfaceAddress, error) {
	var out InterfaceAddress
	offset, ifindex, err := ParserReadUint32(body, 0)
	if err != nil {
		return out, err
	}
	out.Ifindex = ifindex
	offset, out.Flags, err = ParserReadByte(body, offset)
	if err != nil {
		return out, err
	}
	offset, out.Family, err = ParserReadByte(body, offset)
	if err != nil {
		return out, err
	}
	plen := prefixByteLen(out.Family)
	var addr []byte
	offset, addr, err = ParserReadN(body, offset, plen)
	if err != nil {
		return out, err
	}
	out.Addr = append(net.IP(nil), addr...)
	offset, out.PrefixLen, err = ParserReadByte(body, offset)
	if err != nil {
		return out, err
	}
	var dest []byte
	offset, dest, err = ParserReadN(body, offset, plen)
	if err != nil {
		return out, err
	}
	if !allZero(dest) {
		out.Destination = append(net.IP(nil), dest...)
	}
	return out, ParserReadFinish(body, offset)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
