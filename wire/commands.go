package wire

// Command is the 2-byte command code in the frame header.
type Command uint16

// Command codes. Stable across releases of this client: peers and tests
// rely on the numeric values, not just the names.
const (
	CmdInterfaceAdd Command = iota + 1
	CmdInterfaceDelete
	CmdInterfaceAddressAdd
	CmdInterfaceAddressDelete
	CmdInterfaceUp
	CmdInterfaceDown
	CmdIPv4RouteAdd
	CmdIPv4RouteDelete
	CmdIPv6RouteAdd
	CmdIPv6RouteDelete
	CmdRedistributeAdd
	CmdRedistributeDelete
	CmdRedistributeDefaultAdd
	CmdRedistributeDefaultDelete
	CmdRouterIDAdd
	CmdRouterIDUpdate
	CmdHello
)

func (c Command) String() string {
	switch c {
	case CmdInterfaceAdd:
		return "INTERFACE_ADD"
	case CmdInterfaceDelete:
		return "INTERFACE_DELETE"
	case CmdInterfaceAddressAdd:
		return "INTERFACE_ADDRESS_ADD"
	case CmdInterfaceAddressDelete:
		return "INTERFACE_ADDRESS_DELETE"
	case CmdInterfaceUp:
		return "INTERFACE_UP"
	case CmdInterfaceDown:
		return "INTERFACE_DOWN"
	case CmdIPv4RouteAdd:
		return "IPV4_ROUTE_ADD"
	case CmdIPv4RouteDelete:
		return "IPV4_ROUTE_DELETE"
	case CmdIPv6RouteAdd:
		return "IPV6_ROUTE_ADD"
	case CmdIPv6RouteDelete:
		return "IPV6_ROUTE_DELETE"
	case CmdRedistributeAdd:
		return "REDISTRIBUTE_ADD"
	case CmdRedistributeDelete:
		return "REDISTRIBUTE_DELETE"
	case CmdRedistributeDefaultAdd:
		return "REDISTRIBUTE_DEFAULT_ADD"
	case CmdRedistributeDefaultDelete:
		return "REDISTRIBUTE_DEFAULT_DELETE"
	case CmdRouterIDAdd:
		return "ROUTER_ID_ADD"
	case CmdRouterIDUpdate:
		return "ROUTER_ID_UPDATE"
	case CmdHello:
		return "HELLO"
	default:
		return "UNKNOWN"
	}
}

// RouteType identifies a routing protocol as a redistribution source.
// RouteTypeMax bounds the per-type subscription array.
type RouteType uint8

const (
	RouteTypeSystem RouteType = iota
	RouteTypeKernel
	RouteTypeConnect
	RouteTypeStatic
	RouteTypeRIP
	RouteTypeRIPNG
	RouteTypeOSPF
	RouteTypeOSPF6
	RouteTypeISIS
	RouteTypeBGP
	RouteTypeMax // exclusive upper bound; also used as redist[] array size
)

// RouteTypeNone is the sentinel meaning "no own route source
// configured"; a client constructed with it never sends HELLO. It is
// deliberately outside [0, RouteTypeMax) so it can never collide with a
// real route type or set a subscription bit.
const RouteTypeNone RouteType = RouteTypeMax

// Zebra route flags (message body "zebra_flags" byte).
const (
	FlagSelected  byte = 1 << 0
	FlagBlackhole byte = 1 << 1
	FlagReject    byte = 1 << 2
)

// Message-flags bitset selecting which optional route-body fields
// follow the prefix.
const (
	MessageNexthop  byte = 1 << 0
	MessageIfindex  byte = 1 << 1
	MessageDistance byte = 1 << 2
	MessageMetric   byte = 1 << 3
)

// Nexthop type tags in the route body's nexthop entries.
const (
	NexthopIfindex   byte = 1
	NexthopIPv4      byte = 2
	NexthopIPv6      byte = 3
	NexthopBlackhole byte = 4
)
