package wire

// EncodeHello builds a HELLO frame, body = route_type:u8.
func EncodeHello(redistDefault RouteType) []byte {
	return EncodeFrame(CmdHello, []byte{byte(redistDefault)})
}

// EncodeRouterIDAdd builds an empty-body ROUTER_ID_ADD frame.
func EncodeRouterIDAdd() []byte {
	return EncodeFrame(CmdRouterIDAdd, nil)
}

// EncodeInterfaceAdd builds an empty-body INTERFACE_ADD frame (the
// client-to-server subscription request, distinct from the server's
// INTERFACE_ADD notification decoded in notify.go).
func EncodeInterfaceAdd() []byte {
	return EncodeFrame(CmdInterfaceAdd, nil)
}

// EncodeRedistributeAdd / EncodeRedistributeDelete build
// REDISTRIBUTE_ADD/DELETE frames, body = route_type:u8.
func EncodeRedistributeAdd(t RouteType) []byte {
	return EncodeFrame(CmdRedistributeAdd, []byte{byte(t)})
}

func EncodeRedistributeDelete(t RouteType) []byte {
	return EncodeFrame(CmdRedistributeDelete, []byte{byte(t)})
}

// EncodeRedistributeDefaultAdd / Delete build the empty-body default-route
// redistribution subscribe/unsubscribe frames.
func EncodeRedistributeDefaultAdd() []byte {
	return EncodeFrame(CmdRedistributeDefaultAdd, nil)
}

func EncodeRedistributeDefaultDelete() []byte {
	return EncodeFrame(CmdRedistributeDefaultDelete, nil)
}
