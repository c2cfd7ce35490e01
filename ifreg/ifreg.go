// Package ifreg declares the interface-registry contract the client's
// inbound handlers feed. The registry itself belongs to the embedding
// daemon; the client only consumes this interface, never implements it
// (it is the external collaborator the rest of the daemon already keeps
// for its interface table).
package ifreg

import "net"

// Interface is the registry's view of one link, filled from the route
// manager's interface notifications.
type Interface struct {
	Name      string
	Ifindex   uint32
	Status    byte
	Flags     uint64
	Metric    uint32
	MTU       uint32
	MTU6      uint32
	Bandwidth uint32
	HWAddr    []byte
}

// Registry is what the embedding daemon exposes. GetByName creates the
// entry if it does not exist yet (interface notifications can arrive
// before the daemon's own enumeration).
type Registry interface {
	LookupByIndex(ifindex uint32) *Interface
	GetByName(name string) *Interface
	Update(iface Interface)
	Delete(ifindex uint32)
	// ConnectedAdd and ConnectedDelete track addresses on a link. dest
	// is nil when the wire carried no destination.
	ConnectedAdd(ifindex uint32, family byte, addr net.IP, prefixLen byte, dest net.IP)
	ConnectedDelete(ifindex uint32, family byte, addr net.IP, prefixLen byte, dest net.IP)
}
