// Package zsocket implements the non-blocking stream socket transport:
// create and connect a UNIX-domain or loopback-TCP stream socket, wrap
// the read/write syscalls, and translate would-block/closed/error into
// the ternary results the rest of the client depends on.
//
// Go's net package deliberately hides the raw file descriptor behind
// goroutine-parked deadlines, which is the wrong fit for a
// single-threaded cooperative reactor that must treat "the socket would
// block" as a value, not a timeout to race against. This package is
// built directly on golang.org/x/sys/unix instead, the same dependency
// the reactor package's polling backend needs for poll(2) regardless.
package zsocket

import (
	"net"

	"golang.org/x/sys/unix"

	"github.com/uestchp/zclient/zerrors"
)

// Socket owns one non-blocking stream file descriptor.
type Socket struct {
	fd int
}

// Fd returns the raw descriptor, for arming with a reactor.
func (s *Socket) Fd() int { return s.fd }

// ConnectUnix creates a non-blocking AF_UNIX SOCK_STREAM socket and starts
// connecting to path. The connect itself may still be in progress when
// this returns (zerrors.ErrConnectPending); the caller arms write-
// readiness and checks SO_ERROR when it fires.
func ConnectUnix(path string) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, zerrors.ErrSocketIO
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, zerrors.ErrSocketIO
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Connect(fd, addr); err != nil {
		if err == unix.EINPROGRESS {
			return &Socket{fd: fd}, zerrors.ErrConnectPending
		}
		unix.Close(fd)
		return nil, zerrors.ErrSocketIO
	}
	return &Socket{fd: fd}, nil
}

// ConnectTCP creates a non-blocking AF_INET socket and connects to the
// loopback address:port named by addr.
func ConnectTCP(addr string) (*Socket, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, zerrors.ErrSocketIO
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, zerrors.ErrSocketIO
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, zerrors.ErrSocketIO
	}
	var sa unix.SockaddrInet4
	copy(sa.Addr[:], tcpAddr.IP.To4())
	sa.Port = tcpAddr.Port
	if err := unix.Connect(fd, &sa); err != nil {
		if err == unix.EINPROGRESS {
			return &Socket{fd: fd}, zerrors.ErrConnectPending
		}
		unix.Close(fd)
		return nil, zerrors.ErrSocketIO
	}
	return &Socket{fd: fd}, nil
}

// CheckConnectDone is called once write-readiness fires on a socket whose
// connect was EINPROGRESS. It returns nil once the connect has actually
// succeeded, or a fatal error if it failed.
func CheckConnectDone(s *Socket) error {
	errno, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return zerrors.ErrSocketIO
	}
	if errno != 0 {
		return zerrors.ErrSocketIO
	}
	return nil
}

// CheckConnectDone is the method form of the package-level check, so the
// socket satisfies the connection state machine's ConnectChecker seam.
func (s *Socket) CheckConnectDone() error {
	return CheckConnectDone(s)
}

// Read performs one non-blocking read into buf: a positive n on
// progress, zerrors.ErrWouldBlock if nothing was available, or
// zerrors.ErrConnectionClosed on EOF/hangup.
func (s *Socket) Read(buf []byte) (int, error) {
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, zerrors.ErrWouldBlock
		}
		return 0, zerrors.ErrSocketIO
	}
	if n == 0 {
		return 0, zerrors.ErrConnectionClosed
	}
	return n, nil
}

// Write performs one non-blocking write of b, satisfying
// streambuf.Writer. Short writes are normal and are not an error.
func (s *Socket) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := unix.Write(s.fd, b)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, zerrors.ErrWouldBlock
		}
		return 0, zerrors.ErrSocketIO
	}
	return n, nil
}

// Close closes the underlying descriptor. Idempotent: closing twice is a
// no-op error discarded by the caller.
func (s *Socket) Close() error {
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}
