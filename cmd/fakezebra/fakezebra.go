// fakezebra is a hand-driven test peer: it listens on the demo UNIX
// socket, prints every frame a client sends, and pushes a canned
// router-id update back. It is a manual-test harness in the spirit of
// the usual test_server binary, not a real route manager.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"net"
	"os"

	"github.com/uestchp/zclient/wire"
)

const sockPath = "/tmp/fakezebra.api"

func main() {
	_ = os.Remove(sockPath)
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		log.Fatal("fakezebra: listen: ", err)
	}
	defer ln.Close()
	fmt.Println("fakezebra: listening on", sockPath)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Fatal("fakezebra: accept: ", err)
		}
		go serve(conn)
	}
}

func serve(conn net.Conn) {
	defer conn.Close()
	fmt.Println("fakezebra: client connected")

	// announce a router id so the client's handler path gets exercised
	body := []byte{2 /* AF_INET */, 192, 0, 2, 1, 32}
	if _, err := conn.Write(wire.EncodeFrame(wire.CmdRouterIDUpdate, body)); err != nil {
		return
	}

	hdr := make([]byte, wire.HeaderSize)
	for {
		if _, err := io.ReadFull(conn, hdr); err != nil {
			fmt.Println("fakezebra: client gone:", err)
			return
		}
		length := binary.BigEndian.Uint16(hdr)
		cmd := wire.Command(binary.BigEndian.Uint16(hdr[4:]))
		rest := make([]byte, int(length)-wire.HeaderSize)
		if _, err := io.ReadFull(conn, rest); err != nil {
			return
		}
		fmt.Printf("fakezebra: %s body=%dB % x\n", cmd, len(rest), rest)
	}
}
