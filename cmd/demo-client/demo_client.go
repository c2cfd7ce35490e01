// demo-client connects to a running fakezebra, subscribes to kernel and
// static routes, installs one blackhole route, and prints the router-id
// updates the server pushes.
package main

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uestchp/zclient"
	"github.com/uestchp/zclient/options"
	"github.com/uestchp/zclient/reactor"
	"github.com/uestchp/zclient/wire"
	"github.com/uestchp/zclient/zmetrics"
)

func main() {
	m, err := zmetrics.New(zmetrics.Config{})
	if err != nil {
		panic(err)
	}
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe("127.0.0.1:9473", nil)
	}()

	rx := reactor.NewThreadReactor()
	opts := options.Default(
		options.WithServPath("/tmp/fakezebra.api"),
		options.WithMetrics(m),
	)
	c, err := zclient.New(wire.RouteTypeBGP, rx, opts)
	if err != nil {
		panic(err)
	}
	c.RegisterRouterIDHandler(func(upd wire.RouterIDUpdate) {
		fmt.Printf("demo: router id %v/%d\n", upd.Address, upd.PrefixLen)
	})
	c.Start()

	// Client methods run on the reactor executor, so requests are
	// marshaled onto it. Subscriptions made before the connection is up
	// are bookkeeping only and the connect handshake sends them; a route
	// install while disconnected comes back with an error, so that is the
	// only thing we retry by hand
	rx.AddEvent(func() {
		_ = c.Redistribute(zclient.Add, wire.RouteTypeKernel)
		_ = c.Redistribute(zclient.Add, wire.RouteTypeStatic)
	})

	prefix := wire.Prefix{IP: net.IPv4(10, 0, 0, 0).To4(), Len: 8}
	api := wire.RouteAPI{
		Type:    wire.RouteTypeBGP,
		Flags:   wire.FlagBlackhole,
		Message: wire.MessageNexthop,
		SAFI:    1,
	}
	for {
		time.Sleep(time.Second)
		done := make(chan error, 1)
		rx.AddEvent(func() { done <- c.RouteIPv4(zclient.Add, prefix, api) })
		if err := <-done; err == nil {
			fmt.Println("demo: blackhole route installed")
			break
		}
	}
	select {}
}
