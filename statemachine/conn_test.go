package statemachine

import (
	"bytes"
	"testing"
	"time"

	"github.com/uestchp/zclient/options"
	"github.com/uestchp/zclient/wire"
	"github.com/uestchp/zclient/zerrors"
	"github.com/uestchp/zclient/zstats"
)

func testOptions() *options.Options {
	return options.Default(options.WithStats(zstats.Noop{}))
}

func newTestConn(redistDefault wire.RouteType) (*Connection, *fakeReactor, *fakeDialer) {
	rx := newFakeReactor()
	d := &fakeDialer{}
	c := New(redistDefault, rx, d.dial, testOptions(), nil)
	return c, rx, d
}

func TestHandshakeOrder(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeBGP) // route type 9
	tr := &fakeTransport{fd: 3}
	d.accept(tr)

	c.Start()
	if c.State() != Scheduled {
		t.Fatalf("state %v", c.State())
	}
	if _, ok := rx.fireTimer(); !ok {
		t.Fatal("no connect timer armed")
	}
	if c.State() != Connected {
		t.Fatalf("state %v", c.State())
	}

	frames := parseFrames(tr.written.Bytes())
	if len(frames) != 3 {
		t.Fatalf("got %d frames", len(frames))
	}
	if frames[0].cmd != wire.CmdHello || !bytes.Equal(frames[0].body, []byte{9}) {
		t.Fatalf("frame 0: %+v", frames[0])
	}
	if frames[1].cmd != wire.CmdRouterIDAdd || len(frames[1].body) != 0 {
		t.Fatalf("frame 1: %+v", frames[1])
	}
	if frames[2].cmd != wire.CmdInterfaceAdd || len(frames[2].body) != 0 {
		t.Fatalf("frame 2: %+v", frames[2])
	}

	// byte-exact hello: len=7, marker, version, cmd, route type
	raw := tr.written.Bytes()[:7]
	want := []byte{0, 7, 0xFF, 2, 0, byte(wire.CmdHello), 9}
	if !bytes.Equal(raw, want) {
		t.Fatalf("hello bytes % x, want % x", raw, want)
	}
}

func TestHelloSkippedWithoutRedistDefault(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeNone)
	tr := &fakeTransport{fd: 3}
	d.accept(tr)
	c.Start()
	rx.fireTimer()

	frames := parseFrames(tr.written.Bytes())
	if len(frames) != 2 || frames[0].cmd != wire.CmdRouterIDAdd || frames[1].cmd != wire.CmdInterfaceAdd {
		t.Fatalf("frames %+v", frames)
	}
}

func TestSubscriptionReplay(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeBGP)
	// bookkeeping while disconnected: nothing sent, everything replayed
	if err := c.Redistribute(true, 5); err != nil {
		t.Fatal(err)
	}
	if err := c.Redistribute(true, 2); err != nil {
		t.Fatal(err)
	}
	// the pinned own-source type never goes over the wire
	if err := c.Redistribute(true, wire.RouteTypeBGP); err != nil {
		t.Fatal(err)
	}

	tr1 := &fakeTransport{fd: 3}
	d.accept(tr1)
	c.Start()
	rx.fireTimer()

	wantSeq := []wire.Command{
		wire.CmdHello, wire.CmdRouterIDAdd, wire.CmdInterfaceAdd,
		wire.CmdRedistributeAdd, wire.CmdRedistributeAdd,
	}
	check := func(tr *fakeTransport) {
		t.Helper()
		frames := parseFrames(tr.written.Bytes())
		if len(frames) != len(wantSeq) {
			t.Fatalf("got %d frames: %+v", len(frames), frames)
		}
		for i, cmd := range wantSeq {
			if frames[i].cmd != cmd {
				t.Fatalf("frame %d: %v, want %v", i, frames[i].cmd, cmd)
			}
		}
		// ascending type order, default (9) absent
		if !bytes.Equal(frames[3].body, []byte{2}) || !bytes.Equal(frames[4].body, []byte{5}) {
			t.Fatalf("redistribute bodies % x % x", frames[3].body, frames[4].body)
		}
	}
	check(tr1)

	// server dies; client backs off and reissues the whole sequence once
	tr1.queueRead(nil, zerrors.ErrConnectionClosed)
	rx.fireRead()
	if c.State() != Scheduled {
		t.Fatalf("state %v", c.State())
	}
	if !tr1.closed {
		t.Fatal("dead socket not closed")
	}

	tr2 := &fakeTransport{fd: 4}
	d.accept(tr2)
	rx.fireTimer()
	check(tr2)
}

func TestBackoffSchedule(t *testing.T) {
	o := testOptions()
	for _, tc := range []struct {
		failCount int
		want      time.Duration
		ok        bool
	}{
		{0, 10 * time.Second, true},
		{1, 10 * time.Second, true},
		{2, 10 * time.Second, true},
		{3, 60 * time.Second, true},
		{9, 60 * time.Second, true},
		{10, 0, false},
		{11, 0, false},
	} {
		d, ok := BackoffDelay(o, tc.failCount)
		if d != tc.want || ok != tc.ok {
			t.Fatalf("failCount %d: (%v, %v), want (%v, %v)", tc.failCount, d, ok, tc.want, tc.ok)
		}
	}
}

func TestPermanentFailure(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeBGP)
	for i := 0; i < 10; i++ {
		d.refuse()
	}
	c.Start()

	start := time.Now()
	for i := 1; i <= 10; i++ {
		if _, ok := rx.fireTimer(); !ok {
			t.Fatalf("attempt %d: no timer armed", i)
		}
		if c.FailCount() != i {
			t.Fatalf("attempt %d: fail count %d", i, c.FailCount())
		}
		if i < 10 {
			// retry delay follows the backoff schedule
			want := 10 * time.Second
			if i >= 3 {
				want = 60 * time.Second
			}
			if len(rx.timers) != 1 {
				t.Fatalf("attempt %d: %d timers armed", i, len(rx.timers))
			}
			got := rx.timers[0].deadline.Sub(start)
			if got < want-2*time.Second || got > want+2*time.Second {
				t.Fatalf("attempt %d: retry in %v, want about %v", i, got, want)
			}
		}
	}

	// 10th failure: dormant, nothing armed
	if len(rx.timers) != 0 {
		t.Fatal("retry armed past the failure cap")
	}
	if c.State() != Failing {
		t.Fatalf("state %v", c.State())
	}

	// mutators still work without I/O
	before := d.calls
	if err := c.Redistribute(true, 2); err != nil {
		t.Fatal(err)
	}
	if d.calls != before {
		t.Fatal("redistribute while dormant touched the dialer")
	}
	if err := c.Send(wire.EncodeRouterIDAdd()); err != zerrors.ErrDormant {
		t.Fatalf("send while dormant: %v", err)
	}

	// only an explicit reset restarts the machine
	tr := &fakeTransport{fd: 3}
	d.accept(tr)
	c.Reset()
	if c.FailCount() != 0 {
		t.Fatalf("fail count %d after reset", c.FailCount())
	}
	rx.fireTimer()
	if c.State() != Connected {
		t.Fatalf("state %v after reset", c.State())
	}
}

func TestIdempotentSubscribe(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeBGP)
	tr := &fakeTransport{fd: 3}
	d.accept(tr)
	c.Start()
	rx.fireTimer()
	tr.written.Reset()

	if err := c.Redistribute(true, 2); err != nil {
		t.Fatal(err)
	}
	if err := c.Redistribute(true, 2); err != nil {
		t.Fatal(err)
	}
	frames := parseFrames(tr.written.Bytes())
	if len(frames) != 1 || frames[0].cmd != wire.CmdRedistributeAdd {
		t.Fatalf("frames %+v", frames)
	}

	tr.written.Reset()
	// deleting an unsubscribed type sends nothing
	if err := c.Redistribute(false, 3); err != nil {
		t.Fatal(err)
	}
	if tr.written.Len() != 0 {
		t.Fatalf("unexpected bytes % x", tr.written.Bytes())
	}
	if err := c.Redistribute(false, 2); err != nil {
		t.Fatal(err)
	}
	frames = parseFrames(tr.written.Bytes())
	if len(frames) != 1 || frames[0].cmd != wire.CmdRedistributeDelete {
		t.Fatalf("frames %+v", frames)
	}
}

func TestRedistributeDefault(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeBGP)
	tr := &fakeTransport{fd: 3}
	d.accept(tr)
	c.Start()
	rx.fireTimer()
	tr.written.Reset()

	if err := c.RedistributeDefault(true); err != nil {
		t.Fatal(err)
	}
	if err := c.RedistributeDefault(true); err != nil {
		t.Fatal(err)
	}
	frames := parseFrames(tr.written.Bytes())
	if len(frames) != 1 || frames[0].cmd != wire.CmdRedistributeDefaultAdd {
		t.Fatalf("frames %+v", frames)
	}
}

func TestConnectPending(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeBGP)
	tr := &fakeTransport{fd: 3}
	d.results = append(d.results, func() (Transport, error) {
		return tr, zerrors.ErrConnectPending
	})
	c.Start()
	rx.fireTimer()
	if c.State() != Connecting {
		t.Fatalf("state %v", c.State())
	}
	if len(rx.writes) != 1 {
		t.Fatal("write-readiness not armed for pending connect")
	}
	rx.fireWrite()
	if c.State() != Connected {
		t.Fatalf("state %v", c.State())
	}
	if frames := parseFrames(tr.written.Bytes()); len(frames) != 3 {
		t.Fatalf("handshake frames %+v", frames)
	}
}

func TestConnectPendingFails(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeBGP)
	tr := &fakeTransport{fd: 3, checkErr: zerrors.ErrSocketIO}
	d.results = append(d.results, func() (Transport, error) {
		return tr, zerrors.ErrConnectPending
	})
	c.Start()
	rx.fireTimer()
	rx.fireWrite()
	if c.State() != Scheduled || c.FailCount() != 1 {
		t.Fatalf("state %v fail %d", c.State(), c.FailCount())
	}
	if !tr.closed {
		t.Fatal("failed pending socket not closed")
	}
}

func TestWritePendingDrains(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeNone)
	tr := &fakeTransport{fd: 3, writeBlocked: true}
	d.accept(tr)
	c.Start()
	rx.fireTimer()
	if tr.written.Len() != 0 {
		t.Fatal("wrote through a blocked socket")
	}
	if len(rx.writes) != 1 {
		t.Fatalf("%d write arms", len(rx.writes))
	}

	tr.writeBlocked = false
	rx.fireWrite()
	frames := parseFrames(tr.written.Bytes())
	if len(frames) != 2 || frames[0].cmd != wire.CmdRouterIDAdd || frames[1].cmd != wire.CmdInterfaceAdd {
		t.Fatalf("frames %+v", frames)
	}
	if len(rx.writes) != 0 {
		t.Fatal("write arm left after full drain")
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	c, _, _ := newTestConn(wire.RouteTypeBGP)
	if err := c.Send(wire.EncodeRouterIDAdd()); err != zerrors.ErrConnectionClosed {
		t.Fatalf("err %v", err)
	}
}

func TestStopDisablesRetry(t *testing.T) {
	c, rx, d := newTestConn(wire.RouteTypeBGP)
	tr := &fakeTransport{fd: 3}
	d.accept(tr)
	c.Start()
	rx.fireTimer()

	c.Stop()
	if c.State() != Disabled || !tr.closed {
		t.Fatalf("state %v closed %v", c.State(), tr.closed)
	}
	if len(rx.timers) != 0 || len(rx.reads) != 0 || len(rx.writes) != 0 {
		t.Fatal("events left armed after stop")
	}
	// counters untouched, Start resumes
	tr2 := &fakeTransport{fd: 4}
	d.accept(tr2)
	c.Start()
	rx.fireTimer()
	if c.State() != Connected {
		t.Fatalf("state %v", c.State())
	}
}
