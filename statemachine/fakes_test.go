package statemachine

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/uestchp/zclient/reactor"
	"github.com/uestchp/zclient/wire"
	"github.com/uestchp/zclient/zerrors"
)

// fakeReactor records arms and lets tests fire them by hand, so every
// scheduling decision the connection makes is observable without clocks
// or file descriptors.
type fakeReactor struct {
	nextTok uint64
	timers  []fakeTimer
	reads   map[reactor.Token]reactor.Callback
	writes  map[reactor.Token]reactor.Callback
}

type fakeTimer struct {
	tok      reactor.Token
	deadline time.Time
	cb       reactor.Callback
}

func newFakeReactor() *fakeReactor {
	return &fakeReactor{
		reads:  make(map[reactor.Token]reactor.Callback),
		writes: make(map[reactor.Token]reactor.Callback),
	}
}

func (r *fakeReactor) token() reactor.Token {
	r.nextTok++
	return reactor.Token(r.nextTok)
}

func (r *fakeReactor) ArmRead(fd int, cb reactor.Callback) reactor.Token {
	tok := r.token()
	r.reads[tok] = cb
	return tok
}

func (r *fakeReactor) ArmWrite(fd int, cb reactor.Callback) reactor.Token {
	tok := r.token()
	r.writes[tok] = cb
	return tok
}

func (r *fakeReactor) ArmTimerAt(deadline time.Time, cb reactor.Callback) reactor.Token {
	tok := r.token()
	r.timers = append(r.timers, fakeTimer{tok: tok, deadline: deadline, cb: cb})
	return tok
}

func (r *fakeReactor) Disarm(tok reactor.Token) {
	delete(r.reads, tok)
	delete(r.writes, tok)
	for i, e := range r.timers {
		if e.tok == tok {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			return
		}
	}
}

func (r *fakeReactor) Close() error { return nil }

// fireTimer pops the earliest armed timer and runs it, returning its
// scheduled deadline.
func (r *fakeReactor) fireTimer() (time.Time, bool) {
	if len(r.timers) == 0 {
		return time.Time{}, false
	}
	best := 0
	for i := range r.timers {
		if r.timers[i].deadline.Before(r.timers[best].deadline) {
			best = i
		}
	}
	e := r.timers[best]
	r.timers = append(r.timers[:best], r.timers[best+1:]...)
	e.cb()
	return e.deadline, true
}

func (r *fakeReactor) fireRead() bool {
	for tok, cb := range r.reads {
		delete(r.reads, tok)
		cb()
		return true
	}
	return false
}

func (r *fakeReactor) fireWrite() bool {
	for tok, cb := range r.writes {
		delete(r.writes, tok)
		cb()
		return true
	}
	return false
}

// fakeTransport scripts the read side and captures the write side.
type readStep struct {
	data []byte
	err  error
}

type fakeTransport struct {
	fd           int
	steps        []readStep
	written      bytes.Buffer
	writeBlocked bool
	writeErr     error
	checkErr     error
	closed       bool
}

func (f *fakeTransport) Fd() int { return f.fd }

func (f *fakeTransport) Read(b []byte) (int, error) {
	if len(f.steps) == 0 {
		return 0, zerrors.ErrWouldBlock
	}
	s := f.steps[0]
	if s.err != nil {
		f.steps = f.steps[1:]
		return 0, s.err
	}
	n := copy(b, s.data)
	if n == len(s.data) {
		f.steps = f.steps[1:]
	} else {
		f.steps[0].data = s.data[n:]
	}
	return n, nil
}

func (f *fakeTransport) Write(b []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	if f.writeBlocked {
		return 0, zerrors.ErrWouldBlock
	}
	f.written.Write(b)
	return len(b), nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTransport) CheckConnectDone() error { return f.checkErr }

// queueRead appends one inbound chunk (or error) to the script.
func (f *fakeTransport) queueRead(data []byte, err error) {
	f.steps = append(f.steps, readStep{data: data, err: err})
}

// fakeDialer hands out one scripted result per connect attempt; once the
// script is exhausted it keeps failing.
type fakeDialer struct {
	results []func() (Transport, error)
	calls   int
}

func (d *fakeDialer) dial() (Transport, error) {
	d.calls++
	if len(d.results) == 0 {
		return nil, zerrors.ErrSocketIO
	}
	next := d.results[0]
	d.results = d.results[1:]
	return next()
}

func (d *fakeDialer) accept(tr *fakeTransport) {
	d.results = append(d.results, func() (Transport, error) { return tr, nil })
}

func (d *fakeDialer) refuse() {
	d.results = append(d.results, func() (Transport, error) { return nil, zerrors.ErrSocketIO })
}

type sentFrame struct {
	cmd  wire.Command
	body []byte
}

// parseFrames splits the captured outbound byte stream back into frames.
func parseFrames(raw []byte) []sentFrame {
	var out []sentFrame
	for len(raw) > 0 {
		length := int(binary.BigEndian.Uint16(raw))
		cmd := wire.Command(binary.BigEndian.Uint16(raw[4:]))
		out = append(out, sentFrame{cmd: cmd, body: append([]byte(nil), raw[wire.HeaderSize:length]...)})
		raw = raw[length:]
	}
	return out
}
