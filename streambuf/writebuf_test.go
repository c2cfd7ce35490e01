package streambuf_test

import (
	"bytes"
	"testing"

	"github.com/uestchp/zclient/streambuf"
	"github.com/uestchp/zclient/zerrors"
)

// scriptWriter accepts at most limit bytes per call, then reports
// would-block until rearmed, mimicking a socket send buffer filling up.
type scriptWriter struct {
	out     bytes.Buffer
	limit   int
	blocked bool
	fail    bool
}

func (w *scriptWriter) Write(b []byte) (int, error) {
	if w.fail {
		return 0, zerrors.ErrSocketIO
	}
	if w.blocked {
		return 0, zerrors.ErrWouldBlock
	}
	n := len(b)
	if w.limit > 0 && n > w.limit {
		n = w.limit
		w.blocked = true
	}
	w.out.Write(b[:n])
	return n, nil
}

func TestWriteImmediateDrain(t *testing.T) {
	var buf streambuf.WriteBuffer
	w := &scriptWriter{}
	if res := buf.Write(w, []byte("hello")); res != streambuf.WriteEmpty {
		t.Fatalf("result %v", res)
	}
	if w.out.String() != "hello" || !buf.Empty() {
		t.Fatalf("out %q, len %d", w.out.String(), buf.Len())
	}
}

func TestWritePartialThenFlush(t *testing.T) {
	var buf streambuf.WriteBuffer
	w := &scriptWriter{limit: 3}
	if res := buf.Write(w, []byte("hello world")); res != streambuf.WritePending {
		t.Fatalf("result %v", res)
	}
	if buf.Len() != 8 {
		t.Fatalf("pending %d", buf.Len())
	}
	// nothing drains while the socket is blocked
	if res := buf.FlushAvailable(w); res != streambuf.WritePending {
		t.Fatalf("result %v", res)
	}

	w.blocked = false
	w.limit = 0
	if res := buf.FlushAvailable(w); res != streambuf.WriteEmpty {
		t.Fatalf("result %v", res)
	}
	if w.out.String() != "hello world" {
		t.Fatalf("out %q", w.out.String())
	}
}

func TestWriteOrderAcrossWraparound(t *testing.T) {
	var buf streambuf.WriteBuffer
	w := &scriptWriter{limit: 2}
	var want bytes.Buffer
	for i := 0; i < 50; i++ {
		chunk := []byte{byte(i), byte(i + 1), byte(i + 2)}
		want.Write(chunk)
		buf.Write(w, chunk)
		w.blocked = false
	}
	w.limit = 0
	if res := buf.FlushAvailable(w); res != streambuf.WriteEmpty {
		t.Fatalf("result %v", res)
	}
	if !bytes.Equal(w.out.Bytes(), want.Bytes()) {
		t.Fatal("FIFO order broken across ring wraparound")
	}
}

func TestWriteError(t *testing.T) {
	var buf streambuf.WriteBuffer
	w := &scriptWriter{fail: true}
	if res := buf.Write(w, []byte("x")); res != streambuf.WriteError {
		t.Fatalf("result %v", res)
	}
}

func TestClear(t *testing.T) {
	var buf streambuf.WriteBuffer
	w := &scriptWriter{blocked: true}
	buf.Write(w, []byte("stuck"))
	buf.Clear()
	if !buf.Empty() {
		t.Fatal("clear left bytes behind")
	}
}
