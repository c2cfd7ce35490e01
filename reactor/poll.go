package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

const (
	pollRead  = int16(unix.POLLIN)
	pollWrite = int16(unix.POLLOUT)
)

// waitFd blocks up to timeout for fd to become ready for the given poll
// event mask, returning (true, nil) if it did.
func waitFd(fd int, events int16, timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	return n > 0 && fds[0].Revents&events != 0, nil
}

type pollArm struct {
	tok Token
	cb  Callback
}

// PollReactor is the polling-reactor back-end: a registered poll set
// plus a monotonic-clock timer heap, driven by repeatedly calling Run
// from the embedder's own event loop tick. The back-end choice is made
// once at construction and holds for a handle's lifetime; nothing
// branches on it at call sites.
//
// PollReactor has no executor goroutine of its own and therefore no lock:
// arming, disarming, and Run all happen on the embedder's loop thread.
type PollReactor struct {
	timers  timerHeap
	nextTok uint64
	reads   map[int]pollArm
	writes  map[int]pollArm
}

// NewPollReactor returns a reactor driven by repeated calls to Run.
func NewPollReactor() *PollReactor {
	return &PollReactor{
		reads:  make(map[int]pollArm),
		writes: make(map[int]pollArm),
	}
}

func (p *PollReactor) token() Token {
	p.nextTok++
	return Token(p.nextTok)
}

func (p *PollReactor) ArmRead(fd int, cb Callback) Token {
	tok := p.token()
	p.reads[fd] = pollArm{tok: tok, cb: cb}
	return tok
}

func (p *PollReactor) ArmWrite(fd int, cb Callback) Token {
	tok := p.token()
	p.writes[fd] = pollArm{tok: tok, cb: cb}
	return tok
}

func (p *PollReactor) ArmTimerAt(deadline time.Time, cb Callback) Token {
	tok := p.token()
	insertTimer(&p.timers, &timerEntry{tok: tok, deadline: deadline, cb: cb})
	return tok
}

func insertTimer(h *timerHeap, e *timerEntry) {
	*h = append(*h, e)
	e.index = len(*h) - 1
	fixUp(*h, e.index)
}

func fixUp(h timerHeap, i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h[i].deadline.Before(h[parent].deadline) {
			break
		}
		h.Swap(i, parent)
		i = parent
	}
}

func sinkDown(h timerHeap, i int) {
	n := len(h)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && h[right].deadline.Before(h[left].deadline) {
			smallest = right
		}
		if !h[smallest].deadline.Before(h[i].deadline) {
			return
		}
		h.Swap(i, smallest)
		i = smallest
	}
}

// Disarm cancels tok wherever it lives: the timer heap or the per-fd
// read/write interest maps. Unknown tokens are a no-op.
func (p *PollReactor) Disarm(tok Token) {
	for i, e := range p.timers {
		if e.tok == tok {
			p.timers[i] = p.timers[len(p.timers)-1]
			p.timers = p.timers[:len(p.timers)-1]
			if i < len(p.timers) {
				fixUp(p.timers, i)
				sinkDown(p.timers, i)
			}
			return
		}
	}
	for fd, arm := range p.reads {
		if arm.tok == tok {
			delete(p.reads, fd)
			return
		}
	}
	for fd, arm := range p.writes {
		if arm.tok == tok {
			delete(p.writes, fd)
			return
		}
	}
}

func (p *PollReactor) Close() error { return nil }

// Run services due timers plus at most one poll() pass, blocking up to
// timeout when there is nothing else ready. The embedder calls this from
// its own main loop (single-threaded cooperative scheduling).
func (p *PollReactor) Run(timeout time.Duration) {
	now := time.Now()
	for p.timers.Len() > 0 && !p.timers[0].deadline.After(now) {
		due := p.timers[0]
		p.timers[0] = p.timers[len(p.timers)-1]
		p.timers = p.timers[:len(p.timers)-1]
		if len(p.timers) > 0 {
			sinkDown(p.timers, 0)
		}
		due.cb()
		now = time.Now()
	}

	budget := timeout
	if p.timers.Len() > 0 {
		untilNext := time.Until(p.timers[0].deadline)
		if untilNext < budget {
			budget = untilNext
		}
	}
	if budget < 0 {
		budget = 0
	}
	if len(p.reads) == 0 && len(p.writes) == 0 {
		if budget > 0 {
			time.Sleep(budget)
		}
		return
	}

	fds := make([]unix.PollFd, 0, len(p.reads)+len(p.writes))
	index := make([]int, 0, len(p.reads)+len(p.writes))
	isRead := make([]bool, 0, len(p.reads)+len(p.writes))
	for fd := range p.reads {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: pollRead})
		index = append(index, fd)
		isRead = append(isRead, true)
	}
	for fd := range p.writes {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: pollWrite})
		index = append(index, fd)
		isRead = append(isRead, false)
	}
	_, err := unix.Poll(fds, int(budget.Milliseconds()))
	if err != nil {
		return
	}
	for i, pfd := range fds {
		if pfd.Revents == 0 {
			continue
		}
		fd := index[i]
		if isRead[i] {
			if arm, ok := p.reads[fd]; ok {
				arm.cb()
			}
		} else {
			if arm, ok := p.writes[fd]; ok {
				arm.cb()
			}
		}
	}
}
