package kernel

import (
	"context"
	"sync"
)

// GuestRunner enters a guest function on top of the current guest
// context. When it returns, the guest continues where it was.
type GuestRunner interface {
	SetupIntoFunction(index uint32, args ...uint64)
}

type pendingSignal struct {
	index uint32
	args  []uint64
}

type pendingSignals struct {
	mu      sync.Mutex
	waiting []pendingSignal
}

func (s *pendingSignals) Queue(ps pendingSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.waiting = append(s.waiting, ps)
}

func (s *pendingSignals) Dequeue() (pendingSignal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.waiting) == 0 {
		return pendingSignal{}, false
	}

	ps := s.waiting[0]
	s.waiting = s.waiting[1:]

	return ps, true
}

// Invoke is called from the signal trampoline. Guest code can't run on
// the trampoline's goroutine, so the call is queued and the guest is
// interrupted; it picks the call up in CheckInterrupt.
func (p *Process) Invoke(ctx context.Context, index uint32, args ...uint64) error {
	p.Kernel.L.Trace("queue-signal-handler", "pid", p.Pid, "index", index, "args", args)

	p.pending.Queue(pendingSignal{index: index, args: args})
	p.Interrupt()

	return nil
}

func (p *Process) Len() int {
	return p.TableSize
}

// CheckInterrupt runs the next queued handler, if any, and reports
// whether it did.
func (t *Task) CheckInterrupt() bool {
	ps, ok := t.pending.Dequeue()
	if !ok {
		return false
	}

	if t.Runner == nil {
		t.Kernel.L.Error("dropping signal handler, no guest runner", "pid", t.Pid, "index", ps.index)
		return false
	}

	t.Kernel.L.Trace("process-setup-signal", "pid", t.Pid, "index", ps.index, "args", ps.args)

	t.Runner.SetupIntoFunction(ps.index, ps.args...)
	return true
}
