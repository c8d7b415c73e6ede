package kernel

import (
	"sync"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/signals"
)

// sharedHost sits between every task's emulator and the kernel's Host.
// Tasks share one set of host dispositions, so a signal stays routed to
// the trampoline while any live task has a guest handler for it.
type sharedHost struct {
	k  *Kernel
	mu sync.Mutex
}

var _ signals.Host = (*sharedHost)(nil)

func (h *sharedHost) Trampoline() uint64 {
	return h.k.Host.Trampoline()
}

func (h *sharedHost) Sigaction(signo int, act *linux.SigAction) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if act.Handler != h.k.Host.Trampoline() {
		if routed := h.routed(signo); routed != nil {
			h.k.L.Trace("signal still handled by a guest", "signal", signo, "requested", act.Handler)
			act = routed
		}
	}

	return h.k.Host.Sigaction(signo, act)
}

// routed returns the native action of the first live task that handles
// signo in guest code.
func (h *sharedHost) routed(signo int) *linux.SigAction {
	tramp := h.k.Host.Trampoline()

	for _, p := range h.k.processes.Live() {
		act, err := p.Signals.Native(signo)
		if err == nil && act.Handler == tramp {
			return act
		}
	}

	return nil
}

// release recomputes the host action of every signal proc was handling,
// once proc is no longer live.
func (h *sharedHost) release(proc *Process) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for signo := 1; signo < linux.NSIG; signo++ {
		ent, err := proc.Signals.Lookup(signo)
		if err != nil || ent.Handler.Kind != signals.Guest {
			continue
		}

		if h.routed(signo) != nil {
			continue
		}

		act := &linux.SigAction{}

		if live := h.k.processes.Live(); len(live) > 0 {
			if native, err := live[0].Signals.Native(signo); err == nil {
				act = native
			}
		}

		if err := h.k.Host.Sigaction(signo, act); err != nil {
			h.k.L.Error("error restoring host action", "signal", signo, "pid", proc.Pid, "error", err)
		}
	}
}
