package signals

import (
	"sync"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	"github.com/pkg/errors"
)

var (
	ErrStackTooSmall = errors.New("alternate signal stack too small")
	ErrBadStackFlags = errors.New("invalid alternate signal stack flags")
)

// AltStack emulates sigaltstack(2) for one task. The Go runtime owns the
// host's alternate stacks, so the guest's stack is only recorded.
type AltStack struct {
	Mem *memory.Linear

	mu  sync.Mutex
	cur linux.SignalStack
	set bool
}

func (a *AltStack) current() linux.SignalStack {
	if !a.set {
		return linux.SignalStack{Flags: linux.SS_DISABLE}
	}

	return a.cur
}

// Current returns the recorded stack.
func (a *AltStack) Current() linux.SignalStack {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.current()
}

// Set installs the stack at ss, if any, after writing the previous stack
// to oldss, if any.
func (a *AltStack) Set(ss, oldss memory.Addr) error {
	var next *linux.SignalStack

	if ss != 0 {
		var err error

		next, err = translate.SignalStack(a.Mem, ss)
		if err != nil {
			return err
		}

		if uint32(next.Flags)&^(linux.SS_DISABLE|linux.SS_ONSTACK|linux.SS_AUTODISARM) != 0 {
			return errors.Wrapf(ErrBadStackFlags, "flags=%#x", next.Flags)
		}

		if next.Enabled() && next.Size < linux.MINSIGSTKSZ {
			return errors.Wrapf(ErrStackTooSmall, "size=%d", next.Size)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.current()

	if err := translate.PutSignalStack(a.Mem, oldss, &prev); err != nil {
		return err
	}

	if next != nil {
		// SS_ONSTACK is output only.
		next.Flags &^= linux.SS_ONSTACK
		a.cur = *next
		a.set = true
	}

	return nil
}
