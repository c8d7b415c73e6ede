// Package signals emulates POSIX signal dispositions for a guest whose
// handlers are function-table indices rather than native code. The host
// only ever sees one handler for guest-handled signals, the trampoline,
// which looks the guest handler back up at delivery time.
package signals

import (
	"context"
	"sync"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Host applies native dispositions.
type Host interface {
	// Trampoline is the native handler address used for every signal
	// with a guest handler.
	Trampoline() uint64

	Sigaction(signo int, act *linux.SigAction) error
}

// FunctionTable calls back into guest code.
type FunctionTable interface {
	Invoke(ctx context.Context, index uint32, args ...uint64) error
	Len() int
}

type Emulator struct {
	L     hclog.Logger
	Mem   *memory.Linear
	Host  Host
	Funcs FunctionTable

	// Restorer is reported to the guest as the sa_restorer of every
	// previous action. The guest's own restorer is never used.
	Restorer uint32

	// Strict rejects handler words that are not sentinels and not
	// inside the function table.
	Strict bool

	table Table

	// serializes installs so the host dispositions are applied in the
	// same order as the table swaps.
	installMu sync.Mutex
}

func (e *Emulator) logger() hclog.Logger {
	if e.L == nil {
		return hclog.NewNullLogger()
	}

	return e.L
}

func (e *Emulator) native(ent Entry) *linux.SigAction {
	act := &linux.SigAction{
		Flags: ent.Flags,
		Mask:  ent.Mask,
	}

	switch ent.Handler.Kind {
	case Default:
		act.Handler = nativeSIG_DFL
	case Ignore:
		act.Handler = nativeSIG_IGN
	case Error:
		act.Handler = nativeSIG_ERR
	case Guest:
		act.Handler = e.Host.Trampoline()
	}

	return act
}

func (e *Emulator) decode(act memory.Addr) (Entry, error) {
	ga, err := translate.ReadSigAction(e.Mem, act)
	if err != nil {
		return Entry{}, err
	}

	ent := Entry{
		Handler: DecodeHandler(ga.Handler),
		Flags:   ga.Flags,
		Mask:    ga.Mask,
	}

	if e.Strict && ent.Handler.Kind == Guest && e.Funcs != nil {
		if int64(ent.Handler.Index) >= int64(e.Funcs.Len()) {
			return Entry{}, errors.Wrapf(ErrMalformedSentinel, "handler=%#x, table size=%d", ga.Handler, e.Funcs.Len())
		}
	}

	return ent, nil
}

func (e *Emulator) encode(oldact memory.Addr, ent Entry) error {
	return translate.PutSigAction(e.Mem, oldact, &translate.SigAction{
		Handler:  ent.Handler.GuestWord(),
		Flags:    ent.Flags,
		Restorer: e.Restorer,
		Mask:     ent.Mask,
	})
}

// Install implements rt_sigaction(2). act and oldact are guest addresses
// of k_sigaction structures, either of which may be 0.
func (e *Emulator) Install(signo int, act, oldact memory.Addr) error {
	if !validSignal(signo) {
		return errors.Wrapf(ErrUnsupportedSignal, "signal %d", signo)
	}

	if act == 0 {
		return e.Previous(signo, oldact)
	}

	ent, err := e.decode(act)
	if err != nil {
		return err
	}

	if (signo == linux.SIGKILL || signo == linux.SIGSTOP) && ent.Handler.Kind != Default {
		return errors.Wrapf(ErrUnsupportedSignal, "signal %d cannot be caught or ignored", signo)
	}

	e.installMu.Lock()
	defer e.installMu.Unlock()

	prev, err := e.table.Swap(signo, ent)
	if err != nil {
		return err
	}

	e.logger().Trace("install-signal", "signal", signo, "handler", ent.Handler, "previous", prev.Handler)

	if err := e.Host.Sigaction(signo, e.native(ent)); err != nil {
		if _, rerr := e.table.Swap(signo, prev); rerr != nil {
			e.logger().Error("error rolling back signal table", "signal", signo, "error", rerr)
		}

		return errors.Wrapf(err, "installing native action for signal %d", signo)
	}

	return e.encode(oldact, prev)
}

// Previous writes the current disposition of signo to oldact.
func (e *Emulator) Previous(signo int, oldact memory.Addr) error {
	ent, err := e.table.Lookup(signo)
	if err != nil {
		return err
	}

	return e.encode(oldact, ent)
}

// Lookup returns the current disposition of signo.
func (e *Emulator) Lookup(signo int) (Entry, error) {
	return e.table.Lookup(signo)
}

// Native returns the action the host currently has for signo.
func (e *Emulator) Native(signo int) (*linux.SigAction, error) {
	ent, err := e.table.Lookup(signo)
	if err != nil {
		return nil, err
	}

	return e.native(ent), nil
}

// Dispatch runs the guest handler for a delivered signal. Dispositions
// other than Guest never reach the trampoline, so they are ignored here.
func (e *Emulator) Dispatch(ctx context.Context, signo int) error {
	ent, err := e.table.Lookup(signo)
	if err != nil {
		return err
	}

	if ent.Handler.Kind != Guest {
		e.logger().Trace("dispatch-skipped", "signal", signo, "handler", ent.Handler)
		return nil
	}

	if ent.Flags&linux.SA_RESETHAND != 0 {
		e.resetHand(signo, ent)
	}

	e.logger().Trace("dispatch-signal", "signal", signo, "handler", ent.Handler)

	return e.Funcs.Invoke(ctx, ent.Handler.Index, uint64(signo))
}

// resetHand drops a one-shot handler back to SIG_DFL, unless it was
// replaced since it was looked up.
func (e *Emulator) resetHand(signo int, seen Entry) {
	e.installMu.Lock()
	defer e.installMu.Unlock()

	cur, err := e.table.Lookup(signo)
	if err != nil || cur != seen {
		return
	}

	if _, err := e.table.Swap(signo, Entry{}); err != nil {
		e.logger().Error("error resetting signal table", "signal", signo, "error", err)
		return
	}

	if err := e.Host.Sigaction(signo, e.native(Entry{})); err != nil {
		e.logger().Error("error resetting one-shot handler", "signal", signo, "error", err)
	}
}
