package signals

import (
	"context"
	"os"
	"os/signal"
	"reflect"
	"sync"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"
)

// Dispatcher receives signals delivered to the trampoline.
type Dispatcher interface {
	Dispatch(ctx context.Context, signo int) error
}

// NotifyHost routes guest-handled signals through the Go runtime's
// signal handler into a single goroutine, the trampoline. SIG_DFL and
// SIG_IGN map onto signal.Reset and signal.Ignore, so those signals are
// handled by the runtime and never reach the trampoline.
type NotifyHost struct {
	L hclog.Logger

	ch   chan os.Signal
	done chan struct{}

	mu      sync.Mutex
	started bool
	stop    sync.Once
}

func NewNotifyHost(l hclog.Logger) *NotifyHost {
	return &NotifyHost{
		L:    l,
		ch:   make(chan os.Signal, linux.NSIG),
		done: make(chan struct{}),
	}
}

func (h *NotifyHost) Trampoline() uint64 {
	return uint64(reflect.ValueOf(trampoline).Pointer())
}

func (h *NotifyHost) Sigaction(signo int, act *linux.SigAction) error {
	sig := unix.Signal(signo)

	switch act.Handler {
	case nativeSIG_DFL:
		signal.Reset(sig)
	case nativeSIG_IGN:
		signal.Ignore(sig)
	case nativeSIG_ERR:
		// The kernel would reject SIG_ERR as a handler address; leave
		// the signal with its default action.
		h.L.Warn("SIG_ERR installed as handler", "signal", signo)
		signal.Reset(sig)
	case h.Trampoline():
		signal.Notify(h.ch, sig)
	default:
		h.L.Error("refusing unknown native handler", "signal", signo, "handler", act.Handler)
		return unix.EINVAL
	}

	return nil
}

// Start runs the trampoline until ctx is done or Stop is called.
func (h *NotifyHost) Start(ctx context.Context, d Dispatcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return
	}

	h.started = true

	go trampoline(ctx, h, d)
}

func (h *NotifyHost) Stop() {
	h.stop.Do(func() {
		signal.Stop(h.ch)
		close(h.done)
	})
}

func trampoline(ctx context.Context, h *NotifyHost, d Dispatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case sig := <-h.ch:
			signo := int(sig.(unix.Signal))

			if err := d.Dispatch(ctx, signo); err != nil {
				h.L.Error("error dispatching signal to guest", "signal", signo, "error", err)
			}
		}
	}
}
