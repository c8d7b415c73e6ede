package signals

import (
	"sync"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedSignal = errors.New("unsupported signal")
	ErrMalformedSentinel = errors.New("handler is neither a sentinel nor a function index")
)

func validSignal(signo int) bool {
	return signo > 0 && signo < linux.NSIG
}

// Table maps host signal numbers to the guest's installed dispositions.
// Every slot starts out as SIG_DFL.
type Table struct {
	mu      sync.Mutex
	entries [linux.NSIG]Entry
}

// Swap installs e for signo and returns what was there before, as one
// step with respect to Lookup.
func (t *Table) Swap(signo int, e Entry) (Entry, error) {
	if !validSignal(signo) {
		return Entry{}, errors.Wrapf(ErrUnsupportedSignal, "signal %d", signo)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.entries[signo]
	t.entries[signo] = e

	return prev, nil
}

func (t *Table) Lookup(signo int) (Entry, error) {
	if !validSignal(signo) {
		return Entry{}, errors.Wrapf(ErrUnsupportedSignal, "signal %d", signo)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.entries[signo], nil
}
