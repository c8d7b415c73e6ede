package kernel

import (
	"context"

	"github.com/bigwhoman/wasm-micro-runtime/signals"
	hclog "github.com/hashicorp/go-hclog"
)

type Kernel struct {
	L hclog.Logger

	// Host applies native signal dispositions for every task.
	Host signals.Host

	processes *ProcessManager
	shared    *sharedHost

	stop func()
}

func NewKernel(l hclog.Logger, host signals.Host) (*Kernel, error) {
	k := &Kernel{
		L:         l,
		Host:      host,
		processes: NewProcessManager(),
	}

	k.shared = &sharedHost{k: k}

	return k, nil
}

// NewHostKernel creates a kernel whose guest handlers are fed by real
// signals, routed through the Go runtime to a single trampoline.
func NewHostKernel(ctx context.Context, l hclog.Logger) (*Kernel, error) {
	host := signals.NewNotifyHost(l.Named("signals"))

	k, err := NewKernel(l, host)
	if err != nil {
		return nil, err
	}

	host.Start(ctx, k)
	k.stop = host.Stop

	return k, nil
}

func (k *Kernel) Close() error {
	if k.stop != nil {
		k.stop()
	}

	return nil
}
