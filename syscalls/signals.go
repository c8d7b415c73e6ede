package syscalls

import (
	"context"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	hclog "github.com/hashicorp/go-hclog"
)

func sysRtSigaction(ctx context.Context, l hclog.Logger, p *kernel.Task, args SysArgs) int64 {
	var (
		signo      = args.Args.R0
		actionAddr = addr(args.Args.R1)
		oldAddr    = addr(args.Args.R2)
		setSize    = args.Args.R3
	)

	if setSize != 8 {
		return -abi.EINVAL
	}

	err := p.Signals.Install(int(int32(signo)), actionAddr, oldAddr)
	if err != nil {
		return fail(l, "error installing sigaction", err)
	}

	return 0
}

func sysSigaltstack(ctx context.Context, l hclog.Logger, p *kernel.Task, args SysArgs) int64 {
	var (
		ss    = addr(args.Args.R0)
		oldss = addr(args.Args.R1)
	)

	err := p.AltStack.Set(ss, oldss)
	if err != nil {
		return fail(l, "error setting alternate stack", err)
	}

	return 0
}

func init() {
	Syscalls[SYS_RT_SIGACTION] = sysRtSigaction
	Syscalls[SYS_SIGALTSTACK] = sysSigaltstack
}
