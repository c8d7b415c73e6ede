package syscalls

import (
	"context"

	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	hclog "github.com/hashicorp/go-hclog"
)

// A task is a single guest thread, so exit and exit_group both end it.
func sysExit(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	code := int(args.Args.R0 & 0xff)

	l.Trace("task exiting", "code", code)

	task.Exit(code)

	return 0
}

func init() {
	Syscalls[SYS_EXIT] = sysExit
	Syscalls[SYS_EXIT_GROUP] = sysExit
}
