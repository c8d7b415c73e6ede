package syscalls

import (
	"context"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/log"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/signals"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type Invoker struct {
	L hclog.Logger
}

func (i *Invoker) logger() hclog.Logger {
	if i.L == nil {
		return log.L
	}

	return i.L
}

// InvokeSyscall runs the handler for args.Index against the task in ctx.
// If a guest signal handler becomes pending while the handler runs, it is
// entered and the syscall reports EINTR. Pending handlers of a task that
// exited are dropped.
func (i *Invoker) InvokeSyscall(ctx context.Context, args SysArgs) int64 {
	f := lookup(args.Index)
	if f == nil {
		i.logger().Warn("unimplemented syscall", "index", args.Index)
		return -abi.ENOSYS
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p, ok := kernel.GetTask(ctx)
	if !ok {
		return -abi.ENOSYS
	}

	p.SetInterrupt(cancel)
	defer p.SetInterrupt(nil)

	l := i.logger().With("pid", p.Pid, "syscall", SyscallNames[args.Index])

	ret := f(ctx, l, p, args)

	if p.Dead() {
		return ret
	}

	if p.CheckInterrupt() {
		return -abi.EINTR
	}

	return ret
}

// Errno maps an error from the translation layer or the host to the
// negated errno handed back to the guest.
func Errno(err error) int64 {
	switch cause := errors.Cause(err); cause {
	case memory.ErrOutOfBounds:
		return -abi.EFAULT
	case signals.ErrUnsupportedSignal, signals.ErrMalformedSentinel,
		signals.ErrBadStackFlags, translate.ErrBadLength:
		return -abi.EINVAL
	case signals.ErrStackTooSmall:
		return -abi.ENOMEM
	default:
		if e, ok := cause.(unix.Errno); ok {
			return -int64(e)
		}

		return -abi.EINVAL
	}
}

func fail(l hclog.Logger, msg string, err error) int64 {
	ret := Errno(err)
	l.Debug(msg, "error", err, "errno", -ret)
	return ret
}

func result(r uintptr, e unix.Errno) int64 {
	if e != 0 {
		return -int64(e)
	}

	return int64(r)
}
