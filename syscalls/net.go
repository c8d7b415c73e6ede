package syscalls

import (
	"context"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/log"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"
)

func sysSendmsg(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	var (
		fd    = args.Args.R0
		ptr   = addr(args.Args.R1)
		flags = args.Args.R2
	)

	msg, err := translate.Msghdr(task.Mem, ptr)
	if err != nil {
		return fail(l, "error translating msghdr", err)
	}

	l.Trace("sendmsg", "fd", fd, "msghdr", log.Dump(l, msg))

	r, _, e := unix.Syscall(unix.SYS_SENDMSG, uintptr(fd), uintptr(unsafe.Pointer(msg)), uintptr(flags))

	return result(r, e)
}

func sysRecvmsg(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	var (
		fd    = args.Args.R0
		ptr   = addr(args.Args.R1)
		flags = args.Args.R2
	)

	msg, err := translate.Msghdr(task.Mem, ptr)
	if err != nil {
		return fail(l, "error translating msghdr", err)
	}

	r, _, e := unix.Syscall(unix.SYS_RECVMSG, uintptr(fd), uintptr(unsafe.Pointer(msg)), uintptr(flags))
	if e != 0 {
		return -int64(e)
	}

	// The kernel updates the lengths and flags in place; the guest only
	// sees them once they are copied back.
	if err := translate.PutMsghdrResult(task.Mem, ptr, msg); err != nil {
		return fail(l, "error copying msghdr result", err)
	}

	l.Trace("recvmsg", "fd", fd, "msghdr", log.Dump(l, msg))

	return int64(r)
}

func init() {
	Syscalls[SYS_SENDMSG] = sysSendmsg
	Syscalls[SYS_RECVMSG] = sysRecvmsg
}
