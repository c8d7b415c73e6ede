package syscalls

import (
	"context"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"
)

// Same cap the kernel applies to maxevents.
const maxEpollEvents = (1 << 31) / 12

func sysEpollCtl(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	var (
		epfd = args.Args.R0
		op   = args.Args.R1
		fd   = args.Args.R2
		ptr  = addr(args.Args.R3)
	)

	ev, err := translate.EpollEvent(task.Mem, ptr)
	if err != nil {
		return fail(l, "error translating epoll event", err)
	}

	r, _, e := unix.Syscall6(unix.SYS_EPOLL_CTL, uintptr(epfd), uintptr(op), uintptr(fd), uintptr(unsafe.Pointer(ev)), 0, 0)

	return result(r, e)
}

func epollWait(l hclog.Logger, task *kernel.Task, args SysArgs, mask *byte, maskSize uintptr) int64 {
	var (
		epfd    = args.Args.R0
		ptr     = addr(args.Args.R1)
		max     = int32(args.Args.R2)
		timeout = int32(args.Args.R3)
	)

	if max <= 0 || max > maxEpollEvents {
		return -abi.EINVAL
	}

	// Fault before blocking if the guest array can't hold max events.
	if _, err := task.Mem.Project(ptr, uint32(max)*linux.GuestEpollEventSize); err != nil {
		return fail(l, "epoll event array out of bounds", err)
	}

	events := make([]unix.EpollEvent, max)

	r, _, e := unix.Syscall6(unix.SYS_EPOLL_PWAIT,
		uintptr(epfd), uintptr(unsafe.Pointer(&events[0])), uintptr(max), uintptr(timeout),
		uintptr(unsafe.Pointer(mask)), maskSize)
	if e != 0 {
		return -int64(e)
	}

	if err := translate.PutEpollEvents(task.Mem, ptr, events[:r]); err != nil {
		return fail(l, "error copying epoll events", err)
	}

	return int64(r)
}

func sysEpollWait(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	return epollWait(l, task, args, nil, 0)
}

func sysEpollPwait(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	var (
		ptr  = addr(args.Args.R4)
		size = args.Args.R5
	)

	if size < 0 || size > 128 {
		return -abi.EINVAL
	}

	view, err := task.Mem.Resolve(ptr, uint32(size))
	if err != nil {
		return fail(l, "error resolving epoll sigmask", err)
	}

	return epollWait(l, task, args, view.Pointer(), uintptr(size))
}

func init() {
	Syscalls[SYS_EPOLL_CTL] = sysEpollCtl
	Syscalls[SYS_EPOLL_WAIT] = sysEpollWait
	Syscalls[SYS_EPOLL_PWAIT] = sysEpollPwait
}
