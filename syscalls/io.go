package syscalls

import (
	"context"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"
)

func iovecs(iovs []unix.Iovec) *unix.Iovec {
	if len(iovs) == 0 {
		return nil
	}

	return &iovs[0]
}

func rwv(l hclog.Logger, task *kernel.Task, args SysArgs, nr uintptr) int64 {
	var (
		fd  = args.Args.R0
		iov = addr(args.Args.R1)
		cnt = args.Args.R2
	)

	if iov == 0 && cnt != 0 {
		return -abi.EFAULT
	}

	iovs, err := translate.Iovecs(task.Mem, iov, int(int32(cnt)))
	if err != nil {
		return fail(l, "error translating iovec array", err)
	}

	r, _, e := unix.Syscall(nr, uintptr(fd), uintptr(unsafe.Pointer(iovecs(iovs))), uintptr(len(iovs)))

	return result(r, e)
}

func sysReadv(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	return rwv(l, task, args, unix.SYS_READV)
}

func sysWritev(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	return rwv(l, task, args, unix.SYS_WRITEV)
}

func init() {
	Syscalls[SYS_READV] = sysReadv
	Syscalls[SYS_WRITEV] = sysWritev
}
