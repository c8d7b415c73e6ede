package syscalls

import (
	"context"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"
)

// timespec has the same layout on both sides: a 64-bit tv_sec followed by
// tv_nsec padded out to 64 bits.
const timespecSize = 16

// fdSet resolves an fd_set. The bitmaps are identical on both sides; the
// host kernel reads whole 64-bit words.
func fdSet(mem *memory.Linear, ptr memory.Addr, nfds int32) (*byte, error) {
	words := (uint32(nfds) + 63) / 64

	view, err := mem.Resolve(ptr, words*8)
	if err != nil {
		return nil, err
	}

	return view.Pointer(), nil
}

func sysPselect6(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	var (
		nfds    = int32(args.Args.R0)
		rptr    = addr(args.Args.R1)
		wptr    = addr(args.Args.R2)
		eptr    = addr(args.Args.R3)
		tptr    = addr(args.Args.R4)
		maskPtr = addr(args.Args.R5)
	)

	if nfds < 0 || nfds > 1024 {
		return -abi.EINVAL
	}

	var sets [3]*byte

	for i, ptr := range []memory.Addr{rptr, wptr, eptr} {
		set, err := fdSet(task.Mem, ptr, nfds)
		if err != nil {
			return fail(l, "error resolving fd_set", err)
		}

		sets[i] = set
	}

	timeout, err := task.Mem.Resolve(tptr, timespecSize)
	if err != nil {
		return fail(l, "error resolving timeout", err)
	}

	mask, err := translate.PselectSigmask(task.Mem, maskPtr)
	if err != nil {
		return fail(l, "error translating pselect sigmask", err)
	}

	r, _, e := unix.Syscall6(unix.SYS_PSELECT6,
		uintptr(nfds),
		uintptr(unsafe.Pointer(sets[0])),
		uintptr(unsafe.Pointer(sets[1])),
		uintptr(unsafe.Pointer(sets[2])),
		uintptr(unsafe.Pointer(timeout.Pointer())),
		uintptr(unsafe.Pointer(mask)))

	return result(r, e)
}

func init() {
	Syscalls[SYS_PSELECT6] = sysPselect6
}
