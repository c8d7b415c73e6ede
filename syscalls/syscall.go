package syscalls

import (
	"context"

	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	hclog "github.com/hashicorp/go-hclog"
)

type SysArgs struct {
	Index int64
	Args  SyscallRequest
}

// SyscallRequest holds the raw argument words. Guests pass every
// argument as a 64-bit word; pointers occupy the low 32 bits.
type SyscallRequest struct {
	R0, R1, R2, R3, R4, R5 int64
}

func addr(word int64) memory.Addr {
	return memory.Addr(uint32(word))
}

type Handler func(context.Context, hclog.Logger, *kernel.Task, SysArgs) int64

var Syscalls [512]Handler

func lookup(nr int64) Handler {
	if nr < 0 || nr >= int64(len(Syscalls)) {
		return nil
	}

	return Syscalls[nr]
}
