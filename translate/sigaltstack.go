package translate

import (
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/codec"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/pkg/errors"
)

// SignalStack decodes a guest stack_t. The stack pointer is resolved over
// the whole stack unless the stack is being disabled, in which case the
// kernel ignores both.
func SignalStack(mem *memory.Linear, addr memory.Addr) (*linux.SignalStack, error) {
	if addr == 0 {
		return nil, nil
	}

	c := codec.NewCursor(mem, addr)

	sp, err := c.ReadAddr()
	if err != nil {
		return nil, err
	}

	flags, err := codec.Read[int32](c)
	if err != nil {
		return nil, err
	}

	size, err := codec.Read[uint32](c)
	if err != nil {
		return nil, err
	}

	ss := &linux.SignalStack{
		Flags: flags,
		Size:  uint64(size),
	}

	if !ss.Enabled() {
		return ss, nil
	}

	view, err := mem.Resolve(sp, size)
	if err != nil {
		return nil, errors.Wrap(err, "ss_sp")
	}

	ss.Sp = view.Pointer()

	return ss, nil
}

func PutSignalStack(mem *memory.Linear, addr memory.Addr, ss *linux.SignalStack) error {
	if addr == 0 || ss == nil {
		return nil
	}

	sp, err := mem.GuestAddr(unsafe.Pointer(ss.Sp))
	if err != nil {
		return err
	}

	c := codec.NewCursor(mem, addr)

	if err := c.WriteAddr(sp); err != nil {
		return err
	}

	if err := codec.Write(c, ss.Flags); err != nil {
		return err
	}

	return codec.Write(c, uint32(ss.Size))
}
