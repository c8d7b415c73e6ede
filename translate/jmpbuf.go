package translate

import (
	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/codec"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/pkg/errors"
)

// JmpBuf decodes a guest jmp_buf: the register words, the flag word, then
// the signal mask shadow.
func JmpBuf(mem *memory.Linear, addr memory.Addr) (*linux.JmpBuf, error) {
	if addr == 0 {
		return nil, nil
	}

	if _, err := mem.Project(addr, linux.GuestJmpBufSize); err != nil {
		return nil, errors.Wrap(err, "jmp_buf")
	}

	c := codec.NewCursor(mem, addr)

	var buf linux.JmpBuf

	if err := codec.ReadArray(c, buf.Regs[:]); err != nil {
		return nil, err
	}

	fl, err := codec.Read[uint64](c)
	if err != nil {
		return nil, err
	}

	buf.Flags = fl

	if err := codec.ReadArray(c, buf.Mask[:]); err != nil {
		return nil, err
	}

	return &buf, nil
}

func PutJmpBuf(mem *memory.Linear, addr memory.Addr, buf *linux.JmpBuf) error {
	if addr == 0 || buf == nil {
		return nil
	}

	if _, err := mem.Project(addr, linux.GuestJmpBufSize); err != nil {
		return errors.Wrap(err, "jmp_buf")
	}

	c := codec.NewCursor(mem, addr)

	if err := codec.WriteArray(c, buf.Regs[:]); err != nil {
		return err
	}

	if err := codec.Write(c, buf.Flags); err != nil {
		return err
	}

	return codec.WriteArray(c, buf.Mask[:])
}
