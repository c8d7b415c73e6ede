package translate

import (
	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/codec"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/pkg/errors"
)

// PselectSigmask decodes pselect6's sigmask argument. libc stores the
// sigset address in a long, so both words are read as 64-bit fields
// rather than through ReadAddr.
func PselectSigmask(mem *memory.Linear, addr memory.Addr) (*linux.SigsetArg, error) {
	if addr == 0 {
		return nil, nil
	}

	if _, err := mem.Project(addr, linux.GuestPselectMaskSize); err != nil {
		return nil, errors.Wrap(err, "pselect sigmask")
	}

	c := codec.NewCursor(mem, addr)

	set, err := codec.Read[uint64](c)
	if err != nil {
		return nil, err
	}

	size, err := codec.Read[uint64](c)
	if err != nil {
		return nil, err
	}

	if set > uint64(^uint32(0)) || size > uint64(^uint32(0)) {
		return nil, errors.Wrapf(memory.ErrOutOfBounds, "sigset address=%x, size=%x", set, size)
	}

	view, err := mem.Resolve(memory.Addr(set), uint32(size))
	if err != nil {
		return nil, errors.Wrap(err, "pselect sigset")
	}

	return &linux.SigsetArg{
		Set:  view.Pointer(),
		Size: size,
	}, nil
}
