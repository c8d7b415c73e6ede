package translate

import (
	"github.com/bigwhoman/wasm-micro-runtime/codec"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
)

// SigAction is a guest struct k_sigaction with its fields decoded but not
// interpreted. Handler is a function-table index or one of the guest
// SIG_* words.
type SigAction struct {
	Handler  uint32
	Flags    uint64
	Restorer uint32
	Mask     [2]uint32
}

// ReadSigAction decodes a guest k_sigaction. The guest restorer is
// skipped: the host never calls a guest supplied restorer.
func ReadSigAction(mem *memory.Linear, addr memory.Addr) (*SigAction, error) {
	if addr == 0 {
		return nil, nil
	}

	c := codec.NewCursor(mem, addr)

	var act SigAction

	var err error

	act.Handler, err = codec.Read[uint32](c)
	if err != nil {
		return nil, err
	}

	act.Flags, err = codec.Read[uint64](c)
	if err != nil {
		return nil, err
	}

	if err := c.Skip(4); err != nil {
		return nil, err
	}

	if err := codec.ReadArray(c, act.Mask[:]); err != nil {
		return nil, err
	}

	return &act, nil
}

func PutSigAction(mem *memory.Linear, addr memory.Addr, act *SigAction) error {
	if addr == 0 || act == nil {
		return nil
	}

	c := codec.NewCursor(mem, addr)

	if err := codec.Write(c, act.Handler); err != nil {
		return err
	}

	if err := codec.Write(c, act.Flags); err != nil {
		return err
	}

	if err := codec.Write(c, act.Restorer); err != nil {
		return err
	}

	return codec.WriteArray(c, act.Mask[:])
}
