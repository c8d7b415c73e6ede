package translate

import (
	"testing"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
)

func TestSigAction(t *testing.T) {
	n := neko.Modern(t)

	n.It("skips the guest restorer", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		newGuest(t, mem, 0x100).u32(7).u64(linux.SA_SIGINFO).u32(0x99).u32(0x5).u32(0x80000000)

		act, err := ReadSigAction(mem, 0x100)
		require.NoError(t, err)

		require.Equal(t, uint32(7), act.Handler)
		require.Equal(t, uint64(linux.SA_SIGINFO), act.Flags)
		require.Equal(t, uint32(0), act.Restorer)
		require.Equal(t, [2]uint32{0x5, 0x80000000}, act.Mask)
	})

	n.It("writes all four fields in order", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)

		act := &SigAction{
			Handler:  linux.GuestSIG_IGN,
			Flags:    linux.SA_RESTART,
			Restorer: 3,
			Mask:     [2]uint32{1, 2},
		}

		require.NoError(t, PutSigAction(mem, 0x100, act))

		want := memory.NewLinear(1, 0)
		newGuest(t, want, 0x100).u32(linux.GuestSIG_IGN).u64(linux.SA_RESTART).u32(3).u32(1).u32(2)

		require.Equal(t, want.Bytes()[0x100:0x100+linux.GuestSigActionSize], mem.Bytes()[0x100:0x100+linux.GuestSigActionSize])
	})

	n.Meow()
}
