package translate

import (
	"testing"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
)

func TestIovecs(t *testing.T) {
	n := neko.Modern(t)

	n.It("decodes each entry against its own length", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		newGuest(t, mem, 0x1000).u32(0x100).u32(10).u32(0x200).u32(0)

		iovs, err := Iovecs(mem, 0x1000, 2)
		require.NoError(t, err)
		require.Len(t, iovs, 2)

		require.Equal(t, &mem.Bytes()[0x100], iovs[0].Base)
		require.Equal(t, &mem.Bytes()[0x200], iovs[1].Base)
		require.Equal(t, uint64(10), uint64(iovs[0].Len))
		require.Equal(t, uint64(0), uint64(iovs[1].Len))
	})

	n.It("returns nothing for the null address", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)

		iovs, err := Iovecs(mem, 0, 4)
		require.NoError(t, err)
		require.Nil(t, iovs)
	})

	n.It("keeps null bases null", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		newGuest(t, mem, 0x1000).u32(0).u32(0)

		iovs, err := Iovecs(mem, 0x1000, 1)
		require.NoError(t, err)
		require.Nil(t, iovs[0].Base)
	})

	n.It("rejects a buffer that extends past memory", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		newGuest(t, mem, 0x1000).u32(memory.WasmPageSize - 4).u32(16)

		_, err := Iovecs(mem, 0x1000, 1)
		require.Equal(t, memory.ErrOutOfBounds, errors.Cause(err))
	})

	n.It("rejects negative lengths", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		newGuest(t, mem, 0x1000).u32(0x100).u32(0xffffffff)

		_, err := Iovecs(mem, 0x1000, 1)
		require.Equal(t, ErrBadLength, errors.Cause(err))

		_, err = Iovecs(mem, 0x1000, -1)
		require.Equal(t, ErrBadLength, errors.Cause(err))
	})

	n.It("caps the count at the host limit", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)

		_, err := Iovecs(mem, 0x100, IovMax+1)
		require.Equal(t, ErrBadLength, errors.Cause(err))

		_, err = Iovecs(mem, 0x100, 0x7fffffff)
		require.Equal(t, ErrBadLength, errors.Cause(err))
	})

	n.It("checks the whole array against memory before decoding", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)

		_, err := Iovecs(mem, memory.WasmPageSize-8, 2)
		require.Equal(t, memory.ErrOutOfBounds, errors.Cause(err))

		_, err = Iovecs(mem, 0x100, IovMax)
		require.NoError(t, err)
	})

	n.It("yields iovecs the host can write through", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		copy(mem.Bytes()[0x300:], "hello")
		newGuest(t, mem, 0x1000).u32(0x300).u32(5)

		iovs, err := Iovecs(mem, 0x1000, 1)
		require.NoError(t, err)

		got := unsafe.Slice(iovs[0].Base, int(iovs[0].Len))
		require.Equal(t, "hello", string(got))
	})

	n.Meow()
}
