package translate

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
	"golang.org/x/sys/unix"
)

func TestStrings(t *testing.T) {
	n := neko.Modern(t)

	for _, k := range []int{0, 1, 5} {
		k := k

		n.It(fmt.Sprintf("terminates a vector of %d strings", k), func(t *testing.T) {
			mem := memory.NewLinear(1, 0)

			arr := newGuest(t, mem, 0x100)
			data := newGuest(t, mem, 0x1000)

			var want []string
			for i := 0; i < k; i++ {
				s := fmt.Sprintf("arg%d", i)
				want = append(want, s)

				arr.u32(uint32(data.addr))
				data.str(s)
			}
			arr.u32(0)

			strs, err := Strings(mem, 0x100)
			require.NoError(t, err)
			require.Len(t, strs, k+1)
			require.Nil(t, strs[k])

			for i, s := range want {
				got := unix.BytePtrToString(strs[i])
				require.Equal(t, s, got)
			}
		})
	}

	n.It("references the guest strings in place", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		newGuest(t, mem, 0x100).u32(0x200).u32(0)
		newGuest(t, mem, 0x200).str("sh")

		strs, err := Strings(mem, 0x100)
		require.NoError(t, err)

		require.Equal(t, unsafe.Pointer(&mem.Bytes()[0x200]), unsafe.Pointer(strs[0]))
	})

	n.It("returns nothing for the null address", func(t *testing.T) {
		strs, err := Strings(memory.NewLinear(1, 0), 0)
		require.NoError(t, err)
		require.Nil(t, strs)
	})

	n.It("fails when the vector is never terminated", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		b := mem.Bytes()
		for i := memory.WasmPageSize - 8; i < memory.WasmPageSize; i++ {
			b[i] = 0x01
		}

		_, err := Strings(mem, memory.WasmPageSize-8)
		require.Equal(t, memory.ErrOutOfBounds, errors.Cause(err))
	})

	n.Meow()
}
