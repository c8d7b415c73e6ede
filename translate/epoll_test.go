package translate

import (
	"testing"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
	"golang.org/x/sys/unix"
	"pgregory.net/rapid"
)

func TestEpollEvent(t *testing.T) {
	n := neko.Modern(t)

	n.It("splits the data word into the host fields", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)
		newGuest(t, mem, 0x100).u32(unix.EPOLLIN).u64(0x1122334455667788)

		ev, err := EpollEvent(mem, 0x100)
		require.NoError(t, err)

		require.Equal(t, uint32(unix.EPOLLIN), ev.Events)
		require.Equal(t, uint64(0x1122334455667788), epollData(ev))
	})

	n.It("writes ready lists back densely", func(t *testing.T) {
		mem := memory.NewLinear(1, 0)

		evs := make([]unix.EpollEvent, 3)
		for i := range evs {
			evs[i].Events = uint32(i + 1)
			setEpollData(&evs[i], uint64(i)<<40|7)
		}

		require.NoError(t, PutEpollEvents(mem, 0x200, evs))

		for i := range evs {
			ev, err := EpollEvent(mem, 0x200+memory.Addr(i*linux.GuestEpollEventSize))
			require.NoError(t, err)
			require.Equal(t, evs[i].Events, ev.Events)
			require.Equal(t, epollData(&evs[i]), epollData(ev))
		}
	})

	n.It("returns nothing for the null address", func(t *testing.T) {
		ev, err := EpollEvent(memory.NewLinear(1, 0), 0)
		require.NoError(t, err)
		require.Nil(t, ev)
	})

	n.Meow()
}

func TestEpollEventRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mem := memory.NewLinear(1, 0)

		addr := memory.Addr(rapid.Uint32Range(1, memory.WasmPageSize-linux.GuestEpollEventSize).Draw(t, "addr"))
		raw := rapid.SliceOfN(rapid.Byte(), linux.GuestEpollEventSize, linux.GuestEpollEventSize).Draw(t, "raw")

		b, err := mem.Project(addr, linux.GuestEpollEventSize)
		if err != nil {
			t.Fatal(err)
		}
		copy(b, raw)

		ev, err := EpollEvent(mem, addr)
		if err != nil {
			t.Fatal(err)
		}

		for i := range b {
			b[i] = 0
		}

		if err := PutEpollEvent(mem, addr, ev); err != nil {
			t.Fatal(err)
		}

		if string(b) != string(raw) {
			t.Fatalf("round trip changed bytes: %x != %x", b, raw)
		}
	})
}
