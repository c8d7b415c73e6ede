package translate

import (
	"encoding/binary"
	"testing"

	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/stretchr/testify/require"
)

type guestWriter struct {
	t    testing.TB
	mem  *memory.Linear
	addr memory.Addr
}

func newGuest(t testing.TB, mem *memory.Linear, addr memory.Addr) *guestWriter {
	return &guestWriter{t: t, mem: mem, addr: addr}
}

func (g *guestWriter) u32(v uint32) *guestWriter {
	b, err := g.mem.Project(g.addr, 4)
	require.NoError(g.t, err)
	binary.LittleEndian.PutUint32(b, v)
	g.addr += 4
	return g
}

func (g *guestWriter) u64(v uint64) *guestWriter {
	b, err := g.mem.Project(g.addr, 8)
	require.NoError(g.t, err)
	binary.LittleEndian.PutUint64(b, v)
	g.addr += 8
	return g
}

func (g *guestWriter) str(s string) *guestWriter {
	b, err := g.mem.Project(g.addr, uint32(len(s)+1))
	require.NoError(g.t, err)
	copy(b, s)
	b[len(s)] = 0
	g.addr += memory.Addr(len(s) + 1)
	return g
}
