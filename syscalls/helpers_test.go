package syscalls

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type fakeHost struct{}

func (fakeHost) Trampoline() uint64 { return 0x7fff0000 }

func (fakeHost) Sigaction(signo int, act *linux.SigAction) error { return nil }

func newTask(t *testing.T) *kernel.Task {
	k, err := kernel.NewKernel(hclog.NewNullLogger(), fakeHost{})
	require.NoError(t, err)

	return k.NewTask(kernel.TaskConfig{Pages: 1, TableSize: 16})
}

func call(t *testing.T, f Handler, task *kernel.Task, args ...int64) int64 {
	var req SyscallRequest

	regs := []*int64{&req.R0, &req.R1, &req.R2, &req.R3, &req.R4, &req.R5}
	for i, a := range args {
		*regs[i] = a
	}

	return f(context.Background(), hclog.NewNullLogger(), task, SysArgs{Args: req})
}

type guestWriter struct {
	t    testing.TB
	mem  *memory.Linear
	addr memory.Addr
}

func at(t testing.TB, task *kernel.Task, addr memory.Addr) *guestWriter {
	return &guestWriter{t: t, mem: task.Mem, addr: addr}
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

func (g *guestWriter) bytes(s string) *guestWriter {
	b, err := g.mem.Project(g.addr, uint32(len(s)))
	require.NoError(g.t, err)
	copy(b, s)
	g.addr += memory.Addr(len(s))
	return g
}

func read32(t testing.TB, task *kernel.Task, addr memory.Addr) uint32 {
	b, err := task.Mem.Project(addr, 4)
	require.NoError(t, err)
	return binary.LittleEndian.Uint32(b)
}

func read64(t testing.TB, task *kernel.Task, addr memory.Addr) uint64 {
	b, err := task.Mem.Project(addr, 8)
	require.NoError(t, err)
	return binary.LittleEndian.Uint64(b)
}

func pipe(t *testing.T) (int, int) {
	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_CLOEXEC))

	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})

	return fds[0], fds[1]
}
