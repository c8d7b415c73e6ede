package syscalls

import (
	"testing"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
	"golang.org/x/sys/unix"
)

func TestPselect6(t *testing.T) {
	n := neko.Modern(t)

	setBit := func(t *testing.T, mem *memory.Linear, base memory.Addr, fd int) {
		b, err := mem.Project(base+memory.Addr(fd/8), 1)
		require.NoError(t, err)
		b[0] |= 1 << (fd % 8)
	}

	isSet := func(mem *memory.Linear, base memory.Addr, fd int) bool {
		return mem.Bytes()[int(base)+fd/8]&(1<<(fd%8)) != 0
	}

	n.It("polls guest fd_sets", func(t *testing.T) {
		task := newTask(t)
		r, w := pipe(t)

		_, err := unix.Write(w, []byte("x"))
		require.NoError(t, err)

		setBit(t, task.Mem, 0xe00, r)
		at(t, task, 0xe80).u64(0).u64(0)

		ret := call(t, sysPselect6, task, int64(r+1), 0xe00, 0, 0, 0xe80, 0)
		require.Equal(t, int64(1), ret)
		require.True(t, isSet(task.Mem, 0xe00, r))
	})

	n.It("clears descriptors that aren't ready", func(t *testing.T) {
		task := newTask(t)
		r, _ := pipe(t)

		setBit(t, task.Mem, 0xe00, r)
		at(t, task, 0xe80).u64(0).u64(0)

		ret := call(t, sysPselect6, task, int64(r+1), 0xe00, 0, 0, 0xe80, 0)
		require.Equal(t, int64(0), ret)
		require.False(t, isSet(task.Mem, 0xe00, r))
	})

	n.It("passes the guest signal mask pair", func(t *testing.T) {
		task := newTask(t)
		r, w := pipe(t)

		_, err := unix.Write(w, []byte("x"))
		require.NoError(t, err)

		setBit(t, task.Mem, 0xe00, r)
		at(t, task, 0xe80).u64(0).u64(0)
		at(t, task, 0xf00).u64(0xf40).u64(8)
		at(t, task, 0xf40).u64(0)

		ret := call(t, sysPselect6, task, int64(r+1), 0xe00, 0, 0, 0xe80, 0xf00)
		require.Equal(t, int64(1), ret)
	})

	n.It("faults on a sigmask address wider than guest memory", func(t *testing.T) {
		task := newTask(t)
		r, _ := pipe(t)

		at(t, task, 0xf00).u64(1 << 40).u64(8)

		ret := call(t, sysPselect6, task, int64(r+1), 0, 0, 0, 0, 0xf00)
		require.Equal(t, int64(-abi.EFAULT), ret)
	})

	n.It("faults on an fd_set outside guest memory", func(t *testing.T) {
		task := newTask(t)

		ret := call(t, sysPselect6, task, 1024, 0xffc0, 0, 0, 0, 0)
		require.Equal(t, int64(-abi.EFAULT), ret)
	})

	n.It("rejects a negative descriptor count", func(t *testing.T) {
		task := newTask(t)

		ret := call(t, sysPselect6, task, -1, 0, 0, 0, 0, 0)
		require.Equal(t, int64(-abi.EINVAL), ret)
	})

	n.Meow()
}
