package syscalls

import (
	"testing"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
	"golang.org/x/sys/unix"
)

func TestVectorIO(t *testing.T) {
	n := neko.Modern(t)

	n.It("gathers guest buffers for writev", func(t *testing.T) {
		task := newTask(t)
		r, w := pipe(t)

		at(t, task, 0x100).bytes("hello")
		at(t, task, 0x200).bytes(" world")
		at(t, task, 0x300).u32(0x100).u32(5).u32(0x200).u32(6)

		ret := call(t, sysWritev, task, int64(w), 0x300, 2)
		require.Equal(t, int64(11), ret)

		buf := make([]byte, 32)
		cnt, err := unix.Read(r, buf)
		require.NoError(t, err)
		require.Equal(t, "hello world", string(buf[:cnt]))
	})

	n.It("scatters into guest buffers for readv", func(t *testing.T) {
		task := newTask(t)
		r, w := pipe(t)

		_, err := unix.Write(w, []byte("abcdef"))
		require.NoError(t, err)

		at(t, task, 0x300).u32(0x400).u32(2).u32(0x500).u32(4)

		ret := call(t, sysReadv, task, int64(r), 0x300, 2)
		require.Equal(t, int64(6), ret)

		require.Equal(t, "ab", string(task.Mem.Bytes()[0x400:0x402]))
		require.Equal(t, "cdef", string(task.Mem.Bytes()[0x500:0x504]))
	})

	n.It("accepts an empty vector", func(t *testing.T) {
		task := newTask(t)
		_, w := pipe(t)

		ret := call(t, sysWritev, task, int64(w), 0, 0)
		require.Equal(t, int64(0), ret)
	})

	n.It("faults on a null vector with a count", func(t *testing.T) {
		task := newTask(t)
		_, w := pipe(t)

		ret := call(t, sysWritev, task, int64(w), 0, 2)
		require.Equal(t, int64(-abi.EFAULT), ret)
	})

	n.It("faults on a buffer outside guest memory", func(t *testing.T) {
		task := newTask(t)
		_, w := pipe(t)

		at(t, task, 0x300).u32(0xff80).u32(0x100)

		ret := call(t, sysWritev, task, int64(w), 0x300, 1)
		require.Equal(t, int64(-abi.EFAULT), ret)
	})

	n.It("rejects a negative count", func(t *testing.T) {
		task := newTask(t)
		_, w := pipe(t)

		ret := call(t, sysWritev, task, int64(w), 0x300, -1)
		require.Equal(t, int64(-abi.EINVAL), ret)
	})

	n.It("rejects counts above the host limit", func(t *testing.T) {
		task := newTask(t)
		r, _ := pipe(t)

		ret := call(t, sysReadv, task, int64(r), 0x100, 0x7fffffff)
		require.Equal(t, int64(-abi.EINVAL), ret)
	})

	n.It("faults on an array that runs past guest memory", func(t *testing.T) {
		task := newTask(t)
		r, _ := pipe(t)

		ret := call(t, sysReadv, task, int64(r), int64(task.Mem.Size()-8), 1024)
		require.Equal(t, int64(-abi.EFAULT), ret)
	})

	n.It("passes host errors through", func(t *testing.T) {
		task := newTask(t)

		at(t, task, 0x300).u32(0x100).u32(1)

		ret := call(t, sysWritev, task, -1, 0x300, 1)
		require.Equal(t, -int64(unix.EBADF), ret)
	})

	n.Meow()
}
