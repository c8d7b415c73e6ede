package syscalls

import (
	"testing"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/stretchr/testify/require"
	"github.com/vektra/neko"
	"golang.org/x/sys/unix"
)

func TestEpoll(t *testing.T) {
	n := neko.Modern(t)

	setup := func(t *testing.T) (epfd, r, w int) {
		epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
		require.NoError(t, err)
		t.Cleanup(func() { unix.Close(epfd) })

		r, w = pipe(t)
		return epfd, r, w
	}

	n.It("round trips the guest data word through the host", func(t *testing.T) {
		task := newTask(t)
		epfd, r, w := setup(t)

		at(t, task, 0xb00).u32(unix.EPOLLIN).u64(0x1122334455667788)

		ret := call(t, sysEpollCtl, task, int64(epfd), unix.EPOLL_CTL_ADD, int64(r), 0xb00)
		require.Equal(t, int64(0), ret)

		_, err := unix.Write(w, []byte("x"))
		require.NoError(t, err)

		ret = call(t, sysEpollWait, task, int64(epfd), 0xc00, 4, 0)
		require.Equal(t, int64(1), ret)

		require.Equal(t, uint32(unix.EPOLLIN), read32(t, task, 0xc00)&unix.EPOLLIN)
		require.Equal(t, uint64(0x1122334455667788), read64(t, task, 0xc04))
	})

	n.It("waits with a guest signal mask", func(t *testing.T) {
		task := newTask(t)
		epfd, r, w := setup(t)

		at(t, task, 0xb00).u32(unix.EPOLLIN).u64(7)
		at(t, task, 0xd00).u64(0)

		require.Equal(t, int64(0), call(t, sysEpollCtl, task, int64(epfd), unix.EPOLL_CTL_ADD, int64(r), 0xb00))

		_, err := unix.Write(w, []byte("x"))
		require.NoError(t, err)

		ret := call(t, sysEpollPwait, task, int64(epfd), 0xc00, 1, 0, 0xd00, 8)
		require.Equal(t, int64(1), ret)
		require.Equal(t, uint64(7), read64(t, task, 0xc04))
	})

	n.It("removes a descriptor with a null event", func(t *testing.T) {
		task := newTask(t)
		epfd, r, _ := setup(t)

		at(t, task, 0xb00).u32(unix.EPOLLIN).u64(0)
		require.Equal(t, int64(0), call(t, sysEpollCtl, task, int64(epfd), unix.EPOLL_CTL_ADD, int64(r), 0xb00))

		ret := call(t, sysEpollCtl, task, int64(epfd), unix.EPOLL_CTL_DEL, int64(r), 0)
		require.Equal(t, int64(0), ret)
	})

	n.It("returns nothing when no descriptor is ready", func(t *testing.T) {
		task := newTask(t)
		epfd, _, _ := setup(t)

		ret := call(t, sysEpollWait, task, int64(epfd), 0xc00, 4, 0)
		require.Equal(t, int64(0), ret)
	})

	n.It("validates maxevents and the event array", func(t *testing.T) {
		task := newTask(t)
		epfd, _, _ := setup(t)

		require.Equal(t, int64(-abi.EINVAL), call(t, sysEpollWait, task, int64(epfd), 0xc00, 0, 0))
		require.Equal(t, int64(-abi.EFAULT), call(t, sysEpollWait, task, int64(epfd), 0xfff0, 4, 0))
	})

	n.It("faults on an event outside guest memory", func(t *testing.T) {
		task := newTask(t)
		epfd, r, _ := setup(t)

		ret := call(t, sysEpollCtl, task, int64(epfd), unix.EPOLL_CTL_ADD, int64(r), 0xfffc)
		require.Equal(t, int64(-abi.EFAULT), ret)
	})

	n.Meow()
}
