package translate

import (
	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/codec"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"golang.org/x/sys/unix"
)

// The host splits epoll_data into Fd and Pad; together they are the
// 64-bit data word.
func epollData(ev *unix.EpollEvent) uint64 {
	return uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32
}

func setEpollData(ev *unix.EpollEvent, data uint64) {
	ev.Fd = int32(uint32(data))
	ev.Pad = int32(uint32(data >> 32))
}

func EpollEvent(mem *memory.Linear, addr memory.Addr) (*unix.EpollEvent, error) {
	if addr == 0 {
		return nil, nil
	}

	c := codec.NewCursor(mem, addr)

	events, err := codec.Read[uint32](c)
	if err != nil {
		return nil, err
	}

	data, err := codec.Read[uint64](c)
	if err != nil {
		return nil, err
	}

	ev := &unix.EpollEvent{Events: events}
	setEpollData(ev, data)

	return ev, nil
}

func PutEpollEvent(mem *memory.Linear, addr memory.Addr, ev *unix.EpollEvent) error {
	if addr == 0 || ev == nil {
		return nil
	}

	c := codec.NewCursor(mem, addr)

	if err := codec.Write(c, ev.Events); err != nil {
		return err
	}

	return codec.Write(c, epollData(ev))
}

// PutEpollEvents writes the ready list from epoll_wait(2) into a guest
// array of events.
func PutEpollEvents(mem *memory.Linear, addr memory.Addr, evs []unix.EpollEvent) error {
	for i := range evs {
		err := PutEpollEvent(mem, addr+memory.Addr(i*linux.GuestEpollEventSize), &evs[i])
		if err != nil {
			return err
		}
	}

	return nil
}
