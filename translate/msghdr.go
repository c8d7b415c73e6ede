package translate

import (
	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/codec"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Msghdr decodes a guest struct msghdr along with its iovec array. The
// guest carries explicit padding words where the host ABI has gaps.
func Msghdr(mem *memory.Linear, addr memory.Addr) (*unix.Msghdr, error) {
	if addr == 0 {
		return nil, nil
	}

	if _, err := mem.Project(addr, linux.GuestMsghdrSize); err != nil {
		return nil, errors.Wrap(err, "msghdr")
	}

	c := codec.NewCursor(mem, addr)

	name, err := c.ReadAddr()
	if err != nil {
		return nil, err
	}

	nameLen, err := codec.Read[uint32](c)
	if err != nil {
		return nil, err
	}

	iovAddr, err := c.ReadAddr()
	if err != nil {
		return nil, err
	}

	iovLen, err := codec.Read[int32](c)
	if err != nil {
		return nil, err
	}

	if err := c.Skip(4); err != nil {
		return nil, err
	}

	control, err := c.ReadAddr()
	if err != nil {
		return nil, err
	}

	controlLen, err := codec.Read[uint32](c)
	if err != nil {
		return nil, err
	}

	if err := c.Skip(4); err != nil {
		return nil, err
	}

	flags, err := codec.Read[int32](c)
	if err != nil {
		return nil, err
	}

	nameView, err := mem.Resolve(name, nameLen)
	if err != nil {
		return nil, errors.Wrap(err, "msg_name")
	}

	controlView, err := mem.Resolve(control, controlLen)
	if err != nil {
		return nil, errors.Wrap(err, "msg_control")
	}

	iovs, err := Iovecs(mem, iovAddr, int(iovLen))
	if err != nil {
		return nil, errors.Wrap(err, "msg_iov")
	}

	msg := &unix.Msghdr{
		Name:    nameView.Pointer(),
		Namelen: nameLen,
		Control: controlView.Pointer(),
		Flags:   flags,
	}

	if len(iovs) > 0 {
		msg.Iov = &iovs[0]
		msg.SetIovlen(len(iovs))
	}

	if !controlView.Absent() {
		msg.SetControllen(int(controlLen))
	}

	return msg, nil
}

// PutMsghdrResult writes back the fields recvmsg(2) updates, walking the
// guest layout in the same order Msghdr reads it.
func PutMsghdrResult(mem *memory.Linear, addr memory.Addr, msg *unix.Msghdr) error {
	if addr == 0 || msg == nil {
		return nil
	}

	c := codec.NewCursor(mem, addr)

	if err := c.Skip(4); err != nil {
		return err
	}

	if err := codec.Write(c, msg.Namelen); err != nil {
		return err
	}

	// msg_iov, msg_iovlen, pad, msg_control
	if err := c.Skip(16); err != nil {
		return err
	}

	if err := codec.Write(c, uint32(msg.Controllen)); err != nil {
		return err
	}

	if err := c.Skip(4); err != nil {
		return err
	}

	return codec.Write(c, msg.Flags)
}
