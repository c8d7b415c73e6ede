// Package translate converts syscall argument structures between their
// guest encoding and the host layout. Every decoder treats guest address
// 0 as "no structure" and returns nil without an error. Results are
// freshly allocated and owned by the caller; pointers inside them alias
// guest memory and stay valid until the memory grows.
package translate

import (
	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/codec"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var ErrBadLength = errors.New("bad length in guest structure")

// IovMax is the largest iovec count the host accepts.
const IovMax = 1024

// Iovecs decodes count guest iovecs at addr. Each base is resolved
// against its own length.
func Iovecs(mem *memory.Linear, addr memory.Addr, count int) ([]unix.Iovec, error) {
	if addr == 0 {
		return nil, nil
	}

	if count < 0 || count > IovMax {
		return nil, errors.Wrapf(ErrBadLength, "iovec count %d", count)
	}

	if _, err := mem.Project(addr, uint32(count)*linux.GuestIovecSize); err != nil {
		return nil, errors.Wrapf(err, "iovec array of %d", count)
	}

	c := codec.NewCursor(mem, addr)

	iovs := make([]unix.Iovec, count)

	for i := range iovs {
		base, err := c.ReadAddr()
		if err != nil {
			return nil, err
		}

		sz, err := codec.Read[int32](c)
		if err != nil {
			return nil, err
		}

		if sz < 0 {
			return nil, errors.Wrapf(ErrBadLength, "iovec %d length %d", i, sz)
		}

		view, err := mem.Resolve(base, uint32(sz))
		if err != nil {
			return nil, errors.Wrapf(err, "iovec %d", i)
		}

		iovs[i].Base = view.Pointer()
		iovs[i].SetLen(int(sz))
	}

	return iovs, nil
}
