package memory

import (
	"unsafe"

	"github.com/pkg/errors"
)

const WasmPageSize = 65536 // (64 KB)

// Addr is an offset into a guest's linear memory. Zero is reserved as the
// null address.
type Addr uint32

var (
	ErrOutOfBounds  = errors.New("guest address out of bounds")
	ErrGrowTooLarge = errors.New("memory growth exceeds maximum")
)

// Linear is a guest's flat linear memory. Resolved views alias the
// backing slice, so they are only valid until the next Grow.
type Linear struct {
	linear   []byte
	maxPages uint32
}

// NewLinear allocates pages of zeroed guest memory. maxPages of zero
// means the memory can grow up to the full 32-bit address space.
func NewLinear(pages, maxPages uint32) *Linear {
	if maxPages == 0 {
		maxPages = 1 << 16
	}

	return &Linear{
		linear:   make([]byte, int(pages)*WasmPageSize),
		maxPages: maxPages,
	}
}

// NewLinearFrom wraps an existing image, such as a memory dump. The
// image is used in place.
func NewLinearFrom(b []byte) *Linear {
	return &Linear{
		linear:   b,
		maxPages: uint32(pageRound(len(b)) / WasmPageSize),
	}
}

func pageRound(sz int) int {
	if sz < WasmPageSize {
		return WasmPageSize
	}

	diff := sz % WasmPageSize
	if diff == 0 {
		return sz
	}

	return sz + (WasmPageSize - diff)
}

func (l *Linear) Size() int {
	return len(l.linear)
}

func (l *Linear) Bytes() []byte {
	return l.linear
}

// Base returns the native address of guest address 0, or nil when the
// memory is empty.
func (l *Linear) Base() unsafe.Pointer {
	if len(l.linear) == 0 {
		return nil
	}

	return unsafe.Pointer(&l.linear[0])
}

func (l *Linear) inBounds(addr Addr, sz uint32) bool {
	end := uint64(addr) + uint64(sz)
	return end <= uint64(len(l.linear))
}

// Project returns the sz bytes at addr. Unlike Resolve, address 0 is an
// ordinary offset here.
func (l *Linear) Project(addr Addr, sz uint32) ([]byte, error) {
	if !l.inBounds(addr, sz) {
		return nil, errors.Wrapf(ErrOutOfBounds, "error projecting address=%x, size=%x", addr, sz)
	}

	return l.linear[addr : uint64(addr)+uint64(sz)], nil
}

// Resolve translates a guest address into a native view of sz bytes.
// Address 0 yields an absent view and no error.
func (l *Linear) Resolve(addr Addr, sz uint32) (View, error) {
	if addr == 0 {
		return View{}, nil
	}

	b, err := l.Project(addr, sz)
	if err != nil {
		return View{}, err
	}

	return View{Addr: addr, Bytes: b, present: true}, nil
}

// CString resolves the NUL terminated string at addr. The returned view
// includes the terminator.
func (l *Linear) CString(addr Addr) (View, error) {
	if addr == 0 {
		return View{}, nil
	}

	if int(addr) >= len(l.linear) {
		return View{}, errors.Wrapf(ErrOutOfBounds, "error resolving string at address=%x", addr)
	}

	for i := int(addr); i < len(l.linear); i++ {
		if l.linear[i] == 0 {
			return l.Resolve(addr, uint32(i-int(addr)+1))
		}
	}

	return View{}, errors.Wrapf(ErrOutOfBounds, "unterminated string at address=%x", addr)
}

// GuestAddr is the reverse of Resolve: it maps a native pointer into the
// region back to its guest address. nil maps to 0.
func (l *Linear) GuestAddr(p unsafe.Pointer) (Addr, error) {
	if p == nil {
		return 0, nil
	}

	base := uintptr(l.Base())
	ptr := uintptr(p)

	if base == 0 || ptr < base || ptr-base >= uintptr(len(l.linear)) {
		return 0, errors.Wrapf(ErrOutOfBounds, "native pointer %#x is outside guest memory", ptr)
	}

	return Addr(ptr - base), nil
}

// Grow adds pages to the memory and returns the previous size in pages.
func (l *Linear) Grow(pages uint32) (uint32, error) {
	cur := uint32(len(l.linear) / WasmPageSize)

	if uint64(cur)+uint64(pages) > uint64(l.maxPages) {
		return 0, errors.Wrapf(ErrGrowTooLarge, "current=%d, additional=%d, max=%d", cur, pages, l.maxPages)
	}

	slice := make([]byte, int(cur+pages)*WasmPageSize)
	copy(slice, l.linear)

	l.linear = slice

	return cur, nil
}

// Remap points the region at b. Engines that reallocate their memory on
// grow call this so translators holding l see the current backing store.
func (l *Linear) Remap(b []byte) {
	if len(b) > int(l.maxPages)*WasmPageSize {
		l.maxPages = uint32(pageRound(len(b)) / WasmPageSize)
	}

	l.linear = b
}

func (l *Linear) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(^uint32(0)) {
		return 0, errors.Wrapf(ErrOutOfBounds, "offset %d", off)
	}

	mem, err := l.Project(Addr(off), uint32(len(p)))
	if err != nil {
		return 0, err
	}

	copy(p, mem)

	return len(p), nil
}

func (l *Linear) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(^uint32(0)) {
		return 0, errors.Wrapf(ErrOutOfBounds, "offset %d", off)
	}

	mem, err := l.Project(Addr(off), uint32(len(p)))
	if err != nil {
		return 0, err
	}

	copy(mem, p)

	return len(p), nil
}
