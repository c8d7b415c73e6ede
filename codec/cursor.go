// Package codec reads and writes guest structure fields in declaration
// order. Guest layouts are densely packed little-endian words; the cursor
// never pads, host ABI gaps live only in the native struct.
package codec

import (
	"encoding/binary"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/pkg/errors"
)

// Scalar is any fixed width integer field.
type Scalar interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

// Cursor is a position in guest memory that advances by the width of
// each field it consumes.
type Cursor struct {
	Mem  *memory.Linear
	Addr memory.Addr
}

func NewCursor(mem *memory.Linear, addr memory.Addr) *Cursor {
	return &Cursor{Mem: mem, Addr: addr}
}

func sizeOf[T Scalar]() uint32 {
	var v T
	return uint32(unsafe.Sizeof(v))
}

func arraySize[T Scalar](count int) (uint32, error) {
	total := uint64(sizeOf[T]()) * uint64(count)
	if total > uint64(^uint32(0)) {
		return 0, errors.Wrapf(memory.ErrOutOfBounds, "array of %d elements", count)
	}

	return uint32(total), nil
}

func (c *Cursor) take(n uint32) ([]byte, error) {
	b, err := c.Mem.Project(c.Addr, n)
	if err != nil {
		return nil, err
	}

	c.Addr += memory.Addr(n)
	return b, nil
}

// Skip advances over n guest bytes without touching them.
func (c *Cursor) Skip(n uint32) error {
	_, err := c.take(n)
	return err
}

func get[T Scalar](b []byte) T {
	switch len(b) {
	case 1:
		return T(b[0])
	case 2:
		return T(binary.LittleEndian.Uint16(b))
	case 4:
		return T(binary.LittleEndian.Uint32(b))
	default:
		return T(binary.LittleEndian.Uint64(b))
	}
}

func put[T Scalar](b []byte, v T) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
}

func Read[T Scalar](c *Cursor) (T, error) {
	b, err := c.take(sizeOf[T]())
	if err != nil {
		return 0, err
	}

	return get[T](b), nil
}

func Write[T Scalar](c *Cursor, v T) error {
	b, err := c.take(sizeOf[T]())
	if err != nil {
		return err
	}

	put(b, v)
	return nil
}

// ReadArray fills dst from consecutive guest fields.
func ReadArray[T Scalar](c *Cursor, dst []T) error {
	sz := sizeOf[T]()

	total, err := arraySize[T](len(dst))
	if err != nil {
		return err
	}

	b, err := c.take(total)
	if err != nil {
		return err
	}

	for i := range dst {
		dst[i] = get[T](b[uint32(i)*sz : uint32(i+1)*sz])
	}

	return nil
}

func WriteArray[T Scalar](c *Cursor, src []T) error {
	sz := sizeOf[T]()

	total, err := arraySize[T](len(src))
	if err != nil {
		return err
	}

	b, err := c.take(total)
	if err != nil {
		return err
	}

	for i, v := range src {
		put(b[uint32(i)*sz:uint32(i+1)*sz], v)
	}

	return nil
}

// ReadAddr reads a 32-bit guest address field. It does not resolve it;
// only the caller knows how many bytes the address must cover.
func (c *Cursor) ReadAddr() (memory.Addr, error) {
	v, err := Read[uint32](c)
	return memory.Addr(v), err
}

func (c *Cursor) WriteAddr(addr memory.Addr) error {
	return Write(c, uint32(addr))
}
