package translate

import (
	"github.com/bigwhoman/wasm-micro-runtime/codec"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
)

// Strings decodes a NULL terminated array of guest string pointers, such
// as execve's argv and envp, into a native array with a trailing nil.
// The strings are referenced in place, not copied.
//
// Every entry is resolved as it is read, so the array is scanned once and
// the count always matches the pointers that were checked.
func Strings(mem *memory.Linear, addr memory.Addr) ([]*byte, error) {
	if addr == 0 {
		return nil, nil
	}

	c := codec.NewCursor(mem, addr)

	var strs []*byte

	for {
		ptr, err := c.ReadAddr()
		if err != nil {
			return nil, err
		}

		if ptr == 0 {
			break
		}

		view, err := mem.CString(ptr)
		if err != nil {
			return nil, err
		}

		strs = append(strs, view.Pointer())
	}

	out := make([]*byte, len(strs)+1)
	copy(out, strs)

	return out, nil
}
