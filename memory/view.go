package memory

import "unsafe"

// View is a bounds checked window of guest memory.
type View struct {
	Addr  Addr
	Bytes []byte

	present bool
}

// Absent reports whether the view came from the null guest address.
func (v View) Absent() bool {
	return !v.present
}

// Pointer is the native address of the view, nil when absent. A present
// zero length view is never nil.
func (v View) Pointer() *byte {
	if !v.present {
		return nil
	}

	if len(v.Bytes) == 0 {
		return unsafe.SliceData(v.Bytes)
	}

	return &v.Bytes[0]
}

func (v View) Len() int {
	return len(v.Bytes)
}
