package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	"github.com/go-interpreter/wagon/wasm"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

type guestIovec struct {
	Base memory.Addr
	Len  uint64
}

type guestMsghdr struct {
	Name       memory.Addr
	Namelen    uint32
	Iov        []guestIovec
	Control    memory.Addr
	Controllen uint64
	Flags      int32
}

type guestSignalStack struct {
	Sp    memory.Addr
	Flags int32
	Size  uint64
}

// The decoded native structures hold host pointers; map them back to
// guest addresses so the output can be read against the image.
func guestPtr(mem *memory.Linear, p *byte) memory.Addr {
	a, err := mem.GuestAddr(unsafe.Pointer(p))
	if err != nil {
		return 0
	}

	return a
}

func iovecs(mem *memory.Linear, addr memory.Addr, count int) ([]guestIovec, error) {
	iovs, err := translate.Iovecs(mem, addr, count)
	if err != nil {
		return nil, err
	}

	out := make([]guestIovec, len(iovs))
	for i, iov := range iovs {
		out[i] = guestIovec{Base: guestPtr(mem, iov.Base), Len: uint64(iov.Len)}
	}

	return out, nil
}

var decoders = map[string]func(mem *memory.Linear, addr memory.Addr, count int) (interface{}, error){
	"iovec": func(mem *memory.Linear, addr memory.Addr, count int) (interface{}, error) {
		return iovecs(mem, addr, count)
	},
	"msghdr": func(mem *memory.Linear, addr memory.Addr, _ int) (interface{}, error) {
		msg, err := translate.Msghdr(mem, addr)
		if err != nil || msg == nil {
			return nil, err
		}

		out := &guestMsghdr{
			Name:       guestPtr(mem, msg.Name),
			Namelen:    msg.Namelen,
			Control:    guestPtr(mem, msg.Control),
			Controllen: uint64(msg.Controllen),
			Flags:      msg.Flags,
		}

		if msg.Iov != nil {
			iovs := unsafe.Slice(msg.Iov, msg.Iovlen)
			for _, iov := range iovs {
				out.Iov = append(out.Iov, guestIovec{Base: guestPtr(mem, iov.Base), Len: uint64(iov.Len)})
			}
		}

		return out, nil
	},
	"epoll": func(mem *memory.Linear, addr memory.Addr, count int) (interface{}, error) {
		var evs []interface{}

		for i := 0; i < count; i++ {
			ev, err := translate.EpollEvent(mem, addr+memory.Addr(i*linux.GuestEpollEventSize))
			if err != nil {
				return nil, err
			}

			evs = append(evs, ev)
		}

		return evs, nil
	},
	"sigaction": func(mem *memory.Linear, addr memory.Addr, _ int) (interface{}, error) {
		return translate.ReadSigAction(mem, addr)
	},
	"sigaltstack": func(mem *memory.Linear, addr memory.Addr, _ int) (interface{}, error) {
		ss, err := translate.SignalStack(mem, addr)
		if err != nil || ss == nil {
			return nil, err
		}

		return &guestSignalStack{Sp: guestPtr(mem, ss.Sp), Flags: ss.Flags, Size: ss.Size}, nil
	},
	"jmpbuf": func(mem *memory.Linear, addr memory.Addr, _ int) (interface{}, error) {
		return translate.JmpBuf(mem, addr)
	},
	"pselect": func(mem *memory.Linear, addr memory.Addr, _ int) (interface{}, error) {
		arg, err := translate.PselectSigmask(mem, addr)
		if err != nil || arg == nil {
			return nil, err
		}

		return []uint64{uint64(guestPtr(mem, arg.Set)), arg.Size}, nil
	},
	"strings": func(mem *memory.Linear, addr memory.Addr, _ int) (interface{}, error) {
		ptrs, err := translate.Strings(mem, addr)
		if err != nil {
			return nil, err
		}

		var strs []string
		for _, p := range ptrs {
			if p == nil {
				break
			}

			view, err := mem.CString(guestPtr(mem, p))
			if err != nil {
				return nil, err
			}

			strs = append(strs, string(view.Bytes[:view.Len()-1]))
		}

		return strs, nil
	},
}

func kindList() string {
	var kinds []string
	for k := range decoders {
		kinds = append(kinds, k)
	}

	sort.Strings(kinds)

	return strings.Join(kinds, ", ")
}

func decode(mem *memory.Linear, kind string, addr memory.Addr, count int) (interface{}, error) {
	f, ok := decoders[kind]
	if !ok {
		return nil, errors.Errorf("unknown kind %q, want one of: %s", kind, kindList())
	}

	v, err := f(mem, addr, count)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s at %#x", kind, addr)
	}

	return v, nil
}

// rawImage loads a linear memory image. Images ending in .zst are zstd
// compressed; a mostly empty memory compresses well.
func rawImage(path string) (*memory.Linear, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	var r io.Reader = f

	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "opening zstd image %s", path)
		}

		defer dec.Close()

		r = dec
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading image %s", path)
	}

	return memory.NewLinearFrom(b), nil
}

// moduleImage builds the initial linear memory of a wasm module from its
// data segments, listing the module's imports to w along the way.
func moduleImage(path string, w io.Writer) (*memory.Linear, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	mod, err := wasm.ReadModule(f, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "reading module %s", path)
	}

	if mod.Import != nil {
		fmt.Fprintf(w, "\n[imports]\n")
		tr := tabwriter.NewWriter(w, 4, 8, 1, ' ', 0)
		for i, ii := range mod.Import.Entries {
			fmt.Fprintf(tr, "%d\t%v\t%s.%s\n", i, ii.Type.Kind(), ii.ModuleName, ii.FieldName)
		}
		tr.Flush()
	}

	var pages uint32
	if mod.Memory != nil && len(mod.Memory.Entries) > 0 {
		pages = mod.Memory.Entries[0].Limits.Initial
	}

	mem := memory.NewLinear(pages, 0)

	if mod.Data == nil {
		return mem, nil
	}

	fmt.Fprintf(w, "\n[data]\n")

	for i, seg := range mod.Data.Entries {
		v, err := mod.ExecInitExpr(seg.Offset)
		if err != nil {
			return nil, errors.Wrapf(err, "data segment %d offset", i)
		}

		off, ok := v.(int32)
		if !ok {
			return nil, errors.Errorf("data segment %d: offset is %T, not i32", i, v)
		}

		if _, err := mem.WriteAt(seg.Data, int64(uint32(off))); err != nil {
			return nil, errors.Wrapf(err, "data segment %d", i)
		}

		fmt.Fprintf(w, "%3d %#08x len=%d\n", i, uint32(off), len(seg.Data))
	}

	return mem, nil
}
