// Package setjmp carries setjmp/longjmp across the guest boundary. The
// guest only holds an encoded jmp_buf; capturing and restoring the
// execution context is left to a Platform.
package setjmp

import (
	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

var ErrNoJmpBuf = errors.New("longjmp through a null jmp_buf")

// Platform saves and restores an execution context. Once Restore
// succeeds the guest resumes at the matching Capture with val as its
// result; the caller must not touch guest state afterwards.
type Platform interface {
	Capture(buf *linux.JmpBuf)
	Restore(buf *linux.JmpBuf, val int32) error
}

type Translator struct {
	L        hclog.Logger
	Mem      *memory.Linear
	Platform Platform
}

// Setjmp captures the current context into the guest buffer at addr.
// With savemask set the signal mask is saved too, as sigsetjmp does.
func (t *Translator) Setjmp(addr memory.Addr, savemask bool) (int32, error) {
	var buf linux.JmpBuf

	if savemask {
		buf.Flags = 1
	}

	t.Platform.Capture(&buf)

	if err := translate.PutJmpBuf(t.Mem, addr, &buf); err != nil {
		return 0, errors.Wrap(err, "writing jmp_buf")
	}

	if t.L != nil {
		t.L.Trace("setjmp", "addr", addr, "savemask", savemask)
	}

	return 0, nil
}

// Longjmp restores the context saved at addr. A val of 0 is delivered as
// 1 so the resumed setjmp can tell it apart from the first return.
func (t *Translator) Longjmp(addr memory.Addr, val int32) error {
	buf, err := translate.JmpBuf(t.Mem, addr)
	if err != nil {
		return errors.Wrap(err, "reading jmp_buf")
	}

	if buf == nil {
		return ErrNoJmpBuf
	}

	if val == 0 {
		val = 1
	}

	if t.L != nil {
		t.L.Trace("longjmp", "addr", addr, "val", val)
	}

	return t.Platform.Restore(buf, val)
}
