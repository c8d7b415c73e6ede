package setjmp

import (
	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
	"github.com/pkg/errors"
)

var (
	ErrWrongDirection = errors.New("longjmp wrong direction on stack")
	ErrCorruptJmpBuf  = errors.New("corrupt jmp_buf")
)

// Slots of the jmp_buf register words used by Frames.
const (
	regSP = iota
	regIP
	regFrame
)

type Frame struct {
	IP int64
	SP int64
}

// Frames is the Platform for an interpreter whose guest context is a
// stack of frames over a shared value stack.
type Frames struct {
	Frames  []Frame
	Idx     int
	Stack   []uint64
	Sigmask uint64
}

func (f *Frames) Frame() *Frame {
	return &f.Frames[f.Idx]
}

func (f *Frames) Push(v uint64) {
	fr := f.Frame()
	fr.SP++

	if int(fr.SP) >= len(f.Stack) {
		f.Stack = append(f.Stack, make([]uint64, int(fr.SP)-len(f.Stack)+1)...)
	}

	f.Stack[fr.SP] = v
}

func (f *Frames) Capture(buf *linux.JmpBuf) {
	fr := f.Frame()

	buf.Regs[regSP] = uint64(fr.SP)
	buf.Regs[regIP] = uint64(fr.IP)
	buf.Regs[regFrame] = uint64(f.Idx)

	if buf.Flags != 0 {
		buf.Mask[0] = f.Sigmask
	}
}

// Restore unwinds to the saved frame and leaves val on its stack as the
// result of the setjmp call.
func (f *Frames) Restore(buf *linux.JmpBuf, val int32) error {
	idx := buf.Regs[regFrame]

	if idx > uint64(f.Idx) {
		return errors.Wrapf(ErrWrongDirection, "saved frame=%d, current frame=%d", idx, f.Idx)
	}

	if idx >= uint64(len(f.Frames)) {
		return errors.Wrapf(ErrCorruptJmpBuf, "frame %d of %d", idx, len(f.Frames))
	}

	sp, ip := buf.Regs[regSP], buf.Regs[regIP]

	// The restored sp must address the live value stack; Push may then
	// extend it by one slot at most.
	if sp >= uint64(len(f.Stack)) {
		return errors.Wrapf(ErrCorruptJmpBuf, "sp %#x outside a stack of %d", sp, len(f.Stack))
	}

	if int64(ip) < 0 {
		return errors.Wrapf(ErrCorruptJmpBuf, "ip %#x", ip)
	}

	fr := &f.Frames[idx]
	fr.SP = int64(sp)
	fr.IP = int64(ip)

	f.Idx = int(idx)

	if buf.Flags != 0 {
		f.Sigmask = buf.Mask[0]
	}

	f.Push(uint64(uint32(val)))

	return nil
}
