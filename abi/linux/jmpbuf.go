package linux

const (
	// JmpBufRegs is the number of saved register words in __jb.
	JmpBufRegs = 8

	// JmpBufMaskWords is the size of the __ss shadow area, 128 bytes of
	// host longs.
	JmpBufMaskWords = 128 / 8
)

// JmpBuf mirrors struct __jmp_buf_tag.
type JmpBuf struct {
	Regs  [JmpBufRegs]uint64
	Flags uint64
	Mask  [JmpBufMaskWords]uint64
}

const GuestJmpBufSize = JmpBufRegs*8 + 8 + JmpBufMaskWords*8
