package linux

// NSIG is one past the highest signal number the host supports.
const NSIG = 65

const (
	SIGHUP  = 1
	SIGINT  = 2
	SIGQUIT = 3
	SIGKILL = 9
	SIGUSR1 = 10
	SIGSEGV = 11
	SIGUSR2 = 12
	SIGPIPE = 13
	SIGALRM = 14
	SIGTERM = 15
	SIGCHLD = 17
	SIGSTOP = 19
)

// Signal action flags for rt_sigaction(2).
const (
	SA_NOCLDSTOP = 0x00000001
	SA_NOCLDWAIT = 0x00000002
	SA_SIGINFO   = 0x00000004
	SA_RESTORER  = 0x04000000
	SA_ONSTACK   = 0x08000000
	SA_RESTART   = 0x10000000
	SA_NODEFER   = 0x40000000
	SA_RESETHAND = 0x80000000
)

// Guest handler words. The guest has no native function pointers, so
// the libc dispositions are encoded as reserved function-table indices.
const (
	GuestSIG_DFL uint32 = 0
	GuestSIG_ERR uint32 = 0xffffffff
	GuestSIG_IGN uint32 = 0xfffffffe
)

// SigAction is the kernel's struct k_sigaction as the host lays it out.
type SigAction struct {
	Handler  uint64
	Flags    uint64
	Restorer uint64
	Mask     [2]uint32
}

// Guest size in bytes: handler u32, flags u64, restorer u32, mask [2]u32.
const GuestSigActionSize = 4 + 8 + 4 + 8

// sigaltstack(2) flags.
const (
	SS_ONSTACK    = 1
	SS_DISABLE    = 2
	SS_AUTODISARM = 1 << 31
)

// MINSIGSTKSZ is the smallest alternate stack the host accepts.
const MINSIGSTKSZ = 2048

// SignalStack is stack_t. Go inserts the same four byte gap after Flags
// that the C ABI does.
type SignalStack struct {
	Sp    *byte
	Flags int32
	Size  uint64
}

// Enabled reports whether the stack is usable.
func (s *SignalStack) Enabled() bool {
	return s.Flags&SS_DISABLE == 0
}

const GuestSignalStackSize = 4 + 4 + 4

// SigsetArg is the sixth argument of pselect6(2): a sigset pointer and
// its size, both full host words.
type SigsetArg struct {
	Set  *byte
	Size uint64
}
