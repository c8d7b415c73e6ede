package kernel

import (
	"context"
	"encoding/binary"
	"unsafe"

	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/setjmp"
	"github.com/bigwhoman/wasm-micro-runtime/signals"
	"golang.org/x/sys/unix"
)

type TaskConfig struct {
	// Pages and MaxPages size the linear memory, in 64KiB pages.
	Pages    uint32
	MaxPages uint32

	// Image, if set, is used as the linear memory instead of allocating.
	Image []byte

	TableSize int
	Restorer  uint32
	Strict    bool

	Runner GuestRunner
}

// NewTask creates a process with its own memory, signal table, alternate
// stack and jump buffer translator, and assigns it a pid.
func (k *Kernel) NewTask(cfg TaskConfig) *Task {
	proc := &Process{
		Kernel:    k,
		TableSize: cfg.TableSize,
		Runner:    cfg.Runner,
		status:    Running,
	}

	if cfg.Image != nil {
		proc.Mem = memory.NewLinearFrom(cfg.Image)
	} else {
		proc.Mem = memory.NewLinear(cfg.Pages, cfg.MaxPages)
	}

	l := k.L.Named("task")

	proc.Signals = &signals.Emulator{
		L:        l,
		Mem:      proc.Mem,
		Host:     k.shared,
		Funcs:    proc,
		Restorer: cfg.Restorer,
		Strict:   cfg.Strict,
	}

	proc.AltStack = &signals.AltStack{Mem: proc.Mem}

	proc.Frames = &setjmp.Frames{
		Frames: make([]setjmp.Frame, 1),
		Stack:  make([]uint64, 64),
	}

	proc.Jmp = &setjmp.Translator{
		L:        l,
		Mem:      proc.Mem,
		Platform: proc.Frames,
	}

	k.processes.AssignPid(proc)

	k.L.Trace("new-task", "pid", proc.Pid, "pages", proc.Mem.Size()/memory.WasmPageSize)

	return &Task{Process: proc}
}

// Dispatch delivers a signal from the trampoline to every live task.
// Each task decides from its own table whether a guest handler runs.
func (k *Kernel) Dispatch(ctx context.Context, signo int) error {
	var first error

	for _, p := range k.processes.Live() {
		if err := p.Signals.Dispatch(ctx, signo); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// Exec replaces the host process image. Arguments are native pointers
// already resolved from guest memory; argv and envp are nil terminated.
// Tests swap it out.
var Exec = func(path *byte, argv, envp []*byte) error {
	_, _, e := unix.RawSyscall(unix.SYS_EXECVE,
		uintptr(unsafe.Pointer(path)),
		uintptr(unsafe.Pointer(&argv[0])),
		uintptr(unsafe.Pointer(&envp[0])))
	if e != 0 {
		return e
	}

	return nil
}

// WriteExecHeader lays out argc, argv, envp and an empty auxv at base,
// the way the guest's _start expects to find them, and returns the
// address of the argv array.
func (t *Task) WriteExecHeader(base memory.Addr, args []string, env []string) (memory.Addr, error) {
	dataStart := 4 + // argc
		(4 * len(args)) + // argv
		4 + // null
		(4 * len(env)) + //envp
		4 + // null
		4 + // auxv
		4 // null

	total := dataStart

	for _, str := range args {
		total += len(str) + 1
	}

	for _, str := range env {
		total += len(str) + 1
	}

	mem, err := t.Mem.Project(base, uint32(total))
	if err != nil {
		return 0, err
	}

	le := binary.LittleEndian

	le.PutUint32(mem, uint32(len(args)))

	nextStr := dataStart

	ptr := mem[4:]
	for _, str := range args {
		le.PutUint32(ptr, uint32(base)+uint32(nextStr))
		copy(mem[nextStr:], str)
		mem[nextStr+len(str)] = 0
		nextStr += len(str) + 1
		ptr = ptr[4:]
	}
	le.PutUint32(ptr, 0) // null after argv
	ptr = ptr[4:]

	for _, str := range env {
		le.PutUint32(ptr, uint32(base)+uint32(nextStr))
		copy(mem[nextStr:], str)
		mem[nextStr+len(str)] = 0
		nextStr += len(str) + 1
		ptr = ptr[4:]
	}

	le.PutUint32(ptr, 0) // null after envp
	ptr = ptr[4:]
	le.PutUint32(ptr, 0) // auxv
	ptr = ptr[4:]
	le.PutUint32(ptr, 0) // null after auxv

	return base + 4, nil
}
