package kernel

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"sort"
	"sync"

	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/setjmp"
	"github.com/bigwhoman/wasm-micro-runtime/signals"
)

type prockey struct{}

func GetTask(ctx context.Context) (*Task, bool) {
	if v := ctx.Value(prockey{}); v != nil {
		return v.(*Task), true
	}

	return nil, false
}

func SetTask(ctx context.Context, t *Task) context.Context {
	return context.WithValue(ctx, prockey{}, t)
}

type Task struct {
	*Process
}

type ProcessStatus int

const (
	Running ProcessStatus = 1
	Dead    ProcessStatus = 2
)

type ExitStatus struct {
	Code int
}

// Process owns everything the translation layer needs for one guest:
// its linear memory, its signal table and alternate stack, and its jump
// buffer translator.
type Process struct {
	Kernel *Kernel
	Pid    int

	Mem      *memory.Linear
	Signals  *signals.Emulator
	AltStack *signals.AltStack
	Jmp      *setjmp.Translator
	Frames   *setjmp.Frames

	// TableSize is the number of entries in the guest's function table.
	TableSize int

	// Runner enters guest functions for pending signals.
	Runner GuestRunner

	status     ProcessStatus
	exitStatus ExitStatus

	pending       pendingSignals
	interruptFunc func()

	mu sync.Mutex
}

func (p *Process) ReadCString(ptr memory.Addr) ([]byte, error) {
	view, err := p.Mem.CString(ptr)
	if err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(view.Bytes, []byte{0}), nil
}

type writeAdapter struct {
	sub    io.WriterAt
	offset int64
}

func (w writeAdapter) Write(b []byte) (int, error) {
	return w.sub.WriteAt(b, w.offset)
}

type readAdapter struct {
	sub    io.ReaderAt
	offset int64
}

func (ra readAdapter) Read(b []byte) (int, error) {
	return ra.sub.ReadAt(b, ra.offset)
}

// CopyOut writes a flat, fixed size value to guest memory.
func (p *Process) CopyOut(addr memory.Addr, val interface{}) error {
	return binary.Write(writeAdapter{sub: p.Mem, offset: int64(addr)}, binary.LittleEndian, val)
}

func (p *Process) CopyIn(addr memory.Addr, val interface{}) error {
	return binary.Read(readAdapter{sub: p.Mem, offset: int64(addr)}, binary.LittleEndian, val)
}

func (p *Process) Status() (ProcessStatus, ExitStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status, p.exitStatus
}

// Exit marks the process dead and releases its pid. Signals it alone was
// handling go back to whatever the remaining tasks have installed.
func (p *Process) Exit(code int) {
	p.Kernel.L.Trace("process-exit", "pid", p.Pid, "code", code)

	p.mu.Lock()

	if p.status == Dead {
		p.mu.Unlock()
		return
	}

	p.exitStatus.Code = code
	p.status = Dead

	p.mu.Unlock()

	p.Kernel.processes.RemoveProc(p)
	p.Kernel.shared.release(p)
}

func (p *Process) Dead() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status == Dead
}

func (p *Process) Interrupt() {
	p.mu.Lock()
	f := p.interruptFunc
	p.mu.Unlock()

	if f != nil {
		f()
	}
}

func (p *Process) SetInterrupt(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.interruptFunc = f
}

type ProcessManager struct {
	mu        sync.RWMutex
	highWater int
	processes map[int]*Process
}

func NewProcessManager() *ProcessManager {
	return &ProcessManager{
		processes: make(map[int]*Process),
	}
}

func (p *ProcessManager) AssignPid(proc *Process) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 1; i <= p.highWater; i++ {
		if _, ok := p.processes[i]; !ok {
			proc.Pid = i
			p.processes[i] = proc
			return i
		}
	}

	p.highWater++
	pid := p.highWater
	p.processes[pid] = proc
	proc.Pid = pid

	return pid
}

func (p *ProcessManager) Lookup(pid int) (*Process, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	proc, ok := p.processes[pid]
	return proc, ok
}

func (p *ProcessManager) RemoveProc(proc *Process) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.processes[proc.Pid] == proc {
		delete(p.processes, proc.Pid)
	}
}

// Live returns the current processes ordered by pid.
func (p *ProcessManager) Live() []*Process {
	p.mu.RLock()
	procs := make([]*Process, 0, len(p.processes))
	for _, proc := range p.processes {
		procs = append(procs, proc)
	}
	p.mu.RUnlock()

	sort.Slice(procs, func(i, j int) bool {
		return procs[i].Pid < procs[j].Pid
	})

	return procs
}
