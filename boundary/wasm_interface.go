package boundary

import (
	"context"
	"reflect"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/memory"
	"github.com/bigwhoman/wasm-micro-runtime/syscalls"
	"github.com/go-interpreter/wagon/exec"
	"github.com/go-interpreter/wagon/wasm"
	hclog "github.com/hashicorp/go-hclog"
)

type SyscallInvoker interface {
	InvokeSyscall(context.Context, syscalls.SysArgs) int64
}

// WasmInterface is the host side of one task's imports.
type WasmInterface struct {
	L       hclog.Logger
	Invoker SyscallInvoker
	Task    *kernel.Task

	// Memory returns the engine's current linear memory. When set, the
	// task's memory is remapped onto it before every call, since the
	// engine reallocates on grow.
	Memory func() []byte
}

func (w *WasmInterface) enter() context.Context {
	if w.Memory != nil {
		if b := w.Memory(); len(b) != w.Task.Mem.Size() {
			w.Task.Mem.Remap(b)
		}
	}

	return kernel.SetTask(context.Background(), w.Task)
}

func (w *WasmInterface) invokeSyscall(proc *exec.Process, idx int64, req syscalls.SyscallRequest) int64 {
	ctx := w.enter()

	w.L.Trace("syscall", "pid", w.Task.Pid, "index", idx, "name", syscalls.SyscallNames[idx], "req", req)

	ret := w.Invoker.InvokeSyscall(ctx, syscalls.SysArgs{Index: idx, Args: req})

	if w.Task.Dead() && proc != nil {
		proc.Terminate()
	}

	return ret
}

func (w *WasmInterface) syscall0(proc *exec.Process, idx int64) int64 {
	return w.invokeSyscall(proc, idx, syscalls.SyscallRequest{})
}

func (w *WasmInterface) syscall1(proc *exec.Process, idx, a int64) int64 {
	return w.invokeSyscall(proc, idx, syscalls.SyscallRequest{R0: a})
}

func (w *WasmInterface) syscall2(proc *exec.Process, idx, a, b int64) int64 {
	return w.invokeSyscall(proc, idx, syscalls.SyscallRequest{R0: a, R1: b})
}

func (w *WasmInterface) syscall3(proc *exec.Process, idx, a, b, c int64) int64 {
	return w.invokeSyscall(proc, idx, syscalls.SyscallRequest{R0: a, R1: b, R2: c})
}

func (w *WasmInterface) syscall4(proc *exec.Process, idx, a, b, c, d int64) int64 {
	return w.invokeSyscall(proc, idx, syscalls.SyscallRequest{R0: a, R1: b, R2: c, R3: d})
}

func (w *WasmInterface) syscall5(proc *exec.Process, idx, a, b, c, d, e int64) int64 {
	return w.invokeSyscall(proc, idx, syscalls.SyscallRequest{R0: a, R1: b, R2: c, R3: d, R4: e})
}

func (w *WasmInterface) syscall6(proc *exec.Process, idx, a, b, c, d, e, f int64) int64 {
	return w.invokeSyscall(proc, idx, syscalls.SyscallRequest{R0: a, R1: b, R2: c, R3: d, R4: e, R5: f})
}

// syscall takes its arguments from a block of six words in guest memory.
func (w *WasmInterface) syscall(proc *exec.Process, idx int64, addr int32) int64 {
	var req syscalls.SyscallRequest

	w.enter()

	err := w.Task.CopyIn(memory.Addr(uint32(addr)), &req)
	if err != nil {
		w.L.Error("error decoding syscall", "error", err)
		return -abi.EFAULT
	}

	return w.invokeSyscall(proc, idx, req)
}

func (w *WasmInterface) setjmp(proc *exec.Process, addr int32) int32 {
	return w.sigsetjmp(proc, addr, 0)
}

func (w *WasmInterface) sigsetjmp(proc *exec.Process, addr, savemask int32) int32 {
	w.enter()

	ret, err := w.Task.Jmp.Setjmp(memory.Addr(uint32(addr)), savemask != 0)
	if err != nil {
		w.L.Error("error writing jmpbuf", "error", err)
		return -abi.EFAULT
	}

	return ret
}

func (w *WasmInterface) longjmp(proc *exec.Process, addr, val int32) {
	w.enter()

	err := w.Task.Jmp.Longjmp(memory.Addr(uint32(addr)), val)
	if err != nil {
		// There is no context to return to.
		w.L.Error("error restoring jmpbuf", "error", err, "pid", w.Task.Pid)

		if proc != nil {
			proc.Terminate()
		}
	}
}

type hostFunc struct {
	name string
	fn   interface{}
}

func i64s(n int) []wasm.ValueType {
	ts := make([]wasm.ValueType, n)
	for i := range ts {
		ts[i] = wasm.ValueTypeI64
	}
	return ts
}

func i32s(n int) []wasm.ValueType {
	ts := make([]wasm.ValueType, n)
	for i := range ts {
		ts[i] = wasm.ValueTypeI32
	}
	return ts
}

// EnvModule builds the "env" module the guest imports its syscall and
// jump primitives from.
func (w *WasmInterface) EnvModule() *wasm.Module {
	sigs := []wasm.FunctionSig{
		{Form: 0, ParamTypes: i64s(1), ReturnTypes: i64s(1)},
		{Form: 0, ParamTypes: i64s(2), ReturnTypes: i64s(1)},
		{Form: 0, ParamTypes: i64s(3), ReturnTypes: i64s(1)},
		{Form: 0, ParamTypes: i64s(4), ReturnTypes: i64s(1)},
		{Form: 0, ParamTypes: i64s(5), ReturnTypes: i64s(1)},
		{Form: 0, ParamTypes: i64s(6), ReturnTypes: i64s(1)},
		{Form: 0, ParamTypes: i64s(7), ReturnTypes: i64s(1)},
		{Form: 0, ParamTypes: []wasm.ValueType{wasm.ValueTypeI64, wasm.ValueTypeI32}, ReturnTypes: i64s(1)},
		{Form: 0, ParamTypes: i32s(1), ReturnTypes: i32s(1)},
		{Form: 0, ParamTypes: i32s(2), ReturnTypes: i32s(1)},
		{Form: 0, ParamTypes: i32s(2), ReturnTypes: []wasm.ValueType{}},
	}

	funcs := []hostFunc{
		{"__syscall0", w.syscall0},
		{"__syscall1", w.syscall1},
		{"__syscall2", w.syscall2},
		{"__syscall3", w.syscall3},
		{"__syscall4", w.syscall4},
		{"__syscall5", w.syscall5},
		{"__syscall6", w.syscall6},
		{"__syscall", w.syscall},
		{"setjmp", w.setjmp},
		{"sigsetjmp", w.sigsetjmp},
		{"longjmp", w.longjmp},
	}

	m := wasm.NewModule()
	m.Types = &wasm.SectionTypes{Entries: sigs}
	m.Export = &wasm.SectionExports{Entries: map[string]wasm.ExportEntry{}}

	for i, hf := range funcs {
		m.FunctionIndexSpace = append(m.FunctionIndexSpace, wasm.Function{
			Sig:  &m.Types.Entries[i],
			Host: reflect.ValueOf(hf.fn),
			Body: &wasm.FunctionBody{},
		})

		m.Export.Entries[hf.name] = wasm.ExportEntry{
			FieldStr: hf.name,
			Kind:     wasm.ExternalFunction,
			Index:    uint32(i),
		}
	}

	return m
}
