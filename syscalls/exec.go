package syscalls

import (
	"context"

	"github.com/bigwhoman/wasm-micro-runtime/abi"
	"github.com/bigwhoman/wasm-micro-runtime/kernel"
	"github.com/bigwhoman/wasm-micro-runtime/translate"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func sysExecve(ctx context.Context, l hclog.Logger, task *kernel.Task, args SysArgs) int64 {
	var (
		pathAddr = addr(args.Args.R0)
		argvAddr = addr(args.Args.R1)
		envpAddr = addr(args.Args.R2)
	)

	path, err := task.Mem.CString(pathAddr)
	if err != nil {
		return fail(l, "error reading path", err)
	}

	if path.Absent() {
		return -abi.EFAULT
	}

	argv, err := translate.Strings(task.Mem, argvAddr)
	if err != nil {
		return fail(l, "error copying argv data", err)
	}

	envp, err := translate.Strings(task.Mem, envpAddr)
	if err != nil {
		return fail(l, "error copying envp data", err)
	}

	// A null vector is passed on as an empty one.
	if argv == nil {
		argv = []*byte{nil}
	}

	if envp == nil {
		envp = []*byte{nil}
	}

	l.Trace("execve", "path", string(path.Bytes[:path.Len()-1]), "argc", len(argv)-1, "envc", len(envp)-1)

	err = kernel.Exec(path.Pointer(), argv, envp)
	if err == nil {
		return 0
	}

	if e, ok := errors.Cause(err).(unix.Errno); ok {
		return -int64(e)
	}

	l.Error("unable to exec process", "error", err)
	return -abi.ENOEXEC
}

func init() {
	Syscalls[SYS_EXECVE] = sysExecve
}
