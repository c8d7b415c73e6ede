// Package abi holds the errno values handed back to the guest. Syscall
// handlers return them negated.
package abi

const (
	ENOENT  = 2
	EINTR   = 4
	ENOEXEC = 8
	ENOMEM  = 12
	EFAULT  = 14
	EINVAL  = 22
	ENOSYS  = 38
)
