package syscalls

// Guest syscall numbers. Guests always use the x86_64 numbering, whatever
// the host architecture is.
const (
	SYS_RT_SIGACTION = 13
	SYS_READV        = 19
	SYS_WRITEV       = 20
	SYS_SENDMSG      = 46
	SYS_RECVMSG      = 47
	SYS_EXECVE       = 59
	SYS_EXIT         = 60
	SYS_SIGALTSTACK  = 131
	SYS_EXIT_GROUP   = 231
	SYS_EPOLL_WAIT   = 232
	SYS_EPOLL_CTL    = 233
	SYS_PSELECT6     = 270
	SYS_EPOLL_PWAIT  = 281
)

var SyscallNames = map[int64]string{
	SYS_RT_SIGACTION: "rt_sigaction",
	SYS_READV:        "readv",
	SYS_WRITEV:       "writev",
	SYS_SENDMSG:      "sendmsg",
	SYS_RECVMSG:      "recvmsg",
	SYS_EXECVE:       "execve",
	SYS_EXIT:         "exit",
	SYS_SIGALTSTACK:  "sigaltstack",
	SYS_EXIT_GROUP:   "exit_group",
	SYS_EPOLL_WAIT:   "epoll_wait",
	SYS_EPOLL_CTL:    "epoll_ctl",
	SYS_PSELECT6:     "pselect6",
	SYS_EPOLL_PWAIT:  "epoll_pwait",
}
