package linux

// Guest sizes of the socket and polling structures.
const (
	GuestIovecSize       = 4 + 4
	GuestMsghdrSize      = 9 * 4
	GuestEpollEventSize  = 4 + 8
	GuestPselectMaskSize = 8 + 8
)
