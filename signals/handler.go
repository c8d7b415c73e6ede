package signals

import (
	"fmt"

	"github.com/bigwhoman/wasm-micro-runtime/abi/linux"
)

type Kind int

const (
	Default Kind = iota
	Ignore
	Error
	Guest
)

func (k Kind) String() string {
	switch k {
	case Default:
		return "SIG_DFL"
	case Ignore:
		return "SIG_IGN"
	case Error:
		return "SIG_ERR"
	case Guest:
		return "guest"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Handler is a signal disposition. Index is the guest function-table
// index and is only meaningful for Guest.
type Handler struct {
	Kind  Kind
	Index uint32
}

func GuestHandler(index uint32) Handler {
	return Handler{Kind: Guest, Index: index}
}

func (h Handler) String() string {
	if h.Kind == Guest {
		return fmt.Sprintf("guest[%d]", h.Index)
	}

	return h.Kind.String()
}

// DecodeHandler interprets a guest handler word.
func DecodeHandler(word uint32) Handler {
	switch word {
	case linux.GuestSIG_DFL:
		return Handler{Kind: Default}
	case linux.GuestSIG_IGN:
		return Handler{Kind: Ignore}
	case linux.GuestSIG_ERR:
		return Handler{Kind: Error}
	default:
		return GuestHandler(word)
	}
}

// GuestWord is the inverse of DecodeHandler.
func (h Handler) GuestWord() uint32 {
	switch h.Kind {
	case Ignore:
		return linux.GuestSIG_IGN
	case Error:
		return linux.GuestSIG_ERR
	case Guest:
		return h.Index
	default:
		return linux.GuestSIG_DFL
	}
}

// Native host handler values for the non-guest dispositions.
const (
	nativeSIG_DFL uint64 = 0
	nativeSIG_IGN uint64 = 1
	nativeSIG_ERR uint64 = ^uint64(0)
)

// Entry is one slot of the signal table.
type Entry struct {
	Handler Handler
	Flags   uint64
	Mask    [2]uint32
}
