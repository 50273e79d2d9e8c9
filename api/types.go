// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants: socket patterns,
// send/receive flags, socket options and poll readiness masks.

package api

// SocketType enumerates the messaging patterns a socket can speak.
// The type is fixed at Open time and constrains which directions of
// traffic are legal on the socket.
type SocketType int

const (
	Pair SocketType = iota
	Pub
	Sub
	Req
	Rep
	Dealer
	Router
	Pull
	Push
	XPub
	XSub
)

func (t SocketType) String() string {
	switch t {
	case Pair:
		return "PAIR"
	case Pub:
		return "PUB"
	case Sub:
		return "SUB"
	case Req:
		return "REQ"
	case Rep:
		return "REP"
	case Dealer:
		return "DEALER"
	case Router:
		return "ROUTER"
	case Pull:
		return "PULL"
	case Push:
		return "PUSH"
	case XPub:
		return "XPUB"
	case XSub:
		return "XSUB"
	default:
		return "UNKNOWN"
	}
}

// CanSend reports whether the pattern carries outbound traffic.
func (t SocketType) CanSend() bool {
	switch t {
	case Sub, Pull:
		return false
	}
	return true
}

// CanReceive reports whether the pattern carries inbound traffic.
func (t SocketType) CanReceive() bool {
	switch t {
	case Pub, Push:
		return false
	}
	return true
}

// CanSubscribe reports whether the pattern accepts subscription filters.
func (t SocketType) CanSubscribe() bool {
	switch t {
	case Sub, XSub:
		return true
	}
	return false
}

// Flags modify a single send or receive call.
type Flags int

const (
	FlagNone Flags = 0

	// FlagDontWait turns a call non-blocking: EAGAIN is reported to the
	// caller instead of being retried.
	FlagDontWait Flags = 1 << iota

	// FlagMore marks an outbound part as a continuation: at least one
	// further part of the same logical message follows.
	FlagMore
)

// Has reports whether all bits of q are set in f.
func (f Flags) Has(q Flags) bool { return f&q == q }

// Option identifies a socket-level option passed through to the native
// primitive. The catalogue here covers what the core engine itself reads
// and writes; transports may accept additional ids.
type Option int

const (
	// OptionMore reads as a bool: the part just received belongs to a
	// logical message with further parts still pending.
	OptionMore Option = iota

	// OptionEvents reads as a PollEvents mask of the socket's immediate
	// readiness. Backing for the probe-loop poller.
	OptionEvents

	OptionSubscribe
	OptionUnsubscribe
	OptionIdentity
	OptionSendTimeout
	OptionRecvTimeout
	OptionLinger
	OptionSendHWM
	OptionRecvHWM
)

// PollEvents is a readiness bitmask used both as interest and as result.
type PollEvents int

const (
	PollNone PollEvents = 0
	PollIn   PollEvents = 1 << iota
	PollOut
	PollErr
)

// Has reports whether all bits of q are set in e.
func (e PollEvents) Has(q PollEvents) bool { return e&q == q }
