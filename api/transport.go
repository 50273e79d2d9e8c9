// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Contract of the native socket primitive. The wire transport itself
// (TCP/IPC/inproc framing, reconnection, encryption) lives behind this
// boundary; the engine above it only sees classified Errno statuses and
// opaque byte parts.

package api

// RawSocket is one native socket handle. Implementations are expected to
// be non-blocking: calls that cannot proceed return EAGAIN rather than
// parking the goroutine. A RawSocket is owned by exactly one Socket
// wrapper and is not safe for concurrent use.
type RawSocket interface {
	// SendPart hands one opaque message part to the transport. On EOK the
	// transport has taken ownership of p and becomes responsible for it.
	SendPart(p []byte, flags Flags) Errno

	// RecvPart takes the next pending part. On EOK the returned slice is
	// owned by the caller. Reports EAGAIN when nothing is pending.
	RecvPart(flags Flags) ([]byte, Errno)

	Bind(endpoint string) Errno
	Unbind(endpoint string) Errno
	Connect(endpoint string) Errno
	Disconnect(endpoint string) Errno

	GetOption(opt Option) (any, Errno)
	SetOption(opt Option, value any) Errno

	Close() error
}

// RawPollable is implemented by RawSockets backed by an OS descriptor.
// The poller uses it to hand the descriptor to a native multiplexing
// primitive instead of probing readiness per socket.
type RawPollable interface {
	RawFD() uintptr
}

// RawPollItem pairs a handle with an interest mask for Multiplexer.
// Ready is filled by the call.
type RawPollItem struct {
	Socket RawSocket
	Events PollEvents
	Ready  PollEvents
}

// Multiplexer is implemented by transports that carry their own readiness
// primitive. timeoutMs < 0 blocks indefinitely. Returns the number of
// items with non-zero Ready.
type Multiplexer interface {
	PollRaw(items []RawPollItem, timeoutMs int) (int, Errno)
}

// Transport mints native sockets and owns the shared context they live
// in. After Term returns, every operation on sockets minted from this
// transport reports ETERM.
type Transport interface {
	Open(t SocketType) (RawSocket, error)
	Term() error
}
