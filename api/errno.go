// File: api/errno.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Classified status codes reported by the native socket primitive.
// Every native call resolves to exactly one Errno; the retry engines in
// socket/ and poller/ branch on this classification rather than on
// platform error strings.

package api

// Errno is the fixed enumeration of classified native-socket statuses.
type Errno int

const (
	EOK Errno = iota
	EAGAIN
	EINTR
	ETERM
	EADDRINUSE
	EADDRNOTAVAIL
	ENODEV
	ENOTSOCK
	ENOENT
	EMFILE
	EFAULT
	EMTHREAD
	ENOTSUP
	EINVAL
)

func (e Errno) String() string {
	switch e {
	case EOK:
		return "ok"
	case EAGAIN:
		return "resource temporarily unavailable (EAGAIN)"
	case EINTR:
		return "interrupted system call (EINTR)"
	case ETERM:
		return "context terminated (ETERM)"
	case EADDRINUSE:
		return "address in use (EADDRINUSE)"
	case EADDRNOTAVAIL:
		return "address not available (EADDRNOTAVAIL)"
	case ENODEV:
		return "no such device (ENODEV)"
	case ENOTSOCK:
		return "not a socket (ENOTSOCK)"
	case ENOENT:
		return "no such endpoint (ENOENT)"
	case EMFILE:
		return "too many open sockets (EMFILE)"
	case EFAULT:
		return "invalid buffer or handle (EFAULT)"
	case EMTHREAD:
		return "no I/O thread available (EMTHREAD)"
	case ENOTSUP:
		return "operation not supported by socket type (ENOTSUP)"
	case EINVAL:
		return "invalid argument (EINVAL)"
	default:
		return "unclassified native error"
	}
}

// Error makes Errno usable as a plain error value.
func (e Errno) Error() string { return e.String() }

// IsTransient reports whether the status should be retried immediately
// and silently (spurious signal interruption).
func (e Errno) IsTransient() bool { return e == EINTR }

// IsWouldBlock reports the non-blocking "no data / no space right now"
// status. Not an error condition; the caller decides whether to retry.
func (e Errno) IsWouldBlock() bool { return e == EAGAIN }

// IsTermination reports that the owning transport context is shutting
// down. Callers must unwind cleanly, never escalate.
func (e Errno) IsTermination() bool { return e == ETERM }

// IsEndpointError reports the bind/connect address and resource family.
// These surface as boolean-false results so callers may probe endpoints.
func (e Errno) IsEndpointError() bool {
	switch e {
	case EADDRINUSE, EADDRNOTAVAIL, ENODEV, ENOTSOCK, ENOENT, EMFILE, EMTHREAD:
		return true
	}
	return false
}
