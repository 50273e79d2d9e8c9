// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error values and the structured fatal-error type used across
// the library.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrSocketClosed    = fmt.Errorf("socket is closed")
	ErrTransportClosed = fmt.Errorf("transport is terminated")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrFrameReleased   = fmt.Errorf("frame buffer already released")
	ErrMessageDisposed = fmt.Errorf("message already disposed")
	ErrNotRunning      = fmt.Errorf("device is not running")
	ErrAlreadyRunning  = fmt.Errorf("device is already running")
)

// FatalError wraps an unclassified native status. It marks a contract
// violation rather than an environmental condition; there is no defined
// recovery path for it.
type FatalError struct {
	Op    string
	Errno Errno
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: fatal native error: %s", e.Op, e.Errno)
}

// NewFatal builds a FatalError for the given operation and status.
func NewFatal(op string, errno Errno) *FatalError {
	return &FatalError{Op: op, Errno: errno}
}

// IsFatal reports whether err is a contract-violation fault.
func IsFatal(err error) bool {
	_, ok := err.(*FatalError)
	return ok
}
