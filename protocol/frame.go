// File: protocol/frame.go
// Author: momentics <momentics@gmail.com>
//
// Frame: one message part backed by a pooled byte buffer with explicit
// single-release ownership.

package protocol

import (
	"github.com/valyala/bytebufferpool"

	"github.com/momentics/hioload-mq/api"
)

// framePool serves all frame payload buffers. Buffers return to the pool
// on Dispose unless ownership was dismissed to the transport first.
var framePool bytebufferpool.Pool

// Frame is an exclusively owned byte buffer carrying one message part.
// A frame is created by a producer, consumed exactly once (by a send
// call or by the application), then released. The zero value is not
// usable; construct via NewFrame, NewFrameSize or NewFrameData.
type Frame struct {
	buf  *bytebufferpool.ByteBuffer
	owns bool
}

// NewFrame creates an empty zero-length frame.
func NewFrame() *Frame {
	return &Frame{buf: framePool.Get(), owns: true}
}

// NewFrameSize creates a frame with a writable payload of n bytes.
func NewFrameSize(n int) *Frame {
	f := NewFrame()
	if n > 0 {
		if cap(f.buf.B) < n {
			f.buf.B = make([]byte, n)
		} else {
			f.buf.B = f.buf.B[:n]
			for i := range f.buf.B {
				f.buf.B[i] = 0
			}
		}
	}
	return f
}

// NewFrameData creates a frame holding a copy of p.
func NewFrameData(p []byte) *Frame {
	f := NewFrame()
	f.buf.B = append(f.buf.B[:0], p...)
	return f
}

// Len returns the payload length, or an error once the frame has been
// released. A released frame never reports stale sizes.
func (f *Frame) Len() (int, error) {
	if f.buf == nil {
		return 0, api.ErrFrameReleased
	}
	return len(f.buf.B), nil
}

// Data returns the payload for reading or in-place writing. Fails
// deterministically after release.
func (f *Frame) Data() ([]byte, error) {
	if f.buf == nil {
		return nil, api.ErrFrameReleased
	}
	return f.buf.B, nil
}

// Clone duplicates the frame into a new owned buffer. Frames are never
// aliased; this is the only way to have the same bytes twice.
func (f *Frame) Clone() (*Frame, error) {
	if f.buf == nil {
		return nil, api.ErrFrameReleased
	}
	return NewFrameData(f.buf.B), nil
}

// Dismiss marks ownership as transferred to the native transport. The
// buffer will not be recycled by Dispose; the transport frees it. Called
// by the socket layer on each successful send.
func (f *Frame) Dismiss() {
	f.owns = false
}

// Dismissed reports whether ownership has left this frame.
func (f *Frame) Dismissed() bool { return f.buf != nil && !f.owns }

// Dispose releases the frame. Safe to call more than once; only the
// first call recycles the buffer, and only if ownership was not
// dismissed. Any accessor called afterwards fails.
func (f *Frame) Dispose() {
	if f.buf == nil {
		return
	}
	if f.owns {
		framePool.Put(f.buf)
	}
	f.buf = nil
	f.owns = false
}

// Released reports whether the frame has been disposed.
func (f *Frame) Released() bool { return f.buf == nil }
