// File: protocol/message.go
// Author: momentics <momentics@gmail.com>
//
// Message: an ordered sequence of frames forming one logical multi-part
// message. Frame order is wire order.

package protocol

import (
	"github.com/momentics/hioload-mq/api"
)

// Message owns an ordered sequence of frames. Transferring a frame into
// a Message transfers ownership; removal operations release the removed
// frame unless the caller explicitly takes it back.
type Message struct {
	frames   []*Frame
	disposed bool
}

// NewMessage creates an empty message.
func NewMessage() *Message {
	return &Message{}
}

// NewMessageFrom creates a message taking ownership of the given frames
// in order.
func NewMessageFrom(frames ...*Frame) *Message {
	m := NewMessage()
	m.frames = append(m.frames, frames...)
	return m
}

// Len returns the number of frames.
func (m *Message) Len() int { return len(m.frames) }

// At returns the frame at index i without transferring ownership.
func (m *Message) At(i int) (*Frame, error) {
	if m.disposed {
		return nil, api.ErrMessageDisposed
	}
	if i < 0 || i >= len(m.frames) {
		return nil, api.ErrInvalidArgument
	}
	return m.frames[i], nil
}

// Append takes ownership of f and places it last.
func (m *Message) Append(f *Frame) error {
	if m.disposed {
		return api.ErrMessageDisposed
	}
	m.frames = append(m.frames, f)
	return nil
}

// Prepend takes ownership of f and places it first.
func (m *Message) Prepend(f *Frame) error {
	return m.Insert(0, f)
}

// Insert takes ownership of f and places it at index i, shifting the
// tail. O(N) for arbitrary i.
func (m *Message) Insert(i int, f *Frame) error {
	if m.disposed {
		return api.ErrMessageDisposed
	}
	if i < 0 || i > len(m.frames) {
		return api.ErrInvalidArgument
	}
	m.frames = append(m.frames, nil)
	copy(m.frames[i+1:], m.frames[i:])
	m.frames[i] = f
	return nil
}

// RemoveAt removes the frame at index i. With release=true (the default
// convention) the frame is disposed and nil is returned; with
// release=false ownership passes back to the caller.
func (m *Message) RemoveAt(i int, release bool) (*Frame, error) {
	if m.disposed {
		return nil, api.ErrMessageDisposed
	}
	if i < 0 || i >= len(m.frames) {
		return nil, api.ErrInvalidArgument
	}
	f := m.frames[i]
	m.frames = append(m.frames[:i], m.frames[i+1:]...)
	if release {
		f.Dispose()
		return nil, nil
	}
	return f, nil
}

// ReplaceAt swaps the frame at index i for f, taking ownership of f.
// The displaced frame is disposed when release is true, else returned.
func (m *Message) ReplaceAt(i int, f *Frame, release bool) (*Frame, error) {
	if m.disposed {
		return nil, api.ErrMessageDisposed
	}
	if i < 0 || i >= len(m.frames) {
		return nil, api.ErrInvalidArgument
	}
	old := m.frames[i]
	m.frames[i] = f
	if release {
		old.Dispose()
		return nil, nil
	}
	return old, nil
}

// Wrap prepends the envelope [routing, empty-delimiter] ahead of the
// payload, per the ROUTER/DEALER addressing convention.
func (m *Message) Wrap(routing *Frame) error {
	if err := m.Prepend(NewFrame()); err != nil {
		routing.Dispose()
		return err
	}
	return m.Prepend(routing)
}

// Unwrap removes and returns the leading routing frame, additionally
// stripping one immediately-following empty delimiter frame if present.
func (m *Message) Unwrap() (*Frame, error) {
	if m.disposed {
		return nil, api.ErrMessageDisposed
	}
	if len(m.frames) == 0 {
		return nil, api.ErrInvalidArgument
	}
	routing, err := m.RemoveAt(0, false)
	if err != nil {
		return nil, err
	}
	if len(m.frames) > 0 {
		if n, err := m.frames[0].Len(); err == nil && n == 0 {
			_, _ = m.RemoveAt(0, true)
		}
	}
	return routing, nil
}

// Dispose releases every frame and invalidates the message. Safe to call
// more than once.
func (m *Message) Dispose() {
	if m.disposed {
		return
	}
	for _, f := range m.frames {
		f.Dispose()
	}
	m.frames = nil
	m.disposed = true
}

// Dismiss releases ownership of all contained frames without freeing
// them, for when the whole message has already been handed downstream.
func (m *Message) Dismiss() {
	if m.disposed {
		return
	}
	for _, f := range m.frames {
		f.Dismiss()
	}
	m.frames = nil
	m.disposed = true
}
