// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the native socket
// primitive: scripted status sequences per call site, recorded send
// traffic, and a settable readiness mask.

package fake

import (
	"sync"

	"github.com/momentics/hioload-mq/api"
)

// SentPart records one part handed to the fake transport.
type SentPart struct {
	Data  []byte
	Flags api.Flags
}

// OptionCall records one SetOption invocation.
type OptionCall struct {
	Opt   api.Option
	Value any
}

// RawSocket is a scripted implementation of api.RawSocket. Each native
// call consumes the next status from its script; an exhausted script
// reports EOK. Zero value is usable.
type RawSocket struct {
	mu sync.Mutex

	SendScript []api.Errno
	RecvScript []api.Errno
	BindScript []api.Errno
	OptScript  []api.Errno

	RecvParts [][]byte
	MoreFlags []bool

	Sent        []SentPart
	OptionCalls []OptionCall
	More        bool
	Readiness   api.PollEvents
	CloseErr    error
	Closed      bool
}

var _ api.RawSocket = (*RawSocket)(nil)

func next(script *[]api.Errno) api.Errno {
	if len(*script) == 0 {
		return api.EOK
	}
	e := (*script)[0]
	*script = (*script)[1:]
	return e
}

// SendPart consumes the send script; on EOK it records the part.
func (r *RawSocket) SendPart(p []byte, flags api.Flags) api.Errno {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := next(&r.SendScript); e != api.EOK {
		return e
	}
	r.Sent = append(r.Sent, SentPart{Data: p, Flags: flags})
	return api.EOK
}

// RecvPart consumes the recv script; on EOK it pops the next queued part
// and its more flag.
func (r *RawSocket) RecvPart(api.Flags) ([]byte, api.Errno) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := next(&r.RecvScript); e != api.EOK {
		return nil, e
	}
	if len(r.RecvParts) == 0 {
		return nil, api.EAGAIN
	}
	p := r.RecvParts[0]
	r.RecvParts = r.RecvParts[1:]
	if len(r.MoreFlags) > 0 {
		r.More = r.MoreFlags[0]
		r.MoreFlags = r.MoreFlags[1:]
	} else {
		r.More = false
	}
	return p, api.EOK
}

// Queue appends a part with its continuation flag to the pending inbox.
func (r *RawSocket) Queue(p []byte, more bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RecvParts = append(r.RecvParts, p)
	r.MoreFlags = append(r.MoreFlags, more)
}

func (r *RawSocket) Bind(string) api.Errno {
	r.mu.Lock()
	defer r.mu.Unlock()
	return next(&r.BindScript)
}

func (r *RawSocket) Unbind(string) api.Errno {
	r.mu.Lock()
	defer r.mu.Unlock()
	return next(&r.BindScript)
}

func (r *RawSocket) Connect(string) api.Errno {
	r.mu.Lock()
	defer r.mu.Unlock()
	return next(&r.BindScript)
}

func (r *RawSocket) Disconnect(string) api.Errno {
	r.mu.Lock()
	defer r.mu.Unlock()
	return next(&r.BindScript)
}

func (r *RawSocket) GetOption(opt api.Option) (any, api.Errno) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := next(&r.OptScript); e != api.EOK {
		return nil, e
	}
	switch opt {
	case api.OptionMore:
		return r.More, api.EOK
	case api.OptionEvents:
		return r.Readiness, api.EOK
	default:
		return nil, api.EINVAL
	}
}

// SetOption consumes the option script; on EOK it records the call.
func (r *RawSocket) SetOption(opt api.Option, v any) api.Errno {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := next(&r.OptScript); e != api.EOK {
		return e
	}
	r.OptionCalls = append(r.OptionCalls, OptionCall{Opt: opt, Value: v})
	return api.EOK
}

func (r *RawSocket) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closed = true
	return r.CloseErr
}

// SetReadiness updates the mask reported through OptionEvents.
func (r *RawSocket) SetReadiness(ev api.PollEvents) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Readiness = ev
}
