// File: socket/socket.go
// Author: momentics <momentics@gmail.com>
//
// Socket: retrying send/receive engine over one native handle.

package socket

import (
	"runtime"

	"github.com/momentics/hioload-mq/api"
	"github.com/momentics/hioload-mq/protocol"
)

// Recorder counts frame traffic. Wired by the facade to the control
// metrics registry; nil means no accounting.
type Recorder interface {
	FrameSent()
	FrameReceived()
}

// Socket owns exactly one native handle. Closing it sets the handle to
// nil; further operations report ENOTSOCK. Not safe for concurrent use.
type Socket struct {
	raw api.RawSocket
	typ api.SocketType
	rec Recorder
}

// New wraps a freshly opened native handle.
func New(raw api.RawSocket, typ api.SocketType) *Socket {
	return &Socket{raw: raw, typ: typ}
}

// Open mints a native handle from the transport and wraps it.
func Open(tr api.Transport, typ api.SocketType) (*Socket, error) {
	raw, err := tr.Open(typ)
	if err != nil {
		return nil, err
	}
	return New(raw, typ), nil
}

// SetRecorder attaches a traffic recorder. Pass nil to detach.
func (s *Socket) SetRecorder(r Recorder) { s.rec = r }

// Type returns the immutable messaging pattern of this socket.
func (s *Socket) Type() api.SocketType { return s.typ }

// Raw exposes the native handle for the poller backends.
func (s *Socket) Raw() api.RawSocket { return s.raw }

// Closed reports whether the handle has been released.
func (s *Socket) Closed() bool { return s.raw == nil }

// Close releases the native handle. Idempotent.
func (s *Socket) Close() error {
	if s.raw == nil {
		return nil
	}
	err := s.raw.Close()
	s.raw = nil
	return err
}

// endpointOp runs one bind/connect-family native call under the retry
// classifier. Endpoint errors come back as a non-fatal errno so callers
// may probe addresses.
func (s *Socket) endpointOp(op string, call func() api.Errno) (api.Errno, error) {
	if s.raw == nil {
		return api.ENOTSOCK, nil
	}
	for {
		e := call()
		switch {
		case e == api.EOK:
			return api.EOK, nil
		case e.IsTransient():
			continue
		case e.IsTermination():
			return api.ETERM, nil
		case e.IsEndpointError():
			return e, nil
		default:
			return e, api.NewFatal(op, e)
		}
	}
}

// Bind attaches the socket to a local endpoint. EOK means bound.
func (s *Socket) Bind(endpoint string) (api.Errno, error) {
	return s.endpointOp("bind", func() api.Errno { return s.raw.Bind(endpoint) })
}

// Unbind detaches a previously bound endpoint.
func (s *Socket) Unbind(endpoint string) (api.Errno, error) {
	return s.endpointOp("unbind", func() api.Errno { return s.raw.Unbind(endpoint) })
}

// Connect attaches the socket to a remote endpoint.
func (s *Socket) Connect(endpoint string) (api.Errno, error) {
	return s.endpointOp("connect", func() api.Errno { return s.raw.Connect(endpoint) })
}

// Disconnect detaches a previously connected endpoint.
func (s *Socket) Disconnect(endpoint string) (api.Errno, error) {
	return s.endpointOp("disconnect", func() api.Errno { return s.raw.Disconnect(endpoint) })
}

// SendFrame transmits one frame. On success ownership of the payload has
// moved into the transport and the frame is dismissed. EAGAIN busy-retries
// with a scheduling yield unless FlagDontWait was passed.
func (s *Socket) SendFrame(f *protocol.Frame, flags api.Flags) (api.Errno, error) {
	if s.raw == nil {
		return api.ENOTSOCK, nil
	}
	if !s.typ.CanSend() {
		return api.ENOTSUP, nil
	}
	data, err := f.Data()
	if err != nil {
		return api.EFAULT, nil
	}
	native := flags &^ api.FlagDontWait
	for {
		e := s.raw.SendPart(data, native)
		switch {
		case e == api.EOK:
			f.Dismiss()
			if s.rec != nil {
				s.rec.FrameSent()
			}
			return api.EOK, nil
		case e.IsTransient():
			continue
		case e.IsWouldBlock():
			if flags.Has(api.FlagDontWait) {
				return api.EAGAIN, nil
			}
			runtime.Gosched()
			continue
		case e.IsTermination():
			return api.ETERM, nil
		default:
			return e, api.NewFatal("send", e)
		}
	}
}

// RecvFrame takes the next pending part. EAGAIN is reported, never
// retried: "no data currently" is a caller decision point, not an error.
func (s *Socket) RecvFrame(flags api.Flags) (*protocol.Frame, api.Errno, error) {
	if s.raw == nil {
		return nil, api.ENOTSOCK, nil
	}
	if !s.typ.CanReceive() {
		return nil, api.ENOTSUP, nil
	}
	for {
		p, e := s.raw.RecvPart(flags)
		switch {
		case e == api.EOK:
			if s.rec != nil {
				s.rec.FrameReceived()
			}
			return protocol.NewFrameData(p), api.EOK, nil
		case e.IsTransient():
			continue
		case e.IsWouldBlock():
			return nil, api.EAGAIN, nil
		case e.IsTermination():
			return nil, api.ETERM, nil
		default:
			return nil, e, api.NewFatal("recv", e)
		}
	}
}

// MoreToReceive reads the native more-indicator: the part just received
// belongs to a logical message with further parts pending.
func (s *Socket) MoreToReceive() (bool, api.Errno, error) {
	v, e, err := s.getOption(api.OptionMore)
	if e != api.EOK {
		return false, e, err
	}
	more, _ := v.(bool)
	return more, api.EOK, nil
}

// Events reads the socket's immediate readiness mask. Backing for the
// probe-loop poller.
func (s *Socket) Events() (api.PollEvents, api.Errno, error) {
	v, e, err := s.getOption(api.OptionEvents)
	if e != api.EOK {
		return api.PollNone, e, err
	}
	ev, _ := v.(api.PollEvents)
	return ev, api.EOK, nil
}

func (s *Socket) getOption(opt api.Option) (any, api.Errno, error) {
	if s.raw == nil {
		return nil, api.ENOTSOCK, nil
	}
	for {
		v, e := s.raw.GetOption(opt)
		switch {
		case e == api.EOK:
			return v, api.EOK, nil
		case e.IsTransient():
			continue
		case e.IsTermination():
			return nil, api.ETERM, nil
		case e.IsWouldBlock():
			return nil, api.EAGAIN, nil
		default:
			return nil, e, api.NewFatal("getsockopt", e)
		}
	}
}

// GetOption reads a socket option under the retry classifier.
func (s *Socket) GetOption(opt api.Option) (any, api.Errno, error) {
	return s.getOption(opt)
}

// SetOption writes a socket option under the retry classifier.
func (s *Socket) SetOption(opt api.Option, value any) (api.Errno, error) {
	if s.raw == nil {
		return api.ENOTSOCK, nil
	}
	for {
		e := s.raw.SetOption(opt, value)
		switch {
		case e == api.EOK:
			return api.EOK, nil
		case e.IsTransient():
			continue
		case e.IsTermination():
			return api.ETERM, nil
		default:
			return e, api.NewFatal("setsockopt", e)
		}
	}
}
