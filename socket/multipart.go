// File: socket/multipart.go
// Author: momentics <momentics@gmail.com>
//
// Multi-part send/receive and the frame-at-a-time relay path.

package socket

import (
	"runtime"

	"github.com/momentics/hioload-mq/api"
	"github.com/momentics/hioload-mq/protocol"
)

// SendFrames transmits frames in order. Every frame but the last carries
// FlagMore so the peer can reassemble the logical message; the last
// carries it only if the caller's flags request continuation beyond this
// call. Sending stops at the first failure; parts already handed to the
// transport are not retracted.
func (s *Socket) SendFrames(frames []*protocol.Frame, flags api.Flags) (int, api.Errno, error) {
	for i, f := range frames {
		fl := flags &^ api.FlagMore
		if i < len(frames)-1 || flags.Has(api.FlagMore) {
			fl |= api.FlagMore
		}
		if e, err := s.SendFrame(f, fl); e != api.EOK {
			return i, e, err
		}
	}
	return len(frames), api.EOK, nil
}

// SendMessage transmits all frames of m as one logical message. On full
// success the message is dismissed: ownership of every payload now rests
// with the transport. A partial send leaves the peer with a truncated
// multi-part message; the protocol offers no atomicity across parts.
func (s *Socket) SendMessage(m *protocol.Message, flags api.Flags) (api.Errno, error) {
	for i := 0; i < m.Len(); i++ {
		f, err := m.At(i)
		if err != nil {
			return api.EFAULT, nil
		}
		fl := flags &^ api.FlagMore
		if i < m.Len()-1 || flags.Has(api.FlagMore) {
			fl |= api.FlagMore
		}
		if e, err := s.SendFrame(f, fl); e != api.EOK {
			return e, err
		}
	}
	m.Dismiss()
	return api.EOK, nil
}

// RecvFrames receives up to count frames (count < 0 removes the bound).
// When FlagMore is requested, reception continues only while the native
// more-indicator reports further parts and the bound is not exhausted.
// Once a part has announced a continuation, the remainder of the logical
// message is in flight and a would-block status is busy-retried with a
// scheduling yield rather than surfaced; parts already received must not
// be torn off from their tail. The result is an eagerly materialized
// slice in receive order; a non-EOK errno accompanies whatever was
// received before it.
func (s *Socket) RecvFrames(count int, flags api.Flags) ([]*protocol.Frame, api.Errno, error) {
	var out []*protocol.Frame
	remaining := count
	mid := false
	for remaining != 0 {
		f, e, err := s.RecvFrame(flags)
		if e != api.EOK {
			if mid && e.IsWouldBlock() {
				runtime.Gosched()
				continue
			}
			return out, e, err
		}
		out = append(out, f)
		if remaining > 0 {
			remaining--
		}
		if !flags.Has(api.FlagMore) {
			break
		}
		more, e, err := s.MoreToReceive()
		if e != api.EOK {
			return out, e, err
		}
		if !more {
			break
		}
		mid = true
	}
	return out, api.EOK, nil
}

// RecvMessage receives one complete logical message. A would-block
// status is surfaced only before the first part has arrived; after that
// the call completes the message.
func (s *Socket) RecvMessage(flags api.Flags) (*protocol.Message, api.Errno, error) {
	frames, e, err := s.RecvFrames(-1, flags|api.FlagMore)
	if e != api.EOK {
		for _, f := range frames {
			f.Dispose()
		}
		return nil, e, err
	}
	return protocol.NewMessageFrom(frames...), api.EOK, nil
}

// Forward relays one complete logical message to dst part by part. Each
// part is received non-blocking (busy-retrying EAGAIN and EINTR with a
// scheduling yield), its continuation state inspected, and the same
// bytes handed straight to dst; no Message is ever materialized on this
// path. A non-EOK errno reports the first unrecoverable condition.
func (s *Socket) Forward(dst *Socket) (api.Errno, error) {
	if s.raw == nil || dst.raw == nil {
		return api.ENOTSOCK, nil
	}
	for {
		var part []byte
	recv:
		for {
			p, e := s.raw.RecvPart(api.FlagNone)
			switch {
			case e == api.EOK:
				part = p
				break recv
			case e.IsTransient(), e.IsWouldBlock():
				runtime.Gosched()
				continue
			case e.IsTermination():
				return api.ETERM, nil
			default:
				return e, api.NewFatal("forward/recv", e)
			}
		}
		if s.rec != nil {
			s.rec.FrameReceived()
		}
		more, e, err := s.MoreToReceive()
		if e != api.EOK {
			return e, err
		}
		fl := api.FlagNone
		if more {
			fl = api.FlagMore
		}
	send:
		for {
			e := dst.raw.SendPart(part, fl)
			switch {
			case e == api.EOK:
				break send
			case e.IsTransient(), e.IsWouldBlock():
				runtime.Gosched()
				continue
			case e.IsTermination():
				return api.ETERM, nil
			default:
				return e, api.NewFatal("forward/send", e)
			}
		}
		if dst.rec != nil {
			dst.rec.FrameSent()
		}
		if !more {
			return api.EOK, nil
		}
	}
}
