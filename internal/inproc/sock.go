// File: internal/inproc/sock.go
// Author: momentics <momentics@gmail.com>
//
// In-process native socket: bounded part queues with continuation flags,
// pattern-specific delivery and readiness reporting.

package inproc

import (
	"github.com/eapache/queue"

	"github.com/momentics/hioload-mq/api"
)

const defaultHWM = 1000

// part is one queued message part with its continuation flag.
type part struct {
	data []byte
	more bool
}

// Sock implements api.RawSocket over the shared context. All state is
// guarded by the context mutex; per-sock locks would need a lock order
// between peers.
type Sock struct {
	ctx    *Context
	typ    api.SocketType
	closed bool

	inbox *queue.Queue
	peers []*Sock
	rr    int

	bound []string
	subs  [][]byte
	opts  map[api.Option]any

	lastMore   bool
	midSend    bool
	midTargets []*Sock
}

func newSock(c *Context, t api.SocketType) *Sock {
	return &Sock{
		ctx:   c,
		typ:   t,
		inbox: queue.New(),
		opts:  make(map[api.Option]any),
	}
}

func (s *Sock) guard() api.Errno {
	if s.ctx.terminated {
		return api.ETERM
	}
	if s.closed {
		return api.ENOTSOCK
	}
	return api.EOK
}

// recvHWM returns the inbound queue bound for this sock.
func (s *Sock) recvHWM() int {
	if v, ok := s.opts[api.OptionRecvHWM].(int); ok && v > 0 {
		return v
	}
	return defaultHWM
}

// readinessLocked computes the immediate readiness mask. Callers hold
// the context mutex.
func (s *Sock) readinessLocked() api.PollEvents {
	if s.closed {
		return api.PollErr
	}
	var ev api.PollEvents
	if s.inbox.Length() > 0 {
		ev |= api.PollIn
	}
	if s.typ.CanSend() && s.writableLocked() {
		ev |= api.PollOut
	}
	return ev
}

// writableLocked reports whether a send could make progress right now.
// PUB-style socks are always writable; they drop when nobody listens.
func (s *Sock) writableLocked() bool {
	switch s.typ {
	case api.Pub, api.XPub:
		return true
	}
	for _, p := range s.peers {
		if !p.closed && p.inbox.Length() < p.recvHWM() {
			return true
		}
	}
	return false
}

// SendPart delivers one part to the peers the pattern selects. The
// continuation flag pins the remaining parts of a logical message to the
// same targets, so filtering and distribution happen once per message.
func (s *Sock) SendPart(p []byte, flags api.Flags) api.Errno {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if e := s.guard(); e != api.EOK {
		return e
	}
	var targets []*Sock
	if s.midSend {
		targets = s.midTargets
	} else {
		var e api.Errno
		targets, e = s.selectTargetsLocked(p)
		if e != api.EOK {
			return e
		}
	}
	for _, t := range targets {
		if t.closed {
			continue
		}
		if t.inbox.Length() >= t.recvHWM() {
			// Only fan-out patterns reach a full peer; they drop.
			continue
		}
		t.inbox.Add(part{data: p, more: flags.Has(api.FlagMore)})
	}
	s.midSend = flags.Has(api.FlagMore)
	if s.midSend {
		s.midTargets = targets
	} else {
		s.midTargets = nil
	}
	s.ctx.notifyLocked()
	return api.EOK
}

// selectTargetsLocked picks delivery targets for the first part of a
// logical message.
func (s *Sock) selectTargetsLocked(first []byte) ([]*Sock, api.Errno) {
	switch s.typ {
	case api.Pub, api.XPub:
		var out []*Sock
		for _, p := range s.peers {
			if !p.closed && p.typ.CanReceive() && p.matchesLocked(first) {
				out = append(out, p)
			}
		}
		// No subscriber means the message is dropped, not an error.
		return out, api.EOK
	case api.Push, api.Dealer, api.Req, api.Router:
		if len(s.peers) == 0 {
			return nil, api.EAGAIN
		}
		for i := 0; i < len(s.peers); i++ {
			p := s.peers[(s.rr+i)%len(s.peers)]
			if !p.closed && p.inbox.Length() < p.recvHWM() {
				s.rr = (s.rr + i + 1) % len(s.peers)
				return []*Sock{p}, api.EOK
			}
		}
		return nil, api.EAGAIN
	default: // PAIR, REP
		for _, p := range s.peers {
			if !p.closed {
				if p.inbox.Length() >= p.recvHWM() {
					return nil, api.EAGAIN
				}
				return []*Sock{p}, api.EOK
			}
		}
		return nil, api.EAGAIN
	}
}

// matchesLocked applies subscription prefixes; socks that cannot
// subscribe receive everything. An XSUB with no filters installed runs
// in raw mode and also receives everything.
func (s *Sock) matchesLocked(first []byte) bool {
	if !s.typ.CanSubscribe() {
		return true
	}
	if s.typ == api.XSub && len(s.subs) == 0 {
		return true
	}
	for _, sub := range s.subs {
		if len(first) >= len(sub) && string(first[:len(sub)]) == string(sub) {
			return true
		}
	}
	return false
}

// RecvPart pops the next pending part, recording its continuation flag
// for OptionMore.
func (s *Sock) RecvPart(api.Flags) ([]byte, api.Errno) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if e := s.guard(); e != api.EOK {
		return nil, e
	}
	if s.inbox.Length() == 0 {
		return nil, api.EAGAIN
	}
	pt := s.inbox.Remove().(part)
	s.lastMore = pt.more
	s.ctx.notifyLocked()
	return pt.data, api.EOK
}

func (s *Sock) Bind(endpoint string) api.Errno {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if e := s.guard(); e != api.EOK {
		return e
	}
	if e := s.ctx.bindLocked(endpoint, s); e != api.EOK {
		return e
	}
	s.bound = append(s.bound, endpoint)
	return api.EOK
}

func (s *Sock) Unbind(endpoint string) api.Errno {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if e := s.guard(); e != api.EOK {
		return e
	}
	if e := s.ctx.unbindLocked(endpoint, s); e != api.EOK {
		return e
	}
	for i, b := range s.bound {
		if b == endpoint {
			s.bound = append(s.bound[:i], s.bound[i+1:]...)
			break
		}
	}
	return api.EOK
}

func (s *Sock) Connect(endpoint string) api.Errno {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if e := s.guard(); e != api.EOK {
		return e
	}
	binder, ok := s.ctx.endpoints[endpoint]
	if !ok || binder.closed {
		return api.ENOENT
	}
	s.peers = append(s.peers, binder)
	binder.peers = append(binder.peers, s)
	s.ctx.notifyLocked()
	return api.EOK
}

func (s *Sock) Disconnect(endpoint string) api.Errno {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if e := s.guard(); e != api.EOK {
		return e
	}
	binder, ok := s.ctx.endpoints[endpoint]
	if !ok {
		return api.ENOENT
	}
	if !unpeerLocked(s, binder) {
		return api.ENOENT
	}
	unpeerLocked(binder, s)
	s.ctx.notifyLocked()
	return api.EOK
}

func unpeerLocked(from, target *Sock) bool {
	for i, p := range from.peers {
		if p == target {
			from.peers = append(from.peers[:i], from.peers[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Sock) GetOption(opt api.Option) (any, api.Errno) {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if e := s.guard(); e != api.EOK {
		return nil, e
	}
	switch opt {
	case api.OptionMore:
		return s.lastMore, api.EOK
	case api.OptionEvents:
		return s.readinessLocked(), api.EOK
	default:
		v, ok := s.opts[opt]
		if !ok {
			return nil, api.EINVAL
		}
		return v, api.EOK
	}
}

func (s *Sock) SetOption(opt api.Option, value any) api.Errno {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if e := s.guard(); e != api.EOK {
		return e
	}
	switch opt {
	case api.OptionSubscribe, api.OptionUnsubscribe:
		if !s.typ.CanSubscribe() {
			return api.ENOTSUP
		}
		prefix, e := prefixBytes(value)
		if e != api.EOK {
			return e
		}
		if opt == api.OptionSubscribe {
			s.subs = append(s.subs, prefix)
			return api.EOK
		}
		for i, sub := range s.subs {
			if string(sub) == string(prefix) {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return api.EOK
			}
		}
		return api.EINVAL
	case api.OptionMore, api.OptionEvents:
		return api.EINVAL
	default:
		s.opts[opt] = value
		return api.EOK
	}
}

func prefixBytes(v any) ([]byte, api.Errno) {
	switch p := v.(type) {
	case []byte:
		return append([]byte(nil), p...), api.EOK
	case string:
		return []byte(p), api.EOK
	default:
		return nil, api.EINVAL
	}
}

// PollRaw delegates to the owning context's multiplexer so a poll set
// built from in-process socks gets a true blocking wait.
func (s *Sock) PollRaw(items []api.RawPollItem, timeoutMs int) (int, api.Errno) {
	return s.ctx.PollRaw(items, timeoutMs)
}

// Close detaches the sock from its peers and endpoints. Idempotent.
func (s *Sock) Close() error {
	s.ctx.mu.Lock()
	defer s.ctx.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, ep := range s.bound {
		_ = s.ctx.unbindLocked(ep, s)
	}
	s.bound = nil
	for _, p := range s.peers {
		unpeerLocked(p, s)
	}
	s.peers = nil
	s.inbox = queue.New()
	delete(s.ctx.socks, s)
	s.ctx.notifyLocked()
	return nil
}
