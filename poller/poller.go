// File: poller/poller.go
// Author: momentics <momentics@gmail.com>
//
// Poll set, backend selection and handler dispatch.

package poller

import (
	"time"

	"github.com/momentics/hioload-mq/api"
	"github.com/momentics/hioload-mq/socket"
)

// Infinite blocks a poll call until readiness or termination.
const Infinite time.Duration = -1

// Item associates one socket with an interest mask, the readiness mask
// filled by the last poll call, and optional readiness handlers.
type Item struct {
	Socket *socket.Socket
	Events api.PollEvents
	Ready  api.PollEvents

	OnReadable func(*socket.Socket)
	OnWritable func(*socket.Socket)
}

// backend is one waiting strategy. It fills Ready on each item and
// returns the number of ready items. A zero count with EOK means the
// timeout elapsed.
type backend interface {
	wait(items []*Item, timeout time.Duration) (int, api.Errno, error)
}

// Poller owns an ordered poll set. Not safe for concurrent use; one
// device loop owns one poller.
type Poller struct {
	items []*Item
	be    backend
}

// New builds a poller over the given items and selects the cheapest
// capable backend: the transport's own multiplexing primitive first, an
// OS descriptor wait second, the readiness probe loop as the fallback.
func New(items ...*Item) *Poller {
	return &Poller{items: items, be: selectBackend(items)}
}

// Add appends an item and re-selects the backend.
func (p *Poller) Add(it *Item) {
	p.items = append(p.items, it)
	p.be = selectBackend(p.items)
}

// Items exposes the poll set for result inspection.
func (p *Poller) Items() []*Item { return p.items }

// Poll blocks until at least one socket is ready or the timeout elapses
// (negative timeout blocks indefinitely). Readiness lands in each
// item's Ready mask. A zero count with EAGAIN reports an empty poll.
// EINTR inside a backend wait is retried with the remaining budget.
func (p *Poller) Poll(timeout time.Duration) (int, api.Errno, error) {
	deadline := time.Time{}
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		remaining := timeout
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
		}
		n, e, err := p.be.wait(p.items, remaining)
		switch {
		case err != nil:
			return 0, e, err
		case e == api.EOK:
			if n == 0 {
				return 0, api.EAGAIN, nil
			}
			return n, api.EOK, nil
		case e.IsTransient():
			continue
		case e.IsWouldBlock():
			return 0, api.EAGAIN, nil
		case e.IsTermination():
			return 0, api.ETERM, nil
		default:
			return 0, e, api.NewFatal("poll", e)
		}
	}
}

// Dispatch invokes the readiness handlers of every item marked ready by
// the last Poll call.
func (p *Poller) Dispatch() {
	for _, it := range p.items {
		if it.Ready.Has(api.PollIn) && it.OnReadable != nil {
			it.OnReadable(it.Socket)
		}
		if it.Ready.Has(api.PollOut) && it.OnWritable != nil {
			it.OnWritable(it.Socket)
		}
	}
}

// PollAndDispatch is Poll followed by Dispatch on success.
func (p *Poller) PollAndDispatch(timeout time.Duration) (int, api.Errno, error) {
	n, e, err := p.Poll(timeout)
	if e == api.EOK {
		p.Dispatch()
	}
	return n, e, err
}

// selectBackend inspects the capabilities of every socket in the set.
func selectBackend(items []*Item) backend {
	if len(items) > 0 {
		if mux, ok := items[0].Socket.Raw().(api.Multiplexer); ok {
			return &muxBackend{mux: mux}
		}
		if fdWaitSupported() {
			all := true
			for _, it := range items {
				if _, ok := it.Socket.Raw().(api.RawPollable); !ok {
					all = false
					break
				}
			}
			if all {
				return newFDBackend()
			}
		}
	}
	return newProbeBackend()
}
