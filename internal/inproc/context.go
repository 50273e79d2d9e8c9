// File: internal/inproc/context.go
// Author: momentics <momentics@gmail.com>
//
// Shared in-process transport context: endpoint registry, readiness
// signaling and termination.

package inproc

import (
	"sync"
	"time"

	"github.com/momentics/hioload-mq/api"
)

// Context owns every in-process socket minted from it. After Term all
// operations on those sockets report ETERM.
type Context struct {
	mu         sync.Mutex
	endpoints  map[string]*Sock
	socks      map[*Sock]struct{}
	sig        chan struct{}
	terminated bool
}

// NewContext creates an empty in-process transport context.
func NewContext() *Context {
	return &Context{
		endpoints: make(map[string]*Sock),
		socks:     make(map[*Sock]struct{}),
		sig:       make(chan struct{}),
	}
}

// Open mints a native socket of the given pattern.
func (c *Context) Open(t api.SocketType) (api.RawSocket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return nil, api.ErrTransportClosed
	}
	s := newSock(c, t)
	c.socks[s] = struct{}{}
	return s, nil
}

// Term shuts the context down. Every subsequent operation on sockets
// minted here reports ETERM, which callers treat as the clean-shutdown
// trigger.
func (c *Context) Term() error {
	c.mu.Lock()
	c.terminated = true
	c.notifyLocked()
	c.mu.Unlock()
	return nil
}

// notifyLocked wakes every waiter blocked in PollRaw. Callers hold c.mu.
func (c *Context) notifyLocked() {
	close(c.sig)
	c.sig = make(chan struct{})
}

// PollRaw implements api.Multiplexer: it blocks until one of the items
// is ready, the timeout elapses (timeoutMs < 0 waits indefinitely), or
// the context terminates.
func (c *Context) PollRaw(items []api.RawPollItem, timeoutMs int) (int, api.Errno) {
	var deadline time.Time
	if timeoutMs >= 0 {
		deadline = time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	}
	for {
		c.mu.Lock()
		if c.terminated {
			c.mu.Unlock()
			return 0, api.ETERM
		}
		sig := c.sig
		n := 0
		for i := range items {
			s, ok := items[i].Socket.(*Sock)
			if !ok {
				c.mu.Unlock()
				return 0, api.EFAULT
			}
			items[i].Ready = s.readinessLocked() & (items[i].Events | api.PollErr)
			if items[i].Ready != api.PollNone {
				n++
			}
		}
		c.mu.Unlock()
		if n > 0 {
			return n, api.EOK
		}
		if deadline.IsZero() {
			<-sig
			continue
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, api.EOK
		}
		t := time.NewTimer(remaining)
		select {
		case <-sig:
			t.Stop()
		case <-t.C:
			return 0, api.EOK
		}
	}
}

// bindLocked registers a binder for endpoint. Callers hold c.mu.
func (c *Context) bindLocked(endpoint string, s *Sock) api.Errno {
	if _, busy := c.endpoints[endpoint]; busy {
		return api.EADDRINUSE
	}
	c.endpoints[endpoint] = s
	return api.EOK
}

func (c *Context) unbindLocked(endpoint string, s *Sock) api.Errno {
	if c.endpoints[endpoint] != s {
		return api.ENOENT
	}
	delete(c.endpoints, endpoint)
	return api.EOK
}
