//go:build linux
// +build linux

// File: poller/fd_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OS descriptor wait backend for transports whose sockets expose a raw
// file descriptor.

package poller

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-mq/api"
)

func fdWaitSupported() bool { return true }

type fdBackend struct {
	fds []unix.PollFd
}

func newFDBackend() backend { return &fdBackend{} }

func (b *fdBackend) wait(items []*Item, timeout time.Duration) (int, api.Errno, error) {
	if cap(b.fds) < len(items) {
		b.fds = make([]unix.PollFd, len(items))
	}
	b.fds = b.fds[:len(items)]
	for i, it := range items {
		raw := it.Socket.Raw().(api.RawPollable)
		var ev int16
		if it.Events.Has(api.PollIn) {
			ev |= unix.POLLIN
		}
		if it.Events.Has(api.PollOut) {
			ev |= unix.POLLOUT
		}
		b.fds[i] = unix.PollFd{Fd: int32(raw.RawFD()), Events: ev}
		it.Ready = api.PollNone
	}
	n, err := unix.Poll(b.fds, toMillis(timeout))
	if err != nil {
		if err == unix.EINTR {
			return 0, api.EINTR, nil
		}
		return 0, api.EFAULT, api.NewFatal("poll", api.EFAULT)
	}
	for i := range b.fds {
		var ready api.PollEvents
		if b.fds[i].Revents&unix.POLLIN != 0 {
			ready |= api.PollIn
		}
		if b.fds[i].Revents&unix.POLLOUT != 0 {
			ready |= api.PollOut
		}
		if b.fds[i].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			ready |= api.PollErr
		}
		items[i].Ready = ready
	}
	return n, api.EOK, nil
}
