// File: poller/mux.go
// Author: momentics <momentics@gmail.com>
//
// Backend delegating the wait to the transport's own multiplexing
// primitive.

package poller

import (
	"time"

	"github.com/momentics/hioload-mq/api"
)

type muxBackend struct {
	mux api.Multiplexer
	raw []api.RawPollItem
}

func (b *muxBackend) wait(items []*Item, timeout time.Duration) (int, api.Errno, error) {
	if cap(b.raw) < len(items) {
		b.raw = make([]api.RawPollItem, len(items))
	}
	b.raw = b.raw[:len(items)]
	for i, it := range items {
		b.raw[i] = api.RawPollItem{Socket: it.Socket.Raw(), Events: it.Events}
		it.Ready = api.PollNone
	}
	n, e := b.mux.PollRaw(b.raw, toMillis(timeout))
	if e != api.EOK {
		return 0, e, nil
	}
	for i := range b.raw {
		items[i].Ready = b.raw[i].Ready & (items[i].Events | api.PollErr)
	}
	return n, api.EOK, nil
}

// toMillis converts a timeout to native milliseconds, -1 for infinite.
// A sub-millisecond positive timeout still waits one unit rather than
// degenerating into a busy spin.
func toMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := int(d / time.Millisecond)
	if ms == 0 && d > 0 {
		ms = 1
	}
	return ms
}
