// File: poller/probe.go
// Author: momentics <momentics@gmail.com>
//
// Fallback backend: per-socket readiness probe loop for transports
// lacking a native multiplexing primitive and raw descriptors. Iterates
// the set reading each socket's immediate readiness option, sleeping
// briefly between rounds until something is ready or the budget runs
// out. Observably equivalent to the native backends.

package poller

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/momentics/hioload-mq/api"
)

type probeBackend struct {
	pause *backoff.ExponentialBackOff
}

func newProbeBackend() *probeBackend {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Microsecond
	bo.MaxInterval = 2 * time.Millisecond
	bo.MaxElapsedTime = 0
	bo.Reset()
	return &probeBackend{pause: bo}
}

func (b *probeBackend) wait(items []*Item, timeout time.Duration) (int, api.Errno, error) {
	deadline := time.Time{}
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	b.pause.Reset()
	for {
		n, e, err := probeOnce(items)
		if e != api.EOK || err != nil {
			return 0, e, err
		}
		if n > 0 {
			return n, api.EOK, nil
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return 0, api.EOK, nil
		}
		time.Sleep(b.pause.NextBackOff())
	}
}

// probeOnce scans the set once, filling Ready masks.
func probeOnce(items []*Item) (int, api.Errno, error) {
	ready := 0
	for _, it := range items {
		it.Ready = api.PollNone
		if it.Events == api.PollNone {
			continue
		}
		ev, e, err := it.Socket.Events()
		if err != nil {
			return 0, e, err
		}
		if e != api.EOK {
			return 0, e, nil
		}
		it.Ready = ev & (it.Events | api.PollErr)
		if it.Ready != api.PollNone {
			ready++
		}
	}
	return ready, api.EOK, nil
}
