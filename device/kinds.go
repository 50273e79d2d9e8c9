// File: device/kinds.go
// Author: momentics <momentics@gmail.com>
//
// Prewired device kinds for the classic broker patterns, each defaulting
// both handlers to the frame-at-a-time relay.

package device

import (
	"github.com/momentics/hioload-mq/api"
	"github.com/momentics/hioload-mq/protocol"
	"github.com/momentics/hioload-mq/socket"
)

// RelayTo returns a handler that forwards one complete logical message
// from the readable socket to dst, frame by frame, without materializing
// it.
func RelayTo(dst *socket.Socket) HandlerFunc {
	return func(src *socket.Socket) (*protocol.Message, error) {
		e, err := src.Forward(dst)
		if err != nil {
			return nil, err
		}
		if e != api.EOK {
			return nil, e
		}
		return nil, nil
	}
}

// NewQueue builds the shared-queue broker: a ROUTER frontend facing
// clients and a DEALER backend facing workers, relaying in both
// directions.
func NewQueue(tr api.Transport, opts Options) (*Device, error) {
	return newRelay(tr, api.Router, api.Dealer, opts)
}

// NewForwarder builds the pub/sub forwarder: an XSUB frontend facing
// publishers and an XPUB backend facing subscribers.
func NewForwarder(tr api.Transport, opts Options) (*Device, error) {
	return newRelay(tr, api.XSub, api.XPub, opts)
}

// NewStreamer builds the pipeline streamer: a PULL frontend collecting
// work and a PUSH backend distributing it.
func NewStreamer(tr api.Transport, opts Options) (*Device, error) {
	return newRelay(tr, api.Pull, api.Push, opts)
}

func newRelay(tr api.Transport, front, back api.SocketType, opts Options) (*Device, error) {
	fe, err := socket.Open(tr, front)
	if err != nil {
		return nil, err
	}
	be, err := socket.Open(tr, back)
	if err != nil {
		fe.Close()
		return nil, err
	}
	d := New(fe, be, RelayTo(be), RelayTo(fe), opts)
	return d, nil
}
