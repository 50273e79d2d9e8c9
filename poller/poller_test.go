// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// poller_test.go — Readiness, timeout and backend-equivalence behavior.
package poller

import (
	"testing"
	"time"

	"github.com/momentics/hioload-mq/api"
	"github.com/momentics/hioload-mq/fake"
	"github.com/momentics/hioload-mq/socket"
)

func TestPoll_ReportsReadySocket(t *testing.T) {
	rawA := &fake.RawSocket{}
	rawB := &fake.RawSocket{}
	rawB.SetReadiness(api.PollIn)
	itemA := &Item{Socket: socket.New(rawA, api.Pull), Events: api.PollIn}
	itemB := &Item{Socket: socket.New(rawB, api.Pull), Events: api.PollIn}
	p := New(itemA, itemB)

	n, e, err := p.Poll(100 * time.Millisecond)
	if err != nil || e != api.EOK {
		t.Fatalf("e=%v err=%v", e, err)
	}
	if n != 1 {
		t.Fatalf("n=%d want 1", n)
	}
	if itemA.Ready != api.PollNone {
		t.Error("idle socket reported ready")
	}
	if !itemB.Ready.Has(api.PollIn) {
		t.Error("ready socket not reported")
	}
}

func TestPoll_TimeoutReportsEmptyPoll(t *testing.T) {
	item := &Item{Socket: socket.New(&fake.RawSocket{}, api.Pull), Events: api.PollIn}
	p := New(item)
	start := time.Now()
	n, e, err := p.Poll(30 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || e != api.EAGAIN {
		t.Fatalf("n=%d e=%v want empty poll", n, e)
	}
	if time.Since(start) < 25*time.Millisecond {
		t.Error("poll returned before the timeout elapsed")
	}
}

// muxWouldBlock is a multiplexing primitive that always reports a
// would-block status from the wait itself.
type muxWouldBlock struct {
	*fake.RawSocket
}

func (m *muxWouldBlock) PollRaw([]api.RawPollItem, int) (int, api.Errno) {
	return 0, api.EAGAIN
}

func TestPoll_BackendWouldBlockIsEmptyPoll(t *testing.T) {
	raw := &muxWouldBlock{RawSocket: &fake.RawSocket{}}
	item := &Item{Socket: socket.New(raw, api.Pair), Events: api.PollIn}
	n, e, err := New(item).Poll(5 * time.Millisecond)
	if err != nil {
		t.Fatalf("would-block escalated to a fault: %v", err)
	}
	if n != 0 || e != api.EAGAIN {
		t.Fatalf("n=%d e=%v want empty poll", n, e)
	}
}

func TestPoll_WakesOnLateReadiness(t *testing.T) {
	raw := &fake.RawSocket{}
	item := &Item{Socket: socket.New(raw, api.Pull), Events: api.PollIn}
	p := New(item)
	go func() {
		time.Sleep(20 * time.Millisecond)
		raw.SetReadiness(api.PollIn)
	}()
	n, e, err := p.Poll(Infinite)
	if err != nil || e != api.EOK || n != 1 {
		t.Fatalf("n=%d e=%v err=%v", n, e, err)
	}
}

func TestPoll_TermSurfaces(t *testing.T) {
	raw := &fake.RawSocket{OptScript: []api.Errno{api.ETERM}}
	p := New(&Item{Socket: socket.New(raw, api.Pull), Events: api.PollIn})
	_, e, err := p.Poll(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("termination must not escalate: %v", err)
	}
	if e != api.ETERM {
		t.Fatalf("e=%v want ETERM", e)
	}
}

func TestDispatch_InvokesHandlersForReadyItems(t *testing.T) {
	rawIn := &fake.RawSocket{}
	rawIn.SetReadiness(api.PollIn)
	rawOut := &fake.RawSocket{}
	rawOut.SetReadiness(api.PollOut)

	var readable, writable int
	p := New(
		&Item{Socket: socket.New(rawIn, api.Pull), Events: api.PollIn,
			OnReadable: func(*socket.Socket) { readable++ }},
		&Item{Socket: socket.New(rawOut, api.Push), Events: api.PollOut,
			OnWritable: func(*socket.Socket) { writable++ }},
	)
	n, e, err := p.PollAndDispatch(100 * time.Millisecond)
	if err != nil || e != api.EOK || n != 2 {
		t.Fatalf("n=%d e=%v err=%v", n, e, err)
	}
	if readable != 1 || writable != 1 {
		t.Errorf("readable=%d writable=%d", readable, writable)
	}
}

// muxRaw upgrades the scripted fake with a trivial multiplexing
// primitive so the backend selection can be compared against the probe
// loop on identical socket states.
type muxRaw struct {
	*fake.RawSocket
}

func (m *muxRaw) PollRaw(items []api.RawPollItem, timeoutMs int) (int, api.Errno) {
	n := 0
	for i := range items {
		ev, e := items[i].Socket.GetOption(api.OptionEvents)
		if e != api.EOK {
			return 0, e
		}
		items[i].Ready = ev.(api.PollEvents) & (items[i].Events | api.PollErr)
		if items[i].Ready != api.PollNone {
			n++
		}
	}
	return n, api.EOK
}

func TestBackendEquivalence(t *testing.T) {
	states := []api.PollEvents{api.PollNone, api.PollIn, api.PollIn | api.PollOut}
	for _, state := range states {
		probeRaw := &fake.RawSocket{}
		probeRaw.SetReadiness(state)
		probeItem := &Item{Socket: socket.New(probeRaw, api.Pair), Events: api.PollIn}

		muxBacked := &muxRaw{RawSocket: &fake.RawSocket{}}
		muxBacked.SetReadiness(state)
		muxItem := &Item{Socket: socket.New(muxBacked, api.Pair), Events: api.PollIn}

		pn, pe, perr := New(probeItem).Poll(10 * time.Millisecond)
		mn, me, merr := New(muxItem).Poll(10 * time.Millisecond)
		if perr != nil || merr != nil {
			t.Fatalf("state %v: perr=%v merr=%v", state, perr, merr)
		}
		if pn != mn || pe != me || probeItem.Ready != muxItem.Ready {
			t.Errorf("state %v: probe (n=%d e=%v ready=%v) != mux (n=%d e=%v ready=%v)",
				state, pn, pe, probeItem.Ready, mn, me, muxItem.Ready)
		}
	}
}
