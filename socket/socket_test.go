// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// socket_test.go — Retry classification of the single-call engine,
// exercised against the scripted fake primitive.
package socket

import (
	"bytes"
	"testing"

	"github.com/momentics/hioload-mq/api"
	"github.com/momentics/hioload-mq/fake"
	"github.com/momentics/hioload-mq/protocol"
)

func TestSendFrame_RetriesEINTR(t *testing.T) {
	raw := &fake.RawSocket{SendScript: []api.Errno{api.EINTR, api.EINTR, api.EOK}}
	s := New(raw, api.Push)
	f := protocol.NewFrameData([]byte("part"))
	e, err := s.SendFrame(f, api.FlagNone)
	if err != nil || e != api.EOK {
		t.Fatalf("e=%v err=%v", e, err)
	}
	if len(raw.Sent) != 1 {
		t.Fatalf("expected exactly one delivered part, got %d", len(raw.Sent))
	}
	if !f.Dismissed() {
		t.Error("ownership must transfer on send success")
	}
}

func TestSendFrame_BusyRetriesEAGAIN(t *testing.T) {
	raw := &fake.RawSocket{SendScript: []api.Errno{api.EAGAIN, api.EAGAIN, api.EOK}}
	s := New(raw, api.Push)
	e, err := s.SendFrame(protocol.NewFrameData([]byte("x")), api.FlagNone)
	if err != nil || e != api.EOK {
		t.Fatalf("e=%v err=%v", e, err)
	}
	if len(raw.Sent) != 1 {
		t.Fatalf("got %d sends", len(raw.Sent))
	}
}

func TestSendFrame_DontWaitSurfacesEAGAIN(t *testing.T) {
	raw := &fake.RawSocket{SendScript: []api.Errno{api.EAGAIN}}
	s := New(raw, api.Push)
	f := protocol.NewFrameData([]byte("x"))
	e, err := s.SendFrame(f, api.FlagDontWait)
	if err != nil {
		t.Fatal(err)
	}
	if e != api.EAGAIN {
		t.Fatalf("e=%v want EAGAIN", e)
	}
	if f.Dismissed() {
		t.Error("ownership must stay with caller on would-block")
	}
	f.Dispose()
}

func TestSendFrame_TermIsNonFatal(t *testing.T) {
	raw := &fake.RawSocket{SendScript: []api.Errno{api.ETERM}}
	s := New(raw, api.Push)
	e, err := s.SendFrame(protocol.NewFrameData(nil), api.FlagNone)
	if err != nil {
		t.Fatalf("ETERM must not escalate: %v", err)
	}
	if e != api.ETERM {
		t.Fatalf("e=%v want ETERM", e)
	}
}

func TestSendFrame_UnclassifiedIsFatal(t *testing.T) {
	raw := &fake.RawSocket{SendScript: []api.Errno{api.EFAULT}}
	s := New(raw, api.Push)
	_, err := s.SendFrame(protocol.NewFrameData(nil), api.FlagNone)
	if !api.IsFatal(err) {
		t.Fatalf("expected fatal fault, got %v", err)
	}
}

func TestRecvFrame_EAGAINIsReportedNotRetried(t *testing.T) {
	raw := &fake.RawSocket{} // empty inbox
	s := New(raw, api.Pull)
	f, e, err := s.RecvFrame(api.FlagNone)
	if err != nil || f != nil {
		t.Fatalf("f=%v err=%v", f, err)
	}
	if e != api.EAGAIN {
		t.Fatalf("e=%v want EAGAIN", e)
	}
}

func TestRecvFrame_RetriesEINTR(t *testing.T) {
	raw := &fake.RawSocket{RecvScript: []api.Errno{api.EINTR, api.EOK}}
	raw.Queue([]byte("data"), false)
	s := New(raw, api.Pull)
	f, e, err := s.RecvFrame(api.FlagNone)
	if err != nil || e != api.EOK {
		t.Fatalf("e=%v err=%v", e, err)
	}
	d, _ := f.Data()
	if !bytes.Equal(d, []byte("data")) {
		t.Error("payload mismatch")
	}
	f.Dispose()
}

func TestCapabilityGuards(t *testing.T) {
	s := New(&fake.RawSocket{}, api.Sub)
	if e, _ := s.SendFrame(protocol.NewFrameData(nil), api.FlagNone); e != api.ENOTSUP {
		t.Errorf("SUB send: e=%v want ENOTSUP", e)
	}
	s = New(&fake.RawSocket{}, api.Push)
	if _, e, _ := s.RecvFrame(api.FlagNone); e != api.ENOTSUP {
		t.Errorf("PUSH recv: e=%v want ENOTSUP", e)
	}
}

func TestClosedSocketReportsENOTSOCK(t *testing.T) {
	s := New(&fake.RawSocket{}, api.Pair)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal("close must be idempotent")
	}
	if e, _ := s.Bind("inproc://x"); e != api.ENOTSOCK {
		t.Errorf("bind after close: e=%v", e)
	}
	if e, _ := s.SendFrame(protocol.NewFrameData(nil), api.FlagNone); e != api.ENOTSOCK {
		t.Errorf("send after close: e=%v", e)
	}
	if _, e, _ := s.RecvFrame(api.FlagNone); e != api.ENOTSOCK {
		t.Errorf("recv after close: e=%v", e)
	}
}

func TestBind_EndpointErrorsAreNonFatal(t *testing.T) {
	for _, code := range []api.Errno{
		api.EADDRINUSE, api.EADDRNOTAVAIL, api.ENODEV,
		api.ENOTSOCK, api.ENOENT, api.EMFILE, api.EMTHREAD,
	} {
		raw := &fake.RawSocket{BindScript: []api.Errno{code}}
		s := New(raw, api.Rep)
		e, err := s.Bind("tcp://0.0.0.0:1")
		if err != nil {
			t.Fatalf("%v must not escalate: %v", code, err)
		}
		if e != code {
			t.Errorf("e=%v want %v", e, code)
		}
	}
}

func TestBind_RetriesEINTRThenSucceeds(t *testing.T) {
	raw := &fake.RawSocket{BindScript: []api.Errno{api.EINTR, api.EOK}}
	s := New(raw, api.Rep)
	e, err := s.Bind("inproc://svc")
	if err != nil || e != api.EOK {
		t.Fatalf("e=%v err=%v", e, err)
	}
}

func TestGetOption_More(t *testing.T) {
	raw := &fake.RawSocket{More: true}
	s := New(raw, api.Pull)
	more, e, err := s.MoreToReceive()
	if err != nil || e != api.EOK {
		t.Fatalf("e=%v err=%v", e, err)
	}
	if !more {
		t.Error("expected more=true")
	}
}

type countingRecorder struct{ sent, recv int }

func (c *countingRecorder) FrameSent()     { c.sent++ }
func (c *countingRecorder) FrameReceived() { c.recv++ }

func TestRecorderCountsTraffic(t *testing.T) {
	raw := &fake.RawSocket{}
	raw.Queue([]byte("in"), false)
	s := New(raw, api.Pair)
	rec := &countingRecorder{}
	s.SetRecorder(rec)
	if e, _ := s.SendFrame(protocol.NewFrameData([]byte("out")), api.FlagNone); e != api.EOK {
		t.Fatal(e)
	}
	if f, e, _ := s.RecvFrame(api.FlagNone); e != api.EOK {
		t.Fatal(e)
	} else {
		f.Dispose()
	}
	if rec.sent != 1 || rec.recv != 1 {
		t.Errorf("sent=%d recv=%d", rec.sent, rec.recv)
	}
}
