// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// message_test.go — Ordering, removal and envelope semantics of Message.
package protocol

import (
	"bytes"
	"testing"
)

func frameBytes(t *testing.T, f *Frame) []byte {
	t.Helper()
	d, err := f.Data()
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestMessage_AppendPreservesOrder(t *testing.T) {
	m := NewMessage()
	want := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	for _, p := range want {
		if err := m.Append(NewFrameData(p)); err != nil {
			t.Fatal(err)
		}
	}
	if m.Len() != len(want) {
		t.Fatalf("len=%d want %d", m.Len(), len(want))
	}
	for i, p := range want {
		f, err := m.At(i)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(frameBytes(t, f), p) {
			t.Errorf("frame %d out of order", i)
		}
	}
	m.Dispose()
}

func TestMessage_PrependInsert(t *testing.T) {
	m := NewMessageFrom(NewFrameData([]byte("mid")))
	if err := m.Prepend(NewFrameData([]byte("head"))); err != nil {
		t.Fatal(err)
	}
	if err := m.Insert(2, NewFrameData([]byte("tail"))); err != nil {
		t.Fatal(err)
	}
	got := make([]string, 0, m.Len())
	for i := 0; i < m.Len(); i++ {
		f, _ := m.At(i)
		got = append(got, string(frameBytes(t, f)))
	}
	if got[0] != "head" || got[1] != "mid" || got[2] != "tail" {
		t.Errorf("unexpected order: %v", got)
	}
	if err := m.Insert(17, NewFrame()); err == nil {
		t.Error("out-of-range insert must fail")
	}
	m.Dispose()
}

func TestMessage_RemoveReleaseSemantics(t *testing.T) {
	m := NewMessageFrom(NewFrameData([]byte("x")), NewFrameData([]byte("y")))

	// release=false transfers ownership back to the caller.
	f, err := m.RemoveAt(1, false)
	if err != nil {
		t.Fatal(err)
	}
	if f == nil || f.Released() {
		t.Fatal("expected live frame back")
	}
	if !bytes.Equal(frameBytes(t, f), []byte("y")) {
		t.Error("wrong frame returned")
	}
	f.Dispose()

	// release=true disposes internally and returns nothing usable.
	kept, _ := m.At(0)
	got, err := m.RemoveAt(0, true)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("release=true must not return a frame")
	}
	if !kept.Released() {
		t.Error("removed frame was not released")
	}
	m.Dispose()
}

func TestMessage_ReplaceAt(t *testing.T) {
	m := NewMessageFrom(NewFrameData([]byte("old")))
	old, _ := m.At(0)
	if _, err := m.ReplaceAt(0, NewFrameData([]byte("new")), true); err != nil {
		t.Fatal(err)
	}
	if !old.Released() {
		t.Error("displaced frame was not released")
	}
	f, _ := m.At(0)
	if !bytes.Equal(frameBytes(t, f), []byte("new")) {
		t.Error("replacement not in place")
	}
	m.Dispose()
}

func TestMessage_WrapUnwrapRoundTrip(t *testing.T) {
	m := NewMessageFrom(NewFrameData([]byte("p1")), NewFrameData([]byte("p2")))
	if err := m.Wrap(NewFrameData([]byte("identity"))); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 4 {
		t.Fatalf("wrap: len=%d want 4", m.Len())
	}
	f0, _ := m.At(0)
	if !bytes.Equal(frameBytes(t, f0), []byte("identity")) {
		t.Error("routing frame not first")
	}
	f1, _ := m.At(1)
	if n, _ := f1.Len(); n != 0 {
		t.Error("delimiter frame not empty")
	}

	routing, err := m.Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(frameBytes(t, routing), []byte("identity")) {
		t.Error("unwrap returned wrong routing frame")
	}
	routing.Dispose()
	if m.Len() != 2 {
		t.Fatalf("unwrap: len=%d want 2 payload frames", m.Len())
	}
	f, _ := m.At(0)
	if !bytes.Equal(frameBytes(t, f), []byte("p1")) {
		t.Error("payload disturbed by wrap/unwrap")
	}
	m.Dispose()
}

func TestMessage_UnwrapWithoutDelimiter(t *testing.T) {
	// A bare routing frame followed by a non-empty part: only the
	// routing frame comes off.
	m := NewMessageFrom(NewFrameData([]byte("peer")), NewFrameData([]byte("body")))
	routing, err := m.Unwrap()
	if err != nil {
		t.Fatal(err)
	}
	routing.Dispose()
	if m.Len() != 1 {
		t.Fatalf("len=%d want 1", m.Len())
	}
	m.Dispose()
}

func TestMessage_DisposeReleasesAll(t *testing.T) {
	f1 := NewFrameData([]byte("a"))
	f2 := NewFrameData([]byte("b"))
	m := NewMessageFrom(f1, f2)
	m.Dispose()
	if !f1.Released() || !f2.Released() {
		t.Error("dispose must release owned frames")
	}
	if err := m.Append(NewFrame()); err == nil {
		t.Error("append on disposed message must fail")
	}
	m.Dispose() // idempotent
}

func TestMessage_DismissKeepsBuffers(t *testing.T) {
	f := NewFrameData([]byte("kept"))
	m := NewMessageFrom(f)
	data, _ := f.Data()
	m.Dismiss()
	if !bytes.Equal(data, []byte("kept")) {
		t.Error("dismiss must not free frame buffers")
	}
}
