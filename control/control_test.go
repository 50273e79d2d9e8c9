// Copyright 2025 momentics@gmail.com
// Licensed under the Apache License, Version 2.0.

// control_test.go — Config store snapshots, reload hooks and metric
// collectors.
package control

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/momentics/hioload-mq/api"
)

// snapshotRecorder collects the payloads delivered on reload.
type snapshotRecorder struct {
	snaps []map[string]any
}

func (r *snapshotRecorder) Handle(data any) error {
	snap, ok := data.(map[string]any)
	if !ok {
		return api.ErrInvalidArgument
	}
	r.snaps = append(r.snaps, snap)
	return nil
}

func TestConfigStore_SnapshotIsolation(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig(map[string]any{"poll_interval_ms": 500})
	snap := cs.GetSnapshot()
	snap["poll_interval_ms"] = 1
	if cs.GetSnapshot()["poll_interval_ms"] != 500 {
		t.Error("snapshot mutation leaked into store")
	}
}

func TestConfigStore_ReloadListener(t *testing.T) {
	cs := NewConfigStore()
	rec := &snapshotRecorder{}
	cs.OnReload(rec)
	cs.SetConfig(map[string]any{"idle_sleep_ms": 1})
	if len(rec.snaps) != 1 {
		t.Fatalf("deliveries = %d", len(rec.snaps))
	}
	if rec.snaps[0]["idle_sleep_ms"] != 1 {
		t.Errorf("snapshot = %v", rec.snaps[0])
	}
	cs.SetConfig(map[string]any{"idle_sleep_ms": 2})
	if len(rec.snaps) != 2 || rec.snaps[1]["idle_sleep_ms"] != 2 {
		t.Errorf("merged snapshot not redelivered: %v", rec.snaps)
	}
}

func TestDurationFrom(t *testing.T) {
	snap := map[string]any{
		KeyDevicePollInterval: 250 * time.Millisecond,
		KeyDeviceIdleMax:      "15ms",
		"millis":              int(40),
		"garbage":             struct{}{},
	}
	def := time.Second
	if got := DurationFrom(snap, KeyDevicePollInterval, def); got != 250*time.Millisecond {
		t.Errorf("duration value = %v", got)
	}
	if got := DurationFrom(snap, KeyDeviceIdleMax, def); got != 15*time.Millisecond {
		t.Errorf("string value = %v", got)
	}
	if got := DurationFrom(snap, "millis", def); got != 40*time.Millisecond {
		t.Errorf("int value = %v", got)
	}
	if got := DurationFrom(snap, "garbage", def); got != def {
		t.Errorf("unusable value = %v, want default", got)
	}
	if got := DurationFrom(snap, "absent", def); got != def {
		t.Errorf("missing key = %v, want default", got)
	}
}

func TestMetrics_RegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.FrameSent()
	m.FrameSent()
	m.FrameReceived()
	m.MessagesForwarded.Inc()
	m.DevicesRunning.Inc()

	if got := testutil.ToFloat64(m.FramesSent); got != 2 {
		t.Errorf("frames sent = %v", got)
	}
	if got := testutil.ToFloat64(m.FramesReceived); got != 1 {
		t.Errorf("frames received = %v", got)
	}
	if got := testutil.ToFloat64(m.DevicesRunning); got != 1 {
		t.Errorf("devices running = %v", got)
	}
}

func TestMetrics_NilRegistererCollects(t *testing.T) {
	m := NewMetrics(nil)
	m.PollWakeups.Inc()
	if got := testutil.ToFloat64(m.PollWakeups); got != 1 {
		t.Errorf("poll wakeups = %v", got)
	}
}
