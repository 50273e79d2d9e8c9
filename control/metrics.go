// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus-backed traffic metrics. The struct satisfies the socket
// layer's Recorder contract so frame counters move without the socket
// package depending on a metrics library.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates the library's collectors.
type Metrics struct {
	FramesSent        prometheus.Counter
	FramesReceived    prometheus.Counter
	MessagesForwarded prometheus.Counter
	PollWakeups       prometheus.Counter
	EmptyPolls        prometheus.Counter
	DevicesRunning    prometheus.Gauge
}

// NewMetrics builds and registers all collectors on reg. Pass nil to
// collect without registration (tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hioload_mq", Name: "frames_sent_total",
			Help: "Message parts handed to the native transport.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hioload_mq", Name: "frames_received_total",
			Help: "Message parts taken from the native transport.",
		}),
		MessagesForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hioload_mq", Name: "messages_forwarded_total",
			Help: "Complete logical messages relayed by device loops.",
		}),
		PollWakeups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hioload_mq", Name: "poll_wakeups_total",
			Help: "Poll calls that reported at least one ready socket.",
		}),
		EmptyPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hioload_mq", Name: "poll_empty_total",
			Help: "Poll calls that elapsed with no readiness.",
		}),
		DevicesRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hioload_mq", Name: "devices_running",
			Help: "Device loops currently running.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.FramesSent, m.FramesReceived, m.MessagesForwarded,
			m.PollWakeups, m.EmptyPolls, m.DevicesRunning)
	}
	return m
}

// FrameSent satisfies the socket traffic Recorder contract.
func (m *Metrics) FrameSent() { m.FramesSent.Inc() }

// FrameReceived satisfies the socket traffic Recorder contract.
func (m *Metrics) FrameReceived() { m.FramesReceived.Inc() }
