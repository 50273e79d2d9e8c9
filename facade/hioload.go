// File: facade/hioload.go
// Unified facade layer for hioload-mq library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the HioloadMQ struct, which aggregates the core
// components of hioload-mq behind a single facade: the native transport,
// the shared device worker pool, the device registry, traffic metrics
// and logging. The facade exposes methods to open sockets, build and
// register devices, and shut the whole system down in order.

package facade

import (
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/momentics/hioload-mq/api"
	"github.com/momentics/hioload-mq/control"
	"github.com/momentics/hioload-mq/device"
	"github.com/momentics/hioload-mq/internal/inproc"
	"github.com/momentics/hioload-mq/socket"
)

// Config holds parameters immutable per run.
type Config struct {
	PollInterval  time.Duration // Bound of one device poll, and of stop latency
	WorkerPool    int           // Size of the shared device worker pool
	EnableMetrics bool          // Whether to register Prometheus collectors
	Logger        *zap.Logger   // Destination for device lifecycle logging
	Registerer    prometheus.Registerer
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:  device.DefaultPollInterval,
		WorkerPool:    8,
		EnableMetrics: true,
		Logger:        zap.NewNop(),
		Registerer:    prometheus.DefaultRegisterer,
	}
}

// HioloadMQ is the main facade type.
// It implements api.GracefulShutdown to allow unified shutdown logic.
type HioloadMQ struct {
	transport api.Transport
	pool      *ants.Pool
	registry  *device.Registry
	metrics   *control.Metrics
	config    *control.ConfigStore
	log       *zap.Logger
	cfg       *Config
}

// Ensure compliance with the unified shutdown contract.
var _ api.GracefulShutdown = (*HioloadMQ)(nil)

// New builds the facade over an externally provided transport.
func New(tr api.Transport, cfg *Config) (*HioloadMQ, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	pool, err := ants.NewPool(cfg.WorkerPool)
	if err != nil {
		return nil, err
	}
	var metrics *control.Metrics
	if cfg.EnableMetrics {
		metrics = control.NewMetrics(cfg.Registerer)
	}
	return &HioloadMQ{
		transport: tr,
		pool:      pool,
		registry:  device.NewRegistry(),
		metrics:   metrics,
		config:    control.NewConfigStore(),
		log:       cfg.Logger,
		cfg:       cfg,
	}, nil
}

// NewInproc builds the facade over a fresh in-process transport.
func NewInproc(cfg *Config) (*HioloadMQ, error) {
	return New(inproc.NewContext(), cfg)
}

// Transport exposes the underlying native transport.
func (h *HioloadMQ) Transport() api.Transport { return h.transport }

// Config exposes the dynamic configuration store.
func (h *HioloadMQ) Config() *control.ConfigStore { return h.config }

// Metrics exposes the collectors, nil when disabled.
func (h *HioloadMQ) Metrics() *control.Metrics { return h.metrics }

// Registry exposes the device registry.
func (h *HioloadMQ) Registry() *device.Registry { return h.registry }

// NewSocket opens a native socket of the given pattern, wired to the
// facade's traffic metrics.
func (h *HioloadMQ) NewSocket(t api.SocketType) (*socket.Socket, error) {
	s, err := socket.Open(h.transport, t)
	if err != nil {
		return nil, err
	}
	if h.metrics != nil {
		s.SetRecorder(h.metrics)
	}
	return s, nil
}

// deviceOptions assembles the shared option set for new devices.
func (h *HioloadMQ) deviceOptions() device.Options {
	return device.Options{
		PollInterval: h.cfg.PollInterval,
		Logger:       h.log,
		Metrics:      h.metrics,
		Pool:         h.pool,
		Config:       h.config,
	}
}

// NewQueueDevice builds and registers a ROUTER/DEALER queue device.
func (h *HioloadMQ) NewQueueDevice() (*device.Device, error) {
	return h.register(device.NewQueue(h.transport, h.deviceOptions()))
}

// NewForwarderDevice builds and registers an XSUB/XPUB forwarder device.
func (h *HioloadMQ) NewForwarderDevice() (*device.Device, error) {
	return h.register(device.NewForwarder(h.transport, h.deviceOptions()))
}

// NewStreamerDevice builds and registers a PULL/PUSH streamer device.
func (h *HioloadMQ) NewStreamerDevice() (*device.Device, error) {
	return h.register(device.NewStreamer(h.transport, h.deviceOptions()))
}

// NewDevice builds and registers a device over two already-open sockets.
func (h *HioloadMQ) NewDevice(frontend, backend *socket.Socket, fh, bh device.HandlerFunc) *device.Device {
	d := device.New(frontend, backend, fh, bh, h.deviceOptions())
	h.registry.Add(d)
	return d
}

func (h *HioloadMQ) register(d *device.Device, err error) (*device.Device, error) {
	if err != nil {
		return nil, err
	}
	h.registry.Add(d)
	return d, nil
}

// Shutdown stops every registered device, terminates the transport and
// releases the worker pool.
func (h *HioloadMQ) Shutdown() error {
	h.log.Info("hioload-mq shutting down",
		zap.Int("devices", h.registry.Len()))
	err := h.registry.CloseAll()
	if terr := h.transport.Term(); err == nil {
		err = terr
	}
	h.pool.Release()
	return err
}
