// File: device/device.go
// Author: momentics <momentics@gmail.com>
//
// Device state machine and poll loop.

package device

import (
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/momentics/hioload-mq/api"
	"github.com/momentics/hioload-mq/control"
	"github.com/momentics/hioload-mq/poller"
	"github.com/momentics/hioload-mq/protocol"
	"github.com/momentics/hioload-mq/socket"
)

// State tracks the device lifecycle.
type State int32

const (
	StateCreated State = iota
	StateInitialized
	StateRunning
	StateStopping
	StateStopped
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DefaultPollInterval bounds one blocking poll, and with it the
// worst-case latency of observing a stop request.
const DefaultPollInterval = 500 * time.Millisecond

// Setup describes one socket's one-time configuration: endpoints to
// bind, endpoints to connect, subscription prefixes to install. Applied
// before the loop starts and reversed on shutdown.
type Setup struct {
	Bind      []string
	Connect   []string
	Subscribe []string
}

// HandlerFunc reacts to a readable socket, typically receiving one
// message and pushing it toward the opposite side. A returned message is
// disposed by the engine; a returned error classifies via api: ETERM
// unwinds the loop cleanly, a FatalError stops the device with that
// error unless cancellation was already requested.
type HandlerFunc func(*socket.Socket) (*protocol.Message, error)

// DefaultIdleMax caps the backoff sleep between empty polls.
const DefaultIdleMax = 10 * time.Millisecond

// Options tunes a device. Zero values select defaults.
type Options struct {
	PollInterval time.Duration
	Logger       *zap.Logger
	Metrics      *control.Metrics
	Pool         *ants.Pool
	// Config, when set, makes the device a reload listener of the
	// store: tuning keys take effect at the next loop iteration.
	Config *control.ConfigStore
}

// Device bridges a frontend socket to a backend socket on a dedicated
// background worker.
type Device struct {
	id string

	frontend *socket.Socket
	backend  *socket.Socket

	FrontendSetup Setup
	BackendSetup  Setup

	frontendHandler HandlerFunc
	backendHandler  HandlerFunc

	pollInterval atomic.Int64 // nanoseconds, retunable via reload
	idleMax      atomic.Int64 // nanoseconds, retunable via reload
	log          *zap.Logger
	metrics      *control.Metrics
	pool         *ants.Pool

	state      atomic.Int32
	cancel     atomic.Bool
	configured bool
	done       chan struct{}
	runErr     error
}

// New builds a device over two owned sockets and two handlers.
func New(frontend, backend *socket.Socket, fh, bh HandlerFunc, opts Options) *Device {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	d := &Device{
		id:              uuid.NewString(),
		frontend:        frontend,
		backend:         backend,
		frontendHandler: fh,
		backendHandler:  bh,
		metrics:         opts.Metrics,
		pool:            opts.Pool,
	}
	d.pollInterval.Store(int64(opts.PollInterval))
	d.idleMax.Store(int64(DefaultIdleMax))
	d.log = opts.Logger.With(zap.String("device", d.id))
	if opts.Config != nil {
		opts.Config.OnReload(d)
	}
	return d
}

var _ api.Handler = (*Device)(nil)

// Handle applies a configuration snapshot delivered by the store's
// reload dispatch. Unknown keys are ignored; known keys take effect at
// the next loop iteration.
func (d *Device) Handle(data any) error {
	snap, ok := data.(map[string]any)
	if !ok {
		return api.ErrInvalidArgument
	}
	d.pollInterval.Store(int64(control.DurationFrom(snap, control.KeyDevicePollInterval, d.PollInterval())))
	d.idleMax.Store(int64(control.DurationFrom(snap, control.KeyDeviceIdleMax, time.Duration(d.idleMax.Load()))))
	return nil
}

// PollInterval returns the current bound of one blocking poll.
func (d *Device) PollInterval() time.Duration {
	return time.Duration(d.pollInterval.Load())
}

// ID returns the device's unique instance id.
func (d *Device) ID() string { return d.id }

// State returns the current lifecycle state.
func (d *Device) State() State { return State(d.state.Load()) }

// Frontend exposes the front-end socket. Callers must not touch it while
// the device is running; the loop owns it.
func (d *Device) Frontend() *socket.Socket { return d.frontend }

// Backend exposes the back-end socket under the same ownership rule.
func (d *Device) Backend() *socket.Socket { return d.backend }

// Err returns the error that stopped the loop, if any.
func (d *Device) Err() error { return d.runErr }

// Initialize applies both sockets' subscription options. Idempotent: the
// configured flag guards against repeat application.
func (d *Device) Initialize() error {
	if d.configured {
		return nil
	}
	if err := applySubscriptions(d.frontend, d.FrontendSetup); err != nil {
		return err
	}
	if err := applySubscriptions(d.backend, d.BackendSetup); err != nil {
		return err
	}
	d.configured = true
	d.state.CompareAndSwap(int32(StateCreated), int32(StateInitialized))
	return nil
}

func applySubscriptions(s *socket.Socket, setup Setup) error {
	for _, prefix := range setup.Subscribe {
		if e, err := s.SetOption(api.OptionSubscribe, prefix); err != nil {
			return err
		} else if e != api.EOK {
			return e
		}
	}
	return nil
}

// Start launches the poll loop on the configured worker pool, or on a
// plain goroutine when no pool was given.
func (d *Device) Start() error {
	st := d.State()
	if st == StateRunning || st == StateStopping {
		return api.ErrAlreadyRunning
	}
	if st == StateClosed {
		return api.ErrSocketClosed
	}
	d.cancel.Store(false)
	d.runErr = nil
	d.done = make(chan struct{})
	d.state.Store(int32(StateRunning))
	if d.metrics != nil {
		d.metrics.DevicesRunning.Inc()
	}
	if d.pool != nil {
		if err := d.pool.Submit(d.run); err != nil {
			d.state.Store(int32(StateStopped))
			if d.metrics != nil {
				d.metrics.DevicesRunning.Dec()
			}
			close(d.done)
			return err
		}
		return nil
	}
	go d.run()
	return nil
}

// Stop requests cancellation and waits for the loop to exit. The loop
// observes the flag at its top, so the wait is bounded by one poll
// interval plus in-flight handler time.
func (d *Device) Stop() error {
	if d.State() != StateRunning {
		return api.ErrNotRunning
	}
	d.state.Store(int32(StateStopping))
	d.cancel.Store(true)
	<-d.done
	return d.runErr
}

// Close stops the loop if needed and closes both sockets.
func (d *Device) Close() error {
	if d.State() == StateRunning {
		_ = d.Stop()
	}
	ferr := d.frontend.Close()
	berr := d.backend.Close()
	d.state.Store(int32(StateClosed))
	if ferr != nil {
		return ferr
	}
	return berr
}

// run is the device loop: one-time setup, then poll both sockets and
// dispatch until cancellation or termination.
func (d *Device) run() {
	defer func() {
		if d.metrics != nil {
			d.metrics.DevicesRunning.Dec()
		}
		if State(d.state.Load()) != StateClosed {
			d.state.Store(int32(StateStopped))
		}
		close(d.done)
	}()

	if err := d.Initialize(); err != nil {
		d.failed("initialize", err)
		return
	}
	if err := d.applyEndpoints(); err != nil {
		d.failed("setup", err)
		return
	}

	p := poller.New(
		&poller.Item{Socket: d.frontend, Events: api.PollIn,
			OnReadable: func(s *socket.Socket) { d.dispatch(d.frontendHandler, s) }},
		&poller.Item{Socket: d.backend, Events: api.PollIn,
			OnReadable: func(s *socket.Socket) { d.dispatch(d.backendHandler, s) }},
	)

	idle := backoff.NewExponentialBackOff()
	idle.InitialInterval = time.Millisecond
	idle.MaxInterval = time.Duration(d.idleMax.Load())
	idle.MaxElapsedTime = 0
	idle.Reset()

	d.log.Debug("device loop started",
		zap.String("frontend", d.frontend.Type().String()),
		zap.String("backend", d.backend.Type().String()))

	for !d.cancel.Load() {
		_, e, err := p.Poll(d.PollInterval())
		switch {
		case err != nil:
			// A teardown race right after a stop request is not an error.
			if d.cancel.Load() {
				d.log.Debug("poll fault after cancellation, suppressed", zap.Error(err))
				return
			}
			d.failed("poll", err)
			return
		case e == api.ETERM:
			d.log.Debug("transport terminating, unwinding device")
			d.teardownEndpoints()
			_ = d.frontend.Close()
			_ = d.backend.Close()
			d.state.Store(int32(StateClosed))
			return
		case e == api.EAGAIN:
			if d.metrics != nil {
				d.metrics.EmptyPolls.Inc()
			}
			idle.MaxInterval = time.Duration(d.idleMax.Load())
			time.Sleep(idle.NextBackOff())
			continue
		default:
			if d.metrics != nil {
				d.metrics.PollWakeups.Inc()
			}
			idle.Reset()
			p.Dispatch()
		}
	}
	d.teardownEndpoints()
	d.log.Debug("device loop stopped")
}

// dispatch runs one handler and classifies its outcome.
func (d *Device) dispatch(h HandlerFunc, s *socket.Socket) {
	if h == nil {
		return
	}
	msg, err := h(s)
	if msg != nil {
		msg.Dispose()
	}
	if err == nil {
		if d.metrics != nil {
			d.metrics.MessagesForwarded.Inc()
		}
		return
	}
	if e, ok := err.(api.Errno); ok && (e.IsTermination() || e.IsWouldBlock()) {
		if e.IsTermination() {
			d.cancel.Store(true)
		}
		return
	}
	if d.cancel.Load() {
		d.log.Debug("handler fault after cancellation, suppressed", zap.Error(err))
		return
	}
	d.runErr = err
	d.cancel.Store(true)
	d.log.Error("device handler failed", zap.Error(err))
}

// applyEndpoints performs the bind/connect setup for both sockets.
func (d *Device) applyEndpoints() error {
	for _, pair := range []struct {
		s     *socket.Socket
		setup Setup
	}{{d.frontend, d.FrontendSetup}, {d.backend, d.BackendSetup}} {
		for _, ep := range pair.setup.Bind {
			if e, err := pair.s.Bind(ep); err != nil {
				return err
			} else if e != api.EOK {
				return e
			}
		}
		for _, ep := range pair.setup.Connect {
			if e, err := pair.s.Connect(ep); err != nil {
				return err
			} else if e != api.EOK {
				return e
			}
		}
	}
	return nil
}

// teardownEndpoints reverses the setup, subscriptions included, and
// clears the configured flag so a restart reinstalls them. Failures are
// ignored: the transport may already be gone.
func (d *Device) teardownEndpoints() {
	for _, pair := range []struct {
		s     *socket.Socket
		setup Setup
	}{{d.frontend, d.FrontendSetup}, {d.backend, d.BackendSetup}} {
		for _, prefix := range pair.setup.Subscribe {
			_, _ = pair.s.SetOption(api.OptionUnsubscribe, prefix)
		}
		for _, ep := range pair.setup.Connect {
			_, _ = pair.s.Disconnect(ep)
		}
		for _, ep := range pair.setup.Bind {
			_, _ = pair.s.Unbind(ep)
		}
	}
	d.configured = false
}

func (d *Device) failed(stage string, err error) {
	d.runErr = err
	d.log.Error("device failed", zap.String("stage", stage), zap.Error(err))
}
