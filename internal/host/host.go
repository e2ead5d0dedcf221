package host

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/warpdl/warpjs/internal/clock"
	"github.com/warpdl/warpjs/internal/fsbridge"
	"github.com/warpdl/warpjs/internal/httpbind"
	"github.com/warpdl/warpjs/internal/timers"
	"github.com/warpdl/warpjs/pkg/logger"
)

// task is host-internal work run on the script thread before timers and
// requests, e.g. the callback passed to server.listen.
type task struct {
	source string
	fn     func() error
}

// Host is an embedded script runtime with its scheduler.
type Host struct {
	cfg   *Config
	log   logger.Logger
	clock clock.Clock

	vm       *goja.Runtime
	timers   *timers.Queue
	requests *httpbind.Queue
	files    *fsbridge.Bridge
	stdout   io.Writer
	stderr   io.Writer

	// tasks is only touched from the script thread.
	tasks []task

	bindingsMu sync.Mutex
	bindings   []*httpbind.Binding

	state    atomic.Int32
	running  atomic.Bool
	turns    atomic.Uint64
	uncaught atomic.Uint64

	stopCh       chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once

	fatalMu sync.Mutex
	fatal   error
}

// New creates a Host and installs the script-visible globals.
// A nil config or deps uses defaults.
func New(config *Config, deps *Dependencies) (*Host, error) {
	cfg := applyConfigDefaults(config)
	d := applyDependencyDefaults(deps)

	var files *fsbridge.Bridge
	if d.Fs != nil {
		files = fsbridge.New(d.Fs)
	} else {
		files = fsbridge.NewWithOptions(fsbridge.Options{Root: cfg.Root, ReadOnly: cfg.ReadOnly})
	}

	h := &Host{
		cfg:      cfg,
		log:      d.Logger,
		clock:    d.Clock,
		timers:   timers.NewQueue(d.Clock),
		requests: httpbind.NewQueue(cfg.QueueSize),
		files:    files,
		stdout:   d.Stdout,
		stderr:   d.Stderr,
		stopCh:   make(chan struct{}),
	}
	if err := h.setupRuntime(); err != nil {
		return nil, err
	}
	return h, nil
}

// Config returns the effective configuration.
func (h *Host) Config() *Config {
	return h.cfg
}

// State returns the current scheduler state.
func (h *Host) State() State {
	return State(h.state.Load())
}

func (h *Host) setState(s State) {
	h.state.Store(int32(s))
}

// Stop asks the scheduler to shut down after the current turn.
// It is safe to call from any goroutine, any number of times.
func (h *Host) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
}

// Close shuts the host down without running the scheduler.
func (h *Host) Close() error {
	h.Stop()
	h.shutdown()
	return nil
}

func (h *Host) setFatal(err error) {
	h.fatalMu.Lock()
	defer h.fatalMu.Unlock()
	if h.fatal == nil {
		h.fatal = err
	}
}

// Err returns the fatal error that moved the host to Shutdown, if any.
func (h *Host) Err() error {
	h.fatalMu.Lock()
	defer h.fatalMu.Unlock()
	return h.fatal
}

func (h *Host) newBinding() *httpbind.Binding {
	b := httpbind.New(h.log, h.requests, h.clock, httpbind.Options{
		MaxHeaderBytes:  h.cfg.MaxHeaderBytes,
		MaxBodyBytes:    h.cfg.MaxBodyBytes,
		ResponseTimeout: h.cfg.ResponseTimeout,
	})
	h.bindingsMu.Lock()
	h.bindings = append(h.bindings, b)
	h.bindingsMu.Unlock()
	return b
}

func (h *Host) snapshotBindings() []*httpbind.Binding {
	h.bindingsMu.Lock()
	defer h.bindingsMu.Unlock()
	return append([]*httpbind.Binding(nil), h.bindings...)
}

// Status is a point-in-time view of the host for operators.
type Status struct {
	State          string   `json:"state"`
	PendingTimers  int      `json:"pendingTimers"`
	QueuedRequests int      `json:"queuedRequests"`
	QueueCapacity  int      `json:"queueCapacity"`
	Listeners      []string `json:"listeners"`
	Turns          uint64   `json:"turns"`
	UncaughtErrors uint64   `json:"uncaughtErrors"`
}

// Status is safe to call from any goroutine.
func (h *Host) Status() Status {
	st := Status{
		State:          h.State().String(),
		PendingTimers:  h.timers.Len(),
		QueuedRequests: h.requests.Len(),
		QueueCapacity:  h.requests.Cap(),
		Listeners:      []string{},
		Turns:          h.turns.Load(),
		UncaughtErrors: h.uncaught.Load(),
	}
	for _, b := range h.snapshotBindings() {
		if addr := b.Addr(); addr != nil {
			st.Listeners = append(st.Listeners, addr.String())
		}
	}
	return st
}

// TimerInfo describes a pending timer.
type TimerInfo struct {
	ID        int64     `json:"id"`
	FireAt    time.Time `json:"fireAt"`
	Interval  int64     `json:"intervalMs,omitempty"`
	Repeating bool      `json:"repeating"`
}

// Timers lists the pending timers in firing order.
// It is safe to call from any goroutine.
func (h *Host) Timers() []TimerInfo {
	snap := h.timers.Snapshot()
	out := make([]TimerInfo, 0, len(snap))
	for _, e := range snap {
		out = append(out, TimerInfo{
			ID:        e.ID,
			FireAt:    e.FireAt,
			Interval:  e.Interval.Milliseconds(),
			Repeating: e.Repeating(),
		})
	}
	return out
}

func (h *Host) shutdown() {
	h.shutdownOnce.Do(func() {
		h.setState(StateShutdown)
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.ShutdownTimeout)
		defer cancel()
		for _, b := range h.snapshotBindings() {
			if err := b.Shutdown(ctx); err != nil {
				h.log.Warning("http: forced close after drain timeout: %v", err)
			}
		}
		h.log.Info("host: shut down")
	})
}
