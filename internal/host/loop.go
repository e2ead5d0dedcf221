package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dop251/goja"
	"github.com/warpdl/warpjs/internal/httpbind"
	"github.com/warpdl/warpjs/internal/timers"
)

// Eval runs a script's top-level code as one turn. An exception is logged
// and returned as a *ScriptError; timers and servers registered before it
// stay active.
func (h *Host) Eval(name, src string) error {
	if h.State() == StateShutdown {
		return ErrShutdown
	}
	return h.turn(StateRunningTopLevel, name, func() error {
		_, err := h.vm.RunScript(name, src)
		return err
	})
}

// RunScript evaluates src and then runs the scheduler until the host is
// idle, stopped, ctx is done, or a fatal error occurs. When the top-level
// code threw and the host later ran out of work, that *ScriptError is
// returned.
func (h *Host) RunScript(ctx context.Context, name, src string) error {
	evalErr := h.Eval(name, src)
	if errors.Is(evalErr, ErrShutdown) {
		return evalErr
	}
	if h.Err() == nil && h.cfg.AutoListen {
		h.autoListen()
	}
	idle, err := h.run(ctx)
	if err == nil && idle && evalErr != nil {
		return evalErr
	}
	return err
}

// Run drives the scheduler. It returns nil on a clean stop or idle exit and
// the fatal error otherwise. The host is shut down when Run returns.
func (h *Host) Run(ctx context.Context) error {
	_, err := h.run(ctx)
	return err
}

// run is Run reporting whether the loop ended for lack of work.
func (h *Host) run(ctx context.Context) (idle bool, err error) {
	if h.State() == StateShutdown {
		return false, ErrShutdown
	}
	if !h.running.CompareAndSwap(false, true) {
		return false, ErrAlreadyRunning
	}
	defer h.shutdown()
	h.setState(StateWaitingForWork)

	for {
		if err := h.Err(); err != nil {
			h.log.Error("host: %v", err)
			return false, err
		}
		select {
		case <-ctx.Done():
			h.log.Info("host: context done, stopping")
			return false, nil
		case <-h.stopCh:
			h.log.Info("host: stop requested")
			return false, nil
		default:
		}
		if h.step() {
			continue
		}
		if !h.hasWork() {
			h.log.Info("host: no pending work, exiting")
			return true, nil
		}
		h.wait(ctx)
	}
}

// wait blocks until the earliest timer is due, a request is queued, or the
// host is stopped.
func (h *Host) wait(ctx context.Context) {
	var due <-chan time.Time
	stop := func() {}
	if next, ok := h.timers.NextDue(); ok {
		d := next.FireAt.Sub(h.clock.Now())
		if d < 0 {
			d = 0
		}
		due, stop = h.clock.After(d)
	}
	defer stop()
	select {
	case <-ctx.Done():
	case <-h.stopCh:
	case <-h.requests.Ready():
	case <-due:
	}
}

// RunReady runs every turn that is ready at the current clock time without
// blocking and returns the number of turns run.
func (h *Host) RunReady() int {
	n := 0
	for h.Err() == nil && h.step() {
		n++
	}
	return n
}

func (h *Host) hasWork() bool {
	if len(h.tasks) > 0 || h.timers.Len() > 0 || h.requests.Len() > 0 {
		return true
	}
	for _, b := range h.snapshotBindings() {
		if b.Listening() {
			return true
		}
	}
	return false
}

// step runs at most one ready turn. A queued request wins over a timer
// that became due at or after the request arrived.
func (h *Host) step() bool {
	if len(h.tasks) > 0 {
		t := h.tasks[0]
		h.tasks = h.tasks[1:]
		_ = h.turn(StateRunningCallback, t.source, t.fn)
		return true
	}

	now := h.clock.Now()
	next, hasTimer := h.timers.NextDue()
	timerReady := hasTimer && !next.FireAt.After(now)
	req, hasReq := h.requests.Peek()

	if hasReq && (!timerReady || !next.FireAt.Before(req.ReceivedAt)) {
		h.requests.Pop()
		h.runRequest(req)
		return true
	}
	if timerReady {
		e, ok := h.timers.PopDue(now)
		if !ok {
			return false
		}
		h.runTimer(e)
		return true
	}
	return false
}

func (h *Host) enqueue(source string, fn func() error) {
	h.tasks = append(h.tasks, task{source: source, fn: fn})
}

// turn runs fn to completion as one turn and isolates any failure to it.
func (h *Host) turn(state State, source string, fn func() error) (err error) {
	h.setState(state)
	h.turns.Add(1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			h.uncaught.Add(1)
			err = &ScriptError{Source: source, Err: err}
			h.log.Error("%v", err)
		}
		if h.State() != StateShutdown {
			h.setState(StateWaitingForWork)
		}
	}()
	return fn()
}

func (h *Host) runTimer(e timers.Entry) {
	cb := e.Callback.(*jsCallback)
	_ = h.turn(StateRunningCallback, fmt.Sprintf("timer %d", e.ID), cb.call)
	h.timers.Done(e)
}

func (h *Host) runRequest(req *httpbind.PendingRequest) {
	if !req.Sink.Dispatch() {
		// answered by a timeout or shutdown while queued
		return
	}
	source := fmt.Sprintf("request %s %s", req.Method, req.Path)
	handler, ok := req.Binding.Handler().(goja.Callable)
	if !ok {
		h.log.Warning("http: no request handler for %s", source)
		req.Sink.Fail(http.StatusServiceUnavailable)
		return
	}
	err := h.turn(StateRunningCallback, source, func() error {
		_, err := handler(goja.Undefined(), h.newRequestObject(req), h.newResponseObject(req))
		return err
	})
	if err != nil && req.Sink.Fail(http.StatusInternalServerError) {
		h.log.Warning("http: answered %s with 500 after uncaught error", source)
	}
}

// autoListen binds servers the script created without listening.
func (h *Host) autoListen() {
	for _, b := range h.snapshotBindings() {
		if b.Listening() || b.Closed() {
			continue
		}
		if err := b.Listen(h.cfg.DefaultAddr); err != nil {
			h.setFatal(err)
			return
		}
	}
}
