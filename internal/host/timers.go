package host

import (
	"math"
	"time"

	"github.com/dop251/goja"
	"github.com/warpdl/warpjs/internal/timers"
)

// jsCallback is a script function with the extra arguments it was
// scheduled with.
type jsCallback struct {
	fn   goja.Callable
	args []goja.Value
}

func (c *jsCallback) call() error {
	_, err := c.fn(goja.Undefined(), c.args...)
	return err
}

// callbackArg asserts that the first argument is a function and captures
// the arguments starting at rest.
func (h *Host) callbackArg(call goja.FunctionCall, name string, rest int) *jsCallback {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		h.throwType(CodeInvalidArgType, "%s: callback must be a function", name)
	}
	var args []goja.Value
	if len(call.Arguments) > rest {
		args = append(args, call.Arguments[rest:]...)
	}
	return &jsCallback{fn: fn, args: args}
}

// maxDelay is the longest delay a timer can carry.
const maxDelay = time.Duration(math.MaxInt64)

// delayArg converts the delay argument to a duration. undefined means 0;
// negative and non-finite values are rejected and delays past maxDelay are
// capped to it.
func (h *Host) delayArg(v goja.Value) time.Duration {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	ms := v.ToFloat()
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 {
		h.throw(CodeInvalidDelay, timers.ErrInvalidDelay)
	}
	if ms >= float64(maxDelay/time.Millisecond) {
		return maxDelay
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func (h *Host) setTimeout(call goja.FunctionCall) goja.Value {
	cb := h.callbackArg(call, "setTimeout", 2)
	id, err := h.timers.Schedule(h.delayArg(call.Argument(1)), cb)
	if err != nil {
		h.throw(CodeInvalidDelay, err)
	}
	return h.vm.ToValue(id)
}

func (h *Host) setInterval(call goja.FunctionCall) goja.Value {
	cb := h.callbackArg(call, "setInterval", 2)
	id, err := h.timers.ScheduleRepeating(h.delayArg(call.Argument(1)), cb)
	if err != nil {
		h.throw(CodeInvalidDelay, err)
	}
	return h.vm.ToValue(id)
}

func (h *Host) setImmediate(call goja.FunctionCall) goja.Value {
	cb := h.callbackArg(call, "setImmediate", 1)
	id, _ := h.timers.Schedule(0, cb)
	return h.vm.ToValue(id)
}

// clearTimer cancels any kind of timer; unknown ids are ignored.
func (h *Host) clearTimer(call goja.FunctionCall) goja.Value {
	v := call.Argument(0)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return h.vm.ToValue(false)
	}
	return h.vm.ToValue(h.timers.Cancel(v.ToInteger()))
}
