package host

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/dop251/goja"
	"github.com/warpdl/warpjs/internal/httpbind"
)

// requireHTTP is the loader of the native http module.
func (h *Host) requireHTTP(vm *goja.Runtime, module *goja.Object) {
	exports := module.Get("exports").(*goja.Object)
	_ = exports.Set("createServer", h.createServer)
}

// createServer returns a server object; an optional function argument is
// registered as the request handler.
func (h *Host) createServer(call goja.FunctionCall) goja.Value {
	b := h.newBinding()
	for _, arg := range call.Arguments {
		if fn, ok := goja.AssertFunction(arg); ok {
			b.OnRequest(fn)
			break
		}
	}
	return h.newServerObject(b)
}

func (h *Host) newServerObject(b *httpbind.Binding) *goja.Object {
	vm := h.vm
	srv := vm.NewObject()
	var onListening []goja.Callable
	_ = srv.Set("listening", false)

	setHandler := func(v goja.Value) {
		fn, ok := goja.AssertFunction(v)
		if !ok {
			h.throwType(CodeInvalidArgType, "request handler must be a function")
		}
		b.OnRequest(fn)
	}

	_ = srv.Set("listen", func(call goja.FunctionCall) goja.Value {
		addr, cb := h.listenArgs(call)
		if err := b.Listen(addr); err != nil {
			switch {
			case errors.Is(err, httpbind.ErrListenBind):
				h.setFatal(err)
				h.throw(CodeListenBind, err)
			case errors.Is(err, httpbind.ErrAlreadyListening):
				h.throw(CodeAlreadyListening, err)
			default:
				h.throw(CodeServerClosed, err)
			}
		}
		_ = srv.Set("listening", true)
		if cb != nil {
			onListening = append(onListening, cb)
		}
		for _, fn := range onListening {
			fn := fn
			h.enqueue("listening callback", func() error {
				_, err := fn(srv)
				return err
			})
		}
		onListening = nil
		return srv
	})
	_ = srv.Set("on", func(call goja.FunctionCall) goja.Value {
		switch event := call.Argument(0).String(); event {
		case "request":
			setHandler(call.Argument(1))
		case "listening":
			fn, ok := goja.AssertFunction(call.Argument(1))
			if !ok {
				h.throwType(CodeInvalidArgType, "listener must be a function")
			}
			onListening = append(onListening, fn)
		default:
			h.throwType(CodeInvalidArgType, "unsupported server event %q", event)
		}
		return srv
	})
	_ = srv.Set("onRequest", func(call goja.FunctionCall) goja.Value {
		setHandler(call.Argument(0))
		return srv
	})
	_ = srv.Set("close", func(call goja.FunctionCall) goja.Value {
		b.Close()
		_ = srv.Set("listening", false)
		if fn, ok := goja.AssertFunction(call.Argument(0)); ok {
			h.enqueue("close callback", func() error {
				_, err := fn(srv)
				return err
			})
		}
		return srv
	})
	_ = srv.Set("address", func(goja.FunctionCall) goja.Value {
		addr, ok := b.Addr().(*net.TCPAddr)
		if !ok || addr == nil {
			return goja.Null()
		}
		family := "IPv4"
		if addr.IP.To4() == nil {
			family = "IPv6"
		}
		out := vm.NewObject()
		_ = out.Set("address", addr.IP.String())
		_ = out.Set("family", family)
		_ = out.Set("port", addr.Port)
		return out
	})
	return srv
}

// listenArgs accepts listen(), listen(port), listen("host:port"),
// listen(port, host) and an optional trailing callback.
func (h *Host) listenArgs(call goja.FunctionCall) (string, goja.Callable) {
	var cb goja.Callable
	args := call.Arguments
	if n := len(args); n > 0 {
		if fn, ok := goja.AssertFunction(args[n-1]); ok {
			cb = fn
			args = args[:n-1]
		}
	}
	if len(args) == 0 || goja.IsUndefined(args[0]) || goja.IsNull(args[0]) {
		return h.cfg.DefaultAddr, cb
	}
	host := ""
	if len(args) > 1 {
		if s, ok := args[1].Export().(string); ok {
			host = s
		}
	}
	switch v := args[0].Export().(type) {
	case int64:
		return net.JoinHostPort(host, strconv.FormatInt(v, 10)), cb
	case float64:
		return net.JoinHostPort(host, strconv.FormatInt(int64(v), 10)), cb
	case string:
		if _, err := strconv.Atoi(v); err == nil {
			return net.JoinHostPort(host, v), cb
		}
		return v, cb
	}
	h.throwType(CodeInvalidArgType, "listen: invalid address %s", args[0].String())
	return "", nil
}

func (h *Host) newRequestObject(req *httpbind.PendingRequest) *goja.Object {
	vm := h.vm
	obj := vm.NewObject()
	headers := vm.NewObject()
	for k, v := range req.Headers {
		_ = headers.Set(k, v)
	}
	_ = obj.Set("id", req.ID)
	_ = obj.Set("method", req.Method)
	_ = obj.Set("url", req.URL)
	_ = obj.Set("path", req.Path)
	_ = obj.Set("headers", headers)
	_ = obj.Set("body", string(req.Body))
	_ = obj.Set("remoteAddress", req.RemoteAddr)
	return obj
}

func (h *Host) newResponseObject(req *httpbind.PendingRequest) *goja.Object {
	vm := h.vm
	sink := req.Sink
	res := vm.NewObject()
	_ = res.Set("statusCode", sink.Status())
	_ = res.Set("headersSent", false)
	_ = res.Set("writableEnded", false)

	check := func(err error) {
		switch {
		case err == nil:
		case errors.Is(err, httpbind.ErrResponseAlreadySent):
			h.throw(CodeResponseAlreadySent, err)
		case errors.Is(err, httpbind.ErrInvalidHeader):
			h.throwType(CodeInvalidHTTPToken, "%v", err)
		case errors.Is(err, httpbind.ErrInvalidStatus):
			h.throwType(CodeInvalidStatus, "%v", err)
		default:
			panic(vm.NewGoError(err))
		}
	}
	applyStatus := func() {
		v := res.Get("statusCode")
		if v == nil || goja.IsUndefined(v) {
			return
		}
		check(sink.SetStatus(int(v.ToInteger())))
	}

	_ = res.Set("setHeader", func(call goja.FunctionCall) goja.Value {
		check(sink.SetHeader(call.Argument(0).String(), call.Argument(1).String()))
		return res
	})
	_ = res.Set("getHeader", func(call goja.FunctionCall) goja.Value {
		v := sink.Header(call.Argument(0).String())
		if v == "" {
			return goja.Undefined()
		}
		return vm.ToValue(v)
	})
	_ = res.Set("removeHeader", func(call goja.FunctionCall) goja.Value {
		check(sink.RemoveHeader(call.Argument(0).String()))
		return goja.Undefined()
	})
	_ = res.Set("writeHead", func(call goja.FunctionCall) goja.Value {
		_ = res.Set("statusCode", call.Argument(0))
		applyStatus()
		if obj, ok := call.Argument(1).(*goja.Object); ok {
			for _, k := range obj.Keys() {
				check(sink.SetHeader(k, obj.Get(k).String()))
			}
		}
		return res
	})
	_ = res.Set("end", func(call goja.FunctionCall) goja.Value {
		if sink.Sent() {
			check(httpbind.ErrResponseAlreadySent)
		}
		applyStatus()
		body := call.Argument(0)
		if _, ok := goja.AssertFunction(body); ok {
			body = goja.Undefined()
		}
		check(sink.End(h.toBytes(body)))
		_ = res.Set("headersSent", true)
		_ = res.Set("writableEnded", true)
		return res
	})
	_ = res.Set("toString", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(fmt.Sprintf("[ServerResponse %s %s]", req.Method, req.Path))
	})
	return res
}
