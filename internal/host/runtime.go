package host

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/buffer"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/dop251/goja_nodejs/url"
	"github.com/warpdl/warpjs/pkg/logger"
)

// Native module names served by the host registry.
const (
	ModuleFs   = "fs"
	ModuleHTTP = "http"
)

// noFileLoader refuses every file-based module; scripts only get the
// native modules registered by the host.
func noFileLoader(string) ([]byte, error) {
	return nil, require.ModuleFileDoesNotExistError
}

func (h *Host) setupRuntime() error {
	vm := goja.New()
	h.vm = vm

	registry := require.NewRegistry(require.WithLoader(noFileLoader))
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(&consolePrinter{
		stdout: h.stdout,
		stderr: h.stderr,
		log:    h.log,
		mirror: h.cfg.Debug,
	}))
	registry.RegisterNativeModule(ModuleFs, h.requireFs)
	registry.RegisterNativeModule(ModuleHTTP, h.requireHTTP)
	registry.Enable(vm)

	console.Enable(vm)
	buffer.Enable(vm)
	url.Enable(vm)

	globals := map[string]any{
		"setTimeout":     h.setTimeout,
		"clearTimeout":   h.clearTimer,
		"setInterval":    h.setInterval,
		"clearInterval":  h.clearTimer,
		"setImmediate":   h.setImmediate,
		"clearImmediate": h.clearTimer,
		"fs":             require.Require(vm, ModuleFs),
		"http":           require.Require(vm, ModuleHTTP),
		"process":        h.newProcessObject(),
	}
	for name, v := range globals {
		if err := vm.Set(name, v); err != nil {
			return fmt.Errorf("set global %s: %w", name, err)
		}
	}
	return nil
}

func (h *Host) newProcessObject() *goja.Object {
	vm := h.vm
	proc := vm.NewObject()
	argv := make([]any, 0, len(h.cfg.Argv))
	for _, a := range h.cfg.Argv {
		argv = append(argv, a)
	}
	_ = proc.Set("argv", vm.NewArray(argv...))
	env := vm.NewObject()
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			_ = env.Set(k, v)
		}
	}
	_ = proc.Set("env", env)
	_ = proc.Set("cwd", func(goja.FunctionCall) goja.Value {
		dir, err := os.Getwd()
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(dir)
	})
	return proc
}

// throw raises a JavaScript Error carrying a Node-style code.
func (h *Host) throw(code string, err error) {
	obj := h.vm.NewGoError(err)
	_ = obj.Set("code", code)
	panic(obj)
}

func (h *Host) throwType(code, format string, args ...any) {
	obj := h.vm.NewTypeError(fmt.Sprintf(format, args...))
	_ = obj.Set("code", code)
	panic(obj)
}

// toBytes converts a body argument (string, Buffer, typed array or
// ArrayBuffer) to bytes. undefined and null yield nil.
func (h *Host) toBytes(v goja.Value) []byte {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	switch x := v.Export().(type) {
	case string:
		return []byte(x)
	case []byte:
		return x
	case goja.ArrayBuffer:
		return x.Bytes()
	}
	if _, ok := v.(*goja.Object); ok {
		return buffer.Bytes(h.vm, v)
	}
	return []byte(v.String())
}

// consolePrinter routes console output to the host's stdout/stderr and,
// in debug mode, to the host logger.
type consolePrinter struct {
	stdout io.Writer
	stderr io.Writer
	log    logger.Logger
	mirror bool
}

func (p *consolePrinter) Log(s string) {
	fmt.Fprintln(p.stdout, s)
	if p.mirror {
		p.log.Info("console: %s", s)
	}
}

func (p *consolePrinter) Warn(s string) {
	fmt.Fprintln(p.stderr, s)
	if p.mirror {
		p.log.Warning("console: %s", s)
	}
}

func (p *consolePrinter) Error(s string) {
	fmt.Fprintln(p.stderr, s)
	if p.mirror {
		p.log.Error("console: %s", s)
	}
}
