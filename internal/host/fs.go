package host

import (
	"errors"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/buffer"
	"github.com/warpdl/warpjs/internal/fsbridge"
)

// requireFs is the loader of the native fs module.
func (h *Host) requireFs(vm *goja.Runtime, module *goja.Object) {
	exports := module.Get("exports").(*goja.Object)
	_ = exports.Set("readFileSync", h.readFileSync)
	_ = exports.Set("writeFileSync", h.writeFileSync)
	_ = exports.Set("existsSync", h.existsSync)
}

func (h *Host) pathArg(call goja.FunctionCall, name string) string {
	v := call.Argument(0)
	s, ok := v.Export().(string)
	if !ok {
		h.throwType(CodeInvalidArgType, "%s: path must be a string", name)
	}
	return s
}

// encodingArg extracts the encoding from a string or {encoding} options
// argument; it returns nil when the caller asked for raw bytes.
func (h *Host) encodingArg(v goja.Value) goja.Value {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if _, ok := v.Export().(string); ok {
		return v
	}
	if obj, ok := v.(*goja.Object); ok {
		enc := obj.Get("encoding")
		if enc != nil && !goja.IsUndefined(enc) && !goja.IsNull(enc) {
			return enc
		}
	}
	return nil
}

// readFileSync returns a Buffer, or a string when an encoding is given.
func (h *Host) readFileSync(call goja.FunctionCall) goja.Value {
	path := h.pathArg(call, "readFileSync")
	res := h.files.ReadFile(path)
	if res.Err != nil {
		h.throwFs(res.Err)
	}
	if enc := h.encodingArg(call.Argument(1)); enc != nil {
		return buffer.EncodeBytes(h.vm, res.Bytes, enc)
	}
	return buffer.WrapBytes(h.vm, res.Bytes)
}

func (h *Host) writeFileSync(call goja.FunctionCall) goja.Value {
	path := h.pathArg(call, "writeFileSync")
	if err := h.files.WriteFile(path, h.toBytes(call.Argument(1))); err != nil {
		var fsErr *fsbridge.Error
		if errors.As(err, &fsErr) {
			h.throwFs(fsErr)
		}
		panic(h.vm.NewGoError(err))
	}
	return goja.Undefined()
}

func (h *Host) existsSync(call goja.FunctionCall) goja.Value {
	s, ok := call.Argument(0).Export().(string)
	if !ok {
		return h.vm.ToValue(false)
	}
	return h.vm.ToValue(h.files.Exists(s))
}

// throwFs raises a file-system error with errno-style code and path
// properties.
func (h *Host) throwFs(err *fsbridge.Error) {
	obj := h.vm.NewGoError(err)
	_ = obj.Set("code", err.Kind.Code())
	_ = obj.Set("path", err.Path)
	_ = obj.Set("syscall", err.Op)
	panic(obj)
}
