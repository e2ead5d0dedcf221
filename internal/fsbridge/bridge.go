// Package fsbridge runs the synchronous file-system calls requested by
// scripts and hands back either the full result or a classified error.
package fsbridge

import (
	"syscall"

	"github.com/spf13/afero"
)

// Result is the outcome of a read. Exactly one of Bytes or Err is set;
// an empty file yields empty, non-nil Bytes.
type Result struct {
	Bytes []byte
	Err   *Error
}

// Options configures the filesystem a Bridge reads from.
type Options struct {
	// Root confines every path to the given directory.
	Root string
	// ReadOnly rejects writes with a permission error.
	ReadOnly bool
}

// Bridge performs blocking file I/O on behalf of scripts.
type Bridge struct {
	fs afero.Fs
}

// New returns a Bridge over fsys. A nil fsys uses the OS filesystem.
func New(fsys afero.Fs) *Bridge {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Bridge{fs: fsys}
}

// NewWithOptions returns a Bridge over the OS filesystem shaped by opts.
func NewWithOptions(opts Options) *Bridge {
	var fsys afero.Fs = afero.NewOsFs()
	if opts.Root != "" {
		fsys = afero.NewBasePathFs(fsys, opts.Root)
	}
	if opts.ReadOnly {
		fsys = afero.NewReadOnlyFs(fsys)
	}
	return New(fsys)
}

// Fs returns the underlying filesystem.
func (b *Bridge) Fs() afero.Fs {
	return b.fs
}

// ReadFile reads the whole file at path.
func (b *Bridge) ReadFile(path string) Result {
	info, err := b.fs.Stat(path)
	if err != nil {
		return Result{Err: classify("open", path, err)}
	}
	if info.IsDir() {
		return Result{Err: &Error{Kind: KindIO, Op: "read", Path: path, Err: syscall.EISDIR}}
	}
	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return Result{Err: classify("read", path, err)}
	}
	if data == nil {
		data = []byte{}
	}
	return Result{Bytes: data}
}

// WriteFile replaces the content of the file at path.
func (b *Bridge) WriteFile(path string, data []byte) error {
	if err := afero.WriteFile(b.fs, path, data, 0644); err != nil {
		// afero.ReadOnlyFs reports writes as EPERM, which matches fs.ErrPermission
		return classify("open", path, err)
	}
	return nil
}

// Exists reports whether path exists.
func (b *Bridge) Exists(path string) bool {
	_, err := b.fs.Stat(path)
	return err == nil
}
