package fsbridge

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a file-system failure.
type Kind int

const (
	KindIO Kind = iota
	KindNotFound
	KindPermissionDenied
)

// Code returns the errno-style code exposed to scripts.
func (k Kind) Code() string {
	switch k {
	case KindNotFound:
		return "ENOENT"
	case KindPermissionDenied:
		return "EACCES"
	default:
		return "EIO"
	}
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	default:
		return "i/o error"
	}
}

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIO               = errors.New("i/o error")
)

// Error is a classified file-system error.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s, %s '%s'", e.Kind.Code(), e.Op, e.Path)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrPermissionDenied:
		return e.Kind == KindPermissionDenied
	case ErrIO:
		return e.Kind == KindIO
	}
	return false
}

func classify(op, path string, err error) *Error {
	kind := KindIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermissionDenied
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
