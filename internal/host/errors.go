package host

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when Run is called on a running host.
	ErrAlreadyRunning = errors.New("host is already running")
	// ErrShutdown is returned when the host was already shut down.
	ErrShutdown = errors.New("host is shut down")
	// ErrUncaughtScript matches every ScriptError.
	ErrUncaughtScript = errors.New("uncaught script error")
)

// Error codes attached to the errors thrown into scripts.
const (
	CodeInvalidDelay        = "ERR_INVALID_DELAY"
	CodeInvalidArgType      = "ERR_INVALID_ARG_TYPE"
	CodeResponseAlreadySent = "ERR_RESPONSE_ALREADY_SENT"
	CodeInvalidHTTPToken    = "ERR_INVALID_HTTP_TOKEN"
	CodeInvalidStatus       = "ERR_HTTP_INVALID_STATUS_CODE"
	CodeListenBind          = "ERR_LISTEN_BIND"
	CodeServerClosed        = "ERR_SERVER_CLOSED"
	CodeAlreadyListening    = "ERR_SERVER_ALREADY_LISTEN"
)

// ScriptError is an exception that escaped a turn.
type ScriptError struct {
	// Source names the turn, e.g. "timer 3" or "request GET /".
	Source string
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("uncaught script error in %s: %v", e.Source, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

func (e *ScriptError) Is(target error) bool {
	return target == ErrUncaughtScript
}
