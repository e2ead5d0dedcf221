package httpbind

import "errors"

var (
	// ErrResponseAlreadySent is returned when a response is ended twice or
	// modified after it was ended.
	ErrResponseAlreadySent = errors.New("response already sent")
	// ErrListenBind is returned when the listening socket cannot be bound.
	ErrListenBind = errors.New("listen bind failure")
	// ErrAlreadyListening is returned by Listen on a bound binding.
	ErrAlreadyListening = errors.New("server is already listening")
	// ErrClosed is returned by Listen on a closed binding.
	ErrClosed = errors.New("server is closed")
	// ErrInvalidHeader is returned for header names or values that cannot be
	// sent on the wire.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrInvalidStatus is returned for status codes outside 100-999.
	ErrInvalidStatus = errors.New("invalid status code")
)
