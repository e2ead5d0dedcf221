package httpbind

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http/httpguts"
)

// PendingRequest is a fully-read request waiting for its handler.
type PendingRequest struct {
	ID         string
	Method     string
	URL        string
	Path       string
	Headers    map[string]string
	Body       []byte
	RemoteAddr string
	ReceivedAt time.Time
	// Binding is the server that accepted the request.
	Binding *Binding
	Sink    *ResponseSink
}

// Response is what a ResponseSink delivers to the connection.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// ResponseSink collects the response of one request. It can be ended once.
type ResponseSink struct {
	mu         sync.Mutex
	status     int
	header     http.Header
	sent       bool
	dispatched bool
	done       chan Response
}

func newResponseSink() *ResponseSink {
	return &ResponseSink{
		status: http.StatusOK,
		header: make(http.Header),
		done:   make(chan Response, 1),
	}
}

// SetStatus sets the status code of the response.
func (s *ResponseSink) SetStatus(code int) error {
	if code < 100 || code > 999 {
		return ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent {
		return ErrResponseAlreadySent
	}
	s.status = code
	return nil
}

// Status returns the current status code.
func (s *ResponseSink) Status() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetHeader replaces the values of a response header.
func (s *ResponseSink) SetHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
		return ErrInvalidHeader
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent {
		return ErrResponseAlreadySent
	}
	s.header.Set(name, value)
	return nil
}

// Header returns the first value of a response header.
func (s *ResponseSink) Header(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header.Get(name)
}

// RemoveHeader deletes a response header.
func (s *ResponseSink) RemoveHeader(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent {
		return ErrResponseAlreadySent
	}
	s.header.Del(name)
	return nil
}

// End completes the response with body. Every call after the first fails
// with ErrResponseAlreadySent and leaves the first response untouched.
func (s *ResponseSink) End(body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent {
		return ErrResponseAlreadySent
	}
	s.sent = true
	b := make([]byte, len(body))
	copy(b, body)
	s.done <- Response{Status: s.status, Header: s.header.Clone(), Body: b}
	return nil
}

// Fail ends the response with a plain-text error unless it was already
// sent. It reports whether the error response was written.
func (s *ResponseSink) Fail(status int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failLocked(status)
}

func (s *ResponseSink) failLocked(status int) bool {
	if s.sent {
		return false
	}
	s.sent = true
	h := make(http.Header)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	s.done <- Response{Status: status, Header: h, Body: []byte(http.StatusText(status) + "\n")}
	return true
}

// Dispatch marks the request as taken by its handler. It reports false when
// the response was already answered while the request was queued.
func (s *ResponseSink) Dispatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent {
		return false
	}
	s.dispatched = true
	return true
}

// FailQueued is Fail for requests not yet dispatched to a handler.
func (s *ResponseSink) FailQueued(status int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dispatched {
		return false
	}
	return s.failLocked(status)
}

// Sent reports whether the response was ended.
func (s *ResponseSink) Sent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Done receives the response once it is ended.
func (s *ResponseSink) Done() <-chan Response {
	return s.done
}

// flattenHeaders folds a header into lower-cased names with comma-joined
// values.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}
