package httpbind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warpdl/warpjs/internal/clock"
	"github.com/warpdl/warpjs/pkg/logger"
)

const (
	// DefaultMaxHeaderBytes bounds the request header block.
	DefaultMaxHeaderBytes = 8 << 10
	// DefaultMaxBodyBytes bounds the request body held in memory.
	DefaultMaxBodyBytes = 1 << 20
)

// Options configures a Binding.
type Options struct {
	MaxHeaderBytes int
	MaxBodyBytes   int64
	// ResponseTimeout answers a queued request with 504 when its handler has
	// not ended the response in time. Zero waits forever.
	ResponseTimeout time.Duration
}

// Binding is one scripted HTTP server.
type Binding struct {
	log   logger.Logger
	queue *Queue
	clock clock.Clock
	opts  Options

	mu       sync.Mutex
	handler  any
	server   *http.Server
	listener net.Listener
	closed   chan struct{}
	drained  chan struct{}
	isClosed bool
}

// New returns an unbound server pushing its requests onto q.
func New(l logger.Logger, q *Queue, c clock.Clock, opts Options) *Binding {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if c == nil {
		c = clock.NewReal()
	}
	if opts.MaxHeaderBytes <= 0 {
		opts.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Binding{
		log:    l,
		queue:  q,
		clock:  c,
		opts:   opts,
		closed:  make(chan struct{}),
		drained: make(chan struct{}),
	}
}

// OnRequest registers the request handler. A later call replaces it.
func (b *Binding) OnRequest(handler any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
}

// Handler returns the registered request handler.
func (b *Binding) Handler() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handler
}

// Listen binds address and starts accepting connections in the background.
func (b *Binding) Listen(address string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isClosed {
		return ErrClosed
	}
	if b.listener != nil {
		return ErrAlreadyListening
	}
	l, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrListenBind, address, err)
	}
	b.listener = l
	b.server = &http.Server{
		Handler:           b,
		MaxHeaderBytes:    b.opts.MaxHeaderBytes,
		ReadHeaderTimeout: 30 * time.Second,
	}
	go func(srv *http.Server, l net.Listener) {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.log.Error("http: serve %s: %v", l.Addr(), err)
		}
	}(b.server, l)
	b.log.Info("http: listening on %s", l.Addr())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (b *Binding) Addr() net.Addr {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener == nil {
		return nil
	}
	return b.listener.Addr()
}

// Listening reports whether the binding accepts connections.
func (b *Binding) Listening() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listener != nil
}

// Closed reports whether Shutdown was called.
func (b *Binding) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isClosed
}

// Close stops accepting connections without waiting. Requests still
// waiting in the queue are answered with 503; requests already handed to a
// handler keep their connection until the handler ends the response.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isClosed {
		return
	}
	b.isClosed = true
	close(b.closed)
	b.listener = nil
	srv := b.server
	if srv == nil {
		close(b.drained)
		return
	}
	go func() {
		defer close(b.drained)
		if err := srv.Shutdown(context.Background()); err != nil {
			b.log.Warning("http: shutdown: %v", err)
		}
	}()
}

// Shutdown closes the binding and waits for in-flight requests to drain.
// Connections still open when ctx expires are closed.
func (b *Binding) Shutdown(ctx context.Context) error {
	b.Close()
	select {
	case <-b.drained:
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		srv := b.server
		b.mu.Unlock()
		if srv != nil {
			_ = srv.Close()
		}
		return ctx.Err()
	}
}

// ServeHTTP queues the request for the script thread and writes the
// response once the handler ends it.
func (b *Binding) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, b.opts.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest)
		return
	}
	headers := flattenHeaders(r.Header)
	headers["host"] = r.Host
	req := &PendingRequest{
		ID:         uuid.NewString(),
		Method:     r.Method,
		URL:        r.RequestURI,
		Path:       r.URL.Path,
		Headers:    headers,
		Body:       body,
		RemoteAddr: r.RemoteAddr,
		ReceivedAt: b.clock.Now(),
		Binding:    b,
		Sink:       newResponseSink(),
	}
	if !b.queue.Push(req) {
		b.log.Warning("http: request queue full, rejecting %s %s", r.Method, r.URL.Path)
		w.Header().Set("Connection", "close")
		writeError(w, http.StatusServiceUnavailable)
		return
	}

	var timeout <-chan time.Time
	if b.opts.ResponseTimeout > 0 {
		t := time.NewTimer(b.opts.ResponseTimeout)
		defer t.Stop()
		timeout = t.C
	}
	closed := b.closed
	for {
		select {
		case resp := <-req.Sink.Done():
			writeResponse(w, resp)
			return
		case <-timeout:
			timeout = nil
			if req.Sink.Fail(http.StatusGatewayTimeout) {
				b.log.Warning("http: %s %s timed out waiting for a response", r.Method, r.URL.Path)
			}
		case <-closed:
			closed = nil
			if req.Sink.FailQueued(http.StatusServiceUnavailable) {
				w.Header().Set("Connection", "close")
			}
		case <-r.Context().Done():
			// client went away; a later End is accepted and discarded
			return
		}
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	h := w.Header()
	for k, v := range resp.Header {
		h[k] = v
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, http.StatusText(status)+"\n")
}
