package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/warpdl/warpjs/internal/host"
	"github.com/warpdl/warpjs/pkg/logger"
)

// ErrNoSecret is returned by Start when no secret is configured.
var ErrNoSecret = errors.New("control: a secret is required")

// Config holds the control endpoint settings.
type Config struct {
	Addr      string // Listen address, e.g. 127.0.0.1:9181
	Secret    string // Bearer token; empty disables every method
	Version   string
	Commit    string
	BuildType string
}

// Target is the host being controlled.
type Target interface {
	Status() host.Status
	Timers() []host.TimerInfo
	Stop()
}

// Server serves the control methods.
type Server struct {
	cfg     Config
	target  Target
	log     logger.Logger
	methods handler.Map
	bridge  jhttp.Bridge

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// NewServer builds the method table for target.
func NewServer(cfg Config, target Target, l logger.Logger) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Server{cfg: cfg, target: target, log: l}
	s.methods = handler.Map{
		"system.getVersion": handler.New(s.systemGetVersion),
		"host.status":       handler.New(s.hostStatus),
		"timers.list":       handler.New(s.timersList),
		"host.stop":         handler.New(s.hostStop),
	}
	s.bridge = jhttp.NewBridge(s.methods, nil)
	return s
}

// Handler returns the authenticated HTTP handler of both transports.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /jsonrpc", requireToken(s.cfg.Secret, s.bridge))
	mux.Handle("GET /jsonrpc/ws", requireToken(s.cfg.Secret, http.HandlerFunc(s.serveWS)))
	return mux
}

// Start listens on cfg.Addr and serves in the background.
func (s *Server) Start() error {
	if s.cfg.Secret == "" {
		return ErrNoSecret
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("control: listen %s: %w", s.cfg.Addr, err)
	}
	s.listener = l
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func(srv *http.Server) {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("control: serve: %v", err)
		}
	}(s.srv)
	s.log.Info("control: listening on %s", l.Addr())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops the listener and releases the bridge.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.listener = nil
	s.mu.Unlock()
	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.bridge.Close()
	return err
}
