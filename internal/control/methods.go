package control

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warpjs/internal/host"
)

const codeHostShutdown = jrpc2.Code(-32010)

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// TimersResult is the response for timers.list.
type TimersResult struct {
	Timers []host.TimerInfo `json:"timers"`
}

// StopResult is the response for host.stop.
type StopResult struct {
	State string `json:"state"`
}

func (s *Server) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{
		Version:   s.cfg.Version,
		Commit:    s.cfg.Commit,
		BuildType: s.cfg.BuildType,
	}, nil
}

func (s *Server) hostStatus(_ context.Context) (*host.Status, error) {
	st := s.target.Status()
	return &st, nil
}

func (s *Server) timersList(_ context.Context) (*TimersResult, error) {
	return &TimersResult{Timers: s.target.Timers()}, nil
}

func (s *Server) hostStop(_ context.Context) (*StopResult, error) {
	st := s.target.Status()
	if st.State == host.StateShutdown.String() {
		return nil, &jrpc2.Error{Code: codeHostShutdown, Message: "host is already shut down"}
	}
	s.log.Info("control: stop requested")
	s.target.Stop()
	return &StopResult{State: st.State}, nil
}
