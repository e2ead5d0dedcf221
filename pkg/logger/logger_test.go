package logger

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
)

func TestStandardLoggerPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		call   func(Logger)
		prefix string
		text   string
	}{
		{"info", func(l Logger) { l.Info("listening on %s", ":8080") }, "[INFO]", "listening on :8080"},
		{"warning", func(l Logger) { l.Warning("queue full: %d", 64) }, "[WARNING]", "queue full: 64"},
		{"error", func(l Logger) { l.Error("turn failed: %v", "boom") }, "[ERROR]", "turn failed: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l := NewStandardLogger(log.New(buf, "", 0))
			tt.call(l)
			out := buf.String()
			if !strings.HasPrefix(out, tt.prefix) || !strings.Contains(out, tt.text) {
				t.Fatalf("unexpected output: %q", out)
			}
			if err := l.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
		})
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("x")
	l.Warning("x")
	l.Error("x")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestMockLoggerConcurrent(t *testing.T) {
	m := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Error("err %d", i)
			m.Warning("warn %d", i)
		}(i)
	}
	wg.Wait()
	if len(m.Errors()) != 50 || len(m.Warnings()) != 50 {
		t.Fatalf("expected 50 records each, got %d/%d", len(m.Errors()), len(m.Warnings()))
	}
}

type closeErrLogger struct {
	*MockLogger
	err error
}

func (c *closeErrLogger) Close() error {
	_ = c.MockLogger.Close()
	return c.err
}

func TestMultiLoggerBroadcast(t *testing.T) {
	a, b := NewMockLogger(), NewMockLogger()
	m := NewMultiLogger(a, b)
	m.Info("i")
	m.Warning("w")
	m.Error("e")
	for _, l := range []*MockLogger{a, b} {
		if len(l.InfoCalls) != 1 || len(l.WarningCalls) != 1 || len(l.ErrorCalls) != 1 {
			t.Fatalf("expected one call per level, got %+v", l)
		}
	}
}

func TestMultiLoggerCloseReturnsFirstError(t *testing.T) {
	first := errors.New("first")
	a := &closeErrLogger{NewMockLogger(), first}
	b := &closeErrLogger{NewMockLogger(), errors.New("second")}
	c := NewMockLogger()
	err := NewMultiLogger(a, b, c).Close()
	if !errors.Is(err, first) {
		t.Fatalf("expected first error, got %v", err)
	}
	if !a.CloseCalled || !b.CloseCalled || !c.CloseCalled {
		t.Fatal("expected every backend to be closed")
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	m := NewMultiLogger()
	m.Info("nothing")
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
