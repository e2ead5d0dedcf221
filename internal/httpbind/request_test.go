package httpbind

import (
	"errors"
	"net/http"
	"testing"
)

func TestResponseSinkEndTwice(t *testing.T) {
	s := newResponseSink()
	if err := s.End([]byte("first")); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := s.End([]byte("second")); !errors.Is(err, ErrResponseAlreadySent) {
		t.Fatalf("expected ErrResponseAlreadySent, got %v", err)
	}
	resp := <-s.Done()
	if string(resp.Body) != "first" {
		t.Fatalf("first response modified: %q", resp.Body)
	}
	select {
	case <-s.Done():
		t.Fatal("second End must not deliver a response")
	default:
	}
}

func TestResponseSinkMutationAfterEnd(t *testing.T) {
	s := newResponseSink()
	_ = s.End(nil)
	if err := s.SetHeader("X-A", "b"); !errors.Is(err, ErrResponseAlreadySent) {
		t.Fatalf("expected ErrResponseAlreadySent, got %v", err)
	}
	if err := s.SetStatus(404); !errors.Is(err, ErrResponseAlreadySent) {
		t.Fatalf("expected ErrResponseAlreadySent, got %v", err)
	}
	if s.Fail(http.StatusInternalServerError) {
		t.Fatal("Fail after End must not write")
	}
}

func TestResponseSinkFailQueued(t *testing.T) {
	queued := newResponseSink()
	if !queued.FailQueued(http.StatusServiceUnavailable) {
		t.Fatal("FailQueued should answer a queued request")
	}
	if queued.Dispatch() {
		t.Fatal("Dispatch after an answer should report false")
	}
	if resp := <-queued.Done(); resp.Status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.Status)
	}

	dispatched := newResponseSink()
	if !dispatched.Dispatch() {
		t.Fatal("Dispatch should succeed")
	}
	if dispatched.FailQueued(http.StatusServiceUnavailable) {
		t.Fatal("FailQueued must leave a dispatched request alone")
	}
	if err := dispatched.End([]byte("ok")); err != nil {
		t.Fatalf("End: %v", err)
	}
	if resp := <-dispatched.Done(); resp.Status != http.StatusOK || string(resp.Body) != "ok" {
		t.Fatalf("got %d %q", resp.Status, resp.Body)
	}
}

func TestResponseSinkValidation(t *testing.T) {
	s := newResponseSink()
	if err := s.SetHeader("bad header", "x"); !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
	if err := s.SetHeader("X-Ok", "line\nbreak"); !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
	if err := s.SetStatus(42); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := s.SetHeader("x-ok", "v"); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	if s.Header("X-OK") != "v" {
		t.Fatal("header lookup must be case-insensitive")
	}
	_ = s.RemoveHeader("X-Ok")
	if s.Header("X-Ok") != "" {
		t.Fatal("expected header to be removed")
	}
}

func TestFlattenHeaders(t *testing.T) {
	h := http.Header{}
	h.Add("Accept", "a")
	h.Add("Accept", "b")
	got := flattenHeaders(h)
	if got["accept"] != "a, b" {
		t.Fatalf("unexpected flattened header: %v", got)
	}
}
