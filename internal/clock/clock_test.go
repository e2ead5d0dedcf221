package clock

import (
	"testing"
	"time"
)

func TestManualAdvanceWakesWaiter(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)
	ch, _ := m.After(2 * time.Second)

	m.Advance(1999 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("waiter fired before its deadline")
	default:
	}

	m.Advance(time.Millisecond)
	select {
	case got := <-ch:
		if !got.Equal(start.Add(2 * time.Second)) {
			t.Fatalf("unexpected wake time: %v", got)
		}
	default:
		t.Fatal("expected waiter to fire at its deadline")
	}
}

func TestManualZeroDelayFiresImmediately(t *testing.T) {
	m := NewManual(time.Now())
	ch, _ := m.After(0)
	select {
	case <-ch:
	default:
		t.Fatal("expected zero-delay waiter to be ready")
	}
}

func TestManualStopRemovesWaiter(t *testing.T) {
	m := NewManual(time.Now())
	ch, stop := m.After(time.Second)
	stop()
	m.Advance(time.Hour)
	select {
	case <-ch:
		t.Fatal("stopped waiter should not fire")
	default:
	}
	if len(m.waiters) != 0 {
		t.Fatalf("expected no waiters, got %d", len(m.waiters))
	}
}

func TestRealAfter(t *testing.T) {
	ch, stop := NewReal().After(10 * time.Millisecond)
	defer stop()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("real clock did not fire")
	}
}
