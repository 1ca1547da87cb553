package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoadGate_WaitReleasesOnOpen(t *testing.T) {
	gate := NewLoadGate()
	done := make(chan error, 1)
	go func() {
		done <- gate.Wait(context.Background())
	}()

	select {
	case <-done:
		t.Fatalf("expected wait to block before the gate opens")
	case <-time.After(20 * time.Millisecond):
	}

	gate.Open(time.Now().UTC())
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("wait: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected wait to return after open")
	}
	if gate.State() != LoadStateReady {
		t.Fatalf("expected ready state, got %q", gate.State())
	}
}

func TestLoadGate_FailedStaysShutUntilOpened(t *testing.T) {
	gate := NewLoadGate()
	gate.Fail(errors.New("permission denied"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := gate.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wait to end with the caller's deadline, got %v", err)
	}
	status := gate.Status()
	if status.State != LoadStateFailed || status.Err == nil {
		t.Fatalf("expected failed status with error, got %#v", status)
	}

	gate.Open(time.Now().UTC())
	if err := gate.Wait(context.Background()); err != nil {
		t.Fatalf("expected wait to pass after recovery, got %v", err)
	}
	if gate.Status().Err != nil {
		t.Fatalf("expected recovery to clear the last error")
	}
}

func TestLoadGate_OpenIsIdempotent(t *testing.T) {
	gate := NewLoadGate()
	gate.Open(time.Now().UTC())
	gate.Open(time.Now().UTC())
	gate.Fail(errors.New("late failure"))
	if gate.State() != LoadStateReady {
		t.Fatalf("expected gate to stay open, got %q", gate.State())
	}
	select {
	case <-gate.Ready():
	default:
		t.Fatalf("expected ready channel to be closed")
	}
}
