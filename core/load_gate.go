package core

import (
	"context"
	"time"

	"github.com/sasha-s/go-deadlock"
)

type LoadState string

const (
	LoadStateUnloaded LoadState = "unloaded"
	LoadStateReady    LoadState = "ready"
	LoadStateFailed   LoadState = "failed"
)

// LoadGate holds callers back until the token store has been loaded. A failed
// load leaves the gate shut; only a later successful load opens it.
type LoadGate struct {
	mu       deadlock.Mutex
	state    LoadState
	lastErr  error
	loadedAt time.Time
	ready    chan struct{}
}

func NewLoadGate() *LoadGate {
	return &LoadGate{
		state: LoadStateUnloaded,
		ready: make(chan struct{}),
	}
}

// Wait blocks until the gate opens or ctx is done.
func (g *LoadGate) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-g.ready:
		return nil
	default:
	}
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready returns a channel closed once the gate opens.
func (g *LoadGate) Ready() <-chan struct{} {
	return g.ready
}

func (g *LoadGate) Open(at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastErr = nil
	g.loadedAt = at
	if g.state == LoadStateReady {
		return
	}
	g.state = LoadStateReady
	close(g.ready)
}

// Fail records a load failure. An already open gate stays open.
func (g *LoadGate) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastErr = err
	if g.state == LoadStateReady {
		return
	}
	g.state = LoadStateFailed
}

func (g *LoadGate) State() LoadState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

type LoadStatus struct {
	State    LoadState
	Err      error
	LoadedAt time.Time
}

func (g *LoadGate) Status() LoadStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return LoadStatus{State: g.state, Err: g.lastErr, LoadedAt: g.loadedAt}
}
