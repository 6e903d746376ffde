// Package shutdown implements the RUNNING -> DRAINING -> STOPPED state
// machine around the MCP dispatch loop: once a signal
// requests shutdown, in-flight tool calls are given a wall-clock budget to
// finish before the process exits, and no new calls are admitted once
// draining has begun.
package shutdown

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/errs"
)

// State is one point in the RUNNING -> DRAINING -> STOPPED lifecycle.
type State int32

const (
	Running State = iota
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Gate tracks in-flight tool calls and the current lifecycle state. Every
// dispatch path must call Enter before doing work and call the release
// func Enter returns when done; Enter rejects new work once draining has
// started.
type Gate struct {
	state   atomic.Int32
	mu      sync.Mutex
	inFlight int
	drained  chan struct{}
}

// New creates a Gate in the Running state.
func New() *Gate {
	return &Gate{drained: make(chan struct{})}
}

// State returns the current lifecycle state.
func (g *Gate) State() State { return State(g.state.Load()) }

// Enter admits one unit of in-flight work and returns the func that
// releases it, or an errs.Conflict error (the request must be retried
// elsewhere) if the gate is draining or stopped.
func (g *Gate) Enter() (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if State(g.state.Load()) != Running {
		return nil, errs.NewConflict("server is shutting down")
	}
	g.inFlight++
	return func() { g.leave() }, nil
}

func (g *Gate) leave() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inFlight--
	if g.inFlight == 0 && State(g.state.Load()) == Draining {
		select {
		case <-g.drained:
		default:
			close(g.drained)
		}
	}
}

// BeginDraining transitions Running -> Draining. Idempotent.
func (g *Gate) BeginDraining() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if State(g.state.Load()) != Running {
		return
	}
	g.state.Store(int32(Draining))
	if g.inFlight == 0 {
		select {
		case <-g.drained:
		default:
			close(g.drained)
		}
	}
}

// WaitDrained blocks until every admitted call has returned, the shutdown
// timeout elapses, or ctx is cancelled — whichever comes first — then
// transitions to Stopped. It reports whether every call drained cleanly.
func (g *Gate) WaitDrained(ctx context.Context, timeout time.Duration) bool {
	defer g.state.Store(int32(Stopped))

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-g.drained:
		return true
	case <-tctx.Done():
		return false
	}
}
