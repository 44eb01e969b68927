package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/internal/ports"
)

// ShutdownTimeout is the maximum time Stop waits for workers.
const ShutdownTimeout = 30 * time.Second

// State is the lifecycle state of the service.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

var stateNames = map[State]string{
	StateStopped:  "Stopped",
	StateStarting: "Starting",
	StateRunning:  "Running",
	StateStopping: "Stopping",
	StateCrashed:  "Crashed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// transitions lists the states reachable from each state. Starting may go
// straight to Stopping when Stop races a slow start.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// EventEmitter is called after every state change.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle tracks the service state and its background workers.
type Lifecycle struct {
	logger  ports.Logger
	emitter EventEmitter

	mu     sync.RWMutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLifecycle returns a lifecycle in StateStopped. emitter may be nil.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{logger: logger, emitter: emitter, state: StateStopped}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to next if the transition is allowed. Leaving an idle
// state (Stopped, Crashed) wrongly yields ErrNotRunning; anything else
// yields ErrAlreadyRunning.
func (l *Lifecycle) TransitionTo(next State, reason string) error {
	l.mu.Lock()
	prev := l.state
	if !allowed(prev, next) {
		l.mu.Unlock()
		if prev == StateStopped || prev == StateCrashed {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(prev, next, reason)
	}
	l.logger.Info("state transition",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
		ports.String("reason", reason),
	)
	return nil
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStart reports whether the service is idle.
func (l *Lifecycle) CanStart() bool {
	s := l.State()
	return s == StateStopped || s == StateCrashed
}

// CanStop reports whether the service is starting or running.
func (l *Lifecycle) CanStop() bool {
	s := l.State()
	return s == StateRunning || s == StateStarting
}

// SetCancel stores the function that cancels the run context.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
}

// Cancel cancels the run context, if one was set.
func (l *Lifecycle) Cancel() {
	l.mu.RLock()
	cancel := l.cancel
	l.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Go runs fn as a tracked worker.
func (l *Lifecycle) Go(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

// WaitWithTimeout waits for all workers. It returns ErrShutdownTimeout if
// they are still running after timeout.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		l.logger.Warn("shutdown timeout, forcing exit", ports.Duration("timeout", timeout))
		return domain.ErrShutdownTimeout
	}
}
