package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/pkg/log"
)

type stateChange struct {
	previous, current State
	reason            string
}

// recordingEmitter captures state changes.
type recordingEmitter struct {
	mu      sync.Mutex
	changes []stateChange
}

func (r *recordingEmitter) OnStateChange(previous, current State, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, stateChange{previous, current, reason})
}

func (r *recordingEmitter) Changes() []stateChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stateChange(nil), r.changes...)
}

func newTestLifecycle(emitter EventEmitter) *Lifecycle {
	return NewLifecycle(log.NewNoopLogger(), emitter)
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{StateCrashed, "Crashed"},
		{State(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestLifecycle_Transitions(t *testing.T) {
	tests := []struct {
		from, to State
		wantErr  error
	}{
		{StateStopped, StateStarting, nil},
		{StateStarting, StateRunning, nil},
		{StateStarting, StateStopping, nil},
		{StateStarting, StateCrashed, nil},
		{StateRunning, StateStopping, nil},
		{StateRunning, StateCrashed, nil},
		{StateStopping, StateStopped, nil},
		{StateStopping, StateCrashed, nil},
		{StateCrashed, StateStarting, nil},

		{StateStopped, StateRunning, domain.ErrNotRunning},
		{StateStopped, StateStopping, domain.ErrNotRunning},
		{StateCrashed, StateRunning, domain.ErrNotRunning},
		{StateCrashed, StateStopped, domain.ErrNotRunning},
		{StateStarting, StateStopped, domain.ErrAlreadyRunning},
		{StateRunning, StateStarting, domain.ErrAlreadyRunning},
		{StateRunning, StateStopped, domain.ErrAlreadyRunning},
		{StateStopping, StateRunning, domain.ErrAlreadyRunning},
		{StateStopping, StateStarting, domain.ErrAlreadyRunning},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			l := newTestLifecycle(nil)
			l.state = tt.from

			err := l.TransitionTo(tt.to, "test")
			if !errors.Is(err, tt.wantErr) || (err == nil) != (tt.wantErr == nil) {
				t.Fatalf("TransitionTo() error = %v, want %v", err, tt.wantErr)
			}
			want := tt.to
			if tt.wantErr != nil {
				want = tt.from
			}
			if got := l.State(); got != want {
				t.Errorf("state = %v, want %v", got, want)
			}
		})
	}
}

func TestLifecycle_EmitsEvents(t *testing.T) {
	emitter := &recordingEmitter{}
	l := newTestLifecycle(emitter)

	_ = l.TransitionTo(StateStarting, "start")
	_ = l.TransitionTo(StateRunning, "listening")
	_ = l.TransitionTo(StateStopped, "invalid")

	got := emitter.Changes()
	want := []stateChange{
		{StateStopped, StateStarting, "start"},
		{StateStarting, StateRunning, "listening"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLifecycle_CanStartCanStop(t *testing.T) {
	tests := []struct {
		state             State
		canStart, canStop bool
	}{
		{StateStopped, true, false},
		{StateStarting, false, true},
		{StateRunning, false, true},
		{StateStopping, false, false},
		{StateCrashed, true, false},
	}
	for _, tt := range tests {
		l := newTestLifecycle(nil)
		l.state = tt.state
		if got := l.CanStart(); got != tt.canStart {
			t.Errorf("%v: CanStart() = %v, want %v", tt.state, got, tt.canStart)
		}
		if got := l.CanStop(); got != tt.canStop {
			t.Errorf("%v: CanStop() = %v, want %v", tt.state, got, tt.canStop)
		}
	}
}

func TestLifecycle_Cancel(t *testing.T) {
	l := newTestLifecycle(nil)
	l.Cancel() // no cancel set yet

	ctx, cancel := context.WithCancel(context.Background())
	l.SetCancel(cancel)
	l.Cancel()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("context not canceled after Cancel()")
	}
}

func TestLifecycle_WaitWithTimeout(t *testing.T) {
	l := newTestLifecycle(nil)
	l.Go(func() { time.Sleep(10 * time.Millisecond) })

	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Fatalf("WaitWithTimeout() = %v, want nil", err)
	}

	release := make(chan struct{})
	l.Go(func() { <-release })
	if err := l.WaitWithTimeout(10 * time.Millisecond); !errors.Is(err, domain.ErrShutdownTimeout) {
		t.Fatalf("WaitWithTimeout() = %v, want ErrShutdownTimeout", err)
	}
	close(release)
}

func TestLifecycle_ConcurrentAccess(t *testing.T) {
	l := newTestLifecycle(nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = l.State()
				_ = l.CanStart()
				_ = l.CanStop()
			}
		}()
		go func() {
			defer wg.Done()
			_ = l.TransitionTo(StateStarting, "test")
			_ = l.TransitionTo(StateRunning, "test")
		}()
	}
	wg.Wait()
	if got := l.State(); got != StateRunning {
		t.Errorf("state = %v, want Running", got)
	}
}
