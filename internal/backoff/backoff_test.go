package backoff

import (
	"context"
	"testing"
	"time"
)

func TestBackoff_GrowsAndCaps(t *testing.T) {
	b := New(100*time.Millisecond, 350*time.Millisecond)

	want := []time.Duration{100, 200, 350, 350}
	for i, w := range want {
		w *= time.Millisecond
		if b.Current() != w {
			t.Fatalf("step %d: Current() = %v, want %v", i, b.Current(), w)
		}
		d := b.Next()
		if d < w*8/10 || d > w*12/10 {
			t.Errorf("step %d: Next() = %v, want within 20%% of %v", i, d, w)
		}
	}

	b.Reset()
	if b.Current() != 100*time.Millisecond {
		t.Errorf("after Reset Current() = %v", b.Current())
	}
}

func TestBackoff_Defaults(t *testing.T) {
	b := New(0, 0)
	if b.Current() != DefaultInitial {
		t.Errorf("Current() = %v, want %v", b.Current(), DefaultInitial)
	}
}

func TestBackoff_WaitCanceled(t *testing.T) {
	b := New(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if b.Wait(ctx) {
		t.Fatal("Wait() = true on canceled context")
	}
}

func TestBackoff_WaitElapses(t *testing.T) {
	b := New(time.Millisecond, time.Millisecond)
	if !b.Wait(context.Background()) {
		t.Fatal("Wait() = false")
	}
}
