package schedule

import (
	"context"
	"testing"
	"time"
)

// ==========================================================================
// Manual Tests
// ==========================================================================

func TestManualAdvanceOrder(t *testing.T) {
	m := NewManual()
	var order []int
	m.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, 2) })

	m.Advance(5 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("expected nothing to run yet, got %v", order)
	}

	m.Advance(30 * time.Millisecond)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected [1 2 3], got %v", order)
	}
	if m.Now() != 35*time.Millisecond {
		t.Errorf("expected now 35ms, got %v", m.Now())
	}
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	ran := false
	task := m.AfterFunc(10*time.Millisecond, func() { ran = true })
	task.Cancel()
	m.Advance(time.Second)
	if ran {
		t.Error("cancelled timer should not run")
	}
	if m.PendingTimers() != 0 {
		t.Errorf("expected 0 pending timers, got %d", m.PendingTimers())
	}
}

func TestManualNestedTimer(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	m.AfterFunc(10*time.Millisecond, func() {
		at = append(at, m.Now())
		m.AfterFunc(10*time.Millisecond, func() { at = append(at, m.Now()) })
	})
	m.Advance(25 * time.Millisecond)
	if len(at) != 2 || at[0] != 10*time.Millisecond || at[1] != 20*time.Millisecond {
		t.Errorf("expected [10ms 20ms], got %v", at)
	}
}

func TestManualFrameDefersNested(t *testing.T) {
	m := NewManual()
	var order []string
	m.NextFrame(func() {
		order = append(order, "a")
		m.NextFrame(func() { order = append(order, "b") })
	})
	m.Frame()
	if len(order) != 1 {
		t.Fatalf("expected nested frame to wait, got %v", order)
	}
	m.Frame()
	if len(order) != 2 || order[1] != "b" {
		t.Errorf("expected [a b], got %v", order)
	}
}

func TestManualSettle(t *testing.T) {
	m := NewManual()
	count := 0
	m.AfterFunc(time.Second, func() {
		count++
		m.NextFrame(func() { count++ })
	})
	m.Settle()
	if count != 2 {
		t.Errorf("expected 2 callbacks, got %d", count)
	}
}

// ==========================================================================
// Debouncer Tests
// ==========================================================================

func TestDebouncerCoalesces(t *testing.T) {
	m := NewManual()
	d := NewDebouncer(m, 250*time.Millisecond)
	fired := 0

	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired++ })
		m.Advance(100 * time.Millisecond)
	}
	if fired != 0 {
		t.Fatalf("expected no fire during burst, got %d", fired)
	}
	if !d.Pending() {
		t.Error("expected pending callback")
	}

	m.Advance(250 * time.Millisecond)
	if fired != 1 {
		t.Errorf("expected exactly one fire, got %d", fired)
	}
	if d.Pending() {
		t.Error("expected no pending callback after fire")
	}
}

func TestDebouncerCancel(t *testing.T) {
	m := NewManual()
	d := NewDebouncer(m, 50*time.Millisecond)
	fired := false
	d.Trigger(func() { fired = true })
	gen := d.Generation()
	d.Cancel()
	m.Advance(time.Second)
	if fired {
		t.Error("cancelled debounce should not fire")
	}
	if d.Generation() <= gen {
		t.Error("cancel should advance the generation")
	}
}

func TestDebouncerLatestWins(t *testing.T) {
	m := NewManual()
	d := NewDebouncer(m, 10*time.Millisecond)
	got := ""
	d.Trigger(func() { got = "first" })
	d.Trigger(func() { got = "second" })
	m.Advance(10 * time.Millisecond)
	if got != "second" {
		t.Errorf("expected %q, got %q", "second", got)
	}
}

func TestDebouncerSetDelay(t *testing.T) {
	m := NewManual()
	d := NewDebouncer(m, 10*time.Millisecond)
	d.SetDelay(100 * time.Millisecond)
	fired := false
	d.Trigger(func() { fired = true })
	m.Advance(50 * time.Millisecond)
	if fired {
		t.Error("should not fire before new delay")
	}
	m.Advance(50 * time.Millisecond)
	if !fired {
		t.Error("should fire after new delay")
	}
}

// ==========================================================================
// Frame Tests
// ==========================================================================

func TestFrameLatestRequestWins(t *testing.T) {
	m := NewManual()
	f := NewFrame(m)
	var got []string
	f.Request(func() { got = append(got, "a") })
	f.Request(func() { got = append(got, "b") })
	if m.PendingFrames() != 1 {
		t.Errorf("expected 1 queued frame task, got %d", m.PendingFrames())
	}
	m.Frame()
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("expected [b], got %v", got)
	}
	if f.Pending() {
		t.Error("expected no pending request")
	}
}

func TestFrameCancel(t *testing.T) {
	m := NewManual()
	f := NewFrame(m)
	ran := false
	f.Request(func() { ran = true })
	f.Cancel()
	m.Frame()
	if ran {
		t.Error("cancelled frame request should not run")
	}
}

// ==========================================================================
// Loop Tests
// ==========================================================================

func TestLoopRunsPostedAndTimers(t *testing.T) {
	l := NewLoop(WithFrameInterval(time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
	}()

	l.Post(func() {
		l.AfterFunc(time.Millisecond, func() {
			l.NextFrame(func() { close(done) })
		})
	})

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timed out waiting for frame callback")
	}
}

func TestLoopDo(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() {
		_ = l.Run(ctx)
	}()

	value := 0
	if err := l.Do(ctx, func() { value = 42 }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 42 {
		t.Errorf("expected 42, got %d", value)
	}
}
