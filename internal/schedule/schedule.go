package schedule

import (
	"sync/atomic"
	"time"
)

// Task is a scheduled callback that can be cancelled before it runs.
type Task interface {
	Cancel()
}

// Scheduler defers work on the single interactive goroutine.
//
// Callbacks are always executed on the scheduler's own goroutine, never
// concurrently with each other, so code running in them may touch session
// state without locks. AfterFunc and NextFrame must be called from that
// same goroutine.
type Scheduler interface {
	// AfterFunc runs fn once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Task

	// NextFrame runs fn at the start of the next paint cycle.
	NextFrame(fn func()) Task
}

// task is the shared Task implementation.
type task struct {
	fn        func()
	cancelled atomic.Bool
	timer     *time.Timer
}

func (t *task) Cancel() {
	t.cancelled.Store(true)
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *task) run() {
	if t.cancelled.Swap(true) {
		return
	}
	t.fn()
}

// Debouncer coalesces bursts of triggers into one callback that runs once
// the bursts stop for the configured delay. Each trigger advances a
// generation counter; a callback that finds the counter moved on is stale
// and does nothing.
type Debouncer struct {
	s     Scheduler
	delay time.Duration
	gen   uint64
	task  Task
}

// NewDebouncer creates a debouncer on s.
func NewDebouncer(s Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{s: s, delay: delay}
}

// Trigger (re)schedules fn, cancelling any pending callback.
func (d *Debouncer) Trigger(fn func()) {
	d.gen++
	gen := d.gen
	if d.task != nil {
		d.task.Cancel()
	}
	d.task = d.s.AfterFunc(d.delay, func() {
		if gen != d.gen {
			return
		}
		d.task = nil
		fn()
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.gen++
	if d.task != nil {
		d.task.Cancel()
		d.task = nil
	}
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	return d.task != nil
}

// Generation returns the current generation counter.
func (d *Debouncer) Generation() uint64 {
	return d.gen
}

// SetDelay changes the delay used by subsequent triggers.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.delay = delay
}

// Frame coalesces paint requests: at most one callback per frame, and the
// most recent request wins.
type Frame struct {
	s    Scheduler
	task Task
	fn   func()
}

// NewFrame creates a frame slot on s.
func NewFrame(s Scheduler) *Frame {
	return &Frame{s: s}
}

// Request schedules fn for the next frame, replacing any earlier request
// still waiting.
func (f *Frame) Request(fn func()) {
	f.fn = fn
	if f.task != nil {
		return
	}
	f.task = f.s.NextFrame(func() {
		fn := f.fn
		f.task = nil
		f.fn = nil
		if fn != nil {
			fn()
		}
	})
}

// Cancel drops the pending request.
func (f *Frame) Cancel() {
	if f.task != nil {
		f.task.Cancel()
		f.task = nil
	}
	f.fn = nil
}

// Pending reports whether a request is waiting for the next frame.
func (f *Frame) Pending() bool {
	return f.task != nil
}
