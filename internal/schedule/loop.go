package schedule

import (
	"context"
	"sync"
	"time"
)

// Loop is the real single-goroutine executor. Timers fire on runtime
// goroutines but only post their callbacks into the loop's queue; Run
// executes queued callbacks and frame tasks one at a time.
type Loop struct {
	queue         chan func()
	frameInterval time.Duration
	frames        []*task

	mu      sync.Mutex
	running bool
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithFrameInterval sets the paint-cycle interval.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// WithQueueSize sets the capacity of the callback queue.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.queue = make(chan func(), n)
		}
	}
}

// NewLoop creates a loop. Call Run to start executing callbacks.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		queue:         make(chan func(), 256),
		frameInterval: 16 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Post queues fn for execution on the loop goroutine. It is safe to call
// from any goroutine and is how external events enter the loop.
func (l *Loop) Post(fn func()) {
	l.queue <- fn
}

// Do runs fn on the loop goroutine and waits for it to finish, or for ctx
// to be cancelled.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case l.queue <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc implements Scheduler.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	t := &task{fn: fn}
	t.timer = time.AfterFunc(d, func() {
		if t.cancelled.Load() {
			return
		}
		l.Post(t.run)
	})
	return t
}

// NextFrame implements Scheduler.
func (l *Loop) NextFrame(fn func()) Task {
	t := &task{fn: fn}
	l.frames = append(l.frames, t)
	return t
}

// Run executes callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		case <-ticker.C:
			l.flushFrames()
		}
	}
}

// flushFrames runs the tasks queued for this frame. Tasks queued while
// flushing wait for the next frame.
func (l *Loop) flushFrames() {
	if len(l.frames) == 0 {
		return
	}
	frames := l.frames
	l.frames = nil
	for _, t := range frames {
		t.run()
	}
}
