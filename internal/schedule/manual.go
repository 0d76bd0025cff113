package schedule

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by a virtual clock. Nothing
// runs until Advance or Frame is called, which makes debounce and paint
// ordering testable without sleeping.
type Manual struct {
	now    time.Duration
	seq    uint64
	timers []*manualTimer
	frames []*task
}

type manualTimer struct {
	due time.Duration
	seq uint64
	t   *task
}

// NewManual creates a manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	return m.now
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Task {
	t := &task{fn: fn}
	m.seq++
	m.timers = append(m.timers, &manualTimer{due: m.now + d, seq: m.seq, t: t})
	return t
}

// NextFrame implements Scheduler.
func (m *Manual) NextFrame(fn func()) Task {
	t := &task{fn: fn}
	m.frames = append(m.frames, t)
	return t
}

// Advance moves the clock forward by d, running every timer that becomes
// due in order of due time. Timers scheduled by callbacks run too if they
// fall within the window.
func (m *Manual) Advance(d time.Duration) {
	end := m.now + d
	for {
		next := m.nextDue(end)
		if next == nil {
			break
		}
		m.now = next.due
		next.t.run()
	}
	m.now = end
}

func (m *Manual) nextDue(limit time.Duration) *manualTimer {
	m.compact()
	if len(m.timers) == 0 {
		return nil
	}
	sort.Slice(m.timers, func(i, j int) bool {
		if m.timers[i].due != m.timers[j].due {
			return m.timers[i].due < m.timers[j].due
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	first := m.timers[0]
	if first.due > limit {
		return nil
	}
	m.timers = m.timers[1:]
	return first
}

func (m *Manual) compact() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.t.cancelled.Load() {
			live = append(live, t)
		}
	}
	m.timers = live
}

// Frame runs the tasks queued for the current frame.
func (m *Manual) Frame() {
	frames := m.frames
	m.frames = nil
	for _, t := range frames {
		t.run()
	}
}

// PendingTimers returns the number of live timers.
func (m *Manual) PendingTimers() int {
	m.compact()
	return len(m.timers)
}

// PendingFrames returns the number of frame tasks waiting, cancelled ones
// included.
func (m *Manual) PendingFrames() int {
	return len(m.frames)
}

// Settle runs timers and frames until nothing is left, advancing the clock
// as far as needed.
func (m *Manual) Settle() {
	for i := 0; i < 1000; i++ {
		m.Frame()
		m.compact()
		if len(m.timers) == 0 && len(m.frames) == 0 {
			return
		}
		if len(m.timers) > 0 {
			latest := m.timers[0].due
			for _, t := range m.timers {
				if t.due > latest {
					latest = t.due
				}
			}
			if latest > m.now {
				m.Advance(latest - m.now)
			} else {
				m.Advance(0)
			}
		}
	}
}
