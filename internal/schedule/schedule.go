// Package schedule runs periodic work against simulated time. The host loop
// advances the clock; tasks fire at their declared period regardless of
// the host's tick rate.
package schedule

import "time"

// TickDuration is one host simulation tick.
const TickDuration = 50 * time.Millisecond

// Ticks converts a tick count to simulated time.
func Ticks(n int) time.Duration { return time.Duration(n) * TickDuration }

// Scheduler owns a simulated clock and its periodic tasks. It is not safe
// for concurrent use; the owner's tick goroutine drives it.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	tasks []*Task
}

// Task is a periodic closure registered with Every.
type Task struct {
	period    time.Duration
	next      time.Duration
	seq       uint64
	fn        func(now time.Duration)
	cancelled bool
}

// New returns a Scheduler at time zero.
func New() *Scheduler { return &Scheduler{} }

// Now is the current simulated time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Every registers fn to run each period, first at Now()+period. A
// non-positive period is treated as one tick.
func (s *Scheduler) Every(period time.Duration, fn func(now time.Duration)) *Task {
	if period <= 0 {
		period = TickDuration
	}
	s.seq++
	t := &Task{period: period, next: s.now + period, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Cancel stops the task. Safe to call from inside its own closure and more
// than once.
func (t *Task) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool { return t.cancelled }

// Len is the number of live tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by dt, running every task that falls due
// in order of due time, then registration order. A task due several times
// within dt runs once per period.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		return
	}
	target := s.now + dt
	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		s.now = t.next
		t.next += t.period
		t.fn(s.now)
	}
	s.now = target
	s.compact()
}

func (s *Scheduler) nextDue(target time.Duration) *Task {
	var best *Task
	for _, t := range s.tasks {
		if t.cancelled || t.next > target {
			continue
		}
		if best == nil || t.next < best.next || (t.next == best.next && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *Scheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}
