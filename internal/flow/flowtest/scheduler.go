// Package flowtest provides a deterministic Scheduler for tests.
package flowtest

import (
	"sort"
	"time"

	"github.com/jask/pillrx/internal/flow"
)

// Scheduler is a manual clock. Scheduled callbacks only run from Advance.
type Scheduler struct {
	now   time.Duration
	seq   int
	tasks []*task
}

type task struct {
	due       time.Duration
	seq       int
	fn        func()
	fired     bool
	cancelled bool
}

func (t *task) Cancel() bool {
	if t.fired || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Schedule(d time.Duration, fn func()) flow.Task {
	s.seq++
	t := &task{due: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward and runs every callback that came due, in
// due order. It returns how many callbacks ran.
func (s *Scheduler) Advance(d time.Duration) int {
	s.now += d
	ran := 0
	for {
		t := s.nextDue()
		if t == nil {
			return ran
		}
		t.fired = true
		t.fn()
		ran++
	}
}

// Pending counts callbacks that are neither run nor cancelled.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}

// Now is the virtual time elapsed since New.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

func (s *Scheduler) nextDue() *task {
	var due []*task
	for _, t := range s.tasks {
		if !t.fired && !t.cancelled && t.due <= s.now {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}
