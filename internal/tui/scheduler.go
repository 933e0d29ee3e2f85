package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/pillrx/internal/flow"
)

// taskDueMsg is delivered when a scheduled task's delay has elapsed.
type taskDueMsg struct {
	task *loopTask
}

type loopTask struct {
	fn        func()
	cancelled bool
	done      bool
}

func (t *loopTask) Cancel() bool {
	if t.done || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

func (t *loopTask) run() {
	if t.done || t.cancelled {
		return
	}
	t.done = true
	t.fn()
}

// loopScheduler runs tasks on the Bubble Tea event loop. Schedule only queues
// a tick command; the App drains the queue after each Update so the callback
// runs inside Update, never concurrently with it.
type loopScheduler struct {
	queued []tea.Cmd
	tasks  []*loopTask
}

func newLoopScheduler() *loopScheduler {
	return &loopScheduler{}
}

func (s *loopScheduler) Schedule(d time.Duration, fn func()) flow.Task {
	t := &loopTask{fn: fn}
	s.tasks = append(s.armed(), t)
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg {
		return taskDueMsg{task: t}
	}))
	return t
}

func (s *loopScheduler) drain() []tea.Cmd {
	q := s.queued
	s.queued = nil
	return q
}

// armed returns tasks that have neither fired nor been cancelled.
func (s *loopScheduler) armed() []*loopTask {
	out := make([]*loopTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.done && !t.cancelled {
			out = append(out, t)
		}
	}
	return out
}
