package flow

import "time"

// Task is a handle to a scheduled callback.
type Task interface {
	// Cancel stops the callback from running. It reports false when the
	// task already ran or was already cancelled.
	Cancel() bool
}

// Scheduler runs fn once after d. Implementations must invoke fn on the
// same event loop that drives the Flow.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}
