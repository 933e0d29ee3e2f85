package flow

// Payload travels with a navigation to the target step.
type Payload struct {
	SelectedMatch string
}

func (p Payload) IsZero() bool {
	return p.SelectedMatch == ""
}

// Router maps a step and payload to the visible view.
type Router interface {
	Navigate(step Step, payload Payload)
	Current() Step
	CurrentPayload() Payload
	Back() bool
	Forward() bool
}

type historyEntry struct {
	step    Step
	payload Payload
}

// History is an in-memory Router with browser-style back/forward.
// Navigating after going back discards the forward entries.
type History struct {
	entries []historyEntry
	cursor  int
}

func NewHistory() *History {
	return &History{cursor: -1}
}

func (h *History) Navigate(step Step, payload Payload) {
	h.entries = append(h.entries[:h.cursor+1], historyEntry{step: step, payload: payload})
	h.cursor = len(h.entries) - 1
}

func (h *History) Current() Step {
	if h.cursor < 0 {
		return StepIntake
	}
	return h.entries[h.cursor].step
}

func (h *History) CurrentPayload() Payload {
	if h.cursor < 0 {
		return Payload{}
	}
	return h.entries[h.cursor].payload
}

func (h *History) Back() bool {
	if h.cursor <= 0 {
		return false
	}
	h.cursor--
	return true
}

func (h *History) Forward() bool {
	if h.cursor >= len(h.entries)-1 {
		return false
	}
	h.cursor++
	return true
}

func (h *History) Len() int {
	return len(h.entries)
}
