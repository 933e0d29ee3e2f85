package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/pillrx/internal/flow"
)

const (
	scopeIntake     = "step:intake"
	scopeProcessing = "step:processing"
	scopeResults    = "step:results"
	scopeDetail     = "step:detail"
)

const (
	actionQuit        = "quit"
	actionReload      = "reload"
	actionBack        = "back"
	actionForward     = "forward"
	actionScrollUp    = "scroll-up"
	actionScrollDown  = "scroll-down"
	actionSwitchFocus = "switch-focus"
	actionOpen        = "open"
	actionUp          = "up"
	actionDown        = "down"
	actionSelect      = "select"
	actionChat        = "chat"
	actionContinue    = "continue"
	actionSend        = "send"
)

type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

func (r *KeyRegistry) IsAction(msg tea.KeyMsg, action, scope string) bool {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if b.Action != action || !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return true
			}
		}
	}
	return false
}

// normalizeKey maps the space key, which tea reports as " ", to "space".
func normalizeKey(k string) string {
	if k == " " {
		return "space"
	}
	return strings.ToLower(strings.TrimSpace(k))
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

func scopeForStep(step flow.Step) string {
	switch step {
	case flow.StepProcessing:
		return scopeProcessing
	case flow.StepResults:
		return scopeResults
	case flow.StepDetail:
		return scopeDetail
	default:
		return scopeIntake
	}
}

// DefaultKeyBindings lists bindings in footer order. Step-scoped bindings
// come first so the footer leads with what the current step offers.
func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"enter"}, Action: actionOpen, Description: "open path", Scopes: []string{scopeIntake}},
		{Keys: []string{"tab"}, Action: actionSwitchFocus, Description: "path/browse", Scopes: []string{scopeIntake}},
		{Keys: []string{"k", "up"}, Action: actionUp, Description: "up", Scopes: []string{scopeResults}},
		{Keys: []string{"j", "down"}, Action: actionDown, Description: "down", Scopes: []string{scopeResults}},
		{Keys: []string{"space"}, Action: actionSelect, Description: "select", Scopes: []string{scopeResults}},
		{Keys: []string{"enter"}, Action: actionChat, Description: "chat", Scopes: []string{scopeResults}},
		{Keys: []string{"c"}, Action: actionContinue, Description: "continue", Scopes: []string{scopeResults}},
		{Keys: []string{"enter"}, Action: actionSend, Description: "send", Scopes: []string{scopeDetail}},
		{Keys: []string{"esc", "alt+left"}, Action: actionBack, Description: "back", Scopes: []string{scopeProcessing, scopeResults, scopeDetail}},
		{Keys: []string{"alt+left"}, Action: actionBack, Description: "back", Scopes: []string{scopeIntake}},
		{Keys: []string{"alt+right"}, Action: actionForward, Description: "forward", Scopes: []string{"*"}},
		{Keys: []string{"pgup"}, Action: actionScrollUp, Description: "scroll up", Scopes: []string{"*"}},
		{Keys: []string{"pgdown"}, Action: actionScrollDown, Description: "scroll down", Scopes: []string{"*"}},
		{Keys: []string{"ctrl+r"}, Action: actionReload, Description: "reload", Scopes: []string{"*"}},
		{Keys: []string{"q"}, Action: actionQuit, Description: "quit", Scopes: []string{scopeProcessing, scopeResults}},
		{Keys: []string{"ctrl+c"}, Action: actionQuit, Description: "quit", Scopes: []string{"*"}},
	}
}
