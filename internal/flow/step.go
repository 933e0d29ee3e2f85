package flow

import "strings"

// Step is one page of the wizard.
type Step int

const (
	StepIntake Step = iota
	StepProcessing
	StepResults
	StepDetail
)

var stepNames = [...]string{"intake", "processing", "results", "detail"}

var stepRoutes = [...]string{"/", "/processing", "/results", "/detail"}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// Route is the address a step is reachable at.
func (s Step) Route() string {
	if s < 0 || int(s) >= len(stepRoutes) {
		return ""
	}
	return stepRoutes[s]
}

// ParseStep accepts a route ("/results") or a bare step name ("results").
// Unknown input reports false.
func ParseStep(raw string) (Step, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return StepIntake, true
	}
	for i := range stepRoutes {
		if v == stepRoutes[i] || v == stepNames[i] || v == "/"+stepNames[i] {
			return Step(i), true
		}
	}
	return StepIntake, false
}
