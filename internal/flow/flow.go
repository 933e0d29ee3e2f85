// Package flow is the wizard's navigation state machine.
//
// Steps run Intake -> Processing -> Results -> Detail. Intake advances when an
// artifact is submitted, Processing advances on a single-shot timer, Results
// advances on an explicit choice. A fresh start always lands on Intake,
// whatever address was requested, because no session state survives a
// restart.
package flow

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jask/pillrx/internal/identify"
	"github.com/jask/pillrx/internal/logging"
	"github.com/jask/pillrx/internal/session"
)

const (
	DefaultProcessingDelay = 3 * time.Second
	DefaultSelection       = "Benadryl"
)

var (
	// ErrNoSelectionPayload reports that Detail was reached without a
	// selected match; the default selection is used instead.
	ErrNoSelectionPayload = errors.New("no match selected")
	// ErrStepMismatch rejects an action the current step does not offer.
	ErrStepMismatch = errors.New("action not available on this step")
)

type Options struct {
	ProcessingDelay  time.Duration
	DefaultSelection string
}

func (o Options) withDefaults() Options {
	if o.ProcessingDelay <= 0 {
		o.ProcessingDelay = DefaultProcessingDelay
	}
	if o.DefaultSelection == "" {
		o.DefaultSelection = DefaultSelection
	}
	return o
}

// Deps are the collaborators a Flow drives. Scheduler is required; the rest
// fall back to in-memory defaults.
type Deps struct {
	Router     Router
	Store      *session.Store
	Scheduler  Scheduler
	Identifier identify.Identifier
	Log        *logrus.Entry
}

type Flow struct {
	ctx        context.Context
	router     Router
	store      *session.Store
	scheduler  Scheduler
	identifier identify.Identifier
	opts       Options
	log        *logrus.Entry

	mounted    Step
	hasMounted bool
	pending    Task
	candidates []identify.Candidate
	selected   string
}

func New(ctx context.Context, deps Deps, opts Options) *Flow {
	if deps.Scheduler == nil {
		panic("flow: nil Scheduler")
	}
	if deps.Router == nil {
		deps.Router = NewHistory()
	}
	if deps.Store == nil {
		deps.Store = session.NewStore()
	}
	if deps.Identifier == nil {
		deps.Identifier = identify.NewStatic()
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	return &Flow{
		ctx:        ctx,
		router:     deps.Router,
		store:      deps.Store,
		scheduler:  deps.Scheduler,
		identifier: deps.Identifier,
		opts:       opts.withDefaults(),
		log:        deps.Log.WithField("component", "flow"),
	}
}

// Start opens the flow at the requested location. Anything other than Intake
// is forced back to Intake.
func (f *Flow) Start(location Step) Step {
	if location != StepIntake {
		f.log.WithField("requested", location.Route()).Info("start outside intake, forcing reset")
	}
	f.navigate(StepIntake, Payload{})
	return f.Current()
}

// Submit stores the artifact and moves to Processing. The store write
// happens before navigation so every later step reads the new artifact.
func (f *Flow) Submit(artifact session.ImageArtifact) error {
	if artifact.IsEmpty() {
		return session.ErrNoArtifact
	}
	f.store.Set(artifact)
	f.log.WithFields(logrus.Fields{
		"artifact": artifact.ID,
		"name":     artifact.Name,
		"mime":     artifact.MimeType,
		"bytes":    artifact.Size(),
	}).Info("artifact submitted")
	f.navigate(StepProcessing, Payload{})
	return nil
}

// Select records a candidate without leaving Results.
func (f *Flow) Select(name string) error {
	if f.Current() != StepResults {
		return ErrStepMismatch
	}
	f.selected = name
	return nil
}

// Choose selects a candidate and continues to Detail.
func (f *Flow) Choose(c identify.Candidate) error {
	if err := f.Select(c.PrimaryName); err != nil {
		return err
	}
	return f.Continue()
}

// Continue moves from Results to Detail carrying the selection, if any.
func (f *Flow) Continue() error {
	if f.Current() != StepResults {
		return ErrStepMismatch
	}
	if f.selected == "" {
		f.log.WithError(ErrNoSelectionPayload).WithField("default", f.opts.DefaultSelection).Info("continuing without selection")
	}
	f.navigate(StepDetail, Payload{SelectedMatch: f.selected})
	return nil
}

func (f *Flow) Back() bool {
	if !f.router.Back() {
		return false
	}
	f.settle()
	return true
}

func (f *Flow) Forward() bool {
	if !f.router.Forward() {
		return false
	}
	f.settle()
	return true
}

// Payload returns the active step's payload. A missing selection resolves to
// the default selection together with ErrNoSelectionPayload.
func (f *Flow) Payload() (Payload, error) {
	p := f.router.CurrentPayload()
	if p.IsZero() {
		return Payload{SelectedMatch: f.opts.DefaultSelection}, ErrNoSelectionPayload
	}
	return p, nil
}

func (f *Flow) Current() Step {
	return f.router.Current()
}

func (f *Flow) Store() *session.Store {
	return f.store
}

func (f *Flow) Selected() string {
	return f.selected
}

func (f *Flow) Candidates() []identify.Candidate {
	return slices.Clone(f.candidates)
}

// Pending reports whether the Processing timer is armed.
func (f *Flow) Pending() bool {
	return f.pending != nil
}

// Dispose unmounts the active step, cancelling any pending timer.
func (f *Flow) Dispose() {
	if f.hasMounted {
		f.unmount(f.mounted)
		f.hasMounted = false
	}
}

// navigate pushes step unless the router is already there with the same
// payload, so a repeated Submit does not leave a dead Back entry.
func (f *Flow) navigate(step Step, payload Payload) {
	if f.hasMounted && f.router.Current() == step && f.router.CurrentPayload() == payload {
		f.settle()
		return
	}
	f.router.Navigate(step, payload)
	f.settle()
}

// settle mounts the router's current step if it differs from the mounted one.
// Navigating to the already-mounted step keeps its state, timer included.
func (f *Flow) settle() {
	cur := f.router.Current()
	if f.hasMounted && cur == f.mounted {
		return
	}
	prev := f.mounted
	if f.hasMounted {
		f.unmount(prev)
	}
	f.mounted, f.hasMounted = cur, true
	f.mount(cur)
	f.log.WithFields(logrus.Fields{"from": prev.String(), "to": cur.String()}).Debug("step transition")
}

func (f *Flow) mount(step Step) {
	switch step {
	case StepProcessing:
		f.pending = f.scheduler.Schedule(f.opts.ProcessingDelay, f.processingElapsed)
	case StepResults:
		f.selected = ""
	}
}

func (f *Flow) unmount(step Step) {
	if step == StepProcessing && f.pending != nil {
		if f.pending.Cancel() {
			f.log.Debug("processing timer cancelled")
		}
		f.pending = nil
	}
}

func (f *Flow) processingElapsed() {
	f.pending = nil
	if f.Current() != StepProcessing {
		return
	}
	artifact := f.store.Get()
	candidates, err := f.identifier.Identify(f.ctx, artifact)
	if err != nil {
		f.log.WithError(err).Warn("identification failed, showing no candidates")
		candidates = nil
	}
	f.candidates = candidates
	f.navigate(StepResults, Payload{})
}
