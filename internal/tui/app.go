package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jask/pillrx/internal/chat"
	"github.com/jask/pillrx/internal/config"
	"github.com/jask/pillrx/internal/flow"
	"github.com/jask/pillrx/internal/identify"
	"github.com/jask/pillrx/internal/logging"
	"github.com/jask/pillrx/internal/reveal"
	"github.com/jask/pillrx/internal/session"
)

// App hosts the wizard. It owns one session (store, scheduler and flow) at a
// time and the widgets of whichever step is mounted.
type App struct {
	ctx      context.Context
	cfg      config.Config
	deps     Deps
	log      *logrus.Entry
	keys     *KeyRegistry
	renderer Renderer

	// session state, replaced wholesale by reload
	gen   int
	store *session.Store
	sched *loopScheduler
	flow  *flow.Flow

	readSeq    int
	appliedSeq int

	// mounted step view
	mounted    flow.Step
	hasMounted bool
	reveal     *reveal.Animator
	spans      map[string]reveal.Span
	focus      string
	picker     filepicker.Model
	pathInput  textinput.Model
	spinner    spinner.Model
	cursor     int
	conv       *chat.Conversation
	composer   textinput.Model
	chatView   viewport.Model

	body      viewport.Model
	width     int
	height    int
	status    string
	statusErr bool
	quitting  bool
}

// Deps are the App's pluggable collaborators. Nil fields get defaults.
type Deps struct {
	Identifier identify.Identifier
	Responder  chat.Responder
	Renderer   Renderer
	Keys       []KeyBinding
	Log        *logrus.Entry
}

func New(ctx context.Context, cfg config.Config, deps Deps, route flow.Step) *App {
	if deps.Identifier == nil {
		deps.Identifier = identify.NewStatic()
	}
	if deps.Responder == nil {
		deps.Responder = chat.EchoResponder{}
	}
	if deps.Renderer == nil {
		deps.Renderer = NewRenderer()
	}
	if deps.Keys == nil {
		deps.Keys = DefaultKeyBindings()
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		deps:     deps,
		log:      deps.Log.WithField("component", "tui"),
		keys:     NewKeyRegistry(deps.Keys),
		renderer: deps.Renderer,
		body:     viewport.New(0, 0),
	}
	a.startSession(route)
	return a
}

func (a *App) startSession(location flow.Step) {
	a.gen++
	a.store = session.NewStore()
	a.sched = newLoopScheduler()
	a.flow = flow.New(a.ctx, flow.Deps{
		Store:      a.store,
		Scheduler:  a.sched,
		Identifier: a.deps.Identifier,
		Log:        a.deps.Log,
	}, flow.Options{
		ProcessingDelay:  a.cfg.Flow.ProcessingDelay,
		DefaultSelection: a.cfg.Flow.DefaultSelection,
	})
	a.flow.Start(location)
}

func (a *App) Init() tea.Cmd {
	cmd := a.reconcile()
	a.refresh()
	return cmd
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(m.Width, m.Height)
	case tea.KeyMsg:
		cmd, quit := a.handleKey(m)
		if quit {
			a.quitting = true
			a.flow.Dispose()
			return a, tea.Quit
		}
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		a.body, cmd = a.body.Update(m)
		cmds = append(cmds, cmd)
	case taskDueMsg:
		m.task.run()
	case artifactReadMsg:
		a.applyRead(m)
	default:
		cmds = append(cmds, a.updateWidgets(msg))
	}
	cmds = append(cmds, a.reconcile())
	a.refresh()
	cmds = append(cmds, a.sched.drain()...)
	return a, tea.Batch(cmds...)
}

func (a *App) View() string {
	if a.quitting {
		return "Goodbye\n"
	}
	header := renderHeader(a.mounted, a.width)
	status := renderStatus(a.status, a.statusErr, a.width)
	footer := renderFooter(a.keys, a.scope(), a.width)
	body := fitHeight(a.body.View(), a.body.Height)
	view := strings.Join([]string{header, status, body, footer}, "\n")
	view = fitHeight(view, max(1, a.height))
	return appStyle.Width(max(1, a.width)).MaxWidth(max(1, a.width)).Render(view)
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	a.body.Width = max(1, w)
	a.body.Height = max(1, h-3)
	a.chatView.Width = max(10, min(w-6, inputWidth))
	a.pathInput.Width = max(10, min(w-10, inputWidth))
	a.composer.Width = max(10, min(w-10, inputWidth))
}

func (a *App) scope() string {
	return scopeForStep(a.mounted)
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusErr = isErr
}

// ---------------------------------------------------------------------------
// Mounting
// ---------------------------------------------------------------------------

// reconcile mounts the flow's current step if it differs from the one on
// screen. Staying on a step keeps its widgets and reveal state.
func (a *App) reconcile() tea.Cmd {
	cur := a.flow.Current()
	if a.hasMounted && cur == a.mounted {
		return nil
	}
	if a.hasMounted {
		a.unmountView()
	}
	a.mounted, a.hasMounted = cur, true
	return a.mountView(cur)
}

func (a *App) mountView(step flow.Step) tea.Cmd {
	a.reveal = reveal.New(a.cfg.Reveal.Threshold)
	a.reveal.Mount(a.renderer.Elements(step)...)
	a.spans = nil
	a.body.GotoTop()
	a.log.WithField("step", step.String()).Debug("mount")

	switch step {
	case flow.StepIntake:
		a.picker = newPicker(a.cfg.Intake)
		a.pathInput = newPathInput()
		a.pathInput.Width = max(10, min(a.width-10, inputWidth))
		a.focus = focusPath
		return tea.Batch(a.picker.Init(), a.pathInput.Focus())
	case flow.StepProcessing:
		a.focus = ""
		a.spinner = newSpinner()
		return a.spinner.Tick
	case flow.StepResults:
		a.focus = ""
		a.cursor = 0
	case flow.StepDetail:
		payload, err := a.flow.Payload()
		if errors.Is(err, flow.ErrNoSelectionPayload) {
			a.log.WithField("subject", payload.SelectedMatch).Debug("detail without selection, using default")
		}
		a.conv = chat.New(payload.SelectedMatch, a.deps.Responder, a.deps.Log)
		a.chatView = newChatView()
		a.chatView.Width = max(10, min(a.width-6, inputWidth))
		a.conv.OnAppend = func(chat.Message) {
			a.chatView.SetContent(renderMessages(a.conv.Messages()))
			a.chatView.GotoBottom()
		}
		a.composer = newComposer()
		a.composer.Width = max(10, min(a.width-10, inputWidth))
		a.focus = focusComposer
		return a.composer.Focus()
	}
	return nil
}

func (a *App) unmountView() {
	a.reveal.Unmount()
	switch a.mounted {
	case flow.StepIntake:
		a.pathInput.Blur()
	case flow.StepDetail:
		a.composer.Blur()
		a.conv = nil
	}
	a.log.WithField("step", a.mounted.String()).Debug("unmount")
}

// reload discards the session and starts over at the current location,
// which the flow turns into a fresh Intake. Reads still in flight belong to
// the old session and are dropped when they land.
func (a *App) reload() tea.Cmd {
	location := a.flow.Current()
	a.unmountView()
	a.hasMounted = false
	a.flow.Dispose()
	a.startSession(location)
	a.log.WithField("from", location.Route()).Info("session reloaded")
	return a.reconcile()
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func (a *App) snapshot() Snapshot {
	s := Snapshot{
		Step:       a.mounted,
		Artifact:   a.store.Get(),
		Candidates: a.flow.Candidates(),
		Cursor:     a.cursor,
		Selected:   a.flow.Selected(),
		Revealed:   a.reveal.Snapshot(),
		Focus:      a.focus,
		Width:      a.body.Width,
		Widgets:    map[string]string{},
	}
	switch a.mounted {
	case flow.StepIntake:
		s.Widgets[focusPath] = a.pathInput.View()
		s.Widgets[blockPicker] = a.picker.View()
	case flow.StepProcessing:
		s.Widgets[blockSpinner] = a.spinner.View()
	case flow.StepDetail:
		if a.conv != nil {
			s.Subject = a.conv.Subject
			s.Messages = a.conv.Messages()
		}
		s.Widgets[blockChat] = a.chatView.View()
		s.Widgets[blockComposer] = a.composer.View()
	}
	return s
}

// refresh re-renders the mounted step into the body viewport and lets the
// reveal animator observe the visible window. Nothing is observed until the
// terminal size is known.
func (a *App) refresh() {
	if !a.hasMounted {
		return
	}
	content, spans := composeFrame(a.renderer.Render(a.snapshot()))
	a.body.SetContent(content)
	a.spans = spans
	if a.height == 0 {
		return
	}
	revealed := a.reveal.Observe(reveal.LineIntersector{
		Offset: a.body.YOffset,
		Height: a.body.Height,
		Spans:  spans,
	})
	if len(revealed) == 0 {
		return
	}
	a.log.WithField("elements", revealed).Debug("revealed")
	content, _ = composeFrame(a.renderer.Render(a.snapshot()))
	a.body.SetContent(content)
}

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	scope := a.scope()
	switch {
	case a.keys.IsAction(msg, actionQuit, scope):
		return nil, true
	case a.keys.IsAction(msg, actionReload, scope):
		cmd := a.reload()
		a.setStatus("Reloaded", false)
		return cmd, false
	case a.keys.IsAction(msg, actionBack, scope):
		if !a.flow.Back() {
			a.setStatus("Nothing to go back to", false)
		}
		return nil, false
	case a.keys.IsAction(msg, actionForward, scope):
		if !a.flow.Forward() {
			a.setStatus("Nothing to go forward to", false)
		}
		return nil, false
	case a.keys.IsAction(msg, actionScrollUp, scope):
		a.body.HalfViewUp()
		return nil, false
	case a.keys.IsAction(msg, actionScrollDown, scope):
		a.body.HalfViewDown()
		return nil, false
	}

	switch a.mounted {
	case flow.StepIntake:
		return a.handleIntakeKey(msg), false
	case flow.StepResults:
		a.handleResultsKey(msg)
	case flow.StepDetail:
		return a.handleDetailKey(msg), false
	}
	return nil, false
}

func (a *App) handleIntakeKey(msg tea.KeyMsg) tea.Cmd {
	scope := scopeIntake
	// A file dropped on the terminal arrives as a bracketed paste of its path.
	if msg.Paste {
		path := session.CleanDroppedPath(string(msg.Runes))
		if fileExists(path) {
			a.pathInput.SetValue(path)
			return a.readArtifact(path)
		}
	}
	if a.keys.IsAction(msg, actionSwitchFocus, scope) {
		if a.focus == focusPath {
			a.focus = focusPicker
			a.pathInput.Blur()
			return nil
		}
		a.focus = focusPath
		return a.pathInput.Focus()
	}
	if a.focus == focusPath {
		if a.keys.IsAction(msg, actionOpen, scope) {
			path := session.CleanDroppedPath(a.pathInput.Value())
			if path == "" {
				a.setStatus("Enter the path of an image", true)
				return nil
			}
			return a.readArtifact(path)
		}
		var cmd tea.Cmd
		a.pathInput, cmd = a.pathInput.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	if ok, path := a.picker.DidSelectFile(msg); ok {
		return tea.Batch(cmd, a.readArtifact(path))
	}
	if ok, path := a.picker.DidSelectDisabledFile(msg); ok {
		a.setStatus(filepath.Base(path)+" is not a jpg or png", true)
	}
	return cmd
}

func (a *App) handleResultsKey(msg tea.KeyMsg) {
	scope := scopeResults
	cands := a.flow.Candidates()
	switch {
	case a.keys.IsAction(msg, actionUp, scope):
		if a.cursor > 0 {
			a.cursor--
		}
		a.followCursor()
	case a.keys.IsAction(msg, actionDown, scope):
		if a.cursor < len(cands)-1 {
			a.cursor++
		}
		a.followCursor()
	case a.keys.IsAction(msg, actionSelect, scope):
		if a.cursor < len(cands) {
			if err := a.flow.Select(cands[a.cursor].PrimaryName); err == nil {
				a.setStatus("Selected "+cands[a.cursor].PrimaryName, false)
			}
		}
	case a.keys.IsAction(msg, actionChat, scope):
		if a.cursor < len(cands) {
			_ = a.flow.Choose(cands[a.cursor])
			return
		}
		_ = a.flow.Continue()
	case a.keys.IsAction(msg, actionContinue, scope):
		_ = a.flow.Continue()
	}
}

func (a *App) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	if a.keys.IsAction(msg, actionSend, scopeDetail) {
		if a.conv == nil {
			return nil
		}
		err := a.conv.Send(a.ctx, a.composer.Value())
		if errors.Is(err, chat.ErrEmptyMessageIgnored) {
			a.log.Debug("empty message ignored")
			return nil
		}
		a.composer.Reset()
		return nil
	}
	var cmd tea.Cmd
	a.composer, cmd = a.composer.Update(msg)
	return cmd
}

// updateWidgets routes non-input messages (blink, spinner ticks, directory
// listings) to the mounted step's widgets.
func (a *App) updateWidgets(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	switch a.mounted {
	case flow.StepIntake:
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		cmds = append(cmds, cmd)
		a.pathInput, cmd = a.pathInput.Update(msg)
		cmds = append(cmds, cmd)
	case flow.StepProcessing:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case flow.StepDetail:
		var cmd tea.Cmd
		a.composer, cmd = a.composer.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) followCursor() {
	sp, ok := a.spans[blockMatches]
	if !ok {
		return
	}
	line := sp.Top + a.cursor*matchLines
	switch {
	case line < a.body.YOffset:
		a.body.SetYOffset(line)
	case line+matchLines > a.body.YOffset+a.body.Height:
		a.body.SetYOffset(line + matchLines - a.body.Height)
	}
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

func (a *App) readArtifact(path string) tea.Cmd {
	a.readSeq++
	seq, gen, ctx := a.readSeq, a.gen, a.ctx
	a.setStatus("Reading "+filepath.Base(path)+"…", false)
	return func() tea.Msg {
		art, err := session.ReadFile(ctx, path)
		return artifactReadMsg{seq: seq, gen: gen, path: path, artifact: art, err: err}
	}
}

// applyRead submits a finished read. The last read to finish wins, even if
// an earlier-issued read finishes after a later one.
func (a *App) applyRead(msg artifactReadMsg) {
	entry := a.log.WithFields(logrus.Fields{"path": msg.path, "seq": msg.seq})
	if msg.gen != a.gen {
		entry.Debug("dropping read from a previous session")
		return
	}
	if msg.err != nil {
		entry.WithError(msg.err).Warn("read failed")
		if errors.Is(msg.err, session.ErrNoArtifact) {
			a.setStatus(filepath.Base(msg.path)+" is empty", true)
			return
		}
		a.setStatus(fmt.Sprintf("Could not read %s: %v", filepath.Base(msg.path), msg.err), true)
		return
	}
	if msg.seq < a.appliedSeq {
		entry.WithField("applied", a.appliedSeq).Debug("read completed out of order")
	}
	a.appliedSeq = max(a.appliedSeq, msg.seq)
	if err := a.flow.Submit(msg.artifact); err != nil {
		a.setStatus(err.Error(), true)
		return
	}
	a.setStatus(fmt.Sprintf("Loaded %s (%s)", msg.artifact.Name, msg.artifact.MimeType), false)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
