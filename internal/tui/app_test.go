package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/pillrx/internal/config"
	"github.com/jask/pillrx/internal/flow"
	"github.com/jask/pillrx/internal/identify"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Flow:   config.FlowConfig{ProcessingDelay: 3 * time.Second, DefaultSelection: "Benadryl"},
		Reveal: config.RevealConfig{Threshold: 0.25},
		Intake: config.IntakeConfig{StartDir: t.TempDir(), AllowedTypes: []string{".png", ".jpg"}},
	}
}

func newTestApp(t *testing.T, route flow.Step) *App {
	t.Helper()
	a := New(context.Background(), testConfig(t), Deps{}, route)
	a.Init()
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return a
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "alt+left":
		return tea.KeyMsg{Type: tea.KeyLeft, Alt: true}
	case "alt+right":
		return tea.KeyMsg{Type: tea.KeyRight, Alt: true}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

// submitPath types a path into the intake input and delivers the read.
func submitPath(t *testing.T, a *App, path string) {
	t.Helper()
	a.pathInput.SetValue(path)
	cmd := a.handleIntakeKey(keyMsg("enter"))
	if cmd == nil {
		t.Fatalf("expected a read command for %q", path)
	}
	a.Update(cmd())
}

func fireTimer(t *testing.T, a *App) {
	t.Helper()
	armed := a.sched.armed()
	if len(armed) != 1 {
		t.Fatalf("expected exactly one armed timer, got %d", len(armed))
	}
	a.Update(taskDueMsg{task: armed[0]})
}

func toResults(t *testing.T, a *App) {
	t.Helper()
	submitPath(t, a, writeImage(t, "pill.png"))
	fireTimer(t, a)
	if a.mounted != flow.StepResults {
		t.Fatalf("expected results, got %s", a.mounted)
	}
}

func TestStartOnDeepRouteShowsIntake(t *testing.T) {
	a := newTestApp(t, flow.StepDetail)
	if a.mounted != flow.StepIntake || a.flow.Current() != flow.StepIntake {
		t.Fatalf("expected intake, got mounted=%s flow=%s", a.mounted, a.flow.Current())
	}
	if !a.store.Get().IsEmpty() {
		t.Fatalf("expected empty store on start")
	}
}

func TestReadSubmitsAndStartsProcessing(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	submitPath(t, a, writeImage(t, "pill.png"))
	if a.mounted != flow.StepProcessing {
		t.Fatalf("expected processing, got %s", a.mounted)
	}
	got := a.store.Get()
	if got.Name != "pill.png" || got.MimeType != "image/png" {
		t.Fatalf("unexpected artifact %q %q", got.Name, got.MimeType)
	}
	if n := len(a.sched.armed()); n != 1 {
		t.Fatalf("expected one armed timer, got %d", n)
	}
	if !strings.Contains(a.status, "pill.png") {
		t.Fatalf("expected status to name the file, got %q", a.status)
	}
}

func TestTimerAdvancesToResults(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	if n := len(a.flow.Candidates()); n != len(identify.DefaultMatches) {
		t.Fatalf("expected %d candidates, got %d", len(identify.DefaultMatches), n)
	}
	if a.cursor != 0 {
		t.Fatalf("expected cursor reset, got %d", a.cursor)
	}
}

func TestBackFromProcessingCancelsTimer(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	submitPath(t, a, writeImage(t, "pill.png"))
	task := a.sched.armed()[0]
	a.Update(keyMsg("esc"))
	if a.mounted != flow.StepIntake {
		t.Fatalf("expected intake after back, got %s", a.mounted)
	}
	if n := len(a.sched.armed()); n != 0 {
		t.Fatalf("expected timer cancelled, %d still armed", n)
	}
	a.Update(taskDueMsg{task: task})
	if a.mounted != flow.StepIntake {
		t.Fatalf("stale timer moved the flow to %s", a.mounted)
	}
}

func TestReloadResetsSession(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	submitPath(t, a, writeImage(t, "pill.png"))
	stale := a.sched.armed()[0]
	a.Update(keyMsg("ctrl+r"))
	if a.mounted != flow.StepIntake {
		t.Fatalf("expected intake after reload, got %s", a.mounted)
	}
	if !a.store.Get().IsEmpty() {
		t.Fatalf("expected empty store after reload")
	}
	a.Update(taskDueMsg{task: stale})
	if a.mounted != flow.StepIntake {
		t.Fatalf("timer from previous session moved the flow to %s", a.mounted)
	}
}

func TestReadFromPreviousSessionIsDropped(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	a.pathInput.SetValue(writeImage(t, "late.png"))
	cmd := a.handleIntakeKey(keyMsg("enter"))
	a.Update(keyMsg("ctrl+r"))
	a.Update(cmd())
	if a.mounted != flow.StepIntake || !a.store.Get().IsEmpty() {
		t.Fatalf("late read leaked into new session: step=%s", a.mounted)
	}
}

func TestLastCompletedReadWins(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	first := a.readArtifact(writeImage(t, "first.png"))
	second := a.readArtifact(writeImage(t, "second.png"))
	a.Update(second())
	a.Update(first())
	if got := a.store.Get().Name; got != "first.png" {
		t.Fatalf("expected last completed read to win, got %q", got)
	}
	if a.mounted != flow.StepProcessing {
		t.Fatalf("expected processing, got %s", a.mounted)
	}
	if n := len(a.sched.armed()); n != 1 {
		t.Fatalf("expected a single timer, got %d", n)
	}
	a.Update(keyMsg("esc"))
	if a.mounted != flow.StepIntake {
		t.Fatalf("expected one back to reach intake, got %s", a.mounted)
	}
}

func TestEmptyFileStaysOnIntake(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	submitPath(t, a, path)
	if a.mounted != flow.StepIntake {
		t.Fatalf("expected intake, got %s", a.mounted)
	}
	if !a.statusErr {
		t.Fatalf("expected error status, got %q", a.status)
	}
}

func TestDroppedPathIsReadImmediately(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	path := writeImage(t, "dropped.png")
	cmd := a.handleIntakeKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'" + path + "'"), Paste: true})
	if cmd == nil {
		t.Fatalf("expected paste of an existing file to start a read")
	}
	a.Update(cmd())
	if got := a.store.Get().Name; got != "dropped.png" {
		t.Fatalf("expected dropped.png, got %q", got)
	}
}

func TestChooseOpensDetailWithSubject(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	a.Update(keyMsg("down"))
	a.Update(keyMsg("down"))
	a.Update(keyMsg("enter"))
	if a.mounted != flow.StepDetail {
		t.Fatalf("expected detail, got %s", a.mounted)
	}
	want := identify.DefaultMatches[2].PrimaryName
	if a.conv == nil || a.conv.Subject != want {
		t.Fatalf("expected subject %q", want)
	}
}

func TestChosenRowNameIsDetailSubject(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	a.Update(keyMsg("down"))
	a.Update(keyMsg("enter"))
	if a.mounted != flow.StepDetail {
		t.Fatalf("expected detail, got %s", a.mounted)
	}
	if a.conv.Subject != "Definitely Benadryl" {
		t.Fatalf("expected subject of the shown row, got %q", a.conv.Subject)
	}
	p, err := a.flow.Payload()
	if err != nil || p.SelectedMatch != "Definitely Benadryl" {
		t.Fatalf("payload = %q, %v", p.SelectedMatch, err)
	}
}

func TestContinueWithoutSelectionUsesDefault(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	a.Update(keyMsg("c"))
	if a.mounted != flow.StepDetail {
		t.Fatalf("expected detail, got %s", a.mounted)
	}
	if a.conv.Subject != "Benadryl" {
		t.Fatalf("expected default subject, got %q", a.conv.Subject)
	}
}

func TestSelectThenContinue(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	a.Update(keyMsg("down"))
	a.Update(keyMsg("down"))
	a.Update(keyMsg("space"))
	if a.mounted != flow.StepResults {
		t.Fatalf("select should not navigate, got %s", a.mounted)
	}
	a.Update(keyMsg("c"))
	if want := identify.DefaultMatches[2].PrimaryName; a.conv.Subject != want {
		t.Fatalf("expected %q, got %q", want, a.conv.Subject)
	}
}

func TestChatEchoesAndIgnoresBlank(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	a.Update(keyMsg("c"))

	a.Update(keyMsg("   "))
	a.Update(keyMsg("enter"))
	if n := a.conv.Len(); n != 0 {
		t.Fatalf("blank message should be ignored, got %d messages", n)
	}

	a.composer.Reset()
	a.Update(keyMsg("hi"))
	a.Update(keyMsg("enter"))
	msgs := a.conv.Messages()
	if len(msgs) != 2 || msgs[0].Text != "hi" || msgs[1].Text != "hi" {
		t.Fatalf("expected echo pair, got %+v", msgs)
	}
	if a.composer.Value() != "" {
		t.Fatalf("expected composer cleared, got %q", a.composer.Value())
	}
	if !strings.Contains(a.chatView.View(), "hi") {
		t.Fatalf("expected chat view to show the latest message")
	}
}

func TestChatStaysScrolledToLatest(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	a.Update(keyMsg("c"))

	for i := 0; i < 12; i++ {
		a.Update(keyMsg(fmt.Sprintf("msg%02d", i)))
		a.Update(keyMsg("enter"))
	}
	if n := a.conv.Len(); n != 24 {
		t.Fatalf("expected 24 messages, got %d", n)
	}
	if a.chatView.TotalLineCount() <= chatHeight {
		t.Fatalf("expected the chat to overflow its viewport, got %d lines", a.chatView.TotalLineCount())
	}
	if !a.chatView.AtBottom() {
		t.Fatalf("expected chat scrolled to the latest message")
	}
	if !strings.Contains(a.chatView.View(), "msg11") {
		t.Fatalf("expected latest message visible")
	}
	if strings.Contains(a.chatView.View(), "msg00") {
		t.Fatalf("expected oldest message scrolled out of view")
	}
}

func TestBackFromDetailKeepsArtifact(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	a.Update(keyMsg("enter"))
	a.Update(keyMsg("esc"))
	if a.mounted != flow.StepResults {
		t.Fatalf("expected results, got %s", a.mounted)
	}
	if a.store.Get().Name != "pill.png" {
		t.Fatalf("expected artifact to survive navigation")
	}
	a.Update(keyMsg("alt+right"))
	if a.mounted != flow.StepDetail {
		t.Fatalf("expected forward to detail, got %s", a.mounted)
	}
}

func TestRevealFollowsScroll(t *testing.T) {
	a := New(context.Background(), testConfig(t), Deps{}, flow.StepIntake)
	a.Init()
	if a.reveal.Visible(blockHeadline) {
		t.Fatalf("nothing should reveal before the terminal size is known")
	}
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 8})
	if !a.reveal.Visible(blockHeadline) {
		t.Fatalf("expected headline revealed on mount")
	}
	if a.reveal.Visible(blockCaption) {
		t.Fatalf("caption should still be hidden below the fold")
	}
	for i := 0; i < 20; i++ {
		a.Update(keyMsg("pgdown"))
	}
	if !a.reveal.Visible(blockCaption) {
		t.Fatalf("expected caption revealed after scrolling")
	}
	for i := 0; i < 20; i++ {
		a.Update(keyMsg("pgup"))
	}
	if !a.reveal.Visible(blockCaption) {
		t.Fatalf("reveal should be one-shot")
	}
}

func TestViewShowsStepAndFooter(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	view := a.View()
	for _, want := range []string{"PillRx", "Intake", "open path", "Can I take my pill"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}

func TestStoreIsSharedAcrossSteps(t *testing.T) {
	a := newTestApp(t, flow.StepIntake)
	toResults(t, a)
	snap := a.snapshot()
	if snap.Artifact.Name != "pill.png" {
		t.Fatalf("expected results snapshot to carry the artifact")
	}
	a.Update(keyMsg("enter"))
	if a.snapshot().Artifact.ID != snap.Artifact.ID {
		t.Fatalf("expected detail to see the same artifact")
	}
}
