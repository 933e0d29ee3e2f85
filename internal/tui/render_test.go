package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"github.com/jask/pillrx/internal/flow"
	"github.com/jask/pillrx/internal/identify"
	"github.com/jask/pillrx/internal/reveal"
	"github.com/jask/pillrx/internal/session"
)

func TestHiddenBlocksKeepTheirHeight(t *testing.T) {
	r := NewRenderer()
	s := Snapshot{
		Step:       flow.StepResults,
		Artifact:   session.NewArtifact("pill.png", "image/png", pngHeader),
		Candidates: identify.DefaultMatches,
		Width:      80,
	}
	hidden := r.Render(s)

	s.Revealed = map[string]bool{}
	for _, id := range r.Elements(flow.StepResults) {
		s.Revealed[id] = true
	}
	shown := r.Render(s)

	if len(hidden.Blocks) != len(shown.Blocks) {
		t.Fatalf("block count changed: %d vs %d", len(hidden.Blocks), len(shown.Blocks))
	}
	for i := range shown.Blocks {
		if hidden.Blocks[i].ID != shown.Blocks[i].ID {
			t.Fatalf("block order changed at %d", i)
		}
		if hh, sh := lipgloss.Height(hidden.Blocks[i].Body), lipgloss.Height(shown.Blocks[i].Body); hh != sh {
			t.Fatalf("block %s: hidden height %d, shown height %d", shown.Blocks[i].ID, hh, sh)
		}
		if strings.TrimSpace(hidden.Blocks[i].Body) != "" {
			t.Fatalf("hidden block %s has visible content", hidden.Blocks[i].ID)
		}
	}
}

func TestRenderEmitsElementsInOrder(t *testing.T) {
	r := NewRenderer()
	for _, step := range wizardSteps {
		frame := r.Render(Snapshot{Step: step, Width: 80})
		var got []string
		for _, b := range frame.Blocks {
			got = append(got, b.ID)
		}
		if diff := cmp.Diff(r.Elements(step), got); diff != "" {
			t.Fatalf("%s blocks mismatch (-want +got):\n%s", step, diff)
		}
	}
}

func TestPreviewWithoutArtifact(t *testing.T) {
	out := renderPreview(session.Empty, 60)
	if !strings.Contains(out, "No image uploaded") {
		t.Fatalf("expected placeholder, got %q", out)
	}
}

func TestComposeFrameSpans(t *testing.T) {
	content, spans := composeFrame(Frame{Blocks: []Block{
		{ID: "a", Body: "one"},
		{ID: "b", Body: "two\nthree"},
		{ID: "c", Body: "four"},
	}})
	want := map[string]reveal.Span{
		"a": {Top: 0, Height: 1},
		"b": {Top: 2, Height: 2},
		"c": {Top: 5, Height: 1},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
	lines := strings.Split(content, "\n")
	if lines[5] != "four" {
		t.Fatalf("expected block c on line 5, got %q", lines[5])
	}
}

func TestRenderMatchesMarksCursorAndSelection(t *testing.T) {
	out := renderMatches([]identify.Candidate{
		{PrimaryName: "Advil"},
		{PrimaryName: "Definitely Benadryl", AliasLabel: "BENADRYL 25 · pink capsule"},
	}, 1, "Advil")
	lines := strings.Split(out, "\n")
	if len(lines) != 2*matchLines {
		t.Fatalf("expected %d lines, got %d", 2*matchLines, len(lines))
	}
	if !strings.Contains(lines[0], "● ") || !strings.Contains(lines[0], "Advil") {
		t.Fatalf("expected selection marker on Advil, got %q", lines[0])
	}
	if !strings.Contains(lines[2], "> ") || !strings.Contains(lines[2], "Definitely Benadryl") {
		t.Fatalf("expected cursor on the shown name, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Other names: BENADRYL 25 · pink capsule") {
		t.Fatalf("expected other names caption, got %q", lines[3])
	}
}
