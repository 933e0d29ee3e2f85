package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/pillrx/internal/chat"
	"github.com/jask/pillrx/internal/flow"
	"github.com/jask/pillrx/internal/identify"
	"github.com/jask/pillrx/internal/session"
)

// Snapshot is the read-only state a Renderer draws. Interactive widgets are
// pre-rendered by the App and passed in by block ID.
type Snapshot struct {
	Step       flow.Step
	Artifact   session.ImageArtifact
	Candidates []identify.Candidate
	Cursor     int
	Selected   string
	Subject    string
	Messages   []chat.Message
	Revealed   map[string]bool
	Widgets    map[string]string
	Focus      string
	Width      int
}

// Block is one revealable element of a page.
type Block struct {
	ID   string
	Body string
}

// Frame is a rendered page, blocks in top-to-bottom order.
type Frame struct {
	Blocks []Block
}

// Renderer draws pages. Elements lists the fixed reveal handles for a step;
// Render must emit exactly those blocks, in that order.
type Renderer interface {
	Elements(step flow.Step) []string
	Render(s Snapshot) Frame
}

const (
	blockHeadline = "headline"
	blockRule     = "rule"
	blockDropzone = "dropzone"
	blockPicker   = "picker"
	blockCaption  = "caption"
	blockSpinner  = "spinner"
	blockPreview  = "preview"
	blockMatches  = "matches"
	blockActions  = "actions"
	blockChat     = "chat"
	blockComposer = "composer"
)

const (
	focusPath     = "path"
	focusPicker   = "picker"
	focusComposer = "composer"
)

type pageRenderer struct{}

// NewRenderer returns the default page renderer.
func NewRenderer() Renderer {
	return pageRenderer{}
}

func (pageRenderer) Elements(step flow.Step) []string {
	switch step {
	case flow.StepProcessing:
		return []string{blockHeadline, blockSpinner, blockPreview, blockCaption}
	case flow.StepResults:
		return []string{blockPreview, blockHeadline, blockMatches, blockActions, blockCaption}
	case flow.StepDetail:
		return []string{blockPreview, blockHeadline, blockChat, blockComposer, blockCaption}
	default:
		return []string{blockHeadline, blockRule, blockDropzone, blockPicker, blockCaption}
	}
}

func (r pageRenderer) Render(s Snapshot) Frame {
	ids := r.Elements(s.Step)
	frame := Frame{Blocks: make([]Block, 0, len(ids))}
	for _, id := range ids {
		body := r.block(s, id)
		if !s.Revealed[id] {
			body = placeholder(body)
		}
		frame.Blocks = append(frame.Blocks, Block{ID: id, Body: body})
	}
	return frame
}

func (r pageRenderer) block(s Snapshot, id string) string {
	width := max(20, s.Width-2)
	switch id {
	case blockPreview:
		return renderPreview(s.Artifact, width)
	case blockSpinner:
		return s.Widgets[blockSpinner] + " " + mutedStyle.Render("analysing image…")
	case blockMatches:
		return renderMatches(s.Candidates, s.Cursor, s.Selected)
	case blockActions:
		return mutedStyle.Render("enter chat about the highlighted match · space select · c continue with selection")
	case blockRule:
		return accentStyle.Render(strings.Repeat("─", min(width, 36)))
	case blockDropzone:
		body := "Drop an image here, or paste its path and press enter\n\n" + s.Widgets[focusPath]
		return boxFor(s.Focus == focusPath).Width(min(width, 72)).Render(body)
	case blockPicker:
		body := mutedStyle.Render("or browse for a photo (jpg, png)") + "\n" + s.Widgets[blockPicker]
		return boxFor(s.Focus == focusPicker).Width(min(width, 72)).Render(body)
	case blockChat:
		return boxStyle.Width(min(width, 72)).Render(s.Widgets[blockChat])
	case blockComposer:
		return boxFor(s.Focus == focusComposer).Width(min(width, 72)).Render(s.Widgets[blockComposer])
	case blockHeadline:
		return headlineStyle.Render(headline(s))
	case blockCaption:
		return mutedStyle.Render(caption(s.Step))
	}
	return ""
}

func headline(s Snapshot) string {
	switch s.Step {
	case flow.StepProcessing:
		return "Identifying your pill"
	case flow.StepResults:
		return "Possible matches"
	case flow.StepDetail:
		return "PillRx Chat: " + accentStyle.Render(s.Subject)
	default:
		return "Can I take my pill with " + accentStyle.Render("alcohol") + "?"
	}
}

func caption(step flow.Step) string {
	switch step {
	case flow.StepProcessing:
		return "This takes a few seconds."
	case flow.StepResults:
		return "Matches are ranked by how closely they resemble your photo."
	case flow.StepDetail:
		return "Answers are informational only. Ask a pharmacist before mixing medicines."
	default:
		return "PillRx identifies a pill from a photo, then answers questions about it."
	}
}

func boxFor(focused bool) lipgloss.Style {
	if focused {
		return focusedBoxStyle
	}
	return boxStyle
}

func renderPreview(a session.ImageArtifact, width int) string {
	box := boxStyle.Width(min(width, 72))
	if a.IsEmpty() {
		return box.Render(mutedStyle.Render("No image uploaded"))
	}
	lines := []string{
		accentStyle.Render(a.Name),
		fmt.Sprintf("%s · %s", a.MimeType, formatSize(a.Size())),
	}
	if !session.IsImageType(a.MimeType) {
		lines = append(lines, mutedStyle.Render("not a jpg or png; shown as-is"))
	}
	return box.Render(strings.Join(lines, "\n"))
}

// matchLines is the number of lines each candidate occupies.
const matchLines = 2

func renderMatches(cands []identify.Candidate, cursor int, selected string) string {
	if len(cands) == 0 {
		return mutedStyle.Render("No matches found")
	}
	lines := make([]string, 0, len(cands)*matchLines)
	for i, c := range cands {
		label := c.PrimaryName
		if selected != "" && c.PrimaryName == selected {
			label = selectedStyle.Render("● ") + label
		}
		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render("> ")
		}
		lines = append(lines, prefix+label, "    "+mutedStyle.Render("Other names: "+c.AliasLabel))
	}
	return strings.Join(lines, "\n")
}

func renderMessages(msgs []chat.Message) string {
	if len(msgs) == 0 {
		return mutedStyle.Render("Ask anything about this pill.")
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		who := botStyle.Render("PillRx")
		if m.Sender == chat.SenderUser {
			who = userStyle.Render("You   ")
		}
		lines = append(lines, who+"  "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// placeholder keeps a hidden block's height so revealing it does not move
// anything below.
func placeholder(body string) string {
	h := lipgloss.Height(body)
	return strings.Repeat("\n", max(0, h-1))
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
