package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/pillrx/internal/reveal"
)

// composeFrame stacks blocks with one blank line between them and records
// the line span each block occupies.
func composeFrame(f Frame) (string, map[string]reveal.Span) {
	var b strings.Builder
	spans := make(map[string]reveal.Span, len(f.Blocks))
	line := 0
	for i, blk := range f.Blocks {
		if i > 0 {
			b.WriteString("\n\n")
			line++
		}
		h := lipgloss.Height(blk.Body)
		spans[blk.ID] = reveal.Span{Top: line, Height: h}
		b.WriteString(blk.Body)
		line += h
	}
	return b.String(), spans
}
