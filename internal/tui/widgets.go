package tui

import (
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/jask/pillrx/internal/config"
)

const (
	pickerHeight = 8
	chatHeight   = 8
	inputWidth   = 60
)

func newPicker(cfg config.IntakeConfig) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = cfg.AllowedTypes
	dir := cfg.StartDir
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	fp.CurrentDirectory = dir
	fp.AutoHeight = false
	fp.Height = pickerHeight
	fp.Styles.Cursor = cursorStyle
	fp.Styles.Selected = cursorStyle
	fp.Styles.Directory = selectedStyle
	return fp
}

func newPathInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "~/Pictures/pill.jpg"
	ti.CharLimit = 4096
	ti.Width = inputWidth
	return ti
}

func newComposer() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "Type a message"
	ti.CharLimit = 1000
	ti.Width = inputWidth
	return ti
}

func newSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle))
}

func newChatView() viewport.Model {
	vp := viewport.New(inputWidth, chatHeight)
	vp.SetContent(renderMessages(nil))
	return vp
}
