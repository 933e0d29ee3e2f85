package tui

import (
	"github.com/jask/pillrx/internal/session"
)

// artifactReadMsg carries a finished file read. seq orders reads within a
// session; gen identifies the session that issued the read.
type artifactReadMsg struct {
	seq      int
	gen      int
	path     string
	artifact session.ImageArtifact
	err      error
}
