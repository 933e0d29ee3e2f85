package session

import (
	"errors"
	"sync/atomic"
)

// ErrNoArtifact reports a read where an artifact was expected but none was
// ever set. Callers render a placeholder instead.
var ErrNoArtifact = errors.New("no image uploaded")

// Store holds the single current artifact for a session. Writes replace the
// artifact wholesale, so readers see either the old or the new value.
type Store struct {
	current atomic.Pointer[ImageArtifact]
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the current artifact. It does not navigate.
func (s *Store) Set(a ImageArtifact) {
	s.current.Store(&a)
}

func (s *Store) Get() ImageArtifact {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Empty
}

// Require is Get for callers that expect an upload to have happened.
func (s *Store) Require() (ImageArtifact, error) {
	a := s.Get()
	if a.IsEmpty() {
		return Empty, ErrNoArtifact
	}
	return a, nil
}
