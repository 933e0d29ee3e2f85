// Package identify turns an uploaded artifact into display candidates.
//
// The wizard only depends on the Identifier interface. Static reproduces the
// fixed match list the product shipped with; Catalog ranks a drug catalog by
// imprint similarity.
package identify

import (
	"context"

	"github.com/jask/pillrx/internal/session"
)

// Candidate is a display record for one possible match. PrimaryName is the
// shown name and the Detail payload; AliasLabel lists other names, if any.
type Candidate struct {
	PrimaryName string
	AliasLabel  string
}

type Identifier interface {
	Identify(ctx context.Context, artifact session.ImageArtifact) ([]Candidate, error)
}

// Func adapts a plain function to Identifier.
type Func func(ctx context.Context, artifact session.ImageArtifact) ([]Candidate, error)

func (f Func) Identify(ctx context.Context, artifact session.ImageArtifact) ([]Candidate, error) {
	return f(ctx, artifact)
}
