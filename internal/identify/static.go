package identify

import (
	"context"
	"slices"

	"github.com/jask/pillrx/internal/session"
)

// DefaultMatches is the match list shown when no real identification runs.
// Each row's name is what Detail receives; none carry other names.
var DefaultMatches = []Candidate{
	{PrimaryName: "Benadryl"},
	{PrimaryName: "Definitely Benadryl"},
	{PrimaryName: "Advil"},
	{PrimaryName: "Definitely Benadryl"},
	{PrimaryName: "Advil"},
	{PrimaryName: "Definitely Benadryl"},
	{PrimaryName: "Advil"},
	{PrimaryName: "Advil"},
	{PrimaryName: "Advil"},
}

// Static returns the same candidates for every artifact.
type Static struct {
	Matches []Candidate
}

func NewStatic() Static {
	return Static{Matches: DefaultMatches}
}

func (s Static) Identify(ctx context.Context, _ session.ImageArtifact) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.Matches), nil
}
