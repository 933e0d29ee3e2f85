package identify

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/pillrx/internal/database/repository"
	"github.com/jask/pillrx/internal/session"
)

// DrugSource lists catalog entries.
type DrugSource interface {
	List(ctx context.Context) ([]repository.Drug, error)
}

// Catalog ranks catalog drugs by how closely their imprint matches a hint
// taken from the artifact name.
type Catalog struct {
	Drugs DrugSource
	Limit int
}

func NewCatalog(drugs DrugSource, limit int) *Catalog {
	return &Catalog{Drugs: drugs, Limit: limit}
}

func (c *Catalog) Identify(ctx context.Context, artifact session.ImageArtifact) ([]Candidate, error) {
	drugs, err := c.Drugs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	hint := ImprintHint(artifact.Name)

	type scored struct {
		drug  repository.Drug
		score float64
	}
	ranked := make([]scored, 0, len(drugs))
	for _, d := range drugs {
		ranked = append(ranked, scored{drug: d, score: ImprintScore(hint, strings.ToUpper(d.Imprint))})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	limit := c.Limit
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]Candidate, 0, limit)
	for _, r := range ranked[:limit] {
		out = append(out, Candidate{PrimaryName: r.drug.Name, AliasLabel: aliasLabel(r.drug)})
	}
	return out, nil
}

func aliasLabel(d repository.Drug) string {
	parts := []string{}
	if d.Imprint != "" {
		parts = append(parts, d.Imprint)
	}
	if desc := strings.TrimSpace(d.Color + " " + d.Shape); desc != "" {
		parts = append(parts, desc)
	}
	if len(parts) == 0 {
		return d.Name
	}
	return strings.Join(parts, " · ")
}

// ImprintHint derives an imprint-like string from a file name:
// "advil_200.jpg" becomes "ADVIL 200".
func ImprintHint(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(stem)
	return strings.ToUpper(strings.Join(strings.Fields(stem), " "))
}

// ImprintScore sums a length-normalised edit similarity and a shared
// character similarity. Both terms are in [0, 1].
func ImprintScore(hint, imprint string) float64 {
	total := len(hint) + len(imprint)
	if total == 0 {
		return 2
	}
	dist := levenshtein.ComputeDistance(hint, imprint)
	edit := 1 - float64(dist)/float64(total)
	overlap := 2 * sharedChars(hint, imprint)
	return edit + float64(overlap)/float64(total)
}

func sharedChars(a, b string) int {
	seen := make(map[rune]bool, len(a))
	for _, r := range a {
		seen[r] = true
	}
	n := 0
	for _, r := range b {
		if seen[r] {
			n++
			delete(seen, r)
		}
	}
	return n
}
