package genome

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// Mutate produces a child genome: structural mutation first, then bounded
// value mutation, both at the same rate.
func Mutate(g Genome, rate float64, rng *rand.Rand) (Genome, error) {
	child, _, err := Pipeline{StructuralRate: rate, ValueRate: rate}.Mutate(g, rng)
	return child, err
}

// Pipeline composes the two mutation stages with independent rates.
type Pipeline struct {
	StructuralRate float64 `yaml:"structural_rate"`
	ValueRate      float64 `yaml:"value_rate"`
}

// Report summarises what one pipeline pass changed.
type Report struct {
	StructuralCounts
	Perturbed int
}

// LogValue implements slog.LogValuer.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("deletions", r.Deletions),
		slog.Int("duplications", r.Duplications),
		slog.Int("translocations", r.Translocations),
		slog.Int("perturbed", r.Perturbed),
	)
}

// Mutate runs structural then value mutation on g using rng for every draw.
// The same rng state always yields the same child.
func (p Pipeline) Mutate(g Genome, rng *rand.Rand) (Genome, Report, error) {
	var report Report

	rearranged, counts, err := structuralMutate(g, p.StructuralRate, rng)
	if err != nil {
		return g, report, fmt.Errorf("structural mutation: %w", err)
	}
	report.StructuralCounts = counts

	child, perturbed, err := valueMutate(rearranged, p.ValueRate, rng)
	if err != nil {
		return g, report, fmt.Errorf("value mutation: %w", err)
	}
	report.Perturbed = perturbed

	return child, report, nil
}
