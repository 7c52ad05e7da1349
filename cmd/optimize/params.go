// Package main provides CMA-ES optimization for liquidevo simulation parameters.
package main

import (
	"github.com/pthm-cable/liquidevo/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Mutation
			{Name: "structural_rate", Path: "mutation.structural_rate", Min: 0, Max: 0.3, Default: 0.05},
			{Name: "value_rate", Path: "mutation.value_rate", Min: 0, Max: 0.5, Default: 0.05},
			{Name: "new_part_chance", Path: "mutation.new_part_chance", Min: 0, Max: 0.5, Default: 0.1},
			{Name: "new_part_max_size", Path: "mutation.new_part_max_size", Min: 0.5, Max: 4, Default: 2},
			// Health economy
			{Name: "decay_per_tick", Path: "creature.decay_per_tick", Min: 0.005, Max: 0.1, Default: 0.02},
			{Name: "reproduce_threshold", Path: "creature.reproduce_threshold", Min: 120, Max: 400, Default: 200},
			{Name: "reproduce_cost", Path: "creature.reproduce_cost", Min: 40, Max: 150, Default: 100},
			// Food
			{Name: "food_min_count", Path: "food.min_count", Min: 20, Max: 300, Default: 100},
			{Name: "food_health_gain", Path: "food.health_gain", Min: 0.5, Max: 5, Default: 1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// The reproduction cost is capped at the threshold so the config stays valid.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0

	cfg.Mutation.StructuralRate = clamped[i]; i++
	cfg.Mutation.ValueRate = clamped[i]; i++
	cfg.Mutation.NewPartChance = clamped[i]; i++
	cfg.Mutation.NewPartMaxSize = clamped[i]; i++

	cfg.Creature.DecayPerTick = clamped[i]; i++
	cfg.Creature.ReproduceThreshold = clamped[i]; i++
	cfg.Creature.ReproduceCost = min(clamped[i], cfg.Creature.ReproduceThreshold); i++

	cfg.Food.MinCount = int(clamped[i]); i++
	cfg.Food.HealthGain = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Mutation.StructuralRate,
		cfg.Mutation.ValueRate,
		cfg.Mutation.NewPartChance,
		cfg.Mutation.NewPartMaxSize,
		cfg.Creature.DecayPerTick,
		cfg.Creature.ReproduceThreshold,
		cfg.Creature.ReproduceCost,
		float64(cfg.Food.MinCount),
		cfg.Food.HealthGain,
	}
}
