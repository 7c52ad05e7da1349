package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/liquidevo/config"
	"github.com/pthm-cable/liquidevo/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config has %v, spec default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	values := pv.DefaultVector()
	values[0] = 99    // structural_rate above max
	values[5] = 120   // reproduce_threshold
	values[6] = 150   // reproduce_cost above threshold
	values[7] = 57.9  // food_min_count truncates
	pv.ApplyToConfig(cfg, values)

	if cfg.Mutation.StructuralRate != 0.3 {
		t.Errorf("StructuralRate = %v, want clamp to 0.3", cfg.Mutation.StructuralRate)
	}
	if cfg.Creature.ReproduceCost != 120 {
		t.Errorf("ReproduceCost = %v, want capped at threshold 120", cfg.Creature.ReproduceCost)
	}
	if cfg.Food.MinCount != 57 {
		t.Errorf("MinCount = %d, want 57", cfg.Food.MinCount)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestComputeQuality(t *testing.T) {
	fe := &FitnessEvaluator{}

	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		wantMin float64
		wantMax float64
	}{
		{"no windows", nil, 0, 0},
		{"warmup only", []telemetry.WindowStats{{Population: 10}}, 0, 0},
		{"all below min pop", []telemetry.WindowStats{{}, {Population: 1}, {Population: 1}}, 0, 0},
		{
			name: "steady diverse lineage",
			windows: []telemetry.WindowStats{
				{Population: 10},
				{Population: 10, DistinctGenomes: 10, GenerationMax: 40},
				{Population: 10, DistinctGenomes: 10, GenerationMax: 60},
			},
			wantMin: 0.9,
			wantMax: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fe.computeQuality(tt.windows)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("computeQuality() = %v, want in [%v, %v]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
