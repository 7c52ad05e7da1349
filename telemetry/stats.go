package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Population int `csv:"population"`
	Pellets    int `csv:"pellets"`

	// Events during window
	Births           int     `csv:"births"`
	Deaths           int     `csv:"deaths"`
	Respawns         int     `csv:"respawns"`
	DecodeFailures   int     `csv:"decode_failures"`
	MutationFailures int     `csv:"mutation_failures"`
	FailureRate      float64 `csv:"failure_rate"`
	NewParts         int     `csv:"new_parts"`
	Eaten            int     `csv:"eaten"`

	// Mutation operations applied during window
	Deletions      int `csv:"deletions"`
	Duplications   int `csv:"duplications"`
	Translocations int `csv:"translocations"`
	Perturbed      int `csv:"perturbed"`

	// Health distribution (sampled at window end)
	HealthMean float64 `csv:"health_mean"`
	HealthP10  float64 `csv:"health_p10"`
	HealthP50  float64 `csv:"health_p50"`
	HealthP90  float64 `csv:"health_p90"`

	// Genome shape
	ChunksMean float64 `csv:"chunks_mean"`
	ChunksStd  float64 `csv:"chunks_std"`

	// Lineage depth
	GenerationMean float64 `csv:"generation_mean"`
	GenerationMax  int     `csv:"generation_max"`

	DistinctGenomes int `csv:"distinct_genomes"`
}

// Summary describes a sample distribution.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Min, Max      float64
}

// Summarize computes mean, standard deviation, and percentiles of values.
// Returns the zero Summary for an empty slice.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var s Summary
	if n == 1 {
		s.Mean = sorted[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	}
	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	return s
}

// Percentile returns the empirical p-th quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = math.Max(0, math.Min(1, p))
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("population", s.Population),
		slog.Int("pellets", s.Pellets),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("respawns", s.Respawns),
		slog.Int("decode_failures", s.DecodeFailures),
		slog.Int("mutation_failures", s.MutationFailures),
		slog.Float64("failure_rate", s.FailureRate),
		slog.Int("new_parts", s.NewParts),
		slog.Int("eaten", s.Eaten),
		slog.Int("deletions", s.Deletions),
		slog.Int("duplications", s.Duplications),
		slog.Int("translocations", s.Translocations),
		slog.Int("perturbed", s.Perturbed),
		slog.Float64("health_mean", s.HealthMean),
		slog.Float64("health_p10", s.HealthP10),
		slog.Float64("health_p50", s.HealthP50),
		slog.Float64("health_p90", s.HealthP90),
		slog.Float64("chunks_mean", s.ChunksMean),
		slog.Float64("chunks_std", s.ChunksStd),
		slog.Float64("generation_mean", s.GenerationMean),
		slog.Int("generation_max", s.GenerationMax),
		slog.Int("distinct_genomes", s.DistinctGenomes),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
