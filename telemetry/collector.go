package telemetry

import "github.com/pthm-cable/liquidevo/genome"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births           int
	deaths           int
	respawns         int
	decodeFailures   int
	mutationFailures int
	newParts         int
	eaten            int
	mutations        genome.Report
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordBirth records a child realised from a mutated genome.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a creature whose health ran out.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordRespawn records a creature spawned from a seed or the hall of fame.
func (c *Collector) RecordRespawn() {
	c.respawns++
}

// RecordDecodeFailure records a genome that could not be realised.
func (c *Collector) RecordDecodeFailure() {
	c.decodeFailures++
}

// RecordMutationFailure records a genome the mutation pipeline rejected.
func (c *Collector) RecordMutationFailure() {
	c.mutationFailures++
}

// RecordMutation adds one pipeline run's operation counts.
func (c *Collector) RecordMutation(r genome.Report) {
	c.mutations.Deletions += r.Deletions
	c.mutations.Duplications += r.Duplications
	c.mutations.Translocations += r.Translocations
	c.mutations.Perturbed += r.Perturbed
}

// RecordNewPart records a random body part appended to a child genome.
func (c *Collector) RecordNewPart() {
	c.newParts++
}

// RecordEaten records pellets eaten.
func (c *Collector) RecordEaten(n int) {
	c.eaten += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the population state observed at the end of a window.
type Sample struct {
	Population      int
	Pellets         int
	Health          []float64
	Chunks          []float64
	Generations     []float64
	DistinctGenomes int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	health := Summarize(s.Health)
	chunks := Summarize(s.Chunks)
	generations := Summarize(s.Generations)

	var failureRate float64
	if attempts := c.births + c.decodeFailures + c.mutationFailures; attempts > 0 {
		failureRate = float64(c.decodeFailures+c.mutationFailures) / float64(attempts)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Population: s.Population,
		Pellets:    s.Pellets,

		Births:           c.births,
		Deaths:           c.deaths,
		Respawns:         c.respawns,
		DecodeFailures:   c.decodeFailures,
		MutationFailures: c.mutationFailures,
		FailureRate:      failureRate,
		NewParts:         c.newParts,
		Eaten:            c.eaten,

		Deletions:      c.mutations.Deletions,
		Duplications:   c.mutations.Duplications,
		Translocations: c.mutations.Translocations,
		Perturbed:      c.mutations.Perturbed,

		HealthMean: health.Mean,
		HealthP10:  health.P10,
		HealthP50:  health.P50,
		HealthP90:  health.P90,

		ChunksMean: chunks.Mean,
		ChunksStd:  chunks.Std,

		GenerationMean: generations.Mean,
		GenerationMax:  int(generations.Max),

		DistinctGenomes: s.DistinctGenomes,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.deaths = 0
	c.respawns = 0
	c.decodeFailures = 0
	c.mutationFailures = 0
	c.newParts = 0
	c.eaten = 0
	c.mutations = genome.Report{}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
