package main

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/liquidevo/config"
	"github.com/pthm-cable/liquidevo/game"
	"github.com/pthm-cable/liquidevo/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastQuality    float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0, // 10 seconds per window
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// warmupSec is how long founders get before a respawn counts as extinction.
const warmupSec = 5.0

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32                   // ticks before the population had to be reseeded
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
	hallOfFame    *telemetry.HallOfFame
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	quality    float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			results[idx] = seedResult{
				fitness:    fe.computeFitness(result),
				quality:    fe.computeQuality(result.windowStats),
				hallOfFame: result.hallOfFame,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
// Runs until the population dies out after warmup, or maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{survivalTicks: fe.maxTicks}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.survivalTicks = 0
		return result
	}
	defer g.Unload()

	warmupTicks := int32(warmupSec / cfg.Physics.DT)
	baseline := -1

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()

		if g.Tick() < warmupTicks {
			continue
		}
		if baseline < 0 {
			baseline = g.Respawns()
		}
		// respawn refills the tank within the tick, so extinction shows
		// up only as a reseed
		if g.Respawns() > baseline {
			result.survivalTicks = g.Tick()
			break
		}
	}

	result.hallOfFame = g.HallOfFame()
	return result
}

// copyConfig creates a copy of the base config that evaluations may modify.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Seeds = slices.Clone(fe.baseConfig.Seeds)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := fe.computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightDepth     = 0.35
	qualityWeightDiversity = 0.25
	qualityWeightStability = 0.20
	qualityWeightViability = 0.20

	qualityWarmupWindows = 1 // skip first N windows
	qualityMinPop        = 2
	depthScale           = 20.0 // generations for ~63% of the depth score
)

// computeQuality scores a run ∈ [0, 1] from its window stats: lineage depth,
// genome diversity, population stability and the share of children that decode.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var diversitySum, viabilitySum float64
	var counted int
	maxGen := 0
	pops := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Population < qualityMinPop {
			continue
		}
		counted++
		pops = append(pops, float64(w.Population))
		maxGen = max(maxGen, w.GenerationMax)
		diversitySum += float64(w.DistinctGenomes) / float64(w.Population)
		viabilitySum += 1 - w.FailureRate
	}

	if counted == 0 {
		return 0
	}

	depthScore := 1 - math.Exp(-float64(maxGen)/depthScale)
	diversityScore := diversitySum / float64(counted)
	viabilityScore := viabilitySum / float64(counted)

	stabilityScore := 0.0
	if len(pops) >= 2 {
		mean, std := stat.MeanStdDev(pops, nil)
		if mean > 0 {
			c := std / mean
			stabilityScore = math.Exp(-c * c)
		}
	}

	quality := qualityWeightDepth*depthScore +
		qualityWeightDiversity*diversityScore +
		qualityWeightStability*stabilityScore +
		qualityWeightViability*viabilityScore

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
