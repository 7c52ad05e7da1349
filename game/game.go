// Package game runs the creature simulation: founders decoded from seed
// genomes, feeding on pellets, health decay, reproduction through the
// mutation pipeline, death and respawn. It has no graphics dependency;
// package ui draws it.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/liquidevo/components"
	"github.com/pthm-cable/liquidevo/config"
	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
	"github.com/pthm-cable/liquidevo/telemetry"
)

// Options configures a new game.
type Options struct {
	Seed           int64
	LogStats       bool    // output window stats via slog
	StatsWindowSec float64 // 0 uses config
	SnapshotDir    string  // snapshots are written on bookmarks when set
	OutputDir      string  // CSV logs and config snapshot when set
	Headless       bool
	StepsPerUpdate int    // ticks per Update call
	Resume         string // snapshot file to restore the population from

	// Config overrides the global config when set.
	Config *config.Config

	// StatsCallback is invoked with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	world   *ecs.World
	rng     *rand.Rand
	rngSeed uint64

	creatureMapper *ecs.Map3[components.Creature, components.Heredity, components.Position]
	creatureFilter *ecs.Filter3[components.Creature, components.Heredity, components.Position]
	creatureMap    *ecs.Map1[components.Creature]
	heredityMap    *ecs.Map1[components.Heredity]
	posMap         *ecs.Map1[components.Position]

	pelletMapper *ecs.Map1[components.Pellet]
	pelletFilter *ecs.Filter1[components.Pellet]

	// entities resolves physics owners back to ECS entities.
	entities map[physics.CreatureID]ecs.Entity
	space    *physics.Space
	pipeline genome.Pipeline

	parallel *parallelState

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	hallOfFame       *telemetry.HallOfFame
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string
	births           []telemetry.BirthRecord

	// badSeeds holds founder seeds whose genome failed to decode or cannot breed.
	badSeeds map[string]bool

	// State
	tick           int32
	paused         bool
	nextID         physics.CreatureID
	alive          int
	pellets        int
	respawns       int
	stepsPerUpdate int
}

// NewGameWithOptions creates a game, spawns the founders (or the resumed
// population) and opens telemetry output.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := uint64(opts.Seed)
	world := ecs.NewWorld()

	g := &Game{
		cfg:     cfg,
		world:   world,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		rngSeed: seed,

		creatureMapper: ecs.NewMap3[components.Creature, components.Heredity, components.Position](world),
		creatureFilter: ecs.NewFilter3[components.Creature, components.Heredity, components.Position](world),
		creatureMap:    ecs.NewMap1[components.Creature](world),
		heredityMap:    ecs.NewMap1[components.Heredity](world),
		posMap:         ecs.NewMap1[components.Position](world),
		pelletMapper:   ecs.NewMap1[components.Pellet](world),
		pelletFilter:   ecs.NewFilter1[components.Pellet](world),

		entities: make(map[physics.CreatureID]ecs.Entity),
		space: physics.New(physics.Options{
			Gravity:    genome.Vec2{Y: cfg.World.Gravity},
			Iterations: cfg.Physics.Iterations,
			MinDensity: cfg.Physics.MinDensity,
		}),
		pipeline: cfg.Mutation.Pipeline(),
		parallel: newParallelState(),

		statsCallback:  opts.StatsCallback,
		logStats:       opts.LogStats,
		snapshotDir:    opts.SnapshotDir,
		badSeeds:       make(map[string]bool),
		nextID:         1,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
	}
	g.space.AddBoundary(cfg.World.Size, cfg.World.WallFriction, cfg.World.WallRestitution)

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Derived.DT32)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)
	if cfg.HallOfFame.Enabled {
		g.hallOfFame = telemetry.NewHallOfFame(cfg.HallOfFame.Size, cfg.HallOfFame.MinChildren, g.rng)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if opts.Resume != "" {
		if err := g.restoreSnapshot(opts.Resume); err != nil {
			om.Close()
			return nil, err
		}
	} else {
		g.spawnFounders()
	}
	g.replenishPellets()

	return g, nil
}

// Update runs stepsPerUpdate ticks unless paused.
func (g *Game) Update() {
	if g.paused {
		return
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless is Update without pausing; used by headless runs.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.simulationStep()
	}
}

// Step runs exactly one tick.
func (g *Game) Step() {
	g.simulationStep()
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Population returns the number of living creatures.
func (g *Game) Population() int {
	return g.alive
}

// Respawns returns how many times the population had to be reseeded.
func (g *Game) Respawns() int {
	return g.respawns
}

// PelletCount returns the number of uneaten pellets.
func (g *Game) PelletCount() int {
	return g.pellets
}

// HallOfFame returns the genome bank, or nil when disabled.
func (g *Game) HallOfFame() *telemetry.HallOfFame {
	return g.hallOfFame
}

// Pipeline returns the mutation pipeline applied to offspring.
func (g *Game) Pipeline() genome.Pipeline {
	return g.pipeline
}

// SetPipeline replaces the mutation rates. Takes effect at the next birth.
func (g *Game) SetPipeline(p genome.Pipeline) {
	g.pipeline = p
}

// Perf returns the tick timing collector. The UI records frames on it.
func (g *Game) Perf() *telemetry.PerfCollector {
	return g.perfCollector
}

// Config returns the configuration the game runs with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Paused reports whether Update is suspended.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused suspends or resumes Update.
func (g *Game) SetPaused(p bool) {
	g.paused = p
}

// StepsPerUpdate returns the simulation speed multiplier.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// SetStepsPerUpdate sets the speed multiplier, clamped to [1, 10].
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = min(max(n, 1), 10)
}

// Unload stops the worker pool and flushes remaining output.
func (g *Game) Unload() {
	g.stopParallelWorkers()

	if g.outputManager == nil {
		return
	}
	if err := g.outputManager.WriteBirths(g.births); err != nil {
		slog.Error("failed to write births", "error", err)
	}
	g.births = g.births[:0]
	if err := g.outputManager.WriteHallOfFame(g.hallOfFame); err != nil {
		slog.Error("failed to write hall of fame", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.outputManager = nil
}
