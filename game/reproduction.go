package game

import (
	"log/slog"
	"math/rand/v2"

	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
	"github.com/pthm-cable/liquidevo/telemetry"
)

// birthJob carries one parent's genome through mutation. The stream seeds
// are drawn serially from the game rng so results do not depend on worker
// scheduling.
type birthJob struct {
	ParentID   physics.CreatureID
	Generation int // of the child
	Seed       string
	Parent     genome.Genome
	Anchor     genome.Vec2
	Stream1    uint64
	Stream2    uint64

	// Filled by mutateChunk
	Child  genome.Genome
	Report genome.Report
	Err    error
}

// updateReproduction lets every creature above the threshold pay for a
// child, mutates the children's genomes and realises them.
func (g *Game) updateReproduction() {
	threshold := float32(g.cfg.Creature.ReproduceThreshold)
	cost := float32(g.cfg.Creature.ReproduceCost)
	maxPop := g.cfg.Creature.MaxPopulation

	// Phase A: select parents and draw rng streams (single-threaded)
	g.parallel.jobs = g.parallel.jobs[:0]

	query := g.creatureFilter.Query()
	for query.Next() {
		c, h, pos := query.Get()
		if !c.CanReproduce(threshold) {
			continue
		}
		if maxPop > 0 && g.alive+len(g.parallel.jobs) >= maxPop {
			continue
		}

		c.Health -= cost
		c.Children++

		g.parallel.jobs = append(g.parallel.jobs, birthJob{
			ParentID:   c.ID,
			Generation: c.Generation + 1,
			Seed:       h.Seed,
			Parent:     h.Genome,
			Anchor:     genome.Vec2{X: float64(pos.X), Y: float64(pos.Y)},
			Stream1:    g.rng.Uint64(),
			Stream2:    g.rng.Uint64(),
		})
	}

	n := len(g.parallel.jobs)
	if n == 0 {
		return
	}

	// Phase B: mutate - choose single or parallel based on batch size
	if n < parallelThreshold {
		g.mutateChunk(0, n)
	} else {
		g.computeParallel(n)
	}

	// Phase C: realise children (single-threaded, the physics space is not shared)
	for i := range g.parallel.jobs {
		g.realiseChild(&g.parallel.jobs[i])
	}
}

// mutateChunk runs the mutation pipeline on jobs[i0:i1]. It touches only
// the jobs in range and is safe to call from workers.
func (g *Game) mutateChunk(i0, i1 int) {
	for i := i0; i < i1; i++ {
		job := &g.parallel.jobs[i]
		rng := rand.New(rand.NewPCG(job.Stream1, job.Stream2))
		job.Child, job.Report, job.Err = g.pipeline.Mutate(job.Parent, rng)
	}
}

// realiseChild decodes a mutated genome next to its parent. Failures are
// logged and counted; the parent keeps the cost it paid.
func (g *Game) realiseChild(job *birthJob) bool {
	if job.Err != nil {
		g.collector.RecordMutationFailure()
		slog.Warn("mutation_failed", "parent", job.ParentID, "error", job.Err)
		return false
	}
	g.collector.RecordMutation(job.Report)

	child := job.Child
	if chance := g.cfg.Mutation.NewPartChance; chance > 0 && g.rng.Float64() < chance {
		child = genome.AppendChunk(child, g.randomPart())
		g.collector.RecordNewPart()
	}

	id, err := g.spawn(spawnRequest{
		Genome:     child,
		Seed:       job.Seed,
		Anchor:     g.jitter(job.Anchor),
		ParentID:   job.ParentID,
		Generation: job.Generation,
		Health:     float32(g.cfg.Creature.InitialHealth),
	})
	if err != nil {
		g.collector.RecordDecodeFailure()
		slog.Warn("decode_failed", "creature", id, "parent", job.ParentID, "error", err)
		return false
	}

	g.collector.RecordBirth()
	g.births = append(g.births, telemetry.NewBirthRecord(
		g.tick, uint32(id), uint32(job.ParentID), job.Generation, job.Seed, child, job.Report,
	))
	slog.Debug("birth",
		"creature", id,
		"parent", job.ParentID,
		"generation", job.Generation,
		"chunks", child.ChunkCount(),
		"mutation", job.Report,
	)
	return true
}

// randomPart encodes a box of random size with bounded corners and material.
func (g *Game) randomPart() string {
	m := g.cfg.Mutation
	side := func() float64 {
		return m.NewPartMaxSize * (0.25 + 0.75*g.rng.Float64())
	}
	material := genome.Material{
		Density:     genome.Within(1, 0.1, 5),
		Friction:    genome.Within(0.3, 0, 1),
		Restitution: genome.Within(0.5, 0, 1),
	}
	return genome.BoxChunk(side(), side(), m.NewPartSlack, material)
}
