package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/liquidevo/components"
	"github.com/pthm-cable/liquidevo/config"
	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
	"github.com/pthm-cable/liquidevo/telemetry"
)

// spawnRequest describes a creature to realise.
type spawnRequest struct {
	Genome     genome.Genome
	Seed       string
	Anchor     genome.Vec2 // where the body should land
	ParentID   physics.CreatureID
	Generation int
	Health     float32
}

// spawnFounders places every configured seed.
func (g *Game) spawnFounders() {
	for _, seed := range g.cfg.Seeds {
		for i := 0; i < seed.Count; i++ {
			g.spawnSeed(seed, i > 0)
		}
	}
}

// spawnSeed realises a seed genome at its configured position. Extra copies
// are scattered around that position. Seeds that fail to decode or have no
// chunks to mutate are marked bad and never spawned again.
func (g *Game) spawnSeed(seed config.SeedConfig, jitter bool) bool {
	if g.badSeeds[seed.Name] {
		return false
	}

	gen := genome.Genome(seed.Genome)
	// without chunks every reproduction fails with ErrNoChunks
	if gen.ChunkCount() == 0 {
		g.badSeeds[seed.Name] = true
		g.collector.RecordMutationFailure()
		slog.Warn("seed_unbreedable", "seed", seed.Name, "error", genome.ErrNoChunks)
		return false
	}

	anchor := genome.Vec2{X: seed.X, Y: seed.Y}
	if jitter {
		anchor = g.jitter(anchor)
	}
	id, err := g.spawn(spawnRequest{
		Genome: gen,
		Seed:   seed.Name,
		Anchor: anchor,
		Health: float32(g.cfg.Creature.InitialHealth),
	})
	if err != nil {
		g.badSeeds[seed.Name] = true
		g.collector.RecordDecodeFailure()
		slog.Warn("seed_decode_failed", "seed", seed.Name, "error", err)
		return false
	}
	g.births = append(g.births, telemetry.NewFounderRecord(g.tick, uint32(id), 0, seed.Name, gen))
	return true
}

// spawn decodes req.Genome into the physics space and adds the creature to
// the ECS world. A genome that fails to decode leaves nothing behind.
func (g *Game) spawn(req spawnRequest) (physics.CreatureID, error) {
	id := g.nextID
	g.nextID++
	return id, g.spawnAs(id, req)
}

func (g *Game) spawnAs(id physics.CreatureID, req spawnRequest) error {
	origin := originFor(req.Genome, req.Anchor)
	if _, err := genome.Decode(req.Genome, g.space.Scope(id, origin)); err != nil {
		released := g.space.Release(id)
		return fmt.Errorf("decoding creature %d (released %d bodies): %w", id, released, err)
	}

	creature := components.Creature{
		ID:         id,
		ParentID:   req.ParentID,
		Generation: req.Generation,
		Health:     req.Health,
		BornTick:   g.tick,
		Alive:      true,
	}
	heredity := components.Heredity{Genome: req.Genome, Seed: req.Seed}
	pos := components.Position{X: float32(req.Anchor.X), Y: float32(req.Anchor.Y)}

	g.entities[id] = g.creatureMapper.NewEntity(&creature, &heredity, &pos)
	g.alive++
	return nil
}

// originFor returns the scope origin that puts the genome's body at anchor.
// Header coordinates are offsets from the origin; if the header does not
// parse the decode will fail anyway.
func originFor(gen genome.Genome, anchor genome.Vec2) genome.Vec2 {
	head, err := genome.Parse(genome.Genome(gen.Header()))
	if err != nil || len(head.Parts) == 0 {
		return anchor
	}
	spec := head.Parts[0].Spec
	return genome.Vec2{X: anchor.X - spec.X, Y: anchor.Y - spec.Y}
}

// jitter offsets p by up to spawn_jitter on each axis, kept inside the walls.
func (g *Game) jitter(p genome.Vec2) genome.Vec2 {
	j := g.cfg.Creature.SpawnJitter
	x := p.X + (g.rng.Float64()*2-1)*j
	y := p.Y + (g.rng.Float64()*2-1)*j
	return genome.Vec2{
		X: clamp(x, g.cfg.Derived.WorldMin, g.cfg.Derived.WorldMax),
		Y: clamp(y, g.cfg.Derived.WorldMin, g.cfg.Derived.WorldMax),
	}
}

// cleanupDead removes dead creatures and their bodies, then respawns if the
// population fell below the threshold.
func (g *Game) cleanupDead() {
	type deadInfo struct {
		entity   ecs.Entity
		creature components.Creature
		heredity components.Heredity
	}
	var toRemove []deadInfo

	query := g.creatureFilter.Query()
	for query.Next() {
		c, h, _ := query.Get()
		if !c.Alive {
			toRemove = append(toRemove, deadInfo{entity: query.Entity(), creature: *c, heredity: *h})
		}
	}

	for _, dead := range toRemove {
		g.collector.RecordDeath()

		if g.hallOfFame != nil {
			g.hallOfFame.Consider(telemetry.Candidate{
				ID:          uint32(dead.creature.ID),
				Seed:        dead.heredity.Seed,
				Genome:      dead.heredity.Genome,
				Generation:  dead.creature.Generation,
				Children:    dead.creature.Children,
				Eaten:       dead.creature.Eaten,
				SurvivalSec: float32(g.tick-dead.creature.BornTick) * g.cfg.Derived.DT32,
			})
		}

		g.space.Release(dead.creature.ID)
		delete(g.entities, dead.creature.ID)
		g.world.RemoveEntity(dead.entity)
		g.alive--
	}

	if g.alive < g.cfg.Creature.RespawnThreshold {
		g.respawn()
	}
}

// respawn refills the tank from the hall of fame, falling back to the
// founder seeds for lineages with no proven genomes.
func (g *Game) respawn() {
	before := g.alive
	fromHall := 0
	g.respawns++

	for _, seed := range g.cfg.Seeds {
		for i := 0; i < seed.Count; i++ {
			if g.spawnFromHall(seed) {
				fromHall++
				g.collector.RecordRespawn()
				continue
			}
			if g.spawnSeed(seed, true) {
				g.collector.RecordRespawn()
			}
		}
	}

	if fromHall > 0 {
		slog.Info("hall_of_fame_reseed",
			"population_before", before,
			"reseeded_count", fromHall,
			"tick", g.tick,
		)
	}
}

// spawnFromHall realises a banked genome of the seed's lineage near the
// seed position. Returns false if the hall is disabled or empty.
func (g *Game) spawnFromHall(seed config.SeedConfig) bool {
	if g.hallOfFame == nil {
		return false
	}
	entry, ok := g.hallOfFame.Sample(seed.Name)
	if !ok {
		return false
	}

	id, err := g.spawn(spawnRequest{
		Genome:     entry.Genome,
		Seed:       seed.Name,
		Anchor:     g.jitter(genome.Vec2{X: seed.X, Y: seed.Y}),
		Generation: entry.Generation,
		Health:     float32(g.cfg.Creature.InitialHealth),
	})
	if err != nil {
		g.collector.RecordDecodeFailure()
		slog.Warn("decode_failed", "seed", seed.Name, "source", "hall_of_fame", "error", err)
		return false
	}
	g.births = append(g.births, telemetry.NewFounderRecord(g.tick, uint32(id), entry.Generation, seed.Name, entry.Genome))
	return true
}
