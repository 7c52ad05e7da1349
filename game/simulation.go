package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/liquidevo/components"
	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/telemetry"
)

// simulationStep runs a single tick of the simulation.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	// 1. Advance physics
	g.perfCollector.StartPhase(telemetry.PhasePhysics)
	g.space.Step(g.cfg.Physics.DT)

	// 2. Keep bodies in the tank and refresh anchors
	g.perfCollector.StartPhase(telemetry.PhaseSync)
	g.space.ClampBodies(g.cfg.Derived.WorldMin, g.cfg.Derived.WorldMax)
	g.syncPositions()

	// 3. Eat pellets touching a fixture, top up the supply
	g.perfCollector.StartPhase(telemetry.PhaseFeeding)
	g.updateFeeding()
	g.replenishPellets()

	// 4. Health decay and death
	g.perfCollector.StartPhase(telemetry.PhaseMetabolism)
	g.updateHealth()

	// 5. Mutate and realise children
	g.perfCollector.StartPhase(telemetry.PhaseReproduction)
	g.updateReproduction()

	// 6. Remove the dead, respawn if needed
	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// syncPositions copies each creature's first body position into its
// Position component.
func (g *Game) syncPositions() {
	query := g.creatureFilter.Query()
	for query.Next() {
		c, _, pos := query.Get()
		bodies := g.space.Bodies(c.ID)
		if len(bodies) == 0 {
			continue
		}
		if p, ok := g.space.BodyPosition(bodies[0]); ok {
			pos.X = float32(p.X)
			pos.Y = float32(p.Y)
		}
	}
}

// updateFeeding hands every pellet within feed_radius of a fixture to the
// creature owning that fixture.
func (g *Game) updateFeeding() {
	radius := g.cfg.Food.FeedRadius
	gain := float32(g.cfg.Food.HealthGain)

	var eaten []ecs.Entity
	query := g.pelletFilter.Query()
	for query.Next() {
		p := query.Get()
		owner, ok := g.space.NearestOwner(genome.Vec2{X: float64(p.X), Y: float64(p.Y)}, radius)
		if !ok {
			continue
		}
		entity, ok := g.entities[owner]
		if !ok {
			continue
		}
		c := g.creatureMap.Get(entity)
		if c == nil || !c.Alive {
			continue
		}
		c.Health += gain
		c.Eaten++
		eaten = append(eaten, query.Entity())
	}

	for _, e := range eaten {
		g.world.RemoveEntity(e)
	}
	g.pellets -= len(eaten)
	g.collector.RecordEaten(len(eaten))
}

// replenishPellets scatters pellets until food.min_count are available.
func (g *Game) replenishPellets() {
	lo, hi := g.cfg.Derived.WorldMin, g.cfg.Derived.WorldMax
	for g.pellets < g.cfg.Food.MinCount {
		p := components.Pellet{
			X: float32(lo + g.rng.Float64()*(hi-lo)),
			Y: float32(lo + g.rng.Float64()*(hi-lo)),
		}
		g.pelletMapper.NewEntity(&p)
		g.pellets++
	}
}

// updateHealth applies the per-tick decay and marks creatures below the
// death threshold.
func (g *Game) updateHealth() {
	decay := float32(g.cfg.Creature.DecayPerTick)
	death := float32(g.cfg.Creature.DeathThreshold)

	query := g.creatureFilter.Query()
	for query.Next() {
		c, _, _ := query.Get()
		if !c.Alive {
			continue
		}
		c.Health -= decay
		if c.Health < death {
			c.Alive = false
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
