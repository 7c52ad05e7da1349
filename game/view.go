package game

import (
	"github.com/pthm-cable/liquidevo/components"
	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
)

// selectRadius is how far from a fixture a click still selects it, metres.
const selectRadius = 0.5

// CreatureInfo is a read-only copy of one creature for drawing and inspection.
type CreatureInfo struct {
	components.Creature
	Seed     string
	Genome   genome.Genome
	X, Y     float32
	Outlines []physics.Outline
}

// Creatures returns every living creature with its world-space outlines.
func (g *Game) Creatures() []CreatureInfo {
	out := make([]CreatureInfo, 0, g.alive)
	query := g.creatureFilter.Query()
	for query.Next() {
		c, h, pos := query.Get()
		if !c.Alive {
			continue
		}
		out = append(out, CreatureInfo{
			Creature: *c,
			Seed:     h.Seed,
			Genome:   h.Genome,
			X:        pos.X,
			Y:        pos.Y,
			Outlines: g.space.Outlines(c.ID),
		})
	}
	return out
}

// Creature looks up one living creature by id.
func (g *Game) Creature(id physics.CreatureID) (CreatureInfo, bool) {
	entity, ok := g.entities[id]
	if !ok || !g.world.Alive(entity) {
		return CreatureInfo{}, false
	}
	c := g.creatureMap.Get(entity)
	h := g.heredityMap.Get(entity)
	pos := g.posMap.Get(entity)
	if c == nil || !c.Alive {
		return CreatureInfo{}, false
	}
	return CreatureInfo{
		Creature: *c,
		Seed:     h.Seed,
		Genome:   h.Genome,
		X:        pos.X,
		Y:        pos.Y,
		Outlines: g.space.Outlines(id),
	}, true
}

// CreatureAt returns the creature whose fixture is nearest to the world
// point (x, y), within selectRadius.
func (g *Game) CreatureAt(x, y float64) (physics.CreatureID, bool) {
	return g.space.NearestOwner(genome.Vec2{X: x, Y: y}, selectRadius)
}

// Pellets returns the positions of every uneaten pellet.
func (g *Game) Pellets() []components.Pellet {
	out := make([]components.Pellet, 0, g.pellets)
	query := g.pelletFilter.Query()
	for query.Next() {
		out = append(out, *query.Get())
	}
	return out
}
