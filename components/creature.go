// Package components defines ECS components for the simulation.
package components

import (
	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
)

// Creature holds the health economy and lineage of one creature.
// Its bodies live in the physics space under ID.
type Creature struct {
	ID         physics.CreatureID
	ParentID   physics.CreatureID // 0 for founders
	Generation int
	Health     float32
	BornTick   int32
	Children   int
	Eaten      int
	Alive      bool
}

// Heredity carries the genome a creature was decoded from.
type Heredity struct {
	Genome genome.Genome
	Seed   string // founder seed name, inherited unchanged
}

// CanReproduce reports whether health is above threshold.
func (c *Creature) CanReproduce(threshold float32) bool {
	return c.Alive && c.Health > threshold
}
