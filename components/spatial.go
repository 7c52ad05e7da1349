package components

// Position is a creature's anchor in world metres (y up), refreshed from its
// first body every tick.
type Position struct {
	X, Y float32
}

// Pellet is a food item waiting to be eaten.
type Pellet struct {
	X, Y float32
}
