package physics

import (
	"github.com/jakecoffman/cp"

	"github.com/pthm-cable/liquidevo/genome"
)

// Outline is the world-space geometry of one fixture, ready for drawing.
type Outline struct {
	Shape  genome.ShapeKind
	Points []genome.Vec2 // polygon vertices
	Center genome.Vec2   // circle centre
	Radius float64
	Angle  float64 // body rotation in radians
}

// Outline returns the world-space outlines of every fixture on body h.
func (s *Space) Outline(h genome.BodyHandle) []Outline {
	be, ok := s.bodies[h]
	if !ok {
		return nil
	}
	out := make([]Outline, 0, len(be.fixtures))
	for _, fh := range be.fixtures {
		spec := s.fixtures[fh].spec
		o := Outline{Shape: spec.Shape, Radius: spec.Radius, Angle: be.body.Angle()}
		switch spec.Shape {
		case genome.ShapeCircle:
			o.Center = toWorld(be.body, spec.Center)
		case genome.ShapePolygon:
			o.Points = make([]genome.Vec2, len(spec.Vertices))
			for i, v := range spec.Vertices {
				o.Points[i] = toWorld(be.body, v)
			}
		}
		out = append(out, o)
	}
	return out
}

// Outlines collects the outlines of every body owner holds.
func (s *Space) Outlines(owner CreatureID) []Outline {
	var out []Outline
	for _, h := range s.owners[owner] {
		out = append(out, s.Outline(h)...)
	}
	return out
}

func toWorld(body *cp.Body, v genome.Vec2) genome.Vec2 {
	w := body.LocalToWorld(cp.Vector{X: v.X, Y: v.Y})
	return genome.Vec2{X: w.X, Y: w.Y}
}
