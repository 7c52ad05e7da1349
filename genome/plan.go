package genome

import "math"

// BodyKind is the physics body type encoded by the body tag.
type BodyKind uint8

const (
	BodyDynamic BodyKind = iota
	BodyStatic
	BodyKinematic
)

// Tag returns the genome character for the kind.
func (k BodyKind) Tag() byte {
	switch k {
	case BodyStatic:
		return 'S'
	case BodyKinematic:
		return 'K'
	default:
		return 'D'
	}
}

func (k BodyKind) String() string {
	switch k {
	case BodyDynamic:
		return "dynamic"
	case BodyStatic:
		return "static"
	case BodyKinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k BodyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// bodyKindFromTag maps D/S/K to a kind.
func bodyKindFromTag(tag string) (BodyKind, bool) {
	switch tag {
	case "D":
		return BodyDynamic, true
	case "S":
		return BodyStatic, true
	case "K":
		return BodyKinematic, true
	}
	return 0, false
}

// ShapeKind distinguishes fixture geometry.
type ShapeKind uint8

const (
	ShapePolygon ShapeKind = iota
	ShapeCircle
)

func (k ShapeKind) String() string {
	if k == ShapeCircle {
		return "circle"
	}
	return "polygon"
}

// MarshalText encodes the shape by name.
func (k ShapeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Vec2 is a 2D point in body-local or world coordinates.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Literal is a number from the genome with its optional mutability bound.
type Literal struct {
	Value   float64
	Min     float64
	Max     float64
	Bounded bool
}

// BodySpec describes the single rigid body of a creature.
type BodySpec struct {
	X     float64  `yaml:"x"`
	Y     float64  `yaml:"y"`
	Kind  BodyKind `yaml:"kind"`
	Angle float64  `yaml:"angle"` // degrees
}

// AngleRadians converts the encoded angle for realisation.
func (b BodySpec) AngleRadians() float64 {
	return b.Angle * math.Pi / 180
}

// FixtureSpec describes one shape attached to a body. Vertices is set for
// polygons; Center and Radius for circles.
type FixtureSpec struct {
	Shape       ShapeKind `yaml:"shape"`
	Vertices    []Vec2    `yaml:"vertices,omitempty"`
	Center      Vec2      `yaml:"center,omitempty"`
	Radius      float64   `yaml:"radius,omitempty"`
	Density     float64   `yaml:"density"`
	Friction    float64   `yaml:"friction"`
	Restitution float64   `yaml:"restitution"`
}

// BodyHandle identifies a body created by a World. Zero is never issued.
type BodyHandle uint32

// FixtureHandle identifies a fixture created by a World. Zero is never issued.
type FixtureHandle uint32

// BodyPart is a decoded body with the fixtures realised on it so far.
type BodyPart struct {
	Spec           BodySpec        `yaml:"body"`
	Handle         BodyHandle      `yaml:"-"`
	Fixtures       []FixtureSpec   `yaml:"fixtures"`
	FixtureHandles []FixtureHandle `yaml:"-"`
}

// BodyPlan is the decoded, non-heritable projection of a genome. A failed
// decode still returns whatever was realised before the error.
type BodyPlan struct {
	Parts []BodyPart `yaml:"parts"`
}

// BodyCount returns the number of bodies realised.
func (p BodyPlan) BodyCount() int {
	return len(p.Parts)
}

// FixtureCount returns the number of fixtures realised across all bodies.
func (p BodyPlan) FixtureCount() int {
	n := 0
	for _, part := range p.Parts {
		n += len(part.Fixtures)
	}
	return n
}

// Handles returns every body handle in the plan.
func (p BodyPlan) Handles() []BodyHandle {
	handles := make([]BodyHandle, 0, len(p.Parts))
	for _, part := range p.Parts {
		handles = append(handles, part.Handle)
	}
	return handles
}

// World is the physics collaborator the decoder drives.
type World interface {
	CreateBody(spec BodySpec) (BodyHandle, error)
	CreateFixture(body BodyHandle, spec FixtureSpec) (FixtureHandle, error)
}
