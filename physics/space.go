// Package physics realises genome body plans in a Chipmunk2D space and keeps
// track of which creature owns which bodies and fixtures.
package physics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jakecoffman/cp"

	"github.com/pthm-cable/liquidevo/genome"
)

// CreatureID identifies the owner of a group of bodies.
type CreatureID uint32

var (
	ErrUnknownBody    = errors.New("unknown body handle")
	ErrUnknownFixture = errors.New("unknown fixture handle")
	ErrInvalidFixture = errors.New("invalid fixture geometry")
)

// Shape categories. Boundary walls are excluded from creature queries.
const (
	categoryCreature uint = 1 << iota
	categoryWall
)

// Options configures a Space.
type Options struct {
	Gravity    genome.Vec2
	Iterations int
	// MinDensity is applied to fixtures on dynamic bodies so Chipmunk
	// always sees positive mass.
	MinDensity float64
}

type bodyEntry struct {
	body     *cp.Body
	owner    CreatureID
	kind     genome.BodyKind
	fixtures []genome.FixtureHandle
}

type fixtureEntry struct {
	shape *cp.Shape
	body  genome.BodyHandle
	spec  genome.FixtureSpec
}

// Space is the physics world. It is not safe for concurrent use.
type Space struct {
	space      *cp.Space
	minDensity float64

	next     uint32
	bodies   map[genome.BodyHandle]*bodyEntry
	fixtures map[genome.FixtureHandle]*fixtureEntry
	owners   map[CreatureID][]genome.BodyHandle
	walls    []*cp.Shape
}

// New creates an empty space.
func New(opts Options) *Space {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: opts.Gravity.X, Y: opts.Gravity.Y})
	if opts.Iterations > 0 {
		space.Iterations = uint(opts.Iterations)
	}
	return &Space{
		space:      space,
		minDensity: opts.MinDensity,
		bodies:     make(map[genome.BodyHandle]*bodyEntry),
		fixtures:   make(map[genome.FixtureHandle]*fixtureEntry),
		owners:     make(map[CreatureID][]genome.BodyHandle),
	}
}

// AddBoundary encloses [0, size]² with four static segments.
func (s *Space) AddBoundary(size, friction, elasticity float64) {
	corners := []cp.Vector{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		seg := cp.NewSegment(s.space.StaticBody, a, b, 0)
		seg.SetFriction(friction)
		seg.SetElasticity(elasticity)
		seg.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categoryWall, Mask: cp.ALL_CATEGORIES})
		s.space.AddShape(seg)
		s.walls = append(s.walls, seg)
	}
}

// Scope returns the decoder's view of the space. Bodies created through it
// are placed at origin + (x, y) and registered to owner.
func (s *Space) Scope(owner CreatureID, origin genome.Vec2) genome.World {
	return &scope{space: s, owner: owner, origin: origin}
}

type scope struct {
	space  *Space
	owner  CreatureID
	origin genome.Vec2
}

func (sc *scope) CreateBody(spec genome.BodySpec) (genome.BodyHandle, error) {
	return sc.space.createBody(sc.owner, sc.origin, spec)
}

func (sc *scope) CreateFixture(body genome.BodyHandle, spec genome.FixtureSpec) (genome.FixtureHandle, error) {
	return sc.space.createFixture(body, spec)
}

func (s *Space) issue() uint32 {
	s.next++
	return s.next
}

func (s *Space) createBody(owner CreatureID, origin genome.Vec2, spec genome.BodySpec) (genome.BodyHandle, error) {
	var body *cp.Body
	switch spec.Kind {
	case genome.BodyStatic:
		body = cp.NewStaticBody()
	case genome.BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		// placeholder mass until the first fixture with density lands
		body = cp.NewBody(1, 1)
	}
	body.SetPosition(cp.Vector{X: origin.X + spec.X, Y: origin.Y + spec.Y})
	body.SetAngle(spec.AngleRadians())
	s.space.AddBody(body)

	h := genome.BodyHandle(s.issue())
	s.bodies[h] = &bodyEntry{body: body, owner: owner, kind: spec.Kind}
	s.owners[owner] = append(s.owners[owner], h)
	return h, nil
}

func (s *Space) createFixture(bh genome.BodyHandle, spec genome.FixtureSpec) (genome.FixtureHandle, error) {
	be, ok := s.bodies[bh]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBody, bh)
	}

	var shape *cp.Shape
	switch spec.Shape {
	case genome.ShapeCircle:
		if !(spec.Radius > 0) {
			return 0, fmt.Errorf("%w: circle radius %v", ErrInvalidFixture, spec.Radius)
		}
		shape = cp.NewCircle(be.body, spec.Radius, cp.Vector{X: spec.Center.X, Y: spec.Center.Y})
	case genome.ShapePolygon:
		verts := make([]cp.Vector, len(spec.Vertices))
		for i, v := range spec.Vertices {
			verts[i] = cp.Vector{X: v.X, Y: v.Y}
		}
		if area := math.Abs(cp.AreaForPoly(len(verts), verts, 0)); !(area > 1e-9) {
			return 0, fmt.Errorf("%w: polygon area %v", ErrInvalidFixture, area)
		}
		shape = cp.NewPolyShape(be.body, len(verts), verts, cp.NewTransformIdentity(), 0)
	default:
		return 0, fmt.Errorf("%w: shape %s", ErrInvalidFixture, spec.Shape)
	}

	density := spec.Density
	if be.kind == genome.BodyDynamic && density < s.minDensity {
		density = s.minDensity
	}
	shape.SetFriction(spec.Friction)
	shape.SetElasticity(spec.Restitution)
	shape.SetFilter(cp.ShapeFilter{Group: cp.NO_GROUP, Categories: categoryCreature, Mask: cp.ALL_CATEGORIES})
	shape.UserData = be.owner
	s.space.AddShape(shape)
	// density after attaching so the body's mass is recomputed with this shape
	if density > 0 {
		shape.SetDensity(density)
	}

	h := genome.FixtureHandle(s.issue())
	s.fixtures[h] = &fixtureEntry{shape: shape, body: bh, spec: spec}
	be.fixtures = append(be.fixtures, h)
	return h, nil
}

// DestroyFixture removes one fixture from its body.
func (s *Space) DestroyFixture(h genome.FixtureHandle) error {
	fe, ok := s.fixtures[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFixture, h)
	}
	s.space.RemoveShape(fe.shape)
	delete(s.fixtures, h)

	be := s.bodies[fe.body]
	for i, fh := range be.fixtures {
		if fh == h {
			be.fixtures = append(be.fixtures[:i], be.fixtures[i+1:]...)
			break
		}
	}
	if be.kind == genome.BodyDynamic && len(be.fixtures) == 0 {
		be.body.SetMass(1)
		be.body.SetMoment(1)
	}
	return nil
}

// DestroyBody removes a body together with its fixtures.
func (s *Space) DestroyBody(h genome.BodyHandle) error {
	be, ok := s.bodies[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBody, h)
	}
	for _, fh := range be.fixtures {
		s.space.RemoveShape(s.fixtures[fh].shape)
		delete(s.fixtures, fh)
	}
	s.space.RemoveBody(be.body)
	delete(s.bodies, h)

	owned := s.owners[be.owner]
	for i, bh := range owned {
		if bh == h {
			owned = append(owned[:i], owned[i+1:]...)
			break
		}
	}
	if len(owned) == 0 {
		delete(s.owners, be.owner)
	} else {
		s.owners[be.owner] = owned
	}
	return nil
}

// Release destroys everything owner holds and returns the number of bodies
// removed.
func (s *Space) Release(owner CreatureID) int {
	handles := append([]genome.BodyHandle(nil), s.owners[owner]...)
	for _, h := range handles {
		_ = s.DestroyBody(h)
	}
	return len(handles)
}

// Bodies returns the body handles owned by owner in creation order.
func (s *Space) Bodies(owner CreatureID) []genome.BodyHandle {
	return append([]genome.BodyHandle(nil), s.owners[owner]...)
}

// Owners returns every creature holding at least one body, sorted.
func (s *Space) Owners() []CreatureID {
	ids := make([]CreatureID, 0, len(s.owners))
	for id := range s.owners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BodyPosition returns the world position of a body.
func (s *Space) BodyPosition(h genome.BodyHandle) (genome.Vec2, bool) {
	be, ok := s.bodies[h]
	if !ok {
		return genome.Vec2{}, false
	}
	p := be.body.Position()
	return genome.Vec2{X: p.X, Y: p.Y}, true
}

// BodyAngle returns the body's rotation in radians.
func (s *Space) BodyAngle(h genome.BodyHandle) (float64, bool) {
	be, ok := s.bodies[h]
	if !ok {
		return 0, false
	}
	return be.body.Angle(), true
}

// BodyCount and FixtureCount report live resources across all owners.
func (s *Space) BodyCount() int    { return len(s.bodies) }
func (s *Space) FixtureCount() int { return len(s.fixtures) }

// NearestOwner returns the creature whose fixture is closest to p within
// maxDist. Boundary walls are ignored.
func (s *Space) NearestOwner(p genome.Vec2, maxDist float64) (CreatureID, bool) {
	filter := cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: categoryCreature}
	info := s.space.PointQueryNearest(cp.Vector{X: p.X, Y: p.Y}, maxDist, filter)
	if info == nil || info.Shape == nil {
		return 0, false
	}
	owner, ok := info.Shape.UserData.(CreatureID)
	return owner, ok
}

// ClampBodies pulls every dynamic body back inside [lo, hi]² on both axes.
func (s *Space) ClampBodies(lo, hi float64) int {
	clamped := 0
	for _, be := range s.bodies {
		if be.kind != genome.BodyDynamic {
			continue
		}
		p := be.body.Position()
		x, y := clampf(p.X, lo, hi), clampf(p.Y, lo, hi)
		if x != p.X || y != p.Y {
			be.body.SetPosition(cp.Vector{X: x, Y: y})
			clamped++
		}
	}
	return clamped
}

// Step advances the simulation by dt seconds.
func (s *Space) Step(dt float64) {
	s.space.Step(dt)
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
