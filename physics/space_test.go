package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/liquidevo/genome"
)

func newTestSpace() *Space {
	return New(Options{Iterations: 10, MinDensity: 0.01})
}

func TestScopeRealisesPlan(t *testing.T) {
	s := newTestSpace()
	plan, err := genome.Decode("B(2,3;D;45)F(P[(0,0),(1,0),(1,1),(0,1)];0.5;0.5;0.5)", s.Scope(7, genome.Vec2{X: 10, Y: 20}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	h := plan.Parts[0].Handle
	pos, ok := s.BodyPosition(h)
	if !ok {
		t.Fatal("body not registered")
	}
	if math.Abs(pos.X-12) > 1e-9 || math.Abs(pos.Y-23) > 1e-9 {
		t.Errorf("position = %v, want (12,23)", pos)
	}
	angle, _ := s.BodyAngle(h)
	if math.Abs(angle-math.Pi/4) > 1e-9 {
		t.Errorf("angle = %v, want pi/4", angle)
	}
	if s.BodyCount() != 1 || s.FixtureCount() != 1 {
		t.Errorf("space has %d bodies, %d fixtures; want 1, 1", s.BodyCount(), s.FixtureCount())
	}
	if got := s.Bodies(7); len(got) != 1 || got[0] != h {
		t.Errorf("Bodies(7) = %v, want [%d]", got, h)
	}
}

func TestHandlesAreUniqueAndNonZero(t *testing.T) {
	s := newTestSpace()
	seen := map[uint32]bool{}
	for owner := CreatureID(1); owner <= 3; owner++ {
		plan, err := genome.Decode("B(0,0;D;0)|F(C(0,0;1);1;1;1)|F(C(1,0;1);1;1;1)|", s.Scope(owner, genome.Vec2{}))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for _, part := range plan.Parts {
			ids := []uint32{uint32(part.Handle)}
			for _, fh := range part.FixtureHandles {
				ids = append(ids, uint32(fh))
			}
			for _, id := range ids {
				if id == 0 || seen[id] {
					t.Errorf("handle %d issued twice or zero", id)
				}
				seen[id] = true
			}
		}
	}
}

func TestBodyKinds(t *testing.T) {
	tests := []struct {
		genome genome.Genome
		kind   genome.BodyKind
	}{
		{"B(5,5;S;0)|F(C(0,0;1);1;0.5;0.5)|", genome.BodyStatic},
		{"B(5,5;K;0)|F(C(0,0;1);1;0.5;0.5)|", genome.BodyKinematic},
		{"B(5,5;D;0)|F(C(0,0;1);1;0.5;0.5)|", genome.BodyDynamic},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s := newTestSpace()
			plan, err := genome.Decode(tt.genome, s.Scope(1, genome.Vec2{}))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got := s.bodies[plan.Parts[0].Handle].kind; got != tt.kind {
				t.Errorf("kind = %s, want %s", got, tt.kind)
			}
			s.Step(1.0 / 60)
		})
	}
}

func TestInvalidFixtureKeepsPartialPlan(t *testing.T) {
	tests := []struct {
		name   string
		genome genome.Genome
	}{
		{"zero radius", "B(0,0;D;0)|F(C(0,0;1);1;1;1)|F(C(0,0;0);1;1;1)|"},
		{"negative radius", "B(0,0;D;0)|F(C(0,0;1);1;1;1)|F(C(0,0;-2);1;1;1)|"},
		{"collinear polygon", "B(0,0;D;0)|F(C(0,0;1);1;1;1)|F(P[(0,0),(1,0),(2,0)];1;1;1)|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSpace()
			plan, err := genome.Decode(tt.genome, s.Scope(3, genome.Vec2{}))
			if !errors.Is(err, ErrInvalidFixture) {
				t.Fatalf("err = %v, want ErrInvalidFixture", err)
			}
			if plan.BodyCount() != 1 || plan.FixtureCount() != 1 {
				t.Errorf("partial plan has %d bodies, %d fixtures; want 1, 1", plan.BodyCount(), plan.FixtureCount())
			}
			if n := s.Release(3); n != 1 {
				t.Errorf("Release removed %d bodies, want 1", n)
			}
			if s.BodyCount() != 0 || s.FixtureCount() != 0 {
				t.Errorf("space not empty after release: %d bodies, %d fixtures", s.BodyCount(), s.FixtureCount())
			}
		})
	}
}

func TestReleaseOnlyTouchesOwner(t *testing.T) {
	s := newTestSpace()
	g := genome.Genome("B(0,0;D;0)|F(C(0,0;1);1;1;1)|")
	for owner := CreatureID(1); owner <= 2; owner++ {
		if _, err := genome.Decode(g, s.Scope(owner, genome.Vec2{X: float64(owner) * 5})); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
	}

	s.Release(1)
	if len(s.Bodies(1)) != 0 {
		t.Errorf("owner 1 still holds %v", s.Bodies(1))
	}
	if len(s.Bodies(2)) != 1 {
		t.Errorf("owner 2 holds %v, want one body", s.Bodies(2))
	}
	if owners := s.Owners(); len(owners) != 1 || owners[0] != 2 {
		t.Errorf("Owners() = %v, want [2]", owners)
	}
	if s.Release(1) != 0 {
		t.Error("second release should be a no-op")
	}
}

func TestDestroyFixtureAndBody(t *testing.T) {
	s := New(Options{Gravity: genome.Vec2{Y: -10}, MinDensity: 0.01})
	plan, err := genome.Decode("B(5,5;D;0)|F(C(0,0;1);1;1;1)|F(C(1,0;1);1;1;1)|", s.Scope(1, genome.Vec2{}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	part := plan.Parts[0]

	for _, fh := range part.FixtureHandles {
		if err := s.DestroyFixture(fh); err != nil {
			t.Fatalf("DestroyFixture(%d): %v", fh, err)
		}
	}
	if err := s.DestroyFixture(part.FixtureHandles[0]); !errors.Is(err, ErrUnknownFixture) {
		t.Errorf("err = %v, want ErrUnknownFixture", err)
	}
	// a dynamic body without fixtures still steps
	s.Step(1.0 / 60)

	if err := s.DestroyBody(part.Handle); err != nil {
		t.Fatalf("DestroyBody: %v", err)
	}
	if err := s.DestroyBody(part.Handle); !errors.Is(err, ErrUnknownBody) {
		t.Errorf("err = %v, want ErrUnknownBody", err)
	}
	if _, ok := s.BodyPosition(part.Handle); ok {
		t.Error("destroyed body still has a position")
	}
}

func TestGravityMovesDynamicBodies(t *testing.T) {
	s := New(Options{Gravity: genome.Vec2{Y: -10}, Iterations: 10, MinDensity: 0.01})
	plan, err := genome.Decode("B(20,20;D;0)|F(C(0,0;0.5);1;0.5;0.5)|", s.Scope(1, genome.Vec2{}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	static, err := genome.Decode("B(10,20;S;0)|F(C(0,0;0.5);1;0.5;0.5)|", s.Scope(2, genome.Vec2{}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i := 0; i < 30; i++ {
		s.Step(1.0 / 60)
	}

	pos, _ := s.BodyPosition(plan.Parts[0].Handle)
	if pos.Y >= 20 {
		t.Errorf("dynamic body y = %v, want below 20", pos.Y)
	}
	spos, _ := s.BodyPosition(static.Parts[0].Handle)
	if spos.Y != 20 {
		t.Errorf("static body y = %v, want 20", spos.Y)
	}
}

func TestNearestOwner(t *testing.T) {
	s := newTestSpace()
	s.AddBoundary(40, 0.5, 0.5)
	g := genome.Genome("B(0,0;D;0)|F(C(0,0;1);1;1;1)|")
	if _, err := genome.Decode(g, s.Scope(4, genome.Vec2{X: 10, Y: 10})); err != nil {
		t.Fatal(err)
	}
	if _, err := genome.Decode(g, s.Scope(9, genome.Vec2{X: 30, Y: 10})); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		point genome.Vec2
		dist  float64
		want  CreatureID
		found bool
	}{
		{"inside first", genome.Vec2{X: 10, Y: 10}, 0.5, 4, true},
		{"near second", genome.Vec2{X: 31.2, Y: 10}, 0.5, 9, true},
		{"out of reach", genome.Vec2{X: 20, Y: 10}, 0.5, 0, false},
		{"next to wall only", genome.Vec2{X: 20, Y: 0.1}, 0.5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.NearestOwner(tt.point, tt.dist)
			if ok != tt.found || got != tt.want {
				t.Errorf("NearestOwner(%v) = %d, %v; want %d, %v", tt.point, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestClampBodies(t *testing.T) {
	s := newTestSpace()
	plan, err := genome.Decode("B(45,-3;D;0)|F(C(0,0;0.5);1;1;1)|", s.Scope(1, genome.Vec2{}))
	if err != nil {
		t.Fatal(err)
	}
	static, err := genome.Decode("B(50,50;S;0)|F(C(0,0;0.5);1;1;1)|", s.Scope(2, genome.Vec2{}))
	if err != nil {
		t.Fatal(err)
	}

	if n := s.ClampBodies(0.5, 39.5); n != 1 {
		t.Errorf("clamped %d bodies, want 1", n)
	}
	pos, _ := s.BodyPosition(plan.Parts[0].Handle)
	if pos.X != 39.5 || pos.Y != 0.5 {
		t.Errorf("position = %v, want (39.5, 0.5)", pos)
	}
	spos, _ := s.BodyPosition(static.Parts[0].Handle)
	if spos.X != 50 {
		t.Errorf("static body moved to %v", spos)
	}
}

func TestOutline(t *testing.T) {
	s := newTestSpace()
	plan, err := genome.Decode("B(5,5;D;90)|F(P[(0,0),(1,0),(0,1)];1;1;1)|F(C(1,0;0.5);1;1;1)|", s.Scope(1, genome.Vec2{}))
	if err != nil {
		t.Fatal(err)
	}

	outlines := s.Outline(plan.Parts[0].Handle)
	if len(outlines) != 2 {
		t.Fatalf("got %d outlines, want 2", len(outlines))
	}

	// rotated 90°: local (1,0) lands at (5,6)
	tri := outlines[0]
	if tri.Shape != genome.ShapePolygon || len(tri.Points) != 3 {
		t.Fatalf("first outline = %+v", tri)
	}
	if p := tri.Points[1]; math.Abs(p.X-5) > 1e-9 || math.Abs(p.Y-6) > 1e-9 {
		t.Errorf("rotated vertex = %v, want (5,6)", p)
	}
	circle := outlines[1]
	if circle.Shape != genome.ShapeCircle || circle.Radius != 0.5 {
		t.Errorf("second outline = %+v", circle)
	}
	if c := circle.Center; math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-6) > 1e-9 {
		t.Errorf("circle centre = %v, want (5,6)", c)
	}

	if got := s.Outlines(1); len(got) != 2 {
		t.Errorf("Outlines(1) returned %d, want 2", len(got))
	}
}
