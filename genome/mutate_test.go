package genome

import (
	"errors"
	"testing"
)

func seedGenome() Genome {
	m := Material{Within(1, 0.1, 10), Within(0.5, 0, 1), Within(0.5, 0, 1)}
	return NewBuilder(Plain(5), Plain(5), BodyDynamic, Within(0, -180, 180)).
		Box(1, 1, 0.5, m).
		Circle(Within(0.5, -1, 1), Plain(0), Within(0.4, 0.1, 1), m).
		Genome()
}

func TestPipelineIsDeterministic(t *testing.T) {
	p := Pipeline{StructuralRate: 0.3, ValueRate: 0.2}
	a, ra, errA := p.Mutate(seedGenome(), newRand(11))
	b, rb, errB := p.Mutate(seedGenome(), newRand(11))
	if errA != nil || errB != nil {
		t.Fatalf("Mutate failed: %v / %v", errA, errB)
	}
	if a != b || ra != rb {
		t.Errorf("same seed diverged:\n%s %+v\n%s %+v", a, ra, b, rb)
	}
}

func TestPipelineKeepsSeedDecodable(t *testing.T) {
	p := Pipeline{StructuralRate: 0.2, ValueRate: 0.2}
	rng := newRand(5)
	g := seedGenome()
	for gen := 0; gen < 100; gen++ {
		next, _, err := p.Mutate(g, rng)
		if err != nil {
			t.Fatalf("gen %d: %v", gen, err)
		}
		plan, err := Parse(next)
		if err != nil {
			t.Fatalf("gen %d: child %q does not decode: %v", gen, next, err)
		}
		if plan.FixtureCount() == 0 {
			t.Fatalf("gen %d: child has no fixtures", gen)
		}
		if next.ChunkCount() > 16 {
			next = join(next.Header(), next.Chunks()[:16])
		}
		g = next
	}
}

func TestPipelineZeroRates(t *testing.T) {
	g := seedGenome()
	child, report, err := Pipeline{}.Mutate(g, newRand(1))
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if child != g {
		t.Errorf("got %q, want %q", child, g)
	}
	if report != (Report{}) {
		t.Errorf("report = %+v, want zero", report)
	}
}

func TestPipelineWrapsStageErrors(t *testing.T) {
	_, _, err := Pipeline{StructuralRate: 0.1}.Mutate(testHeader, newRand(1))
	if !errors.Is(err, ErrNoChunks) {
		t.Errorf("err = %v, want ErrNoChunks", err)
	}

	_, _, err = Pipeline{ValueRate: 0.1}.Mutate(testHeader+"|F(C(0,0;{0,1}1);1;1;1){0,1}|", newRand(1))
	if !errors.Is(err, ErrDanglingBound) {
		t.Errorf("err = %v, want ErrDanglingBound", err)
	}
}

func TestMutateUsesOneRate(t *testing.T) {
	a, errA := Mutate(seedGenome(), 0.25, newRand(3))
	b, _, errB := Pipeline{StructuralRate: 0.25, ValueRate: 0.25}.Mutate(seedGenome(), newRand(3))
	if errA != nil || errB != nil {
		t.Fatalf("Mutate failed: %v / %v", errA, errB)
	}
	if a != b {
		t.Errorf("Mutate and Pipeline diverged:\n%s\n%s", a, b)
	}
}
