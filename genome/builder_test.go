package genome

import "testing"

func TestBuilderPolygon(t *testing.T) {
	half := Plain(0.5)
	g := NewBuilder(Plain(2), Plain(3), BodyDynamic, Plain(45)).
		Polygon([]Point{
			{Plain(0), Plain(0)},
			{Plain(1), Plain(0)},
			{Plain(1), Plain(1)},
			{Plain(0), Plain(1)},
		}, Material{half, half, half}).
		Genome()

	want := Genome("B(2,3;D;45)|F(P[(0,0),(1,0),(1,1),(0,1)];0.5;0.5;0.5)|")
	if g != want {
		t.Errorf("got %q, want %q", g, want)
	}
}

func TestBuilderBoundedCircle(t *testing.T) {
	g := NewBuilder(Within(1, 0.5, 39.5), Plain(-2), BodyStatic, Plain(0)).
		Circle(Plain(0), Plain(0), Within(0.5, 0.1, 2), Material{Plain(1), Within(0.3, 0, 1), Plain(0)}).
		Genome()

	want := Genome("B({0.5,39.5}1,-2;S;0)|F(C(0,0;{0.1,2}0.5);1;{0,1}0.3;0)|")
	if g != want {
		t.Errorf("got %q, want %q", g, want)
	}
}

func TestBoxChunkDecodes(t *testing.T) {
	m := Material{Within(1, 0.1, 5), Within(0.5, 0, 1), Within(0.5, 0, 1)}
	g := NewBuilder(Plain(15), Plain(5), BodyDynamic, Plain(0)).Box(2, 2, 0.5, m).Genome()

	plan, err := Parse(g)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", g, err)
	}
	verts := plan.Parts[0].Fixtures[0].Vertices
	want := []Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	if len(verts) != len(want) {
		t.Fatalf("vertices = %v, want %v", verts, want)
	}
	for i := range want {
		if verts[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, verts[i], want[i])
		}
	}
}

func TestAppendChunk(t *testing.T) {
	tests := []struct {
		in    Genome
		chunk string
		want  Genome
	}{
		{"H|A|", "B", "H|A|B|"},
		{"H", "A", "H|A|"},
		{"H|A||", "B", "H|A|B|"},
	}

	for _, tt := range tests {
		if got := AppendChunk(tt.in, tt.chunk); got != tt.want {
			t.Errorf("AppendChunk(%q, %q) = %q, want %q", tt.in, tt.chunk, got, tt.want)
		}
	}
}
