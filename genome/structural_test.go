package genome

import (
	"errors"
	"reflect"
	"testing"
)

const testHeader = "B(2,3;D;45)"

func TestStructuralMutateSingleChunk(t *testing.T) {
	in := Genome(testHeader + "|A|")
	for seed := uint64(0); seed < 64; seed++ {
		out, err := StructuralMutate(in, 1, newRand(seed))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if out != in && out != Genome(testHeader+"|A|A|") {
			t.Errorf("seed %d: got %q", seed, out)
		}
	}
}

func TestStructuralMutateInvariants(t *testing.T) {
	seed := Genome(testHeader + "|A|B|C|D|")
	allowed := map[string]bool{"A": true, "B": true, "C": true, "D": true}

	for _, rate := range []float64{0.1, 0.5, 1} {
		rng := newRand(uint64(rate * 100))
		g := seed
		for gen := 0; gen < 200; gen++ {
			next, err := StructuralMutate(g, rate, rng)
			if err != nil {
				t.Fatalf("rate %v gen %d: %v", rate, gen, err)
			}
			if next.Header() != testHeader {
				t.Fatalf("rate %v gen %d: header changed to %q", rate, gen, next.Header())
			}
			chunks := next.Chunks()
			if len(chunks) == 0 {
				t.Fatalf("rate %v gen %d: no chunks left", rate, gen)
			}
			for _, c := range chunks {
				if !allowed[c] {
					t.Fatalf("rate %v gen %d: invented chunk %q", rate, gen, c)
				}
			}
			// keep the population from growing without limit
			if len(chunks) > 32 {
				next = join(testHeader, chunks[:32])
			}
			g = next
		}
	}
}

func TestStructuralMutateZeroRateNormalises(t *testing.T) {
	in := Genome(testHeader + "|A||B| |C")
	out, err := StructuralMutate(in, 0, newRand(1))
	if err != nil {
		t.Fatalf("StructuralMutate failed: %v", err)
	}
	if want := Genome(testHeader + "|A|B|C|"); out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestStructuralMutateNoChunks(t *testing.T) {
	for _, g := range []Genome{testHeader, testHeader + "|", testHeader + "| | |"} {
		out, err := StructuralMutate(g, 0.5, newRand(1))
		if !errors.Is(err, ErrNoChunks) {
			t.Errorf("%q: err = %v, want ErrNoChunks", g, err)
		}
		if out != g {
			t.Errorf("%q: got %q, want input back", g, out)
		}
	}
}

func TestStructuralMutateInvalidRate(t *testing.T) {
	_, err := StructuralMutate(testHeader+"|A|", -0.1, newRand(1))
	if !errors.Is(err, ErrInvalidRate) {
		t.Errorf("err = %v, want ErrInvalidRate", err)
	}
}

func TestStructuralMutateIsDeterministic(t *testing.T) {
	in := Genome(testHeader + "|A|B|C|D|E|")
	a, _ := StructuralMutate(in, 0.7, newRand(9))
	b, _ := StructuralMutate(in, 0.7, newRand(9))
	if a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}
}

func TestHeaderAndChunks(t *testing.T) {
	tests := []struct {
		genome Genome
		header string
		chunks []string
	}{
		{"H|a||b| |", "H", []string{"a", "b"}},
		{"H", "H", nil},
		{"|a|", "", []string{"a"}},
		{"H|a|b", "H", []string{"a", "b"}},
	}

	for _, tt := range tests {
		if got := tt.genome.Header(); got != tt.header {
			t.Errorf("%q.Header() = %q, want %q", tt.genome, got, tt.header)
		}
		got := tt.genome.Chunks()
		if len(got) != len(tt.chunks) || (len(got) > 0 && !reflect.DeepEqual(got, tt.chunks)) {
			t.Errorf("%q.Chunks() = %q, want %q", tt.genome, got, tt.chunks)
		}
		if tt.genome.ChunkCount() != len(tt.chunks) {
			t.Errorf("%q.ChunkCount() = %d, want %d", tt.genome, tt.genome.ChunkCount(), len(tt.chunks))
		}
	}
}
