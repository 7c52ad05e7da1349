package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/telemetry"
)

const boxGenome = "B(0,0;D;{-180,180}0)|F(P[({-1,0}-0.5,{-1,0}-0.5),({0,1}0.5,{-1,0}-0.5),({0,1}0.5,{0,1}0.5),({-1,0}-0.5,{0,1}0.5)];{0.1,5}1;{0,1}0.3;{0,1}0.5)|"

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"splice"}},
		{"missing genome", []string{"decode"}},
		{"two genomes", []string{"mutate", boxGenome, boxGenome}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, strings.NewReader(""), &out)
			if !errors.Is(err, errUsage) {
				t.Errorf("run(%q) error = %v, want usage error", tt.args, err)
			}
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	for _, args := range [][]string{
		{"decode", boxGenome},
		{"decode", "-physics", boxGenome},
		{"decode", "-seed-name", "small_box"},
	} {
		var out bytes.Buffer
		if err := run(args, strings.NewReader(""), &out); err != nil {
			t.Fatalf("run(%q): %v", args[:len(args)-1], err)
		}
		var plan struct {
			Parts []struct {
				Fixtures []struct {
					Density float64 `yaml:"density"`
				} `yaml:"fixtures"`
			} `yaml:"parts"`
		}
		if err := yaml.Unmarshal(out.Bytes(), &plan); err != nil {
			t.Fatalf("output is not YAML: %v\n%s", err, out.String())
		}
		if len(plan.Parts) != 1 || len(plan.Parts[0].Fixtures) != 1 {
			t.Fatalf("plan = %+v, want one part with one fixture", plan)
		}
		if plan.Parts[0].Fixtures[0].Density != 1 {
			t.Errorf("density = %v, want 1", plan.Parts[0].Fixtures[0].Density)
		}
	}
}

func TestDecodeStdin(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"decode", "-"}, strings.NewReader(boxGenome+"\n"), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "parts:") {
		t.Errorf("output missing parts:\n%s", out.String())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"malformed", []string{"decode", "B(0,0;D"}},
		{"unknown seed", []string{"decode", "-seed-name", "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(tt.args, strings.NewReader(""), &out); err == nil {
				t.Errorf("run(%q) succeeded, want error", tt.args)
			}
		})
	}
}

func TestDecodePrintsPartialPlan(t *testing.T) {
	partial := "B(0,0;D;0)|F(C(0,0;1);1;0.5;0.5)|F(X(0);1;1;1)|"
	var out bytes.Buffer
	err := run([]string{"decode", partial}, strings.NewReader(""), &out)
	if !errors.Is(err, genome.ErrUnknownShape) {
		t.Fatalf("err = %v, want unknown shape", err)
	}

	var plan struct {
		Parts []struct {
			Fixtures []struct {
				Radius float64 `yaml:"radius"`
			} `yaml:"fixtures"`
		} `yaml:"parts"`
	}
	if err := yaml.Unmarshal(out.Bytes(), &plan); err != nil {
		t.Fatalf("partial plan is not YAML: %v\n%s", err, out.String())
	}
	if len(plan.Parts) != 1 || len(plan.Parts[0].Fixtures) != 1 {
		t.Fatalf("partial plan = %+v, want the body and its first fixture", plan)
	}
	if plan.Parts[0].Fixtures[0].Radius != 1 {
		t.Errorf("radius = %v, want 1", plan.Parts[0].Fixtures[0].Radius)
	}
}

func TestMutateDeterministic(t *testing.T) {
	args := []string{"mutate", "-seed", "7", "-n", "5", "-structural", "0.5", "-value", "0.5", boxGenome}

	var a, b bytes.Buffer
	if err := run(args, strings.NewReader(""), &a); err != nil {
		t.Fatal(err)
	}
	if err := run(args, strings.NewReader(""), &b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("same seed gave different children:\n%s\n%s", a.String(), b.String())
	}

	lines := strings.Split(strings.TrimSpace(a.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d children, want 5", len(lines))
	}
	for i, line := range lines {
		if _, err := genome.Parse(genome.Genome(line)); err != nil {
			t.Errorf("child %d does not decode: %v", i, err)
		}
	}
}

func TestMutateZeroRatesCopies(t *testing.T) {
	var out bytes.Buffer
	args := []string{"mutate", "-structural", "0", "-value", "0", boxGenome}
	if err := run(args, strings.NewReader(""), &out); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != boxGenome {
		t.Errorf("child = %q, want parent unchanged", got)
	}
}

func TestEvolveLineage(t *testing.T) {
	g := genome.Genome(boxGenome)
	pipeline := genome.Pipeline{StructuralRate: 0.2, ValueRate: 0.2}

	lineage, failures := evolve(g, pipeline, 30, 3)
	if len(lineage)+failures != 31 {
		t.Errorf("records %d + failures %d, want 31", len(lineage), failures)
	}
	if lineage[0].ParentID != 0 || lineage[0].Genome != boxGenome {
		t.Errorf("first record = %+v, want founder", lineage[0])
	}
	for i := 1; i < len(lineage); i++ {
		if lineage[i].ParentID != lineage[i-1].ChildID {
			t.Errorf("record %d parent %d, want %d", i, lineage[i].ParentID, lineage[i-1].ChildID)
		}
		if lineage[i].Generation != i {
			t.Errorf("record %d generation %d", i, lineage[i].Generation)
		}
	}

	again, _ := evolve(g, pipeline, 30, 3)
	if again[len(again)-1].Genome != lineage[len(lineage)-1].Genome {
		t.Error("evolve is not deterministic for a fixed seed")
	}
}

func TestEvolveWritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineage.csv")
	var out bytes.Buffer
	args := []string{"evolve", "-generations", "10", "-out", path, boxGenome}
	if err := run(args, strings.NewReader(""), &out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "generations: ") {
		t.Errorf("summary = %q", out.String())
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var records []telemetry.BirthRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 || records[0].Genome != boxGenome {
		t.Errorf("lineage CSV starts with %+v, want founder", records)
	}
}
