// Command genome inspects and mutates creature genomes offline.
//
//	genome decode  [-physics] GENOME|-
//	genome mutate  [-seed N] [-n N] [-structural R] [-value R] GENOME|-
//	genome evolve  [-seed N] [-generations N] [-out lineage.csv] GENOME|-
//
// GENOME may also be taken from a config seed with -seed-name.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/liquidevo/config"
	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
	"github.com/pthm-cable/liquidevo/telemetry"
)

var errUsage = errors.New("usage: genome decode|mutate|evolve [flags] GENOME|-")

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("genome failed", "error", err)
		os.Exit(1)
	}
}

// run dispatches one subcommand.
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "decode":
		return runDecode(args[1:], stdin, stdout)
	case "mutate":
		return runMutate(args[1:], stdin, stdout)
	case "evolve":
		return runEvolve(args[1:], stdin, stdout)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}

// source holds the flags every subcommand uses to find its input genome.
type source struct {
	configPath string
	seedName   string
}

func (s *source) register(fs *flag.FlagSet) {
	fs.StringVar(&s.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	fs.StringVar(&s.seedName, "seed-name", "", "Read the genome of this config seed instead of an argument")
}

// genome resolves the input: a named config seed, stdin for "-", or the argument.
func (s *source) genome(fs *flag.FlagSet, stdin io.Reader) (genome.Genome, error) {
	if s.seedName != "" {
		cfg, err := config.Load(s.configPath)
		if err != nil {
			return "", err
		}
		for _, seed := range cfg.Seeds {
			if seed.Name == s.seedName {
				return genome.Genome(seed.Genome), nil
			}
		}
		return "", fmt.Errorf("no seed named %q in config", s.seedName)
	}

	if fs.NArg() != 1 {
		return "", errUsage
	}
	arg := fs.Arg(0)
	if arg != "-" {
		return genome.Genome(arg), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return genome.Genome(strings.TrimSpace(string(data))), nil
}

// runDecode prints the body plan as YAML. With -physics the plan is also
// realised in an empty space to catch errors only the physics world reports.
// On a decode error the partial plan is still printed before the error returns.
func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	var src source
	src.register(fs)
	realise := fs.Bool("physics", false, "Also realise the plan in a physics space")
	if err := fs.Parse(args); err != nil {
		return err
	}
	g, err := src.genome(fs, stdin)
	if err != nil {
		return err
	}

	var plan genome.BodyPlan
	if *realise {
		plan, err = decodeInSpace(g)
	} else {
		plan, err = genome.Parse(g)
	}
	if err != nil {
		// the decoder keeps what it built before the failure
		slog.Warn("decode_failed", "bodies", plan.BodyCount(), "fixtures", plan.FixtureCount(), "error", err)
		if plan.BodyCount() == 0 {
			return err
		}
		if encErr := writePlan(stdout, plan); encErr != nil {
			return errors.Join(err, encErr)
		}
		return err
	}
	return writePlan(stdout, plan)
}

func writePlan(w io.Writer, plan genome.BodyPlan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return enc.Close()
}

// decodeInSpace realises g at the origin of a fresh space.
func decodeInSpace(g genome.Genome) (genome.BodyPlan, error) {
	space := physics.New(physics.Options{MinDensity: 0.01})
	return genome.Decode(g, space.Scope(1, genome.Vec2{}))
}

// runMutate prints n independent children of one genome.
func runMutate(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("mutate", flag.ContinueOnError)
	var src source
	src.register(fs)
	seed := fs.Uint64("seed", 1, "RNG seed")
	n := fs.Int("n", 1, "Number of children")
	structural := fs.Float64("structural", 0.05, "Structural mutation rate")
	value := fs.Float64("value", 0.05, "Value mutation rate")
	verbose := fs.Bool("v", false, "Log the operations applied to each child")
	if err := fs.Parse(args); err != nil {
		return err
	}
	g, err := src.genome(fs, stdin)
	if err != nil {
		return err
	}

	pipeline := genome.Pipeline{StructuralRate: *structural, ValueRate: *value}
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	for i := 0; i < *n; i++ {
		child, report, err := pipeline.Mutate(g, rng)
		if err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
		if *verbose {
			slog.Info("mutated", "child", i, "mutation", report)
		}
		fmt.Fprintln(stdout, child)
	}
	return nil
}

// runEvolve mutates a single line of descent for a number of generations.
// A child that does not realise in physics is dropped and its parent tries
// again next generation. The lineage is written as CSV with -out.
func runEvolve(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	var src source
	src.register(fs)
	seed := fs.Uint64("seed", 1, "RNG seed")
	generations := fs.Int("generations", 100, "Generations to run")
	structural := fs.Float64("structural", 0.05, "Structural mutation rate")
	value := fs.Float64("value", 0.05, "Value mutation rate")
	out := fs.String("out", "", "Write the lineage CSV here")
	if err := fs.Parse(args); err != nil {
		return err
	}
	g, err := src.genome(fs, stdin)
	if err != nil {
		return err
	}
	if _, err := decodeInSpace(g); err != nil {
		return fmt.Errorf("founder: %w", err)
	}

	lineage, failures := evolve(g, genome.Pipeline{StructuralRate: *structural, ValueRate: *value}, *generations, *seed)

	last := lineage[len(lineage)-1]
	fmt.Fprintf(stdout, "generations: %d\nfailures: %d\nchunks: %d\n%s\n",
		last.Generation, failures, last.Chunks, last.Genome)

	if *out == "" {
		return nil
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating lineage file: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&lineage, f); err != nil {
		return fmt.Errorf("writing lineage: %w", err)
	}
	return nil
}

// evolve runs the descent and returns one record per surviving generation
// (the founder first) and the number of rejected children.
func evolve(g genome.Genome, pipeline genome.Pipeline, generations int, seed uint64) ([]telemetry.BirthRecord, int) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	lineage := []telemetry.BirthRecord{telemetry.NewFounderRecord(0, 1, 0, "cli", g)}
	failures := 0

	parent := g
	gen := 0
	for attempt := 1; attempt <= generations; attempt++ {
		child, report, err := pipeline.Mutate(parent, rng)
		if err == nil {
			_, err = decodeInSpace(child)
		}
		if err != nil {
			failures++
			slog.Debug("child_rejected", "attempt", attempt, "error", err)
			continue
		}
		gen++
		lineage = append(lineage, telemetry.NewBirthRecord(
			int32(attempt), uint32(gen+1), uint32(gen), gen, "cli", child, report,
		))
		parent = child
	}
	return lineage, failures
}
