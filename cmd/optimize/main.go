// Package main searches mutation and health-economy parameters with CMA-ES
// for populations that persist and keep evolving.
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/liquidevo/config"
)

type options struct {
	configPath string
	outputDir  string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.maxTicks, "max-ticks", 180000, "Cap on ticks per run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Runs per evaluation, each with its own seed")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Evaluation budget")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = 4 + 3 ln n)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(opts.maxTicks), seeds, baseCfg)

	popSize := opts.population
	if popSize <= 0 {
		popSize = 4 + int(3*math.Log(float64(params.Dim())))
	}

	evalLog, err := newEvalLog(filepath.Join(opts.outputDir, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer evalLog.Close()

	tracker := &progress{
		params:    params,
		evaluator: evaluator,
		log:       evalLog,
		budget:    opts.maxEvals,
		dt:        baseCfg.Physics.DT,
		best:      math.Inf(1),
		start:     time.Now(),
	}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"max_ticks", opts.maxTicks,
	)

	// Search runs in the unit cube; Denormalize maps back to raw values.
	problem := optimize.Problem{Func: tracker.evaluate}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization stopped", "error", err)
	}

	best := tracker.bestParams
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return errors.New("no evaluation completed")
	}

	slog.Info("optimization complete",
		"evals", tracker.evals,
		"elapsed", formatDuration(time.Since(tracker.start)),
		"best_fitness", tracker.best,
	)
	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "path", spec.Path, "value", best[i])
	}

	return writeResults(opts, params, best, evaluator)
}

// progress wraps the fitness function to log every evaluation and keep the
// best point seen, which may not be the optimizer's final mean.
type progress struct {
	params    *ParamVector
	evaluator *FitnessEvaluator
	log       *evalLog
	budget    int
	dt        float64

	evals      int
	best       float64
	bestParams []float64
	start      time.Time
}

func (p *progress) evaluate(x []float64) float64 {
	raw := p.params.Clamp(p.params.Denormalize(x))
	fitness := p.evaluator.Evaluate(raw)
	p.evals++

	if fitness < p.best {
		p.best = fitness
		p.bestParams = raw
	}
	if err := p.log.Write(p.evals, fitness, raw); err != nil {
		slog.Warn("failed to log evaluation", "error", err)
	}

	elapsed := time.Since(p.start)
	eta := time.Duration(p.budget-p.evals) * (elapsed / time.Duration(p.evals))
	quality := p.evaluator.LastQuality()
	survived := -fitness / (1 + 0.2*quality) * p.dt

	slog.Info("eval",
		"n", p.evals,
		"of", p.budget,
		"survived_sec", math.Round(survived),
		"quality", quality,
		"best", p.best,
		"elapsed", formatDuration(elapsed),
		"eta", formatDuration(eta),
	)
	return fitness
}

// evalLog is the per-evaluation CSV: eval, fitness, then one column per parameter.
type evalLog struct {
	f *os.File
	w *csv.Writer
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}
	if err := l.w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

func (l *evalLog) Write(eval int, fitness float64, values []float64) error {
	row := make([]string, 0, len(values)+2)
	row = append(row, strconv.Itoa(eval), strconv.FormatFloat(fitness, 'f', 6, 64))
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return l.f.Close()
}

// writeResults saves the best config and the hall of fame of its best run.
func writeResults(opts options, params *ParamVector, best []float64, evaluator *FitnessEvaluator) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	params.ApplyToConfig(cfg, best)

	cfgPath := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := cfg.WriteYAML(cfgPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best config saved", "path", cfgPath)

	hof := evaluator.BestHallOfFame()
	if hof == nil {
		return nil
	}
	data, err := json.MarshalIndent(hof, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding hall of fame: %w", err)
	}
	hofPath := filepath.Join(opts.outputDir, "hall_of_fame.json")
	if err := os.WriteFile(hofPath, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	slog.Info("hall of fame saved", "path", hofPath)
	return nil
}

// formatDuration renders d as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
