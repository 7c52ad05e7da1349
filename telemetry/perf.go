package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one stage of a simulation tick.
type Phase uint8

// Tick phases in the order they run.
const (
	PhasePhysics Phase = iota
	PhaseSync
	PhaseFeeding
	PhaseMetabolism
	PhaseReproduction
	PhaseCleanup
	PhaseTelemetry

	NumPhases
)

var phaseNames = [NumPhases]string{
	"physics", "sync", "feeding", "metabolism", "reproduction", "cleanup", "telemetry",
}

func (p Phase) String() string {
	if p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases returns every phase in tick order.
func Phases() []Phase {
	out := make([]Phase, NumPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// noPhase marks "no phase open" between StartTick and the first StartPhase.
const noPhase = NumPhases

type perfSample struct {
	tick   time.Duration
	phases [NumPhases]time.Duration
	ran    [NumPhases]bool
}

// PerfCollector keeps a ring of per-tick phase timings.
type PerfCollector struct {
	samples []perfSample
	next    int
	count   int

	current    perfSample
	tickStart  time.Time
	phaseStart time.Time
	open       Phase

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector averages over the last windowSize ticks (60 if < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		samples: make([]perfSample, windowSize),
		open:    noPhase,
	}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = perfSample{}
	p.open = noPhase
}

// StartPhase closes the open phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.open = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.open >= NumPhases {
		return
	}
	p.current.phases[p.open] += now.Sub(p.phaseStart)
	p.current.ran[p.open] = true
}

// EndTick closes the tick and stores it in the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.open = noPhase
	p.current.tick = now.Sub(p.tickStart)

	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	p.count = min(p.count+1, len(p.samples))
}

// RecordFrame marks a rendered frame; the UI calls it once per frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PhaseTiming is one phase's share of the window.
type PhaseTiming struct {
	Ran bool
	Avg time.Duration
	Pct float64 // of the average tick
}

// PerfStats aggregates the current window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	Phases [NumPhases]PhaseTiming

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats summarises the samples in the window. Frame timing is reported
// even before any tick has run.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	ticks := make([]float64, p.count)
	var phaseSum [NumPhases]time.Duration
	for i, sample := range p.samples[:p.count] {
		ticks[i] = float64(sample.tick)
		for ph := range phaseSum {
			phaseSum[ph] += sample.phases[ph]
			s.Phases[ph].Ran = s.Phases[ph].Ran || sample.ran[ph]
		}
	}
	slices.Sort(ticks)

	n := time.Duration(p.count)
	s.AvgTickDuration = time.Duration(stat.Mean(ticks, nil))
	s.MinTickDuration = time.Duration(ticks[0])
	s.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	s.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))

	for ph := range s.Phases {
		s.Phases[ph].Avg = phaseSum[ph] / n
		if s.AvgTickDuration > 0 {
			s.Phases[ph].Pct = float64(s.Phases[ph].Avg) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogValue implements slog.LogValuer. Phases that did not run are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases() {
		if t := s.Phases[ph]; t.Ran {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(t.Pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd       int32   `csv:"window_end"`
	AvgTickUS       int64   `csv:"avg_tick_us"`
	MinTickUS       int64   `csv:"min_tick_us"`
	MaxTickUS       int64   `csv:"max_tick_us"`
	P95TickUS       int64   `csv:"p95_tick_us"`
	TicksPerSec     float64 `csv:"ticks_per_sec"`
	FPS             float64 `csv:"fps"`
	PhysicsPct      float64 `csv:"physics_pct"`
	SyncPct         float64 `csv:"sync_pct"`
	FeedingPct      float64 `csv:"feeding_pct"`
	MetabolismPct   float64 `csv:"metabolism_pct"`
	ReproductionPct float64 `csv:"reproduction_pct"`
	CleanupPct      float64 `csv:"cleanup_pct"`
	TelemetryPct    float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgTickUS:       s.AvgTickDuration.Microseconds(),
		MinTickUS:       s.MinTickDuration.Microseconds(),
		MaxTickUS:       s.MaxTickDuration.Microseconds(),
		P95TickUS:       s.P95TickDuration.Microseconds(),
		TicksPerSec:     s.TicksPerSecond,
		FPS:             s.FPS,
		PhysicsPct:      s.Phases[PhasePhysics].Pct,
		SyncPct:         s.Phases[PhaseSync].Pct,
		FeedingPct:      s.Phases[PhaseFeeding].Pct,
		MetabolismPct:   s.Phases[PhaseMetabolism].Pct,
		ReproductionPct: s.Phases[PhaseReproduction].Pct,
		CleanupPct:      s.Phases[PhaseCleanup].Pct,
		TelemetryPct:    s.Phases[PhaseTelemetry].Pct,
	}
}
