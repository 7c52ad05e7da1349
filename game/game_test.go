package game

import (
	"sort"
	"testing"

	"github.com/pthm-cable/liquidevo/config"
	"github.com/pthm-cable/liquidevo/genome"
	"github.com/pthm-cable/liquidevo/physics"
	"github.com/pthm-cable/liquidevo/telemetry"
)

// newTestGame builds a game from the embedded defaults with one founder,
// a small pellet supply and no random parts. tweak adjusts the config.
func newTestGame(t *testing.T, seed int64, tweak func(*config.Config)) *Game {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Seeds = cfg.Seeds[:1]
	cfg.Food.MinCount = 5
	cfg.Mutation.NewPartChance = 0
	if tweak != nil {
		tweak(cfg)
	}

	g, err := NewGameWithOptions(Options{Seed: seed, Config: cfg, Headless: true})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestNewGameSpawnsFounders(t *testing.T) {
	g := newTestGame(t, 1, func(c *config.Config) {
		c.Seeds[0].Count = 3
	})

	if got := g.Population(); got != 3 {
		t.Fatalf("Population() = %d, want 3", got)
	}
	if got := g.PelletCount(); got != 5 {
		t.Errorf("PelletCount() = %d, want 5", got)
	}
	for _, c := range g.Creatures() {
		if c.Generation != 0 || c.ParentID != 0 {
			t.Errorf("founder %d: generation %d parent %d", c.ID, c.Generation, c.ParentID)
		}
		if c.Seed != "small_box" {
			t.Errorf("founder %d: seed %q", c.ID, c.Seed)
		}
		if len(c.Outlines) != 1 {
			t.Errorf("founder %d: %d outlines, want 1", c.ID, len(c.Outlines))
		}
	}
}

func TestBadSeedIsSkipped(t *testing.T) {
	g := newTestGame(t, 1, func(c *config.Config) {
		c.Seeds[0].Genome = "B(0,0;D;0)|F(C(0,0;0);1;0.3;0.5)|"
		c.Seeds[0].Count = 2
	})

	if got := g.Population(); got != 0 {
		t.Fatalf("Population() = %d, want 0", got)
	}
	if !g.badSeeds["small_box"] {
		t.Error("seed not marked bad")
	}
	stats := g.collector.Flush(g.tick, telemetry.Sample{})
	if stats.DecodeFailures != 1 {
		t.Errorf("DecodeFailures = %d, want 1 (second copy skipped)", stats.DecodeFailures)
	}
}

func TestChunklessSeedIsSkipped(t *testing.T) {
	g := newTestGame(t, 1, func(c *config.Config) {
		c.Seeds[0].Genome = "B(0,0;D;45)F(P[(-0.5,-0.5),(0.5,-0.5),(0.5,0.5),(-0.5,0.5)];0.5;0.5;0.5)"
		c.Seeds[0].Count = 2
		c.Creature.InitialHealth = 300
	})

	if _, err := genome.Parse(genome.Genome(g.cfg.Seeds[0].Genome)); err != nil {
		t.Fatalf("seed genome should decode: %v", err)
	}
	if got := g.Population(); got != 0 {
		t.Fatalf("Population() = %d, want 0", got)
	}
	if !g.badSeeds["small_box"] {
		t.Error("chunkless seed not marked bad")
	}
	stats := g.collector.Flush(g.tick, telemetry.Sample{})
	if stats.MutationFailures != 1 || stats.DecodeFailures != 0 {
		t.Errorf("failures: mutation %d decode %d, want 1 and 0", stats.MutationFailures, stats.DecodeFailures)
	}
}

func TestHeadlessTicksAdvance(t *testing.T) {
	g := newTestGame(t, 7, nil)

	for i := 0; i < 60; i++ {
		g.UpdateHeadless()
	}

	if got := g.Tick(); got != 60 {
		t.Errorf("Tick() = %d, want 60", got)
	}
	if g.Population() == 0 {
		t.Error("population died out")
	}
	if g.PelletCount() < 5 {
		t.Errorf("PelletCount() = %d, want >= 5", g.PelletCount())
	}
}

func TestPausedUpdateDoesNothing(t *testing.T) {
	g := newTestGame(t, 7, nil)
	g.SetPaused(true)
	g.Update()
	if g.Tick() != 0 {
		t.Errorf("Tick() = %d after paused Update, want 0", g.Tick())
	}

	g.SetPaused(false)
	g.SetStepsPerUpdate(3)
	g.Update()
	if g.Tick() != 3 {
		t.Errorf("Tick() = %d, want 3", g.Tick())
	}
}

func TestStepsPerUpdateClamped(t *testing.T) {
	g := newTestGame(t, 1, nil)
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{5, 5},
		{50, 10},
	}
	for _, tt := range tests {
		g.SetStepsPerUpdate(tt.in)
		if got := g.StepsPerUpdate(); got != tt.want {
			t.Errorf("SetStepsPerUpdate(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestReproductionProducesChild(t *testing.T) {
	g := newTestGame(t, 3, func(c *config.Config) {
		c.Creature.InitialHealth = 300
		c.Mutation.StructuralRate = 0
	})

	parent := g.Creatures()[0]
	g.Step()

	if got := g.Population(); got != 2 {
		t.Fatalf("Population() = %d, want 2", got)
	}

	var child CreatureInfo
	for _, c := range g.Creatures() {
		if c.ID != parent.ID {
			child = c
		}
	}
	if child.ParentID != parent.ID {
		t.Errorf("child parent = %d, want %d", child.ParentID, parent.ID)
	}
	if child.Generation != 1 {
		t.Errorf("child generation = %d, want 1", child.Generation)
	}
	if child.Seed != parent.Seed {
		t.Errorf("child seed = %q, want %q", child.Seed, parent.Seed)
	}
	if got, want := child.Genome.ChunkCount(), parent.Genome.ChunkCount(); got != want {
		t.Errorf("child chunks = %d, want %d", got, want)
	}
	if len(child.Outlines) == 0 {
		t.Error("child has no fixtures")
	}

	p, ok := g.Creature(parent.ID)
	if !ok {
		t.Fatal("parent gone")
	}
	if p.Children != 1 {
		t.Errorf("parent children = %d, want 1", p.Children)
	}
	if p.Health > 205 {
		t.Errorf("parent health = %v, cost not paid", p.Health)
	}
	if len(g.births) != 2 {
		t.Errorf("births = %d, want founder + child", len(g.births))
	}
}

func TestMaxPopulationCapsBirths(t *testing.T) {
	g := newTestGame(t, 3, func(c *config.Config) {
		c.Creature.InitialHealth = 300
		c.Creature.MaxPopulation = 3
		c.Seeds[0].Count = 2
	})

	g.Step()
	if got := g.Population(); got != 3 {
		t.Errorf("Population() = %d, want 3", got)
	}
}

func TestRealiseChildDecodeFailure(t *testing.T) {
	g := newTestGame(t, 5, nil)

	bodies := g.space.BodyCount()
	fixtures := g.space.FixtureCount()
	pop := g.Population()

	job := &birthJob{
		ParentID:   1,
		Generation: 1,
		Seed:       "small_box",
		Anchor:     genome.Vec2{X: 20, Y: 20},
		Child:      genome.Genome("B(0,0;D;0)|F(C(0,0;0);1;0.3;0.5)|"),
	}
	if g.realiseChild(job) {
		t.Fatal("realiseChild accepted a zero radius circle")
	}

	if got := g.space.BodyCount(); got != bodies {
		t.Errorf("BodyCount() = %d, want %d", got, bodies)
	}
	if got := g.space.FixtureCount(); got != fixtures {
		t.Errorf("FixtureCount() = %d, want %d", got, fixtures)
	}
	if got := g.Population(); got != pop {
		t.Errorf("Population() = %d, want %d", got, pop)
	}

	stats := g.collector.Flush(g.tick, telemetry.Sample{})
	if stats.DecodeFailures != 1 {
		t.Errorf("DecodeFailures = %d, want 1", stats.DecodeFailures)
	}
	if stats.Births != 0 {
		t.Errorf("Births = %d, want 0", stats.Births)
	}
}

func TestDeathReleasesAndRespawns(t *testing.T) {
	g := newTestGame(t, 9, func(c *config.Config) {
		c.Creature.DecayPerTick = 200
	})
	first := g.Creatures()[0].ID

	g.Step()

	if got := g.Population(); got != 1 {
		t.Fatalf("Population() = %d, want 1 after respawn", got)
	}
	if _, ok := g.Creature(first); ok {
		t.Error("dead creature still visible")
	}
	if got := len(g.space.Outlines(first)); got != 0 {
		t.Errorf("dead creature kept %d fixtures", got)
	}
	c := g.Creatures()[0]
	if c.ID == first || c.Generation != 0 {
		t.Errorf("respawned creature id %d gen %d", c.ID, c.Generation)
	}

	stats := g.collector.Flush(g.tick, telemetry.Sample{})
	if stats.Deaths != 1 || stats.Respawns != 1 {
		t.Errorf("deaths %d respawns %d, want 1 and 1", stats.Deaths, stats.Respawns)
	}
}

func TestCreatureAt(t *testing.T) {
	g := newTestGame(t, 1, nil)
	c := g.Creatures()[0]

	id, ok := g.CreatureAt(float64(c.X), float64(c.Y))
	if !ok || id != c.ID {
		t.Errorf("CreatureAt(anchor) = %d, %v; want %d, true", id, ok, c.ID)
	}
	if _, ok := g.CreatureAt(float64(c.X)+10, float64(c.Y)+10); ok {
		t.Error("CreatureAt found a creature in empty water")
	}
}

// populationGenomes returns the sorted genome texts of a game's creatures.
func populationGenomes(g *Game) []string {
	var out []string
	for _, c := range g.Creatures() {
		out = append(out, c.Genome.String())
	}
	sort.Strings(out)
	return out
}

func TestReproductionDeterministic(t *testing.T) {
	// 70 founders reproduce at once, enough to go through the worker pool.
	tweak := func(c *config.Config) {
		c.Creature.InitialHealth = 300
		c.Seeds[0].Count = 70
		c.Mutation.StructuralRate = 0.5
		c.Mutation.ValueRate = 0.5
		c.Mutation.NewPartChance = 0.3
	}
	a := newTestGame(t, 11, tweak)
	b := newTestGame(t, 11, tweak)

	for i := 0; i < 2; i++ {
		a.Step()
		b.Step()
	}

	ga, gb := populationGenomes(a), populationGenomes(b)
	if len(ga) != len(gb) {
		t.Fatalf("population %d vs %d", len(ga), len(gb))
	}
	for i := range ga {
		if ga[i] != gb[i] {
			t.Fatalf("genome %d differs:\n%s\n%s", i, ga[i], gb[i])
		}
	}
}

func TestSnapshotResume(t *testing.T) {
	g := newTestGame(t, 13, func(c *config.Config) {
		c.Creature.InitialHealth = 300
	})
	for i := 0; i < 3; i++ {
		g.Step()
	}

	path, err := telemetry.SaveSnapshot(g.createSnapshot(nil), t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	cfg := g.Config()
	r, err := NewGameWithOptions(Options{Seed: 13, Config: cfg, Resume: path})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	defer r.Unload()

	if r.Tick() != g.Tick() {
		t.Errorf("Tick() = %d, want %d", r.Tick(), g.Tick())
	}
	if r.Population() != g.Population() {
		t.Fatalf("Population() = %d, want %d", r.Population(), g.Population())
	}
	for _, want := range g.Creatures() {
		got, ok := r.Creature(want.ID)
		if !ok {
			t.Errorf("creature %d missing after resume", want.ID)
			continue
		}
		if got.Genome != want.Genome || got.Generation != want.Generation || got.Children != want.Children {
			t.Errorf("creature %d: got gen %d children %d, want gen %d children %d",
				want.ID, got.Generation, got.Children, want.Generation, want.Children)
		}
	}

	// new ids continue past the restored ones
	var maxID physics.CreatureID
	for _, c := range g.Creatures() {
		maxID = max(maxID, c.ID)
	}
	if r.nextID <= maxID {
		t.Errorf("nextID = %d, want > %d", r.nextID, maxID)
	}
}

func TestSnapshotResumeSkipsDuplicateIDs(t *testing.T) {
	g := newTestGame(t, 13, nil)

	snap := g.createSnapshot(nil)
	if len(snap.Creatures) == 0 {
		t.Fatal("snapshot has no creatures")
	}
	dup := snap.Creatures[0]
	dup.X += 3
	dup.Generation = 9
	snap.Creatures = append(snap.Creatures, dup)

	path, err := telemetry.SaveSnapshot(snap, t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	r, err := NewGameWithOptions(Options{Seed: 13, Config: g.Config(), Resume: path})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	defer r.Unload()

	if r.Population() != g.Population() {
		t.Errorf("Population() = %d, want %d", r.Population(), g.Population())
	}
	if r.space.BodyCount() != g.space.BodyCount() {
		t.Errorf("BodyCount() = %d, want %d", r.space.BodyCount(), g.space.BodyCount())
	}
	got, ok := r.Creature(physics.CreatureID(dup.ID))
	if !ok {
		t.Fatalf("creature %d missing", dup.ID)
	}
	if got.Generation != snap.Creatures[0].Generation {
		t.Errorf("generation = %d, want the first entry's %d", got.Generation, snap.Creatures[0].Generation)
	}
}

func TestSetPipeline(t *testing.T) {
	g := newTestGame(t, 1, nil)
	p := genome.Pipeline{StructuralRate: 0.2, ValueRate: 0.4}
	g.SetPipeline(p)
	if g.Pipeline() != p {
		t.Errorf("Pipeline() = %+v, want %+v", g.Pipeline(), p)
	}
}
