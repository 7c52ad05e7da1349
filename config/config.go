// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/liquidevo/genome"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Creature   CreatureConfig   `yaml:"creature"`
	Food       FoodConfig       `yaml:"food"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Seeds      []SeedConfig     `yaml:"seeds"`
	HallOfFame HallOfFameConfig `yaml:"hall_of_fame"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig describes the square tank creatures live in.
type WorldConfig struct {
	Size            float64 `yaml:"size"`   // side length in metres
	Margin          float64 `yaml:"margin"` // bodies are clamped to [margin, size-margin]
	Gravity         float64 `yaml:"gravity"`
	WallFriction    float64 `yaml:"wall_friction"`
	WallRestitution float64 `yaml:"wall_restitution"`
}

// PhysicsConfig holds solver parameters.
type PhysicsConfig struct {
	DT         float64 `yaml:"dt"`
	Iterations int     `yaml:"iterations"`
	MinDensity float64 `yaml:"min_density"` // floor for fixtures on dynamic bodies
}

// CreatureConfig holds the health economy.
type CreatureConfig struct {
	InitialHealth      float64 `yaml:"initial_health"`
	DecayPerTick       float64 `yaml:"decay_per_tick"`
	ReproduceThreshold float64 `yaml:"reproduce_threshold"`
	ReproduceCost      float64 `yaml:"reproduce_cost"`
	DeathThreshold     float64 `yaml:"death_threshold"`
	MaxPopulation      int     `yaml:"max_population"`
	RespawnThreshold   int     `yaml:"respawn_threshold"` // reseed when alive count drops below
	SpawnJitter        float64 `yaml:"spawn_jitter"`      // child offset from parent, metres
}

// FoodConfig holds food pellet parameters.
type FoodConfig struct {
	MinCount   int     `yaml:"min_count"`
	FeedRadius float64 `yaml:"feed_radius"`
	HealthGain float64 `yaml:"health_gain"`
}

// MutationConfig holds genome mutation parameters.
type MutationConfig struct {
	StructuralRate float64 `yaml:"structural_rate"`
	ValueRate      float64 `yaml:"value_rate"`
	NewPartChance  float64 `yaml:"new_part_chance"`   // chance to append a random box on reproduction
	NewPartMaxSize float64 `yaml:"new_part_max_size"` // largest side of that box
	NewPartSlack   float64 `yaml:"new_part_slack"`    // vertex bound half-width
}

// Pipeline returns the genome mutation pipeline for these rates.
func (m MutationConfig) Pipeline() genome.Pipeline {
	return genome.Pipeline{StructuralRate: m.StructuralRate, ValueRate: m.ValueRate}
}

// SeedConfig describes a founder genome placed at startup.
type SeedConfig struct {
	Name   string  `yaml:"name"`
	Genome string  `yaml:"genome"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Count  int     `yaml:"count"`
}

// HallOfFameConfig controls the bank of proven genomes used for respawns.
type HallOfFameConfig struct {
	Enabled     bool `yaml:"enabled"`
	Size        int  `yaml:"size"`
	MinChildren int  `yaml:"min_children"` // entry requirement
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	WorldMin  float64 // World.Margin
	WorldMax  float64 // World.Size - World.Margin
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.WorldMin = c.World.Margin
	c.Derived.WorldMax = c.World.Size - c.World.Margin

	// Synthesize the two founder boxes if no seeds are configured
	if len(c.Seeds) == 0 {
		material := genome.Material{
			Density:     genome.Within(1, 0.1, 5),
			Friction:    genome.Within(0.3, 0, 1),
			Restitution: genome.Within(0.5, 0, 1),
		}
		small := genome.NewBuilder(genome.Plain(0), genome.Plain(0), genome.BodyDynamic, genome.Within(0, -180, 180)).
			Box(1, 1, 0.5, material).Genome()
		large := genome.NewBuilder(genome.Plain(0), genome.Plain(0), genome.BodyDynamic, genome.Within(0, -180, 180)).
			Box(2, 2, 0.5, material).Genome()
		c.Seeds = []SeedConfig{
			{Name: "small_box", Genome: small.String(), X: 5, Y: 5, Count: 1},
			{Name: "large_box", Genome: large.String(), X: 15, Y: 5, Count: 1},
		}
	}
	for i := range c.Seeds {
		if c.Seeds[i].Count == 0 {
			c.Seeds[i].Count = 1
		}
	}
}

// Validate reports the first setting the simulation cannot run with.
// Seed genomes are decoded and checked for chunks when they are spawned, not here.
func (c *Config) Validate() error {
	switch {
	case c.Physics.DT <= 0:
		return fmt.Errorf("%w: physics.dt must be positive, got %v", ErrInvalid, c.Physics.DT)
	case c.World.Size <= 2*c.World.Margin:
		return fmt.Errorf("%w: world.size %v leaves no room inside margin %v", ErrInvalid, c.World.Size, c.World.Margin)
	case c.Mutation.StructuralRate < 0 || c.Mutation.ValueRate < 0:
		return fmt.Errorf("%w: mutation rates must be non-negative", ErrInvalid)
	case c.Mutation.NewPartChance < 0 || c.Mutation.NewPartChance > 1:
		return fmt.Errorf("%w: mutation.new_part_chance must be in [0,1], got %v", ErrInvalid, c.Mutation.NewPartChance)
	case c.Creature.ReproduceCost > c.Creature.ReproduceThreshold:
		return fmt.Errorf("%w: creature.reproduce_cost exceeds reproduce_threshold", ErrInvalid)
	case c.HallOfFame.Enabled && c.HallOfFame.Size < 1:
		return fmt.Errorf("%w: hall_of_fame.size must be at least 1 when enabled", ErrInvalid)
	case c.Telemetry.StatsWindow <= 0:
		return fmt.Errorf("%w: telemetry.stats_window must be positive", ErrInvalid)
	}
	for _, s := range c.Seeds {
		if s.Count < 0 {
			return fmt.Errorf("%w: seed %q has negative count", ErrInvalid, s.Name)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
