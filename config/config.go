// Package config provides configuration loading and access for the wind simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// MaxParticles is the largest particle count accepted by Validate.
const MaxParticles = 2_000_000

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Noise backends.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
	NoiseAquilax = "aquilax"
)

// Field composition strategies.
const (
	CompositionPlain      = "plain"
	CompositionBias       = "bias"
	CompositionConvection = "convection"
)

// Particle wrap policies.
const (
	WrapModular = "modular"
	WrapSnap    = "snap"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Particles ParticlesConfig `yaml:"particles"`
	Noise     NoiseConfig     `yaml:"noise"`
	Field     FieldConfig     `yaml:"field"`
	Sampler   SamplerConfig   `yaml:"sampler"`
	Advection AdvectionConfig `yaml:"advection"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`
	Export    ExportConfig    `yaml:"export"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the preview window.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the fixed wind grid resolution.
type GridConfig struct {
	Lat int `yaml:"lat"` // Latitude rows, -90..90 inclusive
	Lon int `yaml:"lon"` // Longitude columns, -180..180 inclusive
}

// ParticlesConfig holds particle seeding parameters.
type ParticlesConfig struct {
	Count int `yaml:"count"`
}

// NoiseConfig selects the scalar noise backend.
type NoiseConfig struct {
	Kind string `yaml:"kind"` // simplex, perlin, aquilax
	Seed int64  `yaml:"seed"` // 0 = caller supplies one
}

// LayerConfig describes one curl-noise scale.
type LayerConfig struct {
	Frequency float64 `yaml:"frequency"`  // Multiplier on noise-space x/y
	TimeScale float64 `yaml:"time_scale"` // Multiplier on simulated time
	Amplitude float64 `yaml:"amplitude"`  // Multiplier on the curl result
}

// BiasConfig holds latitude shaping for the bias composition.
type BiasConfig struct {
	Taper    bool    `yaml:"taper"`    // Multiply by cos(lat)
	Zonal    bool    `yaml:"zonal"`    // Add banded eastward/westward bias
	Trade    float64 `yaml:"trade"`    // Equatorial strength, fades with |lat|
	Westerly float64 `yaml:"westerly"` // Added for 0.3 < |lat|/90 < 0.7
	Polar    float64 `yaml:"polar"`    // Added for |lat|/90 > 0.8
}

// ConvectionConfig holds point-vortex and jet parameters.
type ConvectionConfig struct {
	Cells    int     `yaml:"cells"`
	Strength float64 `yaml:"strength"`
	Epsilon  float64 `yaml:"epsilon"`   // Added to d² at each vortex
	LatRange float64 `yaml:"lat_range"` // Centers placed in [-lat_range, lat_range)
	JetU     float64 `yaml:"jet_u"`
	JetV     float64 `yaml:"jet_v"`
	Base     float64 `yaml:"base"` // Cos-tapered large-scale zonal flow
}

// FieldConfig holds wind field composition parameters.
type FieldConfig struct {
	Composition string           `yaml:"composition"` // plain, bias, convection
	Large       LayerConfig      `yaml:"large"`
	Small       LayerConfig      `yaml:"small"`
	Bias        BiasConfig       `yaml:"bias"`
	Convection  ConvectionConfig `yaml:"convection"`
}

// SamplerConfig holds grid interpolation options.
type SamplerConfig struct {
	WrapLongitude bool `yaml:"wrap_longitude"`
}

// AdvectionConfig holds particle integration parameters.
type AdvectionConfig struct {
	SpeedScale    float64 `yaml:"speed_scale"`    // Degrees per unit velocity per step
	TimeStep      float64 `yaml:"time_step"`      // Simulated time added per step
	Wrap          string  `yaml:"wrap"`           // modular, snap
	PreAdvance    int     `yaml:"pre_advance"`    // Time steps skipped before the first frame
	RespawnChance float64 `yaml:"respawn_chance"` // Per-particle per-step respawn probability
	Live          bool    `yaml:"live"`           // Rebuild the field every step
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Steps per stats record
	PerfWindow  int `yaml:"perf_window"`
}

// ServerConfig holds websocket streaming parameters.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	FrameIntervalMS   int    `yaml:"frame_interval_ms"`
	MaxFrameParticles int    `yaml:"max_frame_particles"` // 0 = send all
}

// ExportConfig holds arc export parameters.
type ExportConfig struct {
	ArcScale    float64 `yaml:"arc_scale"`
	ArcAltitude float64 `yaml:"arc_altitude"`
	ArcColor    string  `yaml:"arc_color"`
	ArcStride   int     `yaml:"arc_stride"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GridCells     int           // Grid.Lat * Grid.Lon
	LatStep       float64       // Degrees between latitude rows
	LonStep       float64       // Degrees between longitude columns
	FrameInterval time.Duration // Server.FrameIntervalMS as a duration
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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
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
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the engine cannot be built from.
func (c *Config) Validate() error {
	if c.Grid.Lat < 2 || c.Grid.Lon < 2 {
		return fmt.Errorf("%w: grid resolution %dx%d, need at least 2x2", ErrInvalidConfig, c.Grid.Lat, c.Grid.Lon)
	}
	if c.Particles.Count < 1 || c.Particles.Count > MaxParticles {
		return fmt.Errorf("%w: particle count %d outside [1, %d]", ErrInvalidConfig, c.Particles.Count, MaxParticles)
	}
	switch c.Noise.Kind {
	case NoiseSimplex, NoisePerlin, NoiseAquilax:
	default:
		return fmt.Errorf("%w: unknown noise kind %q", ErrInvalidConfig, c.Noise.Kind)
	}
	switch c.Field.Composition {
	case CompositionPlain, CompositionBias, CompositionConvection:
	default:
		return fmt.Errorf("%w: unknown field composition %q", ErrInvalidConfig, c.Field.Composition)
	}
	switch c.Advection.Wrap {
	case WrapModular, WrapSnap:
	default:
		return fmt.Errorf("%w: unknown wrap policy %q", ErrInvalidConfig, c.Advection.Wrap)
	}
	if c.Advection.SpeedScale <= 0 {
		return fmt.Errorf("%w: speed scale must be positive, got %g", ErrInvalidConfig, c.Advection.SpeedScale)
	}
	if c.Advection.RespawnChance < 0 || c.Advection.RespawnChance > 1 {
		return fmt.Errorf("%w: respawn chance %g outside [0, 1]", ErrInvalidConfig, c.Advection.RespawnChance)
	}
	if c.Field.Convection.Cells < 0 {
		return fmt.Errorf("%w: negative convection cell count", ErrInvalidConfig)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GridCells = c.Grid.Lat * c.Grid.Lon
	c.Derived.LatStep = 180 / float64(c.Grid.Lat-1)
	c.Derived.LonStep = 360 / float64(c.Grid.Lon-1)
	c.Derived.FrameInterval = time.Duration(c.Server.FrameIntervalMS) * time.Millisecond
	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
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
