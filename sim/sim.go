// Package sim drives the wind field and particle advection one step at a time.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"github.com/pthm-cable/globewind/config"
	"github.com/pthm-cable/globewind/systems"
	"github.com/pthm-cable/globewind/telemetry"
)

// Options configures a simulation instance.
type Options struct {
	Seed      int64
	LogStats  bool   // Emit window stats via slog
	OutputDir string // Empty disables CSV output

	// Snapshot, when set, supplies a precomputed field and runs in static
	// mode. Its particles are used if present; otherwise particles are seeded.
	Snapshot *telemetry.Snapshot

	// StatsCallback is invoked at the end of each stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete engine state. A single goroutine owns it;
// readers receive copies through Positions and Snapshot.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand

	composer systems.FieldComposer // nil when the field came from a snapshot
	grid     *systems.WindGrid
	advector *systems.Advector
	live     bool

	tick     int
	simTime  float64
	timeStep float64
	respawn  float64

	workers int

	// Telemetry
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	windowStart   int
	respawned     int
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// New builds a simulation from cfg. The field is generated at the
// pre-advanced time, or taken from opts.Snapshot.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := systems.ParseWrapPolicy(cfg.Advection.Wrap)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:           cfg,
		rng:           rand.New(rand.NewSource(opts.Seed)),
		timeStep:      cfg.Advection.TimeStep,
		respawn:       cfg.Advection.RespawnChance,
		workers:       runtime.GOMAXPROCS(0),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	var particles []systems.Particle
	if opts.Snapshot != nil {
		g, err := opts.Snapshot.WindGrid()
		if err != nil {
			return nil, fmt.Errorf("snapshot field: %w", err)
		}
		s.grid = g
		s.simTime = opts.Snapshot.Time
		if len(opts.Snapshot.Particles) > 0 {
			particles = make([]systems.Particle, len(opts.Snapshot.Particles))
			copy(particles, opts.Snapshot.Particles)
		}
	} else {
		composer, err := systems.NewFieldComposer(cfg, opts.Seed)
		if err != nil {
			return nil, err
		}
		g, err := systems.NewWindGrid(systems.Resolution{Lat: cfg.Grid.Lat, Lon: cfg.Grid.Lon})
		if err != nil {
			return nil, err
		}
		s.composer = composer
		s.grid = g
		s.live = cfg.Advection.Live
		s.simTime = float64(cfg.Advection.PreAdvance) * s.timeStep
		s.buildField()
	}
	s.grid.WrapLongitude = cfg.Sampler.WrapLongitude

	if particles == nil {
		particles = systems.SeedParticles(cfg.Particles.Count, s.rng)
	}
	s.advector = systems.NewAdvector(particles, cfg.Advection.SpeedScale, policy)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	s.output = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, err
	}

	return s, nil
}

// Step runs one frame: optional field rebuild, one advection pass,
// respawn, then telemetry. Each pass completes before the next begins.
func (s *Simulation) Step() {
	s.perf.StartStep()

	s.simTime += s.timeStep
	if s.live {
		s.perf.StartPhase(telemetry.PhaseField)
		s.buildField()
	}

	s.perf.StartPhase(telemetry.PhaseAdvect)
	s.advect()

	if s.respawn > 0 {
		s.perf.StartPhase(telemetry.PhaseRespawn)
		s.respawned += s.advector.RespawnRandom(s.rng, s.respawn)
	}

	s.tick++

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.EndStep()
}

// Run steps until ctx is cancelled or maxTicks is reached (0 = unlimited).
// A positive interval paces steps with a ticker; onStep, if set, runs
// after every step on the simulation goroutine.
func (s *Simulation) Run(ctx context.Context, maxTicks int, interval time.Duration, onStep func(*Simulation)) error {
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	for maxTicks <= 0 || s.tick < maxTicks {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		s.Step()
		if onStep != nil {
			onStep(s)
		}
	}
	slog.Info("max ticks reached", "tick", s.tick)
	return nil
}

// RecordFrame marks a rendered frame for FPS reporting.
func (s *Simulation) RecordFrame() { s.perf.RecordFrame() }

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int { return s.tick }

// Time returns the simulated time of the current field.
func (s *Simulation) Time() float64 { return s.simTime }

// Live reports whether the field is rebuilt every step.
func (s *Simulation) Live() bool { return s.live }

// Grid returns the current wind grid. Read-only for callers.
func (s *Simulation) Grid() *systems.WindGrid { return s.grid }

// Particles returns the live particle slice. Read-only for callers and
// only valid until the next Step.
func (s *Simulation) Particles() []systems.Particle { return s.advector.Particles() }

// Positions copies up to limit particle positions into dst as
// interleaved lat, lon pairs.
func (s *Simulation) Positions(dst []float32, limit int) []float32 {
	return s.advector.Positions(dst, limit)
}

// SpeedScale returns the advection speed multiplier.
func (s *Simulation) SpeedScale() float64 { return s.advector.SpeedScale }

// SetSpeedScale changes the advection speed multiplier. Non-positive
// values are ignored.
func (s *Simulation) SetSpeedScale(v float64) {
	if v > 0 {
		s.advector.SpeedScale = v
	}
}

// Snapshot copies the current field and particles.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	return telemetry.NewSnapshot(s.grid, s.advector.Particles(), s.simTime)
}

// PerfStats returns timing aggregated over the perf window.
func (s *Simulation) PerfStats() telemetry.PerfStats { return s.perf.Stats() }

// Close writes the final snapshot to the output directory, if any, and
// closes output files.
func (s *Simulation) Close() error {
	if s.output == nil {
		return nil
	}
	snapErr := s.output.WriteSnapshot(s.Snapshot())
	if err := s.output.Close(); err != nil {
		return err
	}
	return snapErr
}
