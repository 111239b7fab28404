// Offline wind generator - writes a wind.json snapshot and an optional arc layer.
//
// Usage: go run ./cmd/windgen -seed 42 -out wind.json -arcs arcs.json
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/pthm-cable/globewind/config"
	"github.com/pthm-cable/globewind/systems"
	"github.com/pthm-cable/globewind/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config noise.seed, then time-based)")
	out := flag.String("out", "wind.json", "Snapshot output path")
	arcsPath := flag.String("arcs", "", "Arc export path (empty = skip)")
	simTime := flag.Float64("time", -1, "Simulated time to sample the field at (<0 = pre-advance from config)")
	particles := flag.Int("particles", 0, "Particle count override (0 = use config)")
	lat := flag.Int("lat", 0, "Latitude rows override (0 = use config)")
	lon := flag.Int("lon", 0, "Longitude columns override (0 = use config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *particles > 0 {
		cfg.Particles.Count = *particles
	}
	if *lat > 0 {
		cfg.Grid.Lat = *lat
	}
	if *lon > 0 {
		cfg.Grid.Lon = *lon
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid overrides", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Noise.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	t := *simTime
	if t < 0 {
		t = float64(cfg.Advection.PreAdvance) * cfg.Advection.TimeStep
	}

	start := time.Now()
	composer, err := systems.NewFieldComposer(cfg, rngSeed)
	if err != nil {
		slog.Error("failed to build field", "error", err)
		os.Exit(1)
	}
	grid, err := systems.NewWindGrid(systems.Resolution{Lat: cfg.Grid.Lat, Lon: cfg.Grid.Lon})
	if err != nil {
		slog.Error("failed to allocate grid", "error", err)
		os.Exit(1)
	}
	grid.Build(composer, t)

	ps := systems.SeedParticles(cfg.Particles.Count, rand.New(rand.NewSource(rngSeed)))
	snap := telemetry.NewSnapshot(grid, ps, t)
	if err := telemetry.SaveSnapshot(snap, *out); err != nil {
		slog.Error("failed to write snapshot", "error", err)
		os.Exit(1)
	}

	fs := telemetry.ComputeFieldStats(grid.Cells())
	slog.Info("wind field written",
		"path", *out,
		"seed", rngSeed,
		"composition", cfg.Field.Composition,
		"noise", cfg.Noise.Kind,
		"grid", grid.Resolution().Cells(),
		"particles", len(ps),
		"time", t,
		"speed_mean", fs.SpeedMean,
		"speed_max", fs.SpeedMax,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if *arcsPath != "" {
		arcs := telemetry.ArcsFromGrid(grid, telemetry.ArcOptionsFromConfig(cfg.Export))
		if err := telemetry.SaveArcs(arcs, *arcsPath); err != nil {
			slog.Error("failed to write arcs", "error", err)
			os.Exit(1)
		}
		slog.Info("arcs written", "path", *arcsPath, "count", len(arcs))
	}
}
