package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/globewind/config"
	"github.com/pthm-cable/globewind/game"
	"github.com/pthm-cable/globewind/server"
	"github.com/pthm-cable/globewind/sim"
	"github.com/pthm-cable/globewind/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	serve := flag.Bool("serve", false, "Stream particle frames over websocket (implies headless)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	inputPath := flag.String("input", "", "Load the wind field (and particles) from a wind.json snapshot")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and final snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config noise.seed, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Noise.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := sim.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}
	if *inputPath != "" {
		snap, err := telemetry.LoadSnapshot(*inputPath)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		opts.Snapshot = snap
	}

	s, err := sim.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("failed to write output", "error", err)
		}
	}()

	slog.Info("simulation ready",
		"seed", rngSeed,
		"composition", cfg.Field.Composition,
		"noise", cfg.Noise.Kind,
		"particles", len(s.Particles()),
		"live", s.Live(),
		"input", *inputPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *serve:
		if err := runServer(ctx, cfg, s, *maxTicks); err != nil {
			slog.Error("server stopped", "error", err)
		}
	case *headless:
		if err := s.Run(ctx, *maxTicks, 0, nil); err != nil {
			slog.Info("simulation interrupted", "tick", s.Tick())
		}
	default:
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Globe Wind")
		defer rl.CloseWindow()
		rl.SetWindowState(rl.FlagWindowResizable)
		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		g := game.New(s, cfg)
		for !rl.WindowShouldClose() && ctx.Err() == nil {
			g.Update()
			g.Draw()

			if *maxTicks > 0 && g.Tick() >= *maxTicks {
				break
			}
		}
	}
}

// runServer steps the simulation at the configured frame interval and
// streams every frame to websocket clients until ctx is cancelled.
func runServer(ctx context.Context, cfg *config.Config, s *sim.Simulation, maxTicks int) error {
	hub := server.NewHub()
	if err := hub.SetSnapshot(s.Snapshot()); err != nil {
		return err
	}
	if err := hub.SetArcs(telemetry.ArcsFromGrid(s.Grid(), telemetry.ArcOptionsFromConfig(cfg.Export))); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var positions []float32
	refresh := cfg.Telemetry.StatsWindow

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return server.ListenAndServe(ctx, cfg.Server.Addr, hub)
	})
	eg.Go(func() error {
		defer cancel()
		err := s.Run(ctx, maxTicks, cfg.Derived.FrameInterval, func(s *sim.Simulation) {
			for drained := false; !drained; {
				select {
				case c := <-hub.Controls():
					s.SetSpeedScale(c.SpeedScale)
				default:
					drained = true
				}
			}

			positions = s.Positions(positions, cfg.Server.MaxFrameParticles)
			if err := hub.Publish(s.Tick(), s.Time(), positions); err != nil {
				slog.Error("failed to publish frame", "error", err)
			}

			// A live field drifts; refresh the static copy once per stats window
			if s.Live() && s.Tick()%refresh == 0 {
				if err := hub.SetSnapshot(s.Snapshot()); err != nil {
					slog.Error("failed to refresh snapshot", "error", err)
				}
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
	return eg.Wait()
}
