package sim

import (
	"log/slog"

	"github.com/pthm-cable/globewind/telemetry"
)

// flushTelemetry emits a stats record when the current window is complete.
func (s *Simulation) flushTelemetry() {
	window := s.cfg.Telemetry.StatsWindow
	if window < 1 || s.tick%window != 0 {
		return
	}

	fs := telemetry.ComputeFieldStats(s.grid.Cells())
	ps := telemetry.ComputeParticleStats(s.advector.Particles())
	stats := telemetry.NewWindowStats(s.windowStart, s.tick, s.simTime, fs, ps, s.respawned)
	perfStats := s.perf.Stats()

	s.windowStart = s.tick
	s.respawned = 0

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndStep); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
