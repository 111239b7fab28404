package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/globewind/systems"
)

// WindowStats holds aggregated statistics for a window of steps.
type WindowStats struct {
	WindowStartStep int     `csv:"-"`
	WindowEndStep   int     `csv:"window_end"`
	SimTime         float64 `csv:"sim_time"`

	// Field, sampled at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`
	UMean     float64 `csv:"u_mean"` // Net zonal flow, positive eastward
	VMean     float64 `csv:"v_mean"`

	// Particles, sampled at window end
	Particles     int     `csv:"particles"`
	LatMean       float64 `csv:"lat_mean"`
	LatStd        float64 `csv:"lat_std"`
	NorthFraction float64 `csv:"north_fraction"`

	// Events during window
	Respawned int `csv:"respawned"`
}

// FieldStats summarizes wind speed over a grid.
type FieldStats struct {
	SpeedMean, SpeedP50, SpeedP90, SpeedMax float64
	UMean, VMean                            float64
}

// ComputeFieldStats calculates speed distribution and mean components.
func ComputeFieldStats(cells []systems.GridCell) FieldStats {
	n := len(cells)
	if n == 0 {
		return FieldStats{}
	}

	speeds := make([]float64, n)
	us := make([]float64, n)
	vs := make([]float64, n)
	for i, c := range cells {
		speeds[i] = math.Hypot(c.U, c.V)
		us[i] = c.U
		vs[i] = c.V
	}

	fs := FieldStats{
		SpeedMean: stat.Mean(speeds, nil),
		SpeedMax:  floats.Max(speeds),
		UMean:     stat.Mean(us, nil),
		VMean:     stat.Mean(vs, nil),
	}

	sort.Float64s(speeds)
	fs.SpeedP50 = stat.Quantile(0.5, stat.Empirical, speeds, nil)
	fs.SpeedP90 = stat.Quantile(0.9, stat.Empirical, speeds, nil)
	return fs
}

// ParticleStats summarizes the latitude distribution of particles.
type ParticleStats struct {
	Count         int
	LatMean       float64
	LatStd        float64
	NorthFraction float64
}

// ComputeParticleStats calculates latitude mean, spread and hemisphere split.
func ComputeParticleStats(ps []systems.Particle) ParticleStats {
	n := len(ps)
	if n == 0 {
		return ParticleStats{}
	}

	lats := make([]float64, n)
	north := 0
	for i, p := range ps {
		lats[i] = p.Lat
		if p.Lat > 0 {
			north++
		}
	}

	st := ParticleStats{Count: n, NorthFraction: float64(north) / float64(n)}
	if n == 1 {
		st.LatMean = lats[0]
		return st
	}
	st.LatMean, st.LatStd = stat.MeanStdDev(lats, nil)
	return st
}

// NewWindowStats assembles a record from field and particle summaries.
func NewWindowStats(start, end int, simTime float64, fs FieldStats, ps ParticleStats, respawned int) WindowStats {
	return WindowStats{
		WindowStartStep: start,
		WindowEndStep:   end,
		SimTime:         simTime,
		SpeedMean:       fs.SpeedMean,
		SpeedP50:        fs.SpeedP50,
		SpeedP90:        fs.SpeedP90,
		SpeedMax:        fs.SpeedMax,
		UMean:           fs.UMean,
		VMean:           fs.VMean,
		Particles:       ps.Count,
		LatMean:         ps.LatMean,
		LatStd:          ps.LatStd,
		NorthFraction:   ps.NorthFraction,
		Respawned:       respawned,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartStep),
		slog.Int("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTime),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("u_mean", s.UMean),
		slog.Float64("v_mean", s.VMean),
		slog.Int("particles", s.Particles),
		slog.Float64("lat_mean", s.LatMean),
		slog.Float64("lat_std", s.LatStd),
		slog.Float64("north_fraction", s.NorthFraction),
		slog.Int("respawned", s.Respawned),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
