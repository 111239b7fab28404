package telemetry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/globewind/systems"
)

func TestComputeFieldStats(t *testing.T) {
	cells := []systems.GridCell{
		{U: 1, V: 0},
		{U: 0, V: 2},
		{U: 3, V: 0},
		{U: 0, V: -4},
	}

	fs := ComputeFieldStats(cells)

	assert.InDelta(t, 2.5, fs.SpeedMean, 1e-12)
	assert.InDelta(t, 2.0, fs.SpeedP50, 1e-12)
	assert.InDelta(t, 4.0, fs.SpeedP90, 1e-12)
	assert.InDelta(t, 4.0, fs.SpeedMax, 1e-12)
	assert.InDelta(t, 1.0, fs.UMean, 1e-12)
	assert.InDelta(t, -0.5, fs.VMean, 1e-12)
}

func TestComputeFieldStatsEmpty(t *testing.T) {
	fs := ComputeFieldStats(nil)
	if fs != (FieldStats{}) {
		t.Errorf("expected zero stats, got %+v", fs)
	}
}

func TestComputeParticleStats(t *testing.T) {
	ps := []systems.Particle{{Lat: 10}, {Lat: -10}, {Lat: 30}, {Lat: 50}}

	st := ComputeParticleStats(ps)

	assert.Equal(t, 4, st.Count)
	assert.InDelta(t, 20.0, st.LatMean, 1e-12)
	assert.InDelta(t, math.Sqrt(2000.0/3), st.LatStd, 1e-9)
	assert.InDelta(t, 0.75, st.NorthFraction, 1e-12)
}

func TestComputeParticleStatsSingle(t *testing.T) {
	st := ComputeParticleStats([]systems.Particle{{Lat: -12}})

	assert.Equal(t, -12.0, st.LatMean)
	assert.Equal(t, 0.0, st.LatStd)
	assert.Equal(t, 0.0, st.NorthFraction)
}

func TestNewWindowStats(t *testing.T) {
	fs := FieldStats{SpeedMean: 1, SpeedMax: 3, UMean: 0.5}
	ps := ParticleStats{Count: 10, LatMean: 4, NorthFraction: 0.6}

	s := NewWindowStats(0, 600, 3.0, fs, ps, 7)

	assert.Equal(t, 600, s.WindowEndStep)
	assert.Equal(t, 3.0, s.SimTime)
	assert.Equal(t, 10, s.Particles)
	assert.Equal(t, 0.5, s.UMean)
	assert.Equal(t, 7, s.Respawned)
}
