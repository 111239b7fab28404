package systems

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/globewind/config"
)

// constSampler returns the same velocity everywhere.
type constSampler struct{ u, v float64 }

func (c constSampler) Sample(lat, lon float64) (float64, float64) { return c.u, c.v }

func TestAdvectUniformEastward(t *testing.T) {
	a := NewAdvector([]Particle{{Lat: 0, Lon: 0}}, 1, WrapModular)
	s := constSampler{u: 1, v: 0}

	a.Step(s)
	assert.Equal(t, Particle{Lat: 0, Lon: 1}, a.Particles()[0])

	a.Step(s)
	assert.Equal(t, Particle{Lat: 0, Lon: 2}, a.Particles()[0])
}

func TestAdvectUniformGrid(t *testing.T) {
	g, err := UniformWindGrid(Resolution{Lat: 4, Lon: 4}, 1, 0)
	require.NoError(t, err)

	a := NewAdvector([]Particle{{Lat: 0, Lon: 0}}, 1, WrapModular)
	a.Step(g)
	a.Step(g)

	p := a.Particles()[0]
	assert.InDelta(t, 0.0, p.Lat, 1e-12)
	assert.InDelta(t, 2.0, p.Lon, 1e-12)
}

func TestAdvectCrossesPoleAndSeamInOneStep(t *testing.T) {
	a := NewAdvector([]Particle{{Lat: 89.9, Lon: 179.9}}, 1, WrapModular)
	a.Step(constSampler{u: 5, v: 5})

	p := a.Particles()[0]
	assert.InDelta(t, -85.1, p.Lat, 1e-9, "lat wraps by -180")
	assert.InDelta(t, -175.1, p.Lon, 1e-9, "lon wraps by -360")
}

func TestWrapExactBoundaries(t *testing.T) {
	testCases := []struct {
		name     string
		start    Particle
		u, v     float64
		expected Particle
	}{
		{"north pole", Particle{89, 0}, 0, 1, Particle{-90, 0}},
		{"south pole", Particle{-89, 0}, 0, -1, Particle{90, 0}},
		{"east seam", Particle{0, 179}, 1, 0, Particle{0, -180}},
		{"west seam", Particle{0, -179}, -1, 0, Particle{0, 180}},
	}

	for _, tc := range testCases {
		a := NewAdvector([]Particle{tc.start}, 1, WrapModular)
		a.Step(constSampler{u: tc.u, v: tc.v})
		if got := a.Particles()[0]; got != tc.expected {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.expected)
		}
	}
}

func TestStationaryParticleOnBoundsAlternates(t *testing.T) {
	a := NewAdvector([]Particle{{Lat: -90, Lon: -180}}, 1, WrapModular)
	calm := constSampler{}

	a.Step(calm)
	assert.Equal(t, Particle{Lat: 90, Lon: 180}, a.Particles()[0])
	a.Step(calm)
	assert.Equal(t, Particle{Lat: -90, Lon: -180}, a.Particles()[0])
}

func TestWrapSnapPolicy(t *testing.T) {
	a := NewAdvector([]Particle{{Lat: 89.9, Lon: 179.9}, {Lat: -89.9, Lon: -179.9}}, 1, WrapSnap)
	a.Step(constSampler{u: 5, v: 5})
	assert.Equal(t, Particle{Lat: -90, Lon: -180}, a.Particles()[0])
	// Second particle moves north-east away from the bounds
	assert.InDelta(t, -84.9, a.Particles()[1].Lat, 1e-9)

	a = NewAdvector([]Particle{{Lat: -89.9, Lon: -179.9}}, 1, WrapSnap)
	a.Step(constSampler{u: -5, v: -5})
	assert.Equal(t, Particle{Lat: 90, Lon: 180}, a.Particles()[0])
}

func TestParseWrapPolicy(t *testing.T) {
	p, err := ParseWrapPolicy("snap")
	require.NoError(t, err)
	assert.Equal(t, WrapSnap, p)
	assert.Equal(t, "snap", p.String())

	_, err = ParseWrapPolicy("bounce")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestStepMutatesInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ps := SeedParticles(100, rng)
	a := NewAdvector(ps, 0.5, WrapModular)

	before := &a.Particles()[0]
	for i := 0; i < 10; i++ {
		a.Step(constSampler{u: 3, v: -2})
	}
	assert.Same(t, before, &a.Particles()[0], "particle storage reallocated")
	assert.Same(t, &ps[0], &a.Particles()[0], "advector copied the caller's slice")
}

func TestSeedParticlesUniformRange(t *testing.T) {
	ps := SeedParticles(5000, rand.New(rand.NewSource(2)))
	for i, p := range ps {
		if p.Lat < -90 || p.Lat >= 90 || p.Lon < -180 || p.Lon >= 180 {
			t.Fatalf("particle %d out of range: %+v", i, p)
		}
	}

	again := SeedParticles(5000, rand.New(rand.NewSource(2)))
	assert.Equal(t, ps, again, "seeding not reproducible")
}

func TestRespawnRandom(t *testing.T) {
	a := NewAdvector(make([]Particle, 1000), 1, WrapModular)
	rng := rand.New(rand.NewSource(3))

	assert.Equal(t, 0, a.RespawnRandom(rng, 0))
	n := a.RespawnRandom(rng, 1)
	assert.Equal(t, 1000, n)

	moved := 0
	for _, p := range a.Particles() {
		if p != (Particle{}) {
			moved++
		}
	}
	assert.Equal(t, 1000, moved)
}

func TestPositionsStride(t *testing.T) {
	ps := make([]Particle, 10)
	for i := range ps {
		ps[i] = Particle{Lat: float64(i), Lon: float64(-i)}
	}
	a := NewAdvector(ps, 1, WrapModular)

	all := a.Positions(nil, 0)
	require.Len(t, all, 20)
	assert.Equal(t, float32(3), all[6])
	assert.Equal(t, float32(-3), all[7])

	some := a.Positions(all, 4)
	// stride 3 picks 0, 3, 6, 9
	require.Len(t, some, 8)
	assert.Equal(t, float32(9), some[6])
}
