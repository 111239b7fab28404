package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/globewind/config"
)

// Particle is a tracer position in degrees. Particles have no identity
// beyond their slice index.
type Particle struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WrapPolicy selects how out-of-range coordinates are corrected.
type WrapPolicy uint8

const (
	// WrapModular offsets by one full period: lat ∓ 180, lon ∓ 360.
	WrapModular WrapPolicy = iota
	// WrapSnap moves the coordinate to the opposite bound.
	WrapSnap
)

// ParseWrapPolicy maps a config name to a policy.
func ParseWrapPolicy(name string) (WrapPolicy, error) {
	switch name {
	case config.WrapModular:
		return WrapModular, nil
	case config.WrapSnap:
		return WrapSnap, nil
	default:
		return 0, fmt.Errorf("%w: unknown wrap policy %q", config.ErrInvalidConfig, name)
	}
}

func (w WrapPolicy) String() string {
	switch w {
	case WrapModular:
		return config.WrapModular
	case WrapSnap:
		return config.WrapSnap
	default:
		return fmt.Sprintf("WrapPolicy(%d)", uint8(w))
	}
}

// Wrap corrects a position once per axis. Bounds are inclusive:
// under WrapModular an exact +90 becomes -90 and an exact -180 becomes +180.
func (w WrapPolicy) Wrap(p *Particle) {
	switch {
	case p.Lat >= 90:
		if w == WrapSnap {
			p.Lat = -90
		} else {
			p.Lat -= 180
		}
	case p.Lat <= -90:
		if w == WrapSnap {
			p.Lat = 90
		} else {
			p.Lat += 180
		}
	}
	switch {
	case p.Lon >= 180:
		if w == WrapSnap {
			p.Lon = -180
		} else {
			p.Lon -= 360
		}
	case p.Lon <= -180:
		if w == WrapSnap {
			p.Lon = 180
		} else {
			p.Lon += 360
		}
	}
}

// RandomParticle returns a position uniform in lat/lon degrees.
func RandomParticle(rng *rand.Rand) Particle {
	return Particle{
		Lat: rng.Float64()*180 - 90,
		Lon: rng.Float64()*360 - 180,
	}
}

// SeedParticles creates n uniformly placed particles.
func SeedParticles(n int, rng *rand.Rand) []Particle {
	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = RandomParticle(rng)
	}
	return ps
}

// Advector integrates particle positions through a wind field.
type Advector struct {
	particles  []Particle
	SpeedScale float64
	Policy     WrapPolicy
}

// NewAdvector takes ownership of particles.
func NewAdvector(particles []Particle, speedScale float64, policy WrapPolicy) *Advector {
	return &Advector{
		particles:  particles,
		SpeedScale: speedScale,
		Policy:     policy,
	}
}

// Particles returns the live particle slice. Callers must treat it as
// read-only and must not retain it past the current frame.
func (a *Advector) Particles() []Particle { return a.particles }

// Len returns the particle count.
func (a *Advector) Len() int { return len(a.particles) }

// Step advects every particle once.
func (a *Advector) Step(s WindSampler) {
	a.StepRange(s, 0, len(a.particles))
}

// StepRange advects particles [start, end). Disjoint ranges may run concurrently.
func (a *Advector) StepRange(s WindSampler, start, end int) {
	scale := a.SpeedScale
	for i := start; i < end; i++ {
		p := &a.particles[i]
		u, v := s.Sample(p.Lat, p.Lon)
		p.Lat += v * scale
		p.Lon += u * scale
		a.Policy.Wrap(p)
	}
}

// Respawn moves particle i to a uniformly random position.
func (a *Advector) Respawn(i int, rng *rand.Rand) {
	a.particles[i] = RandomParticle(rng)
}

// RespawnRandom respawns each particle with probability chance.
// Returns the number respawned.
func (a *Advector) RespawnRandom(rng *rand.Rand, chance float64) int {
	if chance <= 0 {
		return 0
	}
	n := 0
	for i := range a.particles {
		if rng.Float64() < chance {
			a.Respawn(i, rng)
			n++
		}
	}
	return n
}

// Positions copies particle positions into dst as interleaved lat, lon
// pairs, growing dst if needed. At most limit particles are copied when
// limit > 0, chosen with an even stride.
func (a *Advector) Positions(dst []float32, limit int) []float32 {
	n := len(a.particles)
	stride := 1
	if limit > 0 && n > limit {
		stride = (n + limit - 1) / limit
	}
	dst = dst[:0]
	for i := 0; i < n; i += stride {
		p := a.particles[i]
		dst = append(dst, float32(p.Lat), float32(p.Lon))
	}
	return dst
}
