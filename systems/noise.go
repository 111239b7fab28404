package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/globewind/config"
)

// NoiseSource is a deterministic, seeded scalar noise function.
// Values are roughly in [-1, 1] and smooth in every coordinate.
type NoiseSource interface {
	Noise2D(x, y float64) float64
	Noise3D(x, y, z float64) float64
}

// NewNoiseSource builds the backend named by kind (see config.Noise*).
func NewNoiseSource(kind string, seed int64) (NoiseSource, error) {
	switch kind {
	case config.NoiseSimplex:
		return NewSimplexNoise(seed), nil
	case config.NoisePerlin:
		return NewPerlinNoise(seed), nil
	case config.NoiseAquilax:
		return NewAquilaxNoise(seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown noise kind %q", config.ErrInvalidConfig, kind)
	}
}

// SimplexNoise wraps OpenSimplex noise.
type SimplexNoise struct {
	noise opensimplex.Noise
}

// NewSimplexNoise creates an OpenSimplex generator for seed.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{noise: opensimplex.New(seed)}
}

// Noise2D returns a noise value for 2D coordinates.
func (s *SimplexNoise) Noise2D(x, y float64) float64 {
	return s.noise.Eval2(x, y)
}

// Noise3D returns a noise value for 3D coordinates.
func (s *SimplexNoise) Noise3D(x, y, z float64) float64 {
	return s.noise.Eval3(x, y, z)
}

// AquilaxNoise wraps github.com/aquilax/go-perlin.
type AquilaxNoise struct {
	noise *perlin.Perlin
}

// NewAquilaxNoise creates a Perlin generator with alpha=2, beta=2, n=3.
func NewAquilaxNoise(seed int64) *AquilaxNoise {
	return &AquilaxNoise{noise: perlin.NewPerlin(2, 2, 3, seed)}
}

// Noise2D returns a noise value for 2D coordinates.
func (a *AquilaxNoise) Noise2D(x, y float64) float64 {
	return a.noise.Noise2D(x, y)
}

// Noise3D returns a noise value for 3D coordinates.
func (a *AquilaxNoise) Noise3D(x, y, z float64) float64 {
	return a.noise.Noise3D(x, y, z)
}

// PerlinNoise generates coherent noise values.
type PerlinNoise struct {
	perm [512]int
}

// NewPerlinNoise creates a Perlin generator whose lattice gradients are
// chosen by a permutation drawn from seed.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{}
	perm := rand.New(rand.NewSource(seed)).Perm(256)

	// Doubled so corner hashes never need a mod
	copy(p.perm[:256], perm)
	copy(p.perm[256:], perm)

	return p
}

// Noise3D returns a noise value for 3D coordinates.
func (p *PerlinNoise) Noise3D(x, y, z float64) float64 {
	// Lattice cell; negative noise-space coordinates (western and
	// southern hemispheres) wrap through the & 255
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	Z := int(math.Floor(z)) & 255

	// Offset inside the cell
	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)

	// Fade curves
	u := fade(x)
	v := fade(y)
	w := fade(z)

	// Corner hashes
	A := p.perm[X] + Y
	AA := p.perm[A] + Z
	AB := p.perm[A+1] + Z
	B := p.perm[X+1] + Y
	BA := p.perm[B] + Z
	BB := p.perm[B+1] + Z

	// Trilinear blend of the 8 corner gradients
	return lerp(w, lerp(v, lerp(u, grad3D(p.perm[AA], x, y, z),
		grad3D(p.perm[BA], x-1, y, z)),
		lerp(u, grad3D(p.perm[AB], x, y-1, z),
			grad3D(p.perm[BB], x-1, y-1, z))),
		lerp(v, lerp(u, grad3D(p.perm[AA+1], x, y, z-1),
			grad3D(p.perm[BA+1], x-1, y, z-1)),
			lerp(u, grad3D(p.perm[AB+1], x, y-1, z-1),
				grad3D(p.perm[BB+1], x-1, y-1, z-1))))
}

// Noise2D returns a noise value for 2D coordinates.
func (p *PerlinNoise) Noise2D(x, y float64) float64 {
	return p.Noise3D(x, y, 0)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad3D(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
