package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/globewind/config"
)

var noiseKinds = []string{config.NoiseSimplex, config.NoisePerlin, config.NoiseAquilax}

func TestNoiseDeterministicPerSeed(t *testing.T) {
	for _, kind := range noiseKinds {
		a, err := NewNoiseSource(kind, 42)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		b, _ := NewNoiseSource(kind, 42)

		for _, p := range [][3]float64{{0.1, 0.2, 0.3}, {1.7, -0.4, 2.5}, {-3.3, 8.1, 0}} {
			if a.Noise3D(p[0], p[1], p[2]) != b.Noise3D(p[0], p[1], p[2]) {
				t.Errorf("%s: same seed gave different Noise3D at %v", kind, p)
			}
			if a.Noise2D(p[0], p[1]) != b.Noise2D(p[0], p[1]) {
				t.Errorf("%s: same seed gave different Noise2D at %v", kind, p)
			}
		}
	}
}

func TestNoiseSeedsDiffer(t *testing.T) {
	for _, kind := range noiseKinds {
		a, _ := NewNoiseSource(kind, 1)
		b, _ := NewNoiseSource(kind, 2)

		differ := false
		for i := 0; i < 64; i++ {
			x := float64(i)*0.37 + 0.11
			y := float64(i)*0.21 + 0.07
			if a.Noise3D(x, y, 0.5) != b.Noise3D(x, y, 0.5) {
				differ = true
				break
			}
		}
		if !differ {
			t.Errorf("%s: seeds 1 and 2 produced identical samples", kind)
		}
	}
}

func TestNoiseBoundedAndFinite(t *testing.T) {
	for _, kind := range noiseKinds {
		n, _ := NewNoiseSource(kind, 7)
		for i := 0; i < 500; i++ {
			x := float64(i)*0.113 - 20
			y := float64(i)*0.071 - 10
			v := n.Noise3D(x, y, float64(i)*0.01)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s: non-finite noise %f at %d", kind, v, i)
			}
			if math.Abs(v) > 2 {
				t.Errorf("%s: noise %f far outside [-1,1]", kind, v)
			}
		}
	}
}

func TestUnknownNoiseKind(t *testing.T) {
	_, err := NewNoiseSource("value", 1)
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPerlinPermutationDoubled(t *testing.T) {
	p := NewPerlinNoise(17)

	seen := make(map[int]bool, 256)
	for i := 0; i < 256; i++ {
		if p.perm[i] != p.perm[i+256] {
			t.Fatalf("perm[%d]=%d but perm[%d]=%d", i, p.perm[i], i+256, p.perm[i+256])
		}
		seen[p.perm[i]] = true
	}
	if len(seen) != 256 {
		t.Errorf("expected a permutation of 256 values, got %d distinct", len(seen))
	}

	// Lattice points sit on zero-gradient crossings
	if v := p.Noise3D(-3, 2, 0); v != 0 {
		t.Errorf("expected 0 at an integer lattice point, got %g", v)
	}
}
