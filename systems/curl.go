package systems

import "github.com/pthm-cable/globewind/config"

// CurlEpsilon is the central-difference step in noise space.
const CurlEpsilon = 1e-4

// Curl returns the 2D curl of the scalar potential n at (x, y, t).
// The result is approximately divergence free.
func Curl(n NoiseSource, x, y, t float64) (u, v float64) {
	const e = CurlEpsilon
	a := (n.Noise3D(x, y+e, t) - n.Noise3D(x, y-e, t)) / (2 * e)
	b := (n.Noise3D(x+e, y, t) - n.Noise3D(x-e, y, t)) / (2 * e)
	return a, -b
}

// CurlLayer is one spatial/temporal scale of curl noise.
type CurlLayer struct {
	Noise     NoiseSource
	Frequency float64
	TimeScale float64
	Amplitude float64
}

// NewCurlLayer builds a layer from config.
func NewCurlLayer(n NoiseSource, cfg config.LayerConfig) CurlLayer {
	return CurlLayer{
		Noise:     n,
		Frequency: cfg.Frequency,
		TimeScale: cfg.TimeScale,
		Amplitude: cfg.Amplitude,
	}
}

// Velocity returns the scaled curl at noise-space (x, y) and simulated time t.
func (l CurlLayer) Velocity(x, y, t float64) (u, v float64) {
	cu, cv := Curl(l.Noise, x*l.Frequency, y*l.Frequency, t*l.TimeScale)
	return cu * l.Amplitude, cv * l.Amplitude
}

// Potential returns the raw noise value at the layer's scale.
func (l CurlLayer) Potential(x, y, t float64) float64 {
	return l.Noise.Noise3D(x*l.Frequency, y*l.Frequency, t*l.TimeScale)
}

// noiseSpace maps a geographic position into noise coordinates.
func noiseSpace(lat, lon float64) (x, y float64) {
	return lon / 180, lat / 90
}
