package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/globewind/config"
)

// SmallScaleSeedOffset separates the small-scale noise seed from the large-scale one.
const SmallScaleSeedOffset = 0x5f3759df

// cellSeedSalt separates convection-cell placement from the noise seeds.
const cellSeedSalt = 0x2545f491

// FieldComposer produces wind velocity (u eastward, v northward) at a
// geographic position and simulated time.
type FieldComposer interface {
	Velocity(lat, lon, t float64) (u, v float64)
}

// NewFieldComposer builds the composition named in cfg.Field.Composition.
// Noise sources and convection cells are all derived from seed.
func NewFieldComposer(cfg *config.Config, seed int64) (FieldComposer, error) {
	large, err := NewNoiseSource(cfg.Noise.Kind, seed)
	if err != nil {
		return nil, err
	}
	small, err := NewNoiseSource(cfg.Noise.Kind, seed+SmallScaleSeedOffset)
	if err != nil {
		return nil, err
	}
	fc := cfg.Field
	largeLayer := NewCurlLayer(large, fc.Large)
	smallLayer := NewCurlLayer(small, fc.Small)

	switch fc.Composition {
	case config.CompositionPlain:
		return &PlainComposer{Layer: largeLayer}, nil
	case config.CompositionBias:
		return &BiasComposer{Large: largeLayer, Small: smallLayer, Bias: fc.Bias}, nil
	case config.CompositionConvection:
		rng := rand.New(rand.NewSource(seed ^ cellSeedSalt))
		return NewConvectionComposer(largeLayer, smallLayer, fc.Convection, rng), nil
	default:
		return nil, fmt.Errorf("%w: unknown field composition %q", config.ErrInvalidConfig, fc.Composition)
	}
}

// PlainComposer is single-scale curl noise.
type PlainComposer struct {
	Layer CurlLayer
}

// Velocity implements FieldComposer.
func (c *PlainComposer) Velocity(lat, lon, t float64) (u, v float64) {
	x, y := noiseSpace(lat, lon)
	return c.Layer.Velocity(x, y, t)
}

// BiasComposer sums a large and a small curl layer, then applies latitude shaping.
type BiasComposer struct {
	Large CurlLayer
	Small CurlLayer
	Bias  config.BiasConfig
}

// Velocity implements FieldComposer.
func (c *BiasComposer) Velocity(lat, lon, t float64) (u, v float64) {
	x, y := noiseSpace(lat, lon)
	uL, vL := c.Large.Velocity(x, y, t)
	uS, vS := c.Small.Velocity(x, y, t)
	u = uL + uS
	v = vL + vS

	if c.Bias.Taper {
		f := math.Cos(lat * math.Pi / 180)
		u *= f
		v *= f
	}
	if c.Bias.Zonal {
		u += ZonalBias(lat, c.Bias)
	}
	return u, v
}

// ZonalBias returns the additive eastward component for a latitude band:
// trade winds fading from the equator, westerlies at mid latitudes and
// polar easterlies near the poles.
func ZonalBias(lat float64, b config.BiasConfig) float64 {
	n := math.Abs(lat) / 90

	bias := (1 - n) * b.Trade
	if n > 0.3 && n < 0.7 {
		bias += b.Westerly
	}
	if n > 0.8 {
		bias += b.Polar
	}
	return bias
}

// VortexCell is a convection cell center in degrees.
type VortexCell struct {
	Lat, Lon float64
}

// ConvectionComposer superimposes point vortices, a mid-latitude jet,
// a tapered base flow and small-scale curl turbulence.
type ConvectionComposer struct {
	Large    CurlLayer
	Small    CurlLayer
	Cells    []VortexCell
	Strength float64
	Epsilon  float64
	JetU     float64
	JetV     float64
	Base     float64
}

// NewConvectionComposer places cfg.Cells vortices using rng. Placement
// happens once; the field is then a pure function of position and time.
func NewConvectionComposer(large, small CurlLayer, cfg config.ConvectionConfig, rng *rand.Rand) *ConvectionComposer {
	cells := make([]VortexCell, cfg.Cells)
	for i := range cells {
		cells[i] = VortexCell{
			Lat: -cfg.LatRange + rng.Float64()*2*cfg.LatRange,
			Lon: -180 + rng.Float64()*360,
		}
	}
	eps := cfg.Epsilon
	if eps <= 0 {
		eps = 1e-6
	}
	return &ConvectionComposer{
		Large:    large,
		Small:    small,
		Cells:    cells,
		Strength: cfg.Strength,
		Epsilon:  eps,
		JetU:     cfg.JetU,
		JetV:     cfg.JetV,
		Base:     cfg.Base,
	}
}

// Velocity implements FieldComposer.
func (c *ConvectionComposer) Velocity(lat, lon, t float64) (u, v float64) {
	x, y := noiseSpace(lat, lon)

	convU, convV := c.Vortices(lat, lon)

	jet := JetFactor(lat)
	jn := c.Large.Potential(2*x, 2*y, t)
	jetU := jn * c.JetU * jet
	jetV := jn * c.JetV * jet

	baseU := c.Large.Potential(x, y, t) * c.Base * math.Cos(lat*math.Pi/180)

	turbU, turbV := c.Small.Velocity(x, y, t)

	return convU + jetU + baseU + turbU, convV + jetV + turbV
}

// Vortices returns the summed contribution of all convection cells.
func (c *ConvectionComposer) Vortices(lat, lon float64) (u, v float64) {
	for _, cell := range c.Cells {
		dx := lon - cell.Lon
		dy := lat - cell.Lat
		d2 := dx*dx + dy*dy + c.Epsilon
		u += -dy / d2 * c.Strength
		v += dx / d2 * c.Strength
	}
	return u, v
}

// JetFactor is a Gaussian band peaked at |lat| = 45.
func JetFactor(lat float64) float64 {
	d := (math.Abs(lat) - 45) / 10
	return math.Exp(-d * d)
}
