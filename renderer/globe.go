// Package renderer draws the globe, wind field and particles with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/globewind/camera"
	"github.com/pthm-cable/globewind/systems"
)

// graticuleStep is the spacing of drawn parallels and meridians in degrees.
const graticuleStep = 30

// GlobeRenderer draws the ocean disc, graticule and wind arrows.
type GlobeRenderer struct {
	Ocean     rl.Color
	Limb      rl.Color
	Graticule rl.Color
	Arrow     rl.Color
}

// NewGlobeRenderer creates a renderer with the default palette.
func NewGlobeRenderer() *GlobeRenderer {
	return &GlobeRenderer{
		Ocean:     rl.Color{R: 12, G: 24, B: 40, A: 255},
		Limb:      rl.Color{R: 60, G: 90, B: 120, A: 255},
		Graticule: rl.Color{R: 40, G: 60, B: 80, A: 140},
		Arrow:     rl.Color{R: 255, G: 200, B: 80, A: 160},
	}
}

// DrawGlobe renders the disc and graticule.
func (g *GlobeRenderer) DrawGlobe(cam *camera.Camera) {
	cx := int32(cam.ViewportW / 2)
	cy := int32(cam.ViewportH / 2)
	r := cam.Radius()

	rl.DrawCircle(cx, cy, r, g.Ocean)

	for lat := -90 + graticuleStep; lat < 90; lat += graticuleStep {
		g.drawPolyline(cam, func(k float64) (float64, float64) { return float64(lat), -180 + k*360 })
	}
	for lon := -180; lon < 180; lon += graticuleStep {
		g.drawPolyline(cam, func(k float64) (float64, float64) { return -90 + k*180, float64(lon) })
	}

	rl.DrawCircleLines(cx, cy, r, g.Limb)
}

// drawPolyline samples path at 120 points in [0, 1] and draws the visible segments.
func (g *GlobeRenderer) drawPolyline(cam *camera.Camera, path func(k float64) (lat, lon float64)) {
	const n = 120
	px, py, pv := cam.Project(path(0))
	for i := 1; i <= n; i++ {
		x, y, v := cam.Project(path(float64(i) / n))
		if v && pv {
			rl.DrawLineV(rl.Vector2{X: px, Y: py}, rl.Vector2{X: x, Y: y}, g.Graticule)
		}
		px, py, pv = x, y, v
	}
}

// DrawWindArrows draws one short segment per stride-th grid cell along
// the local wind direction, scaled by scale degrees per unit velocity.
func (g *GlobeRenderer) DrawWindArrows(cam *camera.Camera, grid *systems.WindGrid, stride int, scale float64) {
	if stride < 1 {
		stride = 1
	}
	res := grid.Resolution()
	for i := 0; i < res.Lat; i += stride {
		for j := 0; j < res.Lon; j += stride {
			c := grid.Cell(i, j)
			x0, y0, v0 := cam.Project(c.Lat, c.Lon)
			if !v0 {
				continue
			}
			endLat := math.Max(-90, math.Min(90, c.Lat+c.V*scale))
			x1, y1, v1 := cam.Project(endLat, c.Lon+c.U*scale)
			if !v1 {
				continue
			}
			rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, g.Arrow)
			rl.DrawCircleV(rl.Vector2{X: x0, Y: y0}, 1, g.Arrow)
		}
	}
}
