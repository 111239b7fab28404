// Package camera provides an orthographic globe camera for the preview window.
package camera

import "math"

const deg = math.Pi / 180

// maxTilt keeps the view center off the poles so panning stays well defined.
const maxTilt = 89

// Camera looks at the globe from infinitely far away, centered on a
// geographic position. The globe fills 90% of the smaller viewport side
// at zoom 1.
type Camera struct {
	// CenterLat, CenterLon is the geographic point at the viewport center
	CenterLat, CenterLon float32

	// Zoom level (1.0 = globe fits the viewport)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera looking at (0, 0) with the globe fitted to the viewport.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   0.5,
		MaxZoom:   8.0,
	}
}

// Radius returns the on-screen globe radius in pixels.
func (c *Camera) Radius() float32 {
	return min(c.ViewportW, c.ViewportH) / 2 * 0.9 * c.Zoom
}

// Project converts a geographic position to screen coordinates.
// visible is false for points on the far hemisphere.
func (c *Camera) Project(lat, lon float64) (sx, sy float32, visible bool) {
	phi := lat * deg
	dl := (lon - float64(c.CenterLon)) * deg
	phi0 := float64(c.CenterLat) * deg

	sinPhi, cosPhi := math.Sincos(phi)
	sinPhi0, cosPhi0 := math.Sincos(phi0)
	cosDl := math.Cos(dl)

	r := float64(c.Radius())
	x := r * cosPhi * math.Sin(dl)
	y := r * (cosPhi0*sinPhi - sinPhi0*cosPhi*cosDl)
	cosC := sinPhi0*sinPhi + cosPhi0*cosPhi*cosDl

	sx = c.ViewportW/2 + float32(x)
	sy = c.ViewportH/2 - float32(y)
	return sx, sy, cosC >= 0
}

// Unproject converts screen coordinates to a geographic position.
// ok is false when the point is off the globe.
func (c *Camera) Unproject(sx, sy float32) (lat, lon float64, ok bool) {
	r := float64(c.Radius())
	x := float64(sx-c.ViewportW/2) / r
	y := float64(c.ViewportH/2-sy) / r
	rho := math.Hypot(x, y)
	if rho > 1 {
		return 0, 0, false
	}

	phi0 := float64(c.CenterLat) * deg
	lam0 := float64(c.CenterLon) * deg
	if rho == 0 {
		return float64(c.CenterLat), float64(c.CenterLon), true
	}

	cc := math.Asin(rho)
	sinC, cosC := math.Sincos(cc)
	sinPhi0, cosPhi0 := math.Sincos(phi0)

	phi := math.Asin(cosC*sinPhi0 + y*sinC*cosPhi0/rho)
	lam := lam0 + math.Atan2(x*sinC, rho*cosC*cosPhi0-y*sinC*sinPhi0)

	return phi / deg, wrapLon(lam / deg), true
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan rotates the globe by a screen-space drag. Dragging right turns the
// globe eastward under the cursor.
func (c *Camera) Pan(dx, dy float32) {
	r := c.Radius()
	if r <= 0 {
		return
	}
	c.CenterLon = float32(wrapLon(float64(c.CenterLon - dx/r/deg)))
	c.CenterLat = clamp(c.CenterLat+dy/r/deg, -maxTilt, maxTilt)
}

// Rotate spins the globe about its axis by dLon degrees.
func (c *Camera) Rotate(dLon float32) {
	c.CenterLon = float32(wrapLon(float64(c.CenterLon + dLon)))
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to (0, 0) at zoom 1.
func (c *Camera) Reset() {
	c.CenterLat = 0
	c.CenterLon = 0
	c.Zoom = 1.0
}

// wrapLon maps a longitude into [-180, 180).
func wrapLon(lon float64) float64 {
	r := math.Mod(lon+180, 360)
	if r < 0 {
		r += 360
	}
	return r - 180
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
