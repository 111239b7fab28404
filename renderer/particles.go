package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/globewind/camera"
	"github.com/pthm-cable/globewind/systems"
)

// maxTrailJump is the longest screen-space segment drawn as a trail.
// Longer jumps come from wraparound or respawn and are skipped.
const maxTrailJump = 40

// ParticleRenderer draws wind tracers with a one-frame trail.
type ParticleRenderer struct {
	Color rl.Color

	prev    []rl.Vector2
	prevVis []bool
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{
		Color: rl.Color{R: 120, G: 220, B: 255, A: 140},
	}
}

// Draw renders particles on the visible hemisphere with additive blending.
func (r *ParticleRenderer) Draw(cam *camera.Camera, particles []systems.Particle) {
	if len(r.prev) != len(particles) {
		r.prev = make([]rl.Vector2, len(particles))
		r.prevVis = make([]bool, len(particles))
	}

	rl.BeginBlendMode(rl.BlendAdditive)

	for i := range particles {
		p := &particles[i]
		x, y, visible := cam.Project(p.Lat, p.Lon)
		cur := rl.Vector2{X: x, Y: y}

		if visible {
			if r.prevVis[i] && rl.Vector2Distance(cur, r.prev[i]) < maxTrailJump {
				rl.DrawLineV(r.prev[i], cur, r.Color)
			} else {
				rl.DrawPixelV(cur, r.Color)
			}
		}

		r.prev[i] = cur
		r.prevVis[i] = visible
	}

	rl.EndBlendMode()
}

// Reset forgets trail history, e.g. after the camera jumps.
func (r *ParticleRenderer) Reset() {
	for i := range r.prevVis {
		r.prevVis[i] = false
	}
}
