// Package game runs the simulation in a raylib window with an interactive globe.
package game

import (
	"github.com/pthm-cable/globewind/camera"
	"github.com/pthm-cable/globewind/config"
	"github.com/pthm-cable/globewind/renderer"
	"github.com/pthm-cable/globewind/sim"
	"github.com/pthm-cable/globewind/ui"
)

// autoRotateSpeed is the globe spin in degrees per frame.
const autoRotateSpeed = 0.1

// Game holds the interactive viewer state around a simulation.
type Game struct {
	sim *sim.Simulation
	cfg *config.Config

	camera        *camera.Camera
	globe         *renderer.GlobeRenderer
	particles     *renderer.ParticleRenderer
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	controlsPanel *ui.ControlsPanel
	controls      ui.Controls

	showPerf bool

	screenWidth, screenHeight float32
}

// New creates a viewer for s. Must be called after the raylib window exists.
func New(s *sim.Simulation, cfg *config.Config) *Game {
	w := float32(cfg.Screen.Width)
	h := float32(cfg.Screen.Height)
	return &Game{
		sim:           s,
		cfg:           cfg,
		camera:        camera.New(w, h),
		globe:         renderer.NewGlobeRenderer(),
		particles:     renderer.NewParticleRenderer(),
		hud:           ui.NewHUD(),
		perfPanel:     ui.NewPerfPanel(int32(w)-230, 10, 220),
		controlsPanel: ui.NewControlsPanel(10, 100, 260),
		controls: ui.Controls{
			SpeedScale:    float32(s.SpeedScale()),
			StepsPerFrame: 1,
			AutoRotate:    true,
		},
		screenWidth:  w,
		screenHeight: h,
	}
}

// Update handles input and advances the simulation.
func (g *Game) Update() {
	g.handleInput()

	if g.controls.AutoRotate {
		g.camera.Rotate(autoRotateSpeed)
	}

	if g.controls.Paused {
		return
	}
	for i := 0; i < g.controls.StepsPerFrame; i++ {
		g.sim.Step()
	}
}

// Tick returns the simulation tick.
func (g *Game) Tick() int { return g.sim.Tick() }
