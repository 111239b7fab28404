package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/globewind/ui"
)

// arrowStride picks roughly 36 arrows around each parallel.
func (g *Game) arrowStride() int {
	return max(1, g.sim.Grid().Resolution().Lon/36)
}

// Draw renders the globe, particles and UI.
func (g *Game) Draw() {
	g.sim.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 4, G: 6, B: 10, A: 255})

	g.globe.DrawGlobe(g.camera)
	if g.controls.ShowArrows {
		g.globe.DrawWindArrows(g.camera, g.sim.Grid(), g.arrowStride(), g.cfg.Export.ArcScale*20)
	}
	g.particles.Draw(g.camera, g.sim.Particles())

	g.drawUI()

	rl.EndDrawing()
}

func (g *Game) drawUI() {
	g.hud.Draw(ui.HUDData{
		Title:         "Globe Wind",
		Composition:   g.cfg.Field.Composition,
		Tick:          g.sim.Tick(),
		Time:          g.sim.Time(),
		Particles:     len(g.sim.Particles()),
		StepsPerFrame: g.controls.StepsPerFrame,
		FPS:           rl.GetFPS(),
		Paused:        g.controls.Paused,
		Live:          g.sim.Live(),
	})

	if g.controlsPanel.Draw(&g.controls) {
		g.sim.SetSpeedScale(float64(g.controls.SpeedScale))
	}

	if g.showPerf {
		g.perfPanel.Draw(g.sim.PerfStats())
	}

	g.hud.DrawControls(int32(g.screenHeight),
		"RMB drag: rotate | Wheel: zoom | R: reset view | Space: pause | </>: speed | W: wind | P: perf | H: panel")
}
