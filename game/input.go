package game

import rl "github.com/gen2brain/raylib-go/raylib"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.controls.Paused = !g.controls.Paused
	}

	// Steps-per-frame control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.controls.StepsPerFrame > 1 {
		g.controls.StepsPerFrame--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.controls.StepsPerFrame < 10 {
		g.controls.StepsPerFrame++
	}

	if rl.IsKeyPressed(rl.KeyW) {
		g.controls.ShowArrows = !g.controls.ShowArrows
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.controlsPanel.Toggle()
	}

	g.handleCameraInput()
}

// handleCameraInput rotates the globe on drag and zooms on wheel.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Pan(d.X, d.Y)
		g.controls.AutoRotate = false
		g.particles.Reset()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
		g.particles.Reset()
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.camera.Reset()
		g.particles.Reset()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.perfPanel.SetPosition(int32(w)-230, 10)
	g.particles.Reset()
}
