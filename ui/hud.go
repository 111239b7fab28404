package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/globewind/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	Composition   string
	Tick          int
	Time          float64
	Particles     int
	StepsPerFrame int
	FPS           int32
	Paused        bool
	Live          bool
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	mode := "static"
	if data.Live {
		mode = "live"
	}
	rl.DrawText(
		fmt.Sprintf("Field: %s (%s) | Particles: %d", data.Composition, mode, data.Particles),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | t=%.3f | Speed: %dx | FPS: %d", data.Tick, data.Time, data.StepsPerFrame, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders step timing by phase.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

var perfPhases = []string{
	telemetry.PhaseField,
	telemetry.PhaseAdvect,
	telemetry.PhaseRespawn,
	telemetry.PhaseTelemetry,
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight*int32(len(perfPhases)+3) + padding*2

	r.DrawPanel(p.x, p.y, p.width, height)
	y := p.y + padding
	x := p.x + padding
	w := p.width - padding*2

	y = r.DrawSectionHeader(x, y, "Step Timing")
	y = r.DrawLabelValue(x, y, "avg step", stats.AvgStep.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "steps/s", fmt.Sprintf("%.0f", stats.StepsPerSecond))
	for _, phase := range perfPhases {
		y = r.DrawBar(x, y, phase, float32(stats.PhasePct[phase]), 100, w)
	}
}
