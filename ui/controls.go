package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
)

// Speed scale slider bounds, in degrees per unit velocity per step.
const (
	MinSpeedScale = 0.0002
	MaxSpeedScale = 0.02
)

// Controls holds the user-adjustable view and simulation settings.
type Controls struct {
	SpeedScale    float32
	StepsPerFrame int
	ShowArrows    bool
	AutoRotate    bool
	Paused        bool
}

// ControlsPanel renders raygui sliders and toggles for Controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel and applies any interaction to ctl.
// Returns true if the speed scale changed.
func (c *ControlsPanel) Draw(ctl *Controls) bool {
	if !c.visible {
		return false
	}

	r := c.renderer
	padding := r.Theme.Padding
	panelHeight := int32(190)
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := c.y + padding
	sliderW := float32(c.width - padding*2 - 80)

	y = r.DrawSectionHeader(c.x+padding, y, "Controls")

	rl.DrawText(fmt.Sprintf("Speed scale: %.4f", ctl.SpeedScale), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	newSpeed := gui.SliderBar(
		rl.Rectangle{X: x + 40, Y: float32(y), Width: sliderW, Height: 16},
		"slow", "fast",
		ctl.SpeedScale, MinSpeedScale, MaxSpeedScale,
	)
	changed := newSpeed != ctl.SpeedScale
	ctl.SpeedScale = newSpeed
	y += 26

	rl.DrawText(fmt.Sprintf("Steps/frame: %d", ctl.StepsPerFrame), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	steps := gui.SliderBar(
		rl.Rectangle{X: x + 40, Y: float32(y), Width: sliderW, Height: 16},
		"1", "10",
		float32(ctl.StepsPerFrame), 1, 10,
	)
	ctl.StepsPerFrame = int(steps + 0.5)
	y += 30

	half := float32(c.width-padding*3) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 26}, toggleText(ctl.Paused, "Resume", "Pause")) {
		ctl.Paused = !ctl.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + float32(padding), Y: float32(y), Width: half, Height: 26}, toggleText(ctl.AutoRotate, "Stop Spin", "Spin")) {
		ctl.AutoRotate = !ctl.AutoRotate
	}
	y += 34
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 26}, toggleText(ctl.ShowArrows, "Hide Wind", "Show Wind")) {
		ctl.ShowArrows = !ctl.ShowArrows
	}

	return changed
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
