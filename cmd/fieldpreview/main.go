// Wind field preview tool - interactive equirectangular speed map with sliders.
//
// Usage: go run ./cmd/fieldpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/globewind/config"
	"github.com/pthm-cable/globewind/systems"
	"github.com/pthm-cable/globewind/telemetry"
)

const (
	windowWidth   = 1200
	windowHeight  = 720
	previewWidth  = 720
	previewHeight = 360
	panelWidth    = windowWidth - previewWidth - 30

	gridLat = 91
	gridLon = 181
)

var (
	compositions = []string{config.CompositionPlain, config.CompositionBias, config.CompositionConvection}
	noiseKinds   = []string{config.NoiseSimplex, config.NoisePerlin, config.NoiseAquilax}
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	base, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := *base
	seed := cfg.Noise.Seed

	rl.InitWindow(windowWidth, windowHeight, "Wind Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	grid, err := systems.NewWindGrid(systems.Resolution{Lat: gridLat, Lon: gridLon})
	if err != nil {
		slog.Error("failed to allocate grid", "error", err)
		os.Exit(1)
	}

	img := rl.GenImageColor(gridLon, gridLat, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var simTime float64
	animating := false
	needsRegen := true
	var stats telemetry.FieldStats

	for !rl.WindowShouldClose() {
		if animating {
			simTime += cfg.Advection.TimeStep * 10
			needsRegen = true
		}

		if needsRegen {
			composer, err := systems.NewFieldComposer(&cfg, seed)
			if err != nil {
				slog.Error("invalid field settings", "error", err)
			} else {
				grid.Build(composer, simTime)
				stats = telemetry.ComputeFieldStats(grid.Cells())
				updateTexture(texture, grid, stats.SpeedMax)
			}
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Row 0 is the south pole, so flip vertically
		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridLon, Height: -gridLat},
			rl.Rectangle{X: 10, Y: 10, Width: previewWidth, Height: previewHeight},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewWidth, previewHeight, rl.DarkGray)

		statsY := int32(previewHeight + 25)
		rl.DrawText(fmt.Sprintf("Speed mean: %.3f  p90: %.3f  max: %.3f", stats.SpeedMean, stats.SpeedP90, stats.SpeedMax), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Mean u: %+.3f  v: %+.3f", stats.UMean, stats.VMean), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.3f  Seed: %d", simTime, seed), 15, statsY+40, 16, rl.DarkGray)

		panelX := float32(previewWidth + 20)
		panelY := float32(10)

		rl.DrawText("Wind Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		slider := func(label string, value *float64, lo, hi float64) {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			nv := gui.SliderBar(
				rl.Rectangle{X: panelX + 30, Y: panelY, Width: float32(panelWidth - 110), Height: 20},
				fmt.Sprintf("%g", lo), fmt.Sprintf("%g", hi),
				float32(*value), float32(lo), float32(hi),
			)
			rl.DrawText(fmt.Sprintf("%.2f", *value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if float64(nv) != float64(float32(*value)) {
				*value = float64(nv)
				needsRegen = true
			}
			panelY += 32
		}

		slider("Large frequency", &cfg.Field.Large.Frequency, 0.1, 8)
		slider("Large amplitude", &cfg.Field.Large.Amplitude, 0, 30)
		slider("Small frequency", &cfg.Field.Small.Frequency, 0.5, 16)
		slider("Small amplitude", &cfg.Field.Small.Amplitude, 0, 10)
		slider("Convection strength", &cfg.Field.Convection.Strength, 0, 30)

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 30}, "Field: "+cfg.Field.Composition) {
			cfg.Field.Composition = next(compositions, cfg.Field.Composition)
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: panelY, Width: 150, Height: 30}, "Noise: "+cfg.Noise.Kind) {
			cfg.Noise.Kind = next(noiseKinds, cfg.Noise.Kind)
			needsRegen = true
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 30}, toggleText(cfg.Field.Bias.Taper, "Taper: on", "Taper: off")) {
			cfg.Field.Bias.Taper = !cfg.Field.Bias.Taper
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: panelY, Width: 150, Height: 30}, toggleText(cfg.Field.Bias.Zonal, "Zonal: on", "Zonal: off")) {
			cfg.Field.Bias.Zonal = !cfg.Field.Bias.Zonal
			needsRegen = true
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: panelY, Width: 150, Height: 30}, "Random Seed") {
			seed = int64(rl.GetRandomValue(1, 99999))
			needsRegen = true
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 150, Height: 30}, "Reset Time") {
			simTime = 0
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 160, Y: panelY, Width: 150, Height: 30}, "Reset All") {
			cfg = *base
			seed = base.Noise.Seed
			simTime = 0
			needsRegen = true
		}

		rl.DrawText("Press C to copy field YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			if text, err := fieldYAML(cfg.Field); err == nil {
				rl.SetClipboardText(text)
			} else {
				slog.Error("failed to encode field config", "error", err)
			}
		}

		rl.EndDrawing()
	}
}

// fieldYAML renders the field section in the config file layout.
func fieldYAML(f config.FieldConfig) (string, error) {
	data, err := yaml.Marshal(map[string]config.FieldConfig{"field": f})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func next(options []string, cur string) string {
	for i, o := range options {
		if o == cur {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// updateTexture colours each cell by speed relative to maxSpeed.
func updateTexture(texture rl.Texture2D, grid *systems.WindGrid, maxSpeed float64) {
	cells := grid.Cells()
	pixels := make([]color.RGBA, len(cells))
	for i, c := range cells {
		v := float32(0)
		if maxSpeed > 0 {
			v = float32(math.Hypot(c.U, c.V) / maxSpeed)
		}
		pixels[i] = speedColor(v)
	}
	rl.UpdateTexture(texture, pixels)
}

// speedColor maps [0, 1] to dark blue -> cyan -> yellow -> white.
func speedColor(v float32) color.RGBA {
	var r, g, b uint8
	switch {
	case v < 0.25:
		t := v / 0.25
		r, g, b = uint8(10+t*30), uint8(20+t*60), uint8(60+t*100)
	case v < 0.5:
		t := (v - 0.25) / 0.25
		r, g, b = uint8(40+t*20), uint8(80+t*120), uint8(160+t*40)
	case v < 0.75:
		t := (v - 0.5) / 0.25
		r, g, b = uint8(60+t*140), uint8(200-t*40), uint8(200-t*150)
	default:
		t := min((v-0.75)/0.25, 1)
		r, g, b = uint8(200+t*55), uint8(160+t*95), uint8(50+t*205)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
