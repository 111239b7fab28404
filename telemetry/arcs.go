package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pthm-cable/globewind/config"
	"github.com/pthm-cable/globewind/systems"
)

// Arc is a static flow segment for arc-based globe layers.
type Arc struct {
	StartLat float64 `json:"startLat"`
	StartLng float64 `json:"startLng"`
	EndLat   float64 `json:"endLat"`
	EndLng   float64 `json:"endLng"`
	Altitude float64 `json:"altitude"`
	Color    string  `json:"color"`
}

// ArcOptions controls arc export.
type ArcOptions struct {
	Scale    float64 // Degrees per unit velocity
	Altitude float64
	Color    string
	Stride   int // Emit every Stride-th row and column
}

// ArcOptionsFromConfig reads export settings.
func ArcOptionsFromConfig(cfg config.ExportConfig) ArcOptions {
	return ArcOptions{
		Scale:    cfg.ArcScale,
		Altitude: cfg.ArcAltitude,
		Color:    cfg.ArcColor,
		Stride:   cfg.ArcStride,
	}
}

// ArcsFromGrid emits one advection step per grid cell: each arc starts at
// the cell and ends where a particle would be after one step of
// opts.Scale. Coordinates are rounded to 0.01 degrees.
func ArcsFromGrid(g *systems.WindGrid, opts ArcOptions) []Arc {
	stride := opts.Stride
	if stride < 1 {
		stride = 1
	}
	color := opts.Color
	if color == "" {
		color = "cyan"
	}

	res := g.Resolution()
	arcs := make([]Arc, 0, ((res.Lat+stride-1)/stride)*((res.Lon+stride-1)/stride))
	for i := 0; i < res.Lat; i += stride {
		for j := 0; j < res.Lon; j += stride {
			c := g.Cell(i, j)
			arcs = append(arcs, Arc{
				StartLat: round2(c.Lat),
				StartLng: round2(c.Lon),
				EndLat:   round2(c.Lat + c.V*opts.Scale),
				EndLng:   round2(c.Lon + c.U*opts.Scale),
				Altitude: opts.Altitude,
				Color:    color,
			})
		}
	}
	return arcs
}

// WriteArcs writes arcs as a compact JSON array.
func WriteArcs(w io.Writer, arcs []Arc) error {
	if err := json.NewEncoder(w).Encode(arcs); err != nil {
		return fmt.Errorf("encode arcs: %w", err)
	}
	return nil
}

// SaveArcs writes arcs to path.
func SaveArcs(arcs []Arc, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create arcs file: %w", err)
	}
	if err := WriteArcs(f, arcs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func round2(x float64) float64 {
	// Halves round up, so -12.5 hundredths becomes -12
	return math.Floor(x*100+0.5) / 100
}
