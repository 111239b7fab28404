package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/globewind/config"
)

// indexSnap absorbs rounding when a query lands on a grid line, so that
// exact grid positions return stored values exactly.
const indexSnap = 1e-9

// Resolution is the fixed size of a wind grid.
type Resolution struct {
	Lat int `json:"lat"`
	Lon int `json:"lon"`
}

// Cells returns Lat*Lon.
func (r Resolution) Cells() int { return r.Lat * r.Lon }

// Validate rejects resolutions that cannot be interpolated.
func (r Resolution) Validate() error {
	if r.Lat < 2 || r.Lon < 2 {
		return fmt.Errorf("%w: grid resolution %dx%d, need at least 2x2", config.ErrInvalidConfig, r.Lat, r.Lon)
	}
	return nil
}

// GridCell is one wind sample. U is eastward, V northward.
type GridCell struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	U   float64 `json:"u"`
	V   float64 `json:"v"`
}

// WindSampler answers velocity queries at continuous positions.
type WindSampler interface {
	Sample(lat, lon float64) (u, v float64)
}

// WindGrid stores a wind field on a row-major lat/lon grid.
// Row i spans -90..90 and column j spans -180..180, both inclusive.
type WindGrid struct {
	res   Resolution
	cells []GridCell

	// WrapLongitude treats the seam as circular when choosing the east neighbour.
	WrapLongitude bool
}

// NewWindGrid allocates a grid with coordinates filled and zero velocity.
func NewWindGrid(res Resolution) (*WindGrid, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	g := &WindGrid{
		res:   res,
		cells: make([]GridCell, res.Cells()),
	}

	lats := floats.Span(make([]float64, res.Lat), -90, 90)
	lons := floats.Span(make([]float64, res.Lon), -180, 180)
	for i, lat := range lats {
		row := g.cells[i*res.Lon : (i+1)*res.Lon]
		for j, lon := range lons {
			row[j].Lat = lat
			row[j].Lon = lon
		}
	}
	return g, nil
}

// NewWindGridFromCells wraps existing row-major cells.
func NewWindGridFromCells(res Resolution, cells []GridCell) (*WindGrid, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if len(cells) != res.Cells() {
		return nil, fmt.Errorf("grid has %d cells, want %d for %dx%d", len(cells), res.Cells(), res.Lat, res.Lon)
	}
	return &WindGrid{res: res, cells: cells}, nil
}

// UniformWindGrid returns a grid with the same velocity everywhere.
func UniformWindGrid(res Resolution, u, v float64) (*WindGrid, error) {
	g, err := NewWindGrid(res)
	if err != nil {
		return nil, err
	}
	for i := range g.cells {
		g.cells[i].U = u
		g.cells[i].V = v
	}
	return g, nil
}

// Resolution returns the grid size.
func (g *WindGrid) Resolution() Resolution { return g.res }

// Cells exposes the row-major cell slice.
func (g *WindGrid) Cells() []GridCell { return g.cells }

// Index returns the flat index of row i, column j.
func (g *WindGrid) Index(i, j int) int { return i*g.res.Lon + j }

// Cell returns the cell at row i, column j.
func (g *WindGrid) Cell(i, j int) GridCell { return g.cells[g.Index(i, j)] }

// Set overwrites the velocity at row i, column j.
func (g *WindGrid) Set(i, j int, u, v float64) {
	c := &g.cells[g.Index(i, j)]
	c.U = u
	c.V = v
}

// Build evaluates the composer at every cell for simulated time t.
func (g *WindGrid) Build(c FieldComposer, t float64) {
	g.BuildRows(c, t, 0, g.res.Lat)
}

// BuildRows evaluates rows [start, end). Disjoint row ranges may be
// built concurrently.
func (g *WindGrid) BuildRows(c FieldComposer, t float64, start, end int) {
	for i := start; i < end; i++ {
		row := g.cells[i*g.res.Lon : (i+1)*g.res.Lon]
		for j := range row {
			row[j].U, row[j].V = c.Velocity(row[j].Lat, row[j].Lon, t)
		}
	}
}

// Sample returns the bilinearly interpolated velocity at (lat, lon).
// Indices are clamped at the grid edges; positions outside
// [-90,90]x[-180,180] give edge-clamped values.
func (g *WindGrid) Sample(lat, lon float64) (u, v float64) {
	nLat, nLon := g.res.Lat, g.res.Lon

	latNorm := gridIndex((lat+90)/180*float64(nLat-1), nLat)
	lonNorm := gridIndex((lon+180)/360*float64(nLon-1), nLon)

	i0 := int(math.Floor(latNorm))
	j0 := int(math.Floor(lonNorm))
	i1 := min(i0+1, nLat-1)
	j1 := min(j0+1, nLon-1)

	di := latNorm - float64(i0)
	dj := lonNorm - float64(j0)

	if g.WrapLongitude {
		// Column nLon-1 is the same meridian as column 0
		if j0 == nLon-1 {
			j0 = 0
		}
		if j1 == nLon-1 {
			j1 = 0
		}
	}

	c00 := &g.cells[i0*nLon+j0]
	c01 := &g.cells[i0*nLon+j1]
	c10 := &g.cells[i1*nLon+j0]
	c11 := &g.cells[i1*nLon+j1]

	u0 := c00.U*(1-dj) + c01.U*dj
	u1 := c10.U*(1-dj) + c11.U*dj
	u = u0*(1-di) + u1*di

	v0 := c00.V*(1-dj) + c01.V*dj
	v1 := c10.V*(1-dj) + c11.V*dj
	v = v0*(1-di) + v1*di

	return u, v
}

// gridIndex clamps a fractional index into [0, n-1] and snaps values
// within indexSnap of an integer onto it.
func gridIndex(x float64, n int) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if hi := float64(n - 1); x > hi {
		return hi
	}
	if r := math.Round(x); math.Abs(x-r) < indexSnap {
		return r
	}
	return x
}
