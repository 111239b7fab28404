package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pthm-cable/globewind/systems"
)

// ErrMalformedSnapshot is wrapped by every snapshot decode failure.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Snapshot pairs a wind grid with a particle set. Grid and Particles are
// the interchange keys read by the renderer; Resolution and Time are
// optional and omitted when unset.
type Snapshot struct {
	Resolution *systems.Resolution `json:"resolution,omitempty"`
	Time       float64             `json:"time,omitempty"`
	Grid       []systems.GridCell  `json:"grid"`
	Particles  []systems.Particle  `json:"particles"`
}

// NewSnapshot copies the grid and particles so the snapshot stays
// immutable while the simulation keeps mutating its own state.
func NewSnapshot(g *systems.WindGrid, particles []systems.Particle, t float64) *Snapshot {
	res := g.Resolution()
	s := &Snapshot{
		Resolution: &res,
		Time:       t,
		Grid:       make([]systems.GridCell, len(g.Cells())),
		Particles:  make([]systems.Particle, len(particles)),
	}
	copy(s.Grid, g.Cells())
	copy(s.Particles, particles)
	return s
}

// EncodeSnapshot writes s as JSON. indent selects the human-readable
// two-space layout used for files on disk.
func EncodeSnapshot(w io.Writer, s *Snapshot, indent bool) error {
	// Both keys are mandatory on decode, so nil slices must encode as []
	out := *s
	if out.Grid == nil {
		out.Grid = []systems.GridCell{}
	}
	if out.Particles == nil {
		out.Particles = []systems.Particle{}
	}

	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// snapshotWire detects missing keys, which a plain Snapshot cannot.
type snapshotWire struct {
	Resolution *systems.Resolution `json:"resolution"`
	Time       float64             `json:"time"`
	Grid       *[]systems.GridCell `json:"grid"`
	Particles  *[]systems.Particle `json:"particles"`
}

// DecodeSnapshot parses one JSON snapshot. Any malformed, truncated or
// inconsistent input returns an error wrapping ErrMalformedSnapshot and
// no snapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)

	var wire snapshotWire
	if err := dec.Decode(&wire); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after snapshot", ErrMalformedSnapshot)
	}
	if wire.Grid == nil {
		return nil, fmt.Errorf("%w: missing grid", ErrMalformedSnapshot)
	}
	if wire.Particles == nil {
		return nil, fmt.Errorf("%w: missing particles", ErrMalformedSnapshot)
	}

	s := &Snapshot{
		Time:      wire.Time,
		Grid:      *wire.Grid,
		Particles: *wire.Particles,
	}

	res, err := resolveResolution(wire.Resolution, s.Grid)
	if err != nil {
		return nil, err
	}
	s.Resolution = &res
	return s, nil
}

// resolveResolution prefers an embedded resolution and otherwise infers
// the column count from the leading run of equal latitudes.
func resolveResolution(embedded *systems.Resolution, grid []systems.GridCell) (systems.Resolution, error) {
	if embedded != nil {
		if err := embedded.Validate(); err != nil {
			return systems.Resolution{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		if embedded.Cells() != len(grid) {
			return systems.Resolution{}, fmt.Errorf("%w: grid has %d cells, resolution %dx%d needs %d",
				ErrMalformedSnapshot, len(grid), embedded.Lat, embedded.Lon, embedded.Cells())
		}
		if err := checkRows(grid, *embedded); err != nil {
			return systems.Resolution{}, err
		}
		return *embedded, nil
	}

	if len(grid) < 4 {
		return systems.Resolution{}, fmt.Errorf("%w: grid too small (%d cells)", ErrMalformedSnapshot, len(grid))
	}
	lon := 1
	for lon < len(grid) && grid[lon].Lat == grid[0].Lat {
		lon++
	}
	if lon == len(grid) || len(grid)%lon != 0 {
		return systems.Resolution{}, fmt.Errorf("%w: cannot infer resolution from %d cells", ErrMalformedSnapshot, len(grid))
	}
	res := systems.Resolution{Lat: len(grid) / lon, Lon: lon}
	if err := res.Validate(); err != nil {
		return systems.Resolution{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if err := checkRows(grid, res); err != nil {
		return systems.Resolution{}, err
	}
	return res, nil
}

// checkRows requires one latitude per row, strictly increasing from row
// to row, so cells land where the sampler expects them.
func checkRows(grid []systems.GridCell, res systems.Resolution) error {
	for i := 0; i < res.Lat; i++ {
		row := grid[i*res.Lon : (i+1)*res.Lon]
		lat := row[0].Lat
		for j := range row {
			if row[j].Lat != lat {
				return fmt.Errorf("%w: row %d mixes latitudes %g and %g", ErrMalformedSnapshot, i, lat, row[j].Lat)
			}
		}
		if i > 0 && lat <= grid[(i-1)*res.Lon].Lat {
			return fmt.Errorf("%w: row %d latitude %g not above row %d", ErrMalformedSnapshot, i, lat, i-1)
		}
	}
	return nil
}

// WindGrid wraps the snapshot's cells in a sampler. The grid shares the
// snapshot's cell storage.
func (s *Snapshot) WindGrid() (*systems.WindGrid, error) {
	if s.Resolution == nil {
		res, err := resolveResolution(nil, s.Grid)
		if err != nil {
			return nil, err
		}
		s.Resolution = &res
	}
	return systems.NewWindGridFromCells(*s.Resolution, s.Grid)
}

// MarshalSnapshot is EncodeSnapshot into a byte slice.
func MarshalSnapshot(s *Snapshot, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, s, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveSnapshot writes a snapshot to path, creating parent directories.
func SaveSnapshot(s *Snapshot, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	data, err := MarshalSnapshot(s, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	s, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}
