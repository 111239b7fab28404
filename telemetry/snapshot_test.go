package telemetry

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/globewind/config"
	"github.com/pthm-cable/globewind/systems"
)

func seededSnapshot(t *testing.T, seed int64) *Snapshot {
	t.Helper()

	cfg := config.Default()
	composer, err := systems.NewFieldComposer(cfg, seed)
	require.NoError(t, err)

	g, err := systems.NewWindGrid(systems.Resolution{Lat: 4, Lon: 4})
	require.NoError(t, err)
	g.Build(composer, 0)

	particles := systems.SeedParticles(8, rand.New(rand.NewSource(seed)))
	return NewSnapshot(g, particles, 0)
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := seededSnapshot(t, 42)

	data, err := MarshalSnapshot(snap, false)
	require.NoError(t, err)

	got, err := DecodeSnapshot(bytes.NewReader(data))
	require.NoError(t, err)

	// Values must survive bit for bit
	assert.Equal(t, snap.Grid, got.Grid)
	assert.Equal(t, snap.Particles, got.Particles)
	require.NotNil(t, got.Resolution)
	assert.Equal(t, systems.Resolution{Lat: 4, Lon: 4}, *got.Resolution)
}

func TestSnapshotSaveLoad(t *testing.T) {
	snap := seededSnapshot(t, 7)
	snap.Time = 0.25

	path := filepath.Join(t.TempDir(), "nested", "wind.json")
	require.NoError(t, SaveSnapshot(snap, path))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Grid, got.Grid)
	assert.Equal(t, snap.Particles, got.Particles)
	assert.Equal(t, 0.25, got.Time)
}

func TestSnapshotNilParticlesRoundTrip(t *testing.T) {
	g, err := systems.UniformWindGrid(systems.Resolution{Lat: 2, Lon: 3}, 1, -1)
	require.NoError(t, err)

	data, err := MarshalSnapshot(&Snapshot{Grid: g.Cells()}, false)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"particles":[]`)

	got, err := DecodeSnapshot(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, g.Cells(), got.Grid)
	assert.Empty(t, got.Particles)
	assert.Equal(t, systems.Resolution{Lat: 2, Lon: 3}, *got.Resolution)
}

func TestSnapshotIsACopy(t *testing.T) {
	g, err := systems.UniformWindGrid(systems.Resolution{Lat: 2, Lon: 2}, 1, 0)
	require.NoError(t, err)
	particles := []systems.Particle{{Lat: 1, Lon: 2}}

	snap := NewSnapshot(g, particles, 0)
	g.Set(0, 0, 9, 9)
	particles[0].Lat = 50

	assert.Equal(t, 1.0, snap.Grid[0].U)
	assert.Equal(t, 1.0, snap.Particles[0].Lat)
}

func TestDecodeSnapshotInfersResolution(t *testing.T) {
	// No resolution key: 2 rows x 3 columns inferred from the lat values
	input := `{"grid":[
		{"lat":-90,"lon":-180,"u":0,"v":0},{"lat":-90,"lon":0,"u":1,"v":0},{"lat":-90,"lon":180,"u":0,"v":0},
		{"lat":90,"lon":-180,"u":0,"v":0},{"lat":90,"lon":0,"u":2,"v":0},{"lat":90,"lon":180,"u":0,"v":0}
	],"particles":[]}`

	snap, err := DecodeSnapshot(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, systems.Resolution{Lat: 2, Lon: 3}, *snap.Resolution)
	assert.Empty(t, snap.Particles)

	g, err := snap.WindGrid()
	require.NoError(t, err)
	u, _ := g.Sample(0, 0)
	assert.InDelta(t, 1.5, u, 1e-12)
}

func TestDecodeSnapshotMalformed(t *testing.T) {
	cell := `{"lat":-90,"lon":-180,"u":0,"v":0}`
	grid4 := "[" + strings.Repeat(cell+",", 3) + cell + "]"

	testCases := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"invalid json", `{"grid": nope}`},
		{"truncated", `{"grid":[` + cell},
		{"missing grid", `{"particles":[]}`},
		{"missing particles", `{"grid":` + grid4 + `}`},
		{"null grid", `{"grid":null,"particles":[]}`},
		{"wrong type", `{"grid":{},"particles":[]}`},
		{"trailing data", `{"grid":` + grid4 + `,"particles":[]} {}`},
		{"length mismatch", `{"resolution":{"lat":2,"lon":2},"grid":[` + cell + `],"particles":[]}`},
		{"resolution too small", `{"resolution":{"lat":1,"lon":4},"grid":` + grid4 + `,"particles":[]}`},
		{"single row", `{"grid":` + grid4 + `,"particles":[]}`},
		{"non-row-major grid", `{"grid":[` + strings.Repeat(cell+",", 3) +
			`{"lat":10,"lon":-180,"u":0,"v":0},{"lat":55,"lon":0,"u":0,"v":0},{"lat":-3,"lon":180,"u":0,"v":0}],"particles":[]}`},
		{"rows not increasing", `{"resolution":{"lat":2,"lon":2},"grid":[` +
			`{"lat":90,"lon":-180,"u":0,"v":0},{"lat":90,"lon":180,"u":0,"v":0},` +
			`{"lat":-90,"lon":-180,"u":0,"v":0},{"lat":-90,"lon":180,"u":0,"v":0}],"particles":[]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap, err := DecodeSnapshot(strings.NewReader(tc.input))
			if !errors.Is(err, ErrMalformedSnapshot) {
				t.Errorf("expected ErrMalformedSnapshot, got %v", err)
			}
			if snap != nil {
				t.Errorf("expected no snapshot on error, got %+v", snap)
			}
		})
	}
}

func TestDecodeSnapshotTruncatedIsUnexpectedEOF(t *testing.T) {
	_, err := DecodeSnapshot(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), io.ErrUnexpectedEOF.Error())
}

func TestDecodeSnapshotAllowsTrailingWhitespace(t *testing.T) {
	snap := seededSnapshot(t, 3)
	data, err := MarshalSnapshot(snap, true)
	require.NoError(t, err)

	_, err = DecodeSnapshot(bytes.NewReader(append(data, "\n\n  "...)))
	assert.NoError(t, err)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
