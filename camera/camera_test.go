package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720)

	if cam.CenterLat != 0 || cam.CenterLon != 0 {
		t.Errorf("expected camera at (0, 0), got (%f, %f)", cam.CenterLat, cam.CenterLon)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	if r := cam.Radius(); math.Abs(float64(r-324)) > 0.01 {
		t.Errorf("expected radius 324, got %f", r)
	}
}

func TestProjectCenter(t *testing.T) {
	cam := New(1280, 720)

	sx, sy, visible := cam.Project(0, 0)
	if !visible {
		t.Fatal("center should be visible")
	}
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestProjectOrientation(t *testing.T) {
	cam := New(1000, 1000)
	r := cam.Radius()

	// North pole sits at the top of the disc
	sx, sy, visible := cam.Project(90, 0)
	if !visible || math.Abs(float64(sx-500)) > 0.01 || math.Abs(float64(sy-(500-r))) > 0.01 {
		t.Errorf("expected north pole at (500, %f), got (%f, %f) visible=%v", 500-r, sx, sy, visible)
	}

	// East is to the right
	sx, _, _ = cam.Project(0, 45)
	if sx <= 500 {
		t.Errorf("expected east of center on the right, got x=%f", sx)
	}
}

func TestFarSideHidden(t *testing.T) {
	cam := New(1280, 720)

	testCases := []struct {
		lat, lon float64
		visible  bool
	}{
		{0, 0, true},
		{0, 89, true},
		{0, -89, true},
		{0, 180, false},
		{0, 100, false},
		{-10, 179, false},
	}

	for _, tc := range testCases {
		_, _, visible := cam.Project(tc.lat, tc.lon)
		if visible != tc.visible {
			t.Errorf("Project(%v, %v): expected visible=%v, got %v", tc.lat, tc.lon, tc.visible, visible)
		}
	}
}

func TestUnprojectRoundtrip(t *testing.T) {
	cam := New(1280, 720)
	cam.CenterLat = 30
	cam.CenterLon = 170

	testCases := []struct{ lat, lon float64 }{
		{30, 170},
		{45, -175},
		{10, 150},
		{60, 170},
	}

	for _, tc := range testCases {
		sx, sy, visible := cam.Project(tc.lat, tc.lon)
		if !visible {
			t.Errorf("(%v, %v) should be visible", tc.lat, tc.lon)
			continue
		}
		lat, lon, ok := cam.Unproject(sx, sy)
		if !ok {
			t.Errorf("unproject of (%f, %f) failed", sx, sy)
			continue
		}
		if math.Abs(lat-tc.lat) > 0.05 || math.Abs(wrapLon(lon-tc.lon)) > 0.05 {
			t.Errorf("roundtrip failed: (%v,%v) -> (%f,%f) -> (%f,%f)", tc.lat, tc.lon, sx, sy, lat, lon)
		}
	}
}

func TestUnprojectOffGlobe(t *testing.T) {
	cam := New(1280, 720)
	if _, _, ok := cam.Unproject(0, 0); ok {
		t.Error("corner of the viewport should be off the globe")
	}
}

func TestPanWraps(t *testing.T) {
	cam := New(1280, 720)
	cam.CenterLon = -170

	// Dragging right by 22.5 degrees moves the view westward across the seam
	r := cam.Radius()
	cam.Pan(r*float32(math.Pi)/8, 0)

	if cam.CenterLon < 150 || cam.CenterLon >= 180 {
		t.Errorf("expected center to wrap past -180, got %f", cam.CenterLon)
	}
}

func TestPanClampsTilt(t *testing.T) {
	cam := New(1280, 720)
	cam.Pan(0, 10000)

	if cam.CenterLat != maxTilt {
		t.Errorf("expected tilt clamped to %v, got %f", maxTilt, cam.CenterLat)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720)

	cam.SetZoom(0.1)
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.ZoomBy(100)
	if cam.Zoom != 8.0 {
		t.Errorf("expected zoom clamped to 8.0, got %f", cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720)
	cam.CenterLat = 40
	cam.CenterLon = -60
	cam.Zoom = 2.5

	cam.Reset()

	if cam.CenterLat != 0 || cam.CenterLon != 0 {
		t.Errorf("expected position (0, 0), got (%f, %f)", cam.CenterLat, cam.CenterLon)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
