package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/globewind/systems"
	"github.com/pthm-cable/globewind/telemetry"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestLatestFrameOnConnect(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	require.NoError(t, h.Publish(3, 0.015, []float32{1, 2, 3, 4}))

	f := readFrame(t, dial(t, srv))
	assert.Equal(t, "frame", f.Type)
	assert.Equal(t, 3, f.Tick)
	assert.Equal(t, 0.015, f.Time)
	assert.Equal(t, []float32{1, 2, 3, 4}, f.Positions)
}

func TestBroadcast(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, h.Publish(1, 0, []float32{10, 20}))

	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		assert.Equal(t, 1, f.Tick)
		assert.Equal(t, []float32{10, 20}, f.Positions)
	}
}

func TestDisconnectRemovesClient(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestControls(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(Control{SpeedScale: 0.004}))

	select {
	case c := <-h.Controls():
		assert.Equal(t, 0.004, c.SpeedScale)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a control message")
	}
}

func TestServeSnapshotAndArcs(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/wind.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	g, err := systems.UniformWindGrid(systems.Resolution{Lat: 3, Lon: 3}, 1, 0)
	require.NoError(t, err)
	require.NoError(t, h.SetSnapshot(telemetry.NewSnapshot(g, []systems.Particle{{Lat: 1, Lon: 2}}, 0)))
	require.NoError(t, h.SetArcs(telemetry.ArcsFromGrid(g, telemetry.ArcOptions{Scale: 1})))

	resp, err = http.Get(srv.URL + "/wind.json")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	snap, err := telemetry.DecodeSnapshot(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Len(t, snap.Grid, 9)
	assert.Equal(t, []systems.Particle{{Lat: 1, Lon: 2}}, snap.Particles)

	resp, err = http.Get(srv.URL + "/arcs.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	var arcs []telemetry.Arc
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&arcs))
	assert.Len(t, arcs, 9)
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ListenAndServe(ctx, "127.0.0.1:0", NewHub()) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
