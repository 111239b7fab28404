// Package server streams particle frames to browser globe renderers over
// websockets and serves the current field as static JSON.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/globewind/telemetry"
)

const writeTimeout = time.Second

// Frame is one particle hand-off to a renderer.
type Frame struct {
	Type      string    `json:"type"`
	Tick      int       `json:"tick"`
	Time      float64   `json:"time"`
	Positions []float32 `json:"positions"` // Interleaved lat, lon
}

// Control is a client request applied by the simulation goroutine.
type Control struct {
	SpeedScale float64 `json:"speedScale"`
}

// Hub fans frames out to connected clients. Publish is called by the
// simulation goroutine; handlers only read encoded copies.
type Hub struct {
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	dataMu   sync.RWMutex
	latest   []byte
	snapshot []byte
	arcs     []byte

	controls chan Control
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		controls: make(chan Control, 16),
	}
}

// Handler routes /ws, /wind.json and /arcs.json.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/wind.json", h.serveBytes(func() []byte { return h.snapshot }))
	mux.HandleFunc("/arcs.json", h.serveBytes(func() []byte { return h.arcs }))
	return mux
}

// Controls delivers client requests. Unread controls are dropped once
// the buffer is full.
func (h *Hub) Controls() <-chan Control { return h.controls }

// ClientCount returns the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// SetSnapshot replaces the field served at /wind.json.
func (h *Hub) SetSnapshot(s *telemetry.Snapshot) error {
	data, err := telemetry.MarshalSnapshot(s, false)
	if err != nil {
		return err
	}
	h.dataMu.Lock()
	h.snapshot = data
	h.dataMu.Unlock()
	return nil
}

// SetArcs replaces the arc layer served at /arcs.json.
func (h *Hub) SetArcs(arcs []telemetry.Arc) error {
	var buf bytes.Buffer
	if err := telemetry.WriteArcs(&buf, arcs); err != nil {
		return err
	}
	h.dataMu.Lock()
	h.arcs = buf.Bytes()
	h.dataMu.Unlock()
	return nil
}

// Publish encodes a frame once and sends it to every client. Clients
// that fail to accept it are dropped.
func (h *Hub) Publish(tick int, simTime float64, positions []float32) error {
	data, err := json.Marshal(Frame{Type: "frame", Tick: tick, Time: simTime, Positions: positions})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	h.dataMu.Lock()
	h.latest = data
	h.dataMu.Unlock()

	h.clientsMu.RLock()
	var failed []*websocket.Conn
	for conn, mu := range h.clients {
		if err := writeMessage(conn, mu, data); err != nil {
			slog.Warn("websocket write failed", "remote", conn.RemoteAddr().String(), "error", err)
			failed = append(failed, conn)
		}
	}
	h.clientsMu.RUnlock()

	for _, conn := range failed {
		h.remove(conn)
	}
	return nil
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	mu := &sync.Mutex{}
	h.clientsMu.Lock()
	h.clients[conn] = mu
	h.clientsMu.Unlock()
	defer h.remove(conn)

	slog.Info("client connected", "remote", conn.RemoteAddr().String())

	h.dataMu.RLock()
	latest := h.latest
	h.dataMu.RUnlock()
	if latest != nil {
		if err := writeMessage(conn, mu, latest); err != nil {
			return
		}
	}

	for {
		var c Control
		if err := conn.ReadJSON(&c); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read ended", "error", err)
			}
			return
		}
		select {
		case h.controls <- c:
		default:
			slog.Warn("control dropped, simulation busy")
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.clientsMu.Unlock()
	if ok {
		conn.Close()
		slog.Info("client disconnected", "remote", conn.RemoteAddr().String())
	}
}

func (h *Hub) serveBytes(get func() []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.dataMu.RLock()
		data := get()
		h.dataMu.RUnlock()
		if data == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

func writeMessage(conn *websocket.Conn, mu *sync.Mutex, data []byte) error {
	mu.Lock()
	defer mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h *Hub) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
