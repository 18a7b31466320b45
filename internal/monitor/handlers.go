package monitor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/udisondev/robotworld/internal/world"
)

// Health is the /health payload.
type Health struct {
	Status      string `json:"status"`
	World       string `json:"world"`
	Robots      int    `json:"robots"`
	Connections int    `json:"connections"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := Health{
		Status: "ok",
		World:  s.world.Name(),
		Robots: s.world.RobotCount(),
	}
	if s.sessions != nil {
		h.Connections = s.sessions.Count()
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleWorld(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Snapshot())
}

func (s *Server) handleRobots(w http.ResponseWriter, _ *http.Request) {
	robots := s.world.Robots()
	views := make([]world.RobotView, 0, len(robots))
	for _, r := range robots {
		views = append(views, world.NewRobotView(r))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRobot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	robot, ok := s.world.Robot(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "robot not found"})
		return
	}
	writeJSON(w, http.StatusOK, world.NewRobotView(robot))
}

// handleStream pushes a snapshot right away and then every stream interval,
// until the peer goes away or the server shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Drain control frames; a read error means the peer closed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	interval := s.cfg.StreamInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Debug("monitor stream opened", "remote", r.RemoteAddr)
	for {
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(s.world.Snapshot()); err != nil {
			slog.Debug("monitor stream write failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		select {
		case <-ticker.C:
		case <-gone:
			slog.Debug("monitor stream closed by peer", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(streamWriteWait))
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing monitor response", "error", err)
	}
}
