package world

import (
	"log/slog"
	"slices"

	"github.com/udisondev/robotworld/internal/model"
)

// Snapshot is the JSON view of the whole world served to monitors and
// the dump command.
type Snapshot struct {
	Name      string         `json:"name"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Obstacles []ObstacleView `json:"obstacles"`
	Robots    []RobotView    `json:"robots"`
}

// ObstacleView is one obstacle in a Snapshot.
type ObstacleView struct {
	Type             string `json:"type"`
	X                int    `json:"x"`
	Y                int    `json:"y"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	BlocksVisibility bool   `json:"blocksVisibility"`
}

// RobotView is one robot in a Snapshot.
type RobotView struct {
	Name      string `json:"name"`
	Make      string `json:"make"`
	Position  [2]int `json:"position"`
	Direction string `json:"direction"`
	Shields   int    `json:"shields"`
	Shots     int    `json:"shots"`
	Status    string `json:"status"`
}

// NewRobotView renders r.
func NewRobotView(r *model.Robot) RobotView {
	st := r.State()
	return RobotView{
		Name:      r.Name(),
		Make:      r.Make(),
		Position:  [2]int{st.Position.X, st.Position.Y},
		Direction: st.Direction.String(),
		Shields:   st.Shields,
		Shots:     st.Shots,
		Status:    st.Status.String(),
	}
}

// Snapshot captures a consistent view of the world.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := Snapshot{
		Name:      w.name,
		Width:     w.width,
		Height:    w.height,
		Obstacles: make([]ObstacleView, 0, len(w.obstacles)),
		Robots:    make([]RobotView, 0, len(w.robots)),
	}
	for _, o := range w.obstacles {
		s.Obstacles = append(s.Obstacles, ObstacleView{
			Type:             o.Type.String(),
			X:                o.X,
			Y:                o.Y,
			Width:            o.Width,
			Height:           o.Height,
			BlocksVisibility: o.BlocksVisibility(),
		})
	}
	for _, r := range w.robotsLocked() {
		s.Robots = append(s.Robots, NewRobotView(r))
	}
	return s
}

// Layout is the persistent part of a world: name, dimensions, obstacles.
type Layout struct {
	Name      string
	Width     int
	Height    int
	Obstacles []model.Obstacle
}

// Layout exports the persistent part of the world.
func (w *World) Layout() Layout {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Layout{
		Name:      w.name,
		Width:     w.width,
		Height:    w.height,
		Obstacles: slices.Clone(w.obstacles),
	}
}

// Restore replaces name, dimensions and obstacles in place. Robots left
// out of bounds or inside an obstacle are killed and removed; they are
// returned to the caller.
func (w *World) Restore(l Layout) []*model.Robot {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.name = l.Name
	w.width = l.Width
	w.height = l.Height
	w.obstacles = slices.Clone(l.Obstacles)

	tx := &Tx{w: w}
	var purged []*model.Robot
	for _, r := range w.robotsLocked() {
		pos := r.Position()
		_, covered := tx.ObstacleAt(pos)
		if tx.InBounds(pos) && !covered {
			continue
		}
		r.Kill()
		w.removeLocked(r)
		purged = append(purged, r)
	}

	slog.Info("world restored",
		"name", w.name,
		"width", w.width,
		"height", w.height,
		"obstacles", len(w.obstacles),
		"purged", len(purged))

	return purged
}
