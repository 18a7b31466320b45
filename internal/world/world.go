// Package world holds the shared simulation space: its bounds, obstacles
// and the registry of robots.
//
// A single RWMutex guards dimensions, obstacles and the registry. Composite
// operations (movement, firing, placement) run inside Write so that
// "check the cell, then occupy it" is atomic with respect to every other
// connection. Robot fields have their own lock; the order is always
// world before robot.
package world

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/udisondev/robotworld/internal/config"
	"github.com/udisondev/robotworld/internal/model"
)

var (
	ErrRobotExists  = errors.New("robot already exists")
	ErrNoSpace      = errors.New("no more space in this world")
	ErrCellOccupied = errors.New("cell is occupied")
	ErrOutOfBounds  = errors.New("position is out of bounds")
)

const defaultLaunchAttempts = 1000

// World is the shared grid. Safe for concurrent use.
type World struct {
	cfg config.WorldConfig

	mu        sync.RWMutex
	rng       *rand.Rand
	name      string
	width     int
	height    int
	obstacles []model.Obstacle
	robots    map[string]*model.Robot // key: lower-cased name
}

// New builds a world from cfg and places its random obstacles.
func New(cfg config.WorldConfig) *World {
	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = rand.Uint64()
	}

	w := &World{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		name:   cfg.Name,
		width:  cfg.Width,
		height: cfg.Height,
		robots: make(map[string]*model.Robot, 16),
	}

	w.generateObstacles()

	slog.Info("world created",
		"name", w.name,
		"width", w.width,
		"height", w.height,
		"obstacles", len(w.obstacles))

	return w
}

// Config returns the configuration the world was built from.
func (w *World) Config() config.WorldConfig {
	return w.cfg
}

// Name returns the world name (changes on restore).
func (w *World) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// Size returns the half-extents of the grid.
func (w *World) Size() (width, height int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width, w.height
}

// IsPositionValid reports -width <= x < width and -height <= y < height.
func (w *World) IsPositionValid(p model.Position) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.inBounds(p)
}

func (w *World) inBounds(p model.Position) bool {
	return p.X >= -w.width && p.X < w.width &&
		p.Y >= -w.height && p.Y < w.height
}

func key(name string) string {
	return strings.ToLower(name)
}

// AddRobot registers r. Names are unique case-insensitively.
func (w *World) AddRobot(r *model.Robot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	k := key(r.Name())
	if _, exists := w.robots[k]; exists {
		return ErrRobotExists
	}
	w.robots[k] = r
	return nil
}

// RemoveRobot unregisters r and retires it. Returns false if the registry
// no longer holds this exact robot (a namesake may have replaced it).
func (w *World) RemoveRobot(r *model.Robot) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.removeLocked(r)
}

func (w *World) removeLocked(r *model.Robot) bool {
	k := key(r.Name())
	if w.robots[k] != r {
		return false
	}
	delete(w.robots, k)
	r.Retire()
	return true
}

// RemoveRobotByName unregisters and retires the named robot.
func (w *World) RemoveRobotByName(name string) (*model.Robot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.robots[key(name)]
	if !ok {
		return nil, false
	}
	w.removeLocked(r)
	return r, true
}

// Robot looks up a robot by name, case-insensitively.
func (w *World) Robot(name string) (*model.Robot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.robots[key(name)]
	return r, ok
}

// Robots returns all registered robots ordered by name.
func (w *World) Robots() []*model.Robot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.robotsLocked()
}

func (w *World) robotsLocked() []*model.Robot {
	out := make([]*model.Robot, 0, len(w.robots))
	for _, r := range w.robots {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b *model.Robot) int {
		return strings.Compare(key(a.Name()), key(b.Name()))
	})
	return out
}

// RobotCount returns the registry size.
func (w *World) RobotCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.robots)
}

// Obstacles returns a copy of the obstacle set.
func (w *World) Obstacles() []model.Obstacle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.obstacles)
}

// AddObstacle places o. Fails if any of its cells is out of bounds or
// already taken by a robot or another obstacle.
func (w *World) AddObstacle(o model.Obstacle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return (&Tx{w: w}).PlaceObstacle(o)
}

// Launch creates and registers a robot on an open cell. The origin is
// tried first, then up to LaunchAttempts random cells.
func (w *World) Launch(name, robotMake string) (*model.Robot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.robots[key(name)]; exists {
		return nil, ErrRobotExists
	}

	tx := &Tx{w: w}
	pos, ok := tx.findOpenCell()
	if !ok {
		return nil, ErrNoSpace
	}

	r := model.NewRobot(name, robotMake, pos, w.cfg.MaxShields, w.cfg.MaxShots)
	w.robots[key(name)] = r
	return r, nil
}

// Read runs fn with the world locked for reading.
func (w *World) Read(fn func(tx *Tx)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn(&Tx{w: w})
}

// Write runs fn with the world locked for writing.
func (w *World) Write(fn func(tx *Tx)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&Tx{w: w})
}
