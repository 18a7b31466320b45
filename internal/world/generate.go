package world

import (
	"log/slog"

	"github.com/udisondev/robotworld/internal/model"
)

// placementAttempts bounds the random tries per requested obstacle.
const placementAttempts = 100

// generateObstacles places the configured number of mountains, lakes and
// pits at random non-overlapping rectangles. The origin cell is kept free
// so the first launch lands on (0,0). Obstacles that cannot be placed
// within placementAttempts are skipped.
func (w *World) generateObstacles() {
	requests := []struct {
		t     model.ObstacleType
		count int
	}{
		{model.ObstacleMountain, w.cfg.Mountains},
		{model.ObstacleLake, w.cfg.Lakes},
		{model.ObstaclePit, w.cfg.Pits},
	}

	for _, req := range requests {
		placed := 0
		for range req.count {
			if w.placeRandom(req.t) {
				placed++
			}
		}
		if placed < req.count {
			slog.Warn("world too crowded, placed fewer obstacles",
				"type", req.t.String(),
				"requested", req.count,
				"placed", placed)
		}
	}
}

func (w *World) placeRandom(t model.ObstacleType) bool {
	maxSize := max(w.cfg.MaxObstacleSize, 1)
	origin := model.NewPosition(0, 0)

	for range placementAttempts {
		width := 1 + w.rng.IntN(min(maxSize, 2*w.width))
		height := 1 + w.rng.IntN(min(maxSize, 2*w.height))
		x := w.rng.IntN(2*w.width-width+1) - w.width
		y := w.rng.IntN(2*w.height-height+1) - w.height

		o := model.NewObstacle(t, x, y, width, height)
		if o.Contains(origin) {
			continue
		}
		if w.overlapsAny(o) {
			continue
		}
		w.obstacles = append(w.obstacles, o)
		return true
	}
	return false
}

func (w *World) overlapsAny(o model.Obstacle) bool {
	for _, existing := range w.obstacles {
		if existing.Overlaps(o) {
			return true
		}
	}
	return false
}
