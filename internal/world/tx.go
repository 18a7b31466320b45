package world

import (
	"github.com/udisondev/robotworld/internal/model"
)

// Tx is a view of a locked World, valid only inside Read/Write callbacks.
// Mutating methods must only be used from Write.
type Tx struct {
	w *World
}

// InBounds reports whether p lies inside the grid.
func (tx *Tx) InBounds(p model.Position) bool {
	return tx.w.inBounds(p)
}

// VisibilityRange returns the look distance configured for the world.
func (tx *Tx) VisibilityRange() int {
	return tx.w.cfg.VisibilityRange
}

// ObstacleAt returns the obstacle covering p, if any.
func (tx *Tx) ObstacleAt(p model.Position) (model.Obstacle, bool) {
	for _, o := range tx.w.obstacles {
		if o.Contains(p) {
			return o, true
		}
	}
	return model.Obstacle{}, false
}

// RobotAt returns the live robot standing on p, ignoring exclude.
// Dead robots linger in the registry but occupy nothing.
func (tx *Tx) RobotAt(p model.Position, exclude *model.Robot) *model.Robot {
	for _, r := range tx.w.robots {
		if r == exclude {
			continue
		}
		st := r.State()
		if st.Status == model.StatusDead {
			continue
		}
		if st.Position == p {
			return r
		}
	}
	return nil
}

// IsOpen reports whether p is in bounds and free of obstacles and of live
// robots other than exclude.
func (tx *Tx) IsOpen(p model.Position, exclude *model.Robot) bool {
	if !tx.InBounds(p) {
		return false
	}
	if _, blocked := tx.ObstacleAt(p); blocked {
		return false
	}
	return tx.RobotAt(p, exclude) == nil
}

// Remove unregisters r and retires it.
func (tx *Tx) Remove(r *model.Robot) bool {
	return tx.w.removeLocked(r)
}

// PlaceObstacle adds o if every cell it covers is in bounds and free.
func (tx *Tx) PlaceObstacle(o model.Obstacle) error {
	corners := []model.Position{
		{X: o.X, Y: o.Y},
		{X: o.X + o.Width - 1, Y: o.Y + o.Height - 1},
	}
	for _, c := range corners {
		if !tx.InBounds(c) {
			return ErrOutOfBounds
		}
	}
	for _, existing := range tx.w.obstacles {
		if existing.Overlaps(o) {
			return ErrCellOccupied
		}
	}
	for _, r := range tx.w.robots {
		st := r.State()
		if st.Status != model.StatusDead && o.Contains(st.Position) {
			return ErrCellOccupied
		}
	}
	tx.w.obstacles = append(tx.w.obstacles, o)
	return nil
}

// findOpenCell tries the origin, then random cells.
func (tx *Tx) findOpenCell() (model.Position, bool) {
	origin := model.NewPosition(0, 0)
	if tx.IsOpen(origin, nil) {
		return origin, true
	}

	attempts := tx.w.cfg.LaunchAttempts
	if attempts <= 0 {
		attempts = defaultLaunchAttempts
	}
	for range attempts {
		p := model.NewPosition(
			tx.w.rng.IntN(2*tx.w.width)-tx.w.width,
			tx.w.rng.IntN(2*tx.w.height)-tx.w.height,
		)
		if tx.IsOpen(p, nil) {
			return p, true
		}
	}
	return model.Position{}, false
}
