// Package combat resolves shots fired along a robot's facing.
package combat

import (
	"errors"
	"log/slog"

	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/world"
)

var (
	// ErrNoShots is returned when the magazine is empty.
	ErrNoShots = errors.New("no shots available")
	// ErrGunNotConfigured is returned for robots launched without a gun.
	ErrGunNotConfigured = errors.New("gun not configured")
)

// Range returns how far a shot travels when fired with shots rounds loaded.
// A full magazine fires short: 5+ rounds reach 1 cell, the last round 5.
// Zero rounds cannot fire and yield 0.
func Range(shots int) int {
	switch {
	case shots <= 0:
		return 0
	case shots >= 5:
		return 1
	default:
		return 6 - shots
	}
}

// Result is the outcome of one shot.
type Result struct {
	Hit         bool
	Target      *model.Robot     // nil on a miss
	TargetState model.RobotState // target after the hit
	Distance    int              // Manhattan distance to the target
	Range       int
	ShotsLeft   int
}

// Fire spends one shot of shooter and hits the first live robot within
// range along its facing. An obstacle or the world edge stops the shot.
func Fire(w *world.World, shooter *model.Robot) (Result, error) {
	if shooter.MaxShots() <= 0 {
		return Result{}, ErrGunNotConfigured
	}

	var (
		res Result
		err error
	)
	w.Read(func(tx *world.Tx) {
		if shooter.IsDead() {
			err = model.ErrDead
			return
		}

		loaded, ok := shooter.ConsumeShot()
		if !ok {
			err = ErrNoShots
			return
		}

		st := shooter.State()
		res.Range = Range(loaded)
		res.ShotsLeft = st.Shots

		for dist := 1; dist <= res.Range; dist++ {
			cell := st.Position.Step(st.Direction, dist)
			if !tx.InBounds(cell) {
				return
			}
			if _, blocked := tx.ObstacleAt(cell); blocked {
				return
			}
			if target := tx.RobotAt(cell, shooter); target != nil {
				res.Hit = true
				res.Target = target
				res.Distance = st.Position.Manhattan(cell)
				res.TargetState = target.TakeHit()
				if res.TargetState.Status == model.StatusDead {
					slog.Info("robot destroyed by fire",
						"shooter", shooter.Name(),
						"target", target.Name())
				}
				return
			}
		}
	})

	return res, err
}
