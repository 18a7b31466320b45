// Package movement simulates forward/back moves one grid step at a time.
package movement

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/world"
)

// Outcome tags how a move ended.
type Outcome uint8

const (
	// Moved: every requested step was taken.
	Moved Outcome = iota
	// Obstructed: the robot stopped at the last open cell (possibly its
	// starting cell) before a boundary, obstacle or robot.
	Obstructed
	// Destroyed: the robot entered a pit and left the world.
	Destroyed
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "Moved"
	case Obstructed:
		return "Obstructed"
	case Destroyed:
		return "Destroyed"
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Result describes a completed move.
type Result struct {
	Outcome  Outcome
	Steps    int            // steps actually taken
	Position model.Position // final cell (the pit cell for Destroyed)
}

// Forward moves r up to steps cells along its facing.
func Forward(w *world.World, r *model.Robot, steps int) (Result, error) {
	return move(w, r, steps, false)
}

// Back moves r up to steps cells against its facing, keeping the facing.
func Back(w *world.World, r *model.Robot, steps int) (Result, error) {
	return move(w, r, steps, true)
}

func move(w *world.World, r *model.Robot, steps int, reverse bool) (Result, error) {
	if steps <= 0 {
		return Result{}, fmt.Errorf("step count must be positive, got %d", steps)
	}

	var (
		res Result
		err error
	)
	w.Write(func(tx *world.Tx) {
		st := r.State()
		if st.Status == model.StatusDead {
			err = model.ErrDead
			return
		}

		dir := st.Direction
		if reverse {
			dir = dir.Opposite()
		}

		pos := st.Position
		res = Result{Outcome: Moved, Position: pos}
		for res.Steps < steps {
			next := pos.Step(dir, 1)

			if o, ok := tx.ObstacleAt(next); ok && o.Type.Destroys() {
				r.Kill()
				tx.Remove(r)
				res.Outcome = Destroyed
				res.Position = next
				slog.Info("robot fell into a pit",
					"robot", r.Name(),
					"position", next.String())
				return
			}

			if !tx.IsOpen(next, r) {
				res.Outcome = Obstructed
				break
			}

			pos = next
			res.Steps++
		}

		res.Position = pos
		err = r.MoveTo(pos)
	})

	return res, err
}
