// Package vision casts a ray in each cardinal direction from a robot and
// reports the nearest thing it meets.
package vision

import (
	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/world"
)

// Object types reported besides the obstacle type names.
const (
	TypeEdge  = "EDGE"
	TypeRobot = "ROBOT"
)

// Object is the nearest entity seen in one direction.
type Object struct {
	Direction model.Direction
	Type      string
	Distance  int
}

// Look scans North, East, South and West from r's position, at most
// visibilityRange cells each. Every direction reports at most one object;
// a direction with nothing in range reports none.
//
// A robot flush against the boundary sees the EDGE at distance 1 on the
// first step of the scan, so there is no separate boundary check.
func Look(w *world.World, r *model.Robot) (objects []Object, visibilityRange int) {
	w.Read(func(tx *world.Tx) {
		visibilityRange = tx.VisibilityRange()
		origin := r.Position()

		for _, dir := range model.Directions {
			if obj, ok := scan(tx, r, origin, dir, visibilityRange); ok {
				objects = append(objects, obj)
			}
		}
	})
	return objects, visibilityRange
}

func scan(tx *world.Tx, self *model.Robot, origin model.Position, dir model.Direction, limit int) (Object, bool) {
	for dist := 1; dist <= limit; dist++ {
		cell := origin.Step(dir, dist)

		if !tx.InBounds(cell) {
			return Object{Direction: dir, Type: TypeEdge, Distance: dist}, true
		}
		if o, ok := tx.ObstacleAt(cell); ok {
			return Object{Direction: dir, Type: o.Type.String(), Distance: dist}, true
		}
		if tx.RobotAt(cell, self) != nil {
			return Object{Direction: dir, Type: TypeRobot, Distance: dist}, true
		}
	}
	return Object{}, false
}
