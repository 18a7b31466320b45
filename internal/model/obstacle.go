package model

import (
	"fmt"
	"strings"
)

// ObstacleType tags the kind of an obstacle.
type ObstacleType uint8

const (
	ObstacleMountain ObstacleType = iota
	ObstacleLake
	ObstaclePit
	ObstacleMine
	ObstacleBomb
)

var obstacleTypeNames = [...]string{
	ObstacleMountain: "MOUNTAIN",
	ObstacleLake:     "LAKE",
	ObstaclePit:      "PIT",
	ObstacleMine:     "MINE",
	ObstacleBomb:     "BOMB",
}

func (t ObstacleType) String() string {
	if int(t) < len(obstacleTypeNames) {
		return obstacleTypeNames[t]
	}
	return fmt.Sprintf("ObstacleType(%d)", uint8(t))
}

// ParseObstacleType parses a type name case-insensitively.
func ParseObstacleType(s string) (ObstacleType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range obstacleTypeNames {
		if name == upper {
			return ObstacleType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown obstacle type %q", s)
}

// BlocksVisibility reports whether the type hides what lies behind it.
func (t ObstacleType) BlocksVisibility() bool {
	return t == ObstacleMountain
}

// Destroys reports whether entering the obstacle destroys a robot
// instead of stopping it.
func (t ObstacleType) Destroys() bool {
	return t == ObstaclePit
}

// Obstacle is a rectangle of cells anchored at its north-west corner (X, Y).
type Obstacle struct {
	Type   ObstacleType
	X      int
	Y      int
	Width  int
	Height int
}

// NewObstacle creates an obstacle. Non-positive sizes are raised to 1.
func NewObstacle(t ObstacleType, x, y, width, height int) Obstacle {
	return Obstacle{Type: t, X: x, Y: y, Width: max(width, 1), Height: max(height, 1)}
}

// Contains reports whether p lies inside the rectangle.
func (o Obstacle) Contains(p Position) bool {
	return p.X >= o.X && p.X < o.X+o.Width &&
		p.Y >= o.Y && p.Y < o.Y+o.Height
}

// Overlaps reports whether two rectangles share at least one cell.
func (o Obstacle) Overlaps(other Obstacle) bool {
	return o.X < other.X+other.Width && other.X < o.X+o.Width &&
		o.Y < other.Y+other.Height && other.Y < o.Y+o.Height
}

// BlocksVisibility reports whether the obstacle hides what lies behind it.
func (o Obstacle) BlocksVisibility() bool {
	return o.Type.BlocksVisibility()
}
