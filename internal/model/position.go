package model

import "fmt"

// Position is a cell of the world grid.
// Value type, passed by value (immutable).
// Y grows southwards: moving North decreases Y.
type Position struct {
	X int
	Y int
}

// NewPosition creates a Position.
func NewPosition(x, y int) Position {
	return Position{X: x, Y: y}
}

// Step returns the position n cells away in direction d.
// Negative n walks the opposite way.
func (p Position) Step(d Direction, n int) Position {
	dx, dy := d.Vector()
	p.X += dx * n
	p.Y += dy * n
	return p
}

// Manhattan returns |dx| + |dy| to other.
func (p Position) Manhattan(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is a robot's facing.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

// Directions lists the cardinal directions in clockwise order starting at North.
var Directions = [4]Direction{North, East, South, West}

// Vector returns the unit step of the direction.
func (d Direction) Vector() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	}
	return 0, 0
}

// Right returns the direction after a clockwise quarter turn.
func (d Direction) Right() Direction {
	return (d + 1) % 4
}

// Left returns the direction after a counter-clockwise quarter turn.
func (d Direction) Left() Direction {
	return (d + 3) % 4
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

func (d Direction) String() string {
	switch d {
	case North:
		return "NORTH"
	case East:
		return "EAST"
	case South:
		return "SOUTH"
	case West:
		return "WEST"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}
