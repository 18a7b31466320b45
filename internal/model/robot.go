package model

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrBusy is returned when a robot is reloading or repairing.
	ErrBusy = errors.New("robot is busy")
	// ErrDead is returned for any mutation of a dead robot.
	ErrDead = errors.New("robot is dead")
)

// Status is the robot state machine position.
type Status uint8

const (
	StatusNormal Status = iota
	StatusReload
	StatusRepair
	StatusDead
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "NORMAL"
	case StatusReload:
		return "RELOAD"
	case StatusRepair:
		return "REPAIR"
	case StatusDead:
		return "DEAD"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// RobotState is a consistent copy of a robot's mutable fields.
type RobotState struct {
	Position  Position
	Direction Direction
	Shields   int
	Shots     int
	Status    Status
}

// Robot is one player-controlled entity.
// Name, make and the resource maxima are immutable; everything else is
// guarded by mu, including the reload/repair timer.
type Robot struct {
	name       string
	make       string
	maxShields int
	maxShots   int

	mu      sync.Mutex
	pos     Position
	dir     Direction
	shields int
	shots   int
	status  Status

	// timer is the pending Reload/Repair reversion, nil when none.
	timer *time.Timer
	// retired is set once the robot leaves the registry; pending
	// reversions become no-ops.
	retired bool
}

// NewRobot creates a robot facing North with full shields and shots.
func NewRobot(name, robotMake string, pos Position, maxShields, maxShots int) *Robot {
	return &Robot{
		name:       name,
		make:       robotMake,
		maxShields: maxShields,
		maxShots:   maxShots,
		pos:        pos,
		dir:        North,
		shields:    maxShields,
		shots:      maxShots,
		status:     StatusNormal,
	}
}

// Name returns the robot's unique name (immutable).
func (r *Robot) Name() string { return r.name }

// Make returns the robot's make (display only).
func (r *Robot) Make() string { return r.make }

// MaxShields returns the shield strength restored by a repair.
func (r *Robot) MaxShields() int { return r.maxShields }

// MaxShots returns the ammo restored by a reload.
func (r *Robot) MaxShots() int { return r.maxShots }

// State returns a snapshot of all mutable fields.
func (r *Robot) State() RobotState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Robot) stateLocked() RobotState {
	return RobotState{
		Position:  r.pos,
		Direction: r.dir,
		Shields:   r.shields,
		Shots:     r.shots,
		Status:    r.status,
	}
}

// Position returns the robot's current cell.
func (r *Robot) Position() Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

// Direction returns the robot's facing.
func (r *Robot) Direction() Direction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dir
}

// Status returns the robot's state machine position.
func (r *Robot) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// IsDead reports whether the robot reached the terminal state.
func (r *Robot) IsDead() bool {
	return r.Status() == StatusDead
}

// IsRetired reports whether the robot has left the world registry.
func (r *Robot) IsRetired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retired
}

// MoveTo commits a new position.
func (r *Robot) MoveTo(p Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusDead {
		return ErrDead
	}
	r.pos = p
	return nil
}

// Turn rotates the robot a quarter turn and returns the new facing.
func (r *Robot) Turn(right bool) (Direction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusDead {
		return r.dir, ErrDead
	}
	if right {
		r.dir = r.dir.Right()
	} else {
		r.dir = r.dir.Left()
	}
	return r.dir, nil
}

// ConsumeShot spends one shot and returns the count held before firing.
// ok is false (and nothing changes) when the magazine is empty.
func (r *Robot) ConsumeShot() (before int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shots <= 0 {
		return 0, false
	}
	before = r.shots
	r.shots--
	return before, true
}

// TakeHit removes one shield point. A hit that would take shields below
// zero leaves them at zero and kills the robot.
func (r *Robot) TakeHit() RobotState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusDead {
		return r.stateLocked()
	}
	r.shields--
	if r.shields < 0 {
		r.shields = 0
		r.dieLocked()
	}
	return r.stateLocked()
}

// Kill moves the robot to the terminal Dead state.
func (r *Robot) Kill() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dieLocked()
}

func (r *Robot) dieLocked() {
	r.status = StatusDead
	r.stopTimerLocked()
}

// Retire marks the robot as removed from the world and cancels any
// pending reversion.
func (r *Robot) Retire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retired = true
	r.stopTimerLocked()
}

func (r *Robot) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// BeginReload enters Reload; after delay shots return to the maximum.
func (r *Robot) BeginReload(delay time.Duration) error {
	return r.beginTimed(StatusReload, delay)
}

// BeginRepair enters Repair; after delay shields return to the maximum.
func (r *Robot) BeginRepair(delay time.Duration) error {
	return r.beginTimed(StatusRepair, delay)
}

func (r *Robot) beginTimed(status Status, delay time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.status {
	case StatusDead:
		return ErrDead
	case StatusNormal:
	default:
		return ErrBusy
	}

	r.status = status
	r.timer = time.AfterFunc(delay, func() {
		r.finishTimed(status)
	})
	return nil
}

// finishTimed restores the resource of a completed Reload/Repair.
// The robot may have died, been purged or entered a newer state since the
// timer was armed; those cases leave it untouched.
func (r *Robot) finishTimed(status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.retired || r.status != status {
		return
	}

	switch status {
	case StatusReload:
		r.shots = r.maxShots
	case StatusRepair:
		r.shields = r.maxShields
	}
	r.status = StatusNormal
	r.timer = nil

	slog.Debug("robot back to normal",
		"robot", r.name,
		"after", status.String())
}
