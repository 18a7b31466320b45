package gameserver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/robotworld/internal/game/combat"
	"github.com/udisondev/robotworld/internal/game/movement"
	"github.com/udisondev/robotworld/internal/game/vision"
	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/protocol"
	"github.com/udisondev/robotworld/internal/world"
)

// Client-visible messages.
const (
	MsgDone            = "Done"
	MsgObstructed      = "Obstructed"
	MsgMiss            = "Miss"
	MsgHit             = "Hit"
	MsgReload          = "Reload"
	MsgRepair          = "Repair"
	MsgBye             = "Bye"
	MsgBadRequest      = "Could not parse request"
	MsgBadArguments    = "Could not parse arguments"
	MsgNoCommand       = "No command given"
	MsgNoRobotName     = "No robot name given"
	MsgUnknownRobot    = "Robot does not exist"
	MsgRobotDead       = "Robot is dead"
	MsgUnsupported     = "Unsupported command"
	MsgTooMany         = "Too many of you in this world"
	MsgNoSpace         = "No more space in this world"
	MsgNoShots         = "No shots available"
	MsgGunMissing      = "Gun not configured"
	MsgCannotPlace     = "Cannot place that here"
	MsgServerFull      = "Server is full"
	MsgLineTooLong     = "Request too long"
	msgBusyFormat      = "Robot is currently busy and cannot %s"
	msgDestroyedFormat = "%s fell into a pit and was destroyed"
)

// Handler is the command processor: it parses one request line, resolves
// the acting robot, validates arguments and dispatches to the engines.
type Handler struct {
	world *world.World
}

// NewHandler creates a command processor bound to w.
func NewHandler(w *world.World) *Handler {
	return &Handler{world: w}
}

// Handle processes one request line. keepOpen is false when the client
// asked to end its session.
//
// Validation order: JSON, command present, robot exists and is alive
// (robot-scoped commands), command known, argument shape, busy guard.
func (h *Handler) Handle(client *Client, line []byte) (resp protocol.Response, keepOpen bool) {
	req, err := protocol.DecodeRequest(line)
	if err != nil {
		slog.Debug("malformed request",
			"session", client.SessionID(),
			"error", err)
		return protocol.Error(MsgBadRequest), true
	}

	if strings.TrimSpace(req.Command) == "" {
		return protocol.Error(MsgNoCommand), true
	}

	kind := ParseKind(req.Command)

	var robot *model.Robot
	if !kind.WorldScoped() {
		robot, resp = h.resolveRobot(req.Robot)
		if robot == nil {
			return resp, true
		}
	}

	slog.Debug("command",
		"session", client.SessionID(),
		"robot", req.Robot,
		"command", kind.String())

	switch kind {
	case KindLaunch:
		return h.launch(client, req), true
	case KindRobots:
		return h.robots(), true
	case KindDump:
		return protocol.OK(map[string]any{"world": h.world.Snapshot()}, nil), true
	case KindQuit:
		return protocol.OKMessage(MsgBye, nil), false
	case KindUnknown:
		return protocol.Error(MsgUnsupported), true
	}

	return h.robotCommand(kind, robot, req.Arguments), true
}

func (h *Handler) resolveRobot(name string) (*model.Robot, protocol.Response) {
	if strings.TrimSpace(name) == "" {
		return nil, protocol.Error(MsgNoRobotName)
	}
	r, ok := h.world.Robot(name)
	if !ok {
		return nil, protocol.Error(MsgUnknownRobot)
	}
	if r.IsDead() {
		return nil, protocol.Error(MsgRobotDead)
	}
	return r, protocol.Response{}
}

// robotCommand handles every robot-scoped kind.
func (h *Handler) robotCommand(kind Kind, r *model.Robot, args []any) protocol.Response {
	// Argument shape comes before the busy guard.
	var (
		steps int
		right bool
	)
	switch kind {
	case KindForward, KindBack:
		n, err := protocol.IntArg(args, 0, 1)
		if err != nil || n <= 0 {
			return protocol.Error(MsgBadArguments)
		}
		steps = n
	case KindTurn:
		dir, ok := protocol.StringArg(args, 0)
		if !ok {
			return protocol.Error(MsgBadArguments)
		}
		switch strings.ToLower(dir) {
		case "right":
			right = true
		case "left":
		default:
			return protocol.Error(MsgBadArguments)
		}
	}

	if !kind.ReadOnly() {
		switch r.Status() {
		case model.StatusReload, model.StatusRepair:
			return protocol.Error(fmt.Sprintf(msgBusyFormat, kind.String()))
		}
	}

	switch kind {
	case KindState:
		return protocol.OK(nil, protocol.NewState(r.State()))
	case KindForward:
		return h.move(r, steps, movement.Forward)
	case KindBack:
		return h.move(r, steps, movement.Back)
	case KindTurn:
		if _, err := r.Turn(right); err != nil {
			return robotError(err)
		}
		return protocol.OKMessage(MsgDone, protocol.NewState(r.State()))
	case KindLook:
		return h.look(r)
	case KindFire:
		return h.fire(r)
	case KindReload:
		if err := r.BeginReload(h.world.Config().ReloadTime); err != nil {
			return h.timedError(kind, err)
		}
		return protocol.OKMessage(MsgReload, protocol.NewState(r.State()))
	case KindRepair:
		if err := r.BeginRepair(h.world.Config().RepairTime); err != nil {
			return h.timedError(kind, err)
		}
		return protocol.OKMessage(MsgRepair, protocol.NewState(r.State()))
	case KindMine:
		return h.place(r, model.ObstacleMine, true)
	case KindSetBomb:
		return h.place(r, model.ObstacleBomb, false)
	}

	return protocol.Error(MsgUnsupported)
}

func (h *Handler) launch(client *Client, req protocol.Request) protocol.Response {
	name := strings.TrimSpace(req.Robot)
	if name == "" {
		return protocol.Error(MsgNoRobotName)
	}
	robotMake, ok := protocol.StringArg(req.Arguments, 0)
	if !ok || strings.TrimSpace(robotMake) == "" {
		return protocol.Error(MsgBadArguments)
	}

	r, err := h.world.Launch(name, robotMake)
	switch {
	case errors.Is(err, world.ErrRobotExists):
		return protocol.Error(MsgTooMany)
	case errors.Is(err, world.ErrNoSpace):
		return protocol.Error(MsgNoSpace)
	case err != nil:
		slog.Error("launch failed", "robot", name, "error", err)
		return protocol.Error(err.Error())
	}

	client.TrackRobot(r)

	st := r.State()
	cfg := h.world.Config()
	slog.Info("robot launched",
		"robot", name,
		"make", robotMake,
		"position", st.Position.String(),
		"session", client.SessionID())

	return protocol.OK(map[string]any{
		"position":   [2]int{st.Position.X, st.Position.Y},
		"visibility": cfg.VisibilityRange,
		"reload":     cfg.ReloadTime.Seconds(),
		"repair":     cfg.RepairTime.Seconds(),
		"shields":    r.MaxShields(),
	}, protocol.NewState(st))
}

func (h *Handler) robots() protocol.Response {
	robots := h.world.Robots()
	views := make([]world.RobotView, 0, len(robots))
	for _, r := range robots {
		views = append(views, world.NewRobotView(r))
	}
	return protocol.OK(map[string]any{"robots": views}, nil)
}

func (h *Handler) move(r *model.Robot, steps int, fn func(*world.World, *model.Robot, int) (movement.Result, error)) protocol.Response {
	res, err := fn(h.world, r, steps)
	if err != nil {
		return robotError(err)
	}

	switch res.Outcome {
	case movement.Destroyed:
		return protocol.OKMessage(fmt.Sprintf(msgDestroyedFormat, r.Name()), nil)
	case movement.Obstructed:
		return protocol.OKMessage(MsgObstructed, protocol.NewState(r.State()))
	}
	return protocol.OKMessage(MsgDone, protocol.NewState(r.State()))
}

func (h *Handler) look(r *model.Robot) protocol.Response {
	objects, visibility := vision.Look(h.world, r)

	out := make([]map[string]any, 0, len(objects))
	for _, o := range objects {
		out = append(out, map[string]any{
			"direction": o.Direction.String(),
			"type":      o.Type,
			"distance":  o.Distance,
		})
	}
	return protocol.OK(map[string]any{
		"objects":         out,
		"visibilityRange": visibility,
	}, protocol.NewState(r.State()))
}

func (h *Handler) fire(r *model.Robot) protocol.Response {
	res, err := combat.Fire(h.world, r)
	switch {
	case errors.Is(err, combat.ErrNoShots):
		return protocol.Error(MsgNoShots)
	case errors.Is(err, combat.ErrGunNotConfigured):
		return protocol.Error(MsgGunMissing)
	case err != nil:
		return robotError(err)
	}

	if !res.Hit {
		return protocol.OK(map[string]any{
			"message": MsgMiss,
			"shots":   res.ShotsLeft,
		}, protocol.NewState(r.State()))
	}

	return protocol.OK(map[string]any{
		"message":  MsgHit,
		"robot":    res.Target.Name(),
		"distance": res.Distance,
		"state":    protocol.NewState(res.TargetState),
		"shots":    res.ShotsLeft,
	}, protocol.NewState(r.State()))
}

// place drops an obstacle of type t on the cell behind the robot (mine)
// or ahead of it (bomb).
func (h *Handler) place(r *model.Robot, t model.ObstacleType, behind bool) protocol.Response {
	var err error
	h.world.Write(func(tx *world.Tx) {
		st := r.State()
		dir := st.Direction
		if behind {
			dir = dir.Opposite()
		}
		cell := st.Position.Step(dir, 1)
		err = tx.PlaceObstacle(model.NewObstacle(t, cell.X, cell.Y, 1, 1))
	})
	if err != nil {
		slog.Debug("placement rejected",
			"robot", r.Name(),
			"type", t.String(),
			"error", err)
		return protocol.Error(MsgCannotPlace)
	}
	return protocol.OKMessage(MsgDone, protocol.NewState(r.State()))
}

func (h *Handler) timedError(kind Kind, err error) protocol.Response {
	if errors.Is(err, model.ErrBusy) {
		return protocol.Error(fmt.Sprintf(msgBusyFormat, kind.String()))
	}
	return robotError(err)
}

func robotError(err error) protocol.Response {
	if errors.Is(err, model.ErrDead) {
		return protocol.Error(MsgRobotDead)
	}
	return protocol.Error(err.Error())
}
