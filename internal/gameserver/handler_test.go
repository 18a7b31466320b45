package gameserver

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/robotworld/internal/config"
	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/protocol"
	"github.com/udisondev/robotworld/internal/testutil"
	"github.com/udisondev/robotworld/internal/world"
)

type handlerEnv struct {
	t      *testing.T
	world  *world.World
	h      *Handler
	client *Client
}

func newHandlerEnv(t *testing.T, mutate func(*config.WorldConfig)) *handlerEnv {
	t.Helper()
	cfg := config.DefaultWorld()
	cfg.Width = 10
	cfg.Height = 10
	cfg.Seed = 1
	if mutate != nil {
		mutate(&cfg)
	}
	w := world.New(cfg)
	_, server := testutil.PipeConn(t)
	return &handlerEnv{
		t:      t,
		world:  w,
		h:      NewHandler(w),
		client: NewClient(server),
	}
}

// do round-trips the request through JSON so arguments arrive exactly as
// they would from the wire.
func (e *handlerEnv) do(robot, command string, args ...any) protocol.Response {
	e.t.Helper()
	line, err := json.Marshal(protocol.Request{Robot: robot, Command: command, Arguments: args})
	require.NoError(e.t, err)
	resp, keepOpen := e.h.Handle(e.client, line)
	require.True(e.t, keepOpen, "only quit ends the session")
	return resp
}

func (e *handlerEnv) robot(name string) *model.Robot {
	e.t.Helper()
	r, ok := e.world.Robot(name)
	require.True(e.t, ok, "robot %s registered", name)
	return r
}

func assertError(t *testing.T, resp protocol.Response, msg string) {
	t.Helper()
	assert.Equal(t, protocol.ResultError, resp.Result)
	assert.Equal(t, msg, resp.Message())
	assert.Nil(t, resp.State)
}

func TestHandle_Launch(t *testing.T) {
	e := newHandlerEnv(t, nil)

	resp := e.do("HAL", "launch", "shooter")
	require.True(t, resp.IsOK(), resp.Message())
	require.NotNil(t, resp.State)
	assert.Equal(t, [2]int{0, 0}, resp.State.Position)
	assert.Equal(t, "NORTH", resp.State.Direction)
	assert.Equal(t, 5, resp.State.Shots)
	assert.Equal(t, "NORMAL", resp.State.Status)
	assert.Equal(t, 10, resp.Data["visibility"])
	assert.Len(t, e.client.Robots(), 1)

	assertError(t, e.do("hal", "launch", "other"), MsgTooMany)
	assertError(t, e.do("R2", "launch"), MsgBadArguments)
	assertError(t, e.do("", "launch", "x"), MsgNoRobotName)
}

func TestHandle_Launch_NoSpace(t *testing.T) {
	e := newHandlerEnv(t, func(c *config.WorldConfig) {
		c.Width = 1
		c.Height = 1
		c.LaunchAttempts = 200
	})

	for _, name := range []string{"a", "b", "c", "d"} {
		require.True(t, e.do(name, "launch", "m").IsOK())
	}
	assertError(t, e.do("e", "launch", "m"), MsgNoSpace)
}

func TestHandle_ValidationOrder(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())

	resp, keepOpen := e.h.Handle(e.client, []byte(`{"robot":`))
	assert.True(t, keepOpen)
	assertError(t, resp, MsgBadRequest)

	tests := []struct {
		name    string
		robot   string
		command string
		args    []any
		want    string
	}{
		{"missing command", "HAL", "", nil, MsgNoCommand},
		{"missing robot", "", "state", nil, MsgNoRobotName},
		{"unknown robot before unknown command", "ghost", "dance", nil, MsgUnknownRobot},
		{"unknown command", "HAL", "dance", nil, MsgUnsupported},
		{"turn without direction", "HAL", "turn", nil, MsgBadArguments},
		{"turn sideways", "HAL", "turn", []any{"up"}, MsgBadArguments},
		{"forward zero", "HAL", "forward", []any{0}, MsgBadArguments},
		{"forward word", "HAL", "forward", []any{"far"}, MsgBadArguments},
		{"back fraction", "HAL", "back", []any{1.5}, MsgBadArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertError(t, e.do(tt.robot, tt.command, tt.args...), tt.want)
		})
	}
}

func TestHandle_State_CaseInsensitive(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())

	resp := e.do("hal", "STATE")
	require.True(t, resp.IsOK())
	require.NotNil(t, resp.State)
	assert.Equal(t, 5, resp.State.Shields)
}

func TestHandle_MoveAndTurn(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())

	resp := e.do("HAL", "forward")
	require.True(t, resp.IsOK())
	assert.Equal(t, MsgDone, resp.Message())
	assert.Equal(t, [2]int{0, -1}, resp.State.Position, "default step count is one")

	resp = e.do("HAL", "turn", "right")
	require.True(t, resp.IsOK())
	assert.Equal(t, "EAST", resp.State.Direction)

	resp = e.do("HAL", "forward", "3")
	require.True(t, resp.IsOK())
	assert.Equal(t, [2]int{3, -1}, resp.State.Position)

	resp = e.do("HAL", "back", 2)
	require.True(t, resp.IsOK())
	assert.Equal(t, [2]int{1, -1}, resp.State.Position)
	assert.Equal(t, "EAST", resp.State.Direction)

	resp = e.do("HAL", "turn", "LEFT")
	require.True(t, resp.IsOK())
	assert.Equal(t, "NORTH", resp.State.Direction)
}

func TestHandle_Forward_AtEdgeObstructed(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())
	require.NoError(t, e.robot("HAL").MoveTo(model.NewPosition(0, -10)))

	resp := e.do("HAL", "forward", 1)
	require.True(t, resp.IsOK())
	assert.Equal(t, MsgObstructed, resp.Message())
	assert.Equal(t, [2]int{0, -10}, resp.State.Position)
}

func TestHandle_Forward_PartialMoveObstructed(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())
	require.NoError(t, e.world.AddObstacle(model.NewObstacle(model.ObstacleLake, 0, -3, 1, 1)))

	resp := e.do("HAL", "forward", 5)
	require.True(t, resp.IsOK())
	assert.Equal(t, MsgObstructed, resp.Message())
	assert.Equal(t, [2]int{0, -2}, resp.State.Position)
}

func TestHandle_Forward_Pit(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())
	require.NoError(t, e.world.AddObstacle(model.NewObstacle(model.ObstaclePit, 0, -1, 1, 1)))

	resp := e.do("HAL", "forward", 1)
	require.True(t, resp.IsOK())
	assert.Contains(t, resp.Message(), "destroyed")
	assert.Nil(t, resp.State)

	listing := e.do("", "robots")
	require.True(t, listing.IsOK())
	assert.Empty(t, listing.Data["robots"])

	assertError(t, e.do("HAL", "state"), MsgUnknownRobot)
}

func TestHandle_Fire_LastShotMisses(t *testing.T) {
	e := newHandlerEnv(t, func(c *config.WorldConfig) { c.MaxShots = 1 })
	require.True(t, e.do("HAL", "launch", "m").IsOK())

	resp := e.do("HAL", "fire")
	require.True(t, resp.IsOK())
	assert.Equal(t, MsgMiss, resp.Message())
	assert.Equal(t, 0, resp.Data["shots"])
	assert.Equal(t, 0, resp.State.Shots)

	assertError(t, e.do("HAL", "fire"), MsgNoShots)
}

func TestHandle_Fire_Hit(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())
	require.True(t, e.do("R2", "launch", "m").IsOK())
	require.NoError(t, e.robot("R2").MoveTo(model.NewPosition(0, -1)))

	resp := e.do("HAL", "fire")
	require.True(t, resp.IsOK())
	assert.Equal(t, MsgHit, resp.Message())
	assert.Equal(t, "R2", resp.Data["robot"])
	assert.Equal(t, 1, resp.Data["distance"])
	target, ok := resp.Data["state"].(*protocol.State)
	require.True(t, ok)
	assert.Equal(t, 4, target.Shields)
	assert.Equal(t, 4, resp.State.Shots)
}

func TestHandle_Fire_GunNotConfigured(t *testing.T) {
	e := newHandlerEnv(t, func(c *config.WorldConfig) { c.MaxShots = 0 })
	require.True(t, e.do("HAL", "launch", "m").IsOK())

	assertError(t, e.do("HAL", "fire"), MsgGunMissing)
}

func TestHandle_ReloadTwice(t *testing.T) {
	e := newHandlerEnv(t, func(c *config.WorldConfig) { c.ReloadTime = 50 * time.Millisecond })
	require.True(t, e.do("HAL", "launch", "m").IsOK())
	require.True(t, e.do("HAL", "fire").IsOK())

	resp := e.do("HAL", "reload")
	require.True(t, resp.IsOK())
	assert.Equal(t, "RELOAD", resp.State.Status)

	assertError(t, e.do("HAL", "reload"), "Robot is currently busy and cannot reload")
	assertError(t, e.do("HAL", "forward"), "Robot is currently busy and cannot forward")

	// read-only commands pass the busy guard
	assert.True(t, e.do("HAL", "state").IsOK())
	assert.True(t, e.do("HAL", "look").IsOK())

	assert.Eventually(t, func() bool {
		st := e.robot("HAL").State()
		return st.Shots == 5 && st.Status == model.StatusNormal
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandle_Repair(t *testing.T) {
	e := newHandlerEnv(t, func(c *config.WorldConfig) { c.RepairTime = 20 * time.Millisecond })
	require.True(t, e.do("HAL", "launch", "m").IsOK())
	e.robot("HAL").TakeHit()

	resp := e.do("HAL", "repair")
	require.True(t, resp.IsOK())
	assert.Equal(t, "REPAIR", resp.State.Status)
	assertError(t, e.do("HAL", "fire"), "Robot is currently busy and cannot fire")

	assert.Eventually(t, func() bool {
		st := e.robot("HAL").State()
		return st.Shields == 5 && st.Status == model.StatusNormal
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandle_DeadRobotRejected(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())
	e.robot("HAL").Kill()

	for _, cmd := range []string{"state", "look", "forward", "fire", "reload", "dance"} {
		assertError(t, e.do("HAL", cmd), MsgRobotDead)
	}
}

func TestHandle_Look(t *testing.T) {
	e := newHandlerEnv(t, func(c *config.WorldConfig) { c.VisibilityRange = 5 })
	require.True(t, e.do("HAL", "launch", "m").IsOK())
	require.NoError(t, e.world.AddObstacle(model.NewObstacle(model.ObstacleMountain, 0, -3, 1, 1)))

	resp := e.do("HAL", "look")
	require.True(t, resp.IsOK())
	assert.Equal(t, 5, resp.Data["visibilityRange"])

	objects, ok := resp.Data["objects"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, objects, 1)
	assert.Equal(t, "NORTH", objects[0]["direction"])
	assert.Equal(t, "MOUNTAIN", objects[0]["type"])
	assert.Equal(t, 3, objects[0]["distance"])
}

func TestHandle_MineAndBomb(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())

	require.True(t, e.do("HAL", "mine").IsOK())
	require.True(t, e.do("HAL", "setbomb").IsOK())

	obstacles := e.world.Obstacles()
	require.Len(t, obstacles, 2)
	assert.Equal(t, model.ObstacleMine, obstacles[0].Type)
	assert.True(t, obstacles[0].Contains(model.NewPosition(0, 1)), "mine goes behind")
	assert.Equal(t, model.ObstacleBomb, obstacles[1].Type)
	assert.True(t, obstacles[1].Contains(model.NewPosition(0, -1)), "bomb goes ahead")

	assertError(t, e.do("HAL", "mine"), MsgCannotPlace)

	resp := e.do("HAL", "forward")
	require.True(t, resp.IsOK())
	assert.Equal(t, MsgObstructed, resp.Message(), "placed bomb blocks movement")
}

func TestHandle_WorldCommands(t *testing.T) {
	e := newHandlerEnv(t, nil)
	require.True(t, e.do("HAL", "launch", "m").IsOK())

	resp := e.do("", "dump")
	require.True(t, resp.IsOK())
	snap, ok := resp.Data["world"].(world.Snapshot)
	require.True(t, ok)
	assert.Equal(t, 10, snap.Width)
	require.Len(t, snap.Robots, 1)
	assert.Equal(t, "HAL", snap.Robots[0].Name)

	resp = e.do("", "robots")
	require.True(t, resp.IsOK())
	views, ok := resp.Data["robots"].([]world.RobotView)
	require.True(t, ok)
	require.Len(t, views, 1)

	line, err := json.Marshal(protocol.Request{Command: "quit"})
	require.NoError(t, err)
	resp, keepOpen := e.h.Handle(e.client, line)
	assert.True(t, resp.IsOK())
	assert.False(t, keepOpen)
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindSetBomb, ParseKind(" SetBomb "))
	assert.Equal(t, KindUnknown, ParseKind("unknown"))
	assert.Equal(t, KindUnknown, ParseKind("jump"))
	assert.Equal(t, "forward", KindForward.String())
	assert.True(t, KindLaunch.WorldScoped())
	assert.False(t, KindFire.WorldScoped())
	assert.True(t, KindLook.ReadOnly())
	assert.False(t, KindReload.ReadOnly())
}
