package world

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/robotworld/internal/config"
	"github.com/udisondev/robotworld/internal/model"
)

func testConfig(width, height int) config.WorldConfig {
	cfg := config.DefaultWorld()
	cfg.Width = width
	cfg.Height = height
	cfg.Seed = 42
	return cfg
}

func TestWorld_IsPositionValid(t *testing.T) {
	w := New(testConfig(2, 3))

	tests := []struct {
		p    model.Position
		want bool
	}{
		{model.NewPosition(0, 0), true},
		{model.NewPosition(-2, -3), true},
		{model.NewPosition(1, 2), true},
		{model.NewPosition(2, 0), false},
		{model.NewPosition(0, 3), false},
		{model.NewPosition(-3, 0), false},
		{model.NewPosition(0, -4), false},
	}
	for _, tt := range tests {
		t.Run(tt.p.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, w.IsPositionValid(tt.p))
		})
	}
}

func TestWorld_Registry(t *testing.T) {
	w := New(testConfig(10, 10))

	hal := model.NewRobot("HAL", "shooter", model.NewPosition(0, 0), 5, 5)
	require.NoError(t, w.AddRobot(hal))
	assert.ErrorIs(t, w.AddRobot(model.NewRobot("hal", "x", model.NewPosition(1, 1), 1, 1)), ErrRobotExists)

	got, ok := w.Robot("Hal")
	require.True(t, ok, "lookup is case-insensitive")
	assert.Same(t, hal, got)

	require.NoError(t, w.AddRobot(model.NewRobot("alpha", "x", model.NewPosition(1, 1), 1, 1)))
	names := make([]string, 0, 2)
	for _, r := range w.Robots() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"alpha", "HAL"}, names)

	assert.True(t, w.RemoveRobot(hal))
	assert.True(t, hal.IsRetired())
	assert.False(t, w.RemoveRobot(hal), "second removal is a no-op")
	_, ok = w.Robot("HAL")
	assert.False(t, ok)
	assert.Equal(t, 1, w.RobotCount())
}

func TestWorld_RemoveRobot_IgnoresNamesake(t *testing.T) {
	w := New(testConfig(10, 10))

	first, err := w.Launch("bob", "m")
	require.NoError(t, err)
	_, ok := w.RemoveRobotByName("bob")
	require.True(t, ok)

	second, err := w.Launch("bob", "m")
	require.NoError(t, err)

	assert.False(t, w.RemoveRobot(first), "stale pointer must not evict the new robot")
	got, ok := w.Robot("bob")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestWorld_Launch(t *testing.T) {
	w := New(testConfig(10, 10))

	r, err := w.Launch("HAL", "shooter")
	require.NoError(t, err)
	st := r.State()
	assert.Equal(t, model.NewPosition(0, 0), st.Position)
	assert.Equal(t, model.North, st.Direction)
	assert.Equal(t, w.Config().MaxShots, st.Shots)
	assert.Equal(t, w.Config().MaxShields, st.Shields)

	_, err = w.Launch("hal", "other")
	assert.ErrorIs(t, err, ErrRobotExists)

	r2, err := w.Launch("R2", "m")
	require.NoError(t, err)
	assert.NotEqual(t, st.Position, r2.Position(), "second robot lands elsewhere")
	assert.True(t, w.IsPositionValid(r2.Position()))
}

func TestWorld_Launch_NoSpace(t *testing.T) {
	// 2x2 cells: -1..0 on both axes
	w := New(testConfig(1, 1))

	for i := range 4 {
		_, err := w.Launch(fmt.Sprintf("r%d", i), "m")
		require.NoError(t, err)
	}
	_, err := w.Launch("overflow", "m")
	assert.ErrorIs(t, err, ErrNoSpace)
}

func TestWorld_Launch_ConcurrentUniqueCells(t *testing.T) {
	w := New(testConfig(5, 5))

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Go(func() {
			_, _ = w.Launch(fmt.Sprintf("bot-%d", i), "m")
		})
	}
	wg.Wait()

	seen := make(map[model.Position]string)
	for _, r := range w.Robots() {
		p := r.Position()
		if other, dup := seen[p]; dup {
			t.Fatalf("%s and %s share cell %v", other, r.Name(), p)
		}
		seen[p] = r.Name()
	}
	assert.Equal(t, 40, w.RobotCount())
}

func TestWorld_AddObstacle(t *testing.T) {
	w := New(testConfig(5, 5))
	_, err := w.Launch("HAL", "m")
	require.NoError(t, err)

	require.NoError(t, w.AddObstacle(model.NewObstacle(model.ObstacleMountain, 1, 1, 2, 2)))

	tests := []struct {
		name string
		o    model.Obstacle
		want error
	}{
		{"overlaps obstacle", model.NewObstacle(model.ObstacleMine, 2, 2, 1, 1), ErrCellOccupied},
		{"covers robot", model.NewObstacle(model.ObstacleBomb, 0, 0, 1, 1), ErrCellOccupied},
		{"out of bounds", model.NewObstacle(model.ObstacleLake, 4, 4, 2, 2), ErrOutOfBounds},
		{"free cell", model.NewObstacle(model.ObstacleMine, -3, -3, 1, 1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.AddObstacle(tt.o)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
	assert.Len(t, w.Obstacles(), 2)
}

func TestWorld_GenerateObstacles(t *testing.T) {
	cfg := testConfig(20, 20)
	cfg.Mountains = 5
	cfg.Lakes = 4
	cfg.Pits = 3
	w := New(cfg)

	obstacles := w.Obstacles()
	require.Len(t, obstacles, 12)

	for i, a := range obstacles {
		assert.True(t, w.IsPositionValid(model.NewPosition(a.X, a.Y)), "top-left in bounds: %+v", a)
		assert.True(t, w.IsPositionValid(model.NewPosition(a.X+a.Width-1, a.Y+a.Height-1)), "bottom-right in bounds: %+v", a)
		assert.False(t, a.Contains(model.NewPosition(0, 0)), "origin stays free")
		for _, b := range obstacles[i+1:] {
			assert.False(t, a.Overlaps(b), "%+v overlaps %+v", a, b)
		}
	}
}

func TestWorld_GenerateObstacles_Crowded(t *testing.T) {
	cfg := testConfig(1, 1)
	cfg.Mountains = 50
	w := New(cfg)

	assert.Less(t, len(w.Obstacles()), 50, "silently places fewer than requested")
}

func TestWorld_SnapshotAndRestore(t *testing.T) {
	w := New(testConfig(10, 10))
	inside, err := w.Launch("inside", "m")
	require.NoError(t, err)
	require.NoError(t, inside.MoveTo(model.NewPosition(1, 1)))
	outside, err := w.Launch("outside", "m")
	require.NoError(t, err)
	require.NoError(t, outside.MoveTo(model.NewPosition(8, 8)))
	buried, err := w.Launch("buried", "m")
	require.NoError(t, err)
	require.NoError(t, buried.MoveTo(model.NewPosition(-2, -2)))

	snap := w.Snapshot()
	assert.Equal(t, "default", snap.Name)
	assert.Len(t, snap.Robots, 3)
	assert.Equal(t, "buried", snap.Robots[0].Name)

	purged := w.Restore(Layout{
		Name:      "arena",
		Width:     5,
		Height:    5,
		Obstacles: []model.Obstacle{model.NewObstacle(model.ObstacleLake, -3, -3, 2, 2)},
	})

	require.Len(t, purged, 2)
	assert.True(t, outside.IsRetired())
	assert.True(t, buried.IsDead())
	assert.False(t, inside.IsRetired())

	snap = w.Snapshot()
	assert.Equal(t, "arena", snap.Name)
	assert.Equal(t, 5, snap.Width)
	require.Len(t, snap.Obstacles, 1)
	assert.Equal(t, "LAKE", snap.Obstacles[0].Type)
	require.Len(t, snap.Robots, 1)
	assert.Equal(t, [2]int{1, 1}, snap.Robots[0].Position)

	layout := w.Layout()
	assert.Equal(t, "arena", layout.Name)
	assert.Len(t, layout.Obstacles, 1)
}

func TestTx_RobotAt_IgnoresDead(t *testing.T) {
	w := New(testConfig(5, 5))
	r, err := w.Launch("ghost", "m")
	require.NoError(t, err)
	r.Kill()

	w.Read(func(tx *Tx) {
		assert.Nil(t, tx.RobotAt(model.NewPosition(0, 0), nil))
		assert.True(t, tx.IsOpen(model.NewPosition(0, 0), nil))
	})
}
