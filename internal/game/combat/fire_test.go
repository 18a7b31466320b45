package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/robotworld/internal/config"
	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/world"
)

func newWorld(t *testing.T, maxShields, maxShots int) *world.World {
	t.Helper()
	cfg := config.DefaultWorld()
	cfg.Width = 10
	cfg.Height = 10
	cfg.MaxShields = maxShields
	cfg.MaxShots = maxShots
	cfg.Seed = 7
	return world.New(cfg)
}

func place(t *testing.T, w *world.World, name string, at model.Position) *model.Robot {
	t.Helper()
	r, err := w.Launch(name, "m")
	require.NoError(t, err)
	require.NoError(t, r.MoveTo(at))
	return r
}

func TestRange(t *testing.T) {
	tests := []struct {
		shots int
		want  int
	}{
		{9, 1}, {5, 1}, {4, 2}, {3, 3}, {2, 4}, {1, 5}, {0, 0}, {-1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Range(tt.shots), "shots=%d", tt.shots)
	}
	for s := 1; s < 10; s++ {
		assert.LessOrEqual(t, Range(s+1), Range(s), "non-increasing in ammo")
	}
}

func TestFire_LastShotMissesEmptyLane(t *testing.T) {
	w := newWorld(t, 5, 1)
	r := place(t, w, "HAL", model.NewPosition(0, 0))

	res, err := Fire(w, r)
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, 5, res.Range)
	assert.Equal(t, 0, res.ShotsLeft)
	assert.Equal(t, 0, r.State().Shots)

	_, err = Fire(w, r)
	assert.ErrorIs(t, err, ErrNoShots)
}

func TestFire_Hit(t *testing.T) {
	w := newWorld(t, 5, 5)
	shooter := place(t, w, "HAL", model.NewPosition(0, 0))
	target := place(t, w, "R2", model.NewPosition(0, -1))

	res, err := Fire(w, shooter)
	require.NoError(t, err)
	require.True(t, res.Hit)
	assert.Same(t, target, res.Target)
	assert.Equal(t, 1, res.Distance)
	assert.Equal(t, 4, res.TargetState.Shields)
	assert.Equal(t, 4, res.ShotsLeft)
}

func TestFire_OutOfRange(t *testing.T) {
	w := newWorld(t, 5, 5)
	shooter := place(t, w, "HAL", model.NewPosition(0, 0))
	target := place(t, w, "R2", model.NewPosition(0, -2))

	res, err := Fire(w, shooter)
	require.NoError(t, err)
	assert.False(t, res.Hit, "full magazine reaches 1 cell")
	assert.Equal(t, 5, target.State().Shields)
}

func TestFire_ObstacleAbsorbs(t *testing.T) {
	w := newWorld(t, 5, 1)
	shooter := place(t, w, "HAL", model.NewPosition(0, 0))
	target := place(t, w, "R2", model.NewPosition(0, -3))
	require.NoError(t, w.AddObstacle(model.NewObstacle(model.ObstacleLake, 0, -2, 1, 1)))

	res, err := Fire(w, shooter)
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, 5, target.State().Shields)
}

func TestFire_KillsAtFloor(t *testing.T) {
	w := newWorld(t, 0, 5)
	shooter := place(t, w, "HAL", model.NewPosition(0, 0))
	target := place(t, w, "R2", model.NewPosition(0, -1))

	res, err := Fire(w, shooter)
	require.NoError(t, err)
	require.True(t, res.Hit)
	assert.Equal(t, model.StatusDead, res.TargetState.Status)
	assert.Equal(t, 0, res.TargetState.Shields)
	assert.True(t, target.IsDead())

	res, err = Fire(w, shooter)
	require.NoError(t, err)
	assert.False(t, res.Hit, "dead robots are not targets")
}

func TestFire_Errors(t *testing.T) {
	w := newWorld(t, 5, 0)
	unarmed := place(t, w, "HAL", model.NewPosition(0, 0))
	_, err := Fire(w, unarmed)
	assert.ErrorIs(t, err, ErrGunNotConfigured)

	w = newWorld(t, 5, 5)
	dead := place(t, w, "HAL", model.NewPosition(0, 0))
	dead.Kill()
	_, err = Fire(w, dead)
	assert.ErrorIs(t, err, model.ErrDead)
	assert.Equal(t, 5, dead.State().Shots)
}
