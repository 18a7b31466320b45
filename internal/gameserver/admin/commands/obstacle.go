package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/world"
)

// Obstacle handles "obstacle <type> <x> <y> [width height]".
type Obstacle struct {
	world *world.World
}

func (c *Obstacle) Names() []string { return []string{"obstacle", "place"} }

func (c *Obstacle) Handle(_ context.Context, out io.Writer, args []string) error {
	if len(args) != 4 && len(args) != 6 {
		return fmt.Errorf("usage: obstacle <type> <x> <y> [width height]")
	}

	t, err := model.ParseObstacleType(args[1])
	if err != nil {
		return err
	}

	nums := make([]int, 0, 4)
	for _, a := range args[2:] {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid number %q", a)
		}
		nums = append(nums, n)
	}
	w, h := 1, 1
	if len(nums) == 4 {
		w, h = nums[2], nums[3]
	}

	o := model.NewObstacle(t, nums[0], nums[1], w, h)
	if err := c.world.AddObstacle(o); err != nil {
		return fmt.Errorf("placing %s: %w", t, err)
	}
	fmt.Fprintf(out, "Placed %s at (%d,%d) size %dx%d\n", t, o.X, o.Y, o.Width, o.Height)
	return nil
}
