package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/udisondev/robotworld/internal/world"
)

// Kill handles "kill <name>": the robot turns Dead but stays registered
// until its connection ends or it is purged.
type Kill struct {
	world *world.World
}

func (c *Kill) Names() []string { return []string{"kill"} }

func (c *Kill) Handle(_ context.Context, out io.Writer, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: kill <robot>")
	}
	r, ok := c.world.Robot(args[1])
	if !ok {
		return fmt.Errorf("robot %q not found", args[1])
	}
	r.Kill()
	fmt.Fprintf(out, "Killed robot %s\n", r.Name())
	return nil
}

// Purge handles "purge <name>": removes the robot from the world.
type Purge struct {
	world *world.World
}

func (c *Purge) Names() []string { return []string{"purge"} }

func (c *Purge) Handle(_ context.Context, out io.Writer, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: purge <robot>")
	}
	r, ok := c.world.RemoveRobotByName(args[1])
	if !ok {
		return fmt.Errorf("robot %q not found", args[1])
	}
	r.Kill()
	fmt.Fprintf(out, "Purged robot %s\n", r.Name())
	return nil
}
