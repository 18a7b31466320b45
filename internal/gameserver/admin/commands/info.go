package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/udisondev/robotworld/internal/world"
)

// Dump handles "dump": prints the world snapshot as JSON.
type Dump struct {
	world *world.World
}

func (c *Dump) Names() []string { return []string{"dump"} }

func (c *Dump) Handle(_ context.Context, out io.Writer, _ []string) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.world.Snapshot()); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Robots handles "robots": one line per registered robot.
type Robots struct {
	world    *world.World
	sessions Sessions
}

func (c *Robots) Names() []string { return []string{"robots", "list"} }

func (c *Robots) Handle(_ context.Context, out io.Writer, _ []string) error {
	robots := c.world.Robots()
	if len(robots) == 0 {
		fmt.Fprintln(out, "No robots in the world")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMAKE\tPOSITION\tDIRECTION\tSHIELDS\tSHOTS\tSTATUS")
	for _, r := range robots {
		st := r.State()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Name(), r.Make(), st.Position, st.Direction, st.Shields, st.Shots, st.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if c.sessions != nil {
		fmt.Fprintf(out, "%d robot(s), %d connection(s)\n", len(robots), c.sessions.Count())
	}
	return nil
}
