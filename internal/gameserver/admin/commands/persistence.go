package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/udisondev/robotworld/internal/world"
)

const storeTimeout = 10 * time.Second

// Save handles "save [name]": stores the current layout, under name if given.
type Save struct {
	world *world.World
	store LayoutStore
}

func (c *Save) Names() []string { return []string{"save"} }

func (c *Save) Handle(ctx context.Context, out io.Writer, args []string) error {
	if c.store == nil {
		return ErrPersistenceDisabled
	}

	layout := c.world.Layout()
	if len(args) >= 2 {
		layout.Name = args[1]
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := c.store.SaveWorld(ctx, layout); err != nil {
		return fmt.Errorf("saving world %q: %w", layout.Name, err)
	}
	fmt.Fprintf(out, "Saved world %s (%dx%d, %d obstacles)\n",
		layout.Name, layout.Width, layout.Height, len(layout.Obstacles))
	return nil
}

// Restore handles "restore <name>": replaces dimensions and obstacles in
// place. Robots that no longer fit are purged.
type Restore struct {
	world *world.World
	store LayoutStore
}

func (c *Restore) Names() []string { return []string{"restore", "load"} }

func (c *Restore) Handle(ctx context.Context, out io.Writer, args []string) error {
	if c.store == nil {
		return ErrPersistenceDisabled
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: restore <name>")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	layout, err := c.store.LoadWorld(ctx, args[1])
	if err != nil {
		return fmt.Errorf("loading world %q: %w", args[1], err)
	}

	purged := c.world.Restore(layout)
	fmt.Fprintf(out, "Restored world %s (%dx%d, %d obstacles)\n",
		layout.Name, layout.Width, layout.Height, len(layout.Obstacles))
	for _, r := range purged {
		fmt.Fprintf(out, "Purged robot %s\n", r.Name())
	}
	return nil
}

// Worlds handles "worlds": lists saved layouts.
type Worlds struct {
	store LayoutStore
}

func (c *Worlds) Names() []string { return []string{"worlds"} }

func (c *Worlds) Handle(ctx context.Context, out io.Writer, _ []string) error {
	if c.store == nil {
		return ErrPersistenceDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	names, err := c.store.ListWorlds(ctx)
	if err != nil {
		return fmt.Errorf("listing worlds: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "No saved worlds")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

// Quit handles "quit": disconnects everyone and stops the server.
type Quit struct {
	shutdown context.CancelFunc
}

func (c *Quit) Names() []string { return []string{"quit", "shutdown"} }

func (c *Quit) Handle(_ context.Context, out io.Writer, _ []string) error {
	if c.shutdown == nil {
		return fmt.Errorf("shutdown not available")
	}
	fmt.Fprintln(out, "Shutting down")
	c.shutdown()
	return nil
}
