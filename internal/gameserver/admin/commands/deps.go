package commands

import (
	"context"
	"errors"

	"github.com/udisondev/robotworld/internal/world"
)

// ErrPersistenceDisabled is returned by save/restore/worlds when the
// server runs without a database.
var ErrPersistenceDisabled = errors.New("persistence disabled")

// LayoutStore saves and loads world layouts.
// Interface to keep the console free of the database package.
type LayoutStore interface {
	SaveWorld(ctx context.Context, layout world.Layout) error
	LoadWorld(ctx context.Context, name string) (world.Layout, error)
	ListWorlds(ctx context.Context) ([]string, error)
}

// Sessions reports live connections.
type Sessions interface {
	Count() int
}
