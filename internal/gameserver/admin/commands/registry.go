package commands

import (
	"context"

	"github.com/udisondev/robotworld/internal/gameserver/admin"
	"github.com/udisondev/robotworld/internal/world"
)

// Deps are the collaborators console commands act on. Store may be nil
// when persistence is disabled.
type Deps struct {
	World    *world.World
	Sessions Sessions
	Store    LayoutStore
	Shutdown context.CancelFunc
}

// RegisterAll registers every console command into the handler.
func RegisterAll(h *admin.Handler, d Deps) {
	h.Register(&Dump{world: d.World})
	h.Register(&Robots{world: d.World, sessions: d.Sessions})
	h.Register(&Purge{world: d.World})
	h.Register(&Kill{world: d.World})
	h.Register(&Obstacle{world: d.World})
	h.Register(&Save{world: d.World, store: d.Store})
	h.Register(&Restore{world: d.World, store: d.Store})
	h.Register(&Worlds{store: d.Store})
	h.Register(&Quit{shutdown: d.Shutdown})
}
