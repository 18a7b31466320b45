package gameserver

import (
	"log/slog"

	"github.com/udisondev/robotworld/internal/world"
)

// OnDisconnection removes every robot the client launched from the world.
// A robot already gone (pit, purge) or replaced by a namesake launched on
// another connection is left alone.
func OnDisconnection(w *world.World, client *Client) {
	robots := client.takeRobots()
	if len(robots) == 0 {
		return
	}

	removed := 0
	for _, r := range robots {
		if w.RemoveRobot(r) {
			removed++
			slog.Info("robot removed on disconnect",
				"robot", r.Name(),
				"session", client.SessionID())
		}
	}

	slog.Debug("disconnection cleanup done",
		"session", client.SessionID(),
		"launched", len(robots),
		"removed", removed)
}
