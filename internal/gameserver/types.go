package gameserver

import "strings"

// Kind is the closed set of commands a client may send.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLaunch
	KindState
	KindForward
	KindBack
	KindTurn
	KindLook
	KindFire
	KindReload
	KindRepair
	KindMine
	KindSetBomb
	KindRobots
	KindDump
	KindQuit
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindLaunch:  "launch",
	KindState:   "state",
	KindForward: "forward",
	KindBack:    "back",
	KindTurn:    "turn",
	KindLook:    "look",
	KindFire:    "fire",
	KindReload:  "reload",
	KindRepair:  "repair",
	KindMine:    "mine",
	KindSetBomb: "setbomb",
	KindRobots:  "robots",
	KindDump:    "dump",
	KindQuit:    "quit",
}

// ParseKind resolves a command name, case-insensitively.
func ParseKind(command string) Kind {
	command = strings.ToLower(strings.TrimSpace(command))
	for k, name := range kindNames {
		if k != int(KindUnknown) && name == command {
			return Kind(k)
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// WorldScoped reports commands that do not act through an existing robot.
func (k Kind) WorldScoped() bool {
	switch k {
	case KindLaunch, KindRobots, KindDump, KindQuit:
		return true
	}
	return false
}

// ReadOnly reports commands allowed while a robot reloads or repairs.
func (k Kind) ReadOnly() bool {
	return k == KindState || k == KindLook
}
