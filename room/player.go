package room

import "time"

// Player is one seat in a room. ConnID is the transport's ephemeral handle
// for the connection currently driving this seat; it is rebound when the
// player reconnects. RejoinToken is issued once at join time and lets a
// reconnecting client claim its seat unambiguously even when display names
// collide.
type Player struct {
	ConnID       string
	Name         string
	RejoinToken  string
	IsHost       bool
	IsReady      bool
	IsEliminated bool
	Secret       int
	JoinedAt     time.Time
}

// PlayerSnapshot is an immutable copy of a player's public state, safe to
// hand to the transport layer after locks are released. The secret is
// deliberately absent.
type PlayerSnapshot struct {
	ConnID       string
	Name         string
	IsHost       bool
	IsReady      bool
	IsEliminated bool
}

func snapshotPlayer(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ConnID:       p.ConnID,
		Name:         p.Name,
		IsHost:       p.IsHost,
		IsReady:      p.IsReady,
		IsEliminated: p.IsEliminated,
	}
}
