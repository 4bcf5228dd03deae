package room

import (
	"time"

	"github.com/virugamacoder/secret-number-survivor/state"
)

// LogEntry records one call made during play, including everyone it
// eliminated. Entries exist only once the game has started.
type LogEntry struct {
	Player     string
	Value      int
	Eliminated []string
	Timestamp  time.Time
}

// EliminationOutcome is the result of a successful call, both when play
// continues and when the call ends the game.
type EliminationOutcome struct {
	Value       int
	Eliminated  []PlayerSnapshot
	GameOver    bool
	Winner      *PlayerSnapshot // set only on GameOver with a survivor
	CurrentTurn int
	Log         []LogEntry
}

// Departure describes the effect of removing a connection from its room,
// whether by an expired grace timer or an explicit leave.
type Departure struct {
	RoomCode    string
	RoomDeleted bool
	Room        *Room // nil when the room was deleted
	Player      PlayerSnapshot
	GameOver    bool            // the removal ended a running game
	Winner      *PlayerSnapshot // set when GameOver with a survivor
}

// Snapshot is a consistent copy of a room's public state.
type Snapshot struct {
	Code        string
	Phase       state.Phase
	MinValue    int
	MaxValue    int
	CurrentTurn int
	Players     []PlayerSnapshot
	Eliminated  []string
	Log         []LogEntry
	Winner      *PlayerSnapshot
	CreatedAt   time.Time
	StartedAt   time.Time
}
