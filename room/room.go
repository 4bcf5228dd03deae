// room/room.go
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/virugamacoder/secret-number-survivor/state"
)

// Room is one independent game instance. The player slice is ordered:
// arrival order is turn order, fixed for the life of the room except for
// removals. Exactly one player holds the host flag whenever the room is
// non-empty.
type Room struct {
	Code       string
	MinValue   int
	MaxValue   int
	maxPlayers int

	players     []*Player
	currentTurn int
	log         []LogEntry
	eliminated  []string // names, in elimination order
	winner      *Player

	phase     *state.Machine
	CreatedAt time.Time
	startedAt time.Time
	mutex     sync.RWMutex
}

func newRoom(code string, min, max, maxPlayers int, hostConnID, hostName string) *Room {
	r := &Room{
		Code:       code,
		MinValue:   min,
		MaxValue:   max,
		maxPlayers: maxPlayers,
		phase:      state.NewMachine(),
		CreatedAt:  time.Now(),
	}
	r.players = append(r.players, &Player{
		ConnID:      hostConnID,
		Name:        hostName,
		RejoinToken: uuid.NewString(),
		IsHost:      true,
		JoinedAt:    r.CreatedAt,
	})
	return r
}

// Phase returns the room's current lifecycle phase.
func (r *Room) Phase() state.Phase {
	return r.phase.Current()
}

// PlayerCount returns the number of seats, eliminated players included.
func (r *Room) PlayerCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.players)
}

// Join appends a new unready, non-host player. Fails once the game has
// started or the room is at capacity.
func (r *Room) Join(connID, name string) (*Player, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.phase.Is(state.Lobby) {
		return nil, ErrRoomNotJoinable
	}
	if len(r.players) >= r.maxPlayers {
		return nil, ErrRoomFull
	}

	p := &Player{
		ConnID:      connID,
		Name:        name,
		RejoinToken: uuid.NewString(),
		JoinedAt:    time.Now(),
	}
	r.players = append(r.players, p)
	return p, nil
}

// Rebind points an existing seat at a new connection, returning the seat
// and the connection ID it was previously bound to. A non-empty token is
// matched first; otherwise the first player with the given name wins.
// Order, readiness, elimination and secret are untouched.
func (r *Room) Rebind(name, token, newConnID string) (*Player, string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var target *Player
	if token != "" {
		for _, p := range r.players {
			if p.RejoinToken == token {
				target = p
				break
			}
		}
	}
	if target == nil {
		for _, p := range r.players {
			if p.Name == name {
				target = p
				break
			}
		}
	}
	if target == nil {
		return nil, "", ErrPlayerNotFound
	}

	oldConnID := target.ConnID
	target.ConnID = newConnID
	return target, oldConnID, nil
}

// SetReady commits a player's secret and marks them ready. The secret must
// lie within the room's declared range.
func (r *Room) SetReady(connID string, secret int) (*Player, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, p := r.findByConnLocked(connID)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if secret < r.MinValue || secret > r.MaxValue {
		return nil, ErrInvalidValue
	}

	p.Secret = secret
	p.IsReady = true
	return p, nil
}

// Start moves the room from lobby to play: turn index zero, empty log.
// Requires at least two players, all of them ready.
func (r *Room) Start() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.players) < 2 {
		return ErrInsufficientPlayers
	}
	for _, p := range r.players {
		if !p.IsReady {
			return ErrNotAllReady
		}
	}
	if err := r.phase.Transition(state.Playing); err != nil {
		return err
	}

	// No one can be eliminated before the game starts, so seat zero is
	// always a valid first turn.
	r.currentTurn = 0
	r.log = make([]LogEntry, 0)
	r.startedAt = time.Now()
	return nil
}

// Eliminate applies one call by the current-turn player. Every active
// player whose secret equals value is knocked out; duplicate secrets mean
// multiple eliminations in a single call. Returns (nil, nil) when the room
// is not in play, matching the engine contract of silent no-ops for stale
// commands.
func (r *Room) Eliminate(connID string, value int) (*EliminationOutcome, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.phase.Is(state.Playing) {
		return nil, nil
	}

	current := r.players[r.currentTurn]
	if current.ConnID != connID {
		return nil, ErrNotYourTurn
	}
	if current.IsEliminated {
		// Unreachable while the turn invariant holds, but advance past
		// the dead seat so the room cannot wedge.
		r.advanceTurnLocked()
		return nil, ErrAlreadyEliminated
	}
	if value == current.Secret {
		return nil, ErrSelfTargetForbidden
	}

	var eliminated []PlayerSnapshot
	var names []string
	for _, p := range r.players {
		if !p.IsEliminated && p.Secret == value {
			p.IsEliminated = true
			r.eliminated = append(r.eliminated, p.Name)
			eliminated = append(eliminated, snapshotPlayer(p))
			names = append(names, p.Name)
		}
	}

	r.log = append(r.log, LogEntry{
		Player:     current.Name,
		Value:      value,
		Eliminated: names,
		Timestamp:  time.Now(),
	})

	out := &EliminationOutcome{
		Value:      value,
		Eliminated: eliminated,
		Log:        r.logCopyLocked(),
	}

	if r.activeCountLocked() <= 1 {
		_ = r.phase.Transition(state.Finished)
		if survivor := r.soleActiveLocked(); survivor != nil {
			r.winner = survivor
			ws := snapshotPlayer(survivor)
			out.Winner = &ws
		}
		out.GameOver = true
		out.CurrentTurn = r.currentTurn
		return out, nil
	}

	r.advanceTurnLocked()
	out.CurrentTurn = r.currentTurn
	return out, nil
}

// Remove unseats the player bound to connID. Promotes a new host when the
// host leaves, keeps the turn index on a live seat, and finishes a running
// game when at most one active player remains. Reports false when the
// connection is not seated here.
func (r *Room) Remove(connID string) (*Departure, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	idx, p := r.findByConnLocked(connID)
	if p == nil {
		return nil, false
	}

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	dep := &Departure{Player: snapshotPlayer(p)}

	if len(r.players) == 0 {
		dep.RoomDeleted = true
		return dep, true
	}

	if p.IsHost {
		r.players[0].IsHost = true
	}

	if r.currentTurn > idx {
		r.currentTurn--
	}
	if r.currentTurn >= len(r.players) {
		r.currentTurn = 0
	}

	if r.phase.Is(state.Playing) {
		if r.activeCountLocked() <= 1 {
			_ = r.phase.Transition(state.Finished)
			if survivor := r.soleActiveLocked(); survivor != nil {
				r.winner = survivor
				ws := snapshotPlayer(survivor)
				dep.Winner = &ws
			}
			dep.GameOver = true
		} else if r.players[r.currentTurn].IsEliminated {
			r.advanceTurnLocked()
		}
	}

	return dep, true
}

// Snapshot returns a consistent copy of the room's public state, safe to
// serialize after the lock is released.
func (r *Room) Snapshot() Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	snap := Snapshot{
		Code:        r.Code,
		Phase:       r.phase.Current(),
		MinValue:    r.MinValue,
		MaxValue:    r.MaxValue,
		CurrentTurn: r.currentTurn,
		Players:     make([]PlayerSnapshot, 0, len(r.players)),
		Eliminated:  append([]string(nil), r.eliminated...),
		Log:         r.logCopyLocked(),
		CreatedAt:   r.CreatedAt,
		StartedAt:   r.startedAt,
	}
	for _, p := range r.players {
		snap.Players = append(snap.Players, snapshotPlayer(p))
	}
	if r.winner != nil {
		ws := snapshotPlayer(r.winner)
		snap.Winner = &ws
	}
	return snap
}

// FindPlayer returns the seat currently bound to connID.
func (r *Room) FindPlayer(connID string) (*Player, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, p := r.findByConnLocked(connID)
	return p, p != nil
}

// advanceTurnLocked scans forward circularly from the seat after the
// current one, skipping eliminated players, for at most one full lap. When
// every seat is eliminated the index is left where the lap ended; the win
// condition fires before that can happen in normal play.
func (r *Room) advanceTurnLocked() {
	n := len(r.players)
	if n == 0 {
		return
	}
	idx := (r.currentTurn + 1) % n
	for i := 0; i < n; i++ {
		if !r.players[idx].IsEliminated {
			r.currentTurn = idx
			return
		}
		idx = (idx + 1) % n
	}
	r.currentTurn = idx
}

func (r *Room) findByConnLocked(connID string) (int, *Player) {
	for i, p := range r.players {
		if p.ConnID == connID {
			return i, p
		}
	}
	return -1, nil
}

func (r *Room) activeCountLocked() int {
	count := 0
	for _, p := range r.players {
		if !p.IsEliminated {
			count++
		}
	}
	return count
}

// soleActiveLocked returns the single remaining active player, or nil when
// there are zero (or more than one) active players.
func (r *Room) soleActiveLocked() *Player {
	var survivor *Player
	for _, p := range r.players {
		if p.IsEliminated {
			continue
		}
		if survivor != nil {
			return nil
		}
		survivor = p
	}
	return survivor
}

func (r *Room) logCopyLocked() []LogEntry {
	out := make([]LogEntry, len(r.log))
	copy(out, r.log)
	return out
}
