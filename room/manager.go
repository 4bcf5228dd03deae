package room

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/virugamacoder/secret-number-survivor/timer"
)

// Config carries the game tunables the manager needs. Zero values fall
// back to the defaults below.
type Config struct {
	MaxPlayers      int
	CodeLength      int
	DefaultMinValue int
	DefaultMaxValue int
	GracePeriod     time.Duration
}

const (
	defaultMaxPlayers  = 20
	defaultCodeLength  = 4
	defaultMinValue    = 1
	defaultMaxValue    = 100
	defaultGracePeriod = 10 * time.Second
)

// Manager is the process-wide room registry and command engine. It owns
// every active room, keyed by code, and the pending-disconnect table that
// preserves a seat for the grace period after a connection drops.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex

	grace       *timer.Scheduler
	gracePeriod time.Duration

	notifier   Notifier
	notifierMu sync.RWMutex

	maxPlayers int
	codeLength int
	defaultMin int
	defaultMax int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = defaultMaxPlayers
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = defaultCodeLength
	}
	if cfg.DefaultMinValue == 0 && cfg.DefaultMaxValue == 0 {
		cfg.DefaultMinValue = defaultMinValue
		cfg.DefaultMaxValue = defaultMaxValue
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = defaultGracePeriod
	}

	return &Manager{
		rooms:       make(map[string]*Room),
		grace:       timer.NewScheduler(),
		gracePeriod: cfg.GracePeriod,
		maxPlayers:  cfg.MaxPlayers,
		codeLength:  cfg.CodeLength,
		defaultMin:  cfg.DefaultMinValue,
		defaultMax:  cfg.DefaultMaxValue,
	}
}

// SetNotifier installs the sink for asynchronous removal events. Call once
// before serving traffic.
func (m *Manager) SetNotifier(n Notifier) {
	m.notifierMu.Lock()
	defer m.notifierMu.Unlock()
	m.notifier = n
}

func (m *Manager) getNotifier() Notifier {
	m.notifierMu.RLock()
	defer m.notifierMu.RUnlock()
	return m.notifier
}

// Close stops the grace scheduler. Pending removals never fire afterwards.
func (m *Manager) Close() {
	m.grace.Stop()
}

// CreateRoom opens a new lobby with the creator as host. A zero range
// falls back to the configured default; a non-zero range must satisfy
// min < max.
func (m *Manager) CreateRoom(connID, hostName string, min, max int) (*Room, error) {
	if min == 0 && max == 0 {
		min, max = m.defaultMin, m.defaultMax
	}
	if min >= max {
		return nil, ErrInvalidRange
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := m.generateCodeLocked()
	r := newRoom(code, min, max, m.maxPlayers, connID, hostName)
	m.rooms[code] = r
	return r, nil
}

// generateCodeLocked draws short numeric codes until one is free. Codes
// are unique only among currently-active rooms; a destroyed room's code
// may be reused. With the default four digits the space is 10000 codes,
// far above any realistic concurrent room count.
func (m *Manager) generateCodeLocked() string {
	limit := 1
	for i := 0; i < m.codeLength; i++ {
		limit *= 10
	}
	for {
		code := fmt.Sprintf("%0*d", m.codeLength, rand.Intn(limit))
		if _, exists := m.rooms[code]; !exists {
			return code
		}
	}
}

// JoinRoom seats a new player in the named lobby.
func (m *Manager) JoinRoom(code, connID, name string) (*Room, *Player, error) {
	r, ok := m.GetRoom(code)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	p, err := r.Join(connID, name)
	if err != nil {
		return nil, nil, err
	}
	return r, p, nil
}

// RejoinRoom rebinds an existing seat to a new connection and cancels any
// pending grace removal for the seat's previous connection.
func (m *Manager) RejoinRoom(code, connID, name, token string) (*Room, *Player, error) {
	r, ok := m.GetRoom(code)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	p, oldConnID, err := r.Rebind(name, token, connID)
	if err != nil {
		return nil, nil, err
	}
	m.grace.Cancel(oldConnID)
	return r, p, nil
}

// SetReady records a player's secret. Unknown room or player is a silent
// no-op, per the engine contract; an out-of-range secret is rejected.
func (m *Manager) SetReady(code, connID string, secret int) (*Room, error) {
	r, ok := m.GetRoom(code)
	if !ok {
		return nil, nil
	}
	_, err := r.SetReady(connID, secret)
	if err == ErrPlayerNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// StartGame begins play in the named room.
func (m *Manager) StartGame(code string) (*Room, error) {
	r, ok := m.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := r.Start(); err != nil {
		return nil, err
	}
	return r, nil
}

// Eliminate applies a call in the named room. An unknown room is a silent
// no-op, as is a room no longer in play.
func (m *Manager) Eliminate(code, connID string, value int) (*Room, *EliminationOutcome, error) {
	r, ok := m.GetRoom(code)
	if !ok {
		return nil, nil, nil
	}
	out, err := r.Eliminate(connID, value)
	if err != nil {
		return nil, nil, err
	}
	if out == nil {
		return nil, nil, nil
	}
	return r, out, nil
}

// RemovePlayer locates the connection across all rooms and unseats it,
// deleting the room when it empties. Returns nil when the connection is
// seated nowhere.
func (m *Manager) RemovePlayer(connID string) *Departure {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for code, r := range m.rooms {
		dep, ok := r.Remove(connID)
		if !ok {
			continue
		}
		dep.RoomCode = code
		if dep.RoomDeleted {
			delete(m.rooms, code)
		} else {
			dep.Room = r
		}
		return dep
	}
	return nil
}

// Disconnect starts the grace clock for a dropped connection. If the seat
// is not reclaimed before the grace period elapses, the player is removed
// and the notifier is told; a rejoin in time cancels the removal entirely.
func (m *Manager) Disconnect(connID string) {
	m.grace.Schedule(connID, m.gracePeriod, func() {
		dep := m.RemovePlayer(connID)
		if dep == nil {
			return
		}
		if n := m.getNotifier(); n != nil {
			n.PlayerRemoved(dep)
		}
	})
}

// RemovalPending reports whether a grace removal is scheduled for connID.
func (m *Manager) RemovalPending(connID string) bool {
	return m.grace.Pending(connID)
}

// GetRoom returns the active room with the given code.
func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, exists := m.rooms[code]
	return r, exists
}

// RoomCount returns the number of active rooms.
func (m *Manager) RoomCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Snapshots returns a snapshot of every active room, for the admin RPC.
func (m *Manager) Snapshots() []Snapshot {
	m.mutex.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mutex.RUnlock()

	snaps := make([]Snapshot, 0, len(rooms))
	for _, r := range rooms {
		snaps = append(snaps, r.Snapshot())
	}
	return snaps
}
