// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/virugamacoder/secret-number-survivor/session"
)

var ErrSessionNotFound = errors.New("session not found")

// Broadcaster fans outcome messages out to connections. Room membership is
// resolved through session subscriptions, so a broadcast reaches exactly
// the connections currently attached to the room.
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgID uint16, data []byte) error
	Unicast(sessionID string, msgID uint16, data []byte) error
}

// RoomBroadcaster delivers messages through the session manager.
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom sends to every session subscribed to the room. A room
// whose members have all dropped simply has nobody listening; that is not
// an error.
func (b *RoomBroadcaster) BroadcastToRoom(roomCode string, msgID uint16, data []byte) error {
	sessions := b.sessionManager.GetByRoom(roomCode)

	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			// A dead connection is reaped by its own read loop.
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) Unicast(sessionID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	return s.Send(msgID, data)
}
