package broadcast

import (
	"net"
	"sync"
	"testing"

	"github.com/virugamacoder/secret-number-survivor/network"
	"github.com/virugamacoder/secret-number-survivor/session"
)

// MockConnection records every packet sent through it.
type MockConnection struct {
	mutex sync.Mutex
	sent  []uint16
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sent = append(m.sent, msgID)
	return nil
}

func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func (m *MockConnection) sentCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.sent)
}

func TestRoomBroadcaster_BroadcastToRoom(t *testing.T) {
	sessions := session.NewManager()

	connA, connB, connC := &MockConnection{}, &MockConnection{}, &MockConnection{}

	sessA := session.NewSession("a", connA)
	sessA.SetRoomCode("1234")
	sessB := session.NewSession("b", connB)
	sessB.SetRoomCode("1234")
	sessC := session.NewSession("c", connC)
	sessC.SetRoomCode("5678")

	sessions.Add(sessA)
	sessions.Add(sessB)
	sessions.Add(sessC)

	b := NewRoomBroadcaster(sessions)
	if err := b.BroadcastToRoom("1234", network.MsgTypePlayersChanged, []byte(`{}`)); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	if connA.sentCount() != 1 || connB.sentCount() != 1 {
		t.Errorf("Room members should each receive one message, got %d/%d", connA.sentCount(), connB.sentCount())
	}
	if connC.sentCount() != 0 {
		t.Errorf("Other rooms must not receive the broadcast, got %d", connC.sentCount())
	}
}

func TestRoomBroadcaster_Unicast(t *testing.T) {
	sessions := session.NewManager()
	conn := &MockConnection{}
	sess := session.NewSession("a", conn)
	sessions.Add(sess)

	b := NewRoomBroadcaster(sessions)

	if err := b.Unicast("a", network.MsgTypeCommandError, []byte(`{}`)); err != nil {
		t.Fatalf("Unicast failed: %v", err)
	}
	if conn.sentCount() != 1 {
		t.Errorf("Expected 1 message, got %d", conn.sentCount())
	}

	if err := b.Unicast("ghost", network.MsgTypeCommandError, nil); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}
