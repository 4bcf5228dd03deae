package services

import (
	"testing"
	"time"

	"github.com/virugamacoder/secret-number-survivor/models"
	"github.com/virugamacoder/secret-number-survivor/persistence"
	"github.com/virugamacoder/secret-number-survivor/room"
	"github.com/virugamacoder/secret-number-survivor/state"
)

// MockDatabase is a test double for the persistence.Database interface.
type MockDatabase struct {
	saved []*models.MatchRecord
	stats map[string]*models.PlayerStats
}

func newMockDatabase() *MockDatabase {
	return &MockDatabase{stats: make(map[string]*models.PlayerStats)}
}

func (m *MockDatabase) SaveMatchRecord(record *models.MatchRecord) error {
	m.saved = append(m.saved, record)
	return nil
}

func (m *MockDatabase) RecentMatches(limit int) ([]models.MatchRecord, error) {
	var out []models.MatchRecord
	for i := len(m.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.saved[i])
	}
	return out, nil
}

func (m *MockDatabase) GetPlayerStats(name string) (*models.PlayerStats, error) {
	stats, ok := m.stats[name]
	if !ok {
		return nil, persistence.ErrRecordNotFound
	}
	return stats, nil
}

func (m *MockDatabase) Close() error { return nil }

func finishedSnapshot() room.Snapshot {
	winner := room.PlayerSnapshot{ConnID: "conn-A", Name: "A", IsHost: true}
	return room.Snapshot{
		Code:        "1234",
		Phase:       state.Finished,
		CurrentTurn: 0,
		Players: []room.PlayerSnapshot{
			winner,
			{ConnID: "conn-B", Name: "B", IsEliminated: true},
		},
		Log: []room.LogEntry{
			{Player: "A", Value: 9, Eliminated: []string{"B"}, Timestamp: time.Now()},
		},
		Winner:    &winner,
		StartedAt: time.Now().Add(-time.Minute),
	}
}

func TestHistoryService_RecordFinishedGame(t *testing.T) {
	db := newMockDatabase()
	svc := NewHistoryService(db)

	if err := svc.RecordFinishedGame(finishedSnapshot()); err != nil {
		t.Fatalf("RecordFinishedGame failed: %v", err)
	}

	if len(db.saved) != 1 {
		t.Fatalf("Expected 1 saved record, got %d", len(db.saved))
	}
	record := db.saved[0]
	if record.RoomCode != "1234" {
		t.Errorf("Expected room code 1234, got %q", record.RoomCode)
	}
	if record.Winner != "A" {
		t.Errorf("Expected winner A, got %q", record.Winner)
	}
	if record.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", record.Rounds)
	}
	if len(record.Players) != 2 || record.Players[0] != "A" || record.Players[1] != "B" {
		t.Errorf("Unexpected players: %v", record.Players)
	}
	if record.FinishedAt.IsZero() {
		t.Error("FinishedAt should be stamped")
	}
}

func TestHistoryService_RejectsUnfinishedRoom(t *testing.T) {
	db := newMockDatabase()
	svc := NewHistoryService(db)

	snap := finishedSnapshot()
	snap.Phase = state.Playing

	if err := svc.RecordFinishedGame(snap); err == nil {
		t.Error("Recording a room still in play should fail")
	}
	if len(db.saved) != 0 {
		t.Errorf("Nothing should be saved, got %d records", len(db.saved))
	}
}

func TestHistoryService_NilDatabaseIsNoop(t *testing.T) {
	svc := NewHistoryService(nil)

	if svc.Enabled() {
		t.Error("Service without a database should report disabled")
	}
	if err := svc.RecordFinishedGame(finishedSnapshot()); err != nil {
		t.Errorf("Nil database should be a no-op, got %v", err)
	}
	records, err := svc.RecentMatches(10)
	if err != nil || records != nil {
		t.Errorf("Nil database should yield nothing, got %v / %v", records, err)
	}
}

func TestHistoryService_PlayerStats(t *testing.T) {
	db := newMockDatabase()
	db.stats["A"] = &models.PlayerStats{Name: "A", TotalGames: 3, Wins: 2}
	svc := NewHistoryService(db)

	stats, err := svc.PlayerStats("A")
	if err != nil {
		t.Fatalf("PlayerStats failed: %v", err)
	}
	if stats.Wins != 2 || stats.TotalGames != 3 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	if _, err := svc.PlayerStats("Nobody"); err == nil {
		t.Error("Unknown player should yield an error")
	}
}
