package services

import (
	"fmt"
	"time"

	"github.com/virugamacoder/secret-number-survivor/models"
	"github.com/virugamacoder/secret-number-survivor/persistence"
	"github.com/virugamacoder/secret-number-survivor/room"
	"github.com/virugamacoder/secret-number-survivor/state"
)

// HistoryService archives finished games and answers stats queries. It is
// optional: with a nil database every call is a no-op, so the server runs
// fine without postgres configured.
type HistoryService struct {
	db persistence.Database
}

func NewHistoryService(db persistence.Database) *HistoryService {
	return &HistoryService{db: db}
}

func (s *HistoryService) Enabled() bool {
	return s != nil && s.db != nil
}

// RecordFinishedGame archives the room snapshot of a game that just ended.
func (s *HistoryService) RecordFinishedGame(snap room.Snapshot) error {
	if !s.Enabled() {
		return nil
	}
	if snap.Phase != state.Finished {
		return fmt.Errorf("room %s is not finished", snap.Code)
	}

	record := &models.MatchRecord{
		RoomCode:   snap.Code,
		Players:    make([]string, 0, len(snap.Players)),
		Rounds:     len(snap.Log),
		Log:        models.NewLogEntryViews(snap.Log),
		StartedAt:  snap.StartedAt,
		FinishedAt: time.Now(),
	}
	for _, p := range snap.Players {
		record.Players = append(record.Players, p.Name)
	}
	if snap.Winner != nil {
		record.Winner = snap.Winner.Name
	}

	if err := s.db.SaveMatchRecord(record); err != nil {
		return fmt.Errorf("failed to save match record for room %s: %w", snap.Code, err)
	}
	return nil
}

func (s *HistoryService) PlayerStats(name string) (*models.PlayerStats, error) {
	if !s.Enabled() {
		return nil, persistence.ErrRecordNotFound
	}
	stats, err := s.db.GetPlayerStats(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for %s: %w", name, err)
	}
	return stats, nil
}

func (s *HistoryService) RecentMatches(limit int) ([]models.MatchRecord, error) {
	if !s.Enabled() {
		return nil, nil
	}
	records, err := s.db.RecentMatches(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent matches: %w", err)
	}
	return records, nil
}
