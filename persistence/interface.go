// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/virugamacoder/secret-number-survivor/models"
)

// Database archives finished games. Live room state is never persisted;
// a restart always starts with an empty registry.
type Database interface {
	SaveMatchRecord(record *models.MatchRecord) error
	RecentMatches(limit int) ([]models.MatchRecord, error)
	GetPlayerStats(name string) (*models.PlayerStats, error)
	Close() error
}

var ErrRecordNotFound = errors.New("record not found")
