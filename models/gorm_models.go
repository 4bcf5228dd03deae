// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormMatchRecord is the persisted form of MatchRecord. Players and the
// action log go into jsonb columns; the winner is a plain column so stats
// queries can aggregate on it.
type GormMatchRecord struct {
	gorm.Model
	RoomCode   string         `gorm:"index;not null"`
	Winner     string         `gorm:"index"`
	Rounds     int            `gorm:"default:0"`
	Players    []string       `gorm:"serializer:json;type:jsonb"`
	ActionLog  []LogEntryView `gorm:"serializer:json;type:jsonb"`
	StartedAt  time.Time
	FinishedAt time.Time
}
