// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/virugamacoder/secret-number-survivor/models"
)

// GormPostgreSQL archives match records through GORM.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormMatchRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (p *GormPostgreSQL) SaveMatchRecord(record *models.MatchRecord) error {
	row := models.GormMatchRecord{
		RoomCode:   record.RoomCode,
		Winner:     record.Winner,
		Rounds:     record.Rounds,
		Players:    record.Players,
		ActionLog:  record.Log,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	}
	return p.db.Create(&row).Error
}

func (p *GormPostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	var rows []models.GormMatchRecord
	if err := p.db.Order("finished_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.MatchRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.MatchRecord{
			RoomCode:   row.RoomCode,
			Players:    row.Players,
			Winner:     row.Winner,
			Rounds:     row.Rounds,
			Log:        row.ActionLog,
			StartedAt:  row.StartedAt,
			FinishedAt: row.FinishedAt,
		})
	}
	return records, nil
}

func (p *GormPostgreSQL) GetPlayerStats(name string) (*models.PlayerStats, error) {
	var total, wins int64

	// jsonb containment: the players column holds a JSON array of names.
	err := p.db.Model(&models.GormMatchRecord{}).
		Where("players @> ?", fmt.Sprintf("[%q]", name)).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	if err := p.db.Model(&models.GormMatchRecord{}).
		Where("winner = ?", name).
		Count(&wins).Error; err != nil {
		return nil, err
	}

	if total == 0 && wins == 0 {
		return nil, ErrRecordNotFound
	}
	return &models.PlayerStats{
		Name:       name,
		TotalGames: int(total),
		Wins:       int(wins),
	}, nil
}

func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
