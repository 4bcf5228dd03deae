// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/virugamacoder/secret-number-survivor/models"
)

// PostgreSQL is the plain database/sql implementation of Database, for
// deployments that prefer raw SQL over GORM.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) NOT NULL,
            winner VARCHAR(255),
            rounds INT NOT NULL DEFAULT 0,
            players JSONB NOT NULL,
            action_log JSONB NOT NULL,
            started_at TIMESTAMP NOT NULL,
            finished_at TIMESTAMP NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_match_records_winner ON match_records(winner)
    `)
	return err
}

func (p *PostgreSQL) SaveMatchRecord(record *models.MatchRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}
	actionLog, err := json.Marshal(record.Log)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO match_records (room_code, winner, rounds, players, action_log, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, record.RoomCode, record.Winner, record.Rounds, players, actionLog, record.StartedAt, record.FinishedAt)
	return err
}

func (p *PostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	rows, err := p.db.Query(`
        SELECT room_code, winner, rounds, players, action_log, started_at, finished_at
        FROM match_records
        ORDER BY finished_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var record models.MatchRecord
		var players, actionLog []byte
		if err := rows.Scan(&record.RoomCode, &record.Winner, &record.Rounds,
			&players, &actionLog, &record.StartedAt, &record.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &record.Players); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(actionLog, &record.Log); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) GetPlayerStats(name string) (*models.PlayerStats, error) {
	var total, wins int

	err := p.db.QueryRow(`
        SELECT COUNT(*) FROM match_records WHERE players @> $1
    `, fmt.Sprintf("[%q]", name)).Scan(&total)
	if err != nil {
		return nil, err
	}

	err = p.db.QueryRow(`
        SELECT COUNT(*) FROM match_records WHERE winner = $1
    `, name).Scan(&wins)
	if err != nil {
		return nil, err
	}

	if total == 0 && wins == 0 {
		return nil, ErrRecordNotFound
	}
	return &models.PlayerStats{
		Name:       name,
		TotalGames: total,
		Wins:       wins,
	}, nil
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
