// models/models.go
package models

import (
	"time"

	"github.com/virugamacoder/secret-number-survivor/room"
)

// Command payloads (client -> server). Secret and call values travel as
// strings and are parsed at the server boundary; anything non-numeric is
// rejected before it reaches the engine.

type CreateRoomRequest struct {
	PlayerName string `json:"player_name"`
	MinValue   int    `json:"min_value,omitempty"`
	MaxValue   int    `json:"max_value,omitempty"`
}

type JoinRoomRequest struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
}

type RejoinRoomRequest struct {
	RoomCode    string `json:"room_code"`
	PlayerName  string `json:"player_name"`
	RejoinToken string `json:"rejoin_token,omitempty"`
}

type SetReadyRequest struct {
	RoomCode    string `json:"room_code"`
	SecretValue string `json:"secret_value"`
}

type StartGameRequest struct {
	RoomCode string `json:"room_code"`
}

type EliminateRequest struct {
	RoomCode string `json:"room_code"`
	Value    string `json:"value"`
}

// Outcome payloads (server -> client).

type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"is_host"`
	IsReady      bool   `json:"is_ready"`
	IsEliminated bool   `json:"is_eliminated"`
}

type LogEntryView struct {
	Player     string    `json:"player"`
	Value      int       `json:"value"`
	Eliminated []string  `json:"eliminated"`
	Timestamp  time.Time `json:"timestamp"`
}

type RoomView struct {
	Code        string         `json:"code"`
	Phase       string         `json:"phase"`
	MinValue    int            `json:"min_value"`
	MaxValue    int            `json:"max_value"`
	CurrentTurn int            `json:"current_turn"`
	Players     []PlayerView   `json:"players"`
	Log         []LogEntryView `json:"log,omitempty"`
	Winner      *PlayerView    `json:"winner,omitempty"`
}

// RoomWelcome is unicast to a player entering a room; the rejoin token is
// theirs alone and never broadcast.
type RoomWelcome struct {
	Room        RoomView `json:"room"`
	PlayerID    string   `json:"player_id"`
	RejoinToken string   `json:"rejoin_token"`
}

type PlayersChanged struct {
	RoomCode string       `json:"room_code"`
	Players  []PlayerView `json:"players"`
}

type EliminationResult struct {
	RoomCode    string         `json:"room_code"`
	Value       int            `json:"value"`
	Eliminated  []PlayerView   `json:"eliminated"`
	CurrentTurn int            `json:"current_turn"`
	Log         []LogEntryView `json:"log"`
}

type GameOver struct {
	RoomCode string      `json:"room_code"`
	Winner   *PlayerView `json:"winner,omitempty"`
}

type RoomDeleted struct {
	RoomCode string `json:"room_code"`
}

type CommandError struct {
	Message string `json:"message"`
}

// Converters from engine snapshots.

func NewPlayerView(p room.PlayerSnapshot) PlayerView {
	return PlayerView{
		ID:           p.ConnID,
		Name:         p.Name,
		IsHost:       p.IsHost,
		IsReady:      p.IsReady,
		IsEliminated: p.IsEliminated,
	}
}

func NewPlayerViews(players []room.PlayerSnapshot) []PlayerView {
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, NewPlayerView(p))
	}
	return views
}

func NewLogEntryViews(entries []room.LogEntry) []LogEntryView {
	views := make([]LogEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, LogEntryView{
			Player:     e.Player,
			Value:      e.Value,
			Eliminated: e.Eliminated,
			Timestamp:  e.Timestamp,
		})
	}
	return views
}

func NewRoomView(snap room.Snapshot) RoomView {
	view := RoomView{
		Code:        snap.Code,
		Phase:       string(snap.Phase),
		MinValue:    snap.MinValue,
		MaxValue:    snap.MaxValue,
		CurrentTurn: snap.CurrentTurn,
		Players:     NewPlayerViews(snap.Players),
		Log:         NewLogEntryViews(snap.Log),
	}
	if snap.Winner != nil {
		w := NewPlayerView(*snap.Winner)
		view.Winner = &w
	}
	return view
}

// MatchRecord is the archived result of one finished game.
type MatchRecord struct {
	RoomCode   string         `json:"room_code"`
	Players    []string       `json:"players"`
	Winner     string         `json:"winner"` // empty when no survivor
	Rounds     int            `json:"rounds"`
	Log        []LogEntryView `json:"log"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// PlayerStats aggregates a display name's archived results.
type PlayerStats struct {
	Name       string `json:"name"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
}
