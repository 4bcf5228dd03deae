package main

import (
	"time"

	"github.com/virugamacoder/secret-number-survivor/config"
	"github.com/virugamacoder/secret-number-survivor/logger"
	"github.com/virugamacoder/secret-number-survivor/monitor"
	"github.com/virugamacoder/secret-number-survivor/persistence"
	"github.com/virugamacoder/secret-number-survivor/room"
	"github.com/virugamacoder/secret-number-survivor/server"
	"github.com/virugamacoder/secret-number-survivor/services"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Match archival is optional; without postgres the server keeps no
	// history and every game lives purely in memory.
	var db persistence.Database
	if cfg.Database.Enabled {
		db, err = persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Log.Info("Database connection successful.")
	}
	history := services.NewHistoryService(db)

	rooms := room.NewManager(room.Config{
		MaxPlayers:      cfg.Game.MaxPlayers,
		CodeLength:      cfg.Game.CodeLength,
		DefaultMinValue: cfg.Game.DefaultMinValue,
		DefaultMaxValue: cfg.Game.DefaultMaxValue,
		GracePeriod:     time.Duration(cfg.Game.GracePeriodSeconds) * time.Second,
	})
	defer rooms.Close()

	mon := monitor.NewMonitor("secret_number_survivor")
	mon.StartServer(cfg.Server.MetricsAddress)

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, cfg.Server.RPCAddress, rooms, history, mon)

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
