package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type GameConfig struct {
	MaxPlayers         int `mapstructure:"max_players"`
	CodeLength         int `mapstructure:"code_length"`
	DefaultMinValue    int `mapstructure:"default_min_value"`
	DefaultMaxValue    int `mapstructure:"default_max_value"`
	GracePeriodSeconds int `mapstructure:"grace_period_seconds"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("game.max_players", 20)
	viper.SetDefault("game.code_length", 4)
	viper.SetDefault("game.default_min_value", 1)
	viper.SetDefault("game.default_max_value", 100)
	viper.SetDefault("game.grace_period_seconds", 10)
	viper.SetDefault("database.enabled", false)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		// Running purely on defaults is supported; only real read
		// failures are fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
