package main

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Game   GameConfig
}

type ServerConfig struct {
	Address string
}

type GameConfig struct {
	TurnSeconds    int
	BoardSize      int
	MaxPlayers     int
	RoomCodeLength int
}

// LoadConfig reads config.yaml if present, otherwise runs on defaults.
// Every key can also be set through WORDTRAIL_* environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("server.address", ":42069")
	viper.SetDefault("game.turnseconds", 30)
	viper.SetDefault("game.boardsize", 30)
	viper.SetDefault("game.maxplayers", 12)
	viper.SetDefault("game.roomcodelength", 6)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("wordtrail")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
