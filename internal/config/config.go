package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds game-related configuration
type GameConfig struct {
	MinPlayers     int
	MaxPlayers     int
	RoomCodeLength int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// SetDefaults registers default values for every config key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("env", "development")
	v.SetDefault("min-players", 3)
	v.SetDefault("max-players", 10)
	v.SetDefault("room-code-length", 6)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
}

// Load resolves configuration from the given viper instance. A .env file
// in the working directory is folded into the environment first, so both
// flags and QUIZPARTY_* variables resolve through the same keys.
func Load(v *viper.Viper) *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("port"),
			Host: v.GetString("host"),
			Env:  v.GetString("env"),
		},
		Game: GameConfig{
			MinPlayers:     v.GetInt("min-players"),
			MaxPlayers:     v.GetInt("max-players"),
			RoomCodeLength: v.GetInt("room-code-length"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("log-level"),
			Format: v.GetString("log-format"),
		},
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}
