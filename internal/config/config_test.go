package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg := Load(v)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, 10, cfg.Game.MaxPlayers)
	assert.Equal(t, 6, cfg.Game.RoomCodeLength)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("port", "9090")
	v.Set("env", "production")
	v.Set("room-code-length", 4)

	cfg := Load(v)

	assert.Equal(t, "0.0.0.0:9090", cfg.GetAddr())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 4, cfg.Game.RoomCodeLength)
}
