package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Error(t, cfg.Validate(), "a name is required")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  url = "http://mus.local:9000"
  connect_timeout = 3
}

player {
  name     = "quantum-pete"
  strategy = "random"
  room     = "friday"
  seat     = 2
  mode     = "8"
}
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://mus.local:9000", cfg.Server.URL)
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout())
	assert.Equal(t, 2*time.Second, cfg.ReconnectDelay())
	assert.Equal(t, "quantum-pete", cfg.Player.Name)
	assert.Equal(t, "random", cfg.Player.Strategy)
	assert.Equal(t, "friday", cfg.Player.Room)
	require.NotNil(t, cfg.Player.Seat)
	assert.Equal(t, 2, *cfg.Player.Seat)
	assert.Equal(t, "info", cfg.Player.LogLevel)
}

func TestConfigValidate(t *testing.T) {
	seat := 7
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"strategy", func(c *Config) { c.Player.Strategy = "shark" }},
		{"seat", func(c *Config) { c.Player.Seat = &seat }},
		{"mode", func(c *Config) { c.Player.Mode = "6" }},
		{"log level", func(c *Config) { c.Player.LogLevel = "loud" }},
		{"timeout", func(c *Config) { c.Server.ConnectTimeout = 0 }},
		{"url", func(c *Config) { c.Server.URL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Player.Name = "pete"
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte("server {"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
