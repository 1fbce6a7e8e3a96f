package main

import (
	"strings"
	"testing"

	"github.com/arturojer/quantummus/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotCmdOverride(t *testing.T) {
	seat := 3
	cmd := &BotCmd{Strategy: "folding", Server: "http://mus:9000", Room: "late", Seat: &seat, Mode: "8"}
	cfg := client.DefaultConfig()
	cmd.override(cfg)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "folding", cfg.Player.Strategy)
	assert.Equal(t, "http://mus:9000", cfg.Server.URL)
	assert.Equal(t, "late", cfg.Player.Room)
	assert.Equal(t, 3, *cfg.Player.Seat)
	assert.Equal(t, "8", cfg.Player.Mode)
	assert.True(t, strings.HasPrefix(cfg.Player.Name, "folding-"), cfg.Player.Name)
}

func TestBotCmdKeepsConfiguredName(t *testing.T) {
	cfg := client.DefaultConfig()
	cfg.Player.Name = "pete"
	(&BotCmd{}).override(cfg)
	assert.Equal(t, "pete", cfg.Player.Name)
	assert.Equal(t, "heuristic", cfg.Player.Strategy)
	assert.Nil(t, cfg.Player.Seat)
}
