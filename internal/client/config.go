package client

import (
	"fmt"
	"os"
	"time"

	"github.com/arturojer/quantummus/internal/bot"
	"github.com/arturojer/quantummus/internal/deck"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config describes a remote bot: where to connect and how to play.
type Config struct {
	Server ServerConnection `hcl:"server,block"`
	Player PlayerSettings   `hcl:"player,block"`
}

// ServerConnection contains server connection settings
type ServerConnection struct {
	URL               string `hcl:"url"`
	ConnectTimeout    int    `hcl:"connect_timeout,optional"`
	ReconnectAttempts int    `hcl:"reconnect_attempts,optional"`
	ReconnectDelay    int    `hcl:"reconnect_delay,optional"`
}

// PlayerSettings chooses the seat and the strategy that plays it.
type PlayerSettings struct {
	Name     string `hcl:"name"`
	Strategy string `hcl:"strategy,optional"`
	Room     string `hcl:"room,optional"`
	Seat     *int   `hcl:"seat,optional"`
	Mode     string `hcl:"mode,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// DefaultConfig returns default client configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConnection{
			URL:               "ws://localhost:8080/ws",
			ConnectTimeout:    10,
			ReconnectAttempts: 3,
			ReconnectDelay:    2,
		},
		Player: PlayerSettings{
			Strategy: "heuristic",
			Room:     "default",
			LogLevel: "info",
		},
	}
}

// LoadConfig loads client configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	if c.Server.ConnectTimeout == 0 {
		c.Server.ConnectTimeout = defaults.Server.ConnectTimeout
	}
	if c.Server.ReconnectAttempts == 0 {
		c.Server.ReconnectAttempts = defaults.Server.ReconnectAttempts
	}
	if c.Server.ReconnectDelay == 0 {
		c.Server.ReconnectDelay = defaults.Server.ReconnectDelay
	}
	if c.Player.Strategy == "" {
		c.Player.Strategy = defaults.Player.Strategy
	}
	if c.Player.Room == "" {
		c.Player.Room = defaults.Player.Room
	}
	if c.Player.LogLevel == "" {
		c.Player.LogLevel = defaults.Player.LogLevel
	}
}

// Validate validates the client configuration
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Player.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.Server.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts cannot be negative")
	}
	if c.Server.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}
	if _, err := bot.New(c.Player.Strategy, nil); err != nil {
		return err
	}
	if c.Player.Seat != nil && (*c.Player.Seat < 0 || *c.Player.Seat > 3) {
		return fmt.Errorf("seat %d out of range", *c.Player.Seat)
	}
	if c.Player.Mode != "" {
		if _, err := deck.ParseMode(c.Player.Mode); err != nil {
			return err
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Player.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Player.LogLevel)
	}
	return nil
}

// ConnectTimeout returns the dial timeout.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Server.ConnectTimeout) * time.Second
}

// ReconnectDelay returns the pause between dial attempts.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Server.ReconnectDelay) * time.Second
}
