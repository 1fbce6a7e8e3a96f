package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arturojer/quantummus/internal/bot"
	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/game"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server Settings
	Rooms  []RoomConfig
}

// fileConfig makes the server block optional.
type fileConfig struct {
	Server *Settings    `hcl:"server,block"`
	Rooms  []RoomConfig `hcl:"room,block"`
}

// Settings holds server-level options.
type Settings struct {
	Address          string `hcl:"address,optional"`
	Port             int    `hcl:"port,optional"`
	LogLevel         string `hcl:"log_level,optional"`
	TurnTimeout      string `hcl:"turn_timeout,optional"`
	BotDelay         string `hcl:"bot_delay,optional"`
	HandHistoryDir   string `hcl:"hand_history_dir,optional"`
	HandHistoryFlush string `hcl:"hand_history_flush,optional"`
	IncludeCards     bool   `hcl:"include_cards,optional"`
}

// RoomConfig describes a room created at startup. Rooms clients ask for by
// an unknown name are created with DefaultRoom's settings.
type RoomConfig struct {
	Name      string      `hcl:"name,label"`
	Mode      string      `hcl:"mode,optional"`
	WinScore  int         `hcl:"win_score,optional"`
	TeamNames []string    `hcl:"team_names,optional"`
	Seed      string      `hcl:"seed,optional"`
	Bots      []BotConfig `hcl:"bot,block"`
}

// BotConfig seats a built-in strategy.
type BotConfig struct {
	Strategy string `hcl:"strategy,label"`
	Seat     int    `hcl:"seat"`
	Name     string `hcl:"name,optional"`
}

const (
	defaultAddress     = "localhost"
	defaultPort        = 8080
	defaultLogLevel    = "info"
	defaultTurnTimeout = 30 * time.Second
	defaultFlush       = 10 * time.Second
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultRoom is the template for rooms created on demand.
func DefaultRoom(name string) RoomConfig {
	return RoomConfig{
		Name:      name,
		Mode:      deck.FourKings.String(),
		WinScore:  game.DefaultWinScore,
		TeamNames: game.DefaultTeamNames[:],
	}
}

// LoadConfig reads an HCL file. A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg := Config{Rooms: raw.Rooms}
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.TurnTimeout == "" {
		c.Server.TurnTimeout = defaultTurnTimeout.String()
	}
	if c.Server.HandHistoryFlush == "" {
		c.Server.HandHistoryFlush = defaultFlush.String()
	}

	for i := range c.Rooms {
		r := &c.Rooms[i]
		d := DefaultRoom(r.Name)
		if r.Mode == "" {
			r.Mode = d.Mode
		}
		if r.WinScore == 0 {
			r.WinScore = d.WinScore
		}
		if len(r.TeamNames) == 0 {
			r.TeamNames = d.TeamNames
		}
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	for _, d := range []struct{ name, value string }{
		{"turn_timeout", c.Server.TurnTimeout},
		{"bot_delay", c.Server.BotDelay},
		{"hand_history_flush", c.Server.HandHistoryFlush},
	} {
		if d.value == "" {
			continue
		}
		if v, err := time.ParseDuration(d.value); err != nil || v < 0 {
			return fmt.Errorf("invalid %s: %q", d.name, d.value)
		}
	}

	seen := make(map[string]bool, len(c.Rooms))
	for _, r := range c.Rooms {
		if seen[r.Name] {
			return fmt.Errorf("room %s: defined twice", r.Name)
		}
		seen[r.Name] = true
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks one room block.
func (r RoomConfig) Validate() error {
	if r.Name == "" {
		return errors.New("room name is required")
	}
	if _, err := deck.ParseMode(r.Mode); err != nil {
		return fmt.Errorf("room %s: %w", r.Name, err)
	}
	if r.WinScore < 1 {
		return fmt.Errorf("room %s: win_score must be positive", r.Name)
	}
	if len(r.TeamNames) != 0 && len(r.TeamNames) != 2 {
		return fmt.Errorf("room %s: team_names needs exactly two entries", r.Name)
	}
	taken := make(map[int]bool, game.Seats)
	for _, b := range r.Bots {
		if b.Seat < 0 || b.Seat >= game.Seats {
			return fmt.Errorf("room %s: bot seat %d out of range", r.Name, b.Seat)
		}
		if taken[b.Seat] {
			return fmt.Errorf("room %s: seat %d has two bots", r.Name, b.Seat)
		}
		taken[b.Seat] = true
		if _, err := bot.New(b.Strategy, nil); err != nil {
			return fmt.Errorf("room %s: %w", r.Name, err)
		}
	}
	return nil
}

// Address returns host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Durations returns the parsed timing settings. Validate must pass first.
func (c *Config) Durations() (turnTimeout, botDelay, flush time.Duration) {
	turnTimeout, _ = time.ParseDuration(c.Server.TurnTimeout)
	if c.Server.BotDelay != "" {
		botDelay, _ = time.ParseDuration(c.Server.BotDelay)
	}
	flush, _ = time.ParseDuration(c.Server.HandHistoryFlush)
	return turnTimeout, botDelay, flush
}

// Room returns the named room block, if configured.
func (c *Config) Room(name string) (RoomConfig, bool) {
	for _, r := range c.Rooms {
		if r.Name == name {
			return r, true
		}
	}
	return RoomConfig{}, false
}
