package main

import (
	"context"
	"fmt"
	"time"

	"github.com/arturojer/quantummus/cmd/quantummus/shared"
	"github.com/arturojer/quantummus/internal/bot"
	"github.com/arturojer/quantummus/internal/client"
	"github.com/arturojer/quantummus/internal/randutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BotCmd connects a built-in strategy to a running server.
type BotCmd struct {
	Strategy string `arg:"" optional:"" help:"Strategy to play (random, calling, folding, heuristic); overrides the config"`
	Config   string `short:"c" default:"bot.hcl" help:"HCL client config file (missing file uses defaults)"`
	Server   string `help:"Server URL, overrides the config"`
	Name     string `help:"Player name (default: strategy plus a random suffix)"`
	Room     string `help:"Room to join, overrides the config"`
	Seat     *int   `help:"Seat to take (0-3)"`
	Mode     string `help:"Kings mode for a new room (4 or 8)"`
	Seed     *int64 `help:"Seed for the strategy's random choices"`
	Debug    bool   `help:"Enable debug logging"`
	JSONLogs bool   `name:"json-logs" help:"Log as JSON instead of console output"`
}

func (c *BotCmd) Run() error {
	cfg, err := client.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	c.override(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := shared.ParseLevel(cfg.Player.LogLevel, c.Debug)
	if err != nil {
		return err
	}
	logger := shared.NewLogger(level, c.JSONLogs)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	b, err := bot.New(cfg.Player.Strategy, randutil.New(seed))
	if err != nil {
		return err
	}

	ctx, stop := shared.SignalContext(logger)
	defer stop()

	conn, err := dialWithRetry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Disconnect() }()

	agent := client.NewAgent(conn, b, logger)
	res, err := agent.Play(ctx, cfg.Player.Room, cfg.Player.Name, cfg.Player.Seat, cfg.Player.Mode)
	if err != nil {
		return err
	}

	logger.Info().
		Str("winner", res.WinnerName).
		Interface("scores", res.Scores).
		Int("hands", res.Hands).
		Int("moves", agent.Moves()).
		Msg("Game over")
	return nil
}

// override applies command line flags on top of the file config.
func (c *BotCmd) override(cfg *client.Config) {
	if c.Strategy != "" {
		cfg.Player.Strategy = c.Strategy
	}
	if c.Server != "" {
		cfg.Server.URL = c.Server
	}
	if c.Room != "" {
		cfg.Player.Room = c.Room
	}
	if c.Seat != nil {
		cfg.Player.Seat = c.Seat
	}
	if c.Mode != "" {
		cfg.Player.Mode = c.Mode
	}
	if c.Name != "" {
		cfg.Player.Name = c.Name
	}
	if cfg.Player.Name == "" {
		cfg.Player.Name = fmt.Sprintf("%s-%s", cfg.Player.Strategy, uuid.NewString()[:8])
	}
}

func dialWithRetry(ctx context.Context, cfg *client.Config, logger zerolog.Logger) (*client.Client, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.Server.ReconnectAttempts; attempt++ {
		if attempt > 0 {
			logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("Retrying connection")
			select {
			case <-time.After(cfg.ReconnectDelay()):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		conn := client.NewClient(cfg.Server.URL, logger)
		dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
		lastErr = conn.Connect(dialCtx)
		cancel()
		if lastErr == nil {
			return conn, nil
		}
	}
	return nil, fmt.Errorf("connect to %s: %w", cfg.Server.URL, lastErr)
}
