package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/arturojer/quantummus/cmd/quantummus/shared"
	"github.com/arturojer/quantummus/internal/handlog"
	"github.com/arturojer/quantummus/internal/server"
)

// ServerCmd runs the websocket server.
type ServerCmd struct {
	Config   string `short:"c" default:"quantummus.hcl" help:"HCL config file (missing file uses defaults)"`
	Addr     string `help:"Listen address, overrides the config (host:port)"`
	Debug    bool   `help:"Enable debug logging"`
	JSONLogs bool   `name:"json-logs" help:"Log as JSON instead of console output"`
	HandLog  string `name:"hand-log" help:"Directory for hand history, overrides the config"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.HandLog != "" {
		cfg.Server.HandHistoryDir = c.HandLog
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := shared.ParseLevel(cfg.Server.LogLevel, c.Debug)
	if err != nil {
		return err
	}
	logger := shared.NewLogger(level, c.JSONLogs)

	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}
	turnTimeout, botDelay, flush := cfg.Durations()

	var opts []server.Option
	var hands *handlog.Manager
	if dir := cfg.Server.HandHistoryDir; dir != "" {
		hands = handlog.NewManager(logger, handlog.ManagerConfig{
			BaseDir:       dir,
			FlushInterval: flush,
			IncludeCards:  cfg.Server.IncludeCards,
		})
		defer hands.Shutdown()
		opts = append(opts, server.WithHandLog(hands))
	}

	s, err := server.NewServer(cfg, logger, opts...)
	if err != nil {
		return err
	}

	logger.Info().
		Str("address", addr).
		Dur("turn_timeout", turnTimeout).
		Dur("bot_delay", botDelay).
		Int("configured_rooms", len(cfg.Rooms)).
		Str("hand_history", cfg.Server.HandHistoryDir).
		Str("version", version).
		Msg("Starting Quantum Mus server")

	ctx, stop := shared.SignalContext(logger)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		if err := s.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
