package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/arturojer/quantummus/cmd/quantummus/shared"
	"github.com/arturojer/quantummus/internal/bot"
	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/simulator"
	"github.com/rs/zerolog"
)

// SimulateCmd plays a hero strategy against an opponent strategy.
type SimulateCmd struct {
	Games    int           `short:"n" default:"200" help:"Number of deals (each is played from both sides)"`
	Hero     string        `default:"heuristic" help:"Strategy under test"`
	Opponent string        `default:"calling" help:"Opposing strategy"`
	Mode     string        `default:"4" enum:"4,8" help:"Kings mode (4 or 8)"`
	WinScore int           `name:"win-score" default:"40" help:"Points needed to win a game"`
	Seed     *int64        `help:"Deterministic seed (optional)"`
	Parallel int           `short:"p" help:"Concurrent games (default GOMAXPROCS)"`
	Timeout  time.Duration `default:"30s" help:"Per-game timeout"`
	Debug    bool          `help:"Enable debug logging"`
	Quiet    bool          `short:"q" help:"Hide the progress bar"`
	List     bool          `help:"List the available strategies and exit"`
}

func (c *SimulateCmd) Run() error {
	if c.List {
		fmt.Println(strings.Join(bot.Names(), "\n"))
		return nil
	}

	mode, err := deck.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	level := zerolog.WarnLevel
	if c.Debug {
		level = zerolog.DebugLevel
	}
	logger := shared.SetupLogger(level)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}

	cfg := simulator.Config{
		Games:    c.Games,
		Hero:     c.Hero,
		Opponent: c.Opponent,
		Mode:     mode,
		WinScore: c.WinScore,
		Seed:     seed,
		Parallel: c.Parallel,
		Timeout:  c.Timeout,
		Logger:   logger,
	}
	var progress *dotProgress
	if !c.Quiet {
		progress = &dotProgress{width: 40}
		cfg.Progress = progress.update
	}

	sim, err := simulator.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := shared.SignalContext(logger)
	defer stop()

	fmt.Printf("Simulating %d deals of %s vs %s (seed %d)\n", c.Games, c.Hero, c.Opponent, seed)
	start := time.Now()
	stats, err := sim.Run(ctx)
	if progress != nil {
		progress.finish()
	}
	if err != nil {
		return err
	}
	return simulator.Report(os.Stdout, sim.Config(), stats, time.Since(start))
}

// dotProgress prints a fixed-width row of dots as games finish.
type dotProgress struct {
	mu      sync.Mutex
	width   int
	printed int
}

func (p *dotProgress) update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	target := done * p.width / max(total, 1)
	for ; p.printed < target; p.printed++ {
		fmt.Print(".")
	}
}

func (p *dotProgress) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.printed > 0 {
		fmt.Println()
	}
}
