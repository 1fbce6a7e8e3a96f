// Package simulator plays bot-versus-bot games in parallel and collects
// statistics for one strategy against another.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/arturojer/quantummus/internal/bot"
	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/game"
	"github.com/arturojer/quantummus/internal/randutil"
	"github.com/arturojer/quantummus/internal/statistics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const defaultMaxSteps = 50000

// ErrStalled is returned when a game exceeds its step budget.
var ErrStalled = errors.New("game stalled")

// Config holds configuration for running simulations.
type Config struct {
	Games    int
	Hero     string
	Opponent string
	Mode     deck.Mode
	WinScore int
	Seed     int64
	Parallel int
	Timeout  time.Duration // Per game; zero disables
	MaxSteps int
	Logger   zerolog.Logger

	// Progress, if set, is called after every finished game.
	Progress func(done, total int)
}

// Simulator runs duplicate games: every deal is played twice with the
// hero on each team, so card luck cancels out.
type Simulator struct {
	config Config
}

// New creates a simulator, filling in defaults.
func New(config Config) (*Simulator, error) {
	if config.Games < 1 {
		return nil, fmt.Errorf("games must be positive, got %d", config.Games)
	}
	for _, name := range []string{config.Hero, config.Opponent} {
		if _, err := bot.New(name, nil); err != nil {
			return nil, err
		}
	}
	if config.Mode == 0 {
		config.Mode = deck.FourKings
	}
	if config.WinScore == 0 {
		config.WinScore = game.DefaultWinScore
	}
	if config.Parallel < 1 {
		config.Parallel = runtime.GOMAXPROCS(0)
	}
	if config.MaxSteps < 1 {
		config.MaxSteps = defaultMaxSteps
	}
	return &Simulator{config: config}, nil
}

// Config returns the effective configuration.
func (s *Simulator) Config() Config { return s.config }

// Run plays every game and returns the aggregated statistics. Results are
// folded in deal order, so a seed always reproduces the same numbers.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	total := s.config.Games * 2
	results := make([]statistics.GameResult, total)
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for i := range s.config.Games {
		seed := fmt.Sprintf("sim-%d-%d", s.config.Seed, i)
		for k, team := range []game.Team{game.TeamA, game.TeamB} {
			g.Go(func() error {
				res, err := s.playWithTimeout(ctx, seed, team)
				if err != nil {
					return fmt.Errorf("deal %s (hero on %s): %w", seed, team, err)
				}
				results[i*2+k] = res
				n := done.Add(1)
				if s.config.Progress != nil {
					s.config.Progress(int(n), total)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

func (s *Simulator) playWithTimeout(ctx context.Context, seed string, hero game.Team) (statistics.GameResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	return s.PlayGame(ctx, seed, hero)
}

// PlayGame plays one full game from seed with the hero strategy seated on
// team hero.
func (s *Simulator) PlayGame(ctx context.Context, seed string, hero game.Team) (statistics.GameResult, error) {
	res := statistics.GameResult{Seed: seed, Team: hero}

	botRNG := randutil.NewFromString(seed + "|bots|" + hero.String())
	var seats [game.Seats]bot.Bot
	var names [game.Seats]string
	for seat := range game.Seats {
		name := s.config.Opponent
		if game.TeamOf(seat) == hero {
			name = s.config.Hero
		}
		b, err := bot.New(name, botRNG)
		if err != nil {
			return res, err
		}
		seats[seat] = b
		names[seat] = fmt.Sprintf("%s-%d", name, seat)
	}

	g, err := game.New(seed, names, s.config.Mode,
		game.WithWinScore(s.config.WinScore),
		game.WithRNG(randutil.NewFromString(seed)),
		game.WithLogger(s.config.Logger),
	)
	if err != nil {
		return res, err
	}

	for steps := 0; !g.Over(); steps++ {
		if steps >= s.config.MaxSteps {
			return res, fmt.Errorf("%w after %d moves", ErrStalled, steps)
		}
		if steps%64 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		seat := g.ActiveSeat()
		if seat < 0 {
			pending := g.PendingSeats()
			if len(pending) == 0 {
				break
			}
			seat = pending[0]
		}
		if err := bot.Play(g, seat, seats[seat]); err != nil {
			s.config.Logger.Debug().Err(err).Int("seat", seat).Str("bot", seats[seat].Name()).Msg("bot move rejected, applying default")
			if err := g.ApplyDefault(seat); err != nil {
				return res, err
			}
		}
		record(&res, hero, g.DrainEvents())
		if err := g.Err(); err != nil {
			return res, err
		}
	}
	record(&res, hero, g.DrainEvents())
	if err := g.Err(); err != nil {
		return res, err
	}

	scores := g.Scores()
	res.Margin = scores[hero] - scores[hero.Other()]
	res.Won = g.Winner() == hero
	return res, nil
}

func record(res *statistics.GameResult, hero game.Team, events []game.Event) {
	for _, e := range events {
		end, ok := e.(game.HandEndEvent)
		if !ok {
			continue
		}
		res.Hands++
		res.Penalties += end.Summary.Penalties[hero]
		for _, r := range end.Summary.Results {
			i := phaseIndex(r.Phase)
			if i < 0 || r.Points == 0 || r.Winner == game.NoTeam {
				continue
			}
			res.Resolved[i]++
			if r.Winner == hero {
				res.PhaseWins[i]++
			}
		}
	}
}

func phaseIndex(p game.Phase) int {
	for i, bp := range game.BettingPhases {
		if bp == p {
			return i
		}
	}
	return -1
}
