// Package bot provides computer players that can fill empty seats.
package bot

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"sort"

	"github.com/arturojer/quantummus/internal/game"
)

// Bot decides for one seat. Each method is only called when the game is
// waiting on that seat for the matching kind of input.
type Bot interface {
	Name() string
	// Act returns a speaking or betting move; it must be one of s.ValidActions.
	Act(view game.SeatView, s game.Snapshot) game.Move
	// Discard returns between one and four slot indices.
	Discard(view game.SeatView, s game.Snapshot) []int
	// Declare answers the pairs or points question. holds is what the bot's
	// cards show before they collapse.
	Declare(view game.SeatView, s game.Snapshot, holds bool) bool
}

// Factory builds a bot from a random source.
type Factory func(rng *rand.Rand) Bot

var registry = map[string]Factory{
	"random":    func(rng *rand.Rand) Bot { return NewRandomBot(rng) },
	"calling":   func(*rand.Rand) Bot { return CallingBot{} },
	"folding":   func(*rand.Rand) Bot { return FoldingBot{} },
	"heuristic": func(rng *rand.Rand) Bot { return NewHeuristicBot(rng) },
}

// Names lists the registered strategies.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the named strategy.
func New(name string, rng *rand.Rand) (Bot, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot %q (have %v)", name, Names())
	}
	return f(rng), nil
}

// Input is a bot's answer to whatever the game is waiting on. Stage says
// which of the other fields applies.
type Input struct {
	Stage game.Stage
	Move  game.Move
	Slots []int
	Has   bool
}

// Decide asks b for the input s is waiting on. A bet below the minimum
// raise is lifted to it.
func Decide(view game.SeatView, s game.Snapshot, b Bot) Input {
	in := Input{Stage: s.Stage}
	switch s.Stage {
	case game.Discarding:
		in.Slots = b.Discard(view, s)
	case game.Declaring:
		in.Has = b.Declare(view, s, game.Holds(s.Phase, s.Mode, ranksOf(view)))
	default:
		in.Move = b.Act(view, s)
		if in.Move.Action == game.Bet && in.Move.Amount < s.MinRaise {
			in.Move.Amount = s.MinRaise
		}
	}
	return in
}

// Play asks b for whatever input the game needs from seat and applies it.
func Play(g *game.Game, seat int, b Bot) error {
	in := Decide(g.SeatView(seat), g.Snapshot(), b)
	switch in.Stage {
	case game.Discarding:
		return g.Discard(seat, in.Slots)
	case game.Declaring:
		return g.Declare(seat, in.Has)
	default:
		return g.Act(seat, in.Move)
	}
}

func ranksOf(view game.SeatView) game.Ranks {
	var r game.Ranks
	for i, c := range view.Cards {
		if i < game.HandSize {
			r[i] = c.Rank
		}
	}
	return r
}

func can(s game.Snapshot, a game.Action) bool {
	return slices.Contains(s.ValidActions, a)
}

// pick returns the first action in prefs that is currently allowed.
func pick(s game.Snapshot, prefs ...game.Action) game.Move {
	for _, a := range prefs {
		if can(s, a) {
			return game.Move{Action: a}
		}
	}
	if len(s.ValidActions) > 0 {
		return game.Move{Action: s.ValidActions[0]}
	}
	return game.Move{Action: game.Check}
}

func allSlots() []int { return []int{0, 1, 2, 3} }
