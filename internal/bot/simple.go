package bot

import (
	rand "math/rand/v2"

	"github.com/arturojer/quantummus/internal/game"
)

// RandomBot picks uniformly among the allowed moves.
type RandomBot struct {
	rng *rand.Rand
}

func NewRandomBot(rng *rand.Rand) *RandomBot {
	return &RandomBot{rng: rng}
}

func (*RandomBot) Name() string { return "random" }

func (r *RandomBot) Act(_ game.SeatView, s game.Snapshot) game.Move {
	if len(s.ValidActions) == 0 {
		return game.Move{Action: game.Check}
	}
	a := s.ValidActions[r.rng.IntN(len(s.ValidActions))]
	m := game.Move{Action: a}
	if a == game.Bet {
		m.Amount = s.MinRaise + r.rng.IntN(3)
	}
	return m
}

func (r *RandomBot) Discard(game.SeatView, game.Snapshot) []int {
	var slots []int
	for slot := range game.HandSize {
		if r.rng.IntN(2) == 0 {
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		slots = []int{r.rng.IntN(game.HandSize)}
	}
	return slots
}

func (r *RandomBot) Declare(_ game.SeatView, _ game.Snapshot, holds bool) bool {
	if r.rng.IntN(10) == 0 {
		return !holds
	}
	return holds
}

// CallingBot never asks for mus, never bets and accepts every bet.
type CallingBot struct{}

func (CallingBot) Name() string { return "calling" }

func (CallingBot) Act(_ game.SeatView, s game.Snapshot) game.Move {
	return pick(s, game.Cut, game.Accept, game.Check)
}

func (CallingBot) Discard(game.SeatView, game.Snapshot) []int { return allSlots() }

func (CallingBot) Declare(_ game.SeatView, _ game.Snapshot, holds bool) bool { return holds }

// FoldingBot passes and rejects everything.
type FoldingBot struct{}

func (FoldingBot) Name() string { return "folding" }

func (FoldingBot) Act(_ game.SeatView, s game.Snapshot) game.Move {
	return pick(s, game.Cut, game.Reject, game.Check)
}

func (FoldingBot) Discard(game.SeatView, game.Snapshot) []int { return allSlots() }

func (FoldingBot) Declare(_ game.SeatView, _ game.Snapshot, holds bool) bool { return holds }
