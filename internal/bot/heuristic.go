package bot

import (
	rand "math/rand/v2"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/game"
)

// Strength is how good a hand looks for one phase.
type Strength int

const (
	Weak Strength = iota
	Fair
	Strong
	Monster
)

func (s Strength) String() string {
	return [...]string{"weak", "fair", "strong", "monster"}[s]
}

// HeuristicBot reads its own cards at face value. It bets strong hands,
// accepts fair ones and bluffs now and then.
type HeuristicBot struct {
	rng   *rand.Rand
	bluff float64
}

func NewHeuristicBot(rng *rand.Rand) *HeuristicBot {
	return &HeuristicBot{rng: rng, bluff: 0.08}
}

func (*HeuristicBot) Name() string { return "heuristic" }

// Assess rates ranks for phase under mode.
func Assess(phase game.Phase, mode deck.Mode, ranks game.Ranks) Strength {
	switch phase {
	case game.Intro:
		lead := Assess(game.LeadRank, mode, ranks)
		pairs := Assess(game.Pairs, mode, ranks)
		pts := Assess(game.Points, mode, ranks)
		return max(lead, pairs, pts)
	case game.LeadRank:
		return countStrength(count(mode, ranks, deck.King))
	case game.LowRank:
		return countStrength(count(mode, ranks, deck.Ace))
	case game.Pairs:
		p := game.EvaluatePairs(ranks)
		switch {
		case p.Kind == game.TwoPair:
			return Monster
		case p.Kind == game.ThreeOfAKind:
			return Strong
		case p.Kind == game.OnePair && mode.Normalize(p.High) == deck.King:
			return Strong
		case p.Kind == game.OnePair:
			return Fair
		}
	case game.Points:
		total := game.PointsTotal(mode, ranks)
		switch {
		case total == 31:
			return Monster
		case total == 32 || total == 40:
			return Strong
		case game.HasGame(total):
			return Fair
		case total >= 29:
			return Fair
		}
	}
	return Weak
}

func count(mode deck.Mode, ranks game.Ranks, want deck.Rank) int {
	n := 0
	for _, r := range ranks {
		if mode.Normalize(r) == want {
			n++
		}
	}
	return n
}

func countStrength(n int) Strength {
	switch {
	case n >= 3:
		return Monster
	case n == 2:
		return Strong
	case n == 1:
		return Fair
	default:
		return Weak
	}
}

func (h *HeuristicBot) Act(view game.SeatView, s game.Snapshot) game.Move {
	st := Assess(s.Phase, s.Mode, ranksOf(view))

	if s.Stage == game.Speaking {
		if st >= Strong {
			return pick(s, game.Cut)
		}
		return pick(s, game.Mus)
	}

	if s.Status == game.BetPlaced {
		switch {
		case st == Monster && can(s, game.Bet) && h.rng.IntN(3) == 0:
			return game.Move{Action: game.Bet, Amount: s.MinRaise}
		case st == Monster:
			return pick(s, game.Accept)
		case st == Strong && (s.BetKind != game.AllInBet || h.rng.IntN(2) == 0):
			return pick(s, game.Accept)
		case st == Fair && s.Stake <= game.MinBet:
			return pick(s, game.Accept)
		default:
			return pick(s, game.Reject)
		}
	}

	switch {
	case st == Monster && can(s, game.AllIn) && h.rng.IntN(8) == 0:
		return game.Move{Action: game.AllIn}
	case st >= Strong, h.rng.Float64() < h.bluff:
		if can(s, game.Bet) {
			return game.Move{Action: game.Bet, Amount: s.MinRaise}
		}
	}
	return pick(s, game.Check)
}

// Discard keeps kings, aces and paired cards.
func (h *HeuristicBot) Discard(view game.SeatView, s game.Snapshot) []int {
	ranks := ranksOf(view)
	seen := make(map[deck.Rank]int, game.HandSize)
	for _, r := range ranks {
		seen[r]++
	}
	var slots []int
	for i, r := range ranks {
		n := s.Mode.Normalize(r)
		if n == deck.King || n == deck.Ace || seen[r] > 1 {
			continue
		}
		slots = append(slots, i)
	}
	if len(slots) == 0 {
		// Everything is worth keeping; throw the first ace to chase kings.
		for i, r := range ranks {
			if s.Mode.Normalize(r) == deck.Ace {
				return []int{i}
			}
		}
		return []int{h.rng.IntN(game.HandSize)}
	}
	return slots
}

func (*HeuristicBot) Declare(_ game.SeatView, _ game.Snapshot, holds bool) bool {
	return holds
}
