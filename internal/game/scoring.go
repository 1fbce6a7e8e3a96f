package game

import (
	"sort"

	"github.com/arturojer/quantummus/internal/deck"
)

// Ranks is a seat's four cards by rank, after collapse.
type Ranks [HandSize]deck.Rank

// PairsKind orders pairs combinations.
type PairsKind int

const (
	NoPairs PairsKind = iota
	OnePair
	TwoPair
	ThreeOfAKind
)

func (k PairsKind) String() string {
	return [...]string{"none", "pair", "two_pair", "three_of_a_kind"}[k]
}

// PairsHand is the pairs combination a seat holds. Four of a kind counts as
// two pair of the same rank.
type PairsHand struct {
	Kind PairsKind
	High deck.Rank
	Low  deck.Rank
}

// EvaluatePairs classifies ranks by their printed values.
func EvaluatePairs(ranks Ranks) PairsHand {
	counts := make(map[deck.Rank]int, HandSize)
	for _, r := range ranks {
		counts[r]++
	}

	var paired []deck.Rank
	for r, n := range counts {
		switch {
		case n == 4:
			return PairsHand{Kind: TwoPair, High: r, Low: r}
		case n == 3:
			return PairsHand{Kind: ThreeOfAKind, High: r}
		case n == 2:
			paired = append(paired, r)
		}
	}

	sort.Slice(paired, func(i, j int) bool { return paired[i] > paired[j] })
	switch len(paired) {
	case 2:
		return PairsHand{Kind: TwoPair, High: paired[0], Low: paired[1]}
	case 1:
		return PairsHand{Kind: OnePair, High: paired[0]}
	default:
		return PairsHand{Kind: NoPairs}
	}
}

// Score is a single comparable value, higher is better.
func (p PairsHand) Score() int {
	return int(p.Kind)*10000 + int(p.High)*100 + int(p.Low)
}

// PointsTotal sums the point value of ranks under mode.
func PointsTotal(mode deck.Mode, ranks Ranks) int {
	total := 0
	for _, r := range ranks {
		total += mode.Points(r)
	}
	return total
}

// HasGame reports whether total qualifies as a game hand.
func HasGame(total int) bool {
	return total >= GameThreshold
}

// gameOrder ranks game totals: 31 is best, then 32, then 40 down to 33.
var gameOrder = map[int]int{31: 8, 32: 7, 40: 6, 37: 5, 36: 4, 35: 3, 34: 2, 33: 1}

// GameScore is a comparable value for a game total, higher is better.
// Totals of 38 and 39 cannot be dealt and rank with 33.
func GameScore(total int) int {
	if s, ok := gameOrder[total]; ok {
		return s
	}
	if HasGame(total) {
		return 1
	}
	return 0
}

// Holds reports whether ranks qualify for a gated phase.
func Holds(phase Phase, mode deck.Mode, ranks Ranks) bool {
	switch phase {
	case Pairs:
		return EvaluatePairs(ranks).Kind != NoPairs
	case Points:
		return HasGame(PointsTotal(mode, ranks))
	default:
		return true
	}
}

// Scorer compares revealed hands for a phase.
type Scorer struct {
	Mode deck.Mode
	Mano int
}

// Winner returns the team that wins phase. Only seats marked eligible
// count. pointsRaw selects the raw-points comparison used when nobody holds
// a game hand. It returns NoTeam when no seat is eligible.
func (s Scorer) Winner(phase Phase, hands [Seats]Ranks, eligible [Seats]bool, pointsRaw bool) Team {
	best := [2]int{}
	has := [2]bool{}
	for seat := range Seats {
		if !eligible[seat] {
			continue
		}
		v := s.seatScore(phase, hands[seat], pointsRaw)
		t := TeamOf(seat)
		if !has[t] || v > best[t] {
			best[t] = v
			has[t] = true
		}
	}

	switch {
	case !has[TeamA] && !has[TeamB]:
		return NoTeam
	case !has[TeamB]:
		return TeamA
	case !has[TeamA]:
		return TeamB
	case best[TeamA] > best[TeamB]:
		return TeamA
	case best[TeamB] > best[TeamA]:
		return TeamB
	default:
		return TeamOf(s.Mano)
	}
}

func (s Scorer) seatScore(phase Phase, ranks Ranks, pointsRaw bool) int {
	switch phase {
	case LeadRank:
		best := 0
		for _, r := range ranks {
			best = max(best, s.Mode.Order(r))
		}
		return best
	case LowRank:
		low := int(deck.King) + 1
		for _, r := range ranks {
			low = min(low, s.Mode.Order(r))
		}
		// Lower card wins, so invert.
		return -low
	case Pairs:
		return EvaluatePairs(ranks).Score()
	case Points:
		total := PointsTotal(s.Mode, ranks)
		if pointsRaw {
			return total
		}
		return GameScore(total)
	default:
		return 0
	}
}
