package game

import (
	"testing"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/stretchr/testify/assert"
)

func ranksOf(s string) Ranks {
	var r Ranks
	for i, c := range deck.MustParseCards(s) {
		r[i] = c.Rank
	}
	return r
}

func TestEvaluatePairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand string
		want PairsHand
	}{
		{"Ko 7o 5c 4b", PairsHand{Kind: NoPairs}},
		{"Ko Kc 5c 4b", PairsHand{Kind: OnePair, High: deck.King}},
		{"5o 5c 5e 4b", PairsHand{Kind: ThreeOfAKind, High: deck.Five}},
		{"Jo Jc 4e 4b", PairsHand{Kind: TwoPair, High: deck.Jack, Low: deck.Four}},
		{"7o 7c 7e 7b", PairsHand{Kind: TwoPair, High: deck.Seven, Low: deck.Seven}},
	}
	for _, tt := range tests {
		t.Run(tt.hand, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EvaluatePairs(ranksOf(tt.hand)))
		})
	}

	three := EvaluatePairs(ranksOf("4o 4c 4e Kb"))
	two := EvaluatePairs(ranksOf("Ko Kc Qe Qb"))
	one := EvaluatePairs(ranksOf("Ko Kc Qe Jb"))
	assert.Greater(t, three.Score(), two.Score(), "three of a kind beats two pair")
	assert.Greater(t, two.Score(), one.Score())
}

func TestPointsAndGameOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 31, PointsTotal(deck.FourKings, ranksOf("Ko Jc 7e 4b")))
	assert.Equal(t, 40, PointsTotal(deck.FourKings, ranksOf("Ko Kc Qe Jb")))
	assert.Equal(t, 13, PointsTotal(deck.FourKings, ranksOf("3o 3c 3e 4b")))
	assert.Equal(t, 34, PointsTotal(deck.EightKings, ranksOf("3o 3c 3e 4b")))

	order := []int{31, 32, 40, 37, 36, 35, 34, 33}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, GameScore(order[i-1]), GameScore(order[i]), "%d beats %d", order[i-1], order[i])
	}
	assert.Zero(t, GameScore(30))
	assert.False(t, HasGame(30))
	assert.True(t, HasGame(31))
}

func TestScorerWinner(t *testing.T) {
	t.Parallel()

	hands := [Seats]Ranks{
		ranksOf("Ko 4o 5o 6o"),
		ranksOf("Qc 4c 5c 6c"),
		ranksOf("Jb 2b 5b 6b"),
		ranksOf("Ke Ae 5e 6e"),
	}
	all := AllEligible()

	s := Scorer{Mode: deck.FourKings, Mano: 0}
	assert.Equal(t, TeamA, s.Winner(LeadRank, hands, all, false), "tie on kings goes to mano")
	assert.Equal(t, TeamB, Scorer{Mode: deck.FourKings, Mano: 3}.Winner(LeadRank, hands, all, false))
	assert.Equal(t, TeamB, s.Winner(LowRank, hands, all, false), "ace is the lowest card")

	none := [Seats]bool{}
	assert.Equal(t, NoTeam, s.Winner(Pairs, hands, none, false))
	onlyB := [Seats]bool{false, true, false, false}
	assert.Equal(t, TeamB, s.Winner(Pairs, hands, onlyB, false))

	assert.Equal(t, TeamA, s.Winner(Points, hands, all, true), "raw points tie at 25 and mano wins")
}

func TestEightKingsOrdering(t *testing.T) {
	t.Parallel()

	hands := [Seats]Ranks{
		ranksOf("3o 4o 5o 6o"),
		ranksOf("Kc 4c 5c 6c"),
		ranksOf("Qb 4b 5b 6b"),
		ranksOf("Qe 4e 5e 6e"),
	}
	s := Scorer{Mode: deck.EightKings, Mano: 1}
	assert.Equal(t, TeamB, s.Winner(LeadRank, hands, AllEligible(), false), "three plays as king; tie to mano")
	s.Mano = 0
	assert.Equal(t, TeamA, s.Winner(LeadRank, hands, AllEligible(), false))
}
