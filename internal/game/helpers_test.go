package game

import (
	"testing"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/stretchr/testify/require"
)

type fixedSource float64

func (f fixedSource) UniformFloat(string) float64 { return float64(f) }

var testPlayers = [Seats]string{"north", "west", "south", "east"}

// newTestGame deals the given hands (seat 0 first) with no superposition and
// a collapse source that keeps entangled cards at their printed rank.
func newTestGame(t *testing.T, hands [Seats]string, opts ...Option) *Game {
	t.Helper()
	var cards []deck.Card
	for _, h := range hands {
		parsed := deck.MustParseCards(h)
		require.Len(t, parsed, HandSize)
		cards = append(cards, parsed...)
	}
	base := []Option{WithStackedDeal(cards), WithoutSuperposition(), WithSource(fixedSource(0.1))}
	g, err := New("room-test", testPlayers, deck.FourKings, append(base, opts...)...)
	require.NoError(t, err)
	g.DrainEvents()
	return g
}

func act(t *testing.T, g *Game, seat int, a Action) {
	t.Helper()
	require.NoError(t, g.Act(seat, Move{Action: a}))
}

func bet(t *testing.T, g *Game, seat, amount int) {
	t.Helper()
	require.NoError(t, g.Act(seat, Move{Action: Bet, Amount: amount}))
}

func declare(t *testing.T, g *Game, seat int, has bool) {
	t.Helper()
	require.NoError(t, g.Declare(seat, has))
}

// checkAround has every pending seat check until the phase changes.
func checkAround(t *testing.T, g *Game) {
	t.Helper()
	phase := g.Phase()
	hand := g.Snapshot().Hand
	for g.Phase() == phase && g.Snapshot().Hand == hand && g.Stage() == Betting && !g.Over() {
		act(t, g, g.ActiveSeat(), Check)
	}
}

func cut(t *testing.T, g *Game) {
	t.Helper()
	act(t, g, g.ActiveSeat(), Cut)
	require.Equal(t, LeadRank, g.Phase())
}

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Hands with no pairs, no game and no entangled pair fully dealt. Team A
// holds the king and the two.
var plainHands = [Seats]string{
	"Ko 7o 6o 5o",
	"Qc 7c 6c 4c",
	"Jb 5b 4b 2b",
	"Qe 6e 5e 3e",
}

// Seat 0 and seat 1 hold a pair each; seats 2 and 3 hold none.
var pairsHands = [Seats]string{
	"7o 7c 5o 4o",
	"6c 6e Jc 4c",
	"Jb 5b 3b 2b",
	"Qe 5e 3e 2e",
}
