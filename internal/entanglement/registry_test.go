package entanglement

import (
	"testing"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsSameSuitPairs(t *testing.T) {
	t.Parallel()

	four := New(deck.FourKings)
	assert.Len(t, four.Pairs(), 4)

	partner, ok := four.PartnerOf(deck.NewCard(deck.King, deck.Copas))
	require.True(t, ok)
	assert.Equal(t, deck.NewCard(deck.Ace, deck.Copas), partner)

	_, ok = four.PartnerOf(deck.NewCard(deck.Three, deck.Copas))
	assert.False(t, ok, "threes are unpaired with four kings")

	eight := New(deck.EightKings)
	assert.Len(t, eight.Pairs(), 8)
	partner, ok = eight.PartnerOf(deck.NewCard(deck.Two, deck.Bastos))
	require.True(t, ok)
	assert.Equal(t, deck.NewCard(deck.Three, deck.Bastos), partner)
}

func TestActivateIsIdempotent(t *testing.T) {
	t.Parallel()

	r := New(deck.FourKings)
	r.Assign(deck.NewCard(deck.King, deck.Oros), 0)
	r.Assign(deck.NewCard(deck.Ace, deck.Oros), 3)

	ev, ok := r.Activate(deck.King, deck.Oros, 0)
	require.True(t, ok)
	assert.Equal(t, "Ko-Ao", ev.PairID)
	assert.Equal(t, deck.NewCard(deck.Ace, deck.Oros), ev.Partner)
	assert.Equal(t, 3, ev.PartnerSeat)
	assert.Equal(t, 0, ev.TriggerSeat)

	again, ok := r.Activate(deck.Ace, deck.Oros, 3)
	require.True(t, ok)
	assert.Equal(t, ev, again, "second activation returns the recorded event")

	_, ok = r.Activate(deck.Five, deck.Oros, 1)
	assert.False(t, ok)
}

func TestResetForNewHand(t *testing.T) {
	t.Parallel()

	r := New(deck.FourKings)
	r.Assign(deck.NewCard(deck.King, deck.Espadas), 1)
	r.Assign(deck.NewCard(deck.Ace, deck.Espadas), 3)
	_, ok := r.Activate(deck.King, deck.Espadas, 1)
	require.True(t, ok)
	assert.Equal(t, 1, r.Stats().Collapsed)

	r.ResetForNewHand()
	stats := r.Stats()
	assert.Equal(t, 0, stats.Collapsed)
	assert.Equal(t, 4, stats.Superposed)
	assert.Equal(t, NoSeat, r.HolderOf(deck.NewCard(deck.King, deck.Espadas)))

	ev, ok := r.Activate(deck.Ace, deck.Espadas, 2)
	require.True(t, ok)
	assert.Equal(t, 2, ev.TriggerSeat, "old event is forgotten after reset")
}

func TestPairsForSeatAndTeam(t *testing.T) {
	t.Parallel()

	r := New(deck.FourKings)
	r.Assign(deck.NewCard(deck.King, deck.Bastos), 0)
	r.Assign(deck.NewCard(deck.Ace, deck.Bastos), 2)
	r.Assign(deck.NewCard(deck.King, deck.Copas), 1)

	pairs := r.PairsForSeat(0)
	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].Team())
	assert.Empty(t, r.PairsForSeat(1), "half-dealt pairs are not reported")

	stats := r.Stats()
	assert.Equal(t, 1, stats.FullyDealt)
	assert.Equal(t, 1, stats.SameTeamPair)
}
