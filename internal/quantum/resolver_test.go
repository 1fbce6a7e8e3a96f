package quantum

import (
	"fmt"
	"testing"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/entanglement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dealHands(t *testing.T, seats [Seats]string) *Hands {
	t.Helper()
	var h Hands
	for s, hand := range seats {
		cards := deck.MustParseCards(hand)
		require.Len(t, cards, HandSize)
		for i, c := range cards {
			h[s][i] = NewCard(c)
		}
	}
	return &h
}

func seedFor(reason Reason) SeedFunc {
	return func(seat, slot int) string {
		return fmt.Sprintf("room|1|%s|PAIRS|%d|%d", reason, seat, slot)
	}
}

func TestResolverLinkAndCollapseSeat(t *testing.T) {
	t.Parallel()

	reg := entanglement.New(deck.FourKings)
	hands := dealHands(t, [Seats]string{
		"Ko 4c 5c 6c",
		"7o 7c 7e 7b",
		"4o 5o 6o Jo",
		"Ao 4e 5e 6e",
	})
	r := NewResolver(fixedSource(0.9), reg)
	r.Link(hands)

	require.True(t, hands[0][0].Entangled())
	partner, _ := hands[0][0].Partner()
	assert.Equal(t, deck.NewCard(deck.Ace, deck.Oros), partner)
	assert.Equal(t, 3, reg.HolderOf(partner))

	events := r.CollapseSeat(hands, 0, ReasonDeclaration, seedFor(ReasonDeclaration))
	require.Len(t, events, 5, "four own cards plus the partner")

	assert.Equal(t, CollapseEvent{
		Seat: 0, Slot: 0, Card: deck.NewCard(deck.King, deck.Oros),
		OldRank: deck.King, NewRank: deck.Ace, Reason: ReasonDeclaration, PairID: "Ko-Ao",
	}, events[0])
	assert.Equal(t, CollapseEvent{
		Seat: 3, Slot: 0, Card: deck.NewCard(deck.Ace, deck.Oros),
		OldRank: deck.Ace, NewRank: deck.King, Reason: ReasonDeclaration, PairID: "Ko-Ao",
	}, events[1])
	assert.True(t, hands[3][0].Collapsed())
	assert.Equal(t, 1, reg.Stats().Collapsed)

	again := r.CollapseSeat(hands, 0, ReasonBetAcceptance, seedFor(ReasonBetAcceptance))
	assert.Empty(t, again)

	rest := r.CollapseAll(hands, ReasonFinalReveal, seedFor(ReasonFinalReveal))
	assert.Len(t, rest, 11, "the partner was already collapsed")
	for s := range Seats {
		for i := range HandSize {
			assert.True(t, hands[s][i].Collapsed())
		}
	}
}

func TestResolverRelease(t *testing.T) {
	t.Parallel()

	reg := entanglement.New(deck.FourKings)
	hands := dealHands(t, [Seats]string{
		"Kc 4c 5c 6c",
		"Ac 7c 7e 7b",
		"4o 5o 6o Jo",
		"Qo 4e 5e 6e",
	})
	r := NewResolver(fixedSource(0.1), reg)
	r.Link(hands)
	require.True(t, hands[1][0].Entangled())

	r.Release(hands[0][0])
	assert.False(t, hands[1][0].Entangled())
	assert.Equal(t, entanglement.NoSeat, reg.HolderOf(deck.NewCard(deck.King, deck.Copas)))
}
