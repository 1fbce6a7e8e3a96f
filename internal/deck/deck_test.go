package deck

import (
	"errors"
	"testing"

	"github.com/arturojer/quantummus/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckHasEveryCardOnce(t *testing.T) {
	t.Parallel()

	d := New(randutil.New(1))
	require.Equal(t, DeckSize, d.CardsRemaining())

	cards, err := d.Draw(DeckSize)
	require.NoError(t, err)

	seen := make(map[Card]bool, DeckSize)
	for _, c := range cards {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize)
}

func TestDeckShuffleIsSeeded(t *testing.T) {
	t.Parallel()

	a, err := New(randutil.New(42)).Draw(8)
	require.NoError(t, err)
	b, err := New(randutil.New(42)).Draw(8)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDrawRecyclesDiscards(t *testing.T) {
	t.Parallel()

	d := New(randutil.New(7))
	first, err := d.Draw(38)
	require.NoError(t, err)
	d.Discard(first[:4]...)

	cards, err := d.Draw(4)
	require.NoError(t, err)
	assert.Len(t, cards, 4)
	assert.Equal(t, 0, d.DiscardsRemaining())
	assert.Equal(t, 2, d.CardsRemaining())
}

func TestDrawInsufficientCards(t *testing.T) {
	t.Parallel()

	d := New(randutil.New(7))
	_, err := d.Draw(DeckSize)
	require.NoError(t, err)

	_, err = d.Draw(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientCards))
}

func TestStackedDeckDealsInOrder(t *testing.T) {
	t.Parallel()

	stacked := MustParseCards("KoAo7b")
	d := NewStacked(randutil.New(1), stacked)
	cards, err := d.Draw(3)
	require.NoError(t, err)
	assert.Equal(t, stacked, cards)
}
