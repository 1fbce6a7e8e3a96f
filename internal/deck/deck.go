package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// DeckSize is the number of cards in a Spanish deck.
const DeckSize = 40

// ErrInsufficientCards is returned when neither the draw pile nor the
// discard pile can satisfy a draw.
var ErrInsufficientCards = errors.New("insufficient cards")

// Deck is a draw pile plus the discard pile that feeds it once exhausted.
type Deck struct {
	cards    []Card
	discards []Card
	rng      *rand.Rand
}

// New returns a full shuffled 40-card deck.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, DeckSize),
		rng:   rng,
	}
	d.Reset()
	return d
}

// NewStacked returns a deck that deals cards in the given order without
// shuffling. Intended for tests and replays.
func NewStacked(rng *rand.Rand, cards []Card) *Deck {
	return &Deck{
		cards: append([]Card(nil), cards...),
		rng:   rng,
	}
}

// Reset restores the full deck and shuffles it. Discards are cleared.
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	d.discards = d.discards[:0]
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	d.Shuffle()
}

// Shuffle randomizes the order of the draw pile.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes n cards from the top of the draw pile. When the draw pile
// runs out, the discard pile is shuffled back in.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n > len(d.cards) {
		d.recycle()
	}
	if n > len(d.cards) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientCards, n, len(d.cards))
	}
	out := make([]Card, n)
	copy(out, d.cards[:n])
	d.cards = d.cards[n:]
	return out, nil
}

// Discard places cards on the discard pile.
func (d *Deck) Discard(cards ...Card) {
	d.discards = append(d.discards, cards...)
}

// CardsRemaining returns the number of cards left in the draw pile
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

// DiscardsRemaining returns the number of cards on the discard pile.
func (d *Deck) DiscardsRemaining() int {
	return len(d.discards)
}

func (d *Deck) recycle() {
	if len(d.discards) == 0 {
		return
	}
	start := len(d.cards)
	d.cards = append(d.cards, d.discards...)
	d.discards = d.discards[:0]
	recycled := d.cards[start:]
	d.rng.Shuffle(len(recycled), func(i, j int) {
		recycled[i], recycled[j] = recycled[j], recycled[i]
	})
}
