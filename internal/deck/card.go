package deck

import (
	"fmt"
	"strings"
)

// Suit represents a Spanish-deck suit
type Suit int

const (
	Oros Suit = iota
	Copas
	Espadas
	Bastos
)

// Suits lists every suit in deck order.
var Suits = [...]Suit{Oros, Copas, Espadas, Bastos}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Oros:
		return "oros"
	case Copas:
		return "copas"
	case Espadas:
		return "espadas"
	case Bastos:
		return "bastos"
	default:
		return "?"
	}
}

// Short returns the single-letter suit code used in card notation.
func (s Suit) Short() string {
	switch s {
	case Oros:
		return "o"
	case Copas:
		return "c"
	case Espadas:
		return "e"
	case Bastos:
		return "b"
	default:
		return "?"
	}
}

// Rank represents a card rank. The numeric values follow the physical
// card faces: jack, knight and king are printed 10, 11 and 12.
type Rank int

const (
	Ace   Rank = 1
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Jack  Rank = 10
	Queen Rank = 11
	King  Rank = 12
)

// Ranks lists every rank in ascending physical order.
var Ranks = [...]Rank{Ace, Two, Three, Four, Five, Six, Seven, Jack, Queen, King}

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Two, Three, Four, Five, Six, Seven:
		return fmt.Sprintf("%d", int(r))
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return "?"
	}
}

// Valid reports whether r is one of the ten ranks in the deck.
func (r Rank) Valid() bool {
	switch r {
	case Ace, Two, Three, Four, Five, Six, Seven, Jack, Queen, King:
		return true
	}
	return false
}

// Card identifies a physical card by rank and suit.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the card notation, e.g. "Ko" for the king of oros.
func (c Card) String() string {
	return c.Rank.String() + c.Suit.Short()
}

// ParseCard parses a single card in rank+suit notation ("Ko", "7b", "Ae").
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rank, err := parseRank(s[0])
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	suit, err := parseSuit(s[1])
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a string of concatenated or space separated cards.
// Format: "Ko Ac 7b Je" or "KoAc7bJe"
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

func parseRank(c byte) (Rank, error) {
	switch c {
	case 'A', 'a', '1':
		return Ace, nil
	case '2':
		return Two, nil
	case '3':
		return Three, nil
	case '4':
		return Four, nil
	case '5':
		return Five, nil
	case '6':
		return Six, nil
	case '7':
		return Seven, nil
	case 'J', 'j':
		return Jack, nil
	case 'Q', 'q':
		return Queen, nil
	case 'K', 'k':
		return King, nil
	default:
		return 0, fmt.Errorf("unknown rank %q", c)
	}
}

func parseSuit(c byte) (Suit, error) {
	switch c {
	case 'o', 'O':
		return Oros, nil
	case 'c', 'C':
		return Copas, nil
	case 'e', 'E':
		return Espadas, nil
	case 'b', 'B':
		return Bastos, nil
	default:
		return 0, fmt.Errorf("unknown suit %q", c)
	}
}
