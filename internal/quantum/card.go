// Package quantum models cards that may be entangled with a partner or
// superposed with an alternate rank, and resolves them deterministically.
package quantum

import (
	"math"

	"github.com/arturojer/quantummus/internal/deck"
)

// RandomSource yields a uniform float in [0, 1) for a seed string.
type RandomSource interface {
	UniformFloat(seed string) float64
}

// Superposition coefficients are drawn from this range at deal time.
const (
	MinCoefficient = 0.5
	MaxCoefficient = 0.9
)

// superpositionCycle maps a rank to the rank it may be superposed with.
var superpositionCycle = map[deck.Rank]deck.Rank{
	deck.Four:  deck.Five,
	deck.Five:  deck.Six,
	deck.Six:   deck.Seven,
	deck.Seven: deck.Jack,
	deck.Jack:  deck.Queen,
	deck.Queen: deck.Four,
}

// Card is a dealt card with its quantum state. Once collapsed the resolved
// rank never changes.
type Card struct {
	id        deck.Card
	partner   *Card
	alternate deck.Rank
	coefA     float64
	coefB     float64
	collapsed bool
	resolved  deck.Rank
}

// NewCard wraps a physical card in the plain, uncollapsed state.
func NewCard(c deck.Card) *Card {
	return &Card{id: c}
}

// Identity returns the physical card.
func (c *Card) Identity() deck.Card { return c.id }

// Entangled reports whether the card has a partner.
func (c *Card) Entangled() bool { return c.partner != nil }

// Partner returns the partner identity when entangled.
func (c *Card) Partner() (deck.Card, bool) {
	if c.partner == nil {
		return deck.Card{}, false
	}
	return c.partner.id, true
}

// Superposed reports whether the card carries an alternate rank.
func (c *Card) Superposed() bool { return c.alternate != 0 }

// Alternate returns the superposed alternate rank, or zero.
func (c *Card) Alternate() deck.Rank { return c.alternate }

// Coefficients returns the amplitudes of the own and alternate ranks.
func (c *Card) Coefficients() (a, b float64) { return c.coefA, c.coefB }

// Collapsed reports whether the card has resolved.
func (c *Card) Collapsed() bool { return c.collapsed }

// Rank is the resolved rank once collapsed, else the printed rank.
func (c *Card) Rank() deck.Rank {
	if c.collapsed {
		return c.resolved
	}
	return c.id.Rank
}

// Collapse resolves the card using the probability derived from seed and
// forces an entangled partner to the complementary rank. Calling it again
// returns the stored rank.
func (c *Card) Collapse(src RandomSource, seed string) deck.Rank {
	if c.collapsed {
		return c.resolved
	}

	switch {
	case c.partner != nil:
		own, other := c.id.Rank, c.partner.id.Rank
		if c.partner.collapsed {
			// Partner already fixed the outcome; take whatever it left.
			if c.partner.resolved == other {
				c.SetCollapsedValue(own)
			} else {
				c.SetCollapsedValue(other)
			}
			return c.resolved
		}
		if src.UniformFloat(seed) < 0.5 {
			c.SetCollapsedValue(own)
			c.partner.SetCollapsedValue(other)
		} else {
			c.SetCollapsedValue(other)
			c.partner.SetCollapsedValue(own)
		}
	case c.alternate != 0:
		p := src.UniformFloat(seed)
		if p < c.coefA*c.coefA {
			c.SetCollapsedValue(c.id.Rank)
		} else {
			c.SetCollapsedValue(c.alternate)
		}
	default:
		c.SetCollapsedValue(c.id.Rank)
	}
	return c.resolved
}

// SetCollapsedValue collapses the card to r without drawing randomness. It
// is a no-op on a collapsed card.
func (c *Card) SetCollapsedValue(r deck.Rank) {
	if c.collapsed {
		return
	}
	c.collapsed = true
	c.resolved = r
}

// Entangle links two uncollapsed, unlinked cards. It reports whether the
// link was made.
func Entangle(a, b *Card) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if a.collapsed || b.collapsed || a.partner != nil || b.partner != nil {
		return false
	}
	if a.alternate != 0 || b.alternate != 0 {
		return false
	}
	a.partner = b
	b.partner = a
	return true
}

// Disentangle breaks the link with the partner, if any. Used when a card
// leaves a hand before it has been observed.
func (c *Card) Disentangle() {
	if c.partner == nil {
		return
	}
	if !c.collapsed && c.partner.partner == c {
		c.partner.partner = nil
	}
	c.partner = nil
}

// Superpose links the card with an alternate rank; a is the own-rank
// amplitude and b is derived so that a² + b² = 1.
func (c *Card) Superpose(alt deck.Rank, a float64) {
	if c.collapsed || c.partner != nil {
		return
	}
	c.alternate = alt
	c.coefA = a
	c.coefB = math.Sqrt(1 - a*a)
}

// MaybeSuperpose superposes a plain card in the superposition cycle with
// probability one half, drawing its coefficient from src.
func MaybeSuperpose(c *Card, src RandomSource) bool {
	if c.collapsed || c.partner != nil || c.alternate != 0 {
		return false
	}
	alt, ok := superpositionCycle[c.id.Rank]
	if !ok {
		return false
	}
	seed := c.id.String()
	if src.UniformFloat(seed+":superpose") >= 0.5 {
		return false
	}
	c.Superpose(alt, MinCoefficient+src.UniformFloat(seed+":coefficient")*(MaxCoefficient-MinCoefficient))
	return true
}
