package quantum

import (
	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/entanglement"
)

const (
	// Seats at a table.
	Seats = 4
	// HandSize is the number of cards each seat holds.
	HandSize = 4
)

// Reason names the game event that triggered a collapse.
type Reason string

const (
	ReasonDeclaration   Reason = "declaration"
	ReasonBetAcceptance Reason = "bet_acceptance"
	ReasonFinalReveal   Reason = "final_reveal"
)

// Hands is every seat's cards, indexed by seat then slot.
type Hands [Seats][HandSize]*Card

// Locate finds the seat and slot holding c.
func (h *Hands) Locate(c deck.Card) (seat, slot int, ok bool) {
	for s := range Seats {
		for i := range HandSize {
			if card := h[s][i]; card != nil && card.id == c {
				return s, i, true
			}
		}
	}
	return entanglement.NoSeat, -1, false
}

// CollapseEvent reports one card changing from uncollapsed to collapsed.
type CollapseEvent struct {
	Seat    int
	Slot    int
	Card    deck.Card
	OldRank deck.Rank
	NewRank deck.Rank
	Reason  Reason
	PairID  string
}

// SeedFunc builds the seed string for the card at seat/slot.
type SeedFunc func(seat, slot int) string

// Resolver collapses cards in hands and keeps the entanglement registry in
// step with the card links.
type Resolver struct {
	src      RandomSource
	registry *entanglement.Registry
}

// NewResolver returns a resolver drawing probabilities from src.
func NewResolver(src RandomSource, registry *entanglement.Registry) *Resolver {
	return &Resolver{src: src, registry: registry}
}

// Registry returns the entanglement registry in use.
func (r *Resolver) Registry() *entanglement.Registry { return r.registry }

// Link records holders for every card in hands and entangles uncollapsed
// cards whose registry partner is also held and uncollapsed.
func (r *Resolver) Link(hands *Hands) {
	for s := range Seats {
		for i := range HandSize {
			if c := hands[s][i]; c != nil {
				r.registry.Assign(c.id, s)
			}
		}
	}
	for s := range Seats {
		for i := range HandSize {
			c := hands[s][i]
			if c == nil || c.collapsed || c.partner != nil {
				continue
			}
			partnerID, ok := r.registry.PartnerOf(c.id)
			if !ok {
				continue
			}
			ps, pi, ok := hands.Locate(partnerID)
			if !ok {
				continue
			}
			Entangle(c, hands[ps][pi])
		}
	}
}

// Release detaches a card leaving a hand from its partner and the registry.
func (r *Resolver) Release(c *Card) {
	c.Disentangle()
	r.registry.Assign(c.id, entanglement.NoSeat)
}

// CollapseSeat collapses every uncollapsed card held by seat and returns an
// event for each card mutated, partners included.
func (r *Resolver) CollapseSeat(hands *Hands, seat int, reason Reason, seed SeedFunc) []CollapseEvent {
	var events []CollapseEvent
	for slot := range HandSize {
		events = append(events, r.collapseAt(hands, seat, slot, reason, seed)...)
	}
	return events
}

// CollapseAll collapses every remaining card at the table, seat by seat.
func (r *Resolver) CollapseAll(hands *Hands, reason Reason, seed SeedFunc) []CollapseEvent {
	var events []CollapseEvent
	for s := range Seats {
		events = append(events, r.CollapseSeat(hands, s, reason, seed)...)
	}
	return events
}

func (r *Resolver) collapseAt(hands *Hands, seat, slot int, reason Reason, seed SeedFunc) []CollapseEvent {
	card := hands[seat][slot]
	if card == nil || card.collapsed {
		return nil
	}

	partner := card.partner
	partnerOpen := partner != nil && !partner.collapsed
	old := card.id.Rank
	resolved := card.Collapse(r.src, seed(seat, slot))

	ev := CollapseEvent{
		Seat:    seat,
		Slot:    slot,
		Card:    card.id,
		OldRank: old,
		NewRank: resolved,
		Reason:  reason,
	}
	if partner == nil {
		return []CollapseEvent{ev}
	}

	if act, ok := r.registry.Activate(card.id.Rank, card.id.Suit, seat); ok {
		ev.PairID = act.PairID
	}
	events := []CollapseEvent{ev}
	if partnerOpen {
		ps, pi, ok := hands.Locate(partner.id)
		if ok {
			events = append(events, CollapseEvent{
				Seat:    ps,
				Slot:    pi,
				Card:    partner.id,
				OldRank: partner.id.Rank,
				NewRank: partner.resolved,
				Reason:  reason,
				PairID:  ev.PairID,
			})
		}
	}
	return events
}
