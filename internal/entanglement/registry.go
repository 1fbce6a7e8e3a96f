// Package entanglement tracks which cards are paired for a game mode, who
// holds them during a hand, and whether each pair has been observed.
package entanglement

import (
	"fmt"
	"sort"

	"github.com/arturojer/quantummus/internal/deck"
)

// NoSeat marks a card that is not currently held by any seat.
const NoSeat = -1

// NoTeam marks a pair whose holders sit on opposite teams.
const NoTeam = -1

// State of an entangled pair.
type State int

const (
	Superposition State = iota
	Collapsed
)

func (s State) String() string {
	return [...]string{"superposition", "collapsed"}[s]
}

// Pair is two cards whose collapsed ranks are correlated.
type Pair struct {
	ID            string
	A, B          deck.Card
	HolderA       int
	HolderB       int
	State         State
	ActivatedBy   int
	ActivatedCard deck.Card
}

// Team returns the team index shared by both holders, or NoTeam.
func (p Pair) Team() int {
	if p.HolderA == NoSeat || p.HolderB == NoSeat {
		return NoTeam
	}
	if p.HolderA%2 != p.HolderB%2 {
		return NoTeam
	}
	return p.HolderA % 2
}

// Dealt reports whether both cards of the pair are in players' hands.
func (p Pair) Dealt() bool {
	return p.HolderA != NoSeat && p.HolderB != NoSeat
}

// ActivationEvent describes the first observation of a pair.
type ActivationEvent struct {
	PairID      string
	Trigger     deck.Card
	TriggerSeat int
	Partner     deck.Card
	PartnerSeat int
}

// Stats summarises pair states.
type Stats struct {
	Total        int
	Collapsed    int
	Superposed   int
	FullyDealt   int
	SameTeamPair int
}

// Registry is the per-game table of entangled pairs. It is not safe for
// concurrent use; the owning room serialises access.
type Registry struct {
	mode   deck.Mode
	pairs  []*Pair
	byCard map[deck.Card]*Pair
	events map[string]ActivationEvent
}

// New builds the pair table for mode. Every suit pairs its king with its
// ace; eight-kings additionally pairs each three with the two.
func New(mode deck.Mode) *Registry {
	r := &Registry{
		mode:   mode,
		byCard: make(map[deck.Card]*Pair),
		events: make(map[string]ActivationEvent),
	}
	for _, rule := range rulesFor(mode) {
		for _, suit := range deck.Suits {
			a := deck.NewCard(rule[0], suit)
			b := deck.NewCard(rule[1], suit)
			p := &Pair{
				ID:          fmt.Sprintf("%s-%s", a, b),
				A:           a,
				B:           b,
				HolderA:     NoSeat,
				HolderB:     NoSeat,
				ActivatedBy: NoSeat,
			}
			r.pairs = append(r.pairs, p)
			r.byCard[a] = p
			r.byCard[b] = p
		}
	}
	return r
}

func rulesFor(mode deck.Mode) [][2]deck.Rank {
	rules := [][2]deck.Rank{{deck.King, deck.Ace}}
	if mode == deck.EightKings {
		rules = append(rules, [2]deck.Rank{deck.Three, deck.Two})
	}
	return rules
}

// Mode returns the game mode the table was built for.
func (r *Registry) Mode() deck.Mode { return r.mode }

// PartnerOf returns the card entangled with c.
func (r *Registry) PartnerOf(c deck.Card) (deck.Card, bool) {
	p, ok := r.byCard[c]
	if !ok {
		return deck.Card{}, false
	}
	if p.A == c {
		return p.B, true
	}
	return p.A, true
}

// Assign records that seat now holds c. Pass NoSeat when the card leaves
// a hand.
func (r *Registry) Assign(c deck.Card, seat int) {
	p, ok := r.byCard[c]
	if !ok {
		return
	}
	if p.A == c {
		p.HolderA = seat
	} else {
		p.HolderB = seat
	}
}

// HolderOf returns the seat holding c, or NoSeat.
func (r *Registry) HolderOf(c deck.Card) int {
	p, ok := r.byCard[c]
	if !ok {
		return NoSeat
	}
	if p.A == c {
		return p.HolderA
	}
	return p.HolderB
}

// Activate marks the pair containing (rank, suit) as collapsed by seat and
// returns the resulting event. A second activation returns the event that
// was recorded the first time. The boolean is false for unpaired cards.
func (r *Registry) Activate(rank deck.Rank, suit deck.Suit, seat int) (ActivationEvent, bool) {
	c := deck.NewCard(rank, suit)
	p, ok := r.byCard[c]
	if !ok {
		return ActivationEvent{}, false
	}
	if p.State == Collapsed {
		return r.events[p.ID], true
	}

	partner, partnerSeat := p.B, p.HolderB
	if p.B == c {
		partner, partnerSeat = p.A, p.HolderA
	}
	p.State = Collapsed
	p.ActivatedBy = seat
	p.ActivatedCard = c

	ev := ActivationEvent{
		PairID:      p.ID,
		Trigger:     c,
		TriggerSeat: seat,
		Partner:     partner,
		PartnerSeat: partnerSeat,
	}
	r.events[p.ID] = ev
	return ev, true
}

// ResetForNewHand returns every pair to superposition and forgets holders.
func (r *Registry) ResetForNewHand() {
	for _, p := range r.pairs {
		p.State = Superposition
		p.HolderA = NoSeat
		p.HolderB = NoSeat
		p.ActivatedBy = NoSeat
		p.ActivatedCard = deck.Card{}
	}
	clear(r.events)
}

// Pairs returns copies of every pair ordered by ID.
func (r *Registry) Pairs() []Pair {
	out := make([]Pair, 0, len(r.pairs))
	for _, p := range r.pairs {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PairsForSeat returns the dealt pairs with at least one card held by seat.
func (r *Registry) PairsForSeat(seat int) []Pair {
	var out []Pair
	for _, p := range r.Pairs() {
		if !p.Dealt() {
			continue
		}
		if p.HolderA == seat || p.HolderB == seat {
			out = append(out, p)
		}
	}
	return out
}

// Stats counts pairs by state.
func (r *Registry) Stats() Stats {
	s := Stats{Total: len(r.pairs)}
	for _, p := range r.pairs {
		if p.State == Collapsed {
			s.Collapsed++
		} else {
			s.Superposed++
		}
		if p.Dealt() {
			s.FullyDealt++
			if p.Team() != NoTeam {
				s.SameTeamPair++
			}
		}
	}
	return s
}
