package game

import (
	"slices"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/entanglement"
)

// Snapshot is the public state of a room. It carries no card values.
type Snapshot struct {
	RoomID        string
	Mode          deck.Mode
	Hand          int
	Mano          int
	Phase         Phase
	Stage         Stage
	ActiveSeat    int
	Pending       []int
	Players       [Seats]string
	TeamNames     [2]string
	Scores        [2]int
	WinScore      int
	Status        Status
	Stake         int
	PreviousStake int
	BetKind       BetKind
	Attacker      Team
	Defender      Team
	Eligible      [Seats]bool
	Declared      [Seats]bool
	Ledger        []LedgerEntry
	ValidActions  []Action
	MinRaise      int
	Over          bool
	Winner        Team
}

// Snapshot returns the public state of the game.
func (g *Game) Snapshot() Snapshot {
	h := g.hand
	s := Snapshot{
		RoomID:     g.roomID,
		Mode:       g.mode,
		Hand:       h.number,
		Mano:       h.mano,
		Phase:      h.phase,
		Stage:      h.stage,
		ActiveSeat: g.ActiveSeat(),
		Pending:    g.PendingSeats(),
		Players:    g.players,
		TeamNames:  g.names,
		Scores:     g.scores,
		WinScore:   g.winScore,
		Attacker:   NoTeam,
		Defender:   NoTeam,
		Declared:   h.declared,
		Ledger:     slices.Clone(h.ledger),
		Over:       g.over,
		Winner:     g.Winner(),
	}
	if br := h.betting; br != nil && h.stage == Betting {
		s.Status = br.Status
		s.Stake = br.Stake
		s.PreviousStake = br.PreviousStake
		s.BetKind = br.Kind
		s.Attacker = br.Attacker
		s.Defender = br.Defender
		s.Eligible = br.Eligible
		s.MinRaise = br.MinRaise()
	} else if h.stage == Speaking {
		s.MinRaise = MinBet
	}
	if s.ActiveSeat >= 0 {
		s.ValidActions = g.ValidActions(s.ActiveSeat)
	}
	return s
}

// CardView is one card as its holder sees it.
type CardView struct {
	Slot         int
	Card         deck.Card
	Collapsed    bool
	Rank         deck.Rank
	Entangled    bool
	Partner      *deck.Card
	PartnerSeat  int
	Superposed   bool
	Alternate    deck.Rank
	CoefficientA float64
	CoefficientB float64
}

// SeatView is the private view of a seat's own hand.
type SeatView struct {
	Seat  int
	Team  Team
	Cards []CardView
	Pairs []entanglement.Pair
}

// SeatView returns seat's own cards with their quantum state.
func (g *Game) SeatView(seat int) SeatView {
	v := SeatView{Seat: seat, Team: TeamOf(seat)}
	if seat < 0 || seat >= Seats {
		return v
	}
	reg := g.resolver.Registry()
	for i := range HandSize {
		c := g.hand.cards[seat][i]
		cv := CardView{
			Slot:        i,
			Card:        c.Identity(),
			Collapsed:   c.Collapsed(),
			Rank:        c.Rank(),
			Entangled:   c.Entangled(),
			PartnerSeat: entanglement.NoSeat,
			Superposed:  c.Superposed(),
			Alternate:   c.Alternate(),
		}
		if p, ok := c.Partner(); ok {
			cv.Partner = &p
			cv.PartnerSeat = reg.HolderOf(p)
		}
		cv.CoefficientA, cv.CoefficientB = c.Coefficients()
		v.Cards = append(v.Cards, cv)
	}
	v.Pairs = reg.PairsForSeat(seat)
	return v
}
