package protocol

import (
	"fmt"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/entanglement"
	"github.com/arturojer/quantummus/internal/game"
)

// ParseStateData rebuilds a snapshot from its wire form. It is the inverse
// of NewStateData for every field a remote player needs to choose a move.
func ParseStateData(d StateData) (game.Snapshot, error) {
	s := game.Snapshot{
		RoomID:        d.RoomID,
		Hand:          d.Hand,
		Mano:          d.Mano,
		ActiveSeat:    d.ActiveSeat,
		Pending:       d.Pending,
		WinScore:      d.WinScore,
		Stake:         d.Stake,
		PreviousStake: d.PreviousStake,
		MinRaise:      d.MinRaise,
		Over:          d.Over,
	}

	var err error
	if s.Mode, err = deck.ParseMode(d.Mode); err != nil {
		return s, err
	}
	if s.Phase, err = game.ParsePhase(d.Phase); err != nil {
		return s, err
	}
	if s.Stage, err = parseStage(d.Stage); err != nil {
		return s, err
	}
	if s.Status, err = parseStatus(d.Status); err != nil {
		return s, err
	}
	if s.BetKind, err = parseBetKind(d.BetKind); err != nil {
		return s, err
	}
	if s.Attacker, err = parseTeam(d.Attacker); err != nil {
		return s, err
	}
	s.Defender = game.NoTeam
	if s.Attacker != game.NoTeam {
		s.Defender = s.Attacker.Other()
	}
	if s.Winner, err = parseTeam(d.Winner); err != nil {
		return s, err
	}

	copy(s.Players[:], d.Players)
	copy(s.TeamNames[:], d.TeamNames)
	s.Scores[game.TeamA] = d.Scores[game.TeamA.String()]
	s.Scores[game.TeamB] = d.Scores[game.TeamB.String()]
	for _, seat := range d.Eligible {
		if seat < 0 || seat >= game.Seats {
			return s, fmt.Errorf("eligible seat %d out of range", seat)
		}
		s.Eligible[seat] = true
	}
	for _, e := range d.Ledger {
		p, err := game.ParsePhase(e.Phase)
		if err != nil {
			return s, err
		}
		t, err := parseTeam(e.Attacker)
		if err != nil {
			return s, err
		}
		s.Ledger = append(s.Ledger, game.LedgerEntry{Phase: p, Stake: e.Stake, Attacker: t})
	}
	for _, name := range d.ValidActions {
		m, err := ParseAction(name, 0)
		if err != nil {
			return s, err
		}
		s.ValidActions = append(s.ValidActions, m.Action)
	}
	return s, nil
}

// ParseHandViewData rebuilds a seat's private view. Pair details are not
// carried back; the per-card entanglement flags are.
func ParseHandViewData(d HandViewData) (game.SeatView, error) {
	v := game.SeatView{Seat: d.Seat}
	var err error
	if v.Team, err = parseTeam(d.Team); err != nil {
		return v, err
	}
	for _, cd := range d.Cards {
		c, err := deck.ParseCard(cd.Card)
		if err != nil {
			return v, err
		}
		rank, err := parseRank(cd.Rank)
		if err != nil {
			return v, err
		}
		cv := game.CardView{
			Slot:         cd.Slot,
			Card:         c,
			Collapsed:    cd.Collapsed,
			Rank:         rank,
			Entangled:    cd.Entangled,
			PartnerSeat:  entanglement.NoSeat,
			Superposed:   cd.Superposed,
			CoefficientA: cd.CoefficientA,
			CoefficientB: cd.CoefficientB,
		}
		if cd.Partner != "" {
			p, err := deck.ParseCard(cd.Partner)
			if err != nil {
				return v, err
			}
			cv.Partner = &p
		}
		if cd.PartnerSeat != nil {
			cv.PartnerSeat = *cd.PartnerSeat
		}
		if cd.Alternate != "" {
			if cv.Alternate, err = parseRank(cd.Alternate); err != nil {
				return v, err
			}
		}
		v.Cards = append(v.Cards, cv)
	}
	return v, nil
}

func parseStage(s string) (game.Stage, error) {
	for st := game.Speaking; st <= game.HandComplete; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", s)
}

func parseStatus(s string) (game.Status, error) {
	if s == "" {
		return game.NoBet, nil
	}
	for st := game.NoBet; st <= game.Resolved; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown bet status %q", s)
}

func parseBetKind(s string) (game.BetKind, error) {
	if s == "" {
		return game.NoBetKind, nil
	}
	for k := game.NoBetKind; k <= game.AllInBet; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown bet kind %q", s)
}

func parseTeam(s string) (game.Team, error) {
	switch s {
	case "", "-":
		return game.NoTeam, nil
	case "A":
		return game.TeamA, nil
	case "B":
		return game.TeamB, nil
	}
	return game.NoTeam, fmt.Errorf("unknown team %q", s)
}

func parseRank(s string) (deck.Rank, error) {
	for _, r := range deck.Ranks {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}
