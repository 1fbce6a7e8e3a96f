package protocol

import (
	"fmt"

	"github.com/arturojer/quantummus/internal/entanglement"
	"github.com/arturojer/quantummus/internal/game"
)

func teamName(t game.Team) string {
	if t == game.NoTeam {
		return ""
	}
	return t.String()
}

func scoreMap(scores [2]int) map[string]int {
	return map[string]int{
		game.TeamA.String(): scores[game.TeamA],
		game.TeamB.String(): scores[game.TeamB],
	}
}

func intPtr(v int) *int { return &v }

// NewStateData converts a snapshot into its wire form.
func NewStateData(s game.Snapshot) StateData {
	d := StateData{
		RoomID:     s.RoomID,
		Mode:       s.Mode.String(),
		Hand:       s.Hand,
		Mano:       s.Mano,
		Phase:      s.Phase.String(),
		Stage:      s.Stage.String(),
		ActiveSeat: s.ActiveSeat,
		Pending:    s.Pending,
		Players:    s.Players[:],
		TeamNames:  s.TeamNames[:],
		Scores:     scoreMap(s.Scores),
		WinScore:   s.WinScore,
		MinRaise:   s.MinRaise,
		Over:       s.Over,
		Winner:     teamName(s.Winner),
	}
	if s.Stage == game.Betting {
		d.Status = s.Status.String()
		d.Stake = s.Stake
		d.PreviousStake = s.PreviousStake
		d.Attacker = teamName(s.Attacker)
		if s.Status == game.BetPlaced {
			d.BetKind = s.BetKind.String()
		}
		for seat, ok := range s.Eligible {
			if ok {
				d.Eligible = append(d.Eligible, seat)
			}
		}
	}
	for _, e := range s.Ledger {
		d.Ledger = append(d.Ledger, LedgerEntryData{
			Phase:    e.Phase.String(),
			Stake:    e.Stake,
			Attacker: teamName(e.Attacker),
		})
	}
	for _, a := range s.ValidActions {
		d.ValidActions = append(d.ValidActions, a.String())
	}
	return d
}

// NewHandViewData converts a seat's private view into its wire form.
func NewHandViewData(v game.SeatView) HandViewData {
	d := HandViewData{Seat: v.Seat, Team: teamName(v.Team)}
	for _, c := range v.Cards {
		cd := CardData{
			Slot:       c.Slot,
			Card:       c.Card.String(),
			Collapsed:  c.Collapsed,
			Rank:       c.Rank.String(),
			Entangled:  c.Entangled,
			Superposed: c.Superposed,
		}
		if c.Partner != nil {
			cd.Partner = c.Partner.String()
			if c.PartnerSeat != entanglement.NoSeat {
				cd.PartnerSeat = intPtr(c.PartnerSeat)
			}
		}
		if c.Superposed {
			cd.Alternate = c.Alternate.String()
			cd.CoefficientA = c.CoefficientA
			cd.CoefficientB = c.CoefficientB
		}
		d.Cards = append(d.Cards, cd)
	}
	for _, p := range v.Pairs {
		pd := PairData{
			ID:      p.ID,
			Cards:   []string{p.A.String(), p.B.String()},
			Holders: []int{p.HolderA, p.HolderB},
			State:   p.State.String(),
		}
		if t := p.Team(); t != entanglement.NoTeam {
			pd.Team = intPtr(t)
		}
		d.Pairs = append(d.Pairs, pd)
	}
	return d
}

// NewCollapseData converts a collapse event.
func NewCollapseData(e game.CollapseEvent) CollapseData {
	return CollapseData{
		Seat:    e.Seat,
		Slot:    e.Slot,
		Card:    e.Card.String(),
		OldRank: e.OldRank.String(),
		NewRank: e.NewRank.String(),
		Reason:  string(e.Reason),
		Phase:   e.Phase.String(),
		PairID:  e.PairID,
	}
}

// NewHandResultData converts an end-of-hand summary.
func NewHandResultData(s game.HandSummary) HandResultData {
	d := HandResultData{
		Hand:      s.Hand,
		Mano:      s.Mano,
		Penalties: scoreMap(s.Penalties),
		Scores:    scoreMap(s.Scores),
		MusRounds: s.MusRounds,
	}
	for _, r := range s.Results {
		d.Results = append(d.Results, PhaseResultData{
			Phase:    r.Phase.String(),
			Outcome:  r.Outcome.String(),
			Stake:    r.Stake,
			Attacker: teamName(r.Attacker),
			Winner:   teamName(r.Winner),
			Points:   r.Points,
			Deferred: r.Deferred && !r.Settled,
		})
	}
	for seat := range game.Seats {
		cards := make([]string, 0, game.HandSize)
		ranks := make([]string, 0, game.HandSize)
		for slot := range game.HandSize {
			cards = append(cards, s.Cards[seat][slot].String())
			ranks = append(ranks, s.Revealed[seat][slot].String())
		}
		d.Cards = append(d.Cards, cards)
		d.Revealed = append(d.Revealed, ranks)
	}
	return d
}

// NewGameOverData converts the final game summary.
func NewGameOverData(s game.GameSummary) GameOverData {
	return GameOverData{
		Winner:     teamName(s.Winner),
		WinnerName: s.WinnerName,
		Scores:     scoreMap(s.Scores),
		TeamNames:  s.TeamNames[:],
		Hands:      s.Hands,
	}
}

// NewEventData converts the remaining public events.
func NewEventData(e game.Event) EventData {
	d := EventData{Kind: e.EventType().String()}
	switch ev := e.(type) {
	case game.HandStartEvent:
		d.Hand = ev.Hand
		d.Mano = intPtr(ev.Mano)
	case game.DealEvent:
		d.Hand = ev.Hand
		d.Count = ev.Round
	case game.ActionEvent:
		d.Seat = intPtr(ev.Seat)
		d.Phase = ev.Phase.String()
		d.Action = ev.Move.Action.String()
		d.Amount = ev.Move.Amount
	case game.DiscardEvent:
		d.Seat = intPtr(ev.Seat)
		d.Count = ev.Count
	case game.DeclarationEvent:
		d.Seat = intPtr(ev.Seat)
		d.Phase = ev.Phase.String()
		d.Claimed = &ev.Claimed
		d.Penalty = ev.Penalty
	case game.PhaseChangeEvent:
		d.Phase = ev.Phase.String()
		d.Stage = ev.Stage.String()
	case game.PhaseResolvedEvent:
		d.Phase = ev.Result.Phase.String()
		d.Action = ev.Result.Outcome.String()
		d.Amount = ev.Result.Points
	}
	return d
}

// FromEvent builds the outbound message for a game event.
func FromEvent(e game.Event) (*Message, error) {
	switch ev := e.(type) {
	case game.CollapseEvent:
		return NewMessage(MessageTypeCollapse, NewCollapseData(ev))
	case game.HandEndEvent:
		return NewMessage(MessageTypeHandResult, NewHandResultData(ev.Summary))
	case game.GameOverEvent:
		return NewMessage(MessageTypeGameOver, NewGameOverData(ev.Summary))
	case nil:
		return nil, fmt.Errorf("nil event")
	default:
		return NewMessage(MessageTypeEvent, NewEventData(e))
	}
}
