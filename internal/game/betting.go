package game

import "fmt"

// Status is the betting state of a phase.
type Status int

const (
	NoBet Status = iota
	BetPlaced
	Resolved
)

func (s Status) String() string {
	return [...]string{"NO_BET", "BET_PLACED", "RESOLVED"}[s]
}

// BetKind distinguishes an ordinary bet or raise from an all-in.
type BetKind int

const (
	NoBetKind BetKind = iota
	RaiseBet
	AllInBet
)

func (k BetKind) String() string {
	return [...]string{"none", "raise", "all_in"}[k]
}

// OutcomeKind records how a phase ended.
type OutcomeKind int

const (
	Pending OutcomeKind = iota
	// AllPassed: every eligible seat checked.
	AllPassed
	// Accepted: a bet was accepted and is settled after the hand.
	Accepted
	// Rejected: every eligible defender rejected; the attacker scores now.
	Rejected
	// AllInAccepted: an all-in was accepted and the phase settles now.
	AllInAccepted
	// Uncontested: only one team held the combination, no betting.
	Uncontested
	// NoContest: nobody held the combination; the phase scores nothing.
	NoContest
)

func (k OutcomeKind) String() string {
	return [...]string{"pending", "all_passed", "accepted", "rejected", "all_in", "uncontested", "no_contest"}[k]
}

// Deferred reports whether the outcome waits for the end-of-hand comparison.
func (k OutcomeKind) Deferred() bool {
	return k == AllPassed || k == Accepted || k == Uncontested
}

// Outcome is the result of a finished betting round.
type Outcome struct {
	Kind     OutcomeKind
	Stake    int
	Attacker Team
	// Winner is only known at resolution time for Rejected outcomes.
	Winner Team
}

// BettingRound is the betting state of one phase. A round is created when
// its phase begins and is never reused.
type BettingRound struct {
	Phase         Phase
	Status        Status
	Attacker      Team
	Defender      Team
	Stake         int
	PreviousStake int
	Kind          BetKind
	Rejections    []int
	Checked       [Seats]bool
	Eligible      [Seats]bool
	Active        int
	Mano          int
	WinScore      int
	Outcome       Outcome
}

// NewBettingRound starts a round in NoBet with the first eligible seat from
// mano to act. At least one seat must be eligible.
func NewBettingRound(phase Phase, mano int, eligible [Seats]bool, winScore int) *BettingRound {
	br := &BettingRound{
		Phase:    phase,
		Status:   NoBet,
		Attacker: NoTeam,
		Defender: NoTeam,
		Eligible: eligible,
		Active:   -1,
		Mano:     mano,
		WinScore: winScore,
		Outcome:  Outcome{Attacker: NoTeam, Winner: NoTeam},
	}
	if eligible[mano] {
		br.Active = mano
	} else {
		br.Active = br.nextEligible(mano, func(int) bool { return true })
	}
	return br
}

// AllEligible is the eligibility set for ungated phases.
func AllEligible() [Seats]bool {
	return [Seats]bool{true, true, true, true}
}

// ValidActions returns the actions the active seat may take.
func (br *BettingRound) ValidActions() []Action {
	switch br.Status {
	case NoBet:
		return []Action{Check, Bet, AllIn}
	case BetPlaced:
		if br.Kind == AllInBet {
			return []Action{Accept, Reject}
		}
		return []Action{Accept, Reject, Bet, AllIn}
	default:
		return nil
	}
}

// MinRaise is the smallest legal Bet amount for the active seat.
func (br *BettingRound) MinRaise() int {
	if br.Status == BetPlaced {
		return br.Stake + 1
	}
	return MinBet
}

// Act applies a move from seat. Errors leave the round unchanged.
func (br *BettingRound) Act(seat int, m Move) error {
	if br.Status == Resolved {
		return fmt.Errorf("%w: %s betting is resolved", ErrIllegalAction, br.Phase)
	}
	if seat != br.Active {
		return fmt.Errorf("%w: seat %d acted, seat %d is due", ErrOutOfTurn, seat, br.Active)
	}

	switch br.Status {
	case NoBet:
		return br.actNoBet(seat, m)
	case BetPlaced:
		return br.actBetPlaced(seat, m)
	}
	return nil
}

// Open places the first bet of the round from seat, out of the usual
// rotation. Only Bet and AllIn open a round.
func (br *BettingRound) Open(seat int, m Move) error {
	if br.Status != NoBet {
		return fmt.Errorf("%w: %s betting is already open", ErrIllegalAction, br.Phase)
	}
	if !br.Eligible[seat] {
		return fmt.Errorf("%w: seat %d is not eligible for %s", ErrIllegalAction, seat, br.Phase)
	}
	if m.Action != Bet && m.Action != AllIn {
		return fmt.Errorf("%w: %s cannot open betting", ErrIllegalAction, m.Action)
	}
	return br.actNoBet(seat, m)
}

func (br *BettingRound) actNoBet(seat int, m Move) error {
	switch m.Action {
	case Check:
		br.Checked[seat] = true
		next := br.nextEligible(seat, func(s int) bool { return !br.Checked[s] })
		if next < 0 {
			br.resolve(Outcome{Kind: AllPassed, Stake: PassStake, Attacker: NoTeam, Winner: NoTeam})
			return nil
		}
		br.Active = next
		return nil
	case Bet:
		if m.Amount < MinBet {
			return fmt.Errorf("%w: bet of %d is below the minimum of %d", ErrIllegalAction, m.Amount, MinBet)
		}
		br.place(seat, m.Amount, RaiseBet, PassStake)
		return nil
	case AllIn:
		br.place(seat, br.WinScore, AllInBet, PassStake)
		return nil
	case Accept, Reject:
		return fmt.Errorf("%w: no bet to %s", ErrIllegalAction, m.Action)
	default:
		return fmt.Errorf("%w: %s during betting", ErrIllegalAction, m.Action)
	}
}

func (br *BettingRound) actBetPlaced(seat int, m Move) error {
	switch m.Action {
	case Reject:
		br.Rejections = append(br.Rejections, seat)
		teammate := Partner(seat)
		if br.Eligible[teammate] && !br.rejected(teammate) {
			br.Active = teammate
			return nil
		}
		br.resolve(Outcome{Kind: Rejected, Stake: br.PreviousStake, Attacker: br.Attacker, Winner: br.Attacker})
		return nil
	case Accept:
		kind := Accepted
		if br.Kind == AllInBet {
			kind = AllInAccepted
		}
		br.resolve(Outcome{Kind: kind, Stake: br.Stake, Attacker: br.Attacker, Winner: NoTeam})
		return nil
	case Bet:
		if br.Kind == AllInBet {
			return fmt.Errorf("%w: cannot raise over an all-in", ErrIllegalAction)
		}
		if m.Amount <= br.Stake {
			return fmt.Errorf("%w: raise to %d must exceed the stake of %d", ErrIllegalAction, m.Amount, br.Stake)
		}
		br.place(seat, m.Amount, RaiseBet, br.Stake)
		return nil
	case AllIn:
		if br.Kind == AllInBet {
			return fmt.Errorf("%w: cannot raise over an all-in", ErrIllegalAction)
		}
		br.place(seat, br.WinScore, AllInBet, br.Stake)
		return nil
	case Check:
		return fmt.Errorf("%w: cannot check facing a bet", ErrIllegalAction)
	default:
		return fmt.Errorf("%w: %s during betting", ErrIllegalAction, m.Action)
	}
}

// place records a bet or raise from seat; previous is what a full
// rejection would pay.
func (br *BettingRound) place(seat, amount int, kind BetKind, previous int) {
	br.Status = BetPlaced
	br.Attacker = TeamOf(seat)
	br.Defender = br.Attacker.Other()
	br.PreviousStake = previous
	br.Stake = amount
	br.Kind = kind
	br.Rejections = br.Rejections[:0]
	br.Active = br.nextEligible(seat, func(s int) bool { return TeamOf(s) == br.Defender })
}

func (br *BettingRound) resolve(o Outcome) {
	br.Status = Resolved
	br.Outcome = o
	br.Active = -1
}

func (br *BettingRound) rejected(seat int) bool {
	for _, s := range br.Rejections {
		if s == seat {
			return true
		}
	}
	return false
}

// nextEligible walks the rotation from seat (exclusive) and returns the
// first eligible seat accepted by want, or -1.
func (br *BettingRound) nextEligible(seat int, want func(int) bool) int {
	s := seat
	for range Seats - 1 {
		s = NextSeat(s)
		if br.Eligible[s] && want(s) {
			return s
		}
	}
	return -1
}
