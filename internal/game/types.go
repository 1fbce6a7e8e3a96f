package game

import "fmt"

const (
	// Seats at the table.
	Seats = 4
	// HandSize is the number of cards each seat holds.
	HandSize = 4
	// DefaultWinScore is the cumulative score that ends a game.
	DefaultWinScore = 40
	// MinBet is the smallest opening bet.
	MinBet = 2
	// PassStake is credited for a phase nobody bet on, or a phase whose
	// first bet was rejected.
	PassStake = 1
	// GameThreshold is the points total that qualifies as a game hand.
	GameThreshold = 31
)

// NextSeat returns the seat that acts after seat. Turn order runs to the
// right: seat indices decrease.
func NextSeat(seat int) int {
	return (seat + Seats - 1) % Seats
}

// Phase is a stage of a hand.
type Phase int

const (
	Intro Phase = iota
	LeadRank
	LowRank
	Pairs
	Points
)

// BettingPhases lists the four betting phases in scoring order.
var BettingPhases = [...]Phase{LeadRank, LowRank, Pairs, Points}

func (p Phase) String() string {
	if p < Intro || p > Points {
		return fmt.Sprintf("PHASE(%d)", int(p))
	}
	return [...]string{"INTRO", "LEAD_RANK", "LOW_RANK", "PAIRS", "POINTS"}[p]
}

// Gated reports whether seats must declare a qualifying combination before
// they may bet in the phase.
func (p Phase) Gated() bool {
	return p == Pairs || p == Points
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for p := Intro; p <= Points; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// Stage is what the hand is waiting for within a phase.
type Stage int

const (
	Speaking Stage = iota
	Discarding
	Declaring
	Betting
	HandComplete
)

func (s Stage) String() string {
	return [...]string{"speaking", "discarding", "declaring", "betting", "complete"}[s]
}

// Action is the closed set of moves a seat can make.
type Action int

const (
	Check Action = iota
	Bet
	AllIn
	Accept
	Reject
	Mus
	Cut
)

func (a Action) String() string {
	if a < Check || a > Cut {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return [...]string{"check", "bet", "allin", "accept", "reject", "mus", "cut"}[a]
}

// Move is an action plus its amount. Only Bet carries an amount.
type Move struct {
	Action Action
	Amount int
}

func (m Move) String() string {
	if m.Action == Bet {
		return fmt.Sprintf("bet %d", m.Amount)
	}
	return m.Action.String()
}

// Team identifies one of the two partnerships.
type Team int

const (
	NoTeam Team = -1
	TeamA  Team = 0
	TeamB  Team = 1
)

// DefaultTeamNames are used when no names are configured.
var DefaultTeamNames = [2]string{"Copenhagen", "Bohmian"}

// TeamOf returns the team seat plays for. Partners sit opposite.
func TeamOf(seat int) Team {
	return Team(seat % 2)
}

// Other returns the opposing team.
func (t Team) Other() Team {
	switch t {
	case TeamA:
		return TeamB
	case TeamB:
		return TeamA
	default:
		return NoTeam
	}
}

// Seats returns both seats of the team.
func (t Team) Seats() [2]int {
	return [2]int{int(t), int(t) + 2}
}

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	default:
		return "-"
	}
}

// Partner returns the seat opposite seat.
func Partner(seat int) int {
	return (seat + 2) % Seats
}
