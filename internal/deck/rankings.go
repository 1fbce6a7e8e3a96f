package deck

import "fmt"

// Mode selects the house rules that change how ranks are valued.
type Mode int

const (
	// FourKings is the plain game: every rank counts as printed.
	FourKings Mode = 4
	// EightKings counts threes as kings and twos as aces.
	EightKings Mode = 8
)

func (m Mode) String() string {
	switch m {
	case FourKings:
		return "4"
	case EightKings:
		return "8"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "4" or "8".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "4", "":
		return FourKings, nil
	case "8":
		return EightKings, nil
	default:
		return 0, fmt.Errorf("unknown game mode %q", s)
	}
}

// Normalize maps a rank to the rank it plays as under the mode.
func (m Mode) Normalize(r Rank) Rank {
	if m == EightKings {
		switch r {
		case Three:
			return King
		case Two:
			return Ace
		}
	}
	return r
}

// Order returns a comparable strength for r: higher is better for the
// lead-rank phase and lower is better for the low-rank phase.
func (m Mode) Order(r Rank) int {
	return int(m.Normalize(r))
}

// Points returns the value a card contributes to a points total.
func (m Mode) Points(r Rank) int {
	switch r {
	case Ace, Two:
		return 1
	case Three:
		if m == EightKings {
			return 10
		}
		return 3
	case Four, Five, Six, Seven:
		return int(r)
	case Jack, Queen, King:
		return 10
	default:
		return 0
	}
}
