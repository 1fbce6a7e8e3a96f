package game

import (
	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/entanglement"
	"github.com/arturojer/quantummus/internal/quantum"
)

// EventType names an outbound game event.
type EventType string

const (
	EventTypeHandStart     EventType = "hand_start"
	EventTypeDeal          EventType = "deal"
	EventTypeAction        EventType = "action"
	EventTypeDiscard       EventType = "discard"
	EventTypeDeclaration   EventType = "declaration"
	EventTypeCollapse      EventType = "collapse"
	EventTypePhaseChange   EventType = "phase_change"
	EventTypePhaseResolved EventType = "phase_resolved"
	EventTypeHandEnd       EventType = "hand_end"
	EventTypeGameOver      EventType = "game_over"
)

func (et EventType) String() string {
	return string(et)
}

// Event is anything the game emits for collaborators to broadcast.
type Event interface {
	EventType() EventType
}

// HandStartEvent is emitted once the cards of a new hand are dealt.
type HandStartEvent struct {
	Hand int
	Mano int
}

func (HandStartEvent) EventType() EventType { return EventTypeHandStart }

// DealEvent is emitted after discards are replaced.
type DealEvent struct {
	Hand  int
	Round int
}

func (DealEvent) EventType() EventType { return EventTypeDeal }

// ActionEvent records an accepted move.
type ActionEvent struct {
	Seat  int
	Phase Phase
	Move  Move
}

func (ActionEvent) EventType() EventType { return EventTypeAction }

// DiscardEvent records a seat's discard selection. Slot indices are public;
// the cards are not.
type DiscardEvent struct {
	Seat  int
	Count int
}

func (DiscardEvent) EventType() EventType { return EventTypeDiscard }

// DeclarationEvent records a declaration and whether it was truthful.
type DeclarationEvent struct {
	Seat    int
	Phase   Phase
	Claimed bool
	Actual  bool
	Penalty int
}

func (DeclarationEvent) EventType() EventType { return EventTypeDeclaration }

// CollapseEvent reports one card resolving.
type CollapseEvent struct {
	Phase Phase
	quantum.CollapseEvent
}

func (CollapseEvent) EventType() EventType { return EventTypeCollapse }

// PhaseChangeEvent is emitted when the hand moves to a new phase or stage.
type PhaseChangeEvent struct {
	Phase Phase
	Stage Stage
}

func (PhaseChangeEvent) EventType() EventType { return EventTypePhaseChange }

// PhaseResolvedEvent is emitted when a phase's points are awarded, or when
// its betting ends and the comparison is deferred.
type PhaseResolvedEvent struct {
	Result PhaseResult
}

func (PhaseResolvedEvent) EventType() EventType { return EventTypePhaseResolved }

// HandEndEvent carries the end-of-hand summary.
type HandEndEvent struct {
	Summary HandSummary
}

func (HandEndEvent) EventType() EventType { return EventTypeHandEnd }

// GameOverEvent carries the final result.
type GameOverEvent struct {
	Summary GameSummary
}

func (GameOverEvent) EventType() EventType { return EventTypeGameOver }

// LedgerEntry is an accepted or passed phase awaiting comparison.
type LedgerEntry struct {
	Phase    Phase
	Stake    int
	Attacker Team
}

// PhaseResult is how one phase of a hand was decided.
type PhaseResult struct {
	Phase    Phase
	Outcome  OutcomeKind
	Stake    int
	Attacker Team
	Winner   Team
	Points   int
	Deferred bool
	Settled  bool
}

// HandSummary is published when a hand ends, including hands cut short by
// a rejected bet or an all-in that ended the game.
type HandSummary struct {
	Hand      int
	Mano      int
	Results   []PhaseResult
	Penalties [2]int
	Scores    [2]int
	Cards     [Seats][HandSize]deck.Card
	Revealed  [Seats]Ranks
	MusRounds int
	Pairs     entanglement.Stats
}

// GameSummary is published when a team reaches the win score.
type GameSummary struct {
	Winner     Team
	WinnerName string
	Scores     [2]int
	TeamNames  [2]string
	Hands      int
}
