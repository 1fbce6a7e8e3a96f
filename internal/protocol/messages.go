// Package protocol defines the JSON messages exchanged over the room
// WebSocket and the conversions from engine types to wire payloads.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is the envelope for every frame in either direction.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

// MessageType names the payload carried by a Message.
type MessageType string

// Client to server message types
const (
	MessageTypeJoin    MessageType = "join"
	MessageTypeAction  MessageType = "action"
	MessageTypeDiscard MessageType = "discard"
	MessageTypeDeclare MessageType = "declare"
)

// Server to client message types
const (
	MessageTypeJoined     MessageType = "joined"
	MessageTypeState      MessageType = "state"
	MessageTypeHandView   MessageType = "hand_view"
	MessageTypeCollapse   MessageType = "collapse"
	MessageTypeEvent      MessageType = "event"
	MessageTypeHandResult MessageType = "hand_result"
	MessageTypeGameOver   MessageType = "game_over"
	MessageTypeError      MessageType = "error"
)

// NewMessage wraps data in an envelope stamped with the current time.
func NewMessage(msgType MessageType, data any) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", msgType, err)
	}
	return &Message{
		Type:      msgType,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s: empty payload", m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%s: %w", m.Type, err)
	}
	return nil
}

// JoinData asks to sit at a room. Seat is optional; the first free seat is
// used when it is absent.
type JoinData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
	Seat   *int   `json:"seat,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

// ActionData carries a speaking or betting action by name.
type ActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// DiscardData lists the hand slots to throw away.
type DiscardData struct {
	Slots []int `json:"slots"`
}

// DeclareData answers whether the seat holds pairs or game.
type DeclareData struct {
	Has bool `json:"has"`
}

// JoinedData confirms a seat.
type JoinedData struct {
	RoomID   string `json:"roomId"`
	Seat     int    `json:"seat"`
	Team     string `json:"team"`
	TeamName string `json:"teamName"`
	Mode     string `json:"mode"`
}

// LedgerEntryData is a phase waiting for the end-of-hand reveal.
type LedgerEntryData struct {
	Phase    string `json:"phase"`
	Stake    int    `json:"stake"`
	Attacker string `json:"attacker"`
}

// StateData is the public room state sent after every change.
type StateData struct {
	RoomID        string            `json:"roomId"`
	Mode          string            `json:"mode"`
	Hand          int               `json:"hand"`
	Mano          int               `json:"mano"`
	Phase         string            `json:"phase"`
	Stage         string            `json:"stage"`
	ActiveSeat    int               `json:"activeSeat"`
	Pending       []int             `json:"pending,omitempty"`
	Players       []string          `json:"players"`
	TeamNames     []string          `json:"teamNames"`
	Scores        map[string]int    `json:"scores"`
	WinScore      int               `json:"winScore"`
	Status        string            `json:"status,omitempty"`
	Stake         int               `json:"stake,omitempty"`
	PreviousStake int               `json:"previousStake,omitempty"`
	BetKind       string            `json:"betKind,omitempty"`
	Attacker      string            `json:"attacker,omitempty"`
	Eligible      []int             `json:"eligible,omitempty"`
	Ledger        []LedgerEntryData `json:"ledger,omitempty"`
	ValidActions  []string          `json:"validActions,omitempty"`
	MinRaise      int               `json:"minRaise,omitempty"`
	Over          bool              `json:"over"`
	Winner        string            `json:"winner,omitempty"`
}

// CardData is one card of the receiving seat's hand.
type CardData struct {
	Slot         int     `json:"slot"`
	Card         string  `json:"card"`
	Collapsed    bool    `json:"collapsed"`
	Rank         string  `json:"rank"`
	Entangled    bool    `json:"entangled,omitempty"`
	Partner      string  `json:"partner,omitempty"`
	PartnerSeat  *int    `json:"partnerSeat,omitempty"`
	Superposed   bool    `json:"superposed,omitempty"`
	Alternate    string  `json:"alternate,omitempty"`
	CoefficientA float64 `json:"coefficientA,omitempty"`
	CoefficientB float64 `json:"coefficientB,omitempty"`
}

// PairData describes an entangled pair touching the receiving seat.
type PairData struct {
	ID      string   `json:"id"`
	Cards   []string `json:"cards"`
	Holders []int    `json:"holders"`
	State   string   `json:"state"`
	Team    *int     `json:"team,omitempty"`
}

// HandViewData is sent privately to a seat.
type HandViewData struct {
	Seat  int        `json:"seat"`
	Team  string     `json:"team"`
	Cards []CardData `json:"cards"`
	Pairs []PairData `json:"pairs,omitempty"`
}

// CollapseData reports one card resolving to a definite rank.
type CollapseData struct {
	Seat    int    `json:"seat"`
	Slot    int    `json:"slot"`
	Card    string `json:"card"`
	OldRank string `json:"oldRank"`
	NewRank string `json:"newRank"`
	Reason  string `json:"reason"`
	Phase   string `json:"phase"`
	PairID  string `json:"pairId,omitempty"`
}

// EventData is a public game event in compact form.
type EventData struct {
	Kind    string `json:"kind"`
	Seat    *int   `json:"seat,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Stage   string `json:"stage,omitempty"`
	Action  string `json:"action,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Count   int    `json:"count,omitempty"`
	Claimed *bool  `json:"claimed,omitempty"`
	Penalty int    `json:"penalty,omitempty"`
	Hand    int    `json:"hand,omitempty"`
	Mano    *int   `json:"mano,omitempty"`
}

// PhaseResultData is how one phase of a hand was decided.
type PhaseResultData struct {
	Phase    string `json:"phase"`
	Outcome  string `json:"outcome"`
	Stake    int    `json:"stake"`
	Attacker string `json:"attacker,omitempty"`
	Winner   string `json:"winner,omitempty"`
	Points   int    `json:"points"`
	Deferred bool   `json:"deferred,omitempty"`
}

// HandResultData closes a hand and reveals every card.
type HandResultData struct {
	Hand      int               `json:"hand"`
	Mano      int               `json:"mano"`
	Results   []PhaseResultData `json:"results"`
	Penalties map[string]int    `json:"penalties"`
	Scores    map[string]int    `json:"scores"`
	Cards     [][]string        `json:"cards"`
	Revealed  [][]string        `json:"revealed"`
	MusRounds int               `json:"musRounds,omitempty"`
}

// GameOverData announces the winning team.
type GameOverData struct {
	Winner     string         `json:"winner"`
	WinnerName string         `json:"winnerName"`
	Scores     map[string]int `json:"scores"`
	TeamNames  []string       `json:"teamNames"`
	Hands      int            `json:"hands"`
}

// ErrorData reports a rejected request. State is never changed by a
// request that produced an error.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
