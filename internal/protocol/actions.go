package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arturojer/quantummus/internal/game"
)

// Error codes sent in ErrorData.
const (
	CodeOutOfTurn         = "out_of_turn"
	CodeIllegalAction     = "illegal_action"
	CodeInvalidSelection  = "invalid_selection"
	CodeInsufficientCards = "insufficient_cards"
	CodeGameOver          = "game_over"
	CodeBadRequest        = "bad_request"
)

// ErrUnknownAction is returned by ParseAction for a name with no alias.
var ErrUnknownAction = errors.New("unknown action")

var actionAliases = map[string]game.Action{
	"paso":  game.Check,
	"pass":  game.Check,
	"check": game.Check,

	"envido": game.Bet,
	"envite": game.Bet,
	"bet":    game.Bet,
	"raise":  game.Bet,

	"ordago": game.AllIn,
	"órdago": game.AllIn,
	"allin":  game.AllIn,
	"all_in": game.AllIn,
	"all-in": game.AllIn,

	"quiero": game.Accept,
	"accept": game.Accept,
	"call":   game.Accept,

	"no quiero": game.Reject,
	"no_quiero": game.Reject,
	"reject":    game.Reject,
	"fold":      game.Reject,

	"mus": game.Mus,

	"no mus": game.Cut,
	"no_mus": game.Cut,
	"cut":    game.Cut,
	"cortar": game.Cut,
}

// ParseAction maps a client action name, in English or Spanish, to a move.
// The amount is only kept for bets.
func ParseAction(name string, amount int) (game.Move, error) {
	key := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	a, ok := actionAliases[key]
	if !ok {
		return game.Move{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	if amount < 0 {
		return game.Move{}, fmt.Errorf("%w: negative amount %d", game.ErrIllegalAction, amount)
	}
	m := game.Move{Action: a}
	if a == game.Bet {
		m.Amount = amount
	}
	return m, nil
}

// ErrorCode maps an engine error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrOutOfTurn):
		return CodeOutOfTurn
	case errors.Is(err, game.ErrIllegalAction):
		return CodeIllegalAction
	case errors.Is(err, game.ErrInvalidSelection):
		return CodeInvalidSelection
	case errors.Is(err, game.ErrInsufficientCards):
		return CodeInsufficientCards
	case errors.Is(err, game.ErrGameOver):
		return CodeGameOver
	default:
		return CodeBadRequest
	}
}

// NewError builds an error message for err.
func NewError(err error) *Message {
	msg, _ := NewMessage(MessageTypeError, ErrorData{Code: ErrorCode(err), Message: err.Error()})
	return msg
}
