package game

import (
	"errors"

	"github.com/arturojer/quantummus/internal/deck"
)

var (
	// ErrOutOfTurn is returned when a seat acts while another seat is due.
	ErrOutOfTurn = errors.New("out of turn")
	// ErrIllegalAction is returned for an action the current state does
	// not allow.
	ErrIllegalAction = errors.New("illegal action")
	// ErrInvalidSelection is returned for a malformed discard or
	// declaration, or a seat speaking twice in the intro.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrInsufficientCards aliases the deck error. It aborts the hand.
	ErrInsufficientCards = deck.ErrInsufficientCards
	// ErrGameOver is returned for any action once the game has finished.
	ErrGameOver = errors.New("game over")
)
