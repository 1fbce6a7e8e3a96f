package client

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/arturojer/quantummus/internal/bot"
	"github.com/arturojer/quantummus/internal/game"
	"github.com/arturojer/quantummus/internal/protocol"
	"github.com/rs/zerolog"
)

// Agent plays one seat for a bot strategy over a Client.
type Agent struct {
	client *Client
	bot    bot.Bot
	logger zerolog.Logger

	mu       sync.Mutex
	seat     int
	state    *game.Snapshot
	lastTurn string
	moves    int
	result   chan protocol.GameOverData
	failed   chan error
}

// NewAgent registers the agent's handlers on c.
func NewAgent(c *Client, b bot.Bot, logger zerolog.Logger) *Agent {
	a := &Agent{
		client: c,
		bot:    b,
		logger: logger.With().Str("component", "agent").Str("bot", b.Name()).Logger(),
		seat:   -1,
		result: make(chan protocol.GameOverData, 1),
		failed: make(chan error, 1),
	}
	c.AddEventHandler(protocol.MessageTypeJoined, a.handleJoined)
	c.AddEventHandler(protocol.MessageTypeState, a.handleState)
	c.AddEventHandler(protocol.MessageTypeHandView, a.handleHandView)
	c.AddEventHandler(protocol.MessageTypeHandResult, a.handleHandResult)
	c.AddEventHandler(protocol.MessageTypeGameOver, a.handleGameOver)
	c.AddEventHandler(protocol.MessageTypeError, a.handleError)
	return a
}

// Seat returns the seat the server assigned, or -1 before joining.
func (a *Agent) Seat() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seat
}

// Moves returns how many inputs the agent has sent.
func (a *Agent) Moves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.moves
}

// Play joins a room and blocks until the game ends, the connection drops
// or ctx is cancelled.
func (a *Agent) Play(ctx context.Context, room, name string, seat *int, mode string) (protocol.GameOverData, error) {
	if err := a.client.Join(room, name, seat, mode); err != nil {
		return protocol.GameOverData{}, fmt.Errorf("join: %w", err)
	}
	select {
	case res := <-a.result:
		return res, nil
	case err := <-a.failed:
		return protocol.GameOverData{}, err
	case <-a.client.Done():
		return protocol.GameOverData{}, fmt.Errorf("connection closed before the game ended")
	case <-ctx.Done():
		return protocol.GameOverData{}, ctx.Err()
	}
}

func (a *Agent) handleJoined(msg *protocol.Message) {
	var d protocol.JoinedData
	if err := msg.Decode(&d); err != nil {
		a.fail(err)
		return
	}
	a.mu.Lock()
	a.seat = d.Seat
	a.mu.Unlock()
	a.logger.Info().Str("room", d.RoomID).Int("seat", d.Seat).Str("team", d.TeamName).Str("mode", d.Mode).Msg("Seated")
}

func (a *Agent) handleState(msg *protocol.Message) {
	var d protocol.StateData
	if err := msg.Decode(&d); err != nil {
		a.fail(err)
		return
	}
	s, err := protocol.ParseStateData(d)
	if err != nil {
		a.fail(err)
		return
	}
	a.mu.Lock()
	a.state = &s
	a.mu.Unlock()
}

// handleHandView moves once per turn. The server sends state and hand_view
// after every change, so the same turn can be seen several times.
func (a *Agent) handleHandView(msg *protocol.Message) {
	var d protocol.HandViewData
	if err := msg.Decode(&d); err != nil {
		a.fail(err)
		return
	}
	view, err := protocol.ParseHandViewData(d)
	if err != nil {
		a.fail(err)
		return
	}

	a.mu.Lock()
	s := a.state
	if s == nil || a.seat < 0 || !waitingOn(*s, a.seat) {
		a.lastTurn = ""
		a.mu.Unlock()
		return
	}
	key := turnKey(*s)
	if key == a.lastTurn {
		a.mu.Unlock()
		return
	}
	a.lastTurn = key
	a.moves++
	a.mu.Unlock()

	in := bot.Decide(view, *s, a.bot)
	if err := a.send(in); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to send move")
	}
}

func (a *Agent) send(in bot.Input) error {
	switch in.Stage {
	case game.Discarding:
		a.logger.Debug().Ints("slots", in.Slots).Msg("Discarding")
		return a.client.Discard(in.Slots)
	case game.Declaring:
		a.logger.Debug().Bool("has", in.Has).Msg("Declaring")
		return a.client.Declare(in.Has)
	default:
		a.logger.Debug().Str("action", in.Move.Action.String()).Int("amount", in.Move.Amount).Msg("Acting")
		return a.client.Act(in.Move.Action.String(), in.Move.Amount)
	}
}

func (a *Agent) handleHandResult(msg *protocol.Message) {
	var d protocol.HandResultData
	if err := msg.Decode(&d); err != nil {
		a.fail(err)
		return
	}
	a.logger.Info().Int("hand", d.Hand).Interface("scores", d.Scores).Msg("Hand complete")
}

func (a *Agent) handleGameOver(msg *protocol.Message) {
	var d protocol.GameOverData
	if err := msg.Decode(&d); err != nil {
		a.fail(err)
		return
	}
	select {
	case a.result <- d:
	default:
	}
}

func (a *Agent) handleError(msg *protocol.Message) {
	var d protocol.ErrorData
	if err := msg.Decode(&d); err != nil {
		a.fail(err)
		return
	}
	a.logger.Warn().Str("code", d.Code).Str("message", d.Message).Msg("Server rejected request")

	a.mu.Lock()
	seated := a.seat >= 0
	a.mu.Unlock()
	if !seated {
		a.fail(fmt.Errorf("join rejected: %s: %s", d.Code, d.Message))
	}
}

func (a *Agent) fail(err error) {
	select {
	case a.failed <- err:
	default:
	}
}

func waitingOn(s game.Snapshot, seat int) bool {
	if s.Over {
		return false
	}
	switch s.Stage {
	case game.Discarding, game.Declaring:
		return slices.Contains(s.Pending, seat)
	case game.HandComplete:
		return false
	default:
		return s.ActiveSeat == seat
	}
}

func turnKey(s game.Snapshot) string {
	return fmt.Sprintf("%d/%s/%s/%s/%d", s.Hand, s.Phase, s.Stage, s.Status, s.Stake)
}
