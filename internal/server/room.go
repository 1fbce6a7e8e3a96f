package server

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/arturojer/quantummus/internal/bot"
	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/game"
	"github.com/arturojer/quantummus/internal/handlog"
	"github.com/arturojer/quantummus/internal/protocol"
	"github.com/arturojer/quantummus/internal/quantum"
	"github.com/arturojer/quantummus/internal/randutil"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrRoomFull is returned when every seat is taken.
	ErrRoomFull = errors.New("room is full")
	// ErrSeatTaken is returned when a requested seat is occupied.
	ErrSeatTaken = errors.New("seat is taken")
	// ErrNotSeated is returned for game input from a connection without a seat.
	ErrNotSeated = errors.New("not seated")
	// ErrRoomClosed is returned once the room has stopped.
	ErrRoomClosed = errors.New("room closed")
)

// Sender delivers messages to one client.
type Sender interface {
	Send(msg *protocol.Message) error
}

type seat struct {
	name string
	conn Sender
	bot  bot.Bot
}

func (s *seat) open() bool { return s.conn == nil && s.bot == nil }

// RoomOptions carries the server-wide settings a room needs.
type RoomOptions struct {
	Clock       quartz.Clock
	TurnTimeout time.Duration
	BotDelay    time.Duration
	HandLog     *handlog.Manager
}

// Room owns one game. All state is touched only by the goroutine started
// in Run; callers go through the inbox.
type Room struct {
	id     string
	cfg    RoomConfig
	mode   deck.Mode
	opts   RoomOptions
	logger zerolog.Logger
	rng    *rand.Rand

	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once

	seats    [game.Seats]seat
	g        *game.Game
	monitor  *handlog.Monitor
	timer    *quartz.Timer
	timerSeq uint64
	botSeq   uint64
}

// NewRoom creates a room from cfg. Bots named in cfg take their seats at
// once; the game starts when the last seat is filled.
func NewRoom(cfg RoomConfig, opts RoomOptions, logger zerolog.Logger) (*Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, _ := deck.ParseMode(cfg.Mode)
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = defaultTurnTimeout
	}

	id := uuid.NewString()
	seed := cfg.Seed
	if seed == "" {
		seed = id
	}
	r := &Room{
		id:     id,
		cfg:    cfg,
		mode:   mode,
		opts:   opts,
		logger: logger.With().Str("component", "room").Str("room", cfg.Name).Str("room_id", id).Logger(),
		rng:    randutil.NewFromString(seed),
		inbox:  make(chan func(), 64),
		done:   make(chan struct{}),
	}
	for _, b := range cfg.Bots {
		strategy, err := bot.New(b.Strategy, r.rng)
		if err != nil {
			return nil, err
		}
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", b.Strategy, b.Seat)
		}
		r.seats[b.Seat] = seat{name: name, bot: strategy}
	}
	return r, nil
}

// ID is the room's unique identifier.
func (r *Room) ID() string { return r.id }

// Name is the configured or requested room name.
func (r *Room) Name() string { return r.cfg.Name }

// Done is closed when the room stops.
func (r *Room) Done() <-chan struct{} { return r.done }

// Run processes the inbox until ctx ends or the room closes.
func (r *Room) Run(ctx context.Context) {
	defer r.close()
	r.maybeStart()
	for {
		select {
		case fn := <-r.inbox:
			fn()
		case <-ctx.Done():
			return
		case <-r.done:
			return
		}
	}
}

func (r *Room) close() {
	r.closeOnce.Do(func() {
		if r.timer != nil {
			r.timer.Stop()
		}
		if r.monitor != nil && r.opts.HandLog != nil {
			r.opts.HandLog.RemoveMonitor(r.id)
		}
		close(r.done)
	})
}

// post queues fn on the room goroutine.
func (r *Room) post(fn func()) bool {
	select {
	case r.inbox <- fn:
		return true
	case <-r.done:
		return false
	}
}

// call runs fn on the room goroutine and waits for its error.
func (r *Room) call(fn func() error) error {
	errc := make(chan error, 1)
	if !r.post(func() { errc <- fn() }) {
		return ErrRoomClosed
	}
	select {
	case err := <-errc:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Join seats conn. A nil seat takes the first open one.
func (r *Room) Join(conn Sender, name string, want *int) (int, error) {
	taken := -1
	err := r.call(func() error {
		s, err := r.pickSeat(want)
		if err != nil {
			return err
		}
		r.seats[s] = seat{name: name, conn: conn}
		taken = s
		r.logger.Info().Int("seat", s).Str("player", name).Msg("player joined")

		team := game.TeamOf(s)
		r.sendTo(s, protocol.MessageTypeJoined, protocol.JoinedData{
			RoomID:   r.cfg.Name,
			Seat:     s,
			Team:     team.String(),
			TeamName: r.teamNames()[team],
			Mode:     r.mode.String(),
		})
		if r.g == nil {
			r.maybeStart()
			if r.g == nil {
				r.broadcast(protocol.MessageTypeEvent, protocol.EventData{Kind: "waiting", Count: r.openSeats()})
			}
			return nil
		}
		r.sendState(s)
		return nil
	})
	return taken, err
}

func (r *Room) pickSeat(want *int) (int, error) {
	if want != nil {
		s := *want
		if s < 0 || s >= game.Seats {
			return -1, fmt.Errorf("%w: seat %d", game.ErrInvalidSelection, s)
		}
		if !r.seats[s].open() {
			return -1, fmt.Errorf("%w: seat %d", ErrSeatTaken, s)
		}
		return s, nil
	}
	for s := range game.Seats {
		if r.seats[s].open() {
			return s, nil
		}
	}
	return -1, ErrRoomFull
}

func (r *Room) openSeats() int {
	n := 0
	for s := range game.Seats {
		if r.seats[s].open() {
			n++
		}
	}
	return n
}

// Leave frees the seat held by conn. A game in progress keeps running with
// timeouts playing the seat; the room stops once no client is left.
func (r *Room) Leave(conn Sender) {
	r.post(func() {
		for s := range game.Seats {
			if r.seats[s].conn == conn {
				r.logger.Info().Int("seat", s).Str("player", r.seats[s].name).Msg("player left")
				r.seats[s].conn = nil
				if r.g == nil {
					r.seats[s] = seat{}
				}
			}
		}
		if r.humans() == 0 {
			r.close()
		}
	})
}

func (r *Room) humans() int {
	n := 0
	for s := range game.Seats {
		if r.seats[s].conn != nil {
			n++
		}
	}
	return n
}

// Act applies a speaking or betting move from conn's seat.
func (r *Room) Act(conn Sender, m game.Move) error {
	return r.input(conn, func(s int) error {
		if m.Action == game.Bet && m.Amount == 0 {
			m.Amount = r.g.Snapshot().MinRaise
		}
		return r.g.Act(s, m)
	})
}

// Discard applies conn's discard selection.
func (r *Room) Discard(conn Sender, slots []int) error {
	return r.input(conn, func(s int) error { return r.g.Discard(s, slots) })
}

// Declare applies conn's declaration.
func (r *Room) Declare(conn Sender, has bool) error {
	return r.input(conn, func(s int) error { return r.g.Declare(s, has) })
}

func (r *Room) input(conn Sender, apply func(seat int) error) error {
	return r.call(func() error {
		s := r.seatOf(conn)
		if s < 0 {
			return ErrNotSeated
		}
		if r.g == nil {
			return fmt.Errorf("%w: waiting for %d more players", game.ErrIllegalAction, r.openSeats())
		}
		if err := apply(s); err != nil {
			r.afterError(err)
			return err
		}
		r.step()
		return nil
	})
}

func (r *Room) seatOf(conn Sender) int {
	for s := range game.Seats {
		if r.seats[s].conn == conn {
			return s
		}
	}
	return -1
}

// Snapshot returns the public state, or false before the game starts.
func (r *Room) Snapshot() (game.Snapshot, bool) {
	var snap game.Snapshot
	started := false
	_ = r.call(func() error {
		if r.g != nil {
			snap = r.g.Snapshot()
			started = true
		}
		return nil
	})
	return snap, started
}

func (r *Room) teamNames() [2]string {
	names := game.DefaultTeamNames
	if len(r.cfg.TeamNames) == 2 {
		names = [2]string{r.cfg.TeamNames[0], r.cfg.TeamNames[1]}
	}
	return names
}

func (r *Room) maybeStart() {
	if r.g != nil || r.openSeats() > 0 {
		return
	}
	var players [game.Seats]string
	for s := range game.Seats {
		players[s] = r.seats[s].name
	}

	names := r.teamNames()
	g, err := game.New(r.cfg.Name, players, r.mode,
		game.WithRNG(r.rng),
		game.WithWinScore(r.cfg.WinScore),
		game.WithTeamNames(names[0], names[1]),
		game.WithLogger(r.logger),
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to start game")
		r.close()
		return
	}
	r.g = g
	r.logger.Info().Strs("players", players[:]).Str("mode", r.mode.String()).Msg("game started")

	if r.opts.HandLog != nil {
		m, err := r.opts.HandLog.CreateMonitor(r.id, r.mode.String(), players[:], names[:])
		if err != nil {
			r.logger.Warn().Err(err).Msg("hand log unavailable")
		} else {
			r.monitor = m
		}
	}
	r.step()
}

// step publishes everything the last change produced and arms whatever
// waits on the next input.
func (r *Room) step() {
	events := r.g.DrainEvents()
	if r.monitor != nil {
		r.monitor.Observe(events)
	}
	for _, e := range events {
		r.route(e)
	}
	for s := range game.Seats {
		r.sendState(s)
	}

	if err := r.g.Err(); err != nil {
		r.logger.Error().Err(err).Msg("hand aborted")
		r.broadcastMsg(protocol.NewError(err))
		r.close()
		return
	}
	if r.g.Over() {
		r.stopTimer()
		if r.humans() == 0 {
			r.close()
		}
		return
	}
	r.armTimer()
	r.scheduleBots()
}

func (r *Room) route(e game.Event) {
	msg, err := protocol.FromEvent(e)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to encode event")
		return
	}
	if c, ok := e.(game.CollapseEvent); ok && c.Reason != quantum.ReasonFinalReveal {
		r.sendMsg(c.Seat, msg)
		return
	}
	r.broadcastMsg(msg)
}

func (r *Room) sendState(s int) {
	if r.seats[s].conn == nil {
		return
	}
	r.sendTo(s, protocol.MessageTypeState, protocol.NewStateData(r.g.Snapshot()))
	r.sendTo(s, protocol.MessageTypeHandView, protocol.NewHandViewData(r.g.SeatView(s)))
}

func (r *Room) sendTo(s int, t protocol.MessageType, data any) {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to encode message")
		return
	}
	r.sendMsg(s, msg)
}

func (r *Room) sendMsg(s int, msg *protocol.Message) {
	conn := r.seats[s].conn
	if conn == nil {
		return
	}
	if err := conn.Send(msg); err != nil {
		r.logger.Debug().Err(err).Int("seat", s).Msg("send failed")
	}
}

func (r *Room) broadcast(t protocol.MessageType, data any) {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to encode message")
		return
	}
	r.broadcastMsg(msg)
}

func (r *Room) broadcastMsg(msg *protocol.Message) {
	for s := range game.Seats {
		r.sendMsg(s, msg)
	}
}

func (r *Room) afterError(err error) {
	if errors.Is(err, game.ErrInsufficientCards) {
		r.step()
	}
}

// waiting returns the seats the game needs input from.
func (r *Room) waiting() []int {
	if s := r.g.ActiveSeat(); s >= 0 {
		return []int{s}
	}
	return r.g.PendingSeats()
}

func (r *Room) stopTimer() {
	r.timerSeq++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// armTimer restarts the turn clock if a human or an empty seat is due.
func (r *Room) armTimer() {
	r.stopTimer()
	due := false
	for _, s := range r.waiting() {
		if r.seats[s].bot == nil {
			due = true
		}
	}
	if !due {
		return
	}
	seq := r.timerSeq
	r.timer = r.opts.Clock.AfterFunc(r.opts.TurnTimeout, func() {
		r.post(func() {
			if seq == r.timerSeq {
				r.expire()
			}
		})
	}, "room", "turn")
}

// expire plays the default move for every idle non-bot seat.
func (r *Room) expire() {
	if r.g == nil || r.g.Over() {
		return
	}
	applied := false
	for _, s := range r.waiting() {
		if r.seats[s].bot != nil {
			continue
		}
		stage := r.g.Stage()
		if err := r.g.ApplyDefault(s); err != nil {
			r.logger.Error().Err(err).Int("seat", s).Msg("default move failed")
			continue
		}
		applied = true
		r.logger.Warn().Int("seat", s).Stringer("stage", stage).Msg("turn timed out, default applied")
		r.broadcast(protocol.MessageTypeEvent, protocol.EventData{Kind: "timeout", Seat: &s, Stage: stage.String()})
		if r.g.Over() {
			break
		}
	}
	if applied {
		r.step()
	}
}

// scheduleBots queues a move for every bot the game is waiting on.
func (r *Room) scheduleBots() {
	r.botSeq++
	seq := r.botSeq
	for _, s := range r.waiting() {
		b := r.seats[s].bot
		if b == nil {
			continue
		}
		play := func() {
			if seq != r.botSeq || r.g.Over() {
				return
			}
			if err := bot.Play(r.g, s, b); err != nil {
				r.logger.Warn().Err(err).Int("seat", s).Str("bot", b.Name()).Msg("bot move rejected, applying default")
				if err := r.g.ApplyDefault(s); err != nil {
					r.logger.Error().Err(err).Int("seat", s).Msg("default move failed")
					return
				}
			}
			r.step()
		}
		if r.opts.BotDelay > 0 {
			r.opts.Clock.AfterFunc(r.opts.BotDelay, func() { r.post(play) }, "room", "bot")
		} else {
			go r.post(play)
		}
	}
}
