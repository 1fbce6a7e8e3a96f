package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/entanglement"
	"github.com/arturojer/quantummus/internal/quantum"
	"github.com/arturojer/quantummus/internal/randutil"
	"github.com/rs/zerolog"
)

// Game is the aggregate for one room: two teams, their scores, the current
// hand and the mano rotation.
type Game struct {
	roomID   string
	players  [Seats]string
	mode     deck.Mode
	winScore int
	names    [2]string
	scores   [2]int
	mano     int
	handNum  int

	rng       *rand.Rand
	entropy   *randutil.EntropySource
	src       quantum.RandomSource
	resolver  *quantum.Resolver
	deck      *deck.Deck
	stacked   []deck.Card
	superpose bool
	logger    zerolog.Logger

	hand         *Hand
	events       []Event
	over         bool
	firstReached Team
	aborted      error
}

// Hand is the state of one deal: cards, the current phase and its betting
// round, and the ledger of deferred comparisons.
type Hand struct {
	number    int
	mano      int
	phase     Phase
	stage     Stage
	cards     quantum.Hands
	betting   *BettingRound
	ledger    []LedgerEntry
	results   map[Phase]*PhaseResult
	active    int
	musRounds int

	spoke     [Seats]bool
	discards  [Seats][]int
	discarded [Seats]bool

	declared  [Seats]bool
	claims    [Seats]bool
	eligible  map[Phase][Seats]bool
	pointsRaw bool
	penalties [2]int
}

// Option configures a Game
type Option func(*Game)

// WithWinScore overrides the cumulative score that ends the game.
func WithWinScore(n int) Option {
	return func(g *Game) { g.winScore = n }
}

// WithTeamNames sets display names for team A and team B.
func WithTeamNames(a, b string) Option {
	return func(g *Game) { g.names = [2]string{a, b} }
}

// WithMano sets the lead seat of the first hand.
func WithMano(seat int) Option {
	return func(g *Game) { g.mano = seat }
}

// WithRNG sets the generator used for shuffling and superposition.
func WithRNG(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithSource sets the source used to collapse cards.
func WithSource(src quantum.RandomSource) Option {
	return func(g *Game) { g.src = src }
}

// WithStackedDeal makes the first hand deal cards in this order, four per
// seat starting with seat 0. Cards not listed follow in shuffled order.
func WithStackedDeal(cards []deck.Card) Option {
	return func(g *Game) { g.stacked = cards }
}

// WithoutSuperposition deals every non-entangled card plain.
func WithoutSuperposition() Option {
	return func(g *Game) { g.superpose = false }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// New creates a game for roomID and deals the first hand.
func New(roomID string, players [Seats]string, mode deck.Mode, opts ...Option) (*Game, error) {
	g := &Game{
		roomID:       roomID,
		players:      players,
		mode:         mode,
		winScore:     DefaultWinScore,
		names:        DefaultTeamNames,
		superpose:    true,
		logger:       zerolog.Nop(),
		firstReached: NoTeam,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.mano < 0 || g.mano >= Seats {
		return nil, fmt.Errorf("%w: mano seat %d", ErrInvalidSelection, g.mano)
	}
	if g.winScore <= 0 {
		return nil, fmt.Errorf("%w: win score %d", ErrInvalidSelection, g.winScore)
	}
	if g.rng == nil {
		g.rng = randutil.NewFromString(roomID)
	}
	g.entropy = randutil.NewEntropySource(g.rng)
	if g.src == nil {
		g.src = randutil.HashSource{}
	}
	g.resolver = quantum.NewResolver(g.src, entanglement.New(mode))

	if err := g.startHand(); err != nil {
		return nil, err
	}
	return g, nil
}

// RoomID returns the room identifier used in collapse seeds.
func (g *Game) RoomID() string { return g.roomID }

// Mode returns the game mode.
func (g *Game) Mode() deck.Mode { return g.mode }

// Players returns the seat names.
func (g *Game) Players() [Seats]string { return g.players }

// Scores returns both team scores.
func (g *Game) Scores() [2]int { return g.scores }

// Over reports whether a team has won.
func (g *Game) Over() bool { return g.over }

// Winner returns the winning team once the game is over.
func (g *Game) Winner() Team {
	if !g.over {
		return NoTeam
	}
	return g.firstReached
}

// Err returns the error that aborted the game, if any.
func (g *Game) Err() error { return g.aborted }

// Registry exposes the entanglement table.
func (g *Game) Registry() *entanglement.Registry { return g.resolver.Registry() }

// DrainEvents returns and clears the events emitted since the last call.
func (g *Game) DrainEvents() []Event {
	out := g.events
	g.events = nil
	return out
}

// Stage returns what the current hand is waiting for.
func (g *Game) Stage() Stage { return g.hand.stage }

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.hand.phase }

// ActiveSeat returns the seat due to act, or -1 while waiting on discards
// or after the game ends.
func (g *Game) ActiveSeat() int {
	if g.over || g.aborted != nil {
		return -1
	}
	return g.hand.active
}

// Ledger returns a copy of the current hand's deferred ledger.
func (g *Game) Ledger() []LedgerEntry {
	return slices.Clone(g.hand.ledger)
}

// PendingSeats lists the seats the game is waiting on.
func (g *Game) PendingSeats() []int {
	if g.over || g.aborted != nil {
		return nil
	}
	h := g.hand
	if h.stage == Discarding {
		var seats []int
		for s := range Seats {
			if !h.discarded[s] {
				seats = append(seats, s)
			}
		}
		return seats
	}
	if h.active < 0 {
		return nil
	}
	return []int{h.active}
}

// ValidActions returns the actions seat may take now.
func (g *Game) ValidActions(seat int) []Action {
	if g.over || g.aborted != nil || seat != g.hand.active {
		return nil
	}
	switch g.hand.stage {
	case Speaking:
		return []Action{Mus, Cut}
	case Betting:
		return g.hand.betting.ValidActions()
	default:
		return nil
	}
}

// Act applies a move for seat in the speaking or betting stages.
func (g *Game) Act(seat int, m Move) error {
	if err := g.checkOpen(seat); err != nil {
		return err
	}
	h := g.hand

	switch h.stage {
	case Speaking:
		return g.speak(seat, m)
	case Betting:
		if err := h.betting.Act(seat, m); err != nil {
			return err
		}
		g.emit(ActionEvent{Seat: seat, Phase: h.phase, Move: m})
		if m.Action == Accept {
			g.collapseSeat(seat, quantum.ReasonBetAcceptance)
		}
		if h.betting.Status == Resolved {
			return g.resolveBetting()
		}
		h.active = h.betting.Active
		return nil
	case Discarding:
		return fmt.Errorf("%w: waiting for discards", ErrIllegalAction)
	case Declaring:
		return fmt.Errorf("%w: waiting for declarations in %s", ErrIllegalAction, h.phase)
	default:
		return fmt.Errorf("%w: hand is complete", ErrIllegalAction)
	}
}

// Discard selects the slots seat wants replaced. Replacement happens once
// all four seats have chosen.
func (g *Game) Discard(seat int, slots []int) error {
	if err := g.checkOpen(seat); err != nil {
		return err
	}
	h := g.hand
	if h.stage != Discarding {
		return fmt.Errorf("%w: not waiting for discards", ErrIllegalAction)
	}
	if h.discarded[seat] {
		return fmt.Errorf("%w: seat %d already discarded", ErrInvalidSelection, seat)
	}
	if err := validateSlots(slots); err != nil {
		return err
	}

	h.discarded[seat] = true
	h.discards[seat] = slices.Clone(slots)
	slices.Sort(h.discards[seat])
	g.emit(DiscardEvent{Seat: seat, Count: len(slots)})

	for s := range Seats {
		if !h.discarded[s] {
			return nil
		}
	}
	return g.replaceDiscards()
}

// Declare records whether seat holds the combination for the current gated
// phase. The seat's cards collapse first; a claim that turns out false costs
// the team one point.
func (g *Game) Declare(seat int, has bool) error {
	return g.declare(seat, func(bool) bool { return has })
}

// ApplyDefault performs the move an idle seat is assumed to make: cut the
// mus, discard everything, declare truthfully, check, or reject.
func (g *Game) ApplyDefault(seat int) error {
	if err := g.checkOpen(seat); err != nil {
		return err
	}
	h := g.hand
	switch h.stage {
	case Speaking:
		return g.Act(seat, Move{Action: Cut})
	case Discarding:
		return g.Discard(seat, []int{0, 1, 2, 3})
	case Declaring:
		return g.declare(seat, func(actual bool) bool { return actual })
	case Betting:
		if h.betting.Status == BetPlaced {
			return g.Act(seat, Move{Action: Reject})
		}
		return g.Act(seat, Move{Action: Check})
	default:
		return fmt.Errorf("%w: hand is complete", ErrIllegalAction)
	}
}

func (g *Game) checkOpen(seat int) error {
	if g.aborted != nil {
		return g.aborted
	}
	if g.over {
		return ErrGameOver
	}
	if seat < 0 || seat >= Seats {
		return fmt.Errorf("%w: seat %d", ErrInvalidSelection, seat)
	}
	return nil
}

func validateSlots(slots []int) error {
	if len(slots) < 1 || len(slots) > HandSize {
		return fmt.Errorf("%w: discard between 1 and %d cards, got %d", ErrInvalidSelection, HandSize, len(slots))
	}
	var seen [HandSize]bool
	for _, s := range slots {
		if s < 0 || s >= HandSize {
			return fmt.Errorf("%w: slot %d out of range", ErrInvalidSelection, s)
		}
		if seen[s] {
			return fmt.Errorf("%w: slot %d repeated", ErrInvalidSelection, s)
		}
		seen[s] = true
	}
	return nil
}

func (g *Game) emit(e Event) {
	g.events = append(g.events, e)
}

func (g *Game) startHand() error {
	g.handNum++
	g.resolver.Registry().ResetForNewHand()

	if g.stacked != nil {
		g.deck = deck.NewStacked(g.rng, stackedOrder(g.rng, g.stacked))
		g.stacked = nil
	} else {
		g.deck = deck.New(g.rng)
	}

	h := &Hand{
		number:   g.handNum,
		mano:     g.mano,
		phase:    Intro,
		stage:    Speaking,
		active:   g.mano,
		results:  make(map[Phase]*PhaseResult),
		eligible: make(map[Phase][Seats]bool),
	}
	g.hand = h

	for s := range Seats {
		cards, err := g.deck.Draw(HandSize)
		if err != nil {
			return g.abort(err)
		}
		for i, c := range cards {
			h.cards[s][i] = quantum.NewCard(c)
		}
	}
	g.resolver.Link(&h.cards)
	if g.superpose {
		for s := range Seats {
			for i := range HandSize {
				quantum.MaybeSuperpose(h.cards[s][i], g.entropy)
			}
		}
	}

	g.logger.Debug().Str("room", g.roomID).Int("hand", h.number).Int("mano", h.mano).Msg("hand dealt")
	g.emit(HandStartEvent{Hand: h.number, Mano: h.mano})
	return nil
}

// stackedOrder puts the listed cards first and the rest of the deck after
// them in shuffled order.
func stackedOrder(rng *rand.Rand, first []deck.Card) []deck.Card {
	used := make(map[deck.Card]bool, len(first))
	order := make([]deck.Card, 0, deck.DeckSize)
	for _, c := range first {
		used[c] = true
		order = append(order, c)
	}
	var rest []deck.Card
	for _, suit := range deck.Suits {
		for _, rank := range deck.Ranks {
			if c := deck.NewCard(rank, suit); !used[c] {
				rest = append(rest, c)
			}
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append(order, rest...)
}

func (g *Game) abort(err error) error {
	g.aborted = fmt.Errorf("room %s hand %d aborted: %w", g.roomID, g.handNum, err)
	g.logger.Error().Err(err).Str("room", g.roomID).Int("hand", g.handNum).Msg("hand aborted")
	return g.aborted
}

func (g *Game) speak(seat int, m Move) error {
	h := g.hand
	switch m.Action {
	case Mus, Cut, Check, AllIn:
	case Bet:
		if m.Amount < MinBet {
			return fmt.Errorf("%w: bet of %d is below the minimum of %d", ErrIllegalAction, m.Amount, MinBet)
		}
	default:
		return fmt.Errorf("%w: %s before the first betting phase", ErrIllegalAction, m.Action)
	}
	if h.spoke[seat] {
		return fmt.Errorf("%w: seat %d already spoke", ErrInvalidSelection, seat)
	}
	if seat != h.active {
		return fmt.Errorf("%w: seat %d acted, seat %d is due", ErrOutOfTurn, seat, h.active)
	}

	h.spoke[seat] = true
	g.emit(ActionEvent{Seat: seat, Phase: Intro, Move: m})

	switch m.Action {
	case Cut, Check:
		g.enterPhase(LeadRank)
		return nil
	case Bet, AllIn:
		// A bet cuts the mus and opens lead rank from the speaker.
		g.enterPhase(LeadRank)
		if err := h.betting.Open(seat, m); err != nil {
			return g.abort(err)
		}
		h.active = h.betting.Active
		return nil
	}
	for s := range Seats {
		if !h.spoke[s] {
			h.active = NextSeat(seat)
			return nil
		}
	}

	h.stage = Discarding
	h.active = -1
	h.discarded = [Seats]bool{}
	h.discards = [Seats][]int{}
	g.emit(PhaseChangeEvent{Phase: Intro, Stage: Discarding})
	return nil
}

func (g *Game) replaceDiscards() error {
	h := g.hand
	var out []deck.Card
	var fresh []*quantum.Card

	seat := h.mano
	for range Seats {
		slots := h.discards[seat]
		drawn, err := g.deck.Draw(len(slots))
		if err != nil {
			return g.abort(err)
		}
		for i, slot := range slots {
			old := h.cards[seat][slot]
			g.resolver.Release(old)
			out = append(out, old.Identity())
			c := quantum.NewCard(drawn[i])
			h.cards[seat][slot] = c
			fresh = append(fresh, c)
		}
		seat = NextSeat(seat)
	}
	g.deck.Discard(out...)

	g.resolver.Link(&h.cards)
	if g.superpose {
		for _, c := range fresh {
			quantum.MaybeSuperpose(c, g.entropy)
		}
	}

	h.musRounds++
	h.spoke = [Seats]bool{}
	h.discarded = [Seats]bool{}
	h.discards = [Seats][]int{}
	h.stage = Speaking
	h.active = h.mano
	g.emit(DealEvent{Hand: h.number, Round: h.musRounds})
	g.emit(PhaseChangeEvent{Phase: Intro, Stage: Speaking})
	return nil
}

func (g *Game) enterPhase(p Phase) {
	h := g.hand
	h.phase = p
	h.betting = nil

	if p.Gated() {
		h.stage = Declaring
		h.declared = [Seats]bool{}
		h.claims = [Seats]bool{}
		h.active = h.mano
	} else {
		eligible := AllEligible()
		h.eligible[p] = eligible
		h.betting = NewBettingRound(p, h.mano, eligible, g.winScore)
		h.stage = Betting
		h.active = h.betting.Active
	}
	g.logger.Debug().Str("room", g.roomID).Int("hand", h.number).Stringer("phase", p).Stringer("stage", h.stage).Msg("phase started")
	g.emit(PhaseChangeEvent{Phase: p, Stage: h.stage})
}

func (g *Game) declare(seat int, claim func(actual bool) bool) error {
	if err := g.checkOpen(seat); err != nil {
		return err
	}
	h := g.hand
	if h.stage != Declaring {
		return fmt.Errorf("%w: declarations are only taken before betting in %s and %s", ErrIllegalAction, Pairs, Points)
	}
	if h.declared[seat] {
		return fmt.Errorf("%w: seat %d already declared", ErrInvalidSelection, seat)
	}
	if seat != h.active {
		return fmt.Errorf("%w: seat %d declared, seat %d is due", ErrOutOfTurn, seat, h.active)
	}

	g.collapseSeat(seat, quantum.ReasonDeclaration)
	actual := Holds(h.phase, g.mode, g.ranks(seat))
	has := claim(actual)

	penalty := 0
	if has != actual {
		team := TeamOf(seat)
		if g.scores[team] > 0 {
			g.scores[team]--
			penalty = 1
		}
		h.penalties[team]++
	}

	h.declared[seat] = true
	h.claims[seat] = has
	g.emit(DeclarationEvent{Seat: seat, Phase: h.phase, Claimed: has, Actual: actual, Penalty: penalty})

	next := NextSeat(seat)
	if !h.declared[next] {
		h.active = next
		return nil
	}
	return g.openGatedBetting()
}

func (g *Game) openGatedBetting() error {
	h := g.hand
	var eligible [Seats]bool
	anyHolds := false
	for s := range Seats {
		actual := Holds(h.phase, g.mode, g.ranks(s))
		anyHolds = anyHolds || actual
		eligible[s] = h.claims[s] && actual
	}
	if h.phase == Points && !anyHolds {
		h.pointsRaw = true
		eligible = AllEligible()
	}
	h.eligible[h.phase] = eligible

	var teams [2]bool
	for s := range Seats {
		if eligible[s] {
			teams[TeamOf(s)] = true
		}
	}

	switch {
	case teams[TeamA] && teams[TeamB]:
		h.betting = NewBettingRound(h.phase, h.mano, eligible, g.winScore)
		h.stage = Betting
		h.active = h.betting.Active
		g.emit(PhaseChangeEvent{Phase: h.phase, Stage: Betting})
		return nil
	case teams[TeamA] || teams[TeamB]:
		holder := TeamA
		if teams[TeamB] {
			holder = TeamB
		}
		h.ledger = append(h.ledger, LedgerEntry{Phase: h.phase, Stake: PassStake, Attacker: holder})
		g.record(PhaseResult{Phase: h.phase, Outcome: Uncontested, Stake: PassStake, Attacker: holder, Winner: NoTeam, Deferred: true})
	default:
		g.record(PhaseResult{Phase: h.phase, Outcome: NoContest, Attacker: NoTeam, Winner: NoTeam, Settled: true})
	}
	return g.finishPhase()
}

func (g *Game) resolveBetting() error {
	h := g.hand
	o := h.betting.Outcome
	res := PhaseResult{Phase: h.phase, Outcome: o.Kind, Stake: o.Stake, Attacker: o.Attacker, Winner: NoTeam}

	switch o.Kind {
	case AllPassed, Accepted:
		h.ledger = append(h.ledger, LedgerEntry{Phase: h.phase, Stake: o.Stake, Attacker: o.Attacker})
		res.Deferred = true
		g.record(res)
	case Rejected:
		res.Winner = o.Winner
		res.Points = o.Stake
		res.Settled = true
		g.credit(o.Winner, o.Stake)
		g.record(res)
		if g.firstReached != NoTeam {
			g.endHandEarly()
			return nil
		}
	case AllInAccepted:
		g.collapseAll()
		winner := g.scorer().Winner(h.phase, g.allRanks(), h.eligible[h.phase], h.pointsRaw)
		res.Winner = winner
		res.Points = o.Stake
		res.Settled = true
		g.credit(winner, o.Stake)
		g.record(res)
		if g.firstReached != NoTeam {
			g.endHandEarly()
			return nil
		}
	}
	return g.finishPhase()
}

func (g *Game) record(res PhaseResult) {
	r := res
	g.hand.results[res.Phase] = &r
	g.logger.Debug().Str("room", g.roomID).Int("hand", g.hand.number).Stringer("phase", res.Phase).
		Stringer("outcome", res.Outcome).Int("stake", res.Stake).Msg("phase resolved")
	g.emit(PhaseResolvedEvent{Result: r})
}

func (g *Game) finishPhase() error {
	if g.hand.phase == Points {
		return g.endHand()
	}
	g.enterPhase(g.hand.phase + 1)
	return nil
}

// endHand reveals every card, drains the ledger in phase order and either
// ends the game or deals the next hand.
func (g *Game) endHand() error {
	h := g.hand
	g.collapseAll()
	revealed := g.allRanks()
	scorer := g.scorer()

	for _, phase := range BettingPhases {
		for _, entry := range h.ledger {
			if entry.Phase != phase {
				continue
			}
			winner := scorer.Winner(phase, revealed, h.eligible[phase], phase == Points && h.pointsRaw)
			res := h.results[phase]
			if winner == NoTeam {
				continue
			}
			g.credit(winner, entry.Stake)
			if res != nil {
				res.Winner = winner
				res.Points = entry.Stake
				res.Settled = true
				g.emit(PhaseResolvedEvent{Result: *res})
			}
		}
	}

	h.stage = HandComplete
	h.active = -1
	g.emit(HandEndEvent{Summary: g.summary()})

	if g.firstReached != NoTeam {
		g.finishGame()
		return nil
	}
	g.mano = NextSeat(g.mano)
	return g.startHand()
}

// endHandEarly closes a hand whose immediate award ended the game.
func (g *Game) endHandEarly() {
	h := g.hand
	g.collapseAll()
	h.stage = HandComplete
	h.active = -1
	g.emit(HandEndEvent{Summary: g.summary()})
	g.finishGame()
}

func (g *Game) finishGame() {
	g.over = true
	g.logger.Info().Str("room", g.roomID).Stringer("winner", g.firstReached).
		Int("score_a", g.scores[TeamA]).Int("score_b", g.scores[TeamB]).Msg("game over")
	g.emit(GameOverEvent{Summary: GameSummary{
		Winner:     g.firstReached,
		WinnerName: g.names[g.firstReached],
		Scores:     g.scores,
		TeamNames:  g.names,
		Hands:      g.handNum,
	}})
}

func (g *Game) credit(t Team, points int) {
	if t == NoTeam || points <= 0 {
		return
	}
	g.scores[t] = min(g.scores[t]+points, g.winScore)
	if g.scores[t] >= g.winScore && g.firstReached == NoTeam {
		g.firstReached = t
	}
}

func (g *Game) scorer() Scorer {
	return Scorer{Mode: g.mode, Mano: g.hand.mano}
}

func (g *Game) seed(reason quantum.Reason) quantum.SeedFunc {
	h := g.hand
	return func(seat, slot int) string {
		return fmt.Sprintf("%s|%d|%s|%s|%d|%d", g.roomID, h.number, reason, h.phase, seat, slot)
	}
}

func (g *Game) collapseSeat(seat int, reason quantum.Reason) {
	evs := g.resolver.CollapseSeat(&g.hand.cards, seat, reason, g.seed(reason))
	g.emitCollapses(evs)
}

func (g *Game) collapseAll() {
	evs := g.resolver.CollapseAll(&g.hand.cards, quantum.ReasonFinalReveal, g.seed(quantum.ReasonFinalReveal))
	g.emitCollapses(evs)
}

func (g *Game) emitCollapses(evs []quantum.CollapseEvent) {
	for _, ev := range evs {
		g.emit(CollapseEvent{Phase: g.hand.phase, CollapseEvent: ev})
	}
}

func (g *Game) ranks(seat int) Ranks {
	var r Ranks
	for i := range HandSize {
		r[i] = g.hand.cards[seat][i].Rank()
	}
	return r
}

func (g *Game) allRanks() [Seats]Ranks {
	var out [Seats]Ranks
	for s := range Seats {
		out[s] = g.ranks(s)
	}
	return out
}

func (g *Game) summary() HandSummary {
	h := g.hand
	s := HandSummary{
		Hand:      h.number,
		Mano:      h.mano,
		Penalties: h.penalties,
		Scores:    g.scores,
		Revealed:  g.allRanks(),
		MusRounds: h.musRounds,
		Pairs:     g.resolver.Registry().Stats(),
	}
	for seat := range Seats {
		for i := range HandSize {
			s.Cards[seat][i] = h.cards[seat][i].Identity()
		}
	}
	for _, phase := range BettingPhases {
		if res, ok := h.results[phase]; ok {
			s.Results = append(s.Results, *res)
		}
	}
	return s
}
