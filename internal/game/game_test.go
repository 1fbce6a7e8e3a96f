package game

import (
	"errors"
	"testing"

	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/quantum"
	"github.com/arturojer/quantummus/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaiseAcceptIsDeferredToEndOfHand(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	cut(t, g)

	bet(t, g, 0, 5)
	assert.Equal(t, 3, g.ActiveSeat(), "first defender in rotation from the bettor")
	bet(t, g, 3, 10)
	assert.Equal(t, 2, g.ActiveSeat(), "roles swap after a raise")
	act(t, g, 2, Accept)

	assert.Equal(t, []LedgerEntry{{Phase: LeadRank, Stake: 10, Attacker: TeamB}}, g.Ledger())
	assert.Equal(t, [2]int{0, 0}, g.Scores(), "accepted bets are not compared yet")
	assert.Equal(t, LowRank, g.Phase())
	assert.Equal(t, 0, g.ActiveSeat(), "each phase starts with mano")

	events := g.DrainEvents()
	collapses := eventsOf[CollapseEvent](events)
	require.Len(t, collapses, HandSize, "the accepting seat's cards collapse")
	for _, c := range collapses {
		assert.Equal(t, 2, c.Seat)
		assert.Equal(t, quantum.ReasonBetAcceptance, c.Reason)
	}

	checkAround(t, g)
	require.Equal(t, Pairs, g.Phase())
	for _, seat := range []int{0, 3, 2, 1} {
		declare(t, g, seat, false)
	}
	require.Equal(t, Points, g.Phase())
	for _, seat := range []int{0, 3, 2, 1} {
		declare(t, g, seat, false)
	}
	require.Equal(t, Betting, g.Stage(), "nobody holds game so raw points are bet")
	checkAround(t, g)

	events = g.DrainEvents()
	ends := eventsOf[HandEndEvent](events)
	require.Len(t, ends, 1)
	summary := ends[0].Summary

	results := map[Phase]PhaseResult{}
	for _, r := range summary.Results {
		results[r.Phase] = r
	}
	assert.Equal(t, PhaseResult{Phase: LeadRank, Outcome: Accepted, Stake: 10, Attacker: TeamB, Winner: TeamA, Points: 10, Deferred: true, Settled: true}, results[LeadRank])
	assert.Equal(t, TeamA, results[LowRank].Winner)
	assert.Equal(t, NoContest, results[Pairs].Outcome)
	assert.Equal(t, TeamA, results[Points].Winner)
	assert.Equal(t, 4, summary.Pairs.Total)
	assert.Zero(t, summary.Pairs.FullyDealt, "no pair has both cards in play")

	assert.Equal(t, [2]int{12, 0}, g.Scores())
	assert.Equal(t, 2, g.Snapshot().Hand, "a new hand is dealt")
	assert.Equal(t, 3, g.Snapshot().Mano, "mano rotates in turn order")
	assert.Empty(t, g.Ledger())
}

func TestSingleRejectionDoesNotEndPhase(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	cut(t, g)

	bet(t, g, 0, 5)
	act(t, g, 3, Reject)
	assert.Equal(t, LeadRank, g.Phase())
	assert.Equal(t, 1, g.ActiveSeat(), "the teammate must answer")
	assert.Equal(t, [2]int{0, 0}, g.Scores())

	act(t, g, 1, Reject)
	assert.Equal(t, LowRank, g.Phase())
	assert.Equal(t, [2]int{1, 0}, g.Scores(), "a rejected opening bet pays one point")
	assert.Empty(t, g.Ledger())
}

func TestRejectionAfterRaisePaysPreRaiseStake(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	cut(t, g)

	bet(t, g, 0, 5)
	bet(t, g, 3, 15)
	act(t, g, 2, Reject)
	act(t, g, 0, Reject)

	assert.Equal(t, [2]int{0, 5}, g.Scores())
	assert.Equal(t, LowRank, g.Phase())
}

func TestAllInAcceptResolvesImmediately(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	cut(t, g)

	act(t, g, 0, AllIn)
	act(t, g, 3, Accept)

	assert.True(t, g.Over())
	assert.Equal(t, TeamA, g.Winner(), "team A holds the king")
	assert.Equal(t, [2]int{DefaultWinScore, 0}, g.Scores())
	assert.Empty(t, g.Ledger())

	events := g.DrainEvents()
	over := eventsOf[GameOverEvent](events)
	require.Len(t, over, 1)
	assert.Equal(t, "Copenhagen", over[0].Summary.WinnerName)

	reveals := 0
	for _, c := range eventsOf[CollapseEvent](events) {
		if c.Reason == quantum.ReasonFinalReveal {
			reveals++
		}
	}
	assert.Equal(t, 12, reveals, "seat 3 collapsed on accept, the rest on reveal")

	err := g.Act(1, Move{Action: Check})
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestRaiseOverAllInIsIllegal(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	cut(t, g)
	act(t, g, 0, AllIn)

	err := g.Act(3, Move{Action: Bet, Amount: 50})
	assert.ErrorIs(t, err, ErrIllegalAction)
	err = g.Act(3, Move{Action: AllIn})
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, 3, g.ActiveSeat())
}

func TestTieGoesToManoTeam(t *testing.T) {
	t.Parallel()

	hands := [Seats]string{
		"Ko 4o 5o 6o",
		"Kc 4c 5c 6c",
		"Qb 4b 5b 6b",
		"Qe 4e 5e 6e",
	}
	for _, tc := range []struct {
		mano int
		want Team
	}{
		{mano: 0, want: TeamA},
		{mano: 1, want: TeamB},
	} {
		g := newTestGame(t, hands, WithMano(tc.mano))
		cut(t, g)
		checkAround(t, g)
		checkAround(t, g)
		for range Seats {
			declare(t, g, g.ActiveSeat(), true)
		}
		checkAround(t, g)
		for range Seats {
			declare(t, g, g.ActiveSeat(), false)
		}
		checkAround(t, g)

		ends := eventsOf[HandEndEvent](g.DrainEvents())
		require.Len(t, ends, 1)
		for _, r := range ends[0].Summary.Results {
			if r.Phase == LeadRank || r.Phase == LowRank {
				assert.Equal(t, tc.want, r.Winner, "mano %d phase %s", tc.mano, r.Phase)
			}
		}
	}
}

func TestOutOfTurnLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	before := g.Snapshot()

	err := g.Act(1, Move{Action: Mus})
	assert.ErrorIs(t, err, ErrOutOfTurn)
	assert.Equal(t, before, g.Snapshot())

	cut(t, g)
	err = g.Act(2, Move{Action: Check})
	assert.ErrorIs(t, err, ErrOutOfTurn)

	err = g.Act(0, Move{Action: Accept})
	assert.ErrorIs(t, err, ErrIllegalAction, "nothing to accept")
	err = g.Act(0, Move{Action: Bet, Amount: 1})
	assert.ErrorIs(t, err, ErrIllegalAction, "below the minimum")
	err = g.Declare(0, true)
	assert.ErrorIs(t, err, ErrIllegalAction, "lead rank has no declarations")
	err = g.Discard(0, []int{0})
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Empty(t, g.Ledger())
}

func TestIntroMusAndDiscard(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	before := g.SeatView(0)

	for _, seat := range []int{0, 3, 2} {
		act(t, g, seat, Mus)
	}
	err := g.Act(0, Move{Action: Mus})
	assert.ErrorIs(t, err, ErrInvalidSelection, "a seat speaks once per intro round")
	act(t, g, 1, Mus)

	require.Equal(t, Discarding, g.Stage())
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, g.PendingSeats())

	assert.ErrorIs(t, g.Discard(1, nil), ErrInvalidSelection)
	assert.ErrorIs(t, g.Discard(1, []int{0, 0}), ErrInvalidSelection)
	assert.ErrorIs(t, g.Discard(1, []int{4}), ErrInvalidSelection)
	assert.ErrorIs(t, g.Discard(1, []int{0, 1, 2, 3, 0}), ErrInvalidSelection)

	require.NoError(t, g.Discard(2, []int{3}))
	assert.ErrorIs(t, g.Discard(2, []int{1}), ErrInvalidSelection)
	require.NoError(t, g.Discard(1, []int{0, 1}))
	require.NoError(t, g.Discard(3, []int{0}))
	require.NoError(t, g.Discard(0, []int{1, 2}))

	assert.Equal(t, Speaking, g.Stage())
	assert.Equal(t, 0, g.ActiveSeat(), "intro restarts from mano")

	after := g.SeatView(0)
	assert.Equal(t, before.Cards[0].Card, after.Cards[0].Card)
	assert.Equal(t, before.Cards[3].Card, after.Cards[3].Card)
	assert.NotEqual(t, before.Cards[1].Card, after.Cards[1].Card)

	deals := eventsOf[DealEvent](g.DrainEvents())
	require.Len(t, deals, 1)
	assert.Equal(t, 1, deals[0].Round)

	seen := map[deck.Card]bool{}
	for s := range Seats {
		for _, c := range g.SeatView(s).Cards {
			assert.False(t, seen[c.Card], "card %s dealt twice", c.Card)
			seen[c.Card] = true
		}
	}
}

func TestIntroPassCutsMus(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	act(t, g, 0, Mus)
	act(t, g, 3, Check)

	assert.Equal(t, LeadRank, g.Phase())
	assert.Equal(t, Betting, g.Stage())
	snap := g.Snapshot()
	assert.Equal(t, NoBet, snap.Status)
	assert.Equal(t, 0, snap.ActiveSeat, "betting starts with mano")
}

func TestIntroBetOpensLeadRank(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	act(t, g, 0, Mus)
	assert.Equal(t, MinBet, g.Snapshot().MinRaise)

	err := g.Act(3, Move{Action: Bet, Amount: 1})
	assert.ErrorIs(t, err, ErrIllegalAction, "below the minimum")
	assert.Equal(t, Speaking, g.Stage())
	assert.Equal(t, 3, g.ActiveSeat())

	bet(t, g, 3, 2)

	snap := g.Snapshot()
	assert.Equal(t, LeadRank, snap.Phase)
	assert.Equal(t, Betting, snap.Stage)
	assert.Equal(t, BetPlaced, snap.Status)
	assert.Equal(t, RaiseBet, snap.BetKind)
	assert.Equal(t, 2, snap.Stake)
	assert.Equal(t, TeamB, snap.Attacker)
	assert.Equal(t, TeamA, snap.Defender)
	assert.Equal(t, 2, snap.ActiveSeat, "first defender after the bettor")

	events := g.DrainEvents()
	actions := eventsOf[ActionEvent](events)
	require.Len(t, actions, 2)
	assert.Equal(t, ActionEvent{Seat: 3, Phase: Intro, Move: Move{Action: Bet, Amount: 2}}, actions[1])

	act(t, g, 2, Accept)
	assert.Equal(t, []LedgerEntry{{Phase: LeadRank, Stake: 2, Attacker: TeamB}}, g.Ledger())
	assert.Equal(t, LowRank, g.Phase())
}

func TestIntroAllInOpensLeadRank(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	act(t, g, 0, AllIn)

	snap := g.Snapshot()
	assert.Equal(t, LeadRank, snap.Phase)
	assert.Equal(t, BetPlaced, snap.Status)
	assert.Equal(t, AllInBet, snap.BetKind)
	assert.Equal(t, snap.WinScore, snap.Stake)
	assert.Equal(t, TeamA, snap.Attacker)
	assert.Equal(t, 3, snap.ActiveSeat)
	assert.Equal(t, []Action{Accept, Reject}, snap.ValidActions)
}

func TestGatedPhaseSkipsIneligibleSeats(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, pairsHands)
	cut(t, g)
	checkAround(t, g)
	checkAround(t, g)
	require.Equal(t, Pairs, g.Phase())
	require.Equal(t, Declaring, g.Stage())

	declare(t, g, 0, true)
	declare(t, g, 3, false)
	declare(t, g, 2, false)
	declare(t, g, 1, true)

	require.Equal(t, Betting, g.Stage())
	snap := g.Snapshot()
	assert.Equal(t, [Seats]bool{true, true, false, false}, snap.Eligible)

	bet(t, g, 0, 2)
	assert.Equal(t, 1, g.ActiveSeat(), "seat 3 holds nothing and is skipped")
	act(t, g, 1, Reject)

	assert.Equal(t, Points, g.Phase(), "the only eligible defender rejected")
	assert.Equal(t, [2]int{1, 0}, g.Scores())
}

func TestUncontestedPhaseIsDeferredWithoutBetting(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, pairsHands)
	cut(t, g)
	checkAround(t, g)
	checkAround(t, g)

	declare(t, g, 0, true)
	declare(t, g, 3, false)
	declare(t, g, 2, false)
	declare(t, g, 1, false)

	assert.Equal(t, Points, g.Phase())
	assert.Contains(t, g.Ledger(), LedgerEntry{Phase: Pairs, Stake: 1, Attacker: TeamA})

	decls := eventsOf[DeclarationEvent](g.DrainEvents())
	require.Len(t, decls, 4)
	lie := decls[3]
	assert.Equal(t, 1, lie.Seat)
	assert.False(t, lie.Claimed)
	assert.True(t, lie.Actual)
	assert.Equal(t, 0, lie.Penalty, "score cannot go below zero")
}

func TestWrongDeclarationCostsAPoint(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, pairsHands)
	cut(t, g)
	bet(t, g, 0, 3)
	act(t, g, 3, Reject)
	act(t, g, 1, Reject)
	require.Equal(t, [2]int{1, 0}, g.Scores())
	checkAround(t, g)

	declare(t, g, 0, true)
	declare(t, g, 3, false)
	declare(t, g, 2, true)
	assert.Equal(t, [2]int{0, 0}, g.Scores(), "seat 2 holds no pair")
	declare(t, g, 1, true)

	assert.Equal(t, [Seats]bool{true, true, false, false}, g.Snapshot().Eligible)
}

func TestDeclarationCollapsesEntangledPartner(t *testing.T) {
	t.Parallel()

	hands := [Seats]string{
		"Ko 7o 6o 5o",
		"Qc 7c 6c 4c",
		"Jb 5b 4b 2b",
		"Ao 6e 5e 3e",
	}
	g := newTestGame(t, hands, WithSource(fixedSource(0.9)))
	view := g.SeatView(0)
	require.True(t, view.Cards[0].Entangled)
	require.Equal(t, 3, view.Cards[0].PartnerSeat)

	cut(t, g)
	checkAround(t, g)
	checkAround(t, g)
	g.DrainEvents()

	declare(t, g, 0, false)
	collapses := eventsOf[CollapseEvent](g.DrainEvents())
	require.Len(t, collapses, 5)
	assert.Equal(t, 0, collapses[0].Seat)
	assert.Equal(t, deck.Ace, collapses[0].NewRank)
	assert.Equal(t, 3, collapses[1].Seat)
	assert.Equal(t, deck.King, collapses[1].NewRank)
	assert.Equal(t, "Ko-Ao", collapses[1].PairID)

	assert.Equal(t, deck.King, g.SeatView(3).Cards[0].Rank)
	assert.True(t, g.SeatView(3).Cards[0].Collapsed)
}

func TestApplyDefault(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, pairsHands)
	require.NoError(t, g.ApplyDefault(0))
	assert.Equal(t, LeadRank, g.Phase(), "an idle seat cuts the mus")

	bet(t, g, 0, 4)
	require.NoError(t, g.ApplyDefault(3))
	assert.Equal(t, 1, g.ActiveSeat(), "an idle defender rejects")
	require.NoError(t, g.ApplyDefault(1))
	assert.Equal(t, LowRank, g.Phase())

	for g.Phase() == LowRank {
		require.NoError(t, g.ApplyDefault(g.ActiveSeat()))
	}
	require.Equal(t, Pairs, g.Phase())
	for g.Stage() == Declaring {
		require.NoError(t, g.ApplyDefault(g.ActiveSeat()))
	}
	decls := eventsOf[DeclarationEvent](g.DrainEvents())
	for _, d := range decls {
		assert.Equal(t, d.Actual, d.Claimed, "default declarations are truthful")
	}
}

func TestApplyDefaultDiscardsEverything(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	for _, seat := range []int{0, 3, 2, 1} {
		act(t, g, seat, Mus)
	}
	before := g.SeatView(2)
	require.NoError(t, g.Discard(0, []int{0}))
	require.NoError(t, g.Discard(1, []int{0}))
	require.NoError(t, g.Discard(3, []int{0}))
	require.NoError(t, g.ApplyDefault(2))

	after := g.SeatView(2)
	for i := range HandSize {
		assert.NotEqual(t, before.Cards[i].Card, after.Cards[i].Card)
	}
}

func TestSnapshotHidesCards(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, plainHands)
	cut(t, g)
	bet(t, g, 0, 6)

	snap := g.Snapshot()
	assert.Equal(t, BetPlaced, snap.Status)
	assert.Equal(t, 6, snap.Stake)
	assert.Equal(t, 1, snap.PreviousStake)
	assert.Equal(t, TeamA, snap.Attacker)
	assert.Equal(t, TeamB, snap.Defender)
	assert.Equal(t, 7, snap.MinRaise)
	assert.ElementsMatch(t, []Action{Accept, Reject, Bet, AllIn}, snap.ValidActions)
}

func TestNewRejectsBadOptions(t *testing.T) {
	t.Parallel()

	_, err := New("r", testPlayers, deck.FourKings, WithMano(4))
	assert.ErrorIs(t, err, ErrInvalidSelection)
	_, err = New("r", testPlayers, deck.FourKings, WithWinScore(0))
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

// TestRandomGamesTerminate plays random legal moves and checks the
// invariants that must hold whatever the players do.
func TestRandomGamesTerminate(t *testing.T) {
	t.Parallel()

	for seed := range int64(25) {
		rng := randutil.New(seed)
		mode := deck.FourKings
		if seed%2 == 1 {
			mode = deck.EightKings
		}
		g, err := New("random", testPlayers, mode, WithRNG(randutil.New(seed+1000)), WithWinScore(20))
		require.NoError(t, err)

		for steps := 0; !g.Over(); steps++ {
			require.Less(t, steps, 20000, "seed %d did not finish", seed)
			switch g.Stage() {
			case Speaking:
				a := Cut
				if rng.IntN(3) > 0 {
					a = Mus
				}
				require.NoError(t, g.Act(g.ActiveSeat(), Move{Action: a}))
			case Discarding:
				seat := g.PendingSeats()[0]
				n := 1 + rng.IntN(HandSize)
				require.NoError(t, g.Discard(seat, rng.Perm(HandSize)[:n]))
			case Declaring:
				require.NoError(t, g.Declare(g.ActiveSeat(), rng.IntN(2) == 0))
			case Betting:
				seat := g.ActiveSeat()
				valid := g.ValidActions(seat)
				require.NotEmpty(t, valid)
				a := valid[rng.IntN(len(valid))]
				m := Move{Action: a}
				if a == Bet {
					m.Amount = g.Snapshot().MinRaise + rng.IntN(3)
				}
				require.NoError(t, g.Act(seat, m))
			default:
				t.Fatalf("unexpected stage %s", g.Stage())
			}

			for _, s := range g.Scores() {
				require.LessOrEqual(t, s, 20)
				require.GreaterOrEqual(t, s, 0)
			}
		}
		assert.NotEqual(t, NoTeam, g.Winner())
		assert.Equal(t, 20, g.Scores()[g.Winner()])
		require.True(t, errors.Is(g.Act(0, Move{Action: Check}), ErrGameOver))
	}
}
