package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBettingAllPassed(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(LowRank, 2, AllEligible(), DefaultWinScore)
	for _, seat := range []int{2, 1, 0, 3} {
		require.Equal(t, seat, br.Active)
		require.NoError(t, br.Act(seat, Move{Action: Check}))
	}
	assert.Equal(t, Resolved, br.Status)
	assert.Equal(t, Outcome{Kind: AllPassed, Stake: PassStake, Attacker: NoTeam, Winner: NoTeam}, br.Outcome)

	err := br.Act(3, Move{Action: Check})
	assert.ErrorIs(t, err, ErrIllegalAction)
}

func TestBettingStartsAtFirstEligibleSeat(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(Pairs, 0, [Seats]bool{false, true, true, false}, DefaultWinScore)
	assert.Equal(t, 2, br.Active)
	require.NoError(t, br.Act(2, Move{Action: Check}))
	assert.Equal(t, 1, br.Active)
	require.NoError(t, br.Act(1, Move{Action: Check}))
	assert.Equal(t, AllPassed, br.Outcome.Kind)
}

func TestBettingRaiseChain(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(LeadRank, 1, AllEligible(), DefaultWinScore)
	require.NoError(t, br.Act(1, Move{Action: Bet, Amount: 2}))
	assert.Equal(t, TeamB, br.Attacker)
	assert.Equal(t, 0, br.Active)

	err := br.Act(0, Move{Action: Bet, Amount: 2})
	assert.ErrorIs(t, err, ErrIllegalAction, "a raise must exceed the stake")

	require.NoError(t, br.Act(0, Move{Action: Bet, Amount: 4}))
	assert.Equal(t, TeamA, br.Attacker)
	assert.Equal(t, 2, br.PreviousStake)
	assert.Equal(t, 3, br.Active)

	require.NoError(t, br.Act(3, Move{Action: Reject}))
	assert.Equal(t, []int{3}, br.Rejections)
	require.NoError(t, br.Act(1, Move{Action: AllIn}))
	assert.Empty(t, br.Rejections, "a raise clears rejections")
	assert.Equal(t, AllInBet, br.Kind)
	assert.Equal(t, 4, br.PreviousStake)
	assert.Equal(t, 0, br.Active)

	require.NoError(t, br.Act(0, Move{Action: Accept}))
	assert.Equal(t, Outcome{Kind: AllInAccepted, Stake: DefaultWinScore, Attacker: TeamB, Winner: NoTeam}, br.Outcome)
}

func TestBettingCheckFacingBet(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(LeadRank, 0, AllEligible(), DefaultWinScore)
	require.NoError(t, br.Act(0, Move{Action: Bet, Amount: 3}))
	err := br.Act(3, Move{Action: Check})
	assert.ErrorIs(t, err, ErrIllegalAction)
	err = br.Act(3, Move{Action: Mus})
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, BetPlaced, br.Status)
}
