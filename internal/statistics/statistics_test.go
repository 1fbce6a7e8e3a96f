package statistics

import (
	"math"
	"testing"

	"github.com/arturojer/quantummus/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Zero(t, stats.WinRate())
	assert.Zero(t, stats.PhaseWinRate(0))
	assert.Error(t, stats.Validate())
}

func TestStatistics_SingleValue(t *testing.T) {
	stats := &Statistics{}
	stats.Add(GameResult{
		Seed:      "sim-1",
		Team:      game.TeamB,
		Won:       true,
		Margin:    12,
		Hands:     7,
		PhaseWins: [4]int{3, 2, 1, 0},
		Resolved:  [4]int{5, 4, 2, 1},
	})

	assert.Equal(t, 1, stats.Games)
	assert.Equal(t, 7, stats.Hands)
	assert.InDelta(t, 12.0, stats.Mean(), 1e-9)
	assert.Zero(t, stats.Variance())
	assert.InDelta(t, 12.0, stats.Median(), 1e-9)
	assert.InDelta(t, 1.0, stats.WinRate(), 1e-9)
	assert.InDelta(t, 12.0, stats.TeamMean(game.TeamB), 1e-9)
	assert.Zero(t, stats.TeamMean(game.TeamA))
	assert.InDelta(t, 0.6, stats.PhaseWinRate(0), 1e-9)
	assert.Equal(t, 12, stats.MaxMargin)
	assert.Equal(t, 12, stats.MinMargin)
	require.NoError(t, stats.Validate())
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := &Statistics{}
	for i, m := range []int{10, -5, 20, 0, -15} {
		team := game.TeamA
		if i%2 == 1 {
			team = game.TeamB
		}
		stats.Add(GameResult{Team: team, Won: m > 0, Margin: m, Hands: 5})
	}

	assert.Equal(t, 5, stats.Games)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 25, stats.Hands)
	assert.InDelta(t, 2.0, stats.Mean(), 1e-9)
	assert.InDelta(t, 0.0, stats.Median(), 1e-9)
	assert.Equal(t, 20, stats.MaxMargin)
	assert.Equal(t, -15, stats.MinMargin)

	// sample variance of {10,-5,20,0,-15}: sum sq dev = 64+49+324+4+289 = 730
	assert.InDelta(t, 730.0/4, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(730.0/4), stats.StdDev(), 1e-9)

	assert.InDelta(t, 5.0, stats.TeamMean(game.TeamA), 1e-9)
	assert.InDelta(t, -2.5, stats.TeamMean(game.TeamB), 1e-9)
	require.NoError(t, stats.Validate())
}

func TestStatistics_Percentiles(t *testing.T) {
	stats := &Statistics{}
	for m := 1; m <= 5; m++ {
		stats.Add(GameResult{Team: game.TeamA, Margin: m})
	}
	assert.InDelta(t, 1.0, stats.Percentile(0), 1e-9)
	assert.InDelta(t, 3.0, stats.Percentile(0.5), 1e-9)
	assert.InDelta(t, 2.0, stats.Percentile(0.25), 1e-9)
	assert.InDelta(t, 4.6, stats.Percentile(0.9), 1e-9)
	assert.InDelta(t, 5.0, stats.Percentile(1), 1e-9)
}

func TestStatistics_ConfidenceInterval(t *testing.T) {
	stats := &Statistics{}
	for _, m := range []int{4, 6, 4, 6} {
		stats.Add(GameResult{Team: game.TeamA, Margin: m})
	}
	lo, hi := stats.ConfidenceInterval95()
	assert.Less(t, lo, stats.Mean())
	assert.Greater(t, hi, stats.Mean())
	assert.InDelta(t, stats.Mean(), (lo+hi)/2, 1e-9)
}

func TestStatistics_Merge(t *testing.T) {
	a, b, all := &Statistics{}, &Statistics{}, &Statistics{}
	results := []GameResult{
		{Team: game.TeamA, Won: true, Margin: 8, Hands: 3, PhaseWins: [4]int{1}, Resolved: [4]int{2}},
		{Team: game.TeamB, Margin: -30, Hands: 9, Penalties: 2},
		{Team: game.TeamA, Won: true, Margin: 1, Hands: 4},
	}
	a.Add(results[0])
	b.Add(results[1])
	b.Add(results[2])
	for _, r := range results {
		all.Add(r)
	}

	a.Merge(b)
	a.Merge(&Statistics{})
	assert.Equal(t, all.Games, a.Games)
	assert.Equal(t, all.Wins, a.Wins)
	assert.Equal(t, all.Hands, a.Hands)
	assert.Equal(t, all.TeamResults, a.TeamResults)
	assert.Equal(t, all.PhaseWins, a.PhaseWins)
	assert.Equal(t, all.Penalties, a.Penalties)
	assert.Equal(t, -30, a.MinMargin)
	assert.Equal(t, 8, a.MaxMargin)
	assert.InDelta(t, all.Variance(), a.Variance(), 1e-9)
	require.NoError(t, a.Validate())
}

func TestStatistics_Validate(t *testing.T) {
	valid := func() *Statistics {
		s := &Statistics{}
		s.Add(GameResult{Team: game.TeamA, Won: true, Margin: 3, PhaseWins: [4]int{1}, Resolved: [4]int{1}})
		return s
	}

	tests := []struct {
		name   string
		mutate func(*Statistics)
	}{
		{"values mismatch", func(s *Statistics) { s.Values = nil }},
		{"too many wins", func(s *Statistics) { s.Wins = 2 }},
		{"team mismatch", func(s *Statistics) { s.TeamResults[game.TeamA].Games = 0 }},
		{"margin mismatch", func(s *Statistics) { s.SumMargin = 99 }},
		{"phase wins", func(s *Statistics) { s.PhaseWins[0] = 2 }},
	}
	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}
