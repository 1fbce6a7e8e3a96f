package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/arturojer/quantummus/internal/game"
)

// GameResult is the outcome of one simulated game from the hero's side.
type GameResult struct {
	Seed      string    // Deal seed (for replay)
	Team      game.Team // Team the hero played
	Won       bool
	Margin    int // Hero score minus opponent score
	Hands     int
	PhaseWins [len(game.BettingPhases)]int // Phases the hero's team took
	Resolved  [len(game.BettingPhases)]int // Phases that scored for anyone
	Penalties int                          // Points the hero lost to false declarations
}

// TeamStats aggregates results for the games played on one team.
type TeamStats struct {
	Games     int
	Wins      int
	SumMargin float64
}

// Statistics tracks simulation results across games.
type Statistics struct {
	Games      int
	Wins       int
	Hands      int
	SumMargin  float64
	SumMargin2 float64   // Sum of squares for variance calculation
	Values     []float64 // Every margin, for median/percentile

	TeamResults [2]TeamStats

	PhaseWins [len(game.BettingPhases)]int
	Resolved  [len(game.BettingPhases)]int
	Penalties int

	MaxMargin int
	MinMargin int
}

// Add incorporates one game.
func (s *Statistics) Add(r GameResult) {
	m := float64(r.Margin)
	if s.Games == 0 || r.Margin > s.MaxMargin {
		s.MaxMargin = r.Margin
	}
	if s.Games == 0 || r.Margin < s.MinMargin {
		s.MinMargin = r.Margin
	}

	s.Games++
	s.Hands += r.Hands
	s.SumMargin += m
	s.SumMargin2 += m * m
	s.Values = append(s.Values, m)
	if r.Won {
		s.Wins++
	}

	if r.Team == game.TeamA || r.Team == game.TeamB {
		ts := &s.TeamResults[r.Team]
		ts.Games++
		ts.SumMargin += m
		if r.Won {
			ts.Wins++
		}
	}

	for i := range s.PhaseWins {
		s.PhaseWins[i] += r.PhaseWins[i]
		s.Resolved[i] += r.Resolved[i]
	}
	s.Penalties += r.Penalties
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	if other.Games == 0 {
		return
	}
	if s.Games == 0 || other.MaxMargin > s.MaxMargin {
		s.MaxMargin = other.MaxMargin
	}
	if s.Games == 0 || other.MinMargin < s.MinMargin {
		s.MinMargin = other.MinMargin
	}
	s.Games += other.Games
	s.Wins += other.Wins
	s.Hands += other.Hands
	s.SumMargin += other.SumMargin
	s.SumMargin2 += other.SumMargin2
	s.Values = append(s.Values, other.Values...)
	for t := range s.TeamResults {
		s.TeamResults[t].Games += other.TeamResults[t].Games
		s.TeamResults[t].Wins += other.TeamResults[t].Wins
		s.TeamResults[t].SumMargin += other.TeamResults[t].SumMargin
	}
	for i := range s.PhaseWins {
		s.PhaseWins[i] += other.PhaseWins[i]
		s.Resolved[i] += other.Resolved[i]
	}
	s.Penalties += other.Penalties
}

// Mean returns the average score margin per game.
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumMargin / float64(s.Games)
}

// Variance returns the sample variance of the margins.
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumMargin2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of the margins.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// WinRate is the fraction of games won.
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// Median returns the median margin.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the margin at p (0.0 to 1.0), interpolating between
// neighbours.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// TeamMean returns the mean margin for games played on team t.
func (s *Statistics) TeamMean(t game.Team) float64 {
	if t != game.TeamA && t != game.TeamB {
		return 0
	}
	ts := s.TeamResults[t]
	if ts.Games == 0 {
		return 0
	}
	return ts.SumMargin / float64(ts.Games)
}

// PhaseWinRate returns the share of scoring results in phase i the hero
// took.
func (s *Statistics) PhaseWinRate(i int) float64 {
	if i < 0 || i >= len(s.Resolved) || s.Resolved[i] == 0 {
		return 0
	}
	return float64(s.PhaseWins[i]) / float64(s.Resolved[i])
}

// Validate checks the totals agree with each other.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)", len(s.Values), s.Games)
	}
	if s.Wins > s.Games {
		return fmt.Errorf("wins (%d) exceed games (%d)", s.Wins, s.Games)
	}
	if n := s.TeamResults[game.TeamA].Games + s.TeamResults[game.TeamB].Games; n != s.Games {
		return fmt.Errorf("team games total (%d) does not match games (%d)", n, s.Games)
	}
	sum := s.TeamResults[game.TeamA].SumMargin + s.TeamResults[game.TeamB].SumMargin
	if math.Abs(sum-s.SumMargin) > 1e-6 {
		return fmt.Errorf("margin mismatch: teams=%.2f total=%.2f", sum, s.SumMargin)
	}
	for i := range s.PhaseWins {
		if s.PhaseWins[i] > s.Resolved[i] {
			return fmt.Errorf("phase %s: wins (%d) exceed resolved (%d)", game.BettingPhases[i], s.PhaseWins[i], s.Resolved[i])
		}
	}
	return nil
}
