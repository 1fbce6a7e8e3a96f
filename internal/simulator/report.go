package simulator

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arturojer/quantummus/internal/game"
	"github.com/arturojer/quantummus/internal/statistics"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Width(18)

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

func signed(v float64) string {
	s := fmt.Sprintf("%+.2f", v)
	if v > 0 {
		return goodStyle.Render(s)
	}
	if v < 0 {
		return badStyle.Render(s)
	}
	return s
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

// Report renders the results of a run.
func Report(w io.Writer, cfg Config, stats *statistics.Statistics, elapsed time.Duration) error {
	low, high := stats.ConfidenceInterval95()

	lines := []string{
		headerStyle.Render(fmt.Sprintf("%s vs %s", cfg.Hero, cfg.Opponent)),
		"",
		row("mode", fmt.Sprintf("%s kings, to %d", cfg.Mode, cfg.WinScore)),
		row("games", fmt.Sprintf("%d (%d deals played twice)", stats.Games, stats.Games/2)),
		row("hands", fmt.Sprintf("%d", stats.Hands)),
		row("time", elapsed.Round(time.Millisecond).String()),
		"",
		row("win rate", fmt.Sprintf("%.1f%%", stats.WinRate()*100)),
		row("margin/game", signed(stats.Mean())+fmt.Sprintf(" ± %.2f SE", stats.StdError())),
		row("95% CI", fmt.Sprintf("[%s, %s]", signed(low), signed(high))),
		row("median", signed(stats.Median())),
		row("p05 / p95", fmt.Sprintf("%s / %s", signed(stats.Percentile(0.05)), signed(stats.Percentile(0.95)))),
		row("range", fmt.Sprintf("%d .. %d", stats.MinMargin, stats.MaxMargin)),
		"",
		row("as team A", signed(stats.TeamMean(game.TeamA))),
		row("as team B", signed(stats.TeamMean(game.TeamB))),
		row("penalties", fmt.Sprintf("%d", stats.Penalties)),
		"",
		headerStyle.Render("phase wins"),
	}
	for i, p := range game.BettingPhases {
		lines = append(lines, row(strings.ToLower(p.String()),
			fmt.Sprintf("%5.1f%%  (%d/%d)", stats.PhaseWinRate(i)*100, stats.PhaseWins[i], stats.Resolved[i])))
	}

	_, err := fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
	return err
}
