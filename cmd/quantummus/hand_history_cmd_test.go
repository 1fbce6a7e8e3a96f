package main

import (
	"bytes"
	rand "math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/arturojer/quantummus/internal/bot"
	"github.com/arturojer/quantummus/internal/deck"
	"github.com/arturojer/quantummus/internal/game"
	"github.com/arturojer/quantummus/internal/handlog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordGame plays a short bot game into a hand log under base.
func recordGame(t *testing.T, base string) string {
	t.Helper()
	dir := filepath.Join(base, "room-hh")
	players := [game.Seats]string{"ana", "bea", "cai", "dan"}
	m, err := handlog.NewMonitor(handlog.MonitorConfig{
		RoomID:       "hh",
		OutputDir:    dir,
		Mode:         "4",
		Players:      players[:],
		TeamNames:    []string{"Cats", "Boxes"},
		IncludeCards: true,
	}, zerolog.Nop())
	require.NoError(t, err)

	g, err := game.New("hh", players, deck.FourKings, game.WithWinScore(5))
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(5, 6))
	b, err := bot.New("random", rng)
	require.NoError(t, err)

	for steps := 0; !g.Over(); steps++ {
		require.Less(t, steps, 5000)
		seat := g.ActiveSeat()
		if seat < 0 {
			seat = g.PendingSeats()[0]
		}
		require.NoError(t, bot.Play(g, seat, b))
		m.Observe(g.DrainEvents())
	}
	require.NoError(t, m.Close())
	return dir
}

func TestHandHistoryListAndShow(t *testing.T) {
	base := t.TempDir()
	dir := recordGame(t, base)

	var list bytes.Buffer
	require.NoError(t, listRooms(&list, base))
	assert.Contains(t, list.String(), "room-hh")
	assert.Contains(t, list.String(), "ROOM")

	var show bytes.Buffer
	require.NoError(t, showRoom(&show, dir, 0, 0))
	out := show.String()
	assert.Contains(t, out, "room hh")
	assert.Contains(t, out, "teams A=Cats B=Boxes")
	assert.Contains(t, out, "#1 hand 1")
	assert.Contains(t, out, "winner")

	var one bytes.Buffer
	require.NoError(t, showRoom(&one, dir, 0, 1))
	assert.Contains(t, one.String(), "#1 hand 1")
	assert.NotContains(t, one.String(), "#2 hand")

	assert.Error(t, showRoom(&bytes.Buffer{}, dir, 0, 9999))
}

func TestHandHistoryEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listRooms(&out, filepath.Join(t.TempDir(), "missing")))
	assert.Contains(t, out.String(), "no rooms recorded")

	assert.Error(t, showRoom(&bytes.Buffer{}, t.TempDir(), 0, 0))
}
