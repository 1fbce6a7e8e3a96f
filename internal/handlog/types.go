// Package handlog records finished hands to TOML files, one directory per
// room, with buffered writes coordinated by a Manager.
package handlog

import (
	"time"

	"github.com/coder/quartz"
)

const (
	handsFilename = "hands.toml"
	roomFilename  = "room.toml"
	sectionPrefix = "hand_"
)

// Record is one finished hand.
type Record struct {
	Seq            int           `toml:"seq"`
	Room           string        `toml:"room"`
	Hand           int           `toml:"hand"`
	Mode           string        `toml:"mode"`
	Mano           int           `toml:"mano"`
	Time           time.Time     `toml:"time"`
	Players        []string      `toml:"players"`
	Cards          []string      `toml:"cards,omitempty"`
	Revealed       []string      `toml:"revealed,omitempty"`
	MusRounds      int           `toml:"mus_rounds"`
	PairsDealt     int           `toml:"pairs_dealt"`
	PairsCollapsed int           `toml:"pairs_collapsed"`
	PairsSameTeam  int           `toml:"pairs_same_team"`
	Actions        []string      `toml:"actions"`
	Collapses      []string      `toml:"collapses,omitempty"`
	Results        []PhaseRecord `toml:"results"`
	Penalties      []int         `toml:"penalties"`
	Scores         []int         `toml:"scores"`
}

// PhaseRecord is how one phase of a hand was settled.
type PhaseRecord struct {
	Phase    string `toml:"phase"`
	Outcome  string `toml:"outcome"`
	Stake    int    `toml:"stake"`
	Attacker string `toml:"attacker,omitempty"`
	Winner   string `toml:"winner,omitempty"`
	Points   int    `toml:"points"`
}

// RoomInfo is rewritten on every flush so a reader can see where a room
// stands without parsing every hand.
type RoomInfo struct {
	Room      string    `toml:"room"`
	Mode      string    `toml:"mode"`
	Players   []string  `toml:"players"`
	TeamNames []string  `toml:"team_names"`
	Hands     int       `toml:"hands"`
	Scores    []int     `toml:"scores"`
	Winner    string    `toml:"winner,omitempty"`
	Updated   time.Time `toml:"updated"`
}

// MonitorConfig configures a per-room monitor.
type MonitorConfig struct {
	RoomID       string
	OutputDir    string
	Mode         string
	Players      []string
	TeamNames    []string
	FlushHands   int
	IncludeCards bool
	Clock        quartz.Clock
}

// ManagerConfig configures the server-wide manager.
type ManagerConfig struct {
	BaseDir       string
	FlushInterval time.Duration
	FlushHands    int
	IncludeCards  bool
	Clock         quartz.Clock
}
