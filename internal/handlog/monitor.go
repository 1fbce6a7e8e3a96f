package handlog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/arturojer/quantummus/internal/fileutil"
	"github.com/arturojer/quantummus/internal/game"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// maxFlushFailures is how many flushes in a row may fail before the monitor
// stops recording.
const maxFlushFailures = 3

// Monitor turns one room's game events into buffered hand records.
type Monitor struct {
	cfg       MonitorConfig
	logger    zerolog.Logger
	clock     quartz.Clock
	handsPath string
	roomPath  string

	mu                  sync.Mutex
	flushMu             sync.Mutex
	buffer              []Record
	current             *Record
	info                RoomInfo
	flushNotifier       func()
	consecutiveFailures int
	disabled            bool
}

// NewMonitor creates the room directory. An existing log is appended to;
// section numbers continue from its hand count.
func NewMonitor(cfg MonitorConfig, logger zerolog.Logger) (*Monitor, error) {
	if cfg.RoomID == "" {
		return nil, errors.New("handlog: RoomID is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("handlog: OutputDir is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("handlog: create dir: %w", err)
	}

	m := &Monitor{
		cfg:       cfg,
		logger:    logger,
		clock:     cfg.Clock,
		handsPath: filepath.Join(cfg.OutputDir, handsFilename),
		roomPath:  filepath.Join(cfg.OutputDir, roomFilename),
		info: RoomInfo{
			Room:      cfg.RoomID,
			Mode:      cfg.Mode,
			Players:   slices.Clone(cfg.Players),
			TeamNames: slices.Clone(cfg.TeamNames),
			Scores:    []int{0, 0},
		},
	}
	if prev, err := ReadRoomInfo(cfg.OutputDir); err == nil {
		m.info.Hands = prev.Hands
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("handlog: read room info: %w", err)
	}
	return m, nil
}

// SetFlushNotifier registers a callback for when the buffer is full.
func (m *Monitor) SetFlushNotifier(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushNotifier = fn
}

// Observe folds a batch of game events into the current record.
func (m *Monitor) Observe(events []game.Event) {
	notify := false

	m.mu.Lock()
	if m.disabled {
		m.mu.Unlock()
		return
	}
	for _, e := range events {
		if m.apply(e) {
			notify = true
		}
	}
	notifier := m.flushNotifier
	m.mu.Unlock()

	if notify && notifier != nil {
		notifier()
	}
}

// apply records e and reports whether a flush should be requested.
func (m *Monitor) apply(e game.Event) bool {
	switch ev := e.(type) {
	case game.HandStartEvent:
		m.current = &Record{
			Room:    m.cfg.RoomID,
			Hand:    ev.Hand,
			Mode:    m.cfg.Mode,
			Mano:    ev.Mano,
			Time:    m.clock.Now().UTC(),
			Players: slices.Clone(m.cfg.Players),
		}
	case game.PhaseChangeEvent:
		m.note("-- %s %s", ev.Phase, ev.Stage)
	case game.ActionEvent:
		if ev.Move.Action == game.Bet {
			m.note("s%d %s %d", ev.Seat, ev.Move.Action, ev.Move.Amount)
		} else {
			m.note("s%d %s", ev.Seat, ev.Move.Action)
		}
	case game.DiscardEvent:
		m.note("s%d discard %d", ev.Seat, ev.Count)
	case game.DeclarationEvent:
		line := fmt.Sprintf("s%d declare %s %t", ev.Seat, ev.Phase, ev.Claimed)
		if ev.Penalty != 0 {
			line += fmt.Sprintf(" penalty %d", ev.Penalty)
		}
		m.note("%s", line)
	case game.CollapseEvent:
		if m.current != nil {
			m.current.Collapses = append(m.current.Collapses, fmt.Sprintf("s%d:%d %s %s>%s %s",
				ev.Seat, ev.Slot, ev.Card, ev.OldRank, ev.NewRank, ev.Reason))
		}
	case game.HandEndEvent:
		return m.finish(ev.Summary)
	case game.GameOverEvent:
		m.info.Winner = ev.Summary.WinnerName
		m.info.Scores = ev.Summary.Scores[:]
		return true
	}
	return false
}

func (m *Monitor) note(format string, args ...any) {
	if m.current == nil {
		return
	}
	m.current.Actions = append(m.current.Actions, fmt.Sprintf(format, args...))
}

func (m *Monitor) finish(s game.HandSummary) bool {
	rec := m.current
	if rec == nil || rec.Hand != s.Hand {
		rec = &Record{Room: m.cfg.RoomID, Hand: s.Hand, Mode: m.cfg.Mode, Mano: s.Mano, Time: m.clock.Now().UTC()}
	}
	rec.MusRounds = s.MusRounds
	rec.PairsDealt = s.Pairs.FullyDealt
	rec.PairsCollapsed = s.Pairs.Collapsed
	rec.PairsSameTeam = s.Pairs.SameTeamPair
	rec.Penalties = s.Penalties[:]
	rec.Scores = s.Scores[:]
	for _, r := range s.Results {
		pr := PhaseRecord{
			Phase:   r.Phase.String(),
			Outcome: r.Outcome.String(),
			Stake:   r.Stake,
			Points:  r.Points,
		}
		if r.Attacker != game.NoTeam {
			pr.Attacker = r.Attacker.String()
		}
		if r.Winner != game.NoTeam {
			pr.Winner = r.Winner.String()
		}
		rec.Results = append(rec.Results, pr)
	}
	if m.cfg.IncludeCards {
		for seat := range game.Seats {
			cards := make([]string, 0, game.HandSize)
			ranks := make([]string, 0, game.HandSize)
			for slot := range game.HandSize {
				cards = append(cards, s.Cards[seat][slot].String())
				ranks = append(ranks, s.Revealed[seat][slot].String())
			}
			rec.Cards = append(rec.Cards, strings.Join(cards, " "))
			rec.Revealed = append(rec.Revealed, strings.Join(ranks, " "))
		}
	}

	m.info.Hands++
	rec.Seq = m.info.Hands
	m.buffer = append(m.buffer, *rec)
	m.current = nil
	m.info.Scores = s.Scores[:]
	return m.cfg.FlushHands > 0 && len(m.buffer) >= m.cfg.FlushHands
}

// Flush appends buffered hands to the log and rewrites the room info.
func (m *Monitor) Flush() error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	m.mu.Lock()
	if m.disabled {
		m.mu.Unlock()
		return nil
	}
	hands := slices.Clone(m.buffer)
	info := m.info
	info.Scores = slices.Clone(m.info.Scores)
	m.mu.Unlock()

	if len(hands) > 0 {
		var buf bytes.Buffer
		for _, rec := range hands {
			if err := encodeSection(&buf, rec); err != nil {
				return err
			}
		}
		if err := fileutil.AppendFile(m.handsPath, buf.Bytes(), 0o644); err != nil {
			return err
		}
	}

	info.Updated = m.clock.Now().UTC()
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = "\t"
	if err := enc.Encode(info); err != nil {
		return fmt.Errorf("handlog: encode room info: %w", err)
	}
	if err := fileutil.WriteFileAtomic(m.roomPath, buf.Bytes(), 0o644); err != nil {
		return err
	}

	m.mu.Lock()
	m.buffer = m.buffer[len(hands):]
	m.mu.Unlock()
	return nil
}

func encodeSection(buf *bytes.Buffer, rec Record) error {
	enc := toml.NewEncoder(buf)
	enc.Indent = "\t"
	section := map[string]Record{fmt.Sprintf("%s%d", sectionPrefix, rec.Seq): rec}
	if err := enc.Encode(section); err != nil {
		return fmt.Errorf("handlog: encode hand %d: %w", rec.Hand, err)
	}
	buf.WriteString("\n")
	return nil
}

// Close flushes remaining data.
func (m *Monitor) Close() error {
	return m.Flush()
}

// HandleFlushResult tracks consecutive failures and disables the monitor,
// dropping its buffer, once too many pile up.
func (m *Monitor) HandleFlushResult(err error) (disabled bool, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		m.consecutiveFailures = 0
		return false, 0
	}
	m.consecutiveFailures++
	if m.consecutiveFailures < maxFlushFailures {
		return false, 0
	}
	dropped = len(m.buffer)
	m.buffer = nil
	m.disabled = true
	return true, dropped
}

// IsDisabled reports whether the monitor has stopped recording.
func (m *Monitor) IsDisabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disabled
}

// Buffered returns the number of hands waiting to be flushed.
func (m *Monitor) Buffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffer)
}
