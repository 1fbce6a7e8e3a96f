package handlog

import (
	"fmt"
	"maps"
	"path/filepath"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// Manager owns the monitors of every room and flushes them on a ticker or
// when a monitor's buffer fills.
type Manager struct {
	cfg    ManagerConfig
	logger zerolog.Logger

	mu       sync.RWMutex
	monitors map[string]*Monitor
	flushReq chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewManager creates and starts a hand log manager.
func NewManager(logger zerolog.Logger, cfg ManagerConfig) *Manager {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "hands"
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}
	if cfg.FlushHands <= 0 {
		cfg.FlushHands = 20
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	m := &Manager{
		cfg:      cfg,
		logger:   logger,
		monitors: make(map[string]*Monitor),
		flushReq: make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	ticker := cfg.Clock.NewTicker(cfg.FlushInterval, "handlog", "flush")
	m.wg.Add(1)
	go m.run(ticker)
	return m
}

// RoomDir is where the logs of roomID are written.
func (m *Manager) RoomDir(roomID string) string {
	return filepath.Join(m.cfg.BaseDir, "room-"+roomID)
}

// CreateMonitor registers a monitor for a room.
func (m *Manager) CreateMonitor(roomID, mode string, players, teamNames []string) (*Monitor, error) {
	m.mu.RLock()
	_, exists := m.monitors[roomID]
	m.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("handlog: monitor for %s already exists", roomID)
	}

	monitor, err := NewMonitor(MonitorConfig{
		RoomID:       roomID,
		OutputDir:    m.RoomDir(roomID),
		Mode:         mode,
		Players:      players,
		TeamNames:    teamNames,
		FlushHands:   m.cfg.FlushHands,
		IncludeCards: m.cfg.IncludeCards,
		Clock:        m.cfg.Clock,
	}, m.logger.With().Str("room", roomID).Logger())
	if err != nil {
		return nil, err
	}
	monitor.SetFlushNotifier(m.requestFlush)

	m.mu.Lock()
	m.monitors[roomID] = monitor
	m.mu.Unlock()
	return monitor, nil
}

// RemoveMonitor flushes and forgets the monitor of a room.
func (m *Manager) RemoveMonitor(roomID string) {
	m.mu.Lock()
	monitor, ok := m.monitors[roomID]
	delete(m.monitors, roomID)
	m.mu.Unlock()

	if ok {
		if err := monitor.Close(); err != nil {
			m.logger.Error().Err(err).Str("room", roomID).Msg("hand log flush on remove failed")
		}
	}
}

// Shutdown stops the ticker and flushes every monitor.
func (m *Manager) Shutdown() {
	close(m.stop)
	m.wg.Wait()

	m.mu.Lock()
	monitors := m.monitors
	m.monitors = make(map[string]*Monitor)
	m.mu.Unlock()
	for roomID, monitor := range monitors {
		if err := monitor.Close(); err != nil {
			m.logger.Error().Err(err).Str("room", roomID).Msg("hand log flush on shutdown failed")
		}
	}
}

func (m *Manager) run(ticker *quartz.Ticker) {
	defer m.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.flushAll()
		case <-m.flushReq:
			m.flushAll()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) requestFlush() {
	select {
	case m.flushReq <- struct{}{}:
	default:
	}
}

func (m *Manager) flushAll() {
	m.mu.RLock()
	snapshot := maps.Clone(m.monitors)
	m.mu.RUnlock()

	for roomID, monitor := range snapshot {
		err := monitor.Flush()
		if err != nil {
			m.logger.Error().Err(err).Str("room", roomID).Msg("hand log flush failed")
		}
		if disabled, dropped := monitor.HandleFlushResult(err); disabled {
			m.logger.Error().Str("room", roomID).Int("dropped_hands", dropped).
				Msg("hand log disabled after repeated failures")
			m.RemoveMonitor(roomID)
		}
	}
}
