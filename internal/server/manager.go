package server

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// RoomManager finds or creates rooms by name.
type RoomManager struct {
	mu     sync.Mutex
	ctx    context.Context
	cfg    *Config
	opts   RoomOptions
	rooms  map[string]*Room
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewRoomManager returns a manager whose rooms run until ctx ends.
func NewRoomManager(ctx context.Context, cfg *Config, opts RoomOptions, logger zerolog.Logger) *RoomManager {
	return &RoomManager{
		ctx:    ctx,
		cfg:    cfg,
		opts:   opts,
		rooms:  make(map[string]*Room),
		logger: logger,
	}
}

// Get returns the running room called name, starting it if needed. mode
// only applies to rooms that are neither running nor configured.
func (m *RoomManager) Get(name, mode string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.rooms[name]; ok {
		select {
		case <-r.Done():
		default:
			return r, nil
		}
	}

	rc, ok := m.cfg.Room(name)
	if !ok {
		rc = DefaultRoom(name)
		if mode != "" {
			rc.Mode = mode
		}
	}
	r, err := NewRoom(rc, m.opts, m.logger)
	if err != nil {
		return nil, err
	}
	m.rooms[name] = r
	m.logger.Info().Str("room", name).Str("room_id", r.ID()).Str("mode", rc.Mode).Msg("room created")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		r.Run(m.ctx)
		m.remove(name, r)
	}()
	return r, nil
}

func (m *RoomManager) remove(name string, r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rooms[name] == r {
		delete(m.rooms, name)
		m.logger.Info().Str("room", name).Str("room_id", r.ID()).Msg("room closed")
	}
}

// Names lists running rooms.
func (m *RoomManager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.rooms))
	for name := range m.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Wait blocks until every room goroutine has returned.
func (m *RoomManager) Wait() {
	m.wg.Wait()
}
