package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/arturojer/quantummus/internal/handlog"
	"github.com/arturojer/quantummus/internal/protocol"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Server accepts websocket clients and seats them in rooms.
type Server struct {
	cfg       *Config
	logger    zerolog.Logger
	clock     quartz.Clock
	handlog   *handlog.Manager
	upgrader  websocket.Upgrader
	validator *protocol.Validator
	rooms     *RoomManager

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	httpServer  *http.Server
	connections map[*Connection]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the wall clock used for turn timers.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithHandLog records every hand through m.
func WithHandLog(m *handlog.Manager) Option {
	return func(s *Server) { s.handlog = m }
}

// NewServer builds a server from a validated config.
func NewServer(cfg *Config, logger zerolog.Logger, opts ...Option) (*Server, error) {
	validator, err := protocol.NewValidator()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:       cfg,
		logger:    logger.With().Str("component", "server").Logger(),
		clock:     quartz.NewReal(),
		validator: validator,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		ctx:         ctx,
		cancel:      cancel,
		connections: make(map[*Connection]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	turnTimeout, botDelay, _ := cfg.Durations()
	s.rooms = NewRoomManager(ctx, cfg, RoomOptions{
		Clock:       s.clock,
		TurnTimeout: turnTimeout,
		BotDelay:    botDelay,
		HandLog:     s.handlog,
	}, logger)
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", l.Addr().String()).Msg("listening")
	return srv.Serve(l)
}

// Shutdown stops accepting clients, closes every connection and waits for
// the rooms to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	for _, c := range conns {
		_ = c.Close()
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.rooms.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// Rooms exposes the room manager.
func (s *Server) Rooms() *RoomManager { return s.rooms }

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	conn := NewConnection(ws, s.rooms, s.validator, s.logger)
	s.mu.Lock()
	s.connections[conn] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info().Int("total", total).Msg("client connected")

	conn.Start()
	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info().Int("total", total).Msg("client disconnected")
	}()
}

type healthResponse struct {
	Status string   `json:"status"`
	Rooms  []string `json:"rooms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Rooms: s.rooms.Names()})
}

// WaitForHealthy polls baseURL/health until it answers or ctx ends.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	healthURL := baseURL + "/health"
	client := &http.Client{Timeout: 1 * time.Second}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resp, err := client.Get(healthURL)
			if err == nil && resp.StatusCode == http.StatusOK {
				resp.Body.Close()
				return nil
			}
			if resp != nil {
				resp.Body.Close()
			}
		}
	}
}
