package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arturojer/quantummus/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBuffer = 256
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
	ErrSendBufferFull   = errors.New("send buffer full")
	ErrAlreadyJoined    = errors.New("already joined a room")
)

// Connection is one client websocket.
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	logger    zerolog.Logger

	rooms     *RoomManager
	validator *protocol.Validator

	mu     sync.Mutex
	closed bool
	room   *Room
	seat   int
}

// NewConnection wraps an upgraded websocket.
func NewConnection(conn *websocket.Conn, rooms *RoomManager, validator *protocol.Validator, logger zerolog.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:      conn,
		send:      make(chan *protocol.Message, sendBuffer),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger.With().Str("component", "conn").Str("remote", conn.RemoteAddr().String()).Logger(),
		rooms:     rooms,
		validator: validator,
		seat:      -1,
	}
}

// Start runs the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed when the connection shuts down.
func (c *Connection) Done() <-chan struct{} { return c.ctx.Done() }

// Close releases the seat and closes the socket.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		room := c.room
		c.mu.Unlock()
		if room != nil {
			room.Leave(c)
		}
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Send queues msg for the write pump. A full buffer drops the client.
func (c *Connection) Send(msg *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn().Msg("send buffer full, closing connection")
		go func() { _ = c.Close() }()
		return ErrSendBufferFull
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("websocket error")
			}
			return
		}
		c.handleFrame(frame)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Connection) handleFrame(frame []byte) {
	msg, err := c.validator.Parse(frame)
	if err != nil {
		c.logger.Debug().Err(err).Msg("rejected frame")
		c.sendError(err)
		return
	}
	c.logger.Debug().Str("type", string(msg.Type)).Msg("received message")

	if err := c.dispatch(msg); err != nil {
		c.sendError(err)
	}
}

func (c *Connection) dispatch(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.MessageTypeJoin:
		var data protocol.JoinData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		return c.join(data)

	case protocol.MessageTypeAction:
		var data protocol.ActionData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		move, err := protocol.ParseAction(data.Action, data.Amount)
		if err != nil {
			return err
		}
		room, err := c.currentRoom()
		if err != nil {
			return err
		}
		return room.Act(c, move)

	case protocol.MessageTypeDiscard:
		var data protocol.DiscardData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		room, err := c.currentRoom()
		if err != nil {
			return err
		}
		return room.Discard(c, data.Slots)

	case protocol.MessageTypeDeclare:
		var data protocol.DeclareData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		room, err := c.currentRoom()
		if err != nil {
			return err
		}
		return room.Declare(c, data.Has)

	default:
		return fmt.Errorf("unsupported message type %q", msg.Type)
	}
}

func (c *Connection) join(data protocol.JoinData) error {
	c.mu.Lock()
	joined := c.room != nil
	c.mu.Unlock()
	if joined {
		return ErrAlreadyJoined
	}

	room, err := c.rooms.Get(data.RoomID, data.Mode)
	if err != nil {
		return err
	}
	seat, err := room.Join(c, data.Name, data.Seat)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.room = room
	c.seat = seat
	c.mu.Unlock()
	c.logger.Info().Str("room", data.RoomID).Int("seat", seat).Str("player", data.Name).Msg("joined room")
	return nil
}

func (c *Connection) currentRoom() (*Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return nil, ErrNotSeated
	}
	return c.room, nil
}

func (c *Connection) sendError(err error) {
	_ = c.Send(protocol.NewError(err))
}
