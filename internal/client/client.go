// Package client connects to a room server over WebSocket and lets a bot
// strategy play a seat remotely.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/arturojer/quantummus/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var (
	ErrNotConnected   = errors.New("not connected")
	ErrSendBufferFull = errors.New("send buffer full")
)

// EventHandler is called for every incoming message of the type it was
// registered for. Handlers run one at a time, in arrival order.
type EventHandler func(*protocol.Message)

// Client is a WebSocket connection to a room server.
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *protocol.Message
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	mu        sync.RWMutex
	connected bool
	handlers  map[protocol.MessageType][]EventHandler
	waiters   map[protocol.MessageType][]chan *protocol.Message
}

// NewClient creates a client for serverURL. http and https URLs are
// rewritten to ws and wss, and an empty path becomes /ws.
func NewClient(serverURL string, logger zerolog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		serverURL: serverURL,
		send:      make(chan *protocol.Message, sendBuffer),
		logger:    logger.With().Str("component", "client").Logger(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		handlers:  make(map[protocol.MessageType][]EventHandler),
		waiters:   make(map[protocol.MessageType][]chan *protocol.Message),
	}
}

// WebSocketURL normalises a server address into a ws:// or wss:// URL.
func WebSocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("invalid server URL scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Connect dials the server and starts the read and write pumps.
func (c *Client) Connect(ctx context.Context) error {
	target, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}
	c.logger.Info().Str("url", target).Msg("Connecting to server")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info().Msg("Connected to server")
	return nil
}

// Disconnect closes the connection. It is safe to call more than once.
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.Close() // Ignore close errors during shutdown
		}
		c.connected = false
		c.logger.Info().Msg("Disconnected from server")
	})
	return nil
}

// Done is closed once the read pump has stopped.
func (c *Client) Done() <-chan struct{} { return c.done }

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage queues a message for the server.
func (c *Client) SendMessage(msg *protocol.Message) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) sendData(t protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Join asks for a seat. A nil seat takes the first free one.
func (c *Client) Join(room, name string, seat *int, mode string) error {
	return c.sendData(protocol.MessageTypeJoin, protocol.JoinData{
		RoomID: room,
		Name:   name,
		Seat:   seat,
		Mode:   mode,
	})
}

// Act sends a speaking or betting action.
func (c *Client) Act(action string, amount int) error {
	return c.sendData(protocol.MessageTypeAction, protocol.ActionData{Action: action, Amount: amount})
}

// Discard sends the slots to throw away.
func (c *Client) Discard(slots []int) error {
	return c.sendData(protocol.MessageTypeDiscard, protocol.DiscardData{Slots: slots})
}

// Declare answers the pairs or points question.
func (c *Client) Declare(has bool) error {
	return c.sendData(protocol.MessageTypeDeclare, protocol.DeclareData{Has: has})
}

func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("WebSocket error")
			}
			return
		}
		c.logger.Debug().Str("type", string(msg.Type)).Msg("Received message")
		c.dispatch(&msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error().Err(err).Msg("Failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) dispatch(msg *protocol.Message) {
	c.mu.Lock()
	handlers := c.handlers[msg.Type]
	waiters := c.waiters[msg.Type]
	delete(c.waiters, msg.Type)
	c.mu.Unlock()

	for _, w := range waiters {
		w <- msg
	}
	if len(handlers) == 0 && len(waiters) == 0 {
		c.logger.Debug().Str("type", string(msg.Type)).Msg("No handler for message type")
	}
	for _, h := range handlers {
		h(msg)
	}
}

// AddEventHandler adds an event handler for a specific message type
func (c *Client) AddEventHandler(t protocol.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[t] = append(c.handlers[t], handler)
}

// WaitForMessage waits for the next message of type t.
func (c *Client) WaitForMessage(t protocol.MessageType, timeout time.Duration) (*protocol.Message, error) {
	ch := make(chan *protocol.Message, 1)
	c.mu.Lock()
	c.waiters[t] = append(c.waiters[t], ch)
	c.mu.Unlock()

	select {
	case msg := <-ch:
		return msg, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for %s", t)
	case <-c.done:
		return nil, ErrNotConnected
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}
