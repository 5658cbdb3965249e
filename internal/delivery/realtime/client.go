package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection. rooms is guarded by the hub's mutex.
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]struct{}
	hub    *Hub
	logger *slog.Logger
}

func newClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, hub.sendBuffer),
		rooms:  make(map[string]struct{}),
		hub:    hub,
		logger: hub.logger.With(slog.String("client_id", id)),
	}
}

// Emit queues an event for this client only
func (c *Client) Emit(event string, data any) {
	c.hub.Emit(c, event, data)
}

// readPump dispatches inbound messages one at a time until the connection fails
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("Realtime read failed", slog.Any("error", err))
			}

			return
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil || envelope.Event == "" {
			c.logger.Warn("Realtime message is not a valid envelope", slog.Int("bytes", len(message)))
			c.Emit(EventError, errorPayload{Message: "message must be a JSON object with an event field"})

			continue
		}

		if c.hub.handler != nil {
			c.hub.handler(c, envelope.Event, envelope.Data)
		}
	}
}

// writePump drains the send queue in FIFO order and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
