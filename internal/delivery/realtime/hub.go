// Package realtime is the websocket channel between driver apps, order
// trackers and the position registry.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 8192
	writeWait      = 10 * time.Second

	defaultSendBuffer = 256
)

// Envelope is the wire format of every message in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MessageHandler processes one inbound message. Messages of a connection are
// handled sequentially in arrival order.
type MessageHandler func(client *Client, event string, data json.RawMessage)

// Hub tracks connected clients and the rooms they joined.
// All sends to a client's queue happen under mu so a closed queue is never written.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	rooms      map[string]map[string]*Client
	upgrader   websocket.Upgrader
	handler    MessageHandler
	sendBuffer int
	logger     *slog.Logger
}

// NewHub creates a hub. Clients get a send queue of sendBuffer messages.
func NewHub(sendBuffer int, logger *slog.Logger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}

	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The channel is unauthenticated; origin is not restricted either
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sendBuffer: sendBuffer,
		logger:     logger,
	}
}

// SetMessageHandler installs the inbound message handler. Call before serving.
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.handler = handler
}

// ServeWS upgrades the request and runs the client's pumps until it disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", slog.Any("error", err))

		return
	}

	client := newClient(uuid.New().String(), conn, h)
	h.register(client)

	go client.writePump()
	client.readPump()
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	count := len(h.clients)
	h.mu.Unlock()

	client.logger.Debug("Realtime client connected", slog.Int("clients", count))
}

// unregister removes the client from every room and closes its queue. Safe to
// call more than once.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()

		return
	}

	delete(h.clients, client.ID)
	for room := range client.rooms {
		h.leaveLocked(client, room)
	}
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	client.logger.Debug("Realtime client disconnected", slog.Int("clients", count))
}

// Join subscribes the client to room
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[client.ID] = client
	client.rooms[room] = struct{}{}
}

// Leave unsubscribes the client from room
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(client, room)
}

func (h *Hub) leaveLocked(client *Client, room string) {
	delete(client.rooms, room)

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client.ID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// EmitToRoom sends the event to every member of room. Members whose queue is
// full are disconnected.
func (h *Hub) EmitToRoom(room, event string, data any) {
	message, err := encode(event, data)
	if err != nil {
		h.logger.Error("Failed to encode realtime message", slog.String("event", event), slog.Any("error", err))

		return
	}

	var slow []*Client

	h.mu.RLock()
	for _, client := range h.rooms[room] {
		if !h.enqueueLocked(client, message) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		client.logger.Warn("Realtime client send queue full, disconnecting", slog.String("room", room))
		h.unregister(client)
	}
}

// Emit sends the event to a single client
func (h *Hub) Emit(client *Client, event string, data any) {
	message, err := encode(event, data)
	if err != nil {
		h.logger.Error("Failed to encode realtime message", slog.String("event", event), slog.Any("error", err))

		return
	}

	h.mu.RLock()
	_, registered := h.clients[client.ID]
	delivered := registered && h.enqueueLocked(client, message)
	h.mu.RUnlock()

	if registered && !delivered {
		client.logger.Warn("Realtime client send queue full, disconnecting")
		h.unregister(client)
	}
}

// enqueueLocked must be called with mu held
func (h *Hub) enqueueLocked(client *Client, message []byte) bool {
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// RoomSize returns the number of clients in room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.unregister(client)
	}
}

func encode(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{Event: event, Data: payload})
}
