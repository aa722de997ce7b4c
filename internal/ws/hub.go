package ws

import (
	"log/slog"
	"sync"

	"github.com/mcoot/hangmanparty/internal/model"
)

// Hub manages the websocket clients subscribed to a single room.
// Broadcasts deliver a personalized snapshot to every client; clients
// whose send buffer is full are dropped rather than blocking the room.
type Hub struct {
	roomCode model.RoomCode
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a new Hub for a room
func NewHub(roomCode model.RoomCode, logger *slog.Logger) *Hub {
	return &Hub{
		roomCode: roomCode,
		logger:   logger.With(slog.String("room", string(roomCode))),
		clients:  make(map[*Client]bool),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client subscribed",
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", count))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client unsubscribed",
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", count))
}

// BroadcastRoom sends a room_update snapshot to every subscribed client,
// rendered per viewer so the secret word never reaches guessers mid-round
func (h *Hub) BroadcastRoom(rm *model.Room) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for client := range h.clients {
		msg, err := marshalEnvelope(EventRoomUpdate, NewRoomView(rm, client.playerID))
		if err != nil {
			h.logger.Error("failed to marshal room snapshot",
				slog.String("error", err.Error()))
			return
		}

		select {
		case client.send <- msg:
		default:
			dropped++
			h.logger.Warn("snapshot dropped - client buffer full",
				slog.String("player_id", string(client.playerID)))
		}
	}

	if dropped > 0 {
		h.logger.Warn("broadcast partial failure", slog.Int("dropped", dropped))
	}
}

// ClientCount returns the number of subscribed clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages hubs for all rooms
type HubManager struct {
	logger *slog.Logger

	mu   sync.RWMutex
	hubs map[model.RoomCode]*Hub
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		logger: logger.With(slog.String("component", "ws")),
		hubs:   make(map[model.RoomCode]*Hub),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(roomCode model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		return hub
	}

	hub := NewHub(roomCode, m.logger)
	m.hubs[roomCode] = hub
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomCode model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomCode]
}

// RemoveHub discards the hub for a room
func (m *HubManager) RemoveHub(roomCode model.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.hubs[roomCode]; ok {
		delete(m.hubs, roomCode)
		m.logger.Info("hub removed", slog.String("room", string(roomCode)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for code, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			delete(m.hubs, code)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("empty hubs cleaned up", slog.Int("removed", removed))
	}
}
