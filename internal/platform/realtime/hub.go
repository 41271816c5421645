// Package realtime fans events out to websocket subscribers grouped by business area.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is one websocket message.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type areaEvent struct {
	areaID int64
	event  Event
}

// Hub keeps one room of clients per business area.
type Hub struct {
	rooms map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan areaEvent
	done       chan struct{}

	logger *slog.Logger
	mu     sync.RWMutex
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan areaEvent, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.areaID] == nil {
				h.rooms[client.areaID] = make(map[*Client]bool)
			}
			h.rooms[client.areaID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			message, err := json.Marshal(msg.event)
			if err != nil {
				h.logger.Warn("failed to encode realtime event", slog.String("type", msg.event.Type), slog.String("error", err.Error()))
				continue
			}
			h.mu.Lock()
			for client := range h.rooms[msg.areaID] {
				select {
				case client.send <- message:
				default:
					// slow consumer
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues event for every client of areaID. It never blocks; when
// the queue is full the event is dropped and logged.
func (h *Hub) Broadcast(areaID int64, event Event) {
	select {
	case h.broadcast <- areaEvent{areaID: areaID, event: event}:
	default:
		h.logger.Warn("realtime queue full, dropping event", slog.Int64("businessAreaId", areaID), slog.String("type", event.Type))
	}
}

// Subscribers returns the number of clients in the area room.
func (h *Hub) Subscribers(areaID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[areaID])
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.areaID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.areaID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.remove(client)
		}
	}
}
