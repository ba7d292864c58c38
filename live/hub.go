package live

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is the envelope pushed to subscribers of a competition room.
// Types in use: STANDINGS_UPDATED, COMPETITION_COMPLETED.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Room    string      `json:"room,omitempty"`
}

// Hub fans settlement and standings updates out to websocket subscribers.
// Rooms are keyed "competition:<id>"; a room exists only while it has
// at least one subscriber.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("live client joined",
				slog.String("room", client.Room),
				slog.Int("room_size", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, joined := clients[client]; joined {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
					h.logger.Debug("live client left", slog.String("room", client.Room))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom pushes a typed message to every subscriber of the room.
// A subscriber with a full send buffer is skipped rather than blocked on.
func (h *Hub) BroadcastToRoom(room string, messageType string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}

	raw, err := json.Marshal(Message{Type: messageType, Payload: payload, Room: room})
	if err != nil {
		h.logger.Error("failed to encode live message",
			slog.String("room", room), slog.Any("error", err))
		return
	}

	for client := range clients {
		client.trySend(raw)
	}
}
