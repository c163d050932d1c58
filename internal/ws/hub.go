package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"zapdesk/entity"

	"zapdesk/internal/lib/sl"
)

// Hub maintains the set of live dashboard connections and fans
// notifications out to them. Slow clients are shed: a full send buffer
// drops the connection instead of blocking the hub.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *entity.Notification
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *entity.Notification, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        logger.With(sl.Module("ws")),
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
					h.log.Debug("dropped slow websocket client")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues a notification for every connected client. Fire and
// forget: when the hub itself is saturated the event is dropped.
func (h *Hub) Publish(event entity.Notification) {
	select {
	case h.broadcast <- &event:
	default:
		h.log.Warn("websocket broadcast queue full, event dropped", slog.String("event", event.Event))
	}
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
