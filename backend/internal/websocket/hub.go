package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/user/cryptosim/backend/internal/models"
)

// Client represents a single WebSocket client connection.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte // buffered channel for outbound messages
}

// Hub fans price updates out to every connected WebSocket client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
	updates    <-chan models.PriceUpdate
	log        zerolog.Logger
}

// NewHub creates a hub broadcasting the given price update stream.
func NewHub(updates <-chan models.PriceUpdate, log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		updates:    updates,
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run starts the hub's event loop. Call it from its own goroutine.
func (h *Hub) Run() {
	h.log.Info().Msg("starting websocket hub")
	go h.pumpPriceUpdates()

	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("client registered")

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop it rather than stall the hub.
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// pumpPriceUpdates serializes price updates onto the broadcast channel.
func (h *Hub) pumpPriceUpdates() {
	for update := range h.updates {
		msg, err := json.Marshal(update)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to marshal price update")
			continue
		}
		h.broadcast <- msg
	}
}
