package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	ws "github.com/user/cryptosim/backend/internal/websocket"
)

// PriceWS serves the public price-feed websocket. Each connection is handed to
// the hub, which broadcasts every applied price update.
type PriceWS struct {
	hub *ws.Hub
	log zerolog.Logger
}

// NewPriceWS builds the websocket endpoint for the given hub.
func NewPriceWS(hub *ws.Hub, log zerolog.Logger) *PriceWS {
	return &PriceWS{
		hub: hub,
		log: log.With().Str("component", "price_ws").Logger(),
	}
}

// Serve is the connection handler for /ws/prices.
func (p *PriceWS) Serve(c *websocket.Conn) {
	client := &ws.Client{
		Conn: c,
		Send: make(chan []byte, 256),
	}

	p.hub.Register <- client

	go p.writePump(client)
	p.readPump(client) // block until the client goes away
}

// writePump pumps hub messages out to the client.
func (p *PriceWS) writePump(client *ws.Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			p.hub.Unregister <- client
			return
		}
	}
}

// readPump drains inbound frames so pings and closes are processed; the price
// feed expects nothing from clients.
func (p *PriceWS) readPump(client *ws.Client) {
	defer func() {
		p.hub.Unregister <- client
		client.Conn.Close()
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				p.log.Debug().Err(err).Msg("client disconnected unexpectedly")
			}
			return
		}
	}
}
