package kraken

import (
	"context"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/rs/zerolog"
)

const (
	dialTimeout       = 30 * time.Second
	baseReconnectWait = 5 * time.Second
	maxReconnectWait  = 5 * time.Minute
)

// Client maintains the long-lived websocket connection to the Kraken feed.
// It subscribes once per successful connection and hands every inbound
// message to the adapter. Connection failures are retried with capped
// exponential backoff forever; until live data arrives the rest of the
// system keeps running on simulated prices.
type Client struct {
	url     string
	adapter *Adapter
	dialer  *websocket.Dialer
	log     zerolog.Logger
}

// NewClient builds a feed client for the given websocket URL.
func NewClient(url string, adapter *Adapter, log zerolog.Logger) *Client {
	return &Client{
		url:     url,
		adapter: adapter,
		dialer: &websocket.Dialer{
			HandshakeTimeout: dialTimeout,
		},
		log: log.With().Str("component", "kraken_client").Logger(),
	}
}

// Run connects, reads until the connection drops, and reconnects until ctx is
// cancelled. Call it from its own goroutine.
func (c *Client) Run(ctx context.Context) {
	wait := baseReconnectWait
	for {
		connected, err := c.connectAndRead(ctx)
		if connected {
			// A successful session resets the backoff.
			wait = baseReconnectWait
		}
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", wait).Msg("feed connection lost")
		}

		select {
		case <-ctx.Done():
			c.log.Info().Msg("feed client stopped")
			return
		case <-time.After(wait):
		}

		wait *= 2
		if wait > maxReconnectWait {
			wait = maxReconnectWait
		}
	}
}

// connectAndRead dials, subscribes, and pumps messages into the adapter until
// the connection errors or ctx is cancelled. The first return reports whether
// a connection was established at all.
func (c *Client) connectAndRead(ctx context.Context) (bool, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	c.log.Info().Str("url", c.url).Msg("connected to Kraken websocket")

	sub, err := SubscriptionMessage()
	if err != nil {
		return true, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		return true, err
	}
	c.log.Info().Int("pairs", len(symbolToPair)).Msg("subscribed to tickers")

	// Unblock ReadMessage when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return true, err
		}
		c.adapter.HandleMessage(raw)
	}
}
