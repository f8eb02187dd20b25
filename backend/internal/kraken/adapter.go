package kraken

import (
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/user/cryptosim/backend/internal/market"
)

// symbolToPair maps internal symbols to Kraken pair identifiers. Kraken calls
// Bitcoin XBT; everything else is SYMBOL/USD.
var symbolToPair = map[string]string{
	"BTC":   "XBT/USD",
	"ETH":   "ETH/USD",
	"BNB":   "BNB/USD",
	"SOL":   "SOL/USD",
	"XRP":   "XRP/USD",
	"ADA":   "ADA/USD",
	"DOGE":  "DOGE/USD",
	"DOT":   "DOT/USD",
	"AVAX":  "AVAX/USD",
	"LINK":  "LINK/USD",
	"LTC":   "LTC/USD",
	"MATIC": "MATIC/USD",
	"UNI":   "UNI/USD",
	"ATOM":  "ATOM/USD",
	"XLM":   "XLM/USD",
	"XMR":   "XMR/USD",
	"TRX":   "TRX/USD",
	"VET":   "VET/USD",
	"FIL":   "FIL/USD",
	"ALGO":  "ALGO/USD",
}

// pairToSymbol is the reverse lookup, built once at init.
var pairToSymbol = func() map[string]string {
	m := make(map[string]string, len(symbolToPair))
	for sym, pair := range symbolToPair {
		m[pair] = sym
	}
	return m
}()

// Pairs returns every Kraken pair identifier we subscribe to.
func Pairs() []string {
	pairs := make([]string, 0, len(symbolToPair))
	for _, pair := range symbolToPair {
		pairs = append(pairs, pair)
	}
	return pairs
}

// tickerPayload is the object element of a Kraken ticker frame. We only care
// about the last trade price (c) and today's opening price (o).
type tickerPayload struct {
	Close []string `json:"c"`
	Open  []string `json:"o"`
}

// tickerFrame is a strictly-decoded Kraken ticker message. Kraken sends ticker
// updates as a JSON array [channelID, payload, channelName(s), pair]; anything
// that does not decode into this shape is not a ticker update.
type tickerFrame struct {
	payload tickerPayload
	pair    string
}

// parseTickerFrame attempts to decode raw as a ticker update. The second
// return is false for every other message kind (subscription acks, heartbeats,
// system status), which the feed also delivers on the same connection.
func parseTickerFrame(raw []byte) (tickerFrame, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil || len(elements) < 4 {
		return tickerFrame{}, false
	}

	var payload tickerPayload
	if err := json.Unmarshal(elements[1], &payload); err != nil {
		return tickerFrame{}, false
	}
	if len(payload.Close) == 0 || len(payload.Open) == 0 {
		return tickerFrame{}, false
	}

	// The third element is the channel name; for ticker frames Kraken encodes
	// it as an array when multiple channels share the frame, which is the
	// structural marker distinguishing tickers from event objects.
	var channels []json.RawMessage
	if err := json.Unmarshal(elements[2], &channels); err != nil {
		return tickerFrame{}, false
	}

	var pair string
	if err := json.Unmarshal(elements[3], &pair); err != nil {
		return tickerFrame{}, false
	}

	return tickerFrame{payload: payload, pair: pair}, true
}

// Adapter normalizes raw feed messages into registry price updates.
type Adapter struct {
	registry *market.Registry
	log      zerolog.Logger
}

// NewAdapter builds an adapter feeding the given registry.
func NewAdapter(registry *market.Registry, log zerolog.Logger) *Adapter {
	return &Adapter{
		registry: registry,
		log:      log.With().Str("component", "kraken").Logger(),
	}
}

// HandleMessage processes one raw feed message. Messages that are not ticker
// updates for a mapped pair are ignored; ingestion is deliberately lenient and
// nothing here can fail the read loop.
func (a *Adapter) HandleMessage(raw []byte) {
	frame, ok := parseTickerFrame(raw)
	if !ok {
		a.log.Debug().Msg("ignoring non-ticker feed message")
		return
	}

	symbol, ok := pairToSymbol[frame.pair]
	if !ok {
		a.log.Debug().Str("pair", frame.pair).Msg("ignoring ticker for unmapped pair")
		return
	}

	price, err := strconv.ParseFloat(frame.payload.Close[0], 64)
	if err != nil {
		a.log.Warn().Err(err).Str("pair", frame.pair).Msg("unparseable ticker price")
		return
	}
	open, err := strconv.ParseFloat(frame.payload.Open[0], 64)
	if err != nil || open == 0 {
		a.log.Warn().Str("pair", frame.pair).Msg("unparseable ticker opening price")
		return
	}

	change24h := (price - open) / open * 100
	a.registry.ApplyUpdate(symbol, price, change24h)
}

// SubscriptionMessage builds the one-time ticker subscription payload sent
// after each successful connection.
func SubscriptionMessage() ([]byte, error) {
	return json.Marshal(map[string]any{
		"method": "subscribe",
		"params": []any{
			map[string]any{"name": "ticker"},
			Pairs(),
		},
	})
}
