package kraken

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cryptosim/backend/internal/market"
)

const tickerMsg = `[340,{"a":["50100.5",0,"0.1"],"b":["50100.0",1,"1.0"],` +
	`"c":["50000.5","0.00100000"],"v":["120.5","2400.8"],"p":["49500.1","48900.7"],` +
	`"t":[1200,24000],"l":["48000.0","47000.0"],"h":["51000.0","52000.0"],` +
	`"o":["49000.0","48500.0"]},["ticker"],"XBT/USD"]`

func newAdapter(t *testing.T) (*Adapter, *market.Registry) {
	t.Helper()
	registry := market.NewRegistry(zerolog.Nop())
	return NewAdapter(registry, zerolog.Nop()), registry
}

func TestHandleMessageTickerUpdate(t *testing.T) {
	a, registry := newAdapter(t)

	a.HandleMessage([]byte(tickerMsg))

	btc, ok := registry.Get("BTC")
	require.True(t, ok)
	assert.Equal(t, 50000.5, btc.Price)
	// change24h = (price - open) / open * 100
	assert.InDelta(t, (50000.5-49000.0)/49000.0*100, btc.Change24h, 1e-9)
	assert.True(t, registry.LiveDataActive())
}

func TestHandleMessageUnmappedPairIgnored(t *testing.T) {
	a, registry := newAdapter(t)

	msg := `[341,{"c":["1.23","0.1"],"o":["1.20","1.25"]},["ticker"],"WIF/USD"]`
	a.HandleMessage([]byte(msg))

	assert.False(t, registry.LiveDataActive())
}

func TestHandleMessageNonTickerFramesIgnored(t *testing.T) {
	a, registry := newAdapter(t)

	messages := []string{
		`{"connectionID":12345,"event":"systemStatus","status":"online","version":"1.9.0"}`,
		`{"channelID":340,"channelName":"ticker","event":"subscriptionStatus","pair":"XBT/USD","status":"subscribed"}`,
		`{"event":"heartbeat"}`,
		`[340,"not an object",["ticker"],"XBT/USD"]`,
		`[340]`,
		`not json at all`,
		``,
	}
	for _, msg := range messages {
		a.HandleMessage([]byte(msg))
	}

	assert.False(t, registry.LiveDataActive())
	btc, _ := registry.Get("BTC")
	assert.Equal(t, 43256.78, btc.Price) // untouched catalog price
}

func TestHandleMessageUnparseablePriceIgnored(t *testing.T) {
	a, registry := newAdapter(t)

	msg := `[340,{"c":["garbage","0.1"],"o":["49000.0","48500.0"]},["ticker"],"XBT/USD"]`
	a.HandleMessage([]byte(msg))

	assert.False(t, registry.LiveDataActive())
}

func TestPairsCoversCatalog(t *testing.T) {
	pairs := Pairs()
	assert.Len(t, pairs, 20)
	assert.Contains(t, pairs, "XBT/USD") // Kraken's name for BTC
	assert.Contains(t, pairs, "ALGO/USD")
}

func TestSubscriptionMessageShape(t *testing.T) {
	raw, err := SubscriptionMessage()
	require.NoError(t, err)

	var msg struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "subscribe", msg.Method)
	require.Len(t, msg.Params, 2)

	var sub struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(msg.Params[0], &sub))
	assert.Equal(t, "ticker", sub.Name)

	var pairs []string
	require.NoError(t, json.Unmarshal(msg.Params[1], &pairs))
	assert.Len(t, pairs, 20)
	assert.Contains(t, pairs, "XBT/USD")
}
