package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cryptosim/backend/internal/market"
)

func drain(r *market.Registry) {
	for {
		select {
		case <-r.Updates():
		default:
			return
		}
	}
}

func TestTickPerturbsWithinBounds(t *testing.T) {
	registry := market.NewRegistry(zerolog.Nop())
	s := New(registry, time.Second, zerolog.Nop())

	before := registry.List()
	s.tick()
	after := registry.List()

	require.Len(t, after, len(before))
	for i := range before {
		// Price moves at most 2% per tick and stays positive.
		low := before[i].Price * 0.98
		high := before[i].Price * 1.02
		assert.GreaterOrEqual(t, after[i].Price, low, after[i].Symbol)
		assert.LessOrEqual(t, after[i].Price, high, after[i].Symbol)
		assert.Greater(t, after[i].Price, 0.0, after[i].Symbol)

		// 24h change drifts at most 0.5 per tick.
		assert.InDelta(t, before[i].Change24h, after[i].Change24h, 0.5, after[i].Symbol)
	}
}

func TestChange24hStaysClamped(t *testing.T) {
	registry := market.NewRegistry(zerolog.Nop())
	s := New(registry, time.Second, zerolog.Nop())

	for i := 0; i < 100; i++ {
		s.tick()
	}

	for _, c := range registry.List() {
		assert.GreaterOrEqual(t, c.Change24h, -10.0, c.Symbol)
		assert.LessOrEqual(t, c.Change24h, 10.0, c.Symbol)
	}
}

func TestTickIsInertOnceLiveDataArrives(t *testing.T) {
	registry := market.NewRegistry(zerolog.Nop())
	s := New(registry, time.Second, zerolog.Nop())

	registry.ApplyUpdate("BTC", 50000.0, 3.5)
	drain(registry)
	before := registry.List()

	s.tick()

	after := registry.List()
	for i := range before {
		assert.Equal(t, before[i].Price, after[i].Price, before[i].Symbol)
		assert.Equal(t, before[i].Change24h, after[i].Change24h, before[i].Symbol)
	}

	// Nothing may be published for a skipped tick either.
	select {
	case u := <-registry.Updates():
		t.Fatalf("unexpected price update for %s after live data", u.Symbol)
	default:
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	registry := market.NewRegistry(zerolog.Nop())
	s := New(registry, time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop on context cancellation")
	}
}
