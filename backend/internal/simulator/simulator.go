package simulator

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/cryptosim/backend/internal/market"
)

// Simulator drives a bounded random walk over every instrument's price while
// no live market data has arrived. A single goroutine runs the tick loop, so
// ticks never overlap.
type Simulator struct {
	registry *market.Registry
	interval time.Duration
	rng      *rand.Rand
	log      zerolog.Logger
}

// New builds a simulator ticking at the given interval.
func New(registry *market.Registry, interval time.Duration, log zerolog.Logger) *Simulator {
	return &Simulator{
		registry: registry,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log.With().Str("component", "simulator").Logger(),
	}
}

// Run ticks until ctx is cancelled. Call it from its own goroutine.
func (s *Simulator) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("starting price simulator")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("price simulator stopped")
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick perturbs every instrument once. Skipped entirely after live data kicks in.
func (s *Simulator) tick() {
	if s.registry.LiveDataActive() {
		return
	}

	for _, crypto := range s.registry.List() {
		// Price moves between -2% and +2% per tick.
		changePercent := s.rng.Float64()*4 - 2
		newPrice := crypto.Price * (1 + changePercent/100)

		// The 24h change drifts by up to +/-0.5 and stays within +/-10.
		newChange := crypto.Change24h + (s.rng.Float64() - 0.5)
		if newChange > 10 {
			newChange = 10
		}
		if newChange < -10 {
			newChange = -10
		}

		s.registry.SetSimulated(crypto.Symbol, newPrice, newChange)
	}
}
