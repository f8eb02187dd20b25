package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is loaded from the environment at startup. Every field has a default
// so the server runs with no configuration at all.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	KrakenWSURL     string        `env:"KRAKEN_WS_URL" envDefault:"wss://ws.kraken.com"`
	LiveFeedEnabled bool          `env:"LIVE_FEED_ENABLED" envDefault:"true"`
	SimTick         time.Duration `env:"SIM_TICK" envDefault:"10s"`
	StartingBalance float64       `env:"STARTING_BALANCE" envDefault:"10000"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	return cfg, env.Parse(&cfg)
}
