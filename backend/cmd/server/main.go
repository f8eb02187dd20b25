package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"

	"github.com/user/cryptosim/backend/internal/config"
	"github.com/user/cryptosim/backend/internal/handlers"
	"github.com/user/cryptosim/backend/internal/kraken"
	"github.com/user/cryptosim/backend/internal/ledger"
	"github.com/user/cryptosim/backend/internal/market"
	"github.com/user/cryptosim/backend/internal/simulator"
	"github.com/user/cryptosim/backend/internal/trading"
	internalws "github.com/user/cryptosim/backend/internal/websocket"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Core state: instrument catalog and the account ledger.
	registry := market.NewRegistry(log)
	book := ledger.New(cfg.StartingBalance)
	service := trading.NewService(registry, book, log)

	// Price sources: random-walk simulator, switched off for good once the
	// live feed delivers its first update.
	sim := simulator.New(registry, cfg.SimTick, log)
	go sim.Run(ctx)

	if cfg.LiveFeedEnabled {
		adapter := kraken.NewAdapter(registry, log)
		client := kraken.NewClient(cfg.KrakenWSURL, adapter, log)
		go client.Run(ctx)
	}

	// Price broadcast hub for websocket clients.
	hub := internalws.NewHub(registry.Updates(), log)
	go hub.Run()

	h := handlers.New(service, log)
	priceWS := handlers.NewPriceWS(hub, log)

	app := fiber.New()
	app.Use(cors.New()) // the simulator UI is served from another origin

	wsGroup := app.Group("/ws")
	wsGroup.Use("/", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	wsGroup.Get("/prices", websocket.New(priceWS.Serve))

	api := app.Group("/api")
	api.Get("/health", h.Health)
	api.Get("/cryptos", h.GetCryptos)
	api.Post("/trade", h.ExecuteTrade)
	api.Post("/reset", h.ResetAccount)
	api.Get("/account", h.GetAccount)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
