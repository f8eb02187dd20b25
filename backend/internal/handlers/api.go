package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/user/cryptosim/backend/internal/models"
	"github.com/user/cryptosim/backend/internal/trading"
)

// Handler exposes the trading service over HTTP.
type Handler struct {
	service *trading.Service
	log     zerolog.Logger
}

// New builds the HTTP handler set.
func New(service *trading.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "http").Logger(),
	}
}

// Health is a liveness probe.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.SendString("Crypto trading simulator is healthy!")
}

// GetCryptos returns every instrument with its current price.
func (h *Handler) GetCryptos(c *fiber.Ctx) error {
	return c.JSON(h.service.ListCryptos())
}

// ExecuteTrade runs one buy or sell at the current market price. Business
// rejections still return 200 with success=false; only an unreadable body is
// a client error.
func (h *Handler) ExecuteTrade(c *fiber.Ctx) error {
	req := new(models.TradeRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}
	return c.JSON(h.service.Execute(*req))
}

// ResetAccount restores the account to its starting state.
func (h *Handler) ResetAccount(c *fiber.Ctx) error {
	return c.JSON(h.service.ResetAccount())
}

// GetAccount returns the current account snapshot.
func (h *Handler) GetAccount(c *fiber.Ctx) error {
	return c.JSON(h.service.GetAccount())
}
