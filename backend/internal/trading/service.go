package trading

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/user/cryptosim/backend/internal/ledger"
	"github.com/user/cryptosim/backend/internal/market"
	"github.com/user/cryptosim/backend/internal/models"
)

// Rejection and success messages surfaced to clients.
const (
	msgAmountNotPositive    = "Amount must be positive"
	msgCryptoNotFound       = "Cryptocurrency not found"
	msgInvalidTradeType     = "Invalid trade type"
	msgInsufficientFunds    = "Insufficient funds"
	msgInsufficientHoldings = "Insufficient holdings"
	msgPurchaseSuccessful   = "Purchase successful"
	msgSaleSuccessful       = "Sale successful"
)

// Service orchestrates trades: it validates requests, reads the current price
// from the market registry, and applies the trade through the ledger.
type Service struct {
	registry *market.Registry
	ledger   *ledger.Ledger
	log      zerolog.Logger
}

// NewService wires a trading service to its registry and ledger.
func NewService(registry *market.Registry, l *ledger.Ledger, log zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		ledger:   l,
		log:      log.With().Str("component", "trading").Logger(),
	}
}

// ListCryptos returns every tradable instrument with its current price.
func (s *Service) ListCryptos() []models.Cryptocurrency {
	return s.registry.List()
}

// GetAccount returns a snapshot of the account.
func (s *Service) GetAccount() *models.Account {
	return s.ledger.Snapshot()
}

// ResetAccount restores the account to its starting state.
func (s *Service) ResetAccount() *models.Account {
	s.log.Info().Msg("account reset")
	return s.ledger.Reset()
}

// Execute validates and runs one trade at the price visible at this moment.
// Every failure is reported as a rejection, never an error; rejected responses
// still carry the (unchanged) account snapshot.
func (s *Service) Execute(req models.TradeRequest) models.TradeResponse {
	if req.Amount <= 0 {
		return s.reject(msgAmountNotPositive)
	}

	crypto, ok := s.registry.Get(req.Symbol)
	if !ok {
		return s.reject(msgCryptoNotFound)
	}
	price := crypto.Price

	var (
		account *models.Account
		err     error
		message string
	)
	switch strings.ToLower(req.Type) {
	case "buy":
		account, err = s.ledger.Buy(req.Symbol, req.Amount, price)
		message = msgPurchaseSuccessful
	case "sell":
		account, err = s.ledger.Sell(req.Symbol, req.Amount, price)
		message = msgSaleSuccessful
	default:
		return s.reject(msgInvalidTradeType)
	}

	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return s.reject(msgInsufficientFunds)
		case errors.Is(err, ledger.ErrInsufficientHoldings):
			return s.reject(msgInsufficientHoldings)
		default:
			return s.reject(err.Error())
		}
	}

	s.log.Info().
		Str("type", strings.ToLower(req.Type)).
		Str("symbol", req.Symbol).
		Float64("amount", req.Amount).
		Float64("price", price).
		Msg("trade executed")

	return models.TradeResponse{Success: true, Message: message, Account: account}
}

func (s *Service) reject(reason string) models.TradeResponse {
	return models.TradeResponse{
		Success: false,
		Message: reason,
		Account: s.ledger.Snapshot(),
	}
}
