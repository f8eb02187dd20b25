package models

import (
	"time"

	"github.com/google/uuid"
)

// Cryptocurrency is one tradable instrument. Price and Change24h are the only
// mutable fields; they are owned by the market registry.
type Cryptocurrency struct {
	Name      string  `json:"name"`   // e.g., "Bitcoin"
	Symbol    string  `json:"symbol"` // e.g., "BTC"
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"` // percent, kept within [-10, 10]
}

// Transaction is an immutable record of one executed trade.
type Transaction struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"` // "buy" or "sell"
	Symbol     string    `json:"symbol"`
	Amount     float64   `json:"amount"`
	Price      float64   `json:"price"`      // unit price at execution time
	Total      float64   `json:"total"`      // Amount * Price
	ProfitLoss *float64  `json:"profitLoss"` // nil for buys, realized P&L for sells
	Timestamp  time.Time `json:"timestamp"`
}

// Account is the single virtual cash account. Holdings maps symbol to quantity
// held; AverageBuyPrices maps symbol to the weighted-average cost basis and has
// an entry exactly when Holdings does.
type Account struct {
	Balance          float64            `json:"balance"`
	Holdings         map[string]float64 `json:"holdings"`
	AverageBuyPrices map[string]float64 `json:"averageBuyPrices"`
	Transactions     []Transaction      `json:"transactions"`
}

// NewAccount returns a fresh account with the given cash balance and no positions.
func NewAccount(initialBalance float64) *Account {
	return &Account{
		Balance:          initialBalance,
		Holdings:         make(map[string]float64),
		AverageBuyPrices: make(map[string]float64),
		Transactions:     make([]Transaction, 0),
	}
}

// TradeRequest is the inbound order: buy or sell a quantity of one symbol at
// the current market price.
type TradeRequest struct {
	Type   string  `json:"type"` // "buy" or "sell", case-insensitive
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

// TradeResponse reports whether a trade was applied, and the account state
// after it (unchanged for rejected trades).
type TradeResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Account *Account `json:"account"`
}

// PriceUpdate is broadcast to websocket clients whenever an instrument's price
// changes, simulated or live.
type PriceUpdate struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	Ts        int64   `json:"ts"` // Unix timestamp milliseconds
}
