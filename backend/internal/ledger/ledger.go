package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/cryptosim/backend/internal/models"
)

// Business-rule rejections. These are expected outcomes, not failures.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// Ledger owns the single account. Every mutation and every snapshot happens
// under one mutex, so a trade is atomic with respect to concurrent requests
// and a snapshot never observes a half-applied trade. There is no I/O here.
type Ledger struct {
	mu             sync.Mutex
	account        *models.Account
	initialBalance float64
}

// New builds a ledger with a fresh account at the given starting balance.
func New(initialBalance float64) *Ledger {
	return &Ledger{
		account:        models.NewAccount(initialBalance),
		initialBalance: initialBalance,
	}
}

// Buy debits amount*price from the balance, folds the purchase into the
// weighted-average cost basis, and records the transaction.
func (l *Ledger) Buy(symbol string, amount, price float64) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := amount * price
	if total > l.account.Balance {
		return nil, ErrInsufficientFunds
	}

	l.account.Balance -= total

	currentHolding := l.account.Holdings[symbol]
	currentTotal := currentHolding * l.account.AverageBuyPrices[symbol]
	newAmount := currentHolding + amount

	l.account.Holdings[symbol] = newAmount
	l.account.AverageBuyPrices[symbol] = (currentTotal + total) / newAmount

	l.appendTransaction("buy", symbol, amount, price, nil)
	return snapshot(l.account), nil
}

// Sell credits amount*price to the balance, realizes P&L against the average
// cost basis, and records the transaction. Closing a position removes its
// holdings and cost-basis entries entirely.
func (l *Ledger) Sell(symbol string, amount, price float64) (*models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	currentHolding := l.account.Holdings[symbol]
	if amount > currentHolding {
		return nil, ErrInsufficientHoldings
	}

	// A positive holding always has a cost basis, so the map lookup cannot miss.
	profitLoss := (price - l.account.AverageBuyPrices[symbol]) * amount

	l.account.Balance += amount * price

	remaining := currentHolding - amount
	if remaining <= 0 {
		delete(l.account.Holdings, symbol)
		delete(l.account.AverageBuyPrices, symbol)
	} else {
		l.account.Holdings[symbol] = remaining
	}

	l.appendTransaction("sell", symbol, amount, price, &profitLoss)
	return snapshot(l.account), nil
}

// Reset replaces the account with a fresh one at the starting balance.
func (l *Ledger) Reset() *models.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.account = models.NewAccount(l.initialBalance)
	return snapshot(l.account)
}

// Snapshot returns a deep copy of the current account state.
func (l *Ledger) Snapshot() *models.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	return snapshot(l.account)
}

// appendTransaction records a trade. Caller holds l.mu.
func (l *Ledger) appendTransaction(kind, symbol string, amount, price float64, profitLoss *float64) {
	l.account.Transactions = append(l.account.Transactions, models.Transaction{
		ID:         uuid.New(),
		Type:       kind,
		Symbol:     symbol,
		Amount:     amount,
		Price:      price,
		Total:      amount * price,
		ProfitLoss: profitLoss,
		Timestamp:  time.Now(),
	})
}

// snapshot deep-copies an account so callers can serialize it outside the lock.
func snapshot(a *models.Account) *models.Account {
	cp := &models.Account{
		Balance:          a.Balance,
		Holdings:         make(map[string]float64, len(a.Holdings)),
		AverageBuyPrices: make(map[string]float64, len(a.AverageBuyPrices)),
		Transactions:     make([]models.Transaction, len(a.Transactions)),
	}
	for k, v := range a.Holdings {
		cp.Holdings[k] = v
	}
	for k, v := range a.AverageBuyPrices {
		cp.AverageBuyPrices[k] = v
	}
	copy(cp.Transactions, a.Transactions)
	return cp
}
