package market

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/cryptosim/backend/internal/models"
)

// catalogEntry seeds one instrument at startup.
type catalogEntry struct {
	name      string
	symbol    string
	price     float64
	change24h float64
}

// catalog is the fixed set of tradable instruments. Order here is the order
// List returns.
var catalog = []catalogEntry{
	{"Bitcoin", "BTC", 43256.78, 1.23},
	{"Ethereum", "ETH", 2324.65, -0.45},
	{"Binance Coin", "BNB", 289.45, 0.76},
	{"Solana", "SOL", 98.34, 2.54},
	{"Ripple", "XRP", 0.52, -1.21},
	{"Cardano", "ADA", 0.41, 0.32},
	{"Dogecoin", "DOGE", 0.08, 1.11},
	{"Polkadot", "DOT", 6.78, -0.89},
	{"Avalanche", "AVAX", 34.56, 3.21},
	{"Chainlink", "LINK", 14.23, 0.56},
	{"Litecoin", "LTC", 70.98, -0.32},
	{"Polygon", "MATIC", 0.76, 1.45},
	{"Uniswap", "UNI", 6.89, -0.78},
	{"Cosmos", "ATOM", 9.45, 2.34},
	{"Stellar", "XLM", 0.12, 0.23},
	{"Monero", "XMR", 168.45, -1.34},
	{"Tron", "TRX", 0.11, 0.45},
	{"VeChain", "VET", 0.023, 1.56},
	{"Filecoin", "FIL", 4.32, -0.67},
	{"Algorand", "ALGO", 0.18, 0.87},
}

// Registry holds the instrument catalog and its live price state. Prices are
// written either by the simulator or by the live feed; once a live update has
// been applied the simulator goes quiet for the rest of the process lifetime.
type Registry struct {
	mu      sync.RWMutex
	order   []string // catalog insertion order
	cryptos map[string]*models.Cryptocurrency

	liveData atomic.Bool

	updates chan models.PriceUpdate
	log     zerolog.Logger
}

// NewRegistry builds a registry populated with the fixed catalog.
func NewRegistry(log zerolog.Logger) *Registry {
	r := &Registry{
		order:   make([]string, 0, len(catalog)),
		cryptos: make(map[string]*models.Cryptocurrency, len(catalog)),
		updates: make(chan models.PriceUpdate, 256),
		log:     log.With().Str("component", "market").Logger(),
	}
	for _, e := range catalog {
		r.order = append(r.order, e.symbol)
		r.cryptos[e.symbol] = &models.Cryptocurrency{
			Name:      e.name,
			Symbol:    e.symbol,
			Price:     e.price,
			Change24h: e.change24h,
		}
	}
	return r
}

// List returns a snapshot of every instrument in catalog order.
func (r *Registry) List() []models.Cryptocurrency {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Cryptocurrency, 0, len(r.order))
	for _, sym := range r.order {
		out = append(out, *r.cryptos[sym])
	}
	return out
}

// Get returns a copy of the instrument for symbol, if it exists.
func (r *Registry) Get(symbol string) (models.Cryptocurrency, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cryptos[symbol]
	if !ok {
		return models.Cryptocurrency{}, false
	}
	return *c, true
}

// ApplyUpdate overwrites price and 24h change from the live feed and marks
// live data as active. Unknown symbols are a no-op.
func (r *Registry) ApplyUpdate(symbol string, price, change24h float64) {
	r.mu.Lock()
	c, ok := r.cryptos[symbol]
	if !ok {
		r.mu.Unlock()
		return
	}
	c.Price = price
	c.Change24h = change24h
	// Flipping the flag under the same lock guarantees the simulator can
	// never overwrite a price written after live data arrived.
	first := r.liveData.CompareAndSwap(false, true)
	r.mu.Unlock()

	if first {
		r.log.Info().Str("symbol", symbol).Msg("live market data active, simulator disabled")
	}
	r.publish(symbol, price, change24h)
}

// SetSimulated overwrites price and 24h change from the simulator. It becomes
// a no-op permanently once live data is active.
func (r *Registry) SetSimulated(symbol string, price, change24h float64) {
	r.mu.Lock()
	if r.liveData.Load() {
		r.mu.Unlock()
		return
	}
	c, ok := r.cryptos[symbol]
	if !ok {
		r.mu.Unlock()
		return
	}
	c.Price = price
	c.Change24h = change24h
	r.mu.Unlock()

	r.publish(symbol, price, change24h)
}

// LiveDataActive reports whether any live feed update has ever been applied.
func (r *Registry) LiveDataActive() bool {
	return r.liveData.Load()
}

// Updates exposes the stream of applied price updates for broadcasting.
func (r *Registry) Updates() <-chan models.PriceUpdate {
	return r.updates
}

// publish sends an update without blocking; if nobody is draining the channel
// the update is dropped.
func (r *Registry) publish(symbol string, price, change24h float64) {
	u := models.PriceUpdate{
		Symbol:    symbol,
		Price:     price,
		Change24h: change24h,
		Ts:        time.Now().UnixMilli(),
	}
	select {
	case r.updates <- u:
	default:
		r.log.Debug().Str("symbol", symbol).Msg("price update channel full, dropping update")
	}
}
