package cache

import (
	"sync"

	"vela/domain/orderbook"
)

// Cache is a bounded, read-mostly side index of last-known order
// snapshots and recent trades. It never participates in matching
// decisions and has its own lock, separate from the book's: lookups
// may lag the authoritative book state by one event.
//
// Eviction is by insertion order (oldest first), independently for
// orders and trades. It is a bounded history, not an LRU: reading an
// entry does not refresh it.
type Cache struct {
	mu sync.Mutex

	maxOrders int
	maxTrades int

	orders  map[uint64]orderbook.Order
	arrival []uint64

	trades []orderbook.Trade
}

func New(maxOrders, maxTrades int) *Cache {
	return &Cache{
		maxOrders: maxOrders,
		maxTrades: maxTrades,
		orders:    make(map[uint64]orderbook.Order, maxOrders),
		arrival:   make([]uint64, 0, maxOrders),
		trades:    make([]orderbook.Trade, 0, maxTrades),
	}
}

// PutOrder stores a snapshot (copy) of the order. Updating a known ID
// overwrites in place and does not consume a new slot.
func (c *Cache) PutOrder(o orderbook.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.orders[o.ID]; ok {
		c.orders[o.ID] = o
		return
	}
	if len(c.arrival) >= c.maxOrders {
		oldest := c.arrival[0]
		c.arrival = c.arrival[1:]
		delete(c.orders, oldest)
	}
	c.orders[o.ID] = o
	c.arrival = append(c.arrival, o.ID)
}

// GetOrder is an exact-key lookup; a miss is a normal not-found, not
// an error.
func (c *Cache) GetOrder(id uint64) (orderbook.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, ok := c.orders[id]
	return o, ok
}

func (c *Cache) PutTrade(t orderbook.Trade) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.trades) >= c.maxTrades {
		c.trades = c.trades[1:]
	}
	c.trades = append(c.trades, t)
}

// Trades returns up to n most recent trades, oldest first.
func (c *Cache) Trades(n int) []orderbook.Trade {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 || n > len(c.trades) {
		n = len(c.trades)
	}
	out := make([]orderbook.Trade, n)
	copy(out, c.trades[len(c.trades)-n:])
	return out
}

func (c *Cache) OrderCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.orders)
}

func (c *Cache) TradeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.trades)
}
