package service

import (
	"log"
	"sync"

	"vela/cache"
	"vela/domain/orderbook"
	"vela/infra/memory"
	"vela/infra/sequence"
	entrywal "vela/infra/wal/entry"
	exitwal "vela/infra/wal/exit"
	"vela/snapshot"
)

// OrderService is the only write entry point into the engine.
//
// One mutex serializes every index mutation (place, cancel) and every
// book query. The region is deliberately coarse: a crossed book or a
// level with the wrong head is worse than serialization, and the
// scale-out path is sharding by instrument, not finer in-book locking.
// The cache has its own lock and may lag the book by one event.
type OrderService struct {
	mu sync.Mutex

	book   *orderbook.OrderBook
	seqGen *sequence.Sequencer
	pool   *memory.Pool[orderbook.Order]
	ring   *memory.RetireRing
	reader *snapshot.Reader
	cache  *cache.Cache

	entryWAL *entrywal.WAL
	outbox   *exitwal.Outbox

	// wake is signalled whenever new trades reach the outbox, so the
	// broadcaster blocks instead of spinning when idle.
	wake chan struct{}
}

// NewOrderService wires all dependencies. No globals.
func NewOrderService(
	book *orderbook.OrderBook,
	seqGen *sequence.Sequencer,
	pool *memory.Pool[orderbook.Order],
	ring *memory.RetireRing,
	reader *snapshot.Reader,
	c *cache.Cache,
	entryWAL *entrywal.WAL,
	outbox *exitwal.Outbox,
) *OrderService {
	return &OrderService{
		book:     book,
		seqGen:   seqGen,
		pool:     pool,
		ring:     ring,
		reader:   reader,
		cache:    c,
		entryWAL: entryWAL,
		outbox:   outbox,
		wake:     make(chan struct{}, 1),
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// PlaceOrder submits a new order. It returns the engine-assigned order
// ID and the trades the order executed. Each call is one unit of
// atomicity: when it returns, the book is uncrossed and the WAL holds
// the intent.
func (s *OrderService) PlaceOrder(
	user uint64,
	side orderbook.Side,
	kind orderbook.Kind,
	price int64,
	qty int64,
) (uint64, []orderbook.Trade, error) {
	// Validate before the intent is logged; a rejected order must
	// leave both the WAL and the book untouched.
	if err := orderbook.Validate(kind, price, qty); err != nil {
		return 0, nil, err
	}

	o := s.pool.Get()

	s.mu.Lock()

	id := s.seqGen.Next()
	*o = orderbook.Order{
		ID:     id,
		User:   user,
		Symbol: s.book.Symbol,
		Side:   side,
		Kind:   kind,
		Price:  price,
		Qty:    qty,
		Status: orderbook.StatusNew,
	}

	if err := s.entryWAL.Append(entrywal.NewRecord(
		entrywal.RecordPlace,
		id,
		encodePlace(user, side, kind, price, qty),
	)); err != nil {
		s.mu.Unlock()
		s.pool.Put(o)
		return 0, nil, err
	}

	trades, err := s.book.Submit(o)
	if err != nil {
		s.mu.Unlock()
		return 0, nil, err
	}
	for i := range trades {
		trades[i].Seq = s.seqGen.Next()
	}
	makers := s.book.TakeRetired()
	s.mu.Unlock()

	s.cache.PutOrder(*o)
	for _, t := range trades {
		s.cache.PutTrade(t)
		s.noteMakerFill(t)
		s.publish(t)
	}
	if len(trades) > 0 {
		s.signal()
	}

	// Fully filled makers left the index inside the match loop; they
	// are retired here together with a terminal taker.
	for _, m := range makers {
		s.retire(m)
	}
	if o.Terminal() {
		s.retire(o)
	}
	return id, trades, nil
}

// CancelOrder removes the remaining quantity of a resting order. A
// found=true return guarantees the order is absent from all future
// matches. Cancelling an unknown or already-terminal ID is a normal
// found=false result.
func (s *OrderService) CancelOrder(id uint64, side orderbook.Side) bool {
	s.mu.Lock()

	if err := s.entryWAL.Append(entrywal.NewRecord(
		entrywal.RecordCancel,
		s.seqGen.Next(),
		encodeCancel(id, side),
	)); err != nil {
		s.mu.Unlock()
		log.Printf("[service] cancel wal append failed: %v", err)
		return false
	}

	o, found := s.book.Cancel(id, side)
	s.mu.Unlock()

	if !found {
		return false
	}

	s.cache.PutOrder(*o)
	s.retire(o)
	return true
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// GetOrder returns the last-known snapshot of an order. The cache is
// the fast path; the book scan is the authoritative fallback for
// orders the cache has already evicted.
func (s *OrderService) GetOrder(id uint64) (orderbook.Order, bool) {
	if o, ok := s.cache.GetOrder(id); ok {
		return o, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if o := s.book.Find(id); o != nil {
		return *o, true
	}
	return orderbook.Order{}, false
}

// RecentTrades returns up to n most recent executions, oldest first.
func (s *OrderService) RecentTrades(n int) []orderbook.Trade {
	return s.cache.Trades(n)
}

// Depth snapshots up to n aggregated levels per side.
func (s *OrderService) Depth(n int) orderbook.DepthView {
	s.reader.Begin()
	defer s.reader.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.book.Depth(n)
}

//
// ──────────────────────────────────────────────────────────
// Background plumbing
// ──────────────────────────────────────────────────────────
//

// Wake exposes the trade-availability signal for the broadcaster.
func (s *OrderService) Wake() <-chan struct{} {
	return s.wake
}

// AdvanceEpoch performs safe reclamation of retired orders. Called
// periodically by a background job.
func (s *OrderService) AdvanceEpoch() {
	memory.AdvanceEpochAndReclaim(s.ring, s.pool, s.reader.Epoch())
}

func (s *OrderService) Close() error {
	if err := s.entryWAL.Sync(); err != nil {
		return err
	}
	if err := s.entryWAL.Close(); err != nil {
		return err
	}
	return s.outbox.Close()
}

func (s *OrderService) publish(t orderbook.Trade) {
	payload, err := encodeTradeEvent(t)
	if err != nil {
		log.Printf("[service] trade encode failed: %v", err)
		return
	}
	if err := s.outbox.PutNew(t.Seq, payload); err != nil {
		log.Printf("[service] outbox put failed seq=%d: %v", t.Seq, err)
	}
}

// noteMakerFill refreshes the cached snapshot of the resting side of a
// trade. The book already mutated the live order; without this the
// cache would keep reporting the maker as resting.
func (s *OrderService) noteMakerFill(t orderbook.Trade) {
	makerID := t.SellOrderID
	if t.TakerSide == orderbook.Ask {
		makerID = t.BuyOrderID
	}

	o, ok := s.cache.GetOrder(makerID)
	if !ok {
		return
	}
	o.Filled += t.Qty
	if o.Remaining() == 0 {
		o.Status = orderbook.StatusFilled
	} else {
		o.Status = orderbook.StatusPartiallyFilled
	}
	s.cache.PutOrder(o)
}

func (s *OrderService) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *OrderService) retire(o *orderbook.Order) {
	if !s.ring.Enqueue(o) {
		// Ring full: let the GC have this one rather than block the
		// submit path.
		log.Printf("[service] retire ring full, dropping order %d", o.ID)
	}
}
