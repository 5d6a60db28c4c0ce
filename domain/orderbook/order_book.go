package orderbook

import (
	"sync/atomic"
	"time"
)

// OrderBook enforces price-time priority for a single instrument.
//
// The book itself is single-writer and deterministic: it takes no
// locks. The service layer serializes Submit/Cancel/queries behind one
// mutex per book; that coarse region is the concurrency contract, and
// sharding by instrument is the scale-out path.
type OrderBook struct {
	Symbol string

	Bids *RBTree
	Asks *RBTree

	LastSeq atomic.Uint64

	// retired collects maker orders fully filled by the match loop;
	// the caller drains it via TakeRetired after each Submit.
	retired []*Order

	now func() time.Time
}

func New(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		Bids:   NewRBTree(),
		Asks:   NewRBTree(),
		now:    time.Now,
	}
}

// Submit validates, matches, and (for resting kinds) enqueues an
// order. It returns the trades executed by this call, in execution
// order. Validation happens fully before any index mutation, so a
// rejected order leaves the book untouched.
//
// A crossed book is eliminated before Submit returns: the match loop
// runs until prices no longer cross, and a still-crossed book aborts
// with ErrBookCrossed instead of reporting trades from the failed pass.
func (b *OrderBook) Submit(o *Order) ([]Trade, error) {
	if err := Validate(o.Kind, o.Price, o.Qty); err != nil {
		return nil, err
	}
	if o.Kind == Market {
		// Market orders carry no price.
		o.Price = 0
	}

	b.LastSeq.Store(o.ID)

	// FOK is all-or-nothing: dry-run the opposing liquidity first.
	if o.Kind == FOK {
		if b.availableQty(o.Side, o.Price) < o.Qty {
			o.Status = StatusCancelled
			return nil, nil
		}
	}

	// PostOnly must never take; reject before matching.
	if o.Kind == PostOnly && b.wouldCross(o) {
		o.Status = StatusCancelled
		return nil, nil
	}

	trades := b.match(o)

	if o.Remaining() == 0 {
		o.Status = StatusFilled
	} else {
		switch o.Kind {
		case Limit, FOK, PostOnly:
			// FOK reaches here only fully fillable, so in practice
			// only Limit and PostOnly ever rest.
			b.side(o.Side).GetOrCreate(o.Price).Enqueue(o)
			if o.Filled > 0 {
				o.Status = StatusPartiallyFilled
			} else {
				o.Status = StatusResting
			}
		default:
			// Market and IOC never rest: fill what's available,
			// drop the rest.
			o.Status = StatusCancelled
		}
	}

	if b.crossed() {
		return nil, ErrBookCrossed
	}
	return trades, nil
}

// Cancel removes the remaining quantity of a resting order. It scans
// the given side's levels; the second call for the same ID is a no-op
// reporting found=false, not an error.
func (b *OrderBook) Cancel(id uint64, side Side) (*Order, bool) {
	tree := b.side(side)

	var found *Order
	var owner *PriceLevel
	tree.WalkAsc(func(lvl *PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			if o.ID == id {
				found = o
				owner = lvl
				return false
			}
		}
		return true
	})
	if found == nil {
		return nil, false
	}

	owner.Remove(found)
	if owner.Empty() {
		tree.Delete(owner.Price)
	}
	found.Status = StatusCancelled

	// LastSeq doubles as the book's version for depth deduplication;
	// a cancel changes the book just as a submit does.
	b.LastSeq.Add(1)
	return found, true
}

// Find scans both sides for a resting order. O(N); the cache is the
// fast path for lookups, this is the authoritative fallback.
func (b *OrderBook) Find(id uint64) *Order {
	var found *Order
	scan := func(lvl *PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			if o.ID == id {
				found = o
				return false
			}
		}
		return true
	}
	b.Bids.WalkDesc(scan)
	if found == nil {
		b.Asks.WalkAsc(scan)
	}
	return found
}

// ---- matching ----

func (b *OrderBook) match(taker *Order) []Trade {
	var trades []Trade
	opp := b.side(taker.Side.opposite())

	for taker.Remaining() > 0 {
		var best *PriceLevel
		if taker.Side == Bid {
			best = opp.BestMin()
			if best == nil || (taker.Kind != Market && best.Price > taker.Price) {
				break
			}
		} else {
			best = opp.BestMax()
			if best == nil || (taker.Kind != Market && best.Price < taker.Price) {
				break
			}
		}

		head := best.Head()
		fill := min64(taker.Remaining(), head.Remaining())

		taker.Filled += fill
		head.Filled += fill
		best.TotalQty -= fill

		trades = append(trades, b.trade(taker, head, fill))

		if head.Remaining() == 0 {
			head.Status = StatusFilled
			best.PopHead()
			b.retired = append(b.retired, head)
			if best.Empty() {
				opp.Delete(best.Price)
			}
		} else {
			head.Status = StatusPartiallyFilled
		}
	}
	return trades
}

// TakeRetired returns the maker orders fully filled since the last
// call and resets the list. Makers leave the index inside the match
// loop, so this is the only handle the owner gets for recycling them.
func (b *OrderBook) TakeRetired() []*Order {
	r := b.retired
	b.retired = nil
	return r
}

// trade builds the record for one fill. The print is the resting
// order's price.
func (b *OrderBook) trade(taker, resting *Order, qty int64) Trade {
	t := Trade{
		Symbol:    b.Symbol,
		Price:     resting.Price,
		Qty:       qty,
		TakerSide: taker.Side,
		Time:      b.now(),
	}
	if taker.Side == Bid {
		t.BuyOrderID = taker.ID
		t.SellOrderID = resting.ID
	} else {
		t.BuyOrderID = resting.ID
		t.SellOrderID = taker.ID
	}
	return t
}

// availableQty sums opposing liquidity priced at-or-better than the
// limit, stopping as soon as the desired amount is reachable.
func (b *OrderBook) availableQty(side Side, limit int64) int64 {
	var avail int64
	if side == Bid {
		b.Asks.WalkAsc(func(lvl *PriceLevel) bool {
			if lvl.Price > limit {
				return false
			}
			avail += lvl.TotalQty
			return true
		})
	} else {
		b.Bids.WalkDesc(func(lvl *PriceLevel) bool {
			if lvl.Price < limit {
				return false
			}
			avail += lvl.TotalQty
			return true
		})
	}
	return avail
}

func (b *OrderBook) wouldCross(o *Order) bool {
	if o.Side == Bid {
		best := b.Asks.BestMin()
		return best != nil && best.Price <= o.Price
	}
	best := b.Bids.BestMax()
	return best != nil && best.Price >= o.Price
}

func (b *OrderBook) crossed() bool {
	bid := b.Bids.BestMax()
	ask := b.Asks.BestMin()
	return bid != nil && ask != nil && bid.Price >= ask.Price
}

// ---- queries ----

func (b *OrderBook) BestBid() *PriceLevel { return b.Bids.BestMax() }
func (b *OrderBook) BestAsk() *PriceLevel { return b.Asks.BestMin() }

// Len returns the number of resting orders across both sides.
func (b *OrderBook) Len() int {
	n := 0
	count := func(lvl *PriceLevel) bool {
		n += lvl.OrderCount
		return true
	}
	b.Bids.WalkDesc(count)
	b.Asks.WalkAsc(count)
	return n
}

// Depth snapshots up to n levels per side, best first.
func (b *OrderBook) Depth(n int) DepthView {
	v := DepthView{
		Symbol: b.Symbol,
		Seq:    b.LastSeq.Load(),
		Time:   b.now(),
	}
	b.Bids.WalkDesc(func(lvl *PriceLevel) bool {
		v.Bids = append(v.Bids, LevelView{Price: lvl.Price, Qty: lvl.TotalQty, Orders: lvl.OrderCount})
		return len(v.Bids) < n
	})
	b.Asks.WalkAsc(func(lvl *PriceLevel) bool {
		v.Asks = append(v.Asks, LevelView{Price: lvl.Price, Qty: lvl.TotalQty, Orders: lvl.OrderCount})
		return len(v.Asks) < n
	})
	return v
}

// BidsWalk visits bid levels best (highest) first.
func (b *OrderBook) BidsWalk(fn func(*PriceLevel) bool) {
	b.Bids.WalkDesc(fn)
}

// AsksWalk visits ask levels best (lowest) first.
func (b *OrderBook) AsksWalk(fn func(*PriceLevel) bool) {
	b.Asks.WalkAsc(fn)
}

func (b *OrderBook) side(s Side) *RBTree {
	if s == Bid {
		return b.Bids
	}
	return b.Asks
}

func (s Side) opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
