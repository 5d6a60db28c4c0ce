package orderbook

import "time"

// Trade is the immutable record of one matching event. Price is always
// the resting order's price, never the aggressor's: an aggressor
// willing to pay more (or sell for less) trades at the better resting
// price already on the book.
type Trade struct {
	Seq         uint64
	Symbol      string
	BuyOrderID  uint64
	SellOrderID uint64
	Price       int64
	Qty         int64
	TakerSide   Side
	Time        time.Time
}

// LevelView is the per-level aggregate exposed to reporting callers.
type LevelView struct {
	Price  int64 `json:"price"`
	Qty    int64 `json:"qty"`
	Orders int   `json:"orders"`
}

// DepthView is a point-in-time snapshot of the top of the book.
type DepthView struct {
	Symbol string      `json:"symbol"`
	Bids   []LevelView `json:"bids"`
	Asks   []LevelView `json:"asks"`
	Seq    uint64      `json:"seq"`
	Time   time.Time   `json:"time"`
}
