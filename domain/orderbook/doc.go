// Package orderbook implements a price-time-priority limit order book
// for a single instrument: two red-black trees of price levels (bids
// descending, asks ascending), each level a FIFO queue of resting
// orders. Matching is continuous: every Submit runs the match loop
// until best bid and best ask no longer cross, so a crossed book only
// ever exists transiently inside a Submit call.
//
// The package is pure domain logic with no I/O and no locking; the
// service layer provides the exclusive-access region.
package orderbook
