package snapshot

import "time"

type Snapshot struct {
	Seq     uint64
	Symbol  string
	Created time.Time
	Orders  []OrderEntry
}

// OrderEntry is the serializable form of one resting order. Filled is
// kept so a partially executed order restores with its true remainder.
type OrderEntry struct {
	ID     uint64
	User   uint64
	Side   int
	Kind   int
	Price  int64
	Qty    int64
	Filled int64
}
