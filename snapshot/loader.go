package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"vela/domain/orderbook"
	"vela/infra/memory"
)

// Load restores resting orders from the latest snapshot, if one
// exists. A missing snapshot is a normal fresh start, not an error.
// Returns the seq the snapshot was taken at; entry-WAL replay resumes
// from there.
func Load(
	dir string,
	book *orderbook.OrderBook,
	pool *memory.Pool[orderbook.Order],
) (uint64, error) {
	f, err := os.Open(filepath.Join(dir, "snapshot.bin"))
	if err != nil {
		return 0, nil
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, err
	}

	for _, e := range s.Orders {
		o := pool.Get()
		*o = orderbook.Order{
			ID:     e.ID,
			User:   e.User,
			Symbol: s.Symbol,
			Side:   orderbook.Side(e.Side),
			Kind:   orderbook.Kind(e.Kind),
			Price:  e.Price,
			Qty:    e.Qty,
			Filled: e.Filled,
			Status: orderbook.StatusNew,
		}
		// Snapshotted orders were resting and uncrossed, so Submit
		// re-enqueues them without producing trades.
		if _, err := book.Submit(o); err != nil {
			return 0, err
		}
	}

	return s.Seq, nil
}
