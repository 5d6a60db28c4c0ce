package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"vela/domain/orderbook"
)

type Writer struct {
	Dir string
}

// Write persists every resting order. The temp-file rename keeps a
// crash mid-write from clobbering the previous good snapshot.
func (w *Writer) Write(seq uint64, book *orderbook.OrderBook) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	s := Snapshot{
		Seq:     seq,
		Symbol:  book.Symbol,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, 1024),
	}

	collect := func(lvl *orderbook.PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			s.Orders = append(s.Orders, OrderEntry{
				ID:     o.ID,
				User:   o.User,
				Side:   int(o.Side),
				Kind:   int(o.Kind),
				Price:  o.Price,
				Qty:    o.Qty,
				Filled: o.Filled,
			})
		}
		return true
	}
	book.BidsWalk(collect)
	book.AsksWalk(collect)

	tmp := filepath.Join(w.Dir, "snapshot.bin.tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		_ = f.Close()
		return err
	}
	// The rename must never promote an unsynced file: a power cut
	// could otherwise leave an empty snapshot.bin in place of the
	// previous good one.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, "snapshot.bin"))
}
