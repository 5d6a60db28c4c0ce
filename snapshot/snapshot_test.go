package snapshot

import (
	"testing"

	"vela/domain/orderbook"
	"vela/infra/memory"
)

func newOrderPool() *memory.Pool[orderbook.Order] {
	return memory.NewPool(func() *orderbook.Order { return new(orderbook.Order) })
}

func submit(t *testing.T, b *orderbook.OrderBook, o *orderbook.Order) {
	t.Helper()
	if _, err := b.Submit(o); err != nil {
		t.Fatalf("submit %d: %v", o.ID, err)
	}
}

func TestWriteLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	book := orderbook.New("TEST")
	submit(t, book, &orderbook.Order{ID: 1, User: 9, Side: orderbook.Bid, Kind: orderbook.Limit, Price: 100, Qty: 10})
	submit(t, book, &orderbook.Order{ID: 2, User: 9, Side: orderbook.Bid, Kind: orderbook.Limit, Price: 100, Qty: 5})
	submit(t, book, &orderbook.Order{ID: 3, User: 9, Side: orderbook.Ask, Kind: orderbook.Limit, Price: 105, Qty: 7})
	// Partial fill: order 3 keeps a remainder of 3.
	submit(t, book, &orderbook.Order{ID: 4, User: 8, Side: orderbook.Bid, Kind: orderbook.Limit, Price: 105, Qty: 4})

	w := &Writer{Dir: dir}
	if err := w.Write(42, book); err != nil {
		t.Fatalf("write: %v", err)
	}

	restored := orderbook.New("TEST")
	seq, err := Load(dir, restored, newOrderPool())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if seq != 42 {
		t.Fatalf("seq = %d, want 42", seq)
	}

	want := book.Depth(10)
	got := restored.Depth(10)
	if len(got.Bids) != len(want.Bids) || len(got.Asks) != len(want.Asks) {
		t.Fatalf("depth shape mismatch: got %+v want %+v", got, want)
	}
	for i := range want.Bids {
		if got.Bids[i] != want.Bids[i] {
			t.Fatalf("bid %d mismatch: got %+v want %+v", i, got.Bids[i], want.Bids[i])
		}
	}
	for i := range want.Asks {
		if got.Asks[i] != want.Asks[i] {
			t.Fatalf("ask %d mismatch: got %+v want %+v", i, got.Asks[i], want.Asks[i])
		}
	}

	// FIFO priority survives: the first resting bid fills first.
	trades, err := restored.Submit(&orderbook.Order{ID: 100, Side: orderbook.Ask, Kind: orderbook.Limit, Price: 100, Qty: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 || trades[0].BuyOrderID != 1 {
		t.Fatalf("priority lost after restore: %+v", trades)
	}
}

func TestLoadMissingSnapshotIsFreshStart(t *testing.T) {
	book := orderbook.New("TEST")
	seq, err := Load(t.TempDir(), book, newOrderPool())
	if err != nil {
		t.Fatalf("missing snapshot must not error: %v", err)
	}
	if seq != 0 || book.Len() != 0 {
		t.Fatalf("fresh start expected: seq=%d len=%d", seq, book.Len())
	}
}

func TestWriteReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}

	book := orderbook.New("TEST")
	submit(t, book, &orderbook.Order{ID: 1, Side: orderbook.Bid, Kind: orderbook.Limit, Price: 100, Qty: 1})
	if err := w.Write(1, book); err != nil {
		t.Fatal(err)
	}

	submit(t, book, &orderbook.Order{ID: 2, Side: orderbook.Bid, Kind: orderbook.Limit, Price: 101, Qty: 1})
	if err := w.Write(2, book); err != nil {
		t.Fatal(err)
	}

	restored := orderbook.New("TEST")
	seq, err := Load(dir, restored, newOrderPool())
	if err != nil {
		t.Fatal(err)
	}
	if seq != 2 || restored.Len() != 2 {
		t.Fatalf("latest snapshot not loaded: seq=%d len=%d", seq, restored.Len())
	}
}
