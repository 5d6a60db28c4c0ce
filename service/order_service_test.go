package service

import (
	"sync"
	"testing"

	"vela/cache"
	"vela/domain/orderbook"
	"vela/infra/memory"
	"vela/infra/sequence"
	entrywal "vela/infra/wal/entry"
	exitwal "vela/infra/wal/exit"
	"vela/snapshot"
)

type testEnv struct {
	svc    *OrderService
	book   *orderbook.OrderBook
	seqGen *sequence.Sequencer
	ring   *memory.RetireRing
	outbox *exitwal.Outbox
	walDir string
}

func newTestEnv(t *testing.T, cacheOrders int) *testEnv {
	t.Helper()

	walDir := t.TempDir()
	entryWAL, err := entrywal.Open(entrywal.Config{Dir: walDir, SegmentSize: 1 << 20})
	if err != nil {
		t.Fatalf("open entry wal: %v", err)
	}
	outbox, err := exitwal.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open outbox: %v", err)
	}

	book := orderbook.New("TEST")
	seqGen := sequence.New(0)
	pool := memory.NewPool(func() *orderbook.Order { return new(orderbook.Order) })
	ring := memory.NewRetireRing(1 << 10)
	reader := snapshot.NewReader()
	c := cache.New(cacheOrders, 1000)

	svc := NewOrderService(book, seqGen, pool, ring, reader, c, entryWAL, outbox)
	t.Cleanup(func() { _ = svc.Close() })

	return &testEnv{
		svc:    svc,
		book:   book,
		seqGen: seqGen,
		ring:   ring,
		outbox: outbox,
		walDir: walDir,
	}
}

func TestPlaceOrderRests(t *testing.T) {
	env := newTestEnv(t, 1000)

	id, trades, err := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, 100, 10)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 || len(trades) != 0 {
		t.Fatalf("id=%d trades=%v", id, trades)
	}

	o, ok := env.svc.GetOrder(id)
	if !ok || o.Status != orderbook.StatusResting {
		t.Fatalf("order lookup: ok=%v status=%v", ok, o.Status)
	}
}

func TestPlaceOrderMatchPublishesTrades(t *testing.T) {
	env := newTestEnv(t, 1000)

	sellID, _, err := env.svc.PlaceOrder(1, orderbook.Ask, orderbook.Limit, 100, 5)
	if err != nil {
		t.Fatal(err)
	}
	buyID, trades, err := env.svc.PlaceOrder(2, orderbook.Bid, orderbook.Limit, 100, 5)
	if err != nil {
		t.Fatal(err)
	}

	if len(trades) != 1 {
		t.Fatalf("expected one trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.BuyOrderID != buyID || tr.SellOrderID != sellID || tr.Price != 100 || tr.Qty != 5 {
		t.Fatalf("trade wrong: %+v", tr)
	}
	if tr.Seq == 0 {
		t.Fatal("trade must carry an engine-assigned seq")
	}

	// Cached for queries.
	recent := env.svc.RecentTrades(10)
	if len(recent) != 1 || recent[0].Seq != tr.Seq {
		t.Fatalf("recent trades: %+v", recent)
	}

	// Durably queued for the broadcaster, and the wake signal fired.
	var pending []exitwal.Record
	if err := env.outbox.ScanPending(func(rec exitwal.Record) error {
		pending = append(pending, rec)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Seq != tr.Seq {
		t.Fatalf("outbox pending: %+v", pending)
	}
	select {
	case <-env.svc.Wake():
	default:
		t.Fatal("wake signal not raised after trades")
	}

	ev, err := DecodeTradeEvent(pending[0].Payload)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Seq != tr.Seq || ev.Price != 100 || ev.Qty != 5 || ev.TakerSide != "bid" {
		t.Fatalf("trade event wrong: %+v", ev)
	}
	if eventTime(ev).UnixNano() != tr.Time.UnixNano() {
		t.Fatalf("event time mismatch: %v vs %v", eventTime(ev), tr.Time)
	}
}

func TestMakerSnapshotTracksFills(t *testing.T) {
	env := newTestEnv(t, 1000)

	makerID, _, err := env.svc.PlaceOrder(1, orderbook.Ask, orderbook.Limit, 100, 10)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := env.svc.PlaceOrder(2, orderbook.Bid, orderbook.Limit, 100, 4); err != nil {
		t.Fatal(err)
	}
	o, ok := env.svc.GetOrder(makerID)
	if !ok || o.Status != orderbook.StatusPartiallyFilled || o.Filled != 4 {
		t.Fatalf("maker after partial fill: ok=%v %+v", ok, o)
	}

	if _, _, err := env.svc.PlaceOrder(2, orderbook.Bid, orderbook.Limit, 100, 6); err != nil {
		t.Fatal(err)
	}
	o, ok = env.svc.GetOrder(makerID)
	if !ok || o.Status != orderbook.StatusFilled || o.Filled != 10 {
		t.Fatalf("maker after full fill: ok=%v %+v", ok, o)
	}
}

func TestPlaceOrderRejectsInvalid(t *testing.T) {
	env := newTestEnv(t, 1000)

	if _, _, err := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, 100, 0); err != orderbook.ErrInvalidQty {
		t.Fatalf("want ErrInvalidQty, got %v", err)
	}
	if _, _, err := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, -1, 5); err != orderbook.ErrInvalidPrice {
		t.Fatalf("want ErrInvalidPrice, got %v", err)
	}

	// A rejected order must leave no trace in the WAL.
	count := 0
	if _, err := entrywal.Replay(env.walDir, func(*entrywal.Record) error {
		count++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("wal has %d records after rejections", count)
	}
}

func TestCancelOrderIdempotent(t *testing.T) {
	env := newTestEnv(t, 1000)

	id, _, err := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, 100, 10)
	if err != nil {
		t.Fatal(err)
	}

	if !env.svc.CancelOrder(id, orderbook.Bid) {
		t.Fatal("first cancel must succeed")
	}
	if env.svc.CancelOrder(id, orderbook.Bid) {
		t.Fatal("second cancel must report not found")
	}

	o, ok := env.svc.GetOrder(id)
	if !ok || o.Status != orderbook.StatusCancelled {
		t.Fatalf("cancelled order snapshot: ok=%v status=%v", ok, o.Status)
	}
}

func TestGetOrderFallsBackToBook(t *testing.T) {
	// Cache of one order forces the second place to evict the first.
	env := newTestEnv(t, 1)

	first, _, err := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, 99, 10)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, 98, 10); err != nil {
		t.Fatal(err)
	}

	// Evicted from the cache but still resting: the book scan finds it.
	o, ok := env.svc.GetOrder(first)
	if !ok || o.ID != first || o.Status != orderbook.StatusResting {
		t.Fatalf("book fallback failed: ok=%v o=%+v", ok, o)
	}

	if _, ok := env.svc.GetOrder(999999); ok {
		t.Fatal("unknown id must be a miss")
	}
}

func TestDepthSeqAdvances(t *testing.T) {
	env := newTestEnv(t, 1000)

	if _, _, err := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, 100, 10); err != nil {
		t.Fatal(err)
	}
	v1 := env.svc.Depth(10)
	if len(v1.Bids) != 1 || v1.Bids[0].Price != 100 {
		t.Fatalf("depth wrong: %+v", v1)
	}

	if _, _, err := env.svc.PlaceOrder(1, orderbook.Ask, orderbook.Limit, 101, 10); err != nil {
		t.Fatal(err)
	}
	v2 := env.svc.Depth(10)
	if v2.Seq <= v1.Seq {
		t.Fatalf("depth seq must advance: %d -> %d", v1.Seq, v2.Seq)
	}
}

func TestReplayRebuildsBook(t *testing.T) {
	env := newTestEnv(t, 1000)

	a, _, _ := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, 100, 10)
	env.svc.PlaceOrder(2, orderbook.Ask, orderbook.Limit, 101, 7)
	env.svc.PlaceOrder(3, orderbook.Ask, orderbook.Limit, 100, 4) // fills 4 of a
	env.svc.CancelOrder(a, orderbook.Bid)

	want := env.svc.Depth(10)
	lastSeq := env.seqGen.Current()

	// Fresh process: rebuild everything from the WAL alone.
	book := orderbook.New("TEST")
	pool := memory.NewPool(func() *orderbook.Order { return new(orderbook.Order) })
	seqGen := sequence.New(0)
	if err := ReplayFromWAL(env.walDir, book, pool, seqGen, 0); err != nil {
		t.Fatalf("replay: %v", err)
	}

	got := book.Depth(10)
	if len(got.Bids) != len(want.Bids) || len(got.Asks) != len(want.Asks) {
		t.Fatalf("depth shape mismatch: got %+v want %+v", got, want)
	}
	for i := range want.Asks {
		if got.Asks[i] != want.Asks[i] {
			t.Fatalf("ask level %d mismatch: got %+v want %+v", i, got.Asks[i], want.Asks[i])
		}
	}
	for i := range want.Bids {
		if got.Bids[i] != want.Bids[i] {
			t.Fatalf("bid level %d mismatch: got %+v want %+v", i, got.Bids[i], want.Bids[i])
		}
	}

	// IDs must never be reused after a restart.
	if seqGen.Current() < lastSeq {
		t.Fatalf("sequencer regressed: %d < %d", seqGen.Current(), lastSeq)
	}
}

func TestRecoverySkipsSnapshotCoveredRecords(t *testing.T) {
	env := newTestEnv(t, 1000)

	id, _, err := env.svc.PlaceOrder(1, orderbook.Bid, orderbook.Limit, 100, 10)
	if err != nil {
		t.Fatal(err)
	}

	// Snapshot covers the order; its WAL record stays in the active
	// segment and overlaps the snapshot on recovery.
	snapDir := t.TempDir()
	w := &snapshot.Writer{Dir: snapDir}
	snapSeq := env.seqGen.Current()
	if err := w.Write(snapSeq, env.book); err != nil {
		t.Fatal(err)
	}

	book := orderbook.New("TEST")
	pool := memory.NewPool(func() *orderbook.Order { return new(orderbook.Order) })
	seqGen := sequence.New(0)
	loaded, err := snapshot.Load(snapDir, book, pool)
	if err != nil {
		t.Fatal(err)
	}
	seqGen.Reset(loaded)
	if err := ReplayFromWAL(env.walDir, book, pool, seqGen, loaded); err != nil {
		t.Fatal(err)
	}

	// The order must appear exactly once, not restored-then-replayed.
	v := book.Depth(10)
	if len(v.Bids) != 1 || v.Bids[0].Qty != 10 || v.Bids[0].Orders != 1 {
		t.Fatalf("snapshot-covered record replayed on top of restore: %+v", v)
	}
	if got := book.Find(id); got == nil || got.Qty != 10 {
		t.Fatalf("restored order wrong: %+v", got)
	}
}

func TestReplayResumesPastTradeSeqs(t *testing.T) {
	env := newTestEnv(t, 1000)

	if _, _, err := env.svc.PlaceOrder(1, orderbook.Ask, orderbook.Limit, 100, 5); err != nil {
		t.Fatal(err)
	}
	_, trades, err := env.svc.PlaceOrder(2, orderbook.Bid, orderbook.Limit, 100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected one trade, got %d", len(trades))
	}
	tradeSeq := trades[0].Seq
	live := env.seqGen.Current()

	// The trade seq is durably keyed in the outbox; after a restart no
	// new order or trade may reuse it.
	book := orderbook.New("TEST")
	pool := memory.NewPool(func() *orderbook.Order { return new(orderbook.Order) })
	seqGen := sequence.New(0)
	if err := ReplayFromWAL(env.walDir, book, pool, seqGen, 0); err != nil {
		t.Fatal(err)
	}

	if seqGen.Current() != live {
		t.Fatalf("sequencer resumed at %d, live engine was at %d", seqGen.Current(), live)
	}
	if next := seqGen.Next(); next <= tradeSeq {
		t.Fatalf("seq %d reused; trade seq %d is already published", next, tradeSeq)
	}
}

func TestFilledMakersAreRetired(t *testing.T) {
	env := newTestEnv(t, 1000)

	makerID, _, err := env.svc.PlaceOrder(1, orderbook.Ask, orderbook.Limit, 100, 5)
	if err != nil {
		t.Fatal(err)
	}
	takerID, _, err := env.svc.PlaceOrder(2, orderbook.Bid, orderbook.Limit, 100, 5)
	if err != nil {
		t.Fatal(err)
	}

	// Both terminal orders reach the ring: the passively filled maker
	// and the fully filled taker.
	want := map[uint64]bool{makerID: true, takerID: true}
	for i := 0; i < 2; i++ {
		v := env.ring.Dequeue()
		o, ok := v.(*orderbook.Order)
		if !ok {
			t.Fatalf("ring entry %d: %T", i, v)
		}
		if !want[o.ID] {
			t.Fatalf("unexpected retired order %d", o.ID)
		}
		delete(want, o.ID)
	}
	if len(want) != 0 {
		t.Fatalf("orders never retired: %v", want)
	}
}

func TestConcurrentPlacers(t *testing.T) {
	env := newTestEnv(t, 100000)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	ids := make([][]uint64, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				// Bids far below asks: nothing crosses, every order rests.
				side, price := orderbook.Bid, int64(100+i%10)
				if w%2 == 1 {
					side, price = orderbook.Ask, int64(1000+i%10)
				}
				id, _, err := env.svc.PlaceOrder(uint64(w), side, orderbook.Limit, price, 1)
				if err != nil {
					t.Errorf("worker %d: %v", w, err)
					return
				}
				ids[w] = append(ids[w], id)
			}
		}(w)
	}
	wg.Wait()

	seen := map[uint64]bool{}
	for _, list := range ids {
		for _, id := range list {
			if seen[id] {
				t.Fatalf("duplicate order id %d", id)
			}
			seen[id] = true
		}
	}
	if env.book.Len() != workers*perWorker {
		t.Fatalf("book len = %d, want %d", env.book.Len(), workers*perWorker)
	}
}

func TestWalPayloadCodecs(t *testing.T) {
	b := encodePlace(42, orderbook.Ask, orderbook.IOC, -1, 77)
	user, side, kind, price, qty, err := decodePlace(b)
	if err != nil || user != 42 || side != orderbook.Ask || kind != orderbook.IOC || price != -1 || qty != 77 {
		t.Fatalf("place roundtrip: %d %v %v %d %d %v", user, side, kind, price, qty, err)
	}
	if _, _, _, _, _, err := decodePlace(b[:10]); err != errBadPayload {
		t.Fatalf("short place payload: %v", err)
	}

	cb := encodeCancel(7, orderbook.Bid)
	id, cside, err := decodeCancel(cb)
	if err != nil || id != 7 || cside != orderbook.Bid {
		t.Fatalf("cancel roundtrip: %d %v %v", id, cside, err)
	}
	if _, _, err := decodeCancel(nil); err != errBadPayload {
		t.Fatalf("short cancel payload: %v", err)
	}
}
