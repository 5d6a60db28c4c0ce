package service

import (
	"fmt"
	"log"

	"vela/domain/orderbook"
	"vela/infra/memory"
	"vela/infra/sequence"
	entrywal "vela/infra/wal/entry"
)

// ReplayFromWAL rebuilds in-memory state from the entry WAL. It must
// run before the engine accepts traffic. Records at or below afterSeq
// are already covered by the restored snapshot and are skipped:
// truncation keeps the active segment, so the log's head can overlap
// the snapshot.
//
// Matching is deterministic, so replaying the intents reproduces the
// book exactly. Trades re-derived here are discarded because the
// outbox already holds them durably, but each one still consumes a
// sequence number, exactly as it did live: the sequencer must resume
// past every seq that may already be published.
func ReplayFromWAL(
	walDir string,
	book *orderbook.OrderBook,
	pool *memory.Pool[orderbook.Order],
	seqGen *sequence.Sequencer,
	afterSeq uint64,
) error {
	replayed := 0
	_, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		if rec.Seq <= afterSeq {
			return nil
		}
		replayed++
		seqGen.Reset(rec.Seq)

		switch rec.Type {
		case entrywal.RecordPlace:
			user, side, kind, price, qty, err := decodePlace(rec.Data)
			if err != nil {
				return err
			}

			o := pool.Get()
			*o = orderbook.Order{
				ID:     rec.Seq,
				User:   user,
				Symbol: book.Symbol,
				Side:   side,
				Kind:   kind,
				Price:  price,
				Qty:    qty,
				Status: orderbook.StatusNew,
			}

			trades, err := book.Submit(o)
			if err != nil {
				return fmt.Errorf("replay place seq=%d: %w", rec.Seq, err)
			}
			for range trades {
				seqGen.Next()
			}
			for _, m := range book.TakeRetired() {
				pool.Put(m)
			}
			if o.Terminal() {
				pool.Put(o)
			}
			return nil

		case entrywal.RecordCancel:
			id, side, err := decodeCancel(rec.Data)
			if err != nil {
				return err
			}
			if o, found := book.Cancel(id, side); found {
				pool.Put(o)
			}
			return nil

		default:
			return fmt.Errorf("replay: unknown record type %d", rec.Type)
		}
	})
	if err != nil {
		return err
	}

	log.Printf("[replay] wal replay completed (%d records, next seq = %d)",
		replayed, seqGen.Current()+1)
	return nil
}
