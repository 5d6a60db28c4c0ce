package service

import (
	"context"
	"log"
	"time"

	"vela/snapshot"
)

// StartSnapshotJob periodically persists the resting book, then
// truncates the entry WAL below the snapshot and garbage-collects
// acked outbox records. Snapshot failures are logged and retried next
// tick; truncation never runs without a successful write.
func (s *OrderService) StartSnapshotJob(
	ctx context.Context,
	dir string,
	interval time.Duration,
) {
	w := &snapshot.Writer{Dir: dir}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}

			seq := s.seqGen.Current()

			s.mu.Lock()
			err := w.Write(seq, s.book)
			s.mu.Unlock()
			if err != nil {
				log.Printf("[snapshot] write failed: %v", err)
				continue
			}

			if err := s.entryWAL.TruncateBefore(seq); err != nil {
				log.Printf("[snapshot] wal truncate failed: %v", err)
			}
			if err := s.outbox.TruncateAckedUpTo(seq); err != nil {
				log.Printf("[snapshot] outbox gc failed: %v", err)
			}
		}
	}()
}
