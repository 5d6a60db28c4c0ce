// Package broadcaster publishes executed trades from the durable
// outbox to Kafka. Delivery is at-least-once: a record is marked SENT
// before the publish attempt and ACKED only after the broker confirms,
// so a crash between the two re-publishes on the next pass.
package broadcaster

import (
	"context"
	"encoding/binary"
	"log"
	"time"

	"github.com/IBM/sarama"

	exitwal "vela/infra/wal/exit"
)

type Broadcaster struct {
	outbox   *exitwal.Outbox
	producer sarama.SyncProducer
	topic    string

	// wake fires when the engine appends new trades; the fallback
	// ticker re-drives retries for failed publishes.
	wake     <-chan struct{}
	interval time.Duration
}

func New(
	outbox *exitwal.Outbox,
	brokers []string,
	topic string,
	wake <-chan struct{},
	interval time.Duration,
) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		outbox:   outbox,
		producer: producer,
		topic:    topic,
		wake:     wake,
		interval: interval,
	}, nil
}

// Run drains the outbox until ctx is cancelled. The loop suspends on
// the wake signal when there is nothing to publish; it never spins.
func (b *Broadcaster) Run(ctx context.Context) {
	log.Println("[broadcaster] started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[broadcaster] stopped")
			return
		case <-b.wake:
		case <-ticker.C:
		}
		b.drainOnce()
	}
}

func (b *Broadcaster) drainOnce() {
	err := b.outbox.ScanPending(func(rec exitwal.Record) error {
		// SENT before publish: a crash after the send but before the
		// ack replays the message rather than losing it.
		if err := b.outbox.MarkSent(rec.Seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.ByteEncoder(seqKey(rec.Seq)),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			// Leave the record SENT; the ticker retries it.
			log.Printf("[broadcaster] publish failed seq=%d: %v", rec.Seq, err)
			return nil
		}

		return b.outbox.MarkAcked(rec.Seq)
	})
	if err != nil {
		log.Printf("[broadcaster] outbox scan failed: %v", err)
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
