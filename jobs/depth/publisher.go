// Package depth periodically publishes aggregated book snapshots for
// display and reporting consumers. Depth is fire-and-forget market
// data: a dropped tick is superseded by the next one, so unlike trades
// it goes straight to Kafka with no outbox.
package depth

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"vela/domain/orderbook"
	"vela/infra/kafka"
)

// Source is anything that can produce a depth view; in production it
// is the order service.
type Source interface {
	Depth(n int) orderbook.DepthView
}

type Publisher struct {
	source   Source
	producer *kafka.Producer
	levels   int
	interval time.Duration
}

func New(source Source, producer *kafka.Producer, levels int, interval time.Duration) *Publisher {
	return &Publisher{
		source:   source,
		producer: producer,
		levels:   levels,
		interval: interval,
	}
}

func (p *Publisher) Run(ctx context.Context) {
	log.Println("[depth] started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			log.Println("[depth] stopped")
			return
		case <-ticker.C:
		}

		view := p.source.Depth(p.levels)
		if view.Seq == lastSeq {
			// Book unchanged since the last tick.
			continue
		}

		payload, err := json.Marshal(view)
		if err != nil {
			log.Printf("[depth] encode failed: %v", err)
			continue
		}
		if err := p.producer.Send(ctx, []byte(view.Symbol), payload); err != nil {
			log.Printf("[depth] publish failed: %v", err)
			continue
		}
		lastSeq = view.Seq
	}
}
