package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"vela/api/grpcserver"
	"vela/api/pb"
	"vela/cache"
	"vela/domain/orderbook"
	"vela/infra/kafka"
	"vela/infra/memory"
	"vela/infra/sequence"
	entrywal "vela/infra/wal/entry"
	exitwal "vela/infra/wal/exit"
	"vela/jobs/broadcaster"
	"vela/jobs/depth"
	"vela/service"
	"vela/snapshot"
)

func main() {
	var (
		symbol        = flag.String("symbol", "BTC-USD", "instrument symbol served by this engine")
		listenAddr    = flag.String("listen", ":50051", "gRPC listen address")
		dataDir       = flag.String("data", "./data", "base directory for WAL, outbox and snapshots")
		brokers       = flag.String("brokers", "localhost:9092", "comma separated Kafka brokers")
		tradeTopic    = flag.String("trade-topic", "trades", "Kafka topic for executed trades")
		depthTopic    = flag.String("depth-topic", "depth", "Kafka topic for book depth")
		depthLevels   = flag.Int("depth-levels", 10, "aggregated levels per side in depth publishes")
		depthEvery    = flag.Duration("depth-interval", 250*time.Millisecond, "depth publish interval")
		snapshotEvery = flag.Duration("snapshot-interval", 30*time.Second, "book snapshot interval")
		retryEvery    = flag.Duration("retry-interval", 2*time.Second, "broadcaster retry interval")
		cacheOrders   = flag.Int("cache-orders", 100_000, "order cache capacity")
		cacheTrades   = flag.Int("cache-trades", 100_000, "trade cache capacity")
		segmentSize   = flag.Int64("wal-segment", 64<<20, "entry WAL segment size in bytes")
	)
	flag.Parse()

	walDir := *dataDir + "/wal"
	outboxDir := *dataDir + "/outbox"
	snapDir := *dataDir + "/snapshot"
	for _, dir := range []string{walDir, outboxDir, snapDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("[main] mkdir %s: %v", dir, err)
		}
	}

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:         walDir,
		SegmentSize: *segmentSize,
	})
	if err != nil {
		log.Fatalf("[main] open entry wal: %v", err)
	}

	outbox, err := exitwal.Open(outboxDir)
	if err != nil {
		log.Fatalf("[main] open outbox: %v", err)
	}

	seqGen := sequence.New(0)
	pool := memory.NewPool(func() *orderbook.Order { return new(orderbook.Order) })
	ring := memory.NewRetireRing(1 << 16)
	reader := snapshot.NewReader()
	book := orderbook.New(*symbol)

	// Recovery: rebuild resting state from the last snapshot, then roll
	// the entry WAL forward over it.
	snapSeq, err := snapshot.Load(snapDir, book, pool)
	if err != nil {
		log.Fatalf("[main] snapshot load: %v", err)
	}
	if snapSeq > 0 {
		seqGen.Reset(snapSeq)
		log.Printf("[main] snapshot restored seq=%d", snapSeq)
	}
	if err := service.ReplayFromWAL(walDir, book, pool, seqGen, snapSeq); err != nil {
		log.Fatalf("[main] wal replay: %v", err)
	}

	c := cache.New(*cacheOrders, *cacheTrades)
	svc := service.NewOrderService(book, seqGen, pool, ring, reader, c, entryWAL, outbox)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokerList := strings.Split(*brokers, ",")

	bcast, err := broadcaster.New(outbox, brokerList, *tradeTopic, svc.Wake(), *retryEvery)
	if err != nil {
		log.Fatalf("[main] broadcaster: %v", err)
	}
	go bcast.Run(ctx)

	depthProducer := kafka.NewProducer(brokerList, *depthTopic)
	depthPub := depth.New(svc, depthProducer, *depthLevels, *depthEvery)
	go depthPub.Run(ctx)

	svc.StartSnapshotJob(ctx, snapDir, *snapshotEvery)

	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				svc.AdvanceEpoch()
			}
		}
	}()

	lis, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("[main] listen %s: %v", *listenAddr, err)
	}
	grpcSrv := grpc.NewServer()
	pb.RegisterOrderServiceServer(grpcSrv, grpcserver.New(svc))

	go func() {
		log.Printf("[main] %s engine serving on %s", *symbol, *listenAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatalf("[main] grpc serve: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("[main] shutting down")

	grpcSrv.GracefulStop()
	cancel()

	if err := bcast.Close(); err != nil {
		log.Printf("[main] broadcaster close: %v", err)
	}
	if err := depthProducer.Close(); err != nil {
		log.Printf("[main] depth producer close: %v", err)
	}
	if err := svc.Close(); err != nil {
		log.Printf("[main] service close: %v", err)
	}
	log.Println("[main] bye")
}
