package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goAudit "github.com/MrEthical07/goAudit"
	"github.com/MrEthical07/goAudit/redistore"
)

type item struct {
	ID      string `json:"id"`
	Seq     int    `json:"seq"`
	Payload string `json:"payload"`
}

func (it item) EntityID() string { return it.ID }

func (it item) Snapshot() ([]byte, error) { return json.Marshal(it) }

func main() {
	var (
		entities    = flag.Int("entities", 100000, "number of entities to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (read + update)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "lt", "entity key prefix")
	)
	flag.Parse()

	if *entities <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "entities, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store := redistore.NewStore[item, string](client, *prefix)

	audited, err := goAudit.New[item, string](store).
		WithIdentityProvider(goAudit.StaticProvider("load-test")).
		WithEntityName("items").
		WithActionKey("loadtest").
		WithSink(goAudit.NoOpSink{}).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}

	ids := make([]string, *entities)
	fmt.Printf("seeding %d entities...\n", *entities)
	startSeed := time.Now()
	for i := 0; i < *entities; i++ {
		it := buildItem(i)
		ids[i] = it.ID
		if _, err := store.CreateOne(ctx, it); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	readStats := runReadPhase(ctx, audited, ids, *ops, *concurrency)
	updateStats := runUpdatePhase(ctx, audited, ids, *ops, *concurrency)

	audited.Close()

	fmt.Println("---- results ----")
	printStats("read", readStats)
	printStats("update", updateStats)

	snapshot := audited.MetricsSnapshot()
	fmt.Printf("audit: records=%d batches=%d append_ok=%d append_fail=%d dropped=%d\n",
		snapshot.Counters[goAudit.MetricRecordsDispatched],
		snapshot.Counters[goAudit.MetricBatchesDispatched],
		snapshot.Counters[goAudit.MetricAppendSuccess],
		snapshot.Counters[goAudit.MetricAppendFailure],
		audited.AuditDropped(),
	)
}

func runReadPhase(ctx context.Context, audited *goAudit.Audited[item, string], ids []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(ids))
				t0 := time.Now()
				_, err := audited.FindByID(ctx, ids[idx])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runUpdatePhase(ctx context.Context, audited *goAudit.Audited[item, string], ids []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(ids))
				t0 := time.Now()
				_, err := audited.UpdateByID(ctx, ids[idx], func(it item) item {
					it.Seq++
					return it
				})
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func buildItem(i int) item {
	return item{
		ID:      fmt.Sprintf("item-%d", i),
		Seq:     0,
		Payload: fmt.Sprintf("payload-%d", i%257),
	}
}
