//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goAudit "github.com/MrEthical07/goAudit"
	"github.com/MrEthical07/goAudit/redistore"
	"github.com/MrEthical07/goAudit/streamsink"
)

// cmdCounter is a go-redis Hook that counts the number of Redis round-trips
// (individual commands and pipeline calls).
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		// Each pipeline call is one network round-trip regardless of command count.
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset() {
	h.commands.Store(0)
	h.pipelines.Store(0)
}

func (h *cmdCounter) Commands() int64  { return h.commands.Load() }
func (h *cmdCounter) Pipelines() int64 { return h.pipelines.Load() }

// newCountedStore creates a redistore.Store backed by miniredis with a
// cmdCounter hook installed. Reset the counter before each measured operation.
func newCountedStore(t *testing.T) (*redistore.Store[account, string], *redis.Client, *cmdCounter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &cmdCounter{}
	rdb.AddHook(counter)

	// Warm the connection: go-redis may emit extra commands on first use
	// (handshake, AUTH, SELECT, CLIENT SETNAME, etc.). Issuing a PING
	// up front keeps that noise out of the measured budgets.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warmup ping: %v", err)
	}

	// Reset after warmup so budget counts start clean.
	counter.Reset()

	store := redistore.NewStore[account, string](rdb, "accounts")
	return store, rdb, counter, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

// TestCreateOneRedisBudget verifies that a single-entity create uses at most
// 2 Redis round-trips (SETNX + SADD).
func TestCreateOneRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	counter.Reset()

	if _, err := store.CreateOne(ctx, makeAccount("acc-budget", "ada", 10)); err != nil {
		t.Fatalf("create: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("CreateOne used %d Redis commands; budget is ≤ 2 (SETNX + SADD)", cmds)
	}
	t.Logf("CreateOne: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestFindByIDRedisBudget verifies that a point read is a single GET.
func TestFindByIDRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.CreateOne(ctx, makeAccount("acc-get", "ada", 10)); err != nil {
		t.Fatalf("create: %v", err)
	}

	counter.Reset()

	if _, err := store.FindByID(ctx, "acc-get"); err != nil {
		t.Fatalf("find: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("FindByID used %d Redis commands; budget is ≤ 1 (GET)", cmds)
	}
	t.Logf("FindByID: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestFindManyRedisBudget verifies that a full collection read with a clean
// index uses SMEMBERS + one MGET, never one GET per entity.
func TestFindManyRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	seed := []account{
		makeAccount("acc-m1", "ada", 1),
		makeAccount("acc-m2", "bob", 2),
		makeAccount("acc-m3", "carol", 3),
	}
	if _, err := store.CreateMany(ctx, seed); err != nil {
		t.Fatalf("create many: %v", err)
	}

	counter.Reset()

	entities, err := store.FindMany(ctx, nil)
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(entities) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(entities))
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("FindMany used %d Redis commands; budget is ≤ 2 (SMEMBERS + MGET)", cmds)
	}
	t.Logf("FindMany: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestUpdateByIDRedisBudget verifies that a patch is a read-modify-write of
// exactly 2 commands (GET + SET).
func TestUpdateByIDRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.CreateOne(ctx, makeAccount("acc-upd", "ada", 10)); err != nil {
		t.Fatalf("create: %v", err)
	}

	counter.Reset()

	_, err := store.UpdateByID(ctx, "acc-upd", func(a account) account {
		a.Balance += 5
		return a
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("UpdateByID used %d Redis commands; budget is ≤ 2 (GET + SET)", cmds)
	}
	t.Logf("UpdateByID: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestDeleteByIDRedisBudget verifies that a delete is a single MULTI/EXEC
// carrying DEL + SREM.
func TestDeleteByIDRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.CreateOne(ctx, makeAccount("acc-del", "ada", 10)); err != nil {
		t.Fatalf("create: %v", err)
	}

	counter.Reset()

	if err := store.DeleteByID(ctx, "acc-del"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// TxPipelined wraps DEL+SREM in MULTI/EXEC; the hook may count the
	// wrapping commands too, so the budget carries headroom.
	cmds := counter.Commands()
	pipelines := counter.Pipelines()
	if cmds > 8 {
		t.Errorf("DeleteByID used %d Redis commands; budget is ≤ 8 (TxPipelined overhead)", cmds)
	}
	if pipelines > 1 {
		t.Errorf("DeleteByID used %d pipeline round-trips; budget is 1", pipelines)
	}
	t.Logf("DeleteByID: %d commands, %d pipelines", cmds, pipelines)
}

// TestStreamSinkAppendBatchBudget verifies that a batched stream append is a
// single pipeline round-trip, never one XADD round-trip per record.
func TestStreamSinkAppendBatchBudget(t *testing.T) {
	_, rdb, counter, cleanup := newCountedStore(t)
	defer cleanup()

	sink := streamsink.New(rdb, "budget:trail")
	ctx := context.Background()

	records := make([]goAudit.Record, 0, 8)
	for i := 0; i < 8; i++ {
		records = append(records, goAudit.Record{
			ActedAt:   time.Now().UTC(),
			Actor:     "ada",
			Action:    goAudit.ActionInsertMany,
			EntityID:  "acc-" + string(rune('a'+i)),
			ActedOn:   "accounts",
			ActionKey: "accounts-budget",
		})
	}

	counter.Reset()

	if err := sink.AppendBatch(ctx, records); err != nil {
		t.Fatalf("append batch: %v", err)
	}

	cmds := counter.Commands()
	pipelines := counter.Pipelines()
	if pipelines > 1 {
		t.Errorf("AppendBatch used %d pipeline round-trips; budget is 1", pipelines)
	}
	if cmds > 12 {
		t.Errorf("AppendBatch used %d Redis commands; budget is ≤ 12 for 8 records", cmds)
	}
	t.Logf("AppendBatch(8): %d commands, %d pipelines", cmds, pipelines)
}
