//go:build integration
// +build integration

package test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goAudit "github.com/MrEthical07/goAudit"
	"github.com/MrEthical07/goAudit/redistore"
)

// account is the entity the integration suite audits.
type account struct {
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	Balance int64  `json:"balance"`
}

func (a account) EntityID() string          { return a.ID }
func (a account) Snapshot() ([]byte, error) { return json.Marshal(a) }

func makeAccount(id, owner string, balance int64) account {
	return account{ID: id, Owner: owner, Balance: balance}
}

func newIntegrationStore(t *testing.T) (*redistore.Store[account, string], *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := redistore.NewStore[account, string](rdb, "accounts")

	return store, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

// awaitRecord pops the next audit record delivered to sink, failing the
// test after two seconds.
func awaitRecord(t *testing.T, sink *goAudit.ChannelSink) goAudit.Record {
	t.Helper()

	select {
	case record := <-sink.Records():
		return record
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit record")
		return goAudit.Record{}
	}
}

// expectNoRecord asserts that no audit record arrives within the grace
// window.
func expectNoRecord(t *testing.T, sink *goAudit.ChannelSink) {
	t.Helper()

	select {
	case record := <-sink.Records():
		t.Fatalf("unexpected audit record for entity %s", record.EntityID)
	case <-time.After(150 * time.Millisecond):
	}
}
