package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisHistoryStoreForTest(t *testing.T) (*miniredis.Miniredis, *RedisBrowsingHistoryStore) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, NewRedisBrowsingHistoryStore(client, "history")
}

func TestRedisHistoryPushOrdersAndDeduplicates(t *testing.T) {
	_, store := newRedisHistoryStoreForTest(t)
	ctx := context.Background()

	for _, id := range []uint{1, 2, 3, 2} {
		if err := store.Push(ctx, 7, id, 5); err != nil {
			t.Fatalf("push %d: %v", id, err)
		}
	}

	ids, err := store.Recent(ctx, 7, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	want := []uint{2, 3, 1}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestRedisHistoryPushEnforcesCap(t *testing.T) {
	_, store := newRedisHistoryStoreForTest(t)
	ctx := context.Background()

	for id := uint(1); id <= 10; id++ {
		if err := store.Push(ctx, 7, id, 5); err != nil {
			t.Fatalf("push %d: %v", id, err)
		}
	}

	ids, err := store.Recent(ctx, 7, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(ids) != 5 {
		t.Fatalf("expected capped length 5, got %v", ids)
	}
	for i, want := range []uint{10, 9, 8, 7, 6} {
		if ids[i] != want {
			t.Fatalf("position %d: expected %d, got %v", i, want, ids)
		}
	}
}

func TestRedisHistoryRecentLimits(t *testing.T) {
	_, store := newRedisHistoryStoreForTest(t)
	ctx := context.Background()
	for id := uint(1); id <= 5; id++ {
		if err := store.Push(ctx, 7, id, 5); err != nil {
			t.Fatalf("push: %v", err)
		}
	}

	ids, err := store.Recent(ctx, 7, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(ids) != 3 || ids[0] != 5 {
		t.Fatalf("expected [5 4 3], got %v", ids)
	}

	none, err := store.Recent(ctx, 7, 0)
	if err != nil {
		t.Fatalf("recent zero: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty for non-positive limit, got %v", none)
	}

	empty, err := store.Recent(ctx, 999, 5)
	if err != nil {
		t.Fatalf("recent unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list for unknown user, got %v", empty)
	}
}

func TestRedisHistoryConcurrentPushes(t *testing.T) {
	_, store := newRedisHistoryStoreForTest(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []uint{11, 22} {
		wg.Add(1)
		go func(skuID uint) {
			defer wg.Done()
			if err := store.Push(ctx, 7, skuID, 5); err != nil {
				t.Errorf("push %d: %v", skuID, err)
			}
		}(id)
	}
	wg.Wait()

	ids, err := store.Recent(ctx, 7, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected both entries regardless of interleaving, got %v", ids)
	}
	seen := map[uint]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[11] || !seen[22] {
		t.Fatalf("expected ids 11 and 22, got %v", ids)
	}
}

func TestRedisHistoryCorruptEntryIsIntegrityError(t *testing.T) {
	m, store := newRedisHistoryStoreForTest(t)
	ctx := context.Background()

	if _, err := m.Lpush("history:7", "not-a-number"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	_, err := store.Recent(ctx, 7, 5)
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
	if IsTransient(err) {
		t.Fatal("integrity violations must not be marked retryable")
	}
}

func TestRedisHistoryBackendFailureIsTransient(t *testing.T) {
	badClient := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  20 * time.Millisecond,
		ReadTimeout:  20 * time.Millisecond,
		WriteTimeout: 20 * time.Millisecond,
	})
	t.Cleanup(func() { _ = badClient.Close() })
	store := NewRedisBrowsingHistoryStore(badClient, "history")

	if err := store.Push(context.Background(), 7, 1, 5); !IsTransient(err) {
		t.Fatalf("expected TransientStoreError from push, got %v", err)
	}
	if _, err := store.Recent(context.Background(), 7, 5); !IsTransient(err) {
		t.Fatalf("expected TransientStoreError from recent, got %v", err)
	}
}
