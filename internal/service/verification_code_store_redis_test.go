package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisCodeStoreForTest(t *testing.T) (*miniredis.Miniredis, *RedisVerificationCodeStore) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, NewRedisVerificationCodeStore(client, "sms")
}

func TestRedisCodeStoreGetPresentAndAbsent(t *testing.T) {
	m, store := newRedisCodeStoreForTest(t)
	ctx := context.Background()

	if err := m.Set("sms:13812345678", "123456"); err != nil {
		t.Fatalf("seed code: %v", err)
	}

	code, ok, err := store.Get(ctx, "13812345678")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || code != "123456" {
		t.Fatalf("expected live code 123456, got ok=%v code=%q", ok, code)
	}

	_, ok, err = store.Get(ctx, "13999999999")
	if err != nil {
		t.Fatalf("get absent: %v", err)
	}
	if ok {
		t.Fatal("expected absent code for unknown mobile")
	}
}

func TestRedisCodeStoreExpiryReadsAsAbsent(t *testing.T) {
	m, store := newRedisCodeStoreForTest(t)
	ctx := context.Background()

	if err := m.Set("sms:13812345678", "123456"); err != nil {
		t.Fatalf("seed code: %v", err)
	}
	m.SetTTL("sms:13812345678", 5*time.Minute)
	m.FastForward(6 * time.Minute)

	_, ok, err := store.Get(ctx, "13812345678")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected expired code to read as absent")
	}
}

func TestRedisCodeStoreDelete(t *testing.T) {
	m, store := newRedisCodeStoreForTest(t)
	ctx := context.Background()

	if err := m.Set("sms:13812345678", "123456"); err != nil {
		t.Fatalf("seed code: %v", err)
	}
	if err := store.Delete(ctx, "13812345678"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "13812345678"); ok {
		t.Fatal("expected code gone after delete")
	}
}

func TestRedisCodeStoreBackendFailureIsTransient(t *testing.T) {
	badClient := redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  20 * time.Millisecond,
		ReadTimeout:  20 * time.Millisecond,
		WriteTimeout: 20 * time.Millisecond,
	})
	t.Cleanup(func() { _ = badClient.Close() })
	store := NewRedisVerificationCodeStore(badClient, "sms")

	_, _, err := store.Get(context.Background(), "13812345678")
	if !IsTransient(err) {
		t.Fatalf("expected TransientStoreError, got %v", err)
	}
	if err := store.Delete(context.Background(), "13812345678"); !IsTransient(err) {
		t.Fatalf("expected TransientStoreError, got %v", err)
	}
}
