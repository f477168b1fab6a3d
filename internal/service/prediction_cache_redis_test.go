package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"catmatch/internal/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisPredictionCache(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewRedisPredictionCache(client, time.Minute)
	ctx := context.Background()
	key := PredictionCacheKey([]byte("cat photo"))

	if _, ok, err := cache.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	pred := domain.Prediction{
		Label:         "Sphynx",
		Probabilities: map[string]float64{"Sphynx": 0.8, "Ragdoll": 0.2},
		Labels:        []string{"Ragdoll", "Sphynx"},
	}
	if err := cache.Set(ctx, key, pred); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if !mr.Exists("classify:pred:" + key) {
		t.Fatalf("expected prefixed key in redis")
	}
	if ttl := mr.TTL("classify:pred:" + key); ttl != time.Minute {
		t.Fatalf("expected ttl of 1m, got %v", ttl)
	}

	got, ok, err := cache.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Label != "Sphynx" || got.Probabilities["Ragdoll"] != 0.2 || len(got.Labels) != 2 {
		t.Fatalf("unexpected cached prediction: %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, key); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestRedisPredictionCache_NilClient(t *testing.T) {
	if NewRedisPredictionCache(nil, time.Minute) != nil {
		t.Fatalf("expected nil cache without client")
	}
}

func TestPredictionCacheKey(t *testing.T) {
	a := PredictionCacheKey([]byte("a"))
	if len(a) != 64 {
		t.Fatalf("expected 32-byte hex key, got %d chars", len(a))
	}
	if a == PredictionCacheKey([]byte("b")) || a != PredictionCacheKey([]byte("a")) {
		t.Fatalf("expected content-addressed keys")
	}
}
