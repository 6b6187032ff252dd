package ledger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := NewRedisStore(client)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx); ok || err != nil {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}

	saved := Ledger{DateKey: "2024-01-01", TotalTripDistanceKm: 7.25, TripCount: 2, TotalWorkDistanceKm: 31.5}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded != saved {
		t.Fatalf("unexpected ledger: %+v", loaded)
	}
}

func TestRedisStoreMalformedYieldsFresh(t *testing.T) {
	server := miniredis.RunT(t)
	if err := server.Set(redisKey, "not-json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	store := NewRedisStore(client)

	_, ok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("malformed data must not fail: %v", err)
	}
	if ok {
		t.Fatalf("malformed data must not be honored")
	}
}

func TestRedisStoreConnectionError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()

	store := NewRedisStore(client)
	if _, _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected connection error")
	}
}
