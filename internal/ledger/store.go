package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/amirkokoaa-byte/kabten/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// Store persists the daily ledger. Save is best-effort; callers keep the
// in-memory ledger authoritative when a write fails. Load returns ok=false
// when nothing usable is persisted.
type Store interface {
	Load(ctx context.Context) (Ledger, bool, error)
	Save(ctx context.Context, l Ledger) error
}

// PostgresStore keeps the ledger in a single row; last write wins.
type PostgresStore struct {
	db db.Querier
}

func NewPostgresStore(q db.Querier) *PostgresStore {
	return &PostgresStore{db: q}
}

func (s *PostgresStore) Load(ctx context.Context) (Ledger, bool, error) {
	var l Ledger
	row := s.db.QueryRow(ctx, `
		SELECT date_key, total_trip_distance_km, trip_count, total_work_distance_km
		FROM daily_ledger WHERE id=1
	`)
	if err := row.Scan(&l.DateKey, &l.TotalTripDistanceKm, &l.TripCount, &l.TotalWorkDistanceKm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ledger{}, false, nil
		}
		return Ledger{}, false, err
	}
	return l, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, l Ledger) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO daily_ledger (id, date_key, total_trip_distance_km, trip_count, total_work_distance_km)
		VALUES (1,$1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET
			date_key=EXCLUDED.date_key,
			total_trip_distance_km=EXCLUDED.total_trip_distance_km,
			trip_count=EXCLUDED.trip_count,
			total_work_distance_km=EXCLUDED.total_work_distance_km
	`, l.DateKey, l.TotalTripDistanceKm, l.TripCount, l.TotalWorkDistanceKm)
	return err
}

const redisKey = "kabten:daily_ledger"

// RedisStore keeps the ledger as a JSON blob under one key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (Ledger, bool, error) {
	raw, err := s.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Ledger{}, false, nil
		}
		return Ledger{}, false, err
	}

	var l Ledger
	if err := json.Unmarshal(raw, &l); err != nil {
		// malformed data yields a fresh ledger, not a failure
		return Ledger{}, false, nil
	}
	return l, true, nil
}

func (s *RedisStore) Save(ctx context.Context, l Ledger) error {
	raw, err := json.Marshal(l)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey, raw, 0).Err()
}

// MemoryStore backs the engine when no Postgres or Redis is configured.
// State does not survive a restart.
type MemoryStore struct {
	mu     sync.Mutex
	ledger Ledger
	loaded bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (Ledger, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger, s.loaded, nil
}

func (s *MemoryStore) Save(_ context.Context, l Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = l
	s.loaded = true
	return nil
}
