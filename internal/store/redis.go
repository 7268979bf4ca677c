package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// defaultSnapshotKey is where the snapshot lives in Redis.
const defaultSnapshotKey = "farmgame:snapshot"

// RedisStore keeps the snapshot in a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string

	Now func() time.Time
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Key overrides the snapshot key; empty uses the default.
	Key string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	key := opts.Key
	if key == "" {
		key = defaultSnapshotKey
	}
	return &RedisStore{client: client, key: key, Now: time.Now}, nil
}

// Save replaces the stored snapshot.
func (s *RedisStore) Save(ctx context.Context, areas []model.AnalyzedArea) error {
	raw, err := json.Marshal(snapshotFile{SavedAt: s.Now().UTC(), Areas: areas})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or ErrNoSnapshot when the key is unset.
func (s *RedisStore) Load(ctx context.Context) ([]model.AnalyzedArea, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	var f snapshotFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode snapshot key %q: %w", s.key, err)
	}
	return f.Areas, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }
