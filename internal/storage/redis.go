package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix    = "listing-watch:seen:"
	redisBackupPrefix = "listing-watch:seen-backup:"
)

// RedisStore keeps each topic's seen-set as a JSON array in a string key.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedis connects using a redis:// URL and pings the server.
func NewRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisFromClient(rdb), nil
}

func NewRedisFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Load(ctx context.Context, topic string) ([]string, error) {
	key := redisKeyPrefix + Key(topic)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		slog.Info("No state for topic, creating empty key", "topic", topic, "key", key)
		// SetNX so a concurrent writer is never clobbered.
		if err := s.rdb.SetNX(ctx, key, "[]", 0).Err(); err != nil {
			return nil, fmt.Errorf("failed to create state for topic %s: %w", topic, err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state for topic %s: %w", topic, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		backup := redisBackupPrefix + Key(topic) + ":" + s.now().UTC().Format("20060102T150405")
		if werr := s.rdb.Set(ctx, backup, data, 0).Err(); werr != nil {
			return nil, fmt.Errorf("failed to back up corrupted state for topic %s: %w", topic, werr)
		}
		slog.Warn("Recovered from corrupted state, starting with an empty seen-set",
			"topic", topic, "key", key, "backup", backup, "error", errors.Join(ErrStateCorrupted, err))
		return nil, nil
	}
	return ids, nil
}

func (s *RedisStore) Save(ctx context.Context, topic string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+Key(topic), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state for topic %s: %w", topic, err)
	}
	return nil
}
