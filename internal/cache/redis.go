package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "inkwell:fsum:"

// RedisStore is a SummaryStore backed by Redis. Entries are stored as
// JSON without expiry. All Redis errors fail open: Get degrades to a
// miss and Put to a no-op, since a cache error must be indistinguishable
// from a cache miss.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed store. If rdb is nil, every Get
// misses and every Put is dropped.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, path string) (*FileSummary, error) {
	if s.rdb == nil {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, redisKeyPrefix+path).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike: treat as a miss.
		return nil, nil
	}
	var entry FileSummary
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, nil
	}
	return &entry, nil
}

func (s *RedisStore) Put(ctx context.Context, path, content string) error {
	if s.rdb == nil {
		return nil
	}
	entry := FileSummary{Content: content, CachedAt: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil
	}
	s.rdb.Set(ctx, redisKeyPrefix+path, data, 0)
	return nil
}
