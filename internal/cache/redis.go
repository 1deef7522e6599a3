package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "scout:cache:"

// RedisStore keeps the cache in Redis, one hash per IP. Useful when several
// scout instances share knowledge about the same camera fleet; last write
// wins, matching the file store's semantics.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (map[string]Entry, error) {
	entries := map[string]Entry{}

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("cache hgetall %s: %w", key, err)
		}
		port, _ := strconv.Atoi(fields["port"])
		entries[key[len(redisKeyPrefix):]] = Entry{
			Vendor:   fields["vendor"],
			Path:     fields["path"],
			User:     fields["user"],
			Password: fields["pwd"],
			Port:     port,
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cache scan: %w", err)
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, entries map[string]Entry) error {
	pipe := s.client.Pipeline()
	for ip, e := range entries {
		pipe.HSet(ctx, redisKeyPrefix+ip,
			"vendor", e.Vendor,
			"path", e.Path,
			"user", e.User,
			"pwd", e.Password,
			"port", strconv.Itoa(e.Port),
		)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache pipeline: %w", err)
	}
	return nil
}
