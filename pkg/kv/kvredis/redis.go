package kvredis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/siivi-app/siivi-server/pkg/errx"
	"github.com/siivi-app/siivi-server/pkg/kv"
	"github.com/siivi-app/siivi-server/pkg/logx"
)

// RedisStore implementación en Redis del kv.Store
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore crea un nuevo store respaldado por Redis
func NewRedisStore(client *redis.Client, prefix string) kv.Store {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *RedisStore) Get(ctx context.Context, key string, dest any) error {
	raw, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return kv.ErrKeyNotFound().WithDetail("key", key)
		}
		return errx.Wrap(err, "failed to get record from Redis", errx.TypeInternal).
			WithDetail("key", key)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Corrupted record: drop it and report absent so callers reinitialize.
		logx.Warnf("Dropping corrupted record %s: %v", key, err)
		s.client.Del(ctx, s.key(key))
		return kv.ErrKeyNotFound().WithDetail("key", key).WithCause(err)
	}
	return nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errx.Wrap(err, "failed to marshal record", errx.TypeInternal).WithDetail("key", key)
	}

	if err := s.client.Set(ctx, s.key(key), raw, 0).Err(); err != nil {
		return errx.Wrap(err, "failed to store record in Redis", errx.TypeInternal).
			WithDetail("key", key)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errx.Wrap(err, "failed to delete record from Redis", errx.TypeInternal).
			WithDetail("key", key)
	}
	return nil
}
