package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mirren/emberfall/engine/save"
)

const redisKeyPrefix = "save:"

// RedisStore keeps save documents in Redis under save:<slot> keys.
// Slots never expire; they live until deleted.
type RedisStore struct {
	client *redis.Client
	log    *zap.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the given address and verifies the
// connection with a ping.
func NewRedisStore(ctx context.Context, addr string, log *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Info("redis connection established", zap.String("addr", addr))
	return &RedisStore{client: client, log: log}, nil
}

func redisKey(slot string) string { return redisKeyPrefix + slot }

func (s *RedisStore) Save(ctx context.Context, slot string, doc *save.Document) error {
	data, err := save.Encode(doc)
	if err != nil {
		return fmt.Errorf("encoding save %q: %w", slot, err)
	}
	if err := s.client.Set(ctx, redisKey(slot), data, 0).Err(); err != nil {
		return fmt.Errorf("writing save %q: %w", slot, err)
	}
	s.log.Debug("save written", zap.String("slot", slot), zap.Int("bytes", len(data)))
	return nil
}

func (s *RedisStore) Load(ctx context.Context, slot string) (*save.Document, error) {
	data, err := s.client.Get(ctx, redisKey(slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading save %q: %w", slot, err)
	}
	doc, err := save.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding save %q: %w", slot, err)
	}
	return doc, nil
}

// List returns slot names sorted, matching the file store's ordering.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.client.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	slots := make([]string, 0, len(keys))
	for _, k := range keys {
		slots = append(slots, strings.TrimPrefix(k, redisKeyPrefix))
	}
	sort.Strings(slots)
	return slots, nil
}

func (s *RedisStore) Delete(ctx context.Context, slot string) error {
	n, err := s.client.Del(ctx, redisKey(slot)).Result()
	if err != nil {
		return fmt.Errorf("deleting save %q: %w", slot, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
