package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/delivery/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/errors"
	"github.com/samber/oops"
)

// RedisStorage implements Repository on Redis so several relay processes, or a
// restarted one, can share correlations. Values are JSON encoded records.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.In("delivery").With("redis_addr", addr).Wrapf(err, "failed to connect to redis")
	}
	return client, nil
}

// NewRedisStorage creates a Redis backed repository storing keys under prefix.
func NewRedisStorage(client *redis.Client, prefix string, ttl time.Duration) Repository {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStorage{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStorage) key(sourceID string) string {
	return s.prefix + sourceID
}

func (s *RedisStorage) Get(ctx context.Context, sourceID string) (*domain.DeliveryRecord, error) {
	data, err := s.client.Get(ctx, s.key(sourceID)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, oops.In("delivery").With("source_id", sourceID).Wrap(errors.ErrRecordNotFound)
	}
	if err != nil {
		return nil, oops.In("delivery").With("source_id", sourceID).Wrapf(err, "failed to read record")
	}

	var record domain.DeliveryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, oops.In("delivery").With("source_id", sourceID).Wrapf(err, "failed to unmarshal record")
	}
	return &record, nil
}

func (s *RedisStorage) Put(ctx context.Context, record *domain.DeliveryRecord) error {
	if record == nil || record.SourceID == "" {
		return oops.In("delivery").Errorf("record without source id")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return oops.In("delivery").With("source_id", record.SourceID).Wrapf(err, "failed to marshal record")
	}
	if err := s.client.Set(ctx, s.key(record.SourceID), data, s.ttl).Err(); err != nil {
		return oops.In("delivery").With("source_id", record.SourceID).Wrapf(err, "failed to write record")
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, sourceID string) error {
	if err := s.client.Del(ctx, s.key(sourceID)).Err(); err != nil {
		return oops.In("delivery").With("source_id", sourceID).Wrapf(err, "failed to delete record")
	}
	return nil
}

func (s *RedisStorage) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, oops.In("delivery").Wrapf(err, "failed to count records")
	}
	return n, nil
}
