// Package storage exports matches to external stores.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/sitesimilarity/internal/domain"
)

const (
	DefaultRedisChannel = "sitesimilarity:matches"
	matchListTTL        = 24 * time.Hour
)

// RedisStore publishes match events to a channel and appends them to a
// list of the same name so late consumers can still read them.
type RedisStore struct {
	client  *redis.Client
	channel string
}

func NewRedisStore(addr, channel string) *RedisStore {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb, channel: channel}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Report publishes the match and pushes it onto the match list.
func (s *RedisStore) Report(ctx context.Context, m domain.Match) error {
	payload, err := encodeMatch(m)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Publish(ctx, s.channel, payload)
	pipe.RPush(ctx, s.channel, payload)
	pipe.Expire(ctx, s.channel, matchListTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis report: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func encodeMatch(m domain.Match) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding match: %w", err)
	}
	return payload, nil
}
