package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deploy-summary/internal/config"

	"github.com/redis/go-redis/v9"
)

type kvSetter interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisSink stores the summary under <prefix><chainID>.
type RedisSink struct {
	client kvSetter
	closer func() error
	prefix string
	ttl    time.Duration
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, cfg config.RedisConfig) (*RedisSink, error) {
	if cfg.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	sink := newRedisSink(client, cfg.KeyPrefix, time.Duration(cfg.TTLSeconds)*time.Second)
	sink.closer = client.Close
	return sink, nil
}

func newRedisSink(client kvSetter, prefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}
}

// Name implements Sink.
func (s *RedisSink) Name() string { return "redis" }

// Publish implements Sink.
func (s *RedisSink) Publish(ctx context.Context, msg Message) error {
	if err := s.client.Set(ctx, s.prefix+msg.Key(), msg.Payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("Redis 写入摘要失败: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *RedisSink) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}
