package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/utils"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache 键值缓存，ttl 为 0 时不过期
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// TTL 默认缓存时长
func (s *RedisService) TTL() time.Duration {
	return s.ttl
}

func (s *RedisService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // 缓存未命中
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisService) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// LocalCache Redis 不可用时使用的进程内 LRU 缓存
type LocalCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewLocalCache(size int, ttl time.Duration) *LocalCache {
	if size <= 0 {
		size = 256
	}
	return &LocalCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *LocalCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.lru.Get(key)
	return v, ok, nil
}

// Set 进程内缓存统一使用构造时的 ttl
func (c *LocalCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.lru.Add(key, value)
	return nil
}

func getJSON[T any](ctx context.Context, c Cache, key string) (*T, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		utils.Logger.Error("failed to unmarshal cached value",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &v, nil
}

func setJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
