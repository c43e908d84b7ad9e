package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"study_assistant_backend/internal/model"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// PerformanceCache 按用户缓存表现指标，写入为覆盖语义
type PerformanceCache interface {
	Get(ctx context.Context, userID uint) (*model.PerformanceMetrics, bool, error)
	Set(ctx context.Context, userID uint, metrics model.PerformanceMetrics) error
	Delete(ctx context.Context, userID uint) error
}

type MemoryPerformanceCache struct {
	mu      sync.RWMutex
	entries map[uint]model.PerformanceMetrics
}

func NewMemoryPerformanceCache() *MemoryPerformanceCache {
	return &MemoryPerformanceCache{entries: make(map[uint]model.PerformanceMetrics)}
}

func (c *MemoryPerformanceCache) Get(ctx context.Context, userID uint) (*model.PerformanceMetrics, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[userID]
	if !ok {
		return nil, false, nil
	}
	return &m, true, nil
}

func (c *MemoryPerformanceCache) Set(ctx context.Context, userID uint, metrics model.PerformanceMetrics) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = metrics
	return nil
}

func (c *MemoryPerformanceCache) Delete(ctx context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

type RedisPerformanceCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisPerformanceCache(rdb *redis.Client, ttl time.Duration) *RedisPerformanceCache {
	return &RedisPerformanceCache{Redis: rdb, TTL: ttl}
}

func performanceKey(userID uint) string {
	return fmt.Sprintf("quiz:performance:%d", userID)
}

func (c *RedisPerformanceCache) Get(ctx context.Context, userID uint) (*model.PerformanceMetrics, bool, error) {
	data, err := c.Redis.Get(ctx, performanceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var m model.PerformanceMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

func (c *RedisPerformanceCache) Set(ctx context.Context, userID uint, metrics model.PerformanceMetrics) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, performanceKey(userID), data, c.TTL).Err()
}

func (c *RedisPerformanceCache) Delete(ctx context.Context, userID uint) error {
	return c.Redis.Del(ctx, performanceKey(userID)).Err()
}
