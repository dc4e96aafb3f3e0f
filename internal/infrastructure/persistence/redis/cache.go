package redis

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONCache 带熔断保护的JSON缓存
// Redis不可用时熔断器打开,调用方直接读数据库,不等待Redis超时
type JSONCache struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     *zap.Logger
	name    string
}

// NewJSONCache 创建缓存,name用于指标和熔断器标签
func NewJSONCache(client *redis.Client, name string, m *metrics.Metrics, log *zap.Logger) *JSONCache {
	c := &JSONCache{client: client, metrics: m, log: log, name: name}
	c.breaker = circuitbreaker.New("redis:"+name, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		OnStateChange: func(breaker string, from, to circuitbreaker.State) {
			m.SetBreakerState(breaker, int(to))
			log.Warn("缓存熔断器状态变化",
				zap.String("breaker", breaker),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})
	return c
}

// Get 读取缓存到dest,未命中返回false
func (c *JSONCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw []byte
	err := c.execute(func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = b
		return err
	})
	if err != nil {
		c.metrics.ObserveCache(c.name, "error")
		return false, err
	}
	if raw == nil {
		c.metrics.ObserveCache(c.name, "miss")
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.metrics.ObserveCache(c.name, "error")
		return false, apperrors.Wrap(err, "缓存数据解析失败")
	}
	c.metrics.ObserveCache(c.name, "hit")
	return true, nil
}

// Set 写入缓存
func (c *JSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, "缓存数据序列化失败")
	}
	return c.execute(func() error {
		return c.client.Set(ctx, key, raw, ttl).Err()
	})
}

// Delete 删除缓存
func (c *JSONCache) Delete(ctx context.Context, keys ...string) error {
	return c.execute(func() error {
		return c.client.Del(ctx, keys...).Err()
	})
}

func (c *JSONCache) execute(fn func() error) error {
	err := c.breaker.Execute(fn)
	switch {
	case err == nil:
		c.metrics.ObserveBreaker(c.breaker.Name(), "success")
		return nil
	case errors.Is(err, circuitbreaker.ErrOpenState):
		c.metrics.ObserveBreaker(c.breaker.Name(), "rejected")
		return apperrors.New(apperrors.ErrCodeRedisError, "缓存暂不可用")
	default:
		c.metrics.ObserveBreaker(c.breaker.Name(), "failure")
		return &apperrors.AppError{Code: apperrors.ErrCodeRedisError, Message: "缓存访问失败", Err: err}
	}
}
