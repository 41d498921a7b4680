package redis

import (
	"context"
	"fmt"
	"time"

	"poctracker/internal/app/config"

	"github.com/go-redis/redis/v8"
)

const statsCacheKey = "poc:stats"

// Client - обертка над go-redis для кеша статистики. Статистика
// дешевая, но дергается админкой постоянно, поэтому короткий TTL.
type Client struct {
	cfg    config.RedisConfig
	client *redis.Client
}

func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:    cfg.User,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot connect to redis: %w", err)
	}

	return &Client{cfg: cfg, client: client}, nil
}

// GetStatsCache возвращает закешированную статистику (redis.Nil если нет)
func (c *Client) GetStatsCache(ctx context.Context) ([]byte, error) {
	return c.client.Get(ctx, statsCacheKey).Bytes()
}

func (c *Client) SetStatsCache(ctx context.Context, payload []byte) error {
	ttl := c.cfg.StatsTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return c.client.Set(ctx, statsCacheKey, payload, ttl).Err()
}

// InvalidateStatsCache сбрасывает кеш после любой мутации
func (c *Client) InvalidateStatsCache(ctx context.Context) error {
	return c.client.Del(ctx, statsCacheKey).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}

// IsCacheMiss отделяет отсутствие ключа от реальной ошибки
func IsCacheMiss(err error) bool {
	return err == redis.Nil
}
