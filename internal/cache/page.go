package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"blogsite/internal/config"

	redis "github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "page:rendered:"

func PageKey(id int64) string {
	return pageKeyPrefix + strconv.FormatInt(id, 10)
}

func SlugKey(slug string) string {
	return pageKeyPrefix + "slug:" + slug
}

// PageCache хранит готовый JSON страниц. Clear сбрасывает всё разом (после публикации).
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}

var _ PageCache = (*RedisPageCache)(nil)

type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPageCache(cfg *config.Config) (*RedisPageCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Protocol: 2,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisPageCache{client: client, ttl: cfg.CacheTTL}, nil
}

func (r *RedisPageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res := r.client.Get(ctx, key)
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, false, nil
		}
		return nil, false, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, false, err
	}
	return buf, true, nil
}

func (r *RedisPageCache) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Clear удаляет все ключи страниц пачками через SCAN, чтобы не блокировать redis.
func (r *RedisPageCache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pageKeyPrefix+"*", 500).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (r *RedisPageCache) Close() error {
	return r.client.Close()
}

var _ PageCache = NopPageCache{}

// NopPageCache используется, когда redis не настроен.
type NopPageCache struct{}

func (NopPageCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NopPageCache) Set(context.Context, string, []byte) error         { return nil }
func (NopPageCache) Clear(context.Context) error                       { return nil }
