package cache

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Problem listings are cached briefly; any write to problems invalidates them.
const listTTL = 2 * time.Minute

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, listTTL).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// InvalidateProblems drops every cached problem listing. Called after any
// submit, update, or assignment so staff dashboards never serve stale pages.
func (c *RedisCache) InvalidateProblems(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "problems:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// ListKey builds the cache key for one page of a problem listing.
// Format: "problems:<scope>:<status>:<department>:<page>:<limit>"
func ListKey(scope, status, department string, page, limit int) string {
	return "problems:" + scope + ":" + status + ":" + department + ":" +
		strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}
