package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyLeague(sport string) string { return "predictions:response:" + sport }

func (c *Cache) GetPredictions(ctx context.Context, sport string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyLeague(sport)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetPredictions(ctx context.Context, sport string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyLeague(sport), b, ttl).Err()
}
