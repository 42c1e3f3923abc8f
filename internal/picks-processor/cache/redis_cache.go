package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache encapsula o cache do snapshot/previsão corrente de cada jogo
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis da previsão corrente de um jogo
func key(sport, externalID string) string {
	return "prediction:current:" + sport + ":" + externalID
}

// SetCurrent armazena a previsão corrente de um jogo no Redis com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, sport, externalID string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(sport, externalID), b, r.TTL).Err()
}
