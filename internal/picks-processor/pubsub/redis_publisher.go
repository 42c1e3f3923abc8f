package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const ChannelPredictionsBroadcast = "prediction_updates_broadcast"

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// Payload padrão do broadcast de previsões atualizadas
type Update struct {
	Sport      string      `json:"sport"`
	ExternalID string      `json:"externalId"`
	Payload    interface{} `json:"payload"`
}
