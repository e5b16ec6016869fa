package services

import (
	"context"
	"encoding/json"
	"errors"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/volunteer/domain"
)

// RedisPublisher sends notifications to a Redis pub/sub channel as JSON.
type RedisPublisher struct {
	client  *redislib.Client
	channel string
}

func NewRedisPublisher(client *redislib.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, n domain.Notification) error {
	if p == nil || p.client == nil {
		return errors.New("redis publisher not configured")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, payload).Err()
}
