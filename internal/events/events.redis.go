// FilePath: internal/events/events.redis.go
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/meteosense/hub/internal/config"
)

// RedisPublisher mirrors ingestion events onto a Redis pub/sub channel so
// out-of-process consumers (alerting, dashboards) can react without touching
// the ingestion path.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to Redis and verifies the connection
func NewRedisPublisher(cfg config.RedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}

	nuts.L.Infof("[RedisPublisher] Connected to %s:%d, publishing on %q",
		cfg.Host, cfg.Port, cfg.Channel)
	return &RedisPublisher{client: client, channel: cfg.Channel}, nil
}

// Register subscribes the publisher to the bus
func (p *RedisPublisher) Register(bus *Bus) {
	bus.Subscribe(func(evt MetricIngested) {
		payload, err := json.Marshal(evt)
		if err != nil {
			nuts.L.Errorf("[RedisPublisher] Failed to marshal event: %v", err)
			return
		}
		if err := p.client.Publish(context.Background(), p.channel, payload).Err(); err != nil {
			nuts.L.Errorf("[RedisPublisher] Failed to publish event: %v", err)
		}
	})
}

// Close releases the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
