package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher emits domain events after a write has committed.
type Publisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	eventJSON, err := Encode(eventType, data, time.Now().UTC())
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Encode renders the stream payload for one event.
func Encode(eventType string, data any, at time.Time) ([]byte, error) {
	eventJSON, err := json.Marshal(Event{Type: eventType, Timestamp: at, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return eventJSON, nil
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
