package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Handler func(ctx context.Context, event Event) error

type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	logger        *slog.Logger
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	Logger        *slog.Logger
}

func NewSubscriber(client *redis.Client, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		logger:        config.Logger.With("stream", config.Stream, "group", config.Group),
	}
}

// Start consumes the stream until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	s.logger.InfoContext(ctx, "subscriber started", "consumer", s.consumer)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber stopping")
			return ctx.Err()
		default:
			if err := s.readMessages(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				s.logger.ErrorContext(ctx, "error reading messages", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Subscriber) readMessages(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.processMessage(ctx, message); err != nil {
				// left pending so it is redelivered
				s.logger.WarnContext(ctx, "failed to process message", "id", message.ID, "error", err)
				continue
			}

			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				s.logger.WarnContext(ctx, "failed to ack message", "id", message.ID, "error", err)
			}
		}
	}

	return nil
}

func (s *Subscriber) processMessage(ctx context.Context, message redis.XMessage) error {
	event, err := Decode(message.Values["event"])
	if err != nil {
		return err
	}
	return s.handler(ctx, event)
}

// Decode parses a stream entry's "event" field.
func Decode(raw any) (Event, error) {
	var payload []byte
	switch v := raw.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		return Event{}, fmt.Errorf("invalid message format")
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}
