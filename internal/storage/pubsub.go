package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"footybot/backend/internal/logging"
	"footybot/backend/internal/roster"
)

// ErrRedisDisabled is returned by event methods when no Redis client is configured.
var ErrRedisDisabled = errors.New("redis is not configured")

// Publish sends a roster event to the chat's event channel.
func (s *Service) Publish(ctx context.Context, event roster.Event) error {
	if s.Redis == nil {
		return ErrRedisDisabled
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return s.Redis.Publish(ctx, EventChannel(event.ChatID), payload).Err()
}

// Subscribe streams a chat's roster events until ctx ends or the returned
// close function is called. The channel is closed when the stream stops.
func (s *Service) Subscribe(ctx context.Context, chatID int64) (<-chan roster.Event, func() error, error) {
	if s.Redis == nil {
		return nil, nil, ErrRedisDisabled
	}

	pubsub := s.Redis.Subscribe(ctx, EventChannel(chatID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to chat %d: %w", chatID, err)
	}

	events := make(chan roster.Event, 16)
	go func() {
		defer close(events)
		l := logging.Ctx(ctx)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event roster.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					l.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed event")
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, pubsub.Close, nil
}
