package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher publishes JSON messages to named channels.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan Message, error)
	Close() error
}

// Message is a single message received from a channel.
type Message struct {
	Channel string
	Payload []byte
	Time    time.Time
}

type redisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps an existing Redis client as a pub/sub publisher.
func NewRedisPublisher(client *redis.Client) Publisher {
	return &redisPublisher{client: client}
}

// Publish serializes the message as JSON and publishes it on the channel.
func (r *redisPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return r.client.Publish(ctx, channel, payload).Err()
}

// Subscribe subscribes to the channel and streams messages until ctx is done.
func (r *redisPublisher) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	pubsub := r.client.Subscribe(ctx, channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	messageCh := make(chan Message)
	go func() {
		defer close(messageCh)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				messageCh <- Message{
					Channel: msg.Channel,
					Payload: []byte(msg.Payload),
					Time:    time.Now(),
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return messageCh, nil
}

func (r *redisPublisher) Close() error {
	return r.client.Close()
}
