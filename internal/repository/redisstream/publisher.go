// Package redisstream appends accepted subscriptions to a Redis stream for
// downstream consumers.
package redisstream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/r2r72/newsletter/internal/service/subscription"
)

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Publisher implements subscription.Repository with XADD.
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewPublisher creates a Publisher. A positive maxLen trims the stream
// approximately to that many entries.
func NewPublisher(client *redis.Client, stream string, maxLen int64) *Publisher {
	return &Publisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *Publisher) Save(ctx context.Context, s *subscription.Subscription) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"id":            s.ID.String(),
			"email":         s.Email,
			"name":          s.Name,
			"subscribed_at": s.SubscribedAt.Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
