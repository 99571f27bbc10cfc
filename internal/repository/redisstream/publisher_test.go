package redisstream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r2r72/newsletter/internal/service/subscription"
)

var _ subscription.Repository = (*Publisher)(nil)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestPublisher_Save(t *testing.T) {
	_, client := setupRedis(t)
	pub := NewPublisher(client, "subscriptions", 1000)

	sub := &subscription.Subscription{
		ID:           uuid.New(),
		Email:        "ursula_le_guin@gmail.com",
		Name:         "le guin",
		SubscribedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Save(context.Background(), sub))

	msgs, err := client.XRange(context.Background(), "subscriptions", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	assert.Equal(t, sub.ID.String(), msgs[0].Values["id"])
	assert.Equal(t, "ursula_le_guin@gmail.com", msgs[0].Values["email"])
	assert.Equal(t, "le guin", msgs[0].Values["name"])
	assert.Equal(t, "2024-03-01T12:00:00Z", msgs[0].Values["subscribed_at"])
}

func TestPublisher_SaveEmptyFields(t *testing.T) {
	_, client := setupRedis(t)
	pub := NewPublisher(client, "subs", 0)

	require.NoError(t, pub.Save(context.Background(), &subscription.Subscription{ID: uuid.New()}))

	n, err := client.XLen(context.Background(), "subs").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPublisher_SaveError(t *testing.T) {
	mr, client := setupRedis(t)
	pub := NewPublisher(client, "subscriptions", 0)

	mr.Close()
	err := pub.Save(context.Background(), &subscription.Subscription{ID: uuid.New()})
	assert.ErrorContains(t, err, "xadd subscriptions")
}

func TestNewClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewClient(context.Background(), addr)
	assert.Error(t, err)
}
