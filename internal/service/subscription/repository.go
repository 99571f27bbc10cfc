package subscription

import "context"

// Repository receives accepted subscriptions.
// Implemented by pg.SubscriptionRepository, redisstream.Publisher and Discard.
type Repository interface {
	Save(ctx context.Context, s *Subscription) error
}

// Discard is the default Repository: it keeps nothing.
type Discard struct{}

func (Discard) Save(context.Context, *Subscription) error { return nil }
