package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service accepts newsletter subscriptions and hands them to a Repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new Service. A nil repo means Discard, a nil logger
// means slog.Default.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if repo == nil {
		repo = Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger.With("component", "subscription"),
		now:    time.Now,
	}
}

// Subscribe records a subscription. Field contents are not inspected: empty
// strings and malformed addresses are accepted as-is.
func (s *Service) Subscribe(ctx context.Context, input SubscribeInput) (*Subscription, error) {
	sub := &Subscription{
		ID:           uuid.New(),
		Email:        input.Email,
		Name:         input.Name,
		SubscribedAt: s.now().UTC(),
	}

	if err := s.repo.Save(ctx, sub); err != nil {
		s.logger.Error("failed to save subscription",
			"subscription_id", sub.ID.String(),
			"email", sub.Email,
			"error", err,
		)
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	s.logger.Info("subscription accepted",
		"subscription_id", sub.ID.String(),
		"email", sub.Email,
	)
	return sub, nil
}
