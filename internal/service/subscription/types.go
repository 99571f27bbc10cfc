// Package subscription defines the newsletter subscription domain.
package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is an accepted sign-up. Email and Name are stored exactly as
// submitted.
type Subscription struct {
	ID           uuid.UUID
	Email        string
	Name         string
	SubscribedAt time.Time
}

// SubscribeInput is the input for Subscribe.
type SubscribeInput struct {
	Email string
	Name  string
}
