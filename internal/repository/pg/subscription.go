// Package pg stores subscriptions in PostgreSQL.
package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/r2r72/newsletter/internal/service/subscription"
)

const schema = `CREATE TABLE IF NOT EXISTS subscriptions (
	id            uuid        PRIMARY KEY,
	email         text        NOT NULL UNIQUE,
	name          text        NOT NULL,
	subscribed_at timestamptz NOT NULL
)`

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// EnsureSchema creates the subscriptions table if it does not exist.
func (r *SubscriptionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create subscriptions table: %w", err)
	}
	return nil
}

// Save inserts the subscription. A repeated email is ignored so the caller
// still sees success.
func (r *SubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, email, name, subscribed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING`,
		s.ID.String(), s.Email, s.Name, s.SubscribedAt,
	)
	return err
}
