package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/fitcoach/internal/model"
)

// UnlinkedSubscriptionStore tracks subscription events that could not be
// attributed to a user because no customer link existed yet.
type UnlinkedSubscriptionStore struct {
	db *sql.DB
}

func NewUnlinkedSubscriptionStore(db *sql.DB) *UnlinkedSubscriptionStore {
	return &UnlinkedSubscriptionStore{db: db}
}

const unlinkedCols = `subscription_id, stripe_customer_id, event_type, attempts, first_seen_at, last_seen_at`

// Record notes a missed subscription, bumping the attempt count on repeats.
func (s *UnlinkedSubscriptionStore) Record(subscriptionID, stripeCustomerID, eventType string) error {
	_, err := s.db.Exec(
		`INSERT INTO unlinked_subscriptions (subscription_id, stripe_customer_id, event_type) VALUES (?, ?, ?)
		 ON CONFLICT (subscription_id) DO UPDATE SET
		   stripe_customer_id = excluded.stripe_customer_id,
		   event_type = excluded.event_type,
		   attempts = unlinked_subscriptions.attempts + 1,
		   last_seen_at = CURRENT_TIMESTAMP`,
		subscriptionID, stripeCustomerID, eventType,
	)
	if err != nil {
		return fmt.Errorf("record unlinked subscription: %w", err)
	}
	return nil
}

func (s *UnlinkedSubscriptionStore) Get(subscriptionID string) (*model.UnlinkedSubscription, error) {
	row := s.db.QueryRow(`SELECT `+unlinkedCols+` FROM unlinked_subscriptions WHERE subscription_id = ?`, subscriptionID)
	var u model.UnlinkedSubscription
	err := row.Scan(&u.SubscriptionID, &u.StripeCustomerID, &u.EventType, &u.Attempts, &u.FirstSeenAt, &u.LastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get unlinked subscription: %w", err)
	}
	return &u, nil
}

func (s *UnlinkedSubscriptionStore) List() ([]model.UnlinkedSubscription, error) {
	rows, err := s.db.Query(`SELECT ` + unlinkedCols + ` FROM unlinked_subscriptions ORDER BY first_seen_at, subscription_id`)
	if err != nil {
		return nil, fmt.Errorf("list unlinked subscriptions: %w", err)
	}
	defer rows.Close()

	var out []model.UnlinkedSubscription
	for rows.Next() {
		var u model.UnlinkedSubscription
		if err := rows.Scan(&u.SubscriptionID, &u.StripeCustomerID, &u.EventType, &u.Attempts, &u.FirstSeenAt, &u.LastSeenAt); err != nil {
			return nil, fmt.Errorf("scan unlinked subscription: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Touch bumps the attempt count of a still-unresolved row.
func (s *UnlinkedSubscriptionStore) Touch(subscriptionID string) error {
	_, err := s.db.Exec(
		`UPDATE unlinked_subscriptions SET attempts = attempts + 1, last_seen_at = CURRENT_TIMESTAMP WHERE subscription_id = ?`,
		subscriptionID,
	)
	if err != nil {
		return fmt.Errorf("touch unlinked subscription: %w", err)
	}
	return nil
}

func (s *UnlinkedSubscriptionStore) Delete(subscriptionID string) error {
	_, err := s.db.Exec(`DELETE FROM unlinked_subscriptions WHERE subscription_id = ?`, subscriptionID)
	if err != nil {
		return fmt.Errorf("delete unlinked subscription: %w", err)
	}
	return nil
}
