package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/fitcoach/internal/model"
)

// SubscriptionStore mirrors Stripe subscriptions. Writes are last-write-wins
// upserts keyed by the Stripe subscription id.
type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func scanSubscription(scanner interface{ Scan(...any) error }, extra ...any) (*model.Subscription, error) {
	var sub model.Subscription
	var metadata string
	var cancelAtPeriodEnd int
	var cancelAt, canceledAt, periodStart, periodEnd, endedAt, trialStart, trialEnd sql.NullTime
	dest := []any{
		&sub.ID, &sub.UserID, &sub.Status, &metadata, &sub.PriceID, &sub.Quantity, &cancelAtPeriodEnd,
		&cancelAt, &canceledAt, &periodStart, &periodEnd, &sub.Created, &endedAt, &trialStart, &trialEnd,
	}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	m, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	sub.Metadata = m
	sub.CancelAtPeriodEnd = cancelAtPeriodEnd != 0
	sub.CancelAt = nullTimePtr(cancelAt)
	sub.CanceledAt = nullTimePtr(canceledAt)
	sub.CurrentPeriodStart = nullTimePtr(periodStart)
	sub.CurrentPeriodEnd = nullTimePtr(periodEnd)
	sub.EndedAt = nullTimePtr(endedAt)
	sub.TrialStart = nullTimePtr(trialStart)
	sub.TrialEnd = nullTimePtr(trialEnd)
	sub.Created = sub.Created.UTC()
	return &sub, nil
}

const subscriptionCols = `id, user_id, status, metadata, price_id, quantity, cancel_at_period_end,
	cancel_at, canceled_at, current_period_start, current_period_end, created, ended_at, trial_start, trial_end`

// Upsert writes the subscription keyed by its Stripe id, replacing every column.
func (s *SubscriptionStore) Upsert(sub model.Subscription) error {
	metadata, err := encodeMetadata(sub.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO subscriptions (`+subscriptionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   user_id = excluded.user_id,
		   status = excluded.status,
		   metadata = excluded.metadata,
		   price_id = excluded.price_id,
		   quantity = excluded.quantity,
		   cancel_at_period_end = excluded.cancel_at_period_end,
		   cancel_at = excluded.cancel_at,
		   canceled_at = excluded.canceled_at,
		   current_period_start = excluded.current_period_start,
		   current_period_end = excluded.current_period_end,
		   created = excluded.created,
		   ended_at = excluded.ended_at,
		   trial_start = excluded.trial_start,
		   trial_end = excluded.trial_end`,
		sub.ID, sub.UserID, sub.Status, metadata, sub.PriceID, sub.Quantity, boolToInt(sub.CancelAtPeriodEnd),
		sub.CancelAt, sub.CanceledAt, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.Created,
		sub.EndedAt, sub.TrialStart, sub.TrialEnd,
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) GetByID(id string) (*model.Subscription, error) {
	row := s.db.QueryRow(`SELECT `+subscriptionCols+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

// LatestForUser returns the user's most recently created subscription.
func (s *SubscriptionStore) LatestForUser(userID string) (*model.Subscription, error) {
	row := s.db.QueryRow(
		`SELECT `+subscriptionCols+` FROM subscriptions WHERE user_id = ? ORDER BY created DESC LIMIT 1`,
		userID,
	)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest subscription: %w", err)
	}
	return sub, nil
}

// ListWithUsers returns every subscription, newest first, with user contact details.
func (s *SubscriptionStore) ListWithUsers() ([]model.SubscriptionWithUser, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.user_id, s.status, s.metadata, s.price_id, s.quantity, s.cancel_at_period_end,
		        s.cancel_at, s.canceled_at, s.current_period_start, s.current_period_end, s.created,
		        s.ended_at, s.trial_start, s.trial_end, u.name, u.email
		 FROM subscriptions s LEFT JOIN users u ON u.id = s.user_id
		 ORDER BY s.created DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []model.SubscriptionWithUser
	for rows.Next() {
		var name, email sql.NullString
		sub, err := scanSubscription(rows, &name, &email)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		item := model.SubscriptionWithUser{Subscription: *sub}
		if name.Valid {
			item.UserName = &name.String
		}
		if email.Valid {
			item.UserEmail = &email.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CountActive counts subscriptions that currently grant access.
func (s *SubscriptionStore) CountActive() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM subscriptions WHERE status IN ('active', 'trialing')`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active subscriptions: %w", err)
	}
	return n, nil
}
