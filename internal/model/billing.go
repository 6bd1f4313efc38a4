package model

import "time"

// Customer links a local user to a Stripe customer.
type Customer struct {
	ID               string `json:"id"`
	StripeCustomerID string `json:"stripe_customer_id"`
}

// Product mirrors a Stripe product. ID is the Stripe id.
type Product struct {
	ID          string            `json:"id"`
	Active      bool              `json:"active"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       *string           `json:"image"`
	Metadata    map[string]string `json:"metadata"`
}

// Price mirrors a Stripe price. ID is the Stripe id.
type Price struct {
	ID              string            `json:"id"`
	ProductID       string            `json:"product_id"`
	Active          bool              `json:"active"`
	Description     string            `json:"description"`
	Currency        string            `json:"currency"`
	Type            string            `json:"type"`
	UnitAmount      *int64            `json:"unit_amount"`
	Interval        *string           `json:"interval"`
	IntervalCount   *int64            `json:"interval_count"`
	TrialPeriodDays *int64            `json:"trial_period_days"`
	Metadata        map[string]string `json:"metadata"`
}

// Subscription mirrors a Stripe subscription. ID is the Stripe id.
type Subscription struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"user_id"`
	Status             string            `json:"status"`
	Metadata           map[string]string `json:"metadata"`
	PriceID            string            `json:"price_id"`
	Quantity           int64             `json:"quantity"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	CancelAt           *time.Time        `json:"cancel_at"`
	CanceledAt         *time.Time        `json:"canceled_at"`
	CurrentPeriodStart *time.Time        `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time        `json:"current_period_end"`
	Created            time.Time         `json:"created"`
	EndedAt            *time.Time        `json:"ended_at"`
	TrialStart         *time.Time        `json:"trial_start"`
	TrialEnd           *time.Time        `json:"trial_end"`
}

// IsActive reports whether the subscription currently grants access.
func (s *Subscription) IsActive() bool {
	return s != nil && (s.Status == "active" || s.Status == "trialing")
}

// UnlinkedSubscription records a subscription event whose Stripe customer had
// no local user at the time it arrived.
type UnlinkedSubscription struct {
	SubscriptionID   string    `json:"subscription_id"`
	StripeCustomerID string    `json:"stripe_customer_id"`
	EventType        string    `json:"event_type"`
	Attempts         int       `json:"attempts"`
	FirstSeenAt      time.Time `json:"first_seen_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
}

// SubscriptionWithUser is a subscription row joined to its user's contact details.
type SubscriptionWithUser struct {
	Subscription
	UserName  *string `json:"user_name"`
	UserEmail *string `json:"user_email"`
}
