package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/fitcoach/internal/model"
)

// CustomerStore holds the link between local users and Stripe customers.
type CustomerStore struct {
	db *sql.DB
}

func NewCustomerStore(db *sql.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func scanCustomer(scanner interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	if err := scanner.Scan(&c.ID, &c.StripeCustomerID); err != nil {
		return nil, err
	}
	return &c, nil
}

// Link upserts the customer link for userID. Re-linking a user replaces the
// previous Stripe customer id. ErrConflict means the Stripe customer already
// belongs to another user.
func (s *CustomerStore) Link(userID, stripeCustomerID string) error {
	_, err := s.db.Exec(
		`INSERT INTO customers (id, stripe_customer_id) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET stripe_customer_id = excluded.stripe_customer_id`,
		userID, stripeCustomerID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("link %s to %s: %w", stripeCustomerID, userID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("upsert customer link: %w", err)
	}
	return nil
}

// LinkIfAbsent links userID to stripeCustomerID unless the user already has a
// link, and returns the Stripe customer id that is linked afterwards.
func (s *CustomerStore) LinkIfAbsent(userID, stripeCustomerID string) (string, error) {
	_, err := s.db.Exec(
		`INSERT INTO customers (id, stripe_customer_id) VALUES (?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		userID, stripeCustomerID,
	)
	if isUniqueViolation(err) {
		return "", fmt.Errorf("link %s to %s: %w", stripeCustomerID, userID, ErrConflict)
	}
	if err != nil {
		return "", fmt.Errorf("insert customer link: %w", err)
	}

	c, err := s.GetByUserID(userID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", fmt.Errorf("customer link for %s vanished", userID)
	}
	return c.StripeCustomerID, nil
}

func (s *CustomerStore) GetByUserID(userID string) (*model.Customer, error) {
	row := s.db.QueryRow(`SELECT id, stripe_customer_id FROM customers WHERE id = ?`, userID)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (s *CustomerStore) GetByStripeID(stripeCustomerID string) (*model.Customer, error) {
	row := s.db.QueryRow(`SELECT id, stripe_customer_id FROM customers WHERE stripe_customer_id = ?`, stripeCustomerID)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer by stripe id: %w", err)
	}
	return c, nil
}
